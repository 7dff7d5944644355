package fsutil

import (
	"os"
)

// FileModeIsSticky checks if FileMode has the sticky bit set
func FileModeIsSticky(mode os.FileMode) bool {
	return mode&os.ModeSticky != 0
}

// FileModeIsSetgid checks if FileMode has the setgid bit set
func FileModeIsSetgid(mode os.FileMode) bool {
	return mode&os.ModeSetgid != 0
}

// FileModeIsSetuid checks if FileMode has the setuid bit set
func FileModeIsSetuid(mode os.FileMode) bool {
	return mode&os.ModeSetuid != 0
}

// PermString renders the permission bits the way ls does ("-rwsr-xr-x").
// The file type is not included.
func PermString(mode os.FileMode) string {
	perm := []byte(mode.Perm().String())
	if FileModeIsSetuid(mode) {
		perm[3] = specialBit(perm[3], 's')
	}

	if FileModeIsSetgid(mode) {
		perm[6] = specialBit(perm[6], 's')
	}

	if FileModeIsSticky(mode) {
		perm[9] = specialBit(perm[9], 't')
	}

	return string(perm)
}

func specialBit(exec byte, marker byte) byte {
	if exec == 'x' {
		return marker
	}

	return marker - 'a' + 'A'
}

// Exists returns true if the target file system object exists
func Exists(target string) bool {
	if _, err := os.Stat(target); err != nil {
		return false
	}

	return true
}

// DirExists returns true if the target exists and it's a directory
func DirExists(target string) bool {
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return true
	}

	return false
}
