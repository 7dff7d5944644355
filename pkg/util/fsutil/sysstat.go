package fsutil

import (
	"os"
	"syscall"
)

type SysStat struct {
	Ok    bool
	Uid   uint32
	Gid   uint32
	Atime syscall.Timespec
	Mtime syscall.Timespec
	Ctime syscall.Timespec
}

// FileSysStat extracts the raw stat data from a FileInfo.
// Ok is false when the platform data is not available.
func FileSysStat(info os.FileInfo) SysStat {
	if info == nil {
		return SysStat{}
	}

	if raw, ok := info.Sys().(*syscall.Stat_t); ok {
		return SysStatInfo(raw)
	}

	return SysStat{}
}
