package system

import (
	"fmt"
	"strings"
)

// x86_64 open(2) flag bits (octal, as in the kernel headers)
const (
	OpenFlagWrOnly    = 0o1
	OpenFlagRdWr      = 0o2
	OpenFlagCreat     = 0o100
	OpenFlagExcl      = 0o200
	OpenFlagNoCtty    = 0o400
	OpenFlagTrunc     = 0o1000
	OpenFlagAppend    = 0o2000
	OpenFlagNonBlock  = 0o4000
	OpenFlagLargeFile = 0o100000
	OpenFlagDirectory = 0o200000
	OpenFlagNoFollow  = 0o400000
	OpenFlagCloExec   = 0o2000000
)

type openFlagName struct {
	bit  uint64
	name string
}

var openFlagNames = []openFlagName{
	{OpenFlagWrOnly, "O_WRONLY"},
	{OpenFlagRdWr, "O_RDWR"},
	{OpenFlagCreat, "O_CREAT"},
	{OpenFlagExcl, "O_EXCL"},
	{OpenFlagNoCtty, "O_NOCTTY"},
	{OpenFlagTrunc, "O_TRUNC"},
	{OpenFlagAppend, "O_APPEND"},
	{OpenFlagNonBlock, "O_NONBLOCK"},
	{OpenFlagLargeFile, "O_LARGEFILE"},
	{OpenFlagDirectory, "O_DIRECTORY"},
	{OpenFlagNoFollow, "O_NOFOLLOW"},
	{OpenFlagCloExec, "O_CLOEXEC"},
}

// FormatOpenFlags renders an open flags bitmask as "O_X|O_Y".
// When no recognized bit is set the raw value is returned in hex.
// O_RDONLY is the zero access mode, not a bit, so it is never named.
func FormatOpenFlags(flags uint64) string {
	var names []string
	for _, f := range openFlagNames {
		if flags&f.bit != 0 {
			names = append(names, f.name)
		}
	}

	if len(names) == 0 {
		return fmt.Sprintf("0x%x", flags)
	}

	return strings.Join(names, "|")
}

// FormatMode renders the permission bits of a mode argument the way
// chmod does ("0644").
func FormatMode(mode uint64) string {
	return fmt.Sprintf("%04o", mode&0o7777)
}
