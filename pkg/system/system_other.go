//go:build !linux
// +build !linux

package system

import (
	"os"
	"runtime"
)

func newSystemInfo() SystemInfo {
	var sysInfo SystemInfo
	sysInfo.Sysname = runtime.GOOS
	sysInfo.Nodename, _ = os.Hostname()
	return sysInfo
}
