package system

type SystemInfo struct {
	Sysname  string
	Nodename string
	Release  string
	Version  string
	Machine  string
}

var defaultSysInfo = newSystemInfo()

func GetSystemInfo() SystemInfo {
	return defaultSysInfo
}

// HostArch returns the architecture the current kernel reports.
func HostArch() *ArchInfo {
	return MachineToArch(defaultSysInfo.Machine)
}

// IsSupportedArch reports whether the tracer knows the syscall calling
// convention of the given architecture.
func IsSupportedArch(arch *ArchInfo) bool {
	return arch != nil && arch.Name == SupportedArchName
}
