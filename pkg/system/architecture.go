package system

type ArchName string

const (
	ArchNameUnknown ArchName = "unknown"
	ArchName386     ArchName = "386"
	ArchNameAmd64   ArchName = "amd64"
	ArchNameArm32   ArchName = "armhf"
	ArchNameArm64   ArchName = "aarch64"
)

// SupportedArchName is the only calling convention the tracer decodes.
const SupportedArchName = ArchNameAmd64

type ArchInfo struct {
	Name    ArchName
	Machine string
}

// uname machine -> arch
var archNames = map[string]ArchName{
	"i386":    ArchName386,
	"i586":    ArchName386,
	"i686":    ArchName386,
	"x86_64":  ArchNameAmd64,
	"armv7l":  ArchNameArm32,
	"aarch64": ArchNameArm64,
}

func MachineToArch(machine string) *ArchInfo {
	name, ok := archNames[machine]
	if !ok {
		name = ArchNameUnknown
	}

	return &ArchInfo{Name: name, Machine: machine}
}
