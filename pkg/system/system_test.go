package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMachineToArch(t *testing.T) {
	tt := []struct {
		machine   string
		name      ArchName
		supported bool
	}{
		{machine: "x86_64", name: ArchNameAmd64, supported: true},
		{machine: "i686", name: ArchName386},
		{machine: "aarch64", name: ArchNameArm64},
		{machine: "armv7l", name: ArchNameArm32},
		{machine: "riscv64", name: ArchNameUnknown},
	}

	for _, test := range tt {
		arch := MachineToArch(test.machine)
		assert.Equal(t, test.name, arch.Name, test.machine)
		assert.Equal(t, test.machine, arch.Machine)
		assert.Equal(t, test.supported, IsSupportedArch(arch), test.machine)
	}

	assert.False(t, IsSupportedArch(nil))
}
