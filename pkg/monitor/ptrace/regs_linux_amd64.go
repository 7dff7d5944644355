//go:build linux && amd64
// +build linux,amd64

package ptrace

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Compile time check: the snapshot must stay the same size as the kernel struct.
var _ [unsafe.Sizeof(unix.PtraceRegs{}) - unsafe.Sizeof(RegisterSnapshot{})]struct{}
var _ [unsafe.Sizeof(RegisterSnapshot{}) - unsafe.Sizeof(unix.PtraceRegs{})]struct{}

func snapshotFromPtraceRegs(regs *unix.PtraceRegs) RegisterSnapshot {
	return RegisterSnapshot{
		R15:     regs.R15,
		R14:     regs.R14,
		R13:     regs.R13,
		R12:     regs.R12,
		Rbp:     regs.Rbp,
		Rbx:     regs.Rbx,
		R11:     regs.R11,
		R10:     regs.R10,
		R9:      regs.R9,
		R8:      regs.R8,
		Rax:     regs.Rax,
		Rcx:     regs.Rcx,
		Rdx:     regs.Rdx,
		Rsi:     regs.Rsi,
		Rdi:     regs.Rdi,
		OrigRax: regs.Orig_rax,
		Rip:     regs.Rip,
		Cs:      regs.Cs,
		Eflags:  regs.Eflags,
		Rsp:     regs.Rsp,
		Ss:      regs.Ss,
		FsBase:  regs.Fs_base,
		GsBase:  regs.Gs_base,
		Ds:      regs.Ds,
		Es:      regs.Es,
		Fs:      regs.Fs,
		Gs:      regs.Gs,
	}
}
