package ptrace

// RegisterSnapshot is the x86-64 user_regs_struct captured at one stop.
// Field order matches the kernel ABI layout.
type RegisterSnapshot struct {
	R15     uint64
	R14     uint64
	R13     uint64
	R12     uint64
	Rbp     uint64
	Rbx     uint64
	R11     uint64
	R10     uint64
	R9      uint64
	R8      uint64
	Rax     uint64
	Rcx     uint64
	Rdx     uint64
	Rsi     uint64
	Rdi     uint64
	OrigRax uint64
	Rip     uint64
	Cs      uint64
	Eflags  uint64
	Rsp     uint64
	Ss      uint64
	FsBase  uint64
	GsBase  uint64
	Ds      uint64
	Es      uint64
	Fs      uint64
	Gs      uint64
}

/*
X86-64 SYSCALL REGISTER USE:

Syscall Number:   orig_rax (rax is reused for the return value)
Return Value:     rax
1st Param (arg0): rdi
2nd Param (arg1): rsi
3rd Param (arg2): rdx
4th Param (arg3): r10
5th Param (arg4): r8
6th Param (arg5): r9
*/

const maxCallArgs = 6

// linux x86-64 ENOSYS; rax holds -ENOSYS at a syscall-entry stop
const errnoENOSYS = 38

func (r RegisterSnapshot) CallNumber() uint64 {
	return r.OrigRax
}

func (r RegisterSnapshot) ReturnValue() uint64 {
	return r.Rax
}

// Arg returns the raw value of the n-th (zero based) syscall argument.
func (r RegisterSnapshot) Arg(n int) uint64 {
	switch n {
	case 0:
		return r.Rdi
	case 1:
		return r.Rsi
	case 2:
		return r.Rdx
	case 3:
		return r.R10
	case 4:
		return r.R8
	case 5:
		return r.R9
	default:
		return 0
	}
}

func (r RegisterSnapshot) AtSyscallEntry() bool {
	return int64(r.Rax) == -errnoENOSYS
}

// EntryRax is the rax value the kernel leaves at a syscall-entry stop.
func EntryRax() uint64 {
	v := int64(-errnoENOSYS)
	return uint64(v)
}
