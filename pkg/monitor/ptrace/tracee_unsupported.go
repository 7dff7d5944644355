//go:build !(linux && amd64)
// +build !linux !amd64

package ptrace

// Tracee is not available on this platform; every operation fails with
// ErrUnsupportedPlatform.
type Tracee struct {
	pid int
}

var _ Accessor = (*Tracee)(nil)

func NewTracee(pid int) *Tracee {
	return &Tracee{pid: pid}
}

func (t *Tracee) PID() int {
	return t.pid
}

func (t *Tracee) Attach() error {
	return &AttachError{PID: t.pid, Reason: AttachOther, Err: ErrUnsupportedPlatform}
}

func (t *Tracee) Detach() error {
	return nil
}

func (t *Tracee) ResumeUntilSyscallStop() error {
	return ErrUnsupportedPlatform
}

func (t *Tracee) ReadRegisters() (RegisterSnapshot, bool) {
	return RegisterSnapshot{}, false
}

func (t *Tracee) ReadCString(addr uintptr, maxLen int) (string, bool) {
	return "", false
}

func (t *Tracee) Interrupt() {}
