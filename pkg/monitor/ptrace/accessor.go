package ptrace

import (
	"errors"
	"fmt"
)

// Accessor is the typed view of the tracing control interface.
// All methods except Interrupt must be called from the same OS thread
// that called Attach.
type Accessor interface {
	PID() int
	// Attach blocks until the kernel reports the target as stopped.
	Attach() error
	// Detach is a no-op when the target is not attached.
	Detach() error
	// ResumeUntilSyscallStop resumes the target until the next
	// syscall-entry or syscall-exit stop.
	ResumeUntilSyscallStop() error
	ReadRegisters() (RegisterSnapshot, bool)
	StringReader
	// Interrupt asks a blocked ResumeUntilSyscallStop to return
	// ErrInterrupted. Safe to call from any goroutine.
	Interrupt()
}

type StringReader interface {
	ReadCString(addr uintptr, maxLen int) (string, bool)
}

var (
	ErrProcessExited       = errors.New("target process exited")
	ErrInterrupted         = errors.New("tracing interrupted")
	ErrUnsupportedPlatform = errors.New("process tracing is only supported on linux/amd64")
)

type AttachErrorReason string

const (
	AttachPermissionDenied AttachErrorReason = "permission.denied"
	AttachNoSuchProcess    AttachErrorReason = "no.such.process"
	AttachOther            AttachErrorReason = "other"
)

type AttachError struct {
	PID    int
	Reason AttachErrorReason
	Err    error
}

func (e *AttachError) Error() string {
	switch e.Reason {
	case AttachPermissionDenied:
		return fmt.Sprintf("attach to pid %d: permission denied", e.PID)
	case AttachNoSuchProcess:
		return fmt.Sprintf("attach to pid %d: no such process", e.PID)
	default:
		return fmt.Sprintf("attach to pid %d: %v", e.PID, e.Err)
	}
}

func (e *AttachError) Unwrap() error {
	return e.Err
}

func IsPermissionDenied(err error) bool {
	var ae *AttachError
	return errors.As(err, &ae) && ae.Reason == AttachPermissionDenied
}

func IsNoSuchProcess(err error) bool {
	var ae *AttachError
	return errors.As(err, &ae) && ae.Reason == AttachNoSuchProcess
}
