//go:build linux && amd64
// +build linux,amd64

package ptrace

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"syscall"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/slimtoolkit/fstrace/pkg/errors"
)

// TRACEEXEC turns the post-execve SIGTRAP into an event stop
// that is never delivered to the target.
const ptOptions = unix.PTRACE_O_TRACESYSGOOD | unix.PTRACE_O_TRACEEXEC

// Tracee is the ptrace backed Accessor for one target process.
//
// IMPORTANT:
// ptrace requires all requests (except Interrupt's kill) to come from
// the thread that attached, so callers must runtime.LockOSThread().
type Tracee struct {
	pid      int
	attached bool

	// signal to deliver on the next resume (signal-delivery-stop)
	pendingSig int

	interruptRequested atomic.Bool
	interruptConsumed  bool

	logger *log.Entry
}

var _ Accessor = (*Tracee)(nil)

func NewTracee(pid int) *Tracee {
	return &Tracee{
		pid: pid,
		logger: log.WithFields(log.Fields{
			"app": "fstrace",
			"com": "tracee",
			"pid": pid,
		}),
	}
}

func (t *Tracee) PID() int {
	return t.pid
}

func (t *Tracee) Attach() error {
	logger := t.logger.WithField("op", "ptrace.Tracee.Attach")
	if t.attached {
		logger.Debug("already attached")
		return nil
	}

	if err := unix.PtraceAttach(t.pid); err != nil {
		logger.Debugf("unix.PtraceAttach error - %v", err)
		return newAttachError(t.pid, err)
	}

	//PTRACE_ATTACH sends SIGSTOP; other signals may be reported first
	for {
		ws, err := t.wait()
		if err != nil {
			logger.Debugf("wait4 error - %v", err)
			_ = unix.PtraceDetach(t.pid)
			return newAttachError(t.pid, err)
		}

		if ws.Exited() || ws.Signaled() {
			logger.Debugf("target terminated during attach (status=%v)", ws)
			return &AttachError{PID: t.pid, Reason: AttachNoSuchProcess, Err: ErrProcessExited}
		}

		if !ws.Stopped() {
			continue
		}

		sig := ws.StopSignal()
		if sig == syscall.SIGSTOP {
			break
		}

		logger.Debugf("re-injecting signal before attach stop %s", StopSignalInfo(sig))
		if err := unix.PtraceCont(t.pid, int(sig)); err != nil {
			_ = unix.PtraceDetach(t.pid)
			return newAttachError(t.pid, err)
		}
	}

	if err := unix.PtraceSetOptions(t.pid, ptOptions); err != nil {
		logger.Debugf("unix.PtraceSetOptions error - %v", err)
		_ = unix.PtraceDetach(t.pid)
		return newAttachError(t.pid, err)
	}

	t.attached = true
	t.pendingSig = 0
	logger.Debug("attached")
	return nil
}

func (t *Tracee) Detach() error {
	logger := t.logger.WithField("op", "ptrace.Tracee.Detach")
	if !t.attached {
		return nil
	}

	t.attached = false
	//detaching with no signal also swallows our interrupt SIGSTOP
	t.pendingSig = 0
	if err := unix.PtraceDetach(t.pid); err != nil {
		if err == unix.ESRCH {
			logger.Debug("target is gone (ESRCH)")
			return nil
		}

		return errors.SE("ptrace.Tracee.Detach", "call.error", err)
	}

	if t.interruptRequested.Load() && !t.interruptConsumed {
		//the interrupt SIGSTOP is still queued; don't leave the target stopped
		logger.Debug("interrupt stop not observed - continuing target")
		if err := unix.Kill(t.pid, syscall.SIGCONT); err != nil {
			logger.Debugf("unix.Kill(SIGCONT) error - %v", err)
		}
	}

	logger.Debug("detached")
	return nil
}

func (t *Tracee) ResumeUntilSyscallStop() error {
	logger := t.logger.WithField("op", "ptrace.Tracee.ResumeUntilSyscallStop")
	if !t.attached {
		return ErrProcessExited
	}

	for {
		sig := t.pendingSig
		t.pendingSig = 0
		if err := unix.PtraceSyscall(t.pid, sig); err != nil {
			if err == unix.ESRCH {
				logger.Debug("unix.PtraceSyscall - ESRCH (target is gone)")
				t.attached = false
				return ErrProcessExited
			}

			return errors.SE("ptrace.Tracee.ResumeUntilSyscallStop.ptsyscall", "call.error", err)
		}

		ws, err := t.wait()
		if err != nil {
			if err == unix.ECHILD {
				t.attached = false
				return ErrProcessExited
			}

			return errors.SE("ptrace.Tracee.ResumeUntilSyscallStop.wait4", "call.error", err)
		}

		switch {
		case ws.Exited():
			logger.Debugf("target exited (code=%d)", ws.ExitStatus())
			t.attached = false
			return ErrProcessExited
		case ws.Signaled():
			logger.Debugf("target killed by signal %v", ws.Signal())
			t.attached = false
			return ErrProcessExited
		case ws.Stopped():
			stopSig := ws.StopSignal()
			logger.Tracef("stop %s trap=%s", StopSignalInfo(stopSig), SigTrapCauseInfo(ws.TrapCause()))

			switch {
			case stopSig == syscallStopSignal:
				return nil
			case stopSig == syscall.SIGSTOP && t.interruptRequested.Load():
				//our own wakeup: suppress it
				t.interruptConsumed = true
				return ErrInterrupted
			case stopSig == syscall.SIGTRAP && ws.TrapCause() > 0:
				//ptrace event stop, nothing to deliver
			default:
				t.pendingSig = int(stopSig)
			}
		}
	}
}

func (t *Tracee) ReadRegisters() (RegisterSnapshot, bool) {
	var regs unix.PtraceRegs
	if err := unix.PtraceGetRegs(t.pid, &regs); err != nil {
		t.logger.WithField("op", "ptrace.Tracee.ReadRegisters").Debugf("unix.PtraceGetRegs error - %v", err)
		return RegisterSnapshot{}, false
	}

	return snapshotFromPtraceRegs(&regs), true
}

func (t *Tracee) ReadCString(addr uintptr, maxLen int) (string, bool) {
	return readCString(t.peekWord, addr, maxLen)
}

func (t *Tracee) peekWord(addr uintptr) (uint64, error) {
	var word [wordSize]byte
	n, err := unix.PtracePeekData(t.pid, addr, word[:])
	if err != nil {
		return 0, err
	}

	if n != wordSize {
		return 0, fmt.Errorf("short peek at 0x%x (%d bytes)", addr, n)
	}

	return binary.NativeEndian.Uint64(word[:]), nil
}

func (t *Tracee) Interrupt() {
	if t.interruptRequested.Swap(true) {
		return
	}

	if err := unix.Kill(t.pid, syscall.SIGSTOP); err != nil {
		t.logger.WithField("op", "ptrace.Tracee.Interrupt").Debugf("unix.Kill error - %v", err)
	}
}

func (t *Tracee) wait() (unix.WaitStatus, error) {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(t.pid, &ws, unix.WALL, nil)
		if err == unix.EINTR {
			continue
		}

		return ws, err
	}
}

func newAttachError(pid int, err error) *AttachError {
	reason := AttachOther
	switch err {
	case unix.EPERM, unix.EACCES:
		reason = AttachPermissionDenied
	case unix.ESRCH:
		reason = AttachNoSuchProcess
	}

	return &AttachError{PID: pid, Reason: reason, Err: err}
}
