package monitor

import (
	"sync"
	"sync/atomic"

	"github.com/slimtoolkit/fstrace/pkg/monitor/ptrace"
)

// Stop is one scripted tracing stop.
type Stop struct {
	Regs        ptrace.RegisterSnapshot
	RegsMissing bool
	// Err is returned by the resume that would land on this stop.
	Err error
}

func EntryStop(nr uint64, args ...uint64) Stop {
	regs := ptrace.RegisterSnapshot{
		OrigRax: nr,
		Rax:     ptrace.EntryRax(),
	}

	dst := []*uint64{&regs.Rdi, &regs.Rsi, &regs.Rdx, &regs.R10, &regs.R8, &regs.R9}
	for i, v := range args {
		if i < len(dst) {
			*dst[i] = v
		}
	}

	return Stop{Regs: regs}
}

func ExitStop(nr uint64, ret uint64) Stop {
	return Stop{Regs: ptrace.RegisterSnapshot{OrigRax: nr, Rax: ret}}
}

// Syscall returns the entry and exit stop pair of one call.
func Syscall(nr uint64, args ...uint64) []Stop {
	return []Stop{EntryStop(nr, args...), ExitStop(nr, 0)}
}

// AccessorStub replays scripted stops. Once the script is exhausted the
// target "exits", or, with BlockAtEnd, the resume blocks until Interrupt.
type AccessorStub struct {
	Pid        int
	AttachErr  error
	DetachErr  error
	Stops      []Stop
	Memory     map[uintptr]string
	BlockAtEnd bool

	AttachCalls    int
	DetachCalls    int
	Resumes        int
	InterruptCalls atomic.Int32
	// StringReads records the addresses passed to ReadCString.
	StringReads []uintptr

	next        int
	cur         int
	interruptCh chan struct{}
	once        sync.Once
}

var _ ptrace.Accessor = &AccessorStub{}

func NewAccessor(pid int, stops ...[]Stop) *AccessorStub {
	acc := &AccessorStub{
		Pid:         pid,
		Memory:      map[uintptr]string{},
		interruptCh: make(chan struct{}),
	}

	for _, s := range stops {
		acc.Stops = append(acc.Stops, s...)
	}

	return acc
}

func (a *AccessorStub) PID() int {
	return a.Pid
}

func (a *AccessorStub) Attach() error {
	a.AttachCalls++
	return a.AttachErr
}

func (a *AccessorStub) Detach() error {
	a.DetachCalls++
	return a.DetachErr
}

func (a *AccessorStub) ResumeUntilSyscallStop() error {
	a.Resumes++
	select {
	case <-a.interruptCh:
		return ptrace.ErrInterrupted
	default:
	}

	if a.next >= len(a.Stops) {
		if a.BlockAtEnd {
			<-a.interruptCh
			return ptrace.ErrInterrupted
		}

		return ptrace.ErrProcessExited
	}

	a.cur = a.next
	a.next++
	return a.Stops[a.cur].Err
}

func (a *AccessorStub) ReadRegisters() (ptrace.RegisterSnapshot, bool) {
	if a.cur >= len(a.Stops) || a.Stops[a.cur].RegsMissing {
		return ptrace.RegisterSnapshot{}, false
	}

	return a.Stops[a.cur].Regs, true
}

func (a *AccessorStub) ReadCString(addr uintptr, maxLen int) (string, bool) {
	a.StringReads = append(a.StringReads, addr)
	val, ok := a.Memory[addr]
	if !ok || addr == 0 {
		return "", false
	}

	if len(val) > maxLen {
		val = val[:maxLen]
	}

	return val, true
}

func (a *AccessorStub) Interrupt() {
	a.InterruptCalls.Add(1)
	a.once.Do(func() { close(a.interruptCh) })
}
