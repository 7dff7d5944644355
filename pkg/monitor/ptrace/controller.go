package ptrace

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	serrors "github.com/slimtoolkit/fstrace/pkg/errors"
	"github.com/slimtoolkit/fstrace/pkg/system"
)

type ControllerState string

const (
	StateDetached   ControllerState = "detached"
	StateAttached   ControllerState = "attached"
	StateRunning    ControllerState = "running"
	StateTerminated ControllerState = "terminated"
)

type TerminationReason string

const (
	ReasonProcessExited TerminationReason = "process.exited"
	ReasonInterrupted   TerminationReason = "interrupted"
	ReasonFailed        TerminationReason = "failed"
)

type SessionResult struct {
	PID    int               `json:"pid"`
	Reason TerminationReason `json:"reason"`
	// Stops counts the syscall stops the loop waited for.
	Stops          uint64 `json:"stops"`
	Events         uint64 `json:"events"`
	RegisterMisses uint64 `json:"register_misses"`
	OutOfPhase     uint64 `json:"out_of_phase"`
	DetachError    string `json:"detach_error,omitempty"`
	Err            error  `json:"-"`
}

// Controller owns one target's tracing relationship: attach, the
// syscall stop loop and the final detach. It is not safe for concurrent
// use and must run on a locked OS thread.
type Controller struct {
	acc     Accessor
	decoder *Decoder
	traced  func(uint64) bool
	state   ControllerState
	now     func() time.Time
	logger  *log.Entry
}

func NewController(acc Accessor, opt TraceOpt) *Controller {
	return &Controller{
		acc:     acc,
		decoder: NewDecoder(acc, opt.maxStringLen()),
		traced:  opt.tracedFilter(),
		state:   StateDetached,
		now:     time.Now,
		logger: log.WithFields(log.Fields{
			"app": "fstrace",
			"com": "controller",
			"pid": acc.PID(),
		}),
	}
}

func (c *Controller) State() ControllerState {
	return c.state
}

// Attach leaves the controller Detached on failure.
func (c *Controller) Attach() error {
	logger := c.logger.WithField("op", "ptrace.Controller.Attach")
	if c.state != StateDetached {
		return fmt.Errorf("ptrace: attach in state %q", c.state)
	}

	if err := c.acc.Attach(); err != nil {
		logger.Debugf("attach error - %v", err)
		return err
	}

	c.state = StateAttached
	logger.Debug("attached")
	return nil
}

// Monitor runs the syscall stop loop until the target exits, the context
// is canceled or a control call fails. The target is detached exactly
// once on every path out of the loop. A non-nil error is only returned
// for hard failures; the result is always set.
func (c *Controller) Monitor(ctx context.Context, sink EventSink) (*SessionResult, error) {
	logger := c.logger.WithField("op", "ptrace.Controller.Monitor")
	result := &SessionResult{PID: c.acc.PID()}

	if c.state != StateAttached {
		result.Reason = ReasonFailed
		result.Err = fmt.Errorf("ptrace: monitor in state %q", c.state)
		return result, result.Err
	}

	c.state = StateRunning
	logger.Debug("call")
	defer logger.Debug("exit")

	defer func() {
		if err := c.acc.Detach(); err != nil {
			logger.Warnf("detach error - %v", err)
			result.DetachError = err.Error()
		}
		c.state = StateTerminated
	}()

	stopWatcher := c.watchCancel(ctx)
	defer stopWatcher()

	err := c.loop(sink, result)
	switch {
	case errors.Is(err, ErrProcessExited):
		result.Reason = ReasonProcessExited
		logger.Debug("target process exited")
		return result, nil
	case errors.Is(err, ErrInterrupted):
		result.Reason = ReasonInterrupted
		logger.Debug("interrupted")
		return result, nil
	default:
		result.Reason = ReasonFailed
		result.Err = serrors.SE("ptrace.Controller.Monitor", "call.error", err)
		logger.Errorf("loop error - %v", err)
		return result, result.Err
	}
}

// Each syscall produces an entry stop and an exit stop. The first resume
// of an iteration lands on the entry stop (arguments are still intact),
// the second one moves past the matching exit stop.
func (c *Controller) loop(sink EventSink, result *SessionResult) error {
	logger := c.logger.WithField("op", "ptrace.Controller.loop")
	for {
		if err := c.acc.ResumeUntilSyscallStop(); err != nil {
			return err
		}
		result.Stops++

		snap, ok := c.acc.ReadRegisters()
		switch {
		case !ok:
			result.RegisterMisses++
			logger.Debug("register read failed (skipping stop)")
		case !snap.AtSyscallEntry():
			//landed on an exit stop: the next stop is an entry
			result.OutOfPhase++
			logger.Debugf("out of phase stop (nr=%d rax=%#x) - resyncing", snap.CallNumber(), snap.ReturnValue())
			continue
		default:
			if c.traced(snap.CallNumber()) {
				c.emit(sink, snap)
				result.Events++
			}
		}

		if err := c.acc.ResumeUntilSyscallStop(); err != nil {
			return err
		}
		result.Stops++
	}
}

func (c *Controller) emit(sink EventSink, snap RegisterSnapshot) {
	name := system.CallName(snap.CallNumber())
	event := FileAccessEvent{
		Time:     c.now(),
		PID:      c.acc.PID(),
		CallNum:  snap.CallNumber(),
		CallName: name,
		Args:     c.decoder.Decode(snap, name),
	}

	c.logger.Tracef("event %s %+v", name, event.Args)
	if sink != nil {
		sink.Emit(event)
	}
}

// watchCancel interrupts the target when ctx is canceled. The returned
// func stops the watcher and waits for it to exit.
func (c *Controller) watchCancel(ctx context.Context) func() {
	doneCh := make(chan struct{})
	exitedCh := make(chan struct{})
	go func() {
		defer close(exitedCh)
		select {
		case <-ctx.Done():
			c.logger.Debug("context canceled - interrupting target")
			c.acc.Interrupt()
		case <-doneCh:
		}
	}()

	return func() {
		close(doneCh)
		<-exitedCh
	}
}
