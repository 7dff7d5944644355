package ptrace

import (
	"context"
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
)

type Monitor interface {
	// Start attaches to the target and starts the long running tracing
	// loop. It blocks only until the attach is confirmed (or failed).
	// The method is not reentrant!
	Start() error

	// Cancel interrupts the tracing loop but doesn't make the monitor done
	// immediately. You still need to await the final detach with
	// <-mon.Done() before accessing the status.
	Cancel()

	// With Done clients can await for the monitoring completion.
	// The method is reentrant - every invocation returns the same
	// instance of the channel.
	Done() <-chan struct{}

	Status() (*SessionResult, error)
}

type status struct {
	result *SessionResult
	err    error
}

type monitor struct {
	ctx    context.Context
	cancel context.CancelFunc

	acc  Accessor
	opt  TraceOpt
	sink EventSink

	stateCh chan ControllerState

	status status
	doneCh chan struct{}

	logger *log.Entry
}

func NewMonitor(ctx context.Context, opt TraceOpt, sink EventSink) Monitor {
	return NewMonitorWithAccessor(ctx, NewTracee(opt.PID), opt, sink)
}

func NewMonitorWithAccessor(
	ctx context.Context,
	acc Accessor,
	opt TraceOpt,
	sink EventSink,
) Monitor {
	logger := log.WithFields(log.Fields{
		"app": "fstrace",
		"com": "ptmon",
		"pid": acc.PID(),
	})

	ctx, cancel := context.WithCancel(ctx)
	return &monitor{
		ctx:    ctx,
		cancel: cancel,

		acc:  acc,
		opt:  opt,
		sink: sink,

		stateCh: make(chan ControllerState, 1),

		doneCh: make(chan struct{}),
		logger: logger,
	}
}

func (m *monitor) Start() error {
	logger := m.logger.WithField("op", "ptrace.monitor.Start")
	logger.Debug("call")
	defer logger.Debug("exit")

	go m.trace()

	state := <-m.stateCh
	logger.WithField("state", state).Debug("controller state")
	if state != StateAttached {
		<-m.doneCh
		return m.status.err
	}

	return nil
}

func (m *monitor) trace() {
	logger := m.logger.WithField("op", "ptrace.monitor.trace")
	logger.Debug("call")
	defer logger.Debug("exit")

	defer close(m.doneCh)

	//IMPORTANT:
	//all ptrace calls must come from the thread that attached
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctrl := NewController(m.acc, m.opt)
	if err := ctrl.Attach(); err != nil {
		m.status.err = err
		m.stateCh <- ctrl.State()
		return
	}

	m.stateCh <- ctrl.State()

	result, err := ctrl.Monitor(m.ctx, m.sink)
	m.status.result = result
	m.status.err = err

	if result != nil && result.DetachError != "" {
		logger.Warnf("detach failed - %s", result.DetachError)
	}

	logger.Debugf("done - %s", describeResult(result))
}

func (m *monitor) Cancel() {
	m.cancel()
}

func (m *monitor) Done() <-chan struct{} {
	return m.doneCh
}

func (m *monitor) Status() (*SessionResult, error) {
	return m.status.result, m.status.err
}

func describeResult(r *SessionResult) string {
	if r == nil {
		return "no result"
	}

	return fmt.Sprintf("reason=%s stops=%d events=%d register.misses=%d out.of.phase=%d",
		r.Reason, r.Stops, r.Events, r.RegisterMisses, r.OutOfPhase)
}
