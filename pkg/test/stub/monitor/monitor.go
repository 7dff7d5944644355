package monitor

import (
	"context"

	"github.com/slimtoolkit/fstrace/pkg/monitor/ptrace"
)

// ptrace monitor stub implements ptrace.Monitor
type PtMonitorStub struct {
	ctx      context.Context
	cancelFn context.CancelFunc

	StartErr error
	Result   *ptrace.SessionResult
	Err      error
}

var _ ptrace.Monitor = &PtMonitorStub{}

func NewPtMonitor(ctx context.Context) *PtMonitorStub {
	ctx, cancelFn := context.WithCancel(ctx)
	return &PtMonitorStub{
		ctx:      ctx,
		cancelFn: cancelFn,
	}
}

func (m *PtMonitorStub) Start() error {
	if m.StartErr != nil {
		m.cancelFn()
	}

	return m.StartErr
}

func (m *PtMonitorStub) Cancel() {
	m.cancelFn()
}

func (m *PtMonitorStub) Done() <-chan struct{} {
	return m.ctx.Done()
}

func (m *PtMonitorStub) Status() (*ptrace.SessionResult, error) {
	return m.Result, m.Err
}
