package ptrace_test

import (
	"context"
	"errors"
	"testing"
	"time"

	serrors "github.com/slimtoolkit/fstrace/pkg/errors"
	"github.com/slimtoolkit/fstrace/pkg/monitor/ptrace"
	"github.com/slimtoolkit/fstrace/pkg/system"
	stubmonitor "github.com/slimtoolkit/fstrace/pkg/test/stub/monitor"
	testutil "github.com/slimtoolkit/fstrace/pkg/test/util"
)

func TestMonitor_RunsToExit(t *testing.T) {
	acc := stubmonitor.NewAccessor(42,
		stubmonitor.Syscall(system.SyscallClose, 3),
		stubmonitor.Syscall(system.SyscallClose, 4),
	)

	sink := &collector{}
	mon := ptrace.NewMonitorWithAccessor(context.Background(), acc, ptrace.TraceOpt{PID: 42}, sink)
	if err := mon.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	select {
	case <-mon.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("monitor must be done by this time")
	}

	result, err := mon.Status()
	if err != nil {
		t.Fatalf("unexpected status error: %v", err)
	}
	if result.Reason != ptrace.ReasonProcessExited {
		t.Errorf("unexpected reason: %s", result.Reason)
	}
	if result.Events != 2 || len(sink.events) != 2 {
		t.Errorf("unexpected events: %d/%d", result.Events, len(sink.events))
	}
}

func TestMonitor_Cancel(t *testing.T) {
	acc := stubmonitor.NewAccessor(42, stubmonitor.Syscall(system.SyscallClose, 3))
	acc.BlockAtEnd = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mon := ptrace.NewMonitorWithAccessor(ctx, acc, ptrace.TraceOpt{PID: 42}, nil)
	if err := mon.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	select {
	case <-mon.Done():
		t.Fatal("monitor must not be done yet")
	default:
	}

	go testutil.Delayed(ctx, 50*time.Millisecond, mon.Cancel)

	select {
	case <-mon.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("monitor must be done by this time")
	}

	select {
	case <-mon.Done():
	default:
		t.Fatal("monitor Done() method must be reentrant")
	}

	result, err := mon.Status()
	if err != nil {
		t.Fatalf("unexpected status error: %v", err)
	}
	if result.Reason != ptrace.ReasonInterrupted {
		t.Errorf("unexpected reason: %s", result.Reason)
	}
	if acc.DetachCalls != 1 {
		t.Errorf("unexpected detach calls: %d", acc.DetachCalls)
	}
}

func TestMonitor_AttachFailure(t *testing.T) {
	acc := stubmonitor.NewAccessor(42)
	acc.AttachErr = &ptrace.AttachError{PID: 42, Reason: ptrace.AttachNoSuchProcess}

	mon := ptrace.NewMonitorWithAccessor(context.Background(), acc, ptrace.TraceOpt{PID: 42}, nil)
	err := mon.Start()
	if !ptrace.IsNoSuchProcess(err) {
		t.Fatalf("unexpected start error: %v", err)
	}

	select {
	case <-mon.Done():
	default:
		t.Fatal("monitor must be done after a failed attach")
	}

	if acc.DetachCalls != 0 {
		t.Errorf("unexpected detach calls: %d", acc.DetachCalls)
	}
}

func TestMonitor_LoopFailureWrappedOnce(t *testing.T) {
	boom := errors.New("ptrace: EIO")
	acc := stubmonitor.NewAccessor(42, []stubmonitor.Stop{{Err: boom}})

	mon := ptrace.NewMonitorWithAccessor(context.Background(), acc, ptrace.TraceOpt{PID: 42}, nil)
	if err := mon.Start(); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	<-mon.Done()

	result, err := mon.Status()
	if !errors.Is(err, boom) {
		t.Fatalf("unexpected status error: %v", err)
	}
	if result.Reason != ptrace.ReasonFailed {
		t.Errorf("unexpected reason: %s", result.Reason)
	}

	var te *serrors.TraceError
	if !errors.As(err, &te) {
		t.Fatalf("expected a TraceError, got %T", err)
	}
	if te.Op != "ptrace.Controller.Monitor" || te.Next != nil {
		t.Errorf("error must be wrapped exactly once: %v", err)
	}
}
