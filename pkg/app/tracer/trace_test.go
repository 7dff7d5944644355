package tracer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slimtoolkit/fstrace/pkg/app"
	"github.com/slimtoolkit/fstrace/pkg/app/tracer/config"
	"github.com/slimtoolkit/fstrace/pkg/monitor/ptrace"
	"github.com/slimtoolkit/fstrace/pkg/system"
	stubmonitor "github.com/slimtoolkit/fstrace/pkg/test/stub/monitor"
)

const atFDCWD = uint64(0xffffffffffffff9c)

type handlerRun struct {
	status *bytes.Buffer
	stdout *bytes.Buffer
	acc    *stubmonitor.AccessorStub
	err    error
}

func runHandler(t *testing.T, cfg *config.TraceConfig, setup func(acc *stubmonitor.AccessorStub)) *handlerRun {
	t.Helper()
	if !system.IsSupportedArch(system.HostArch()) {
		t.Skip("tracing is not supported on this architecture")
	}

	color.NoColor = true
	run := &handlerRun{
		status: &bytes.Buffer{},
		stdout: &bytes.Buffer{},
	}

	xc := app.NewExecutionContext(TraceCmdName, run.status)
	h := newTraceHandler(xc, cfg, run.stdout)
	h.watchSignals = false
	h.newMonitor = func(ctx context.Context, opt ptrace.TraceOpt, sink ptrace.EventSink) ptrace.Monitor {
		run.acc = stubmonitor.NewAccessor(opt.PID)
		if setup != nil {
			setup(run.acc)
		}

		return ptrace.NewMonitorWithAccessor(ctx, run.acc, opt, sink)
	}

	run.err = h.run(context.Background())
	return run
}

func selfConfig(t *testing.T) *config.TraceConfig {
	cfg := config.New()
	cfg.PID = os.Getpid()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestTraceHandler_Session(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "traced")
	require.NoError(t, err)
	defer f.Close()
	fd := uint64(f.Fd())

	cfg := selfConfig(t)
	cfg.ReportLocation = filepath.Join(t.TempDir(), "report.json")

	run := runHandler(t, cfg, func(acc *stubmonitor.AccessorStub) {
		acc.Stops = append(acc.Stops, stubmonitor.Syscall(system.SyscallOpenat, atFDCWD, 0x1000, 0o100101, 0o644)...)
		acc.Stops = append(acc.Stops, stubmonitor.Syscall(system.SyscallWrite, fd, 0x2000, 42)...)
		acc.Stops = append(acc.Stops, stubmonitor.Syscall(system.SyscallClose, fd)...)
		acc.Memory[0x1000] = "/tmp/out.txt"
	})
	require.NoError(t, run.err)

	out := run.stdout.String()
	assert.Contains(t, strings.ToLower(out), "process details")
	assert.Contains(t, out, "OPEN: /tmp/out.txt\n  Flags: O_WRONLY|O_CREAT|O_LARGEFILE\n  Mode: 0644\n")
	assert.Contains(t, out, "WRITE: "+f.Name())
	assert.Contains(t, out, "Bytes written: 42")
	assert.Contains(t, out, "CLOSE: "+f.Name())
	assert.Contains(t, strings.ToLower(out), "syscall summary")
	assert.Contains(t, out, "process.exited")

	assert.Contains(t, run.status.String(), "state=attached")
	assert.NotContains(t, run.status.String(), "info=filter")
	assert.Contains(t, run.status.String(), "state=target.exited")
	assert.Equal(t, 1, run.acc.DetachCalls)

	data, err := os.ReadFile(cfg.ReportLocation)
	require.NoError(t, err)

	var saved struct {
		SessionID string `json:"session_id"`
		Monitor   struct {
			SyscallCount uint64 `json:"syscall_count"`
		} `json:"monitor"`
		Session struct {
			Reason string `json:"reason"`
			Events uint64 `json:"events"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.NotEmpty(t, saved.SessionID)
	assert.Equal(t, uint64(3), saved.Monitor.SyscallCount)
	assert.Equal(t, "process.exited", saved.Session.Reason)
	assert.Equal(t, uint64(3), saved.Session.Events)
}

func TestTraceHandler_JSON(t *testing.T) {
	cfg := selfConfig(t)
	cfg.OutputFormat = config.OutputFormatJSON
	cfg.Syscalls = []string{"open"}
	cfg.ExcludePrefixes = []string{"/proc"}

	run := runHandler(t, cfg, func(acc *stubmonitor.AccessorStub) {
		acc.Stops = append(acc.Stops, stubmonitor.Syscall(system.SyscallOpen, 0x1000, 0, 0)...)
		acc.Stops = append(acc.Stops, stubmonitor.Syscall(system.SyscallRead, 0, 0x2000, 1)...)
		acc.Memory[0x1000] = "/etc/hosts"
	})
	require.NoError(t, run.err)

	lines := strings.Split(strings.TrimSpace(run.stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"t":"h"`)
	assert.Contains(t, lines[1], `"a":"/etc/hosts"`)
	assert.Contains(t, lines[2], `"t":"s"`)

	for _, line := range lines {
		assert.True(t, json.Valid([]byte(line)), line)
	}

	assert.Contains(t, run.status.String(), "info=filter exclude='/proc' include=''")
}

func TestTraceHandler_AttachDenied(t *testing.T) {
	run := runHandler(t, selfConfig(t), func(acc *stubmonitor.AccessorStub) {
		acc.AttachErr = &ptrace.AttachError{PID: acc.Pid, Reason: ptrace.AttachPermissionDenied}
	})

	assert.ErrorIs(t, run.err, ErrTraceFailed)
	assert.Contains(t, run.status.String(), "permission denied. Try running with sudo.")
	assert.Zero(t, run.acc.DetachCalls)
}

func TestTraceHandler_NoSuchProcess(t *testing.T) {
	cfg := config.New()
	cfg.PID = 1 << 30

	run := runHandler(t, cfg, nil)
	assert.ErrorIs(t, run.err, ErrTraceFailed)
	assert.Contains(t, run.status.String(), "not found")
	assert.Nil(t, run.acc)
}

func runStubMonitor(t *testing.T, mon *stubmonitor.PtMonitorStub) (*bytes.Buffer, error) {
	t.Helper()
	if !system.IsSupportedArch(system.HostArch()) {
		t.Skip("tracing is not supported on this architecture")
	}

	color.NoColor = true
	status := &bytes.Buffer{}
	xc := app.NewExecutionContext(TraceCmdName, status)
	h := newTraceHandler(xc, selfConfig(t), &bytes.Buffer{})
	h.watchSignals = false
	h.newMonitor = func(context.Context, ptrace.TraceOpt, ptrace.EventSink) ptrace.Monitor {
		return mon
	}

	return status, h.run(context.Background())
}

func TestTraceHandler_Interrupted(t *testing.T) {
	mon := stubmonitor.NewPtMonitor(context.Background())
	mon.Result = &ptrace.SessionResult{PID: os.Getpid(), Reason: ptrace.ReasonInterrupted}
	mon.Cancel()

	status, err := runStubMonitor(t, mon)
	require.NoError(t, err)
	assert.Contains(t, status.String(), "state=detached")
}

func TestTraceHandler_LoopFailure(t *testing.T) {
	loopErr := errors.New("wait4 failed")
	mon := stubmonitor.NewPtMonitor(context.Background())
	mon.Result = &ptrace.SessionResult{PID: os.Getpid(), Reason: ptrace.ReasonFailed, DetachError: "no such process"}
	mon.Err = loopErr
	mon.Cancel()

	status, err := runStubMonitor(t, mon)
	assert.ErrorIs(t, err, loopErr)
	assert.Contains(t, status.String(), "wait4 failed")
	assert.Contains(t, status.String(), "warning='no such process'")
	assert.Contains(t, status.String(), "state=failed code=1")
}

func TestTraceHandler_StartFailure(t *testing.T) {
	mon := stubmonitor.NewPtMonitor(context.Background())
	mon.StartErr = errors.New("attach failed")

	status, err := runStubMonitor(t, mon)
	assert.ErrorIs(t, err, ErrTraceFailed)
	assert.Contains(t, status.String(), "attach failed")
}
