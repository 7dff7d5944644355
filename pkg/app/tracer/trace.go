package tracer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/segmentio/ksuid"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/slimtoolkit/fstrace/pkg/app"
	"github.com/slimtoolkit/fstrace/pkg/app/tracer/config"
	"github.com/slimtoolkit/fstrace/pkg/fdresolve"
	"github.com/slimtoolkit/fstrace/pkg/monitor/ptrace"
	"github.com/slimtoolkit/fstrace/pkg/pathfilter"
	"github.com/slimtoolkit/fstrace/pkg/pdiscover"
	"github.com/slimtoolkit/fstrace/pkg/report"
	"github.com/slimtoolkit/fstrace/pkg/sysenv"
	"github.com/slimtoolkit/fstrace/pkg/system"
	"github.com/slimtoolkit/fstrace/pkg/util/errutil"
	v "github.com/slimtoolkit/fstrace/pkg/version"
)

const (
	TraceCmdName  = "trace"
	TraceCmdUsage = "Trace the file access syscalls (open, openat, read, write, close) of a running process"
)

type ovars = app.OutVars

var ErrTraceFailed = errors.New("trace failed")

var TraceCommand = &cli.Command{
	Name:      TraceCmdName,
	Aliases:   []string{"t"},
	Usage:     TraceCmdUsage,
	ArgsUsage: "[PID]",
	Flags:     TraceFlags(),
	Action: func(ctx *cli.Context) error {
		cfg, err := TraceConfigFromContext(ctx)
		if err != nil {
			xc := app.NewExecutionContext(TraceCmdName, os.Stderr)
			xc.Out.Error("param", err.Error())
			xc.Exit(1)
			return nil
		}

		statusOut := io.Writer(os.Stdout)
		if cfg.OutputFormat == config.OutputFormatJSON {
			statusOut = os.Stderr
		}

		xc := app.NewExecutionContext(TraceCmdName, statusOut)
		h := newTraceHandler(xc, cfg, os.Stdout)
		if err := h.run(ctx.Context); err != nil {
			xc.Exit(1)
		}

		return nil
	},
}

type monitorFactory func(ctx context.Context, opt ptrace.TraceOpt, sink ptrace.EventSink) ptrace.Monitor

type traceHandler struct {
	xc           *app.ExecutionContext
	cfg          *config.TraceConfig
	stdout       io.Writer
	newMonitor   monitorFactory
	watchSignals bool
	logger       *log.Entry
}

func newTraceHandler(xc *app.ExecutionContext, cfg *config.TraceConfig, stdout io.Writer) *traceHandler {
	return &traceHandler{
		xc:           xc,
		cfg:          cfg,
		stdout:       stdout,
		newMonitor:   ptrace.NewMonitor,
		watchSignals: true,
		logger: log.WithFields(log.Fields{
			"app": "fstrace",
			"com": "tracer",
			"pid": cfg.PID,
		}),
	}
}

func (h *traceHandler) run(ctx context.Context) error {
	logger := h.logger.WithField("op", "tracer.traceHandler.run")
	logger.Debug("call")
	defer logger.Debug("exit")

	if ctx == nil {
		ctx = context.Background()
	}

	cfg := h.cfg
	xc := h.xc

	sysInfo := system.GetSystemInfo()
	arch := system.HostArch()
	if !system.IsSupportedArch(arch) {
		xc.Out.Error("platform", fmt.Sprintf("unsupported architecture %q (only %s is supported)", arch.Machine, system.SupportedArchName))
		return ErrTraceFailed
	}

	if err := pdiscover.Exists(cfg.PID); err != nil {
		switch {
		case errors.Is(err, pdiscover.ErrNoSuchProcess):
			xc.Out.Error("target", fmt.Sprintf("process %d not found", cfg.PID))
		case errors.Is(err, pdiscover.ErrPermissionDenied):
			xc.Out.Error("target", fmt.Sprintf("process %d is not accessible (permission denied). Try running with sudo.", cfg.PID))
		default:
			xc.Out.Error("target", fmt.Sprintf("process %d check failed - %v", cfg.PID, err))
		}

		return ErrTraceFailed
	}

	env := sysenv.Precheck(cfg.PID)
	for _, warning := range env.Warnings {
		xc.Out.Info("precheck", ovars{"warning": warning})
	}

	tr := report.NewTraceReport(cfg.ReportLocation)
	tr.SessionID = newSessionID()
	tr.Version = v.Current()
	tr.System = report.SystemReport{
		Type:    sysInfo.Sysname,
		Release: sysInfo.Release,
		Arch:    sysInfo.Machine,
	}
	tr.Env = env
	tr.Target = targetInfo(cfg.PID)

	filter, err := pathfilter.New(cfg.IncludePaths, cfg.ExcludePrefixes)
	if err != nil {
		xc.Out.Error("param", err.Error())
		return ErrTraceFailed
	}

	resolver, err := fdresolve.NewResolver(cfg.PID, fdresolve.WithMetadata(cfg.ShowMetadata))
	xc.FailOn(err)

	printer := NewPrinter(cfg.OutputFormat, h.stdout, cfg.ShowMetadata)
	stats := report.NewMonitorStats(string(arch.Name))
	reporter := NewEventReporter(tr.Target, resolver, filter, stats, printer)

	if !filter.IsEmpty() {
		xc.Out.Info("filter", ovars{
			"include": strings.Join(cfg.IncludePaths, ","),
			"exclude": strings.Join(cfg.ExcludePrefixes, ","),
		})
	}

	xc.Out.Info("target", ovars{
		"pid":     cfg.PID,
		"name":    tr.Target.Name,
		"session": tr.SessionID,
	})
	printer.PrintHeader(tr)

	opt := ptrace.TraceOpt{
		PID:          cfg.PID,
		MaxStringLen: cfg.MaxStringLen,
		Syscalls:     cfg.Syscalls,
	}

	mon := h.newMonitor(ctx, opt, reporter)
	if h.watchSignals {
		stopSignals := startSystemSignalsMonitor(mon.Cancel)
		defer stopSignals()
	}

	startTime := time.Now()
	if err := mon.Start(); err != nil {
		logger.Debugf("mon.Start error - %v", err)
		switch {
		case ptrace.IsPermissionDenied(err):
			xc.Out.Error("attach", "permission denied. Try running with sudo.")
		case ptrace.IsNoSuchProcess(err):
			xc.Out.Error("attach", fmt.Sprintf("process %d not found", cfg.PID))
		default:
			xc.Out.Error("attach", err.Error())
		}

		xc.Out.State("failed", ovars{"exit.code": 1})
		return ErrTraceFailed
	}

	xc.Out.State("attached", ovars{"pid": cfg.PID})
	xc.Out.Message("press Ctrl+C to stop")

	<-mon.Done()
	result, monErr := mon.Status()

	tr.Monitor = stats.Report()
	tr.Session = sessionReport(result, monErr, startTime, time.Now())
	tr.Session.Events = reporter.Events()

	if cfg.ShowSummary {
		printer.PrintSummary(tr)
	}

	if saved, err := tr.Save(); err != nil {
		errutil.WarnOn(err)
		xc.Out.Error("report", err.Error())
	} else if saved {
		xc.Out.Info("report", ovars{"file": tr.ReportLocation()})
	}

	if result != nil && result.DetachError != "" {
		xc.Out.Info("detach", ovars{"warning": result.DetachError})
	}

	if monErr != nil {
		xc.Out.Error("trace", monErr.Error())
		xc.Out.State("failed", ovars{"exit.code": 1})
		return monErr
	}

	state := "detached"
	if result != nil && result.Reason == ptrace.ReasonProcessExited {
		state = "target.exited"
	}

	xc.Out.State(state, ovars{"pid": cfg.PID})
	return nil
}

func targetInfo(pid int) *report.ProcessInfo {
	info := &report.ProcessInfo{
		Pid:  pid,
		Name: pdiscover.UnknownField,
		User: pdiscover.UnknownField,
		Cmd:  pdiscover.UnknownField,
		Cwd:  pdiscover.UnknownField,
	}

	pinfo, err := pdiscover.Lookup(pid)
	if err != nil {
		log.WithField("op", "tracer.targetInfo").Debugf("pdiscover.Lookup(%d) error - %v", pid, err)
		return info
	}

	info.Name = pinfo.Name
	info.User = pinfo.User
	info.Cmd = pinfo.Cmdline
	info.Cwd = pinfo.Cwd
	info.Path = pinfo.Exe
	info.StartTime = pinfo.StartTime
	return info
}

func sessionReport(result *ptrace.SessionResult, err error, start, end time.Time) *report.SessionReport {
	sr := &report.SessionReport{
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start).Round(time.Millisecond).String(),
	}

	if result != nil {
		sr.Reason = string(result.Reason)
		sr.Stops = result.Stops
		sr.RegisterMisses = result.RegisterMisses
		sr.OutOfPhase = result.OutOfPhase
		sr.DetachError = result.DetachError
	}

	if err != nil {
		sr.Error = err.Error()
		if sr.Reason == "" {
			sr.Reason = string(ptrace.ReasonFailed)
		}
	}

	return sr
}

func newSessionID() string {
	id, err := ksuid.NewRandom()
	if err != nil {
		log.WithField("op", "tracer.newSessionID").WithError(err).Error("ksuid.NewRandom")
		return fmt.Sprintf("%v%v", time.Now().UTC().UnixNano(), os.Getpid())
	}

	return id.String()
}
