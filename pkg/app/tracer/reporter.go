package tracer

import (
	log "github.com/sirupsen/logrus"

	"github.com/slimtoolkit/fstrace/pkg/fdresolve"
	"github.com/slimtoolkit/fstrace/pkg/monitor/ptrace"
	"github.com/slimtoolkit/fstrace/pkg/pathfilter"
	"github.com/slimtoolkit/fstrace/pkg/report"
	"github.com/slimtoolkit/fstrace/pkg/system"
)

const unknownPath = "unknown"

type fdResolver interface {
	Resolve(fd int) fdresolve.Target
}

// EventReporter turns the traced syscalls into reported file access
// records. It runs on the tracing thread, so the target is still stopped
// at the syscall entry while its descriptors are resolved.
type EventReporter struct {
	target   *report.ProcessInfo
	resolver fdResolver
	filter   *pathfilter.Filter
	stats    *report.MonitorStats
	printer  Printer
	seq      uint64
	logger   *log.Entry
}

var _ ptrace.EventSink = (*EventReporter)(nil)

func NewEventReporter(
	target *report.ProcessInfo,
	resolver fdResolver,
	filter *pathfilter.Filter,
	stats *report.MonitorStats,
	printer Printer,
) *EventReporter {
	return &EventReporter{
		target:   target,
		resolver: resolver,
		filter:   filter,
		stats:    stats,
		printer:  printer,
		logger: log.WithFields(log.Fields{
			"app": "fstrace",
			"com": "reporter",
		}),
	}
}

func (r *EventReporter) Emit(event ptrace.FileAccessEvent) {
	r.stats.AddCall(event.CallNum, event.CallName)

	rec := r.newRecord(event)
	if !r.filter.Match(rec.Path) {
		r.logger.WithField("op", "tracer.EventReporter.Emit").Tracef("filtered %s %s", rec.Op, rec.Path)
		r.stats.AddFiltered()
		return
	}

	r.seq++
	rec.SeqNumber = r.seq
	r.stats.AddActivity(rec)
	if r.printer != nil {
		r.printer.PrintEvent(rec)
	}
}

func (r *EventReporter) newRecord(event ptrace.FileAccessEvent) *report.EventRecord {
	rec := &report.EventRecord{
		Type:      report.RecordTypeEvent,
		Timestamp: event.Time,
		Pid:       event.PID,
		OpType:    report.OpType(event.CallName),
		Op:        event.CallName,
		OpNum:     event.CallNum,
		Path:      unknownPath,
		Args:      event.Args,
	}

	if r.target != nil {
		rec.Process = r.target.Name
		rec.User = r.target.User
	}

	switch event.CallName {
	case system.CallNameOpen, system.CallNameOpenat:
		if name, ok := event.Args.String(system.ArgFilename); ok {
			rec.Path = name
		}

		flags, _ := event.Args.Int(system.ArgFlags)
		rec.Flags = system.FormatOpenFlags(flags)
		mode, _ := event.Args.Int(system.ArgMode)
		rec.Mode = system.FormatMode(mode)
	default:
		if fd, ok := event.Args.Int(system.ArgFD); ok && r.resolver != nil {
			//fd arguments are C ints
			target := r.resolver.Resolve(int(int32(fd)))
			rec.Target = &target
			rec.Path = target.String()
		}

		if count, ok := event.Args.Int(system.ArgCount); ok {
			rec.Count = &count
		}
	}

	return rec
}

func (r *EventReporter) Events() uint64 {
	return r.seq
}
