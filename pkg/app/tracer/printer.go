package tracer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	log "github.com/sirupsen/logrus"

	"github.com/slimtoolkit/fstrace/pkg/fdresolve"
	"github.com/slimtoolkit/fstrace/pkg/report"
	"github.com/slimtoolkit/fstrace/pkg/util/jsonutil"
)

const (
	eventTimeFormat = "15:04:05"
	topPathsLimit   = 10
)

type Printer interface {
	PrintHeader(tr *report.TraceReport)
	PrintEvent(rec *report.EventRecord)
	PrintSummary(tr *report.TraceReport)
}

func NewPrinter(format string, w io.Writer, showMetadata bool) Printer {
	if format == "json" {
		return &jsonPrinter{w: w}
	}

	return &textPrinter{w: w, showMetadata: showMetadata}
}

var (
	tscolor  = color.New(color.FgHiBlack).SprintFunc()
	pcolor   = color.New(color.FgHiWhite, color.Bold).SprintFunc()
	dcolor   = color.New(color.FgWhite).SprintFunc()
	opColors = map[string]func(a ...interface{}) string{
		report.OpTypeOpen:  color.New(color.FgGreen, color.Bold).SprintFunc(),
		report.OpTypeRead:  color.New(color.FgBlue, color.Bold).SprintFunc(),
		report.OpTypeWrite: color.New(color.FgYellow, color.Bold).SprintFunc(),
		report.OpTypeClose: color.New(color.FgMagenta, color.Bold).SprintFunc(),
	}
)

type textPrinter struct {
	w            io.Writer
	showMetadata bool
}

func (p *textPrinter) PrintHeader(tr *report.TraceReport) {
	tw := table.NewWriter()
	tw.SetTitle("Process details")
	tw.AppendRow(table.Row{"Session", tr.SessionID})
	if t := tr.Target; t != nil {
		tw.AppendRows([]table.Row{
			{"PID", t.Pid},
			{"Name", t.Name},
			{"User", t.User},
			{"Command", t.Cmd},
			{"Working Dir", t.Cwd},
			{"Started", formatStartTime(t.StartTime)},
		})
	}

	tw.SetStyle(table.StyleLight)
	fmt.Fprintf(p.w, "%s\n", tw.Render())
}

func formatStartTime(ts time.Time) string {
	if ts.IsZero() {
		return "unknown"
	}

	return fmt.Sprintf("%s (%s)", ts.Format(time.RFC3339), humanize.Time(ts))
}

func (p *textPrinter) PrintEvent(rec *report.EventRecord) {
	opColor, ok := opColors[rec.OpType]
	if !ok {
		opColor = fmt.Sprint
	}

	fmt.Fprintf(p.w, "%s %s(%d)[%s] %s: %s\n",
		tscolor("["+rec.Timestamp.Format(eventTimeFormat)+"]"),
		rec.Process, rec.Pid, rec.User,
		opColor(strings.ToUpper(opName(rec.OpType))),
		pcolor(rec.Path))

	switch rec.OpType {
	case report.OpTypeOpen:
		fmt.Fprintf(p.w, "  Flags: %s\n", dcolor(rec.Flags))
		fmt.Fprintf(p.w, "  Mode: %s\n", dcolor(rec.Mode))
	case report.OpTypeRead:
		if rec.Count != nil {
			fmt.Fprintf(p.w, "  Bytes requested: %s\n", dcolor(*rec.Count))
		}
	case report.OpTypeWrite:
		if rec.Count != nil {
			fmt.Fprintf(p.w, "  Bytes written: %s\n", dcolor(*rec.Count))
		}
	}

	if p.showMetadata && rec.Target != nil {
		if line := metaLine(rec.Target); line != "" {
			fmt.Fprintf(p.w, "  %s\n", dcolor(line))
		}
	}
}

func opName(opType string) string {
	switch opType {
	case report.OpTypeOpen:
		return "open"
	case report.OpTypeRead:
		return "read"
	case report.OpTypeWrite:
		return "write"
	case report.OpTypeClose:
		return "close"
	default:
		return "other"
	}
}

func metaLine(target *fdresolve.Target) string {
	switch {
	case target.Meta != nil:
		m := target.Meta
		line := fmt.Sprintf("Owner: %s:%s  Permissions: %s  Size: %s  Modified: %s",
			m.Owner, m.Group, m.Perm, m.HumanSz, m.HumanAge)
		if target.Deleted {
			line += "  (deleted)"
		}
		return line
	case target.Socket != nil && target.Socket.State != "":
		return fmt.Sprintf("State: %s", target.Socket.State)
	default:
		return ""
	}
}

func (p *textPrinter) PrintSummary(tr *report.TraceReport) {
	if tr.Monitor == nil {
		return
	}

	tw := table.NewWriter()
	tw.SetTitle("Syscall summary")
	tw.AppendHeader(table.Row{"Syscall", "Number", "Count"})
	for _, info := range tr.Monitor.SortedSyscallStats() {
		tw.AppendRow(table.Row{info.Name, info.Number, info.Count})
	}
	tw.AppendFooter(table.Row{"Total", "", tr.Monitor.SyscallCount})
	tw.SetStyle(table.StyleLight)
	fmt.Fprintf(p.w, "%s\n", tw.Render())

	if top := tr.Monitor.TopPaths(topPathsLimit); len(top) > 0 {
		pw := table.NewWriter()
		pw.SetTitle("Top paths")
		pw.AppendHeader(table.Row{"Path", "Ops", "Open", "Read", "Write", "Close", "Requested", "Written"})
		for _, pa := range top {
			pw.AppendRow(table.Row{
				pa.Path,
				pa.OpsAll,
				pa.Opens,
				pa.Reads,
				pa.Writes,
				pa.Closes,
				humanize.IBytes(pa.BytesRead),
				humanize.IBytes(pa.BytesWrite),
			})
		}
		pw.SetStyle(table.StyleLight)
		fmt.Fprintf(p.w, "%s\n", pw.Render())
	}

	if s := tr.Session; s != nil {
		fmt.Fprintf(p.w, "Session %s: %s after %s (%d events reported, %d filtered)\n",
			tr.SessionID, s.Reason, s.Duration, s.Events, tr.Monitor.FilteredCount)
	}
}

type jsonPrinter struct {
	w io.Writer
}

type headerRecord struct {
	Type      string              `json:"t"`
	SessionID string              `json:"session_id"`
	Version   string              `json:"version"`
	Target    *report.ProcessInfo `json:"target"`
}

type summaryRecord struct {
	Type   string              `json:"t"`
	Report *report.TraceReport `json:"report"`
}

func (p *jsonPrinter) PrintHeader(tr *report.TraceReport) {
	p.write(&headerRecord{
		Type:      report.RecordTypeHeader,
		SessionID: tr.SessionID,
		Version:   tr.Version,
		Target:    tr.Target,
	})
}

func (p *jsonPrinter) PrintEvent(rec *report.EventRecord) {
	p.write(rec)
}

func (p *jsonPrinter) PrintSummary(tr *report.TraceReport) {
	p.write(&summaryRecord{
		Type:   report.RecordTypeSummary,
		Report: tr,
	})
}

func (p *jsonPrinter) write(record interface{}) {
	if err := jsonutil.WriteLine(p.w, record); err != nil {
		log.WithField("op", "tracer.jsonPrinter.write").Debugf("jsonutil.WriteLine error - %v", err)
	}
}
