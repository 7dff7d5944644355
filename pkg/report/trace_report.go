package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/slimtoolkit/fstrace/pkg/sysenv"
	"github.com/slimtoolkit/fstrace/pkg/util/fsutil"
	"github.com/slimtoolkit/fstrace/pkg/util/jsonutil"
)

// DefaultTraceReportFileName is the default trace report file name
const DefaultTraceReportFileName = "fstrace.report.json"

// ProcessInfo contains various process object metadata
type ProcessInfo struct {
	Pid       int       `json:"pid"`
	Name      string    `json:"name"`
	User      string    `json:"user"`
	Cmd       string    `json:"cmd"`
	Cwd       string    `json:"cwd"`
	Path      string    `json:"path,omitempty"`
	StartTime time.Time `json:"start_time"`
}

// SyscallStatInfo contains various system call activity metadata
type SyscallStatInfo struct {
	Number uint32 `json:"num"`
	Name   string `json:"name"`
	Count  uint64 `json:"count"`
}

// FSActivityInfo contains the per path file activity counters
type FSActivityInfo struct {
	OpsAll     uint64 `json:"ops_all"`
	Opens      uint64 `json:"opens,omitempty"`
	Reads      uint64 `json:"reads,omitempty"`
	Writes     uint64 `json:"writes,omitempty"`
	Closes     uint64 `json:"closes,omitempty"`
	BytesRead  uint64 `json:"bytes_requested,omitempty"`
	BytesWrite uint64 `json:"bytes_written,omitempty"`
}

// TraceMonitorReport contains the syscall activity of a trace session
type TraceMonitorReport struct {
	ArchName      string                     `json:"arch_name"`
	SyscallCount  uint64                     `json:"syscall_count"`
	SyscallNum    uint32                     `json:"syscall_num"`
	FilteredCount uint64                     `json:"filtered_count"`
	SyscallStats  map[string]SyscallStatInfo `json:"syscall_stats"`
	FSActivity    map[string]*FSActivityInfo `json:"fs_activity"`
}

// SessionReport describes how the trace session ended
type SessionReport struct {
	Reason         string    `json:"reason"`
	Error          string    `json:"error,omitempty"`
	DetachError    string    `json:"detach_error,omitempty"`
	Stops          uint64    `json:"stops"`
	Events         uint64    `json:"events"`
	RegisterMisses uint64    `json:"register_misses"`
	OutOfPhase     uint64    `json:"out_of_phase"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Duration       string    `json:"duration"`
}

// SystemReport provides a basic system report for the tracing host
type SystemReport struct {
	Type    string `json:"type"`
	Release string `json:"release"`
	Arch    string `json:"arch"`
}

// TraceReport is the complete trace session report
type TraceReport struct {
	reportLocation string
	SessionID      string              `json:"session_id"`
	Version        string              `json:"version"`
	System         SystemReport        `json:"system"`
	Target         *ProcessInfo        `json:"target"`
	Env            *sysenv.TraceEnv    `json:"env,omitempty"`
	Monitor        *TraceMonitorReport `json:"monitor"`
	Session        *SessionReport      `json:"session,omitempty"`
}

// NewTraceReport creates a new trace report
func NewTraceReport(reportLocation string) *TraceReport {
	return &TraceReport{
		reportLocation: reportLocation,
	}
}

func (p *TraceReport) ReportLocation() string {
	return p.reportLocation
}

// Save saves the report data to the configured location.
// It returns false when no location is configured.
func (p *TraceReport) Save() (bool, error) {
	if p.reportLocation == "" {
		return false, nil
	}

	dirName := filepath.Dir(p.reportLocation)
	baseName := filepath.Base(p.reportLocation)
	if baseName == "." || baseName == string(filepath.Separator) {
		return false, fmt.Errorf("bad report location: %q", p.reportLocation)
	}

	if dirName != "." && !fsutil.DirExists(dirName) {
		if err := os.MkdirAll(dirName, 0777); err != nil {
			return false, errors.Wrapf(err, "report dir %q", dirName)
		}
	}

	var reportData bytes.Buffer
	if err := jsonutil.WritePretty(&reportData, p); err != nil {
		return false, err
	}

	if err := os.WriteFile(p.reportLocation, reportData.Bytes(), 0644); err != nil {
		return false, errors.Wrapf(err, "report file %q", p.reportLocation)
	}

	return true, nil
}
