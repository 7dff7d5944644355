package report

import (
	"time"

	"github.com/slimtoolkit/fstrace/pkg/fdresolve"
	"github.com/slimtoolkit/fstrace/pkg/monitor/ptrace"
)

// Record types
const (
	RecordTypeHeader  = "h"
	RecordTypeEvent   = "e"
	RecordTypeSummary = "s"
)

// Operation types
const (
	OpTypeOpen  = "o"
	OpTypeRead  = "r"
	OpTypeWrite = "w"
	OpTypeClose = "c"
)

var opTypes = map[string]string{
	"open":   OpTypeOpen,
	"openat": OpTypeOpen,
	"read":   OpTypeRead,
	"write":  OpTypeWrite,
	"close":  OpTypeClose,
}

func OpType(callName string) string {
	return opTypes[callName]
}

// EventRecord is one reported file access (one JSON line in json mode).
type EventRecord struct {
	Type      string            `json:"t"`
	Timestamp time.Time         `json:"ts"`
	SeqNumber uint64            `json:"sn"`
	Pid       int               `json:"p"`
	Process   string            `json:"pn,omitempty"`
	User      string            `json:"u,omitempty"`
	OpType    string            `json:"o"`
	Op        string            `json:"op"`
	OpNum     uint64            `json:"n"`
	Path      string            `json:"a"`
	Flags     string            `json:"flags,omitempty"`
	Mode      string            `json:"mode,omitempty"`
	Count     *uint64           `json:"count,omitempty"`
	Args      ptrace.Arguments  `json:"args"`
	Target    *fdresolve.Target `json:"target,omitempty"`
}
