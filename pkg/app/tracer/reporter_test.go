package tracer

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slimtoolkit/fstrace/pkg/fdresolve"
	"github.com/slimtoolkit/fstrace/pkg/monitor/ptrace"
	"github.com/slimtoolkit/fstrace/pkg/pathfilter"
	"github.com/slimtoolkit/fstrace/pkg/report"
	"github.com/slimtoolkit/fstrace/pkg/system"
)

type fakeResolver map[int]fdresolve.Target

func (r fakeResolver) Resolve(fd int) fdresolve.Target {
	if t, ok := r[fd]; ok {
		t.FD = fd
		return t
	}

	return fdresolve.Target{FD: fd, Path: "fd=" + strconv.Itoa(fd), Kind: fdresolve.KindUnknown}
}

func intArg(role string, val uint64) ptrace.Argument {
	return ptrace.Argument{Role: role, Value: ptrace.ArgValue{Kind: ptrace.ArgKindInt, Int: val, Valid: true}}
}

func strArg(role string, val string) ptrace.Argument {
	return ptrace.Argument{Role: role, Value: ptrace.ArgValue{Kind: ptrace.ArgKindString, Str: val, Valid: true}}
}

var eventTime = time.Date(2024, 5, 1, 13, 4, 5, 0, time.Local)

func openEvent(path string, flags, mode uint64) ptrace.FileAccessEvent {
	return ptrace.FileAccessEvent{
		Time:     eventTime,
		PID:      4321,
		CallNum:  system.SyscallOpenat,
		CallName: system.CallNameOpenat,
		Args: ptrace.Arguments{
			intArg(system.ArgDirFD, uint64(0xffffff9c)),
			strArg(system.ArgFilename, path),
			intArg(system.ArgFlags, flags),
			intArg(system.ArgMode, mode),
		},
	}
}

func fdEvent(name string, num uint64, fd int, count uint64) ptrace.FileAccessEvent {
	args := ptrace.Arguments{intArg(system.ArgFD, uint64(int64(fd)))}
	if name != system.CallNameClose {
		args = append(args, intArg(system.ArgCount, count))
	}

	return ptrace.FileAccessEvent{
		Time:     eventTime,
		PID:      4321,
		CallNum:  num,
		CallName: name,
		Args:     args,
	}
}

func newTestReporter(t *testing.T, filter *pathfilter.Filter, w *bytes.Buffer, showMeta bool) (*EventReporter, *report.MonitorStats) {
	t.Helper()
	color.NoColor = true

	resolver := fakeResolver{
		3: {Path: "/etc/hosts", Kind: fdresolve.KindFile, Meta: &fdresolve.FileMeta{
			Owner: "root", Group: "root", Perm: "-rw-r--r--", HumanSz: "220 B", HumanAge: "2 days ago",
		}},
		5: {Path: "socket:[77]", Kind: fdresolve.KindSocket, Socket: &fdresolve.SocketInfo{
			Protocol: "tcp", Description: "127.0.0.1:80->127.0.0.1:5555", State: "ESTABLISHED",
		}},
	}

	stats := report.NewMonitorStats("x86_64")
	target := &report.ProcessInfo{Pid: 4321, Name: "cat", User: "alice"}
	return NewEventReporter(target, resolver, filter, stats, NewPrinter("text", w, showMeta)), stats
}

func TestEventReporter_TextOutput(t *testing.T) {
	var out bytes.Buffer
	r, stats := newTestReporter(t, nil, &out, true)

	r.Emit(openEvent("/etc/hosts", 0o2000000, 0))
	r.Emit(fdEvent(system.CallNameRead, system.SyscallRead, 3, 4096))
	r.Emit(fdEvent(system.CallNameWrite, system.SyscallWrite, 5, 12))
	r.Emit(fdEvent(system.CallNameClose, system.SyscallClose, 9, 0))

	expected := strings.Join([]string{
		"[13:04:05] cat(4321)[alice] OPEN: /etc/hosts",
		"  Flags: O_CLOEXEC",
		"  Mode: 0000",
		"[13:04:05] cat(4321)[alice] READ: /etc/hosts",
		"  Bytes requested: 4096",
		"  Owner: root:root  Permissions: -rw-r--r--  Size: 220 B  Modified: 2 days ago",
		"[13:04:05] cat(4321)[alice] WRITE: tcp socket 127.0.0.1:80->127.0.0.1:5555",
		"  Bytes written: 12",
		"  State: ESTABLISHED",
		"[13:04:05] cat(4321)[alice] CLOSE: fd=9",
		"",
	}, "\n")
	assert.Equal(t, expected, out.String())

	assert.Equal(t, uint64(4), r.Events())
	rep := stats.Report()
	assert.Equal(t, uint64(4), rep.SyscallCount)
	assert.Equal(t, uint64(2), rep.FSActivity["/etc/hosts"].OpsAll)
	assert.Equal(t, uint64(4096), rep.FSActivity["/etc/hosts"].BytesRead)
}

func TestEventReporter_NoMetadata(t *testing.T) {
	var out bytes.Buffer
	r, _ := newTestReporter(t, nil, &out, false)

	r.Emit(fdEvent(system.CallNameRead, system.SyscallRead, 3, 1))
	assert.NotContains(t, out.String(), "Owner:")
}

func TestEventReporter_Filter(t *testing.T) {
	filter, err := pathfilter.New([]string{"/etc/**"}, []string{"/etc/ld.so"})
	require.NoError(t, err)

	var out bytes.Buffer
	r, stats := newTestReporter(t, filter, &out, false)

	r.Emit(openEvent("/etc/ld.so.cache", 0, 0))
	r.Emit(openEvent("/usr/lib/libc.so.6", 0, 0))
	r.Emit(openEvent("/etc/passwd", 0, 0))
	r.Emit(fdEvent(system.CallNameRead, system.SyscallRead, 3, 10))

	assert.Equal(t, uint64(2), r.Events())
	rep := stats.Report()
	assert.Equal(t, uint64(4), rep.SyscallCount)
	assert.Equal(t, uint64(2), rep.FilteredCount)
	assert.Contains(t, out.String(), "OPEN: /etc/passwd")
	assert.NotContains(t, out.String(), "ld.so.cache")
}

func TestEventReporter_UnreadablePath(t *testing.T) {
	var out bytes.Buffer
	r, _ := newTestReporter(t, nil, &out, false)

	ev := openEvent("", 1, 0o644)
	ev.Args[1].Value = ptrace.ArgValue{Kind: ptrace.ArgKindString}
	r.Emit(ev)

	assert.Contains(t, out.String(), "OPEN: unknown\n  Flags: O_WRONLY\n  Mode: 0644\n")
}

func TestJSONPrinter(t *testing.T) {
	var out bytes.Buffer
	stats := report.NewMonitorStats("x86_64")
	r := NewEventReporter(&report.ProcessInfo{Pid: 1, Name: "init", User: "root"},
		fakeResolver{}, nil, stats, NewPrinter("json", &out, false))

	r.Emit(openEvent("/etc/hosts", 0, 0))

	line := out.String()
	assert.True(t, strings.HasSuffix(line, "}\n"))
	assert.Contains(t, line, `"t":"e"`)
	assert.Contains(t, line, `"op":"openat"`)
	assert.Contains(t, line, `"a":"/etc/hosts"`)
	assert.Contains(t, line, `"args":{"dirfd":4294967196,"filename":"/etc/hosts","flags":0,"mode":0}`)
}
