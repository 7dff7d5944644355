package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorStats(t *testing.T) {
	stats := NewMonitorStats("x86_64")

	for _, call := range []struct {
		num  uint64
		name string
	}{{0, "read"}, {0, "read"}, {257, "openat"}, {3, "close"}, {0, "read"}} {
		stats.AddCall(call.num, call.name)
	}
	stats.AddFiltered()

	count := uint64(100)
	stats.AddActivity(&EventRecord{Path: "/etc/hosts", OpType: OpTypeOpen})
	stats.AddActivity(&EventRecord{Path: "/etc/hosts", OpType: OpTypeRead, Count: &count})
	stats.AddActivity(&EventRecord{Path: "/etc/hosts", OpType: OpTypeRead, Count: &count})
	stats.AddActivity(&EventRecord{Path: "/tmp/out", OpType: OpTypeWrite, Count: &count})

	r := stats.Report()
	assert.Equal(t, uint64(5), r.SyscallCount)
	assert.Equal(t, uint32(3), r.SyscallNum)
	assert.Equal(t, uint64(1), r.FilteredCount)

	sorted := r.SortedSyscallStats()
	require.Len(t, sorted, 3)
	assert.Equal(t, SyscallStatInfo{Number: 0, Name: "read", Count: 3}, sorted[0])
	assert.Equal(t, "close", sorted[1].Name)
	assert.Equal(t, "openat", sorted[2].Name)

	hosts := r.FSActivity["/etc/hosts"]
	require.NotNil(t, hosts)
	assert.Equal(t, uint64(3), hosts.OpsAll)
	assert.Equal(t, uint64(2), hosts.Reads)
	assert.Equal(t, uint64(200), hosts.BytesRead)

	top := r.TopPaths(1)
	require.Len(t, top, 1)
	assert.Equal(t, "/etc/hosts", top[0].Path)
}

func TestOpType(t *testing.T) {
	assert.Equal(t, OpTypeOpen, OpType("openat"))
	assert.Equal(t, OpTypeClose, OpType("close"))
	assert.Equal(t, "", OpType("mmap"))
}

func TestTraceReportSave(t *testing.T) {
	location := filepath.Join(t.TempDir(), "out", DefaultTraceReportFileName)
	tr := NewTraceReport(location)
	tr.SessionID = "sid"
	tr.Monitor = NewMonitorStats("x86_64").Report()

	saved, err := tr.Save()
	require.NoError(t, err)
	assert.True(t, saved)

	data, err := os.ReadFile(location)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "sid", decoded["session_id"])

	saved, err = NewTraceReport("").Save()
	assert.NoError(t, err)
	assert.False(t, saved)
}
