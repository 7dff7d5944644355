package report

import (
	"sort"
)

// MonitorStats accumulates the activity counters for a TraceMonitorReport.
// It is not safe for concurrent use.
type MonitorStats struct {
	report *TraceMonitorReport
}

func NewMonitorStats(archName string) *MonitorStats {
	return &MonitorStats{
		report: &TraceMonitorReport{
			ArchName:     archName,
			SyscallStats: map[string]SyscallStatInfo{},
			FSActivity:   map[string]*FSActivityInfo{},
		},
	}
}

// AddCall counts one traced syscall (reported or filtered).
func (s *MonitorStats) AddCall(num uint64, name string) {
	s.report.SyscallCount++
	info, found := s.report.SyscallStats[name]
	if !found {
		s.report.SyscallNum++
		info = SyscallStatInfo{Number: uint32(num), Name: name}
	}

	info.Count++
	s.report.SyscallStats[name] = info
}

func (s *MonitorStats) AddFiltered() {
	s.report.FilteredCount++
}

// AddActivity counts a reported event for its path.
func (s *MonitorStats) AddActivity(rec *EventRecord) {
	activity, found := s.report.FSActivity[rec.Path]
	if !found {
		activity = &FSActivityInfo{}
		s.report.FSActivity[rec.Path] = activity
	}

	activity.OpsAll++
	switch rec.OpType {
	case OpTypeOpen:
		activity.Opens++
	case OpTypeRead:
		activity.Reads++
		if rec.Count != nil {
			activity.BytesRead += *rec.Count
		}
	case OpTypeWrite:
		activity.Writes++
		if rec.Count != nil {
			activity.BytesWrite += *rec.Count
		}
	case OpTypeClose:
		activity.Closes++
	}
}

func (s *MonitorStats) Report() *TraceMonitorReport {
	return s.report
}

// SortedSyscallStats returns the stats ordered by count (descending),
// then by name.
func (r *TraceMonitorReport) SortedSyscallStats() []SyscallStatInfo {
	stats := make([]SyscallStatInfo, 0, len(r.SyscallStats))
	for _, info := range r.SyscallStats {
		stats = append(stats, info)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}

		return stats[i].Name < stats[j].Name
	})

	return stats
}

type PathActivity struct {
	Path string
	*FSActivityInfo
}

// TopPaths returns up to limit paths with the most operations.
func (r *TraceMonitorReport) TopPaths(limit int) []PathActivity {
	paths := make([]PathActivity, 0, len(r.FSActivity))
	for path, info := range r.FSActivity {
		paths = append(paths, PathActivity{Path: path, FSActivityInfo: info})
	}

	sort.Slice(paths, func(i, j int) bool {
		if paths[i].OpsAll != paths[j].OpsAll {
			return paths[i].OpsAll > paths[j].OpsAll
		}

		return paths[i].Path < paths[j].Path
	})

	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}

	return paths
}
