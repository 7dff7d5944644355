package ptrace

import (
	"github.com/slimtoolkit/fstrace/pkg/system"
)

// DefaultMaxStringLen bounds remote string reads (path arguments).
const DefaultMaxStringLen = 256

type TraceOpt struct {
	PID          int
	MaxStringLen int
	// Optional subset of the cataloged call names to report.
	// Empty means all of them.
	Syscalls []string
}

func (o TraceOpt) maxStringLen() int {
	if o.MaxStringLen <= 0 {
		return DefaultMaxStringLen
	}

	return o.MaxStringLen
}

// tracedFilter returns the syscall-of-interest predicate for the options.
func (o TraceOpt) tracedFilter() func(uint64) bool {
	if len(o.Syscalls) == 0 {
		return system.IsTraced
	}

	selected := map[uint64]struct{}{}
	for _, name := range o.Syscalls {
		if num, ok := system.CallNumber(name); ok {
			selected[num] = struct{}{}
		}
	}

	return func(num uint64) bool {
		if !system.IsTraced(num) {
			return false
		}

		_, ok := selected[num]
		return ok
	}
}
