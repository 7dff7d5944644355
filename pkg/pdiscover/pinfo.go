package pdiscover

import (
	"errors"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

const UnknownField = "unknown"

var (
	ErrNoSuchProcess    = errors.New("process not found")
	ErrPermissionDenied = errors.New("process not accessible (permission denied)")
)

type ProcInfo struct {
	PID       int       `json:"pid"`
	Name      string    `json:"name"`
	User      string    `json:"user"`
	Cmdline   string    `json:"cmdline"`
	Cwd       string    `json:"cwd"`
	Exe       string    `json:"exe,omitempty"`
	StartTime time.Time `json:"start_time"`
}

// Exists checks the target with a null signal.
func Exists(pid int) error {
	if pid <= 0 {
		return ErrNoSuchProcess
	}

	switch err := unix.Kill(pid, 0); err {
	case nil:
		return nil
	case unix.ESRCH:
		return ErrNoSuchProcess
	case unix.EPERM:
		return ErrPermissionDenied
	default:
		return err
	}
}

// Lookup collects the process details shown in the session header.
// Fields that can't be read are set to UnknownField.
func Lookup(pid int) (*ProcInfo, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil, ErrNoSuchProcess
		}

		return nil, err
	}

	info := &ProcInfo{
		PID:     pid,
		Name:    UnknownField,
		User:    UnknownField,
		Cmdline: UnknownField,
		Cwd:     UnknownField,
	}

	if name, err := p.Name(); err == nil && name != "" {
		info.Name = name
	}

	if user, err := p.Username(); err == nil && user != "" {
		info.User = user
	}

	if args, err := p.CmdlineSlice(); err == nil && len(args) > 0 {
		info.Cmdline = strings.Join(args, " ")
	}

	if cwd, err := p.Cwd(); err == nil && cwd != "" {
		info.Cwd = cwd
	}

	if exe, err := p.Exe(); err == nil {
		info.Exe = exe
	}

	if ms, err := p.CreateTime(); err == nil && ms > 0 {
		info.StartTime = time.UnixMilli(ms)
	}

	return info, nil
}
