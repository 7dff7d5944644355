package sysenv

import (
	"fmt"
	"sort"
)

// TraceEnv describes what limits tracing another process here.
type TraceEnv struct {
	InContainer  bool            `json:"in_container"`
	Seccomp      SeccompModeName `json:"seccomp,omitempty"`
	PtraceScope  int             `json:"ptrace_scope"`
	HasSysPtrace bool            `json:"has_sys_ptrace"`
	EUID         int             `json:"euid"`
	TargetUID    int             `json:"target_uid"`
	Capabilities []string        `json:"capabilities,omitempty"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// Precheck inspects the environment before attaching to pid.
// It never fails; problems that would likely break the attach are
// reported as warnings.
func Precheck(pid int) *TraceEnv {
	env := &TraceEnv{
		InContainer:  InContainer(),
		HasSysPtrace: HasSysPtrace(),
		EUID:         euid(),
		TargetUID:    -1,
	}

	if mode, err := SeccompMode(0); err == nil {
		env.Seccomp = mode
	}

	scope, err := PtraceScope()
	if err != nil {
		env.Warnings = append(env.Warnings, fmt.Sprintf("could not read ptrace_scope - %v", err))
	}
	env.PtraceScope = scope

	if uid, err := ProcUID(pid); err == nil {
		env.TargetUID = uid
	}

	if active, _, err := Capabilities(0); err == nil {
		for name := range active {
			env.Capabilities = append(env.Capabilities, name)
		}
		sort.Strings(env.Capabilities)
	}

	env.Warnings = append(env.Warnings, env.evaluate()...)
	return env
}

func (e *TraceEnv) evaluate() []string {
	var warnings []string
	switch {
	case e.PtraceScope >= PtraceScopeNoAttach:
		warnings = append(warnings, "ptrace attach is disabled (kernel.yama.ptrace_scope=3)")
	case e.PtraceScope == PtraceScopeAdminOnly && !e.HasSysPtrace:
		warnings = append(warnings, "ptrace_scope=2 requires CAP_SYS_PTRACE (try running with sudo)")
	case e.PtraceScope == PtraceScopeRestricted && !e.HasSysPtrace:
		warnings = append(warnings, "ptrace_scope=1 only allows tracing descendants without CAP_SYS_PTRACE (try running with sudo)")
	}

	if !e.HasSysPtrace && e.TargetUID >= 0 && e.TargetUID != e.EUID {
		warnings = append(warnings,
			fmt.Sprintf("target runs as uid %d (current euid %d) and CAP_SYS_PTRACE is missing", e.TargetUID, e.EUID))
	}

	if e.InContainer && !e.HasSysPtrace {
		warnings = append(warnings, "running in a container without CAP_SYS_PTRACE (add it with --cap-add SYS_PTRACE)")
	}

	return warnings
}
