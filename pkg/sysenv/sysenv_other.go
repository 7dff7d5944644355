//go:build !linux
// +build !linux

package sysenv

type SeccompModeName string

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

func Precheck(pid int) *TraceEnv {
	return &TraceEnv{
		TargetUID: -1,
		Warnings:  []string{"process tracing is only supported on linux"},
	}
}
