package sysenv

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/syndtr/gocapability/capability"
	"golang.org/x/sys/unix"
)

const (
	procSelfCgroup  = "/proc/self/cgroup"
	dockerEnvPath   = "/.dockerenv"
	ptraceScopePath = "/proc/sys/kernel/yama/ptrace_scope"
)

func HasDockerEnvPath() bool {
	_, err := os.Stat(dockerEnvPath)
	return err == nil
}

func HasContainerCgroups() bool {
	if bdata, err := os.ReadFile(procSelfCgroup); err == nil {
		data := string(bdata)
		return strings.Contains(data, ":/docker/") ||
			strings.Contains(data, ":/kubepods")
	}

	return false
}

func InContainer() bool {
	if HasDockerEnvPath() {
		return true
	}

	if HasContainerCgroups() {
		return true
	}

	return false
}

// Yama ptrace_scope values
const (
	PtraceScopeClassic    = 0
	PtraceScopeRestricted = 1
	PtraceScopeAdminOnly  = 2
	PtraceScopeNoAttach   = 3
)

// PtraceScope returns the Yama ptrace_scope setting.
// Kernels without Yama behave like PtraceScopeClassic.
func PtraceScope() (int, error) {
	data, err := fileData(ptraceScopePath)
	if err != nil {
		if os.IsNotExist(err) {
			return PtraceScopeClassic, nil
		}

		return PtraceScopeClassic, err
	}

	scope, err := strconv.Atoi(data)
	if err != nil {
		return PtraceScopeClassic, errors.Wrapf(err, "bad %s value", ptraceScopePath)
	}

	return scope, nil
}

func HasCapability(pid int, which capability.Cap) (bool, error) {
	caps, err := capability.NewPid2(pid)
	if err != nil {
		return false, err
	}

	if err := caps.Load(); err != nil {
		return false, err
	}

	return caps.Get(capability.EFFECTIVE, which), nil
}

func HasSysPtrace() bool {
	ok, err := HasCapability(0, capability.CAP_SYS_PTRACE)
	return err == nil && ok
}

// Capabilities returns the effective and permitted capability names.
func Capabilities(pid int) (map[string]struct{}, map[string]struct{}, error) {
	caps, err := capability.NewPid2(pid)
	if err != nil {
		return nil, nil, err
	}

	if err := caps.Load(); err != nil {
		return nil, nil, err
	}

	all := capability.List()

	active := map[string]struct{}{}
	for _, cap := range all {
		if caps.Get(capability.EFFECTIVE, cap) {
			active[cap.String()] = struct{}{}
		}
	}

	max := map[string]struct{}{}
	for _, cap := range all {
		if caps.Get(capability.PERMITTED, cap) {
			max[cap.String()] = struct{}{}
		}
	}

	return active, max, nil
}

type SeccompModeName string

const (
	SMDisabled        string          = "0"
	SeccompMNDisabled SeccompModeName = "disabled"
	SMStrict          string          = "1"
	SeccompMNStrict   SeccompModeName = "strict"
	SMFiltering       string          = "2"
	SeccompMFiltering SeccompModeName = "filtering"
)

var seccompModes = map[string]SeccompModeName{
	SMDisabled:  SeccompMNDisabled,
	SMStrict:    SeccompMNStrict,
	SMFiltering: SeccompMFiltering,
}

func SeccompMode(pid int) (SeccompModeName, error) {
	fdata, err := fileData(procFileName(pid, "status"))
	if err != nil {
		return "", err
	}

	return procSeccompMode(fdata), nil
}

func procSeccompMode(data string) SeccompModeName {
	modeNum := procStatusField(data, "Seccomp:")
	if mode, ok := seccompModes[modeNum]; ok {
		return mode
	}

	return ""
}

// ProcUID returns the real uid from /proc/<pid>/status.
func ProcUID(pid int) (int, error) {
	fdata, err := fileData(procFileName(pid, "status"))
	if err != nil {
		return -1, err
	}

	fields := strings.Fields(procStatusField(fdata, "Uid"))
	if len(fields) == 0 {
		return -1, fmt.Errorf("no Uid field for pid %d", pid)
	}

	return strconv.Atoi(fields[0])
}

const procStatusFieldValueRegexStr = ":(.*)"

var procStatusFieldValueMatcher = regexp.MustCompile(procStatusFieldValueRegexStr)

func procStatusField(data, fname string) string {
	if !strings.HasSuffix(fname, ":") {
		fname = fmt.Sprintf("%s:", fname)
	}

	lines := strings.Split(data, "\n")
	for _, line := range lines {
		line := strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, fname) {
			matches := procStatusFieldValueMatcher.FindStringSubmatch(line)
			if len(matches) > 1 {
				return strings.TrimSpace(matches[1])
			}
		}
	}

	return ""
}

func fileData(fname string) (string, error) {
	bdata, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(bdata)), nil
}

func procFileName(pid int, name string) string {
	target := "self"
	if pid > 0 {
		target = strconv.Itoa(pid)
	}

	return fmt.Sprintf("/proc/%s/%s", target, name)
}

func euid() int {
	return unix.Geteuid()
}
