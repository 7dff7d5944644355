package config

import (
	"fmt"
	"strings"

	"github.com/slimtoolkit/fstrace/pkg/system"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

const DefaultMaxStringLen = 256

// TraceConfig collects the trace command options
type TraceConfig struct {
	PID             int
	MaxStringLen    int
	OutputFormat    string
	NoColor         bool
	ShowMetadata    bool
	IncludePaths    []string
	ExcludePrefixes []string
	Syscalls        []string
	ShowSummary     bool
	ReportLocation  string
}

func New() *TraceConfig {
	return &TraceConfig{
		MaxStringLen: DefaultMaxStringLen,
		OutputFormat: OutputFormatText,
		ShowMetadata: true,
		ShowSummary:  true,
	}
}

// Validate checks the options and normalizes the syscall names.
func (c *TraceConfig) Validate() error {
	if c.PID <= 0 {
		return fmt.Errorf("PID must be a positive number (got %d)", c.PID)
	}

	if c.MaxStringLen <= 0 {
		return fmt.Errorf("max string length must be positive (got %d)", c.MaxStringLen)
	}

	switch c.OutputFormat {
	case OutputFormatText, OutputFormatJSON:
	default:
		return fmt.Errorf("unknown output format %q", c.OutputFormat)
	}

	var syscalls []string
	for _, name := range c.Syscalls {
		for _, part := range strings.Split(name, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}

			if _, ok := system.CallNumber(part); !ok {
				return fmt.Errorf("unsupported syscall %q (supported: %s)",
					part, strings.Join(system.TracedCallNames(), ", "))
			}

			syscalls = append(syscalls, part)
		}
	}
	c.Syscalls = syscalls

	return nil
}
