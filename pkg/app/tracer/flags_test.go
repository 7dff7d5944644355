package tracer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/slimtoolkit/fstrace/pkg/app/tracer/config"
)

func parseTraceArgs(t *testing.T, args ...string) (*config.TraceConfig, error) {
	t.Helper()

	var (
		cfg    *config.TraceConfig
		cfgErr error
	)

	cliApp := cli.NewApp()
	cliApp.Flags = GlobalFlags()
	cliApp.Commands = []*cli.Command{
		{
			Name:  TraceCmdName,
			Flags: TraceFlags(),
			Action: func(ctx *cli.Context) error {
				cfg, cfgErr = TraceConfigFromContext(ctx)
				return nil
			},
		},
	}

	require.NoError(t, cliApp.Run(append([]string{"fstrace", TraceCmdName}, args...)))
	return cfg, cfgErr
}

func TestTraceConfigFromContext(t *testing.T) {
	cfg, err := parseTraceArgs(t, "--syscall", "open", "--syscall", "close",
		"--exclude-prefix", "/proc", "--max-string-len", "64", "1234")
	require.NoError(t, err)

	assert.Equal(t, 1234, cfg.PID)
	assert.Equal(t, 64, cfg.MaxStringLen)
	assert.Equal(t, []string{"open", "close"}, cfg.Syscalls)
	assert.Equal(t, []string{"/proc"}, cfg.ExcludePrefixes)
	assert.Equal(t, config.OutputFormatText, cfg.OutputFormat)
	assert.True(t, cfg.ShowMetadata)
	assert.True(t, cfg.ShowSummary)
}

func TestTraceConfigFromContext_PIDFlag(t *testing.T) {
	cfg, err := parseTraceArgs(t, "--pid", "77", "--summary=false", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, 77, cfg.PID)
	assert.False(t, cfg.ShowSummary)
	assert.Equal(t, config.OutputFormatJSON, cfg.OutputFormat)
}

func TestTraceConfigFromContext_Errors(t *testing.T) {
	_, err := parseTraceArgs(t, "abc")
	assert.Error(t, err)

	_, err = parseTraceArgs(t)
	assert.Error(t, err)

	_, err = parseTraceArgs(t, "--pid", "5", "6")
	assert.Error(t, err)

	_, err = parseTraceArgs(t, "--syscall", "mmap", "5")
	assert.Error(t, err)
}

func TestTraceConfigFromContext_EnvVars(t *testing.T) {
	t.Setenv("FSTRACE_PID", "88")
	t.Setenv("FSTRACE_OUTPUT_FORMAT", "json")

	cfg, err := parseTraceArgs(t)
	require.NoError(t, err)
	assert.Equal(t, 88, cfg.PID)
	assert.Equal(t, config.OutputFormatJSON, cfg.OutputFormat)
}
