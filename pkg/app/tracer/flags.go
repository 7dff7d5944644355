package tracer

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/slimtoolkit/fstrace/pkg/app/tracer/config"
	"github.com/slimtoolkit/fstrace/pkg/consts"
)

// Global flags
const (
	FlagDebug     = "debug"
	FlagLogLevel  = "log-level"
	FlagLog       = "log"
	FlagLogFormat = "log-format"
	FlagNoColor   = "no-color"
)

// Trace command flags
const (
	FlagPID           = "pid"
	FlagMaxStringLen  = "max-string-len"
	FlagOutputFormat  = "output-format"
	FlagShowMetadata  = "show-metadata"
	FlagIncludePath   = "include-path"
	FlagExcludePrefix = "exclude-prefix"
	FlagSyscall       = "syscall"
	FlagSummary       = "summary"
	FlagReport        = "report"
)

func envVar(name string) []string {
	return []string{fmt.Sprintf("%s_%s", consts.EnvVarPrefix, name)}
}

func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    FlagDebug,
			Usage:   "enable debug logs",
			EnvVars: envVar("DEBUG"),
		},
		&cli.StringFlag{
			Name:    FlagLogLevel,
			Value:   "warn",
			Usage:   "set the logging level ('trace', 'debug', 'info', 'warn' (default), 'error', 'fatal', 'panic')",
			EnvVars: envVar("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    FlagLog,
			Usage:   "log file to store logs",
			EnvVars: envVar("LOG"),
		},
		&cli.StringFlag{
			Name:    FlagLogFormat,
			Value:   "text",
			Usage:   "set the format used by logs ('text' (default), or 'json')",
			EnvVars: envVar("LOG_FORMAT"),
		},
		&cli.BoolFlag{
			Name:    FlagNoColor,
			Usage:   "disable color output",
			EnvVars: envVar("NO_COLOR"),
		},
	}
}

func TraceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    FlagPID,
			Aliases: []string{"p"},
			Usage:   "PID of the process to trace (can also be passed as the first argument)",
			EnvVars: envVar("PID"),
		},
		&cli.IntFlag{
			Name:    FlagMaxStringLen,
			Value:   config.DefaultMaxStringLen,
			Usage:   "max number of bytes to read for path arguments",
			EnvVars: envVar("MAX_STRING_LEN"),
		},
		&cli.StringFlag{
			Name:    FlagOutputFormat,
			Aliases: []string{"o"},
			Value:   config.OutputFormatText,
			Usage:   "event output format ('text' or 'json')",
			EnvVars: envVar("OUTPUT_FORMAT"),
		},
		&cli.BoolFlag{
			Name:    FlagShowMetadata,
			Value:   true,
			Usage:   "show owner, permissions, size and modification time for accessed files",
			EnvVars: envVar("SHOW_METADATA"),
		},
		&cli.StringSliceFlag{
			Name:    FlagIncludePath,
			Usage:   "only report paths matching the glob pattern (can be repeated)",
			EnvVars: envVar("INCLUDE_PATH"),
		},
		&cli.StringSliceFlag{
			Name:    FlagExcludePrefix,
			Usage:   "don't report paths with the prefix (can be repeated)",
			EnvVars: envVar("EXCLUDE_PREFIX"),
		},
		&cli.StringSliceFlag{
			Name:    FlagSyscall,
			Usage:   "only report the selected syscalls: open, openat, read, write, close (can be repeated)",
			EnvVars: envVar("SYSCALL"),
		},
		&cli.BoolFlag{
			Name:    FlagSummary,
			Value:   true,
			Usage:   "show the syscall summary when tracing ends",
			EnvVars: envVar("SUMMARY"),
		},
		&cli.StringFlag{
			Name:    FlagReport,
			Usage:   "save the session report (json) to the file",
			EnvVars: envVar("REPORT"),
		},
	}
}

// TraceConfigFromContext collects and validates the trace command options.
func TraceConfigFromContext(ctx *cli.Context) (*config.TraceConfig, error) {
	cfg := config.New()
	cfg.PID = ctx.Int(FlagPID)
	if ctx.Args().Len() > 0 {
		if ctx.IsSet(FlagPID) {
			return nil, fmt.Errorf("PID passed both as an argument and with --%s", FlagPID)
		}

		pid, err := strconv.Atoi(ctx.Args().First())
		if err != nil {
			return nil, fmt.Errorf("PID must be a number (got %q)", ctx.Args().First())
		}

		cfg.PID = pid
	}

	cfg.MaxStringLen = ctx.Int(FlagMaxStringLen)
	cfg.OutputFormat = ctx.String(FlagOutputFormat)
	cfg.NoColor = ctx.Bool(FlagNoColor)
	cfg.ShowMetadata = ctx.Bool(FlagShowMetadata)
	cfg.IncludePaths = ctx.StringSlice(FlagIncludePath)
	cfg.ExcludePrefixes = ctx.StringSlice(FlagExcludePrefix)
	cfg.Syscalls = ctx.StringSlice(FlagSyscall)
	cfg.ShowSummary = ctx.Bool(FlagSummary)
	cfg.ReportLocation = ctx.String(FlagReport)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
