package tracer

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/slimtoolkit/fstrace/pkg/app"
	"github.com/slimtoolkit/fstrace/pkg/consts"
	"github.com/slimtoolkit/fstrace/pkg/system"
	v "github.com/slimtoolkit/fstrace/pkg/version"
)

const (
	AppName  = consts.AppName
	AppUsage = "watch the file access of a running process"
)

func newCLI() *cli.App {
	cliApp := cli.NewApp()
	cliApp.Version = v.Current()
	cliApp.Name = AppName
	cliApp.Usage = AppUsage
	cliApp.CommandNotFound = func(ctx *cli.Context, command string) {
		fmt.Printf("unknown command - %v \n\n", command)
		cli.ShowAppHelp(ctx)
	}

	cliApp.Flags = GlobalFlags()
	cliApp.Before = configureLogging

	//'fstrace <PID>' is the same as 'fstrace trace <PID>'
	cliApp.DefaultCommand = TraceCmdName

	cliApp.Commands = []*cli.Command{
		TraceCommand,
		VersionCommand,
	}

	return cliApp
}

func configureLogging(ctx *cli.Context) error {
	if ctx.Bool(FlagNoColor) {
		app.NoColor()
	}

	if ctx.Bool(FlagDebug) {
		log.SetLevel(log.DebugLevel)
	} else {
		logLevelName := ctx.String(FlagLogLevel)
		logLevel, err := log.ParseLevel(logLevelName)
		if err != nil {
			return fmt.Errorf("unknown log-level %q", logLevelName)
		}

		log.SetLevel(logLevel)
	}

	if path := ctx.String(FlagLog); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		log.SetOutput(f)
	}

	logFormat := ctx.String(FlagLogFormat)
	switch logFormat {
	case "text":
		log.SetFormatter(&log.TextFormatter{DisableColors: true})
	case "json":
		log.SetFormatter(new(log.JSONFormatter))
	default:
		return fmt.Errorf("unknown log-format %q", logFormat)
	}

	log.Debugf("sysinfo => %#v", system.GetSystemInfo())
	return nil
}
