package tracer

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/slimtoolkit/fstrace/pkg/app"
	"github.com/slimtoolkit/fstrace/pkg/system"
	v "github.com/slimtoolkit/fstrace/pkg/version"
)

const (
	VersionCmdName  = "version"
	VersionCmdUsage = "Shows fstrace and host version information"
)

var VersionCommand = &cli.Command{
	Name:    VersionCmdName,
	Aliases: []string{"v"},
	Usage:   VersionCmdUsage,
	Action: func(ctx *cli.Context) error {
		xc := app.NewExecutionContext(VersionCmdName, ctx.App.Writer)
		printVersion(xc)
		return nil
	},
}

func printVersion(xc *app.ExecutionContext) {
	info := v.Details()
	sysInfo := system.GetSystemInfo()

	xc.Out.Info("version", ovars{
		"app":     info.App,
		"version": info.Version,
		"go":      info.Go,
	})

	xc.Out.Info("host", ovars{
		"os":      sysInfo.Sysname,
		"release": sysInfo.Release,
		"machine": sysInfo.Machine,
		"tracing": fmt.Sprintf("%v", system.IsSupportedArch(system.HostArch())),
	})
}
