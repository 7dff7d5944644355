package app

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/slimtoolkit/fstrace/pkg/util/errutil"
)

type ExecutionContext struct {
	Out *Output
}

func (ref *ExecutionContext) Exit(exitCode int) {
	os.Exit(exitCode)
}

func (ref *ExecutionContext) FailOn(err error) {
	errutil.FailOn(err)
}

func NewExecutionContext(cmdName string, w io.Writer) *ExecutionContext {
	ref := &ExecutionContext{
		Out: NewOutput(cmdName, w),
	}

	return ref
}

// Output prints the status messages (not the trace events).
type Output struct {
	CmdName string
	w       io.Writer
}

func NewOutput(cmdName string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}

	ref := &Output{
		CmdName: cmdName,
		w:       w,
	}

	return ref
}

func NoColor() {
	color.NoColor = true
}

type OutVars map[string]interface{}

func sortedKeys(kvSet OutVars) []string {
	keys := make([]string, 0, len(kvSet))
	for k := range kvSet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (ref *Output) Error(errType string, data string) {
	fmt.Fprintf(ref.w, "cmd=%s error=%s message='%s'\n",
		ref.CmdName, ecolor(errType), ecolor(data))
}

func (ref *Output) Message(data string) {
	fmt.Fprintf(ref.w, "cmd=%s message='%s'\n", ref.CmdName, mcolor(data))
}

func (ref *Output) State(state string, params ...OutVars) {
	var exitInfo string
	var info string
	var sep string

	if len(params) > 0 {
		var minCount int
		kvSet := params[0]
		if exitCode, ok := kvSet["exit.code"]; ok {
			minCount = 1
			exitInfo = fmt.Sprintf(" code=%d", exitCode)
		}

		if len(kvSet) > minCount {
			var builder strings.Builder
			sep = " "

			for _, k := range sortedKeys(kvSet) {
				if k == "exit.code" {
					continue
				}

				builder.WriteString(k)
				builder.WriteString("=")
				builder.WriteString(fmt.Sprintf("%v", kvSet[k]))
				builder.WriteString(" ")
			}

			info = builder.String()
		}
	}

	scolor := stcolor
	if state == "exited" || state == "failed" {
		scolor = stxcolor
	}

	fmt.Fprintf(ref.w, "cmd=%s state=%s%s%s%s\n", ref.CmdName, scolor(state), exitInfo, sep, info)
}

var (
	itcolor  = color.New(color.FgMagenta, color.Bold).SprintFunc()
	kcolor   = color.New(color.FgHiGreen, color.Bold).SprintFunc()
	vcolor   = color.New(color.FgHiBlue).SprintfFunc()
	ecolor   = color.New(color.FgHiRed).SprintFunc()
	mcolor   = color.New(color.FgHiMagenta).SprintFunc()
	stcolor  = color.New(color.FgCyan, color.Bold).SprintFunc()
	stxcolor = color.New(color.FgHiRed, color.Bold).SprintFunc()
)

func (ref *Output) Info(infoType string, params ...OutVars) {
	var data string
	var sep string

	if len(params) > 0 {
		kvSet := params[0]
		if len(kvSet) > 0 {
			var builder strings.Builder
			sep = " "

			for _, k := range sortedKeys(kvSet) {
				builder.WriteString(kcolor(k))
				builder.WriteString("=")
				builder.WriteString(fmt.Sprintf("'%s'", vcolor("%v", kvSet[k])))
				builder.WriteString(" ")
			}

			data = builder.String()
		}
	}

	fmt.Fprintf(ref.w, "cmd=%s info=%s%s%s\n", ref.CmdName, itcolor(infoType), sep, data)
}
