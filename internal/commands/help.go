package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/mirror"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "tasktrack help" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, m *mirror.Mirror, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  tasktrack                                          Show lists and current tasks
  tasktrack show [common flags]
  tasktrack lists [common flags]
  tasktrack select [common flags] <list-id>
  tasktrack createlist [common flags] [--desc <text>] <name...>
  tasktrack addlist [common flags] [--desc <text>] <name...>
  tasktrack editlist [common flags] [--name <name>] [--desc <text>] <list-id>
  tasktrack rmlist [common flags] <list-id>
  tasktrack add [common flags] [--list <list-id>] [--desc <text>] <title...>
  tasktrack create [common flags] [--list <list-id>] [--desc <text>] <title...>
  tasktrack edit [common flags] [--title <text>] [--desc <text>] [--done|--undone] <task-id>
  tasktrack toggle [common flags] <task-id>
  tasktrack done [common flags] <task-id>
  tasktrack rm [common flags] <task-id>
  tasktrack serve [common flags] [--addr <host:port>] [--db <path>]
  tasktrack help
  tasktrack version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
