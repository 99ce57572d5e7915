package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/mirror"
	"tasktrack/internal/render"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command: render the sidebar and the
// current list's task panel. Running tasktrack with no arguments
// dispatches here.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show lists and current tasks" }
func (c *ShowCmd) Usage() string     { return "tasktrack show [common flags]" }
func (c *ShowCmd) NeedsStore() bool  { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, m *mirror.Mirror, args []string, out, errOut io.Writer) int {
	if code := loadState(ctx, m, errOut); code != exitcode.Success {
		return code
	}
	fmt.Fprint(out, render.Text(m.Snapshot()))
	return exitcode.Success
}
