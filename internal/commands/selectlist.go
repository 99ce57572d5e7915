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
	Register(&SelectCmd{})
}

// SelectCmd implements the select command: make a list current and
// remember the choice for the next session.
type SelectCmd struct{}

func (c *SelectCmd) Name() string      { return "select" }
func (c *SelectCmd) Aliases() []string { return nil }
func (c *SelectCmd) Synopsis() string  { return "Select the current list" }
func (c *SelectCmd) Usage() string     { return "tasktrack select [common flags] <list-id>" }
func (c *SelectCmd) NeedsStore() bool  { return true }

func (c *SelectCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SelectCmd) Run(ctx context.Context, cfg *config.Config, m *mirror.Mirror, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: list id required")
		return exitcode.UserError
	}
	id, err := parseID(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if code := loadState(ctx, m, errOut); code != exitcode.Success {
		return code
	}
	if err := m.SelectList(id); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
