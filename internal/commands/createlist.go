package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/mirror"
)

func init() {
	Register(&CreateListCmd{})
	Register(&AddListCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct {
	description string
}

func (c *CreateListCmd) Name() string      { return "createlist" }
func (c *CreateListCmd) Aliases() []string { return nil }
func (c *CreateListCmd) Synopsis() string  { return "Create a new list" }
func (c *CreateListCmd) Usage() string {
	return "tasktrack createlist [common flags] [--desc <text>] <name...>"
}
func (c *CreateListCmd) NeedsStore() bool { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "desc", "", "")
}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, m *mirror.Mirror, args []string, out, errOut io.Writer) int {
	return runCreateList(ctx, cfg, m, c.description, args, out, errOut)
}

// AddListCmd is an alias for CreateListCmd.
type AddListCmd struct {
	description string
}

func (c *AddListCmd) Name() string      { return "addlist" }
func (c *AddListCmd) Aliases() []string { return nil }
func (c *AddListCmd) Synopsis() string  { return "Create a new list (alias for createlist)" }
func (c *AddListCmd) Usage() string {
	return "tasktrack addlist [common flags] [--desc <text>] <name...>"
}
func (c *AddListCmd) NeedsStore() bool { return true }

func (c *AddListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "desc", "", "")
}

func (c *AddListCmd) Run(ctx context.Context, cfg *config.Config, m *mirror.Mirror, args []string, out, errOut io.Writer) int {
	return runCreateList(ctx, cfg, m, c.description, args, out, errOut)
}

// runCreateList is the shared implementation for createlist and addlist.
func runCreateList(ctx context.Context, cfg *config.Config, m *mirror.Mirror, description string, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}
	name := strings.Join(args, " ")

	if code := loadState(ctx, m, errOut); code != exitcode.Success {
		return code
	}

	list, err := m.CreateList(ctx, name, description)
	if err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "created list %d\n", list.ID)
	}
	return exitcode.Success
}
