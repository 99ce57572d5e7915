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
	Register(&AddCmd{})
	Register(&CreateCmd{})
}

// AddCmd implements the add command: create a task in the current list,
// or in --list when given.
type AddCmd struct {
	listID      int
	description string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tasktrack add [common flags] [--list <list-id>] [--desc <text>] <title...>"
}
func (c *AddCmd) NeedsStore() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.listID, "list", 0, "")
	fs.IntVar(&c.listID, "l", 0, "")
	fs.StringVar(&c.description, "desc", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, m *mirror.Mirror, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, m, c.listID, c.description, args, out, errOut)
}

// CreateCmd is an alias for AddCmd.
type CreateCmd struct {
	listID      int
	description string
}

func (c *CreateCmd) Name() string      { return "create" }
func (c *CreateCmd) Aliases() []string { return nil }
func (c *CreateCmd) Synopsis() string  { return "Create a task (alias for add)" }
func (c *CreateCmd) Usage() string {
	return "tasktrack create [common flags] [--list <list-id>] [--desc <text>] <title...>"
}
func (c *CreateCmd) NeedsStore() bool { return true }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.listID, "list", 0, "")
	fs.IntVar(&c.listID, "l", 0, "")
	fs.StringVar(&c.description, "desc", "", "")
}

func (c *CreateCmd) Run(ctx context.Context, cfg *config.Config, m *mirror.Mirror, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, m, c.listID, c.description, args, out, errOut)
}

// runAdd is the shared implementation for add and create.
func runAdd(ctx context.Context, cfg *config.Config, m *mirror.Mirror, listID int, description string, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	title := strings.Join(args, " ")

	if code := loadState(ctx, m, errOut); code != exitcode.Success {
		return code
	}

	if listID == 0 {
		current, ok := m.CurrentList()
		if !ok {
			fmt.Fprintln(errOut, "error: no list selected (run: tasktrack select <list-id>)")
			return exitcode.UserError
		}
		listID = current.ID
	}

	task, err := m.CreateTask(ctx, listID, title, description)
	if err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "created task %d\n", task.ID)
	}
	return exitcode.Success
}
