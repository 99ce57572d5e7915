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
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Flags that are not set keep the
// task's current values; the update sends the full task either way.
type EditCmd struct {
	title    string
	desc     string
	titleSet bool
	descSet  bool
	done     bool
	undone   bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Edit a task" }
func (c *EditCmd) Usage() string {
	return "tasktrack edit [common flags] [--title <text>] [--desc <text>] [--done|--undone] <task-id>"
}
func (c *EditCmd) NeedsStore() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Func("title", "", func(v string) error {
		c.title = v
		c.titleSet = true
		return nil
	})
	fs.Func("desc", "", func(v string) error {
		c.desc = v
		c.descSet = true
		return nil
	})
	fs.BoolVar(&c.done, "done", false, "")
	fs.BoolVar(&c.undone, "undone", false, "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, m *mirror.Mirror, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}
	id, err := parseID(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if c.done && c.undone {
		fmt.Fprintln(errOut, "error: cannot use both --done and --undone")
		return exitcode.UserError
	}
	if !c.titleSet && !c.descSet && !c.done && !c.undone {
		fmt.Fprintln(errOut, "error: nothing to change (use --title, --desc, --done or --undone)")
		return exitcode.UserError
	}

	if code := loadState(ctx, m, errOut); code != exitcode.Success {
		return code
	}

	task, ok := m.Task(id)
	if !ok {
		fmt.Fprintf(errOut, "error: task not found: %d\n", id)
		return exitcode.UserError
	}

	title := task.Title
	desc := task.Description
	completed := task.Completed
	if c.titleSet {
		title = c.title
	}
	if c.descSet {
		desc = c.desc
	}
	if c.done {
		completed = true
	}
	if c.undone {
		completed = false
	}

	if _, err := m.UpdateTask(ctx, id, title, desc, completed); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
