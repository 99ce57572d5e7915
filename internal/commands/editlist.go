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
	Register(&EditListCmd{})
}

// EditListCmd implements the editlist command. Flags that are not set
// keep the list's current values.
type EditListCmd struct {
	name        string
	description string
	nameSet     bool
	descSet     bool
}

func (c *EditListCmd) Name() string      { return "editlist" }
func (c *EditListCmd) Aliases() []string { return nil }
func (c *EditListCmd) Synopsis() string  { return "Edit a list's name or description" }
func (c *EditListCmd) Usage() string {
	return "tasktrack editlist [common flags] [--name <name>] [--desc <text>] <list-id>"
}
func (c *EditListCmd) NeedsStore() bool { return true }

func (c *EditListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Func("name", "", func(v string) error {
		c.name = v
		c.nameSet = true
		return nil
	})
	fs.Func("desc", "", func(v string) error {
		c.description = v
		c.descSet = true
		return nil
	})
}

func (c *EditListCmd) Run(ctx context.Context, cfg *config.Config, m *mirror.Mirror, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: list id required")
		return exitcode.UserError
	}
	id, err := parseID(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !c.nameSet && !c.descSet {
		fmt.Fprintln(errOut, "error: nothing to change (use --name or --desc)")
		return exitcode.UserError
	}

	if code := loadState(ctx, m, errOut); code != exitcode.Success {
		return code
	}

	name := c.name
	description := c.description
	for _, list := range m.Lists() {
		if list.ID == id {
			if !c.nameSet {
				name = list.Name
			}
			if !c.descSet {
				description = list.Description
			}
			break
		}
	}

	if _, err := m.UpdateList(ctx, id, name, description); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
