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
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "Print all lists" }
func (c *ListsCmd) Usage() string     { return "tasktrack lists [common flags]" }
func (c *ListsCmd) NeedsStore() bool  { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, m *mirror.Mirror, args []string, out, errOut io.Writer) int {
	if code := loadState(ctx, m, errOut); code != exitcode.Success {
		return code
	}

	lists := m.Lists()
	if len(lists) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no lists found")
		return exitcode.Success
	}

	current, _ := m.CurrentList()
	for _, list := range lists {
		marker := " "
		if list.ID == current.ID {
			marker = "*"
		}
		done := 0
		for _, task := range list.Tasks {
			if task.Completed {
				done++
			}
		}
		fmt.Fprintf(out, "%s [%d] %s (%d/%d)\n", marker, list.ID, list.Name, done, len(list.Tasks))
	}
	return exitcode.Success
}
