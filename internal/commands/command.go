// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/mirror"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsStore returns true if the command talks to the remote store.
	// Commands like help, version, serve return false.
	NeedsStore() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, settings).
	// m is nil if NeedsStore() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, m *mirror.Mirror, args []string, out, errOut io.Writer) int
}

// loadState fills the mirror from the server before a command operates
// on it. Returns a non-Success exit code on failure.
func loadState(ctx context.Context, m *mirror.Mirror, errOut io.Writer) int {
	if err := m.LoadLists(ctx); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

// fail prints an operation error and maps it to an exit code: local
// validation, not-found and in-flight rejections are user errors,
// everything else is a backend failure.
func fail(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, mirror.ErrValidation),
		errors.Is(err, mirror.ErrNotFound),
		errors.Is(err, mirror.ErrInFlight):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// parseID parses a positional id argument.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id: %s", arg)
	}
	return id, nil
}
