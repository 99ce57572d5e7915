// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, validation, not found).
	UserError = 1

	// ConfigError indicates a configuration error.
	ConfigError = 2

	// BackendError indicates a server/network error.
	BackendError = 3
)
