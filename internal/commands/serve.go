package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/mirror"
	"tasktrack/internal/server"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command: run the task tracker server the
// client commands talk to.
type ServeCmd struct {
	addr   string
	dbPath string
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Run the task tracker server" }
func (c *ServeCmd) Usage() string {
	return "tasktrack serve [common flags] [--addr <host:port>] [--db <path>]"
}
func (c *ServeCmd) NeedsStore() bool { return false }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "localhost:4000", "")
	fs.StringVar(&c.dbPath, "db", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, m *mirror.Mirror, args []string, out, errOut io.Writer) int {
	dbPath := c.dbPath
	if dbPath == "" {
		dbPath = cfg.Settings.DBPath
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	db, err := server.OpenDB(dbPath)
	if err != nil {
		fmt.Fprintf(errOut, "error: open database: %v\n", err)
		return exitcode.ConfigError
	}
	defer db.Close()

	srv := &http.Server{
		Addr:    c.addr,
		Handler: server.New(db, logger).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("listening", "addr", c.addr, "db", dbPath)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return exitcode.Success
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(errOut, "error: server: %v\n", err)
			return exitcode.BackendError
		}
		return exitcode.Success
	}
}
