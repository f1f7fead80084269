package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/server"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port  int
	Watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve mapped records over HTTP",
		Long: `Start an HTTP server for catalog records.

Endpoints:
  GET  /healthz
  GET  /records
  GET  /records/{id}/idf     (?stored=true for the last run's document)
  GET  /records/{id}/index
  POST /runs
  GET  /runs/latest
  GET  /runs/{id}
  GET  /runs/{id}/errors

With --watch the index script is reloaded whenever its file changes.`,
		Example: `  # Serve on the configured port
  ingrid-dsc serve

  # Serve on port 9000 without script reloading
  ingrid-dsc serve --port 9000 --watch=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload the index script when it changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := getConfig()
	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port = opts.Port
	}
	watch := cfg.Server.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	logger := getLogger(cmd)
	eng, err := createEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(server.Config{
		Engine: eng,
		Port:   port,
		Watch:  watch,
		Logger: logger,
	})
	return srv.Serve(ctx)
}
