package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/intelscan/intelscan/internal/config"
	intelscanlog "github.com/intelscan/intelscan/internal/log"
	"github.com/intelscan/intelscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup history over HTTP",
		Long: `Serve exposes the local lookup history as a read-only JSON API.

The API never triggers new lookups; it only reads what the other
commands have persisted. Endpoints live under /api/v1:

  /searches            recent username probes
  /searches/:username  probe history for one username
  /phones              recent phone analyses
  /sessions            recent lookup sessions
  /breaches/:account   breach hits for one account
  /darkweb/:term       dark web mentions for one term

Examples:
  # Serve on the default port
  intelscan serve

  # Bind a specific address
  intelscan serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", config.DefaultServeAddr,
		"Listen address in host:port or :port format")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("addr") {
		cfg.ServeAddr, err = cmd.Flags().GetString("addr")
		if err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// JSON records for the long-running server; the other commands log
	// human-readable text.
	logger := intelscanlog.NewSecureJSONLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(context.Background(), logger)
	defer cancel()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	printer := newPrinter(cmd, cfg)
	printer.Headerf("Serving lookup API on %s", cfg.ServeAddr)

	srv := server.New(db,
		server.WithAddr(cfg.ServeAddr),
		server.WithLogger(logger),
	)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
