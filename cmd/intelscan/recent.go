package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// defaultRecentLimit is how many sessions recent shows by default.
const defaultRecentLimit = 10

// NewRecentCmd creates the recent command.
func NewRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recent lookups",
		Long: `Recent lists the latest lookup sessions from the local history,
newest first. Every search, phone, domain, breach, darkweb, and
investigate invocation records one session.

Examples:
  # Show the last 10 lookups
  intelscan recent

  # Show more
  intelscan recent -n 50`,
		Args: cobra.NoArgs,
		RunE: runRecentCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultRecentLimit,
		"Maximum number of sessions to show")

	return cmd
}

// runRecentCmd executes the recent command.
func runRecentCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(context.Background(), logger)
	defer cancel()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := db.RecentSessions(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read lookup history: %w", err)
	}

	newPrinter(cmd, cfg).Sessions(sessions)
	return nil
}
