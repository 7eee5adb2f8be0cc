package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intelscan/intelscan/internal/config"
	"github.com/intelscan/intelscan/internal/model"
	"github.com/intelscan/intelscan/internal/probe"
	"github.com/intelscan/intelscan/internal/search"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <username>",
		Short: "Probe social platforms for a username",
		Long: `Search probes social platforms for profile pages belonging to a username.

Each platform is checked with a single HTTP request against its public
profile URL. Results stream to the terminal as they arrive and every
probe is appended to the local lookup history.

Examples:
  # Check the full platform registry
  intelscan search alice

  # Check specific platforms only
  intelscan search alice -p GitHub,Twitter,VK

  # Check a named platform group
  intelscan search alice -g international

  # Fast scans can shorten the per-probe timeout (capped at 5s)
  intelscan search alice -t 2s`,
		Args: cobra.ExactArgs(1),
		RunE: runSearchCmd,
	}

	cmd.Flags().StringSliceP("platforms", "p", nil,
		"Comma-separated platform names to check (default: all)")
	cmd.Flags().StringP("group", "g", "",
		"Platform group to check (mutually exclusive with --platforms)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each probe (maximum 5s)")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with each probe")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Explicit flags win over the config file, but flag defaults do not.
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("user-agent") {
		cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
		if err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(context.Background(), logger)
	defer cancel()

	platforms, err := selectPlatforms(cmd)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	printer := newPrinter(cmd, cfg)

	prober := probe.NewProber(probe.NewClient(cfg.Timeout),
		probe.WithUserAgent(cfg.UserAgent),
		probe.WithMaxBodySize(cfg.MaxBodySize),
	)
	searcher := search.NewSearcher(prober, db,
		search.WithPrinter(printer),
		search.WithLogger(logger),
	)

	if _, err := searcher.Run(ctx, args[0], platforms); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return nil
}

// selectPlatforms resolves the --platforms and --group flags into
// registry entries.
func selectPlatforms(cmd *cobra.Command) ([]model.Platform, error) {
	names, err := cmd.Flags().GetStringSlice("platforms")
	if err != nil {
		return nil, err
	}
	group, err := cmd.Flags().GetString("group")
	if err != nil {
		return nil, err
	}

	if len(names) > 0 && group != "" {
		return nil, errors.New("conflicting platform selection: use either --platforms or --group, not both")
	}

	var platforms []model.Platform
	switch {
	case group != "":
		var ok bool
		platforms, ok = search.ResolveGroup(group)
		if !ok {
			return nil, fmt.Errorf("unknown platform group %q (available: %s)",
				group, strings.Join(model.PlatformGroupNames(), ", "))
		}
	default:
		platforms = search.Resolve(names)
	}

	if len(platforms) == 0 {
		return nil, errors.New("no probeable platforms selected")
	}
	return platforms, nil
}
