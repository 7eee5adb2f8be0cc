package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/intelscan/intelscan/internal/breach"
	"github.com/intelscan/intelscan/internal/config"
	"github.com/intelscan/intelscan/internal/probe"
)

// NewBreachCmd creates the breach command.
func NewBreachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breach <account>",
		Short: "Check an email or username against breach databases",
		Long: `Breach checks an account against BreachDirectory and Have I Been Pwned.

Both providers require API keys, read from the environment:
  ` + config.EnvBreachDirectoryAPIKey + `
  ` + config.EnvHIBPAPIKey + `

Providers without a key are skipped. Hits from every configured
provider are graded by severity and appended to the lookup history.

Examples:
  # Check an email address
  intelscan breach alice@example.com

  # Usernames work with BreachDirectory
  intelscan breach alice`,
		Args: cobra.ExactArgs(1),
		RunE: runBreachCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each provider request")

	return cmd
}

// runBreachCmd executes the breach command.
func runBreachCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
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

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	printer := newPrinter(cmd, cfg)
	printer.Headerf("Checking breaches for: %s", args[0])

	checker := breach.NewChecker(db,
		breach.WithHIBPKey(cfg.HIBPAPIKey),
		breach.WithBreachDirectoryKey(cfg.BreachDirectoryAPIKey),
		breach.WithHTTPClient(probe.NewClient(cfg.Timeout)),
		breach.WithUserAgent(cfg.UserAgent),
		breach.WithLogger(logger),
	)
	result, err := checker.Check(ctx, args[0])
	if err != nil {
		if errors.Is(err, breach.ErrNoAPIKeys) {
			return fmt.Errorf("%w (set %s or %s)",
				err, config.EnvHIBPAPIKey, config.EnvBreachDirectoryAPIKey)
		}
		return fmt.Errorf("breach check failed: %w", err)
	}

	printer.BreachResult(result)
	return nil
}
