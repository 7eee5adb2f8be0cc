// Package main provides the entry point for the intelscan CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/intelscan/intelscan/internal/config"
	"github.com/intelscan/intelscan/internal/database"
	intelscanlog "github.com/intelscan/intelscan/internal/log"
	"github.com/intelscan/intelscan/internal/output"
)

// NewRootCmd creates the root command for intelscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intelscan",
		Short: "OSINT lookups for usernames, phone numbers, domains, and breaches",
		Long: `intelscan runs open-source intelligence lookups from the command line.

It probes social platforms for username presence, analyzes phone numbers,
inspects domain registration and DNS, checks breach databases, and searches
dark web engines over Tor. Every lookup is appended to a local SQLite
history that the recent, export, and serve commands read back.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .intelscan in current or home directory)")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	// Add subcommands
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewPhoneCmd())
	cmd.AddCommand(NewDomainCmd())
	cmd.AddCommand(NewBreachCmd())
	cmd.AddCommand(NewDarkwebCmd())
	cmd.AddCommand(NewInvestigateCmd())
	cmd.AddCommand(NewRecentCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getNoColorFlag retrieves the no-color flag from the command or its parent.
func getNoColorFlag(cmd *cobra.Command) bool {
	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		noColor, err = cmd.Root().PersistentFlags().GetBool("no-color")
		if err != nil {
			return false
		}
	}
	return noColor
}

// loadConfig builds the configuration for a command invocation.
//
// Precedence, lowest to highest: built-in defaults, configuration file,
// environment variables, then explicit flags (applied by each command
// after this returns). An explicitly given config file that does not
// exist is an error; a missing default file is not.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		cfg.ConfigFilePath, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			cfg.ConfigFilePath = ""
		}
	}

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.ApplyTo(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.LoadEnv()
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// Secrets such as API keys are redacted before any record is written.
func setupLogger(verbose bool) *slog.Logger {
	return intelscanlog.NewSecureLogger(os.Stderr, verbose)
}

// signalContext derives a context that is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// openDatabase opens the lookup history database at the configured path.
func openDatabase(cfg *config.Config) (*database.LookupDB, error) {
	db, err := database.Open(cfg.DatabasePath, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// newPrinter creates the terminal printer for a command invocation.
func newPrinter(cmd *cobra.Command, cfg *config.Config) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(),
		output.WithNoColor(getNoColorFlag(cmd)),
		output.WithVerbose(cfg.Verbose),
	)
}
