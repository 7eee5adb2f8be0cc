package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/intelscan/intelscan/internal/config"
	"github.com/intelscan/intelscan/internal/domainintel"
)

// NewDomainCmd creates the domain command.
func NewDomainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domain <domain>",
		Short: "Look up domain registration and DNS records",
		Long: `Domain queries WHOIS for registration details and DNS for the common
record types (A, AAAA, MX, TXT, NS). Full URLs are accepted and reduced
to their registrable domain first.

Examples:
  # Look up a domain
  intelscan domain example.com

  # URLs work too
  intelscan domain https://blog.example.com/post/1

  # Query a specific DNS resolver
  intelscan domain example.com --resolver 1.1.1.1:53`,
		Args: cobra.ExactArgs(1),
		RunE: runDomainCmd,
	}

	cmd.Flags().String("resolver", config.DefaultResolver,
		"DNS resolver address in host:port format")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each WHOIS and DNS query")

	return cmd
}

// runDomainCmd executes the domain command.
func runDomainCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("resolver") {
		cfg.Resolver, err = cmd.Flags().GetString("resolver")
		if err != nil {
			return err
		}
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
	printer.Headerf("Looking up domain: %s", args[0])

	inspector := domainintel.NewInspector(db,
		domainintel.WithResolver(cfg.Resolver),
		domainintel.WithTimeout(cfg.Timeout),
		domainintel.WithLogger(logger),
	)
	result, err := inspector.Lookup(ctx, args[0])
	if err != nil {
		return fmt.Errorf("domain lookup failed: %w", err)
	}

	printer.DomainResult(result)
	return nil
}
