package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/intelscan/intelscan/internal/config"
	"github.com/intelscan/intelscan/internal/darkweb"
	"github.com/intelscan/intelscan/internal/output"
	"github.com/intelscan/intelscan/internal/tor"
)

// defaultDarkwebLimit caps results per engine when --limit is not given.
const defaultDarkwebLimit = 25

// NewDarkwebCmd creates the darkweb command.
func NewDarkwebCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "darkweb <term>",
		Short: "Search dark web engines for a term",
		Long: `Darkweb queries onion search engines for mentions of a term. Queries
go through a Tor SOCKS5 proxy so that onion mirrors are reachable and
the clearnet engines see a Tor exit instead of your address.

By default an external Tor daemon is expected at 127.0.0.1:9050.
Use --embedded-tor to start a bundled daemon instead; the first
bootstrap takes one to three minutes.

Examples:
  # Search via an external Tor daemon
  intelscan darkweb "alice@example.com"

  # Start an embedded Tor daemon
  intelscan darkweb --embedded-tor alice

  # Tor Browser exposes its proxy on 9150
  intelscan darkweb --tor-proxy 127.0.0.1:9150 alice`,
		Args: cobra.ExactArgs(1),
		RunE: runDarkwebCmd,
	}

	cmd.Flags().String("tor-proxy", config.DefaultTorProxyAddress,
		"Tor SOCKS5 proxy address in host:port format")
	cmd.Flags().Bool("embedded-tor", false,
		"Start an embedded Tor daemon instead of using an external proxy")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().IntP("limit", "n", defaultDarkwebLimit,
		"Maximum results to keep per engine")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each engine request")

	return cmd
}

// runDarkwebCmd executes the darkweb command.
func runDarkwebCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("tor-proxy") {
		cfg.TorProxyAddress, err = cmd.Flags().GetString("tor-proxy")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("embedded-tor") {
		cfg.UseEmbeddedTor, err = cmd.Flags().GetBool("embedded-tor")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("tor-timeout") {
		cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout")
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

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
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

	client, daemon, err := connectTor(ctx, cfg, printer, logger)
	if err != nil {
		return err
	}
	if daemon != nil {
		defer func() {
			logger.Info("stopping embedded Tor daemon...")
			if err := daemon.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}()
	}

	printer.Headerf("Searching dark web for: %s", args[0])

	searcher := darkweb.NewSearcher(db,
		darkweb.WithTorClient(client),
		darkweb.WithUserAgent(cfg.UserAgent),
		darkweb.WithLimit(limit),
		darkweb.WithLogger(logger),
	)
	result, err := searcher.Search(ctx, args[0])
	if err != nil {
		return fmt.Errorf("dark web search failed: %w", err)
	}

	printer.DarkwebResult(result)
	return nil
}

// connectTor builds a verified Tor client per configuration. The
// returned daemon is non-nil only when an embedded daemon was started;
// the caller owns stopping it.
func connectTor(ctx context.Context, cfg *config.Config, printer *output.Printer, logger *slog.Logger) (*tor.Client, *tor.EmbeddedTor, error) {
	if cfg.UseEmbeddedTor {
		printer.Headerf("Starting embedded Tor daemon (first bootstrap can take a few minutes)...")

		daemon := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
		if err := daemon.Start(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
		}

		client, err := daemon.NewClient(cfg.Timeout)
		if err != nil {
			if stopErr := daemon.Stop(); stopErr != nil {
				logger.Error("failed to stop embedded Tor", "error", stopErr)
			}
			return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
		}

		logger.Info("embedded Tor daemon ready", "socksAddr", daemon.SocksAddr())
		return client, daemon, nil
	}

	client, err := tor.NewClient(cfg.TorProxyAddress, cfg.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}

	status := client.CheckConnection(ctx)
	if status != tor.ProxyStatusOK {
		return nil, nil, fmt.Errorf("tor proxy check failed: %s (make sure Tor is running at %s)",
			status, cfg.TorProxyAddress)
	}

	logger.Info("Tor proxy connection verified", "address", cfg.TorProxyAddress)
	return client, nil, nil
}
