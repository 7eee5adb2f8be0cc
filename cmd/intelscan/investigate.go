package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/intelscan/intelscan/internal/breach"
	"github.com/intelscan/intelscan/internal/config"
	"github.com/intelscan/intelscan/internal/darkweb"
	"github.com/intelscan/intelscan/internal/database"
	"github.com/intelscan/intelscan/internal/domainintel"
	"github.com/intelscan/intelscan/internal/model"
	"github.com/intelscan/intelscan/internal/output"
	"github.com/intelscan/intelscan/internal/phone"
	"github.com/intelscan/intelscan/internal/pipeline"
	"github.com/intelscan/intelscan/internal/probe"
	"github.com/intelscan/intelscan/internal/report"
	"github.com/intelscan/intelscan/internal/search"
)

// NewInvestigateCmd creates the investigate command.
func NewInvestigateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "investigate <username>...",
		Short: "Run every lookup against one or more subjects",
		Long: `Investigate runs the full pipeline for each subject: username presence
sweep, breach exposure check, dark web search, and any phone numbers
or domain attached with flags. A failed step is recorded in the report
and the remaining steps still run.

Several subjects are investigated concurrently, and the attached phone
numbers and domain apply to each of them. Breach providers without API
keys and unreachable Tor proxies are skipped rather than treated as
failures.

Examples:
  # Username sweep, breaches, and dark web
  intelscan investigate alice

  # Attach a phone number and a domain
  intelscan investigate alice --phone +14155552671 --domain example.com

  # Write a JSON report instead of terminal output
  intelscan investigate alice --format json -o reports/alice.json

  # Investigate several subjects, two at a time, one report file each
  intelscan investigate alice bob carol -b 2 -f json -o reports/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInvestigateCmd,
	}

	cmd.Flags().StringSlice("phone", nil,
		"Phone numbers to analyze alongside the username (repeatable)")
	cmd.Flags().StringP("region", "r", "",
		"ISO 3166-1 region for national-format phone numbers")
	cmd.Flags().String("domain", "",
		"Domain to inspect alongside the username")
	cmd.Flags().StringP("format", "f", "text",
		"Report format: text, json, or markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file, or to a directory with several subjects")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Concurrent investigations when several subjects are given")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with probes")
	cmd.Flags().String("tor-proxy", config.DefaultTorProxyAddress,
		"Tor SOCKS5 proxy address for the dark web step")
	cmd.Flags().Bool("embedded-tor", false,
		"Start an embedded Tor daemon for the dark web step")

	return cmd
}

// runInvestigateCmd executes the investigate command.
func runInvestigateCmd(cmd *cobra.Command, args []string) error {
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
	if cmd.Flags().Changed("user-agent") {
		cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
		if err != nil {
			return err
		}
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

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	phones, err := cmd.Flags().GetStringSlice("phone")
	if err != nil {
		return err
	}
	region, err := cmd.Flags().GetString("region")
	if err != nil {
		return err
	}
	domain, err := cmd.Flags().GetString("domain")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	batchSize, err := cmd.Flags().GetInt("batch")
	if err != nil {
		return err
	}
	if format != "text" && format != report.FormatJSON && format != report.FormatMarkdown {
		return fmt.Errorf("unsupported report format %q (use text, json, or markdown)", format)
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

	platforms := search.Resolve(nil)
	if len(args) == 1 {
		printer.Headerf("Investigating %s across %d platforms", args[0], len(platforms))
	} else {
		printer.Headerf("Investigating %d subjects across %d platforms (concurrency: %d)",
			len(args), len(platforms), batchSize)
	}

	prober := probe.NewProber(probe.NewClient(cfg.Timeout),
		probe.WithUserAgent(cfg.UserAgent),
		probe.WithMaxBodySize(cfg.MaxBodySize),
	)

	investigation := pipeline.InvestigationConfig{
		Searcher:  search.NewSearcher(prober, db, search.WithLogger(logger)),
		Platforms: platforms,
		BreachChecker: breach.NewChecker(db,
			breach.WithHIBPKey(cfg.HIBPAPIKey),
			breach.WithBreachDirectoryKey(cfg.BreachDirectoryAPIKey),
			breach.WithHTTPClient(probe.NewClient(cfg.Timeout)),
			breach.WithUserAgent(cfg.UserAgent),
			breach.WithLogger(logger),
		),
		PhoneNumbers: phones,
		PhoneRegion:  region,
		Domain:       domain,
	}

	// An unreachable Tor proxy degrades the investigation instead of
	// aborting it.
	client, daemon, err := connectTor(ctx, cfg, printer, logger)
	if err != nil {
		printer.Warnf("skipping dark web search: %v", err)
		logger.Warn("dark web step skipped", "error", err)
	} else {
		if daemon != nil {
			defer func() {
				logger.Info("stopping embedded Tor daemon...")
				if err := daemon.Stop(); err != nil {
					logger.Error("failed to stop embedded Tor", "error", err)
				}
			}()
		}
		investigation.DarkwebSearcher = darkweb.NewSearcher(db,
			darkweb.WithTorClient(client),
			darkweb.WithUserAgent(cfg.UserAgent),
			darkweb.WithLogger(logger),
		)
	}

	if len(phones) > 0 {
		investigation.PhoneAnalyzer = phone.NewAnalyzer(db, phone.WithLogger(logger))
	}
	if domain != "" {
		investigation.DomainInspector = domainintel.NewInspector(db,
			domainintel.WithResolver(cfg.Resolver),
			domainintel.WithTimeout(cfg.Timeout),
			domainintel.WithLogger(logger),
		)
	}

	if len(args) > 1 {
		return runBatchInvestigation(ctx, cmd, printer, logger, db,
			investigation, args, batchSize, format, outputPath)
	}

	rep := model.NewReport(args[0])
	p := pipeline.NewInvestigation(investigation, pipeline.WithLogger(logger))
	if err := p.Execute(ctx, rep); err != nil {
		return fmt.Errorf("investigation failed: %w", err)
	}

	if err := saveInvestigationSession(ctx, db, rep); err != nil {
		logger.Error("failed to save investigation session", "error", err)
	}

	return renderReport(ctx, cmd, printer, rep, format, outputPath)
}

// runBatchInvestigation investigates several subjects concurrently,
// rendering each report as its pipeline completes. With --output set the
// reports land in that directory under conventional file names.
func runBatchInvestigation(
	ctx context.Context,
	cmd *cobra.Command,
	printer *output.Printer,
	logger *slog.Logger,
	db *database.LookupDB,
	investigation pipeline.InvestigationConfig,
	subjects []string,
	batchSize int,
	format, outputDir string,
) error {
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.NewInvestigation(investigation, pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(batchSize),
		pipeline.WithBatchLogger(logger),
	)

	// The callback fires on whichever worker finished, so rendering is
	// serialized to keep reports from interleaving on the terminal.
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, subjects, func(rep *model.Report, index int) {
		mu.Lock()
		defer mu.Unlock()

		printer.Headerf("[%d/%d] Completed: %s", index+1, len(subjects), rep.Subject)

		if err := saveInvestigationSession(ctx, db, rep); err != nil {
			logger.Error("failed to save investigation session",
				"subject", rep.Subject, "error", err)
		}

		path := ""
		if outputDir != "" {
			path = filepath.Join(outputDir, report.Filename(rep.Subject, format, time.Now()))
		}
		if err := renderReport(ctx, cmd, printer, rep, format, path); err != nil {
			logger.Error("failed to render report",
				"subject", rep.Subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("investigation failed: %w", err)
	}

	return nil
}

// saveInvestigationSession records the investigation in the lookup
// history. The nested steps already recorded their own sessions; this
// row ties the run together for the recent view.
func saveInvestigationSession(ctx context.Context, db *database.LookupDB, rep *model.Report) error {
	_, err := db.SaveSession(ctx, &model.SearchSession{
		SessionID:    uuid.NewString(),
		Type:         "investigate",
		Query:        rep.Subject,
		ResultsCount: rep.FoundCount,
	})
	return err
}

// renderReport writes the finished report in the requested format,
// either to the terminal or to --output.
func renderReport(ctx context.Context, cmd *cobra.Command, printer *output.Printer, rep *model.Report, format, outputPath string) error {
	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		dir := filepath.Dir(outputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case report.FormatJSON:
		if err := report.NewJSONWriter(out, report.WithPrettyPrint()).Write(ctx, rep); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	case report.FormatMarkdown:
		if err := report.NewMarkdownWriter(out).Write(ctx, rep); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	default:
		target := printer
		if outputPath != "" {
			// Files get plain text regardless of terminal color settings.
			target = output.NewPrinter(out, output.WithNoColor(true))
		}
		target.Report(rep)
	}

	if outputPath != "" {
		printer.ExportedTo(outputPath)
	}
	return nil
}
