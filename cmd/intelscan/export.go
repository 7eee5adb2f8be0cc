package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/intelscan/intelscan/internal/database"
	"github.com/intelscan/intelscan/internal/model"
	"github.com/intelscan/intelscan/internal/report"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <username>",
		Short: "Export lookup history for a username as a report file",
		Long: `Export rebuilds a report from the persisted lookup history of a
username and writes it into the results directory. Probe results,
breach hits, and dark web mentions recorded for the username are
included; run the other commands first to populate them.

Examples:
  # Write a JSON report
  intelscan export alice

  # Write a Markdown report
  intelscan export alice -f markdown

  # Write both formats into a specific directory
  intelscan export alice -f all -o ./reports`,
		Args: cobra.ExactArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("format", "f", report.FormatJSON,
		"Report format: json, markdown, or all")
	cmd.Flags().StringP("output", "o", "",
		"Directory to write report files into (default: results directory)")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	formats, err := exportFormats(cmd)
	if err != nil {
		return err
	}

	outDir := cfg.ResultsDir
	if cmd.Flags().Changed("output") {
		outDir, err = cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
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

	rep, err := rebuildReport(ctx, db, args[0])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	printer := newPrinter(cmd, cfg)
	now := time.Now()
	for _, format := range formats {
		path := filepath.Join(outDir, report.Filename(args[0], format, now))
		if err := writeReportFile(ctx, path, format, rep); err != nil {
			return err
		}
		printer.ExportedTo(path)
	}
	return nil
}

// exportFormats parses the --format flag into writer format names.
func exportFormats(cmd *cobra.Command) ([]string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	switch format {
	case report.FormatJSON:
		return []string{report.FormatJSON}, nil
	case report.FormatMarkdown:
		return []string{report.FormatMarkdown}, nil
	case "all":
		return []string{report.FormatJSON, report.FormatMarkdown}, nil
	default:
		return nil, fmt.Errorf("unsupported report format %q (use json, markdown, or all)", format)
	}
}

// rebuildReport reassembles a report from the persisted history of a
// username. An account with no history at all is an error so a typo
// does not silently export an empty report.
func rebuildReport(ctx context.Context, db *database.LookupDB, username string) (*model.Report, error) {
	rep := model.NewReport(username)

	searches, err := db.UsernameSearchesFor(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to read probe history: %w", err)
	}
	for _, row := range searches {
		rep.ProbeResults = append(rep.ProbeResults, model.ProbeResult{
			Platform: row.Platform,
			URL:      row.URL,
			Found:    row.Found,
			Reason:   row.AdditionalInfo,
		})
		rep.TotalProbes++
		if row.Found {
			rep.FoundCount++
		}
	}

	rep.BreachHits, err = db.BreachHitsFor(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to read breach history: %w", err)
	}

	rep.DarkwebMentions, err = db.DarkwebMentionsFor(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to read dark web history: %w", err)
	}

	if len(rep.ProbeResults) == 0 && len(rep.BreachHits) == 0 && len(rep.DarkwebMentions) == 0 {
		return nil, fmt.Errorf("no lookup history for %q (run search, breach, or darkweb first)", username)
	}
	return rep, nil
}

// writeReportFile writes one report file with owner-only permissions.
// Reports may contain sensitive information that should only be
// readable by the owner.
func writeReportFile(ctx context.Context, path, format string, rep *model.Report) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	var writer report.Writer
	switch format {
	case report.FormatMarkdown:
		writer = report.NewMarkdownWriter(f)
	default:
		writer = report.NewJSONWriter(f, report.WithPrettyPrint())
	}

	if err := writer.Write(ctx, rep); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s report: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}
