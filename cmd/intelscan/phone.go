package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/intelscan/intelscan/internal/phone"
)

// NewPhoneCmd creates the phone command.
func NewPhoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phone <number>",
		Short: "Analyze a phone number",
		Long: `Phone parses a number and reports its country, carrier, line type,
location, and timezones. Analysis runs entirely offline against bundled
carrier metadata; no network requests are made.

Numbers in international format (+44...) need no region. National
format numbers need --region to disambiguate the country.

Examples:
  # International format
  intelscan phone +14155552671

  # National format with region
  intelscan phone "020 7946 0000" -r GB`,
		Args: cobra.ExactArgs(1),
		RunE: runPhoneCmd,
	}

	cmd.Flags().StringP("region", "r", "",
		"ISO 3166-1 region for national-format numbers (e.g., US, GB, RU)")

	return cmd
}

// runPhoneCmd executes the phone command.
func runPhoneCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	region, err := cmd.Flags().GetString("region")
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

	printer := newPrinter(cmd, cfg)
	printer.Headerf("Analyzing phone number: %s", args[0])

	analyzer := phone.NewAnalyzer(db, phone.WithLogger(logger))
	result, err := analyzer.Lookup(ctx, args[0], region)
	if err != nil {
		return fmt.Errorf("phone analysis failed: %w", err)
	}

	printer.PhoneResult(result)
	return nil
}
