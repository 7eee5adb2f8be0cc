package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/intelscan/intelscan/internal/database"
	"github.com/intelscan/intelscan/internal/model"
	"github.com/intelscan/intelscan/internal/probe"
)

// Printer receives sweep progress for user-facing output.
// Implementations are called once per probe in sweep order, framed by a
// header and a summary. A nil printer is valid and produces no output.
type Printer interface {
	// SearchHeader announces the start of a sweep.
	SearchHeader(username string, total int)

	// ProbeResult reports one completed probe.
	ProbeResult(result model.ProbeResult)

	// SearchSummary reports the final found/total counts.
	SearchSummary(found, total int)
}

// Sweep is the outcome of one username sweep.
// Results appear in execution order and include misses and transport
// failures; Found counts only confirmed profiles.
type Sweep struct {
	// Username is the handle that was checked.
	Username string `json:"username"`

	// Results holds one entry per executed probe.
	Results []model.ProbeResult `json:"results"`

	// Found is the number of probes classified as an existing profile.
	Found int `json:"found"`

	// Total is the number of probes executed.
	Total int `json:"total"`
}

// Searcher runs username sweeps and persists each probe.
type Searcher struct {
	// prober executes individual platform checks.
	prober *probe.Prober

	// db receives one row per executed probe plus a session row per sweep.
	db *database.LookupDB

	// printer renders progress. May be nil for quiet operation.
	printer Printer

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithPrinter sets the progress printer.
// Without a printer the sweep runs quietly, which is what the pipeline
// and server paths want.
func WithPrinter(p Printer) Option {
	return func(s *Searcher) {
		s.printer = p
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSearcher creates a Searcher backed by the given prober and database.
func NewSearcher(prober *probe.Prober, db *database.LookupDB, opts ...Option) *Searcher {
	s := &Searcher{
		prober: prober,
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Resolve maps requested platform names onto registry entries.
//
// An empty or nil request selects every probeable platform in registry
// order. Explicit names keep their given order and are not deduplicated;
// names missing from the registry and platforms without a URL template are
// dropped silently. The returned slice is what a sweep will execute, so
// its length is the sweep's total.
func Resolve(names []string) []model.Platform {
	if len(names) == 0 {
		all := model.Platforms()
		selected := make([]model.Platform, 0, len(all))
		for _, p := range all {
			if p.Probeable() {
				selected = append(selected, p)
			}
		}
		return selected
	}

	selected := make([]model.Platform, 0, len(names))
	for _, name := range names {
		p, ok := model.LookupPlatform(name)
		if !ok || !p.Probeable() {
			continue
		}
		selected = append(selected, p)
	}
	return selected
}

// ResolveGroup expands a named platform group and resolves its members.
// Unknown group names return ok=false so callers can report the valid
// choices instead of running an empty sweep.
func ResolveGroup(group string) ([]model.Platform, bool) {
	names, ok := model.PlatformGroup(group)
	if !ok {
		return nil, false
	}
	return Resolve(names), true
}

// Run sweeps the given platforms for the username.
//
// Probes run sequentially in slice order. Every executed probe is appended
// to the database before the next one starts; a completed sweep also
// records one session row. Platforms without a URL template are filtered
// out first and never counted.
//
// On persistence failure or context cancellation the partial sweep is
// returned alongside the error so callers can still show what completed.
// Probe-level failures never abort the sweep; they come back as results
// with an "Error:" reason.
func (s *Searcher) Run(ctx context.Context, username string, platforms []model.Platform) (*Sweep, error) {
	probeable := make([]model.Platform, 0, len(platforms))
	for _, p := range platforms {
		if !p.Probeable() {
			s.logger.Debug("skipping platform without profile URL", "platform", p.Name)
			continue
		}
		probeable = append(probeable, p)
	}

	sweep := &Sweep{
		Username: username,
		Results:  make([]model.ProbeResult, 0, len(probeable)),
		Total:    len(probeable),
	}

	if s.printer != nil {
		s.printer.SearchHeader(username, sweep.Total)
	}

	for _, platform := range probeable {
		// Check for cancellation before starting each probe
		select {
		case <-ctx.Done():
			return sweep, ctx.Err()
		default:
		}

		s.logger.Debug("probing platform",
			"platform", platform.Name,
			"username", username,
		)

		result := s.prober.Check(ctx, username, platform)
		sweep.Results = append(sweep.Results, result)
		if result.Found {
			sweep.Found++
		}

		record := &model.UsernameSearch{
			Username:       username,
			Platform:       result.Platform,
			URL:            result.URL,
			Found:          result.Found,
			AdditionalInfo: result.Reason,
		}
		if _, err := s.db.SaveUsernameSearch(ctx, record); err != nil {
			return sweep, fmt.Errorf("failed to persist probe for %s: %w", platform.Name, err)
		}

		if s.printer != nil {
			s.printer.ProbeResult(result)
		}
	}

	// One session row per completed sweep; aborted sweeps record none.
	session := &model.SearchSession{
		SessionID:    uuid.NewString(),
		Type:         "username",
		Query:        username,
		ResultsCount: sweep.Found,
	}
	if _, err := s.db.SaveSession(ctx, session); err != nil {
		return sweep, fmt.Errorf("failed to record search session: %w", err)
	}

	if s.printer != nil {
		s.printer.SearchSummary(sweep.Found, sweep.Total)
	}

	s.logger.Info("sweep completed",
		"username", username,
		"found", sweep.Found,
		"total", sweep.Total,
	)

	return sweep, nil
}
