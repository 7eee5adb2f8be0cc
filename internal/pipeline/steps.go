package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/intelscan/intelscan/internal/breach"
	"github.com/intelscan/intelscan/internal/darkweb"
	"github.com/intelscan/intelscan/internal/domainintel"
	"github.com/intelscan/intelscan/internal/model"
	"github.com/intelscan/intelscan/internal/phone"
	"github.com/intelscan/intelscan/internal/search"
)

// UsernameStep runs the platform presence sweep for the report subject.
//
// Design decision: The step receives an already-configured Searcher and
// platform selection rather than building them, because the CLI and the
// batch processor share one Searcher across subjects; only the subject
// varies per report.
type UsernameStep struct {
	// searcher executes the sweep and persists each probe.
	searcher *search.Searcher

	// platforms is the resolved sweep selection. Empty means every
	// probeable platform.
	platforms []model.Platform
}

// NewUsernameStep creates a username sweep step over the given platforms.
// Passing no platforms sweeps every probeable platform in the registry.
func NewUsernameStep(searcher *search.Searcher, platforms []model.Platform) *UsernameStep {
	if len(platforms) == 0 {
		platforms = search.Resolve(nil)
	}
	return &UsernameStep{
		searcher:  searcher,
		platforms: platforms,
	}
}

// Name returns the step name.
func (s *UsernameStep) Name() string {
	return "username_sweep"
}

// Do executes the username sweep. Partial sweep results are kept on the
// report even when the sweep aborts, so the report shows what completed.
func (s *UsernameStep) Do(ctx context.Context, report *model.Report) error {
	sweep, err := s.searcher.Run(ctx, report.Subject, s.platforms)
	if sweep != nil {
		report.ProbeResults = sweep.Results
		report.FoundCount = sweep.Found
		report.TotalProbes = sweep.Total
	}
	return err
}

// BreachStep checks the report subject against the breach providers.
type BreachStep struct {
	// checker queries the configured providers.
	checker *breach.Checker

	// logger for structured logging.
	logger *slog.Logger
}

// BreachStepOption configures a BreachStep.
type BreachStepOption func(*BreachStep)

// WithBreachLogger sets a custom logger for the breach step.
func WithBreachLogger(logger *slog.Logger) BreachStepOption {
	return func(s *BreachStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewBreachStep creates a breach exposure step.
func NewBreachStep(checker *breach.Checker, opts ...BreachStepOption) *BreachStep {
	s := &BreachStep{
		checker: checker,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *BreachStep) Name() string {
	return "breach_check"
}

// Do executes the breach check. An environment with no provider API keys
// skips the check instead of failing the investigation.
func (s *BreachStep) Do(ctx context.Context, report *model.Report) error {
	result, err := s.checker.Check(ctx, report.Subject)
	if err != nil {
		if errors.Is(err, breach.ErrNoAPIKeys) {
			s.logger.Warn("skipping breach check, no provider API keys configured",
				"subject", report.Subject,
			)
			return nil
		}
		return err
	}

	report.BreachHits = result.Hits
	return nil
}

// DarkwebStep sweeps the onion search engines for the report subject.
type DarkwebStep struct {
	// searcher executes the engine sweep and persists the mentions.
	searcher *darkweb.Searcher
}

// NewDarkwebStep creates a dark web sweep step.
func NewDarkwebStep(searcher *darkweb.Searcher) *DarkwebStep {
	return &DarkwebStep{searcher: searcher}
}

// Name returns the step name.
func (s *DarkwebStep) Name() string {
	return "darkweb_sweep"
}

// Do executes the dark web sweep.
func (s *DarkwebStep) Do(ctx context.Context, report *model.Report) error {
	result, err := s.searcher.Search(ctx, report.Subject)
	if err != nil {
		return err
	}

	report.DarkwebMentions = result.Mentions
	return nil
}

// PhoneStep analyzes one phone number attached to the investigation.
// Callers attach one step per number.
type PhoneStep struct {
	// analyzer performs the analysis and persists the outcome.
	analyzer *phone.Analyzer

	// number is the phone number to analyze.
	number string

	// region interprets numbers written in national format.
	region string
}

// NewPhoneStep creates a phone analysis step for one number.
func NewPhoneStep(analyzer *phone.Analyzer, number, region string) *PhoneStep {
	return &PhoneStep{
		analyzer: analyzer,
		number:   number,
		region:   region,
	}
}

// Name returns the step name.
func (s *PhoneStep) Name() string {
	return "phone_lookup"
}

// Do executes the phone analysis.
func (s *PhoneStep) Do(ctx context.Context, report *model.Report) error {
	result, err := s.analyzer.Lookup(ctx, s.number, s.region)
	if err != nil {
		return err
	}

	report.PhoneLookups = append(report.PhoneLookups, result.Record)
	return nil
}

// DomainStep snapshots one domain attached to the investigation.
type DomainStep struct {
	// inspector performs the WHOIS and DNS lookups.
	inspector *domainintel.Inspector

	// domain is the domain to snapshot.
	domain string
}

// NewDomainStep creates a domain lookup step for one domain.
func NewDomainStep(inspector *domainintel.Inspector, domain string) *DomainStep {
	return &DomainStep{
		inspector: inspector,
		domain:    domain,
	}
}

// Name returns the step name.
func (s *DomainStep) Name() string {
	return "domain_lookup"
}

// Do executes the domain lookup.
func (s *DomainStep) Do(ctx context.Context, report *model.Report) error {
	result, err := s.inspector.Lookup(ctx, s.domain)
	if err != nil {
		return err
	}

	report.DomainLookup = &result.Record
	return nil
}

// InvestigationConfig bundles the services an investigation runs and the
// optional extras attached by the caller. Any nil service leaves its
// step out of the pipeline.
type InvestigationConfig struct {
	// Searcher runs the username presence sweep.
	Searcher *search.Searcher

	// Platforms restricts the sweep. Empty sweeps every probeable
	// platform.
	Platforms []model.Platform

	// BreachChecker runs the breach exposure check.
	BreachChecker *breach.Checker

	// DarkwebSearcher runs the dark web sweep.
	DarkwebSearcher *darkweb.Searcher

	// PhoneAnalyzer analyzes the attached PhoneNumbers; one step per
	// number.
	PhoneAnalyzer *phone.Analyzer
	PhoneNumbers  []string
	PhoneRegion   string

	// DomainInspector snapshots Domain when non-empty.
	DomainInspector *domainintel.Inspector
	Domain          string
}

// NewInvestigation creates the standard investigation pipeline: username
// sweep, breach exposure, dark web sweep, then any phone and domain
// lookups the config attaches.
//
// Design decision: We assemble the pipeline here rather than in the CLI
// because:
// 1. Most callers want the same step ordering
// 2. It keeps the continue-on-error default in one place
// 3. The batch processor reuses it as a factory
//
// The investigation continues past failed steps by default, since a dead
// provider shouldn't hide what the other lookups found; pass
// WithContinueOnError(false) to restore fail-fast behavior.
func NewInvestigation(cfg InvestigationConfig, opts ...Option) *Pipeline {
	p := New(append([]Option{WithContinueOnError(true)}, opts...)...)

	if cfg.Searcher != nil {
		p.AddStep(NewUsernameStep(cfg.Searcher, cfg.Platforms))
	}
	if cfg.BreachChecker != nil {
		p.AddStep(NewBreachStep(cfg.BreachChecker, WithBreachLogger(p.logger)))
	}
	if cfg.DarkwebSearcher != nil {
		p.AddStep(NewDarkwebStep(cfg.DarkwebSearcher))
	}
	if cfg.PhoneAnalyzer != nil {
		for _, number := range cfg.PhoneNumbers {
			p.AddStep(NewPhoneStep(cfg.PhoneAnalyzer, number, cfg.PhoneRegion))
		}
	}
	if cfg.DomainInspector != nil && cfg.Domain != "" {
		p.AddStep(NewDomainStep(cfg.DomainInspector, cfg.Domain))
	}

	return p
}
