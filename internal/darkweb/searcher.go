package darkweb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/intelscan/intelscan/internal/database"
	"github.com/intelscan/intelscan/internal/model"
	"github.com/intelscan/intelscan/internal/tor"
)

const (
	// defaultUserAgent is sent on every engine request. Some engines
	// reject clients without a user agent.
	defaultUserAgent = "intelscan"

	// defaultTimeout bounds each engine request. Engine pages can be
	// slow to render when routed through Tor.
	defaultTimeout = 60 * time.Second

	// defaultLimit caps how many mentions are kept per engine.
	defaultLimit = 25

	// defaultConcurrency is the maximum number of engines queried at
	// once.
	defaultConcurrency = 4

	// maxResponseBytes caps how much of an engine page is read.
	maxResponseBytes = 4 * 1024 * 1024
)

// Engine describes one onion search engine.
type Engine struct {
	// Name identifies the engine in persisted mentions and logs.
	Name string

	// BaseURL is the engine's clearnet mirror root.
	BaseURL string

	// OnionURL is the engine's own onion mirror root. It replaces
	// BaseURL when queries are routed through Tor. Optional.
	OnionURL string

	// SearchPath is the search endpoint path with one %s verb for the
	// query-escaped term.
	SearchPath string
}

// searchURL builds the full search URL for a term. The onion mirror is
// used when viaTor is set and the engine has one.
func (e Engine) searchURL(term string, viaTor bool) string {
	base := e.BaseURL
	if viaTor && e.OnionURL != "" {
		base = e.OnionURL
	}
	return base + fmt.Sprintf(e.SearchPath, url.QueryEscape(term))
}

// DefaultEngines returns the engines queried when none are configured.
func DefaultEngines() []Engine {
	return []Engine{
		{
			Name:       "ahmia",
			BaseURL:    "https://ahmia.fi",
			OnionURL:   "http://juhanurmihxlp77nkq76byazcldy2hlmovfu2epvl5ankdibsot4csyd.onion",
			SearchPath: "/search/?q=%s",
		},
	}
}

// Result is the outcome of sweeping the configured engines for one term.
type Result struct {
	// Term is the swept term.
	Term string `json:"term"`

	// Mentions are the persisted findings in engine order.
	Mentions []model.DarkwebMention `json:"mentions"`

	// Engines lists every engine that was queried.
	Engines []string `json:"engines"`

	// Failed lists the engines whose query failed.
	Failed []string `json:"failed,omitempty"`
}

// Searcher sweeps onion search engines and persists the mentions.
type Searcher struct {
	// db receives the mention rows plus a session row.
	db *database.LookupDB

	// engines are the search engines to sweep.
	engines []Engine

	// httpClient issues the engine requests.
	httpClient *http.Client

	// torClient, when set, routes engine requests through Tor and
	// switches engines with an onion mirror to that mirror.
	torClient *tor.Client

	// userAgent is sent on every engine request.
	userAgent string

	// limit caps how many mentions are kept per engine.
	limit int

	// concurrency is the maximum number of engines queried at once.
	concurrency int

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithEngines replaces the default engine list.
func WithEngines(engines []Engine) Option {
	return func(s *Searcher) {
		if len(engines) > 0 {
			s.engines = engines
		}
	}
}

// WithHTTPClient sets a custom HTTP client. A Tor client configured via
// WithTorClient takes precedence.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Searcher) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithTorClient routes engine queries through the given Tor SOCKS proxy.
// Engines that publish an onion mirror are queried over that mirror.
func WithTorClient(client *tor.Client) Option {
	return func(s *Searcher) {
		s.torClient = client
	}
}

// WithUserAgent sets the user agent sent to every engine.
func WithUserAgent(ua string) Option {
	return func(s *Searcher) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithLimit caps how many mentions are kept per engine. Zero or negative
// keeps every mention.
func WithLimit(n int) Option {
	return func(s *Searcher) {
		s.limit = n
	}
}

// WithConcurrency sets the maximum number of engines queried at once.
func WithConcurrency(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.concurrency = n
		}
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

// NewSearcher creates a Searcher backed by the given database.
func NewSearcher(db *database.LookupDB, opts ...Option) *Searcher {
	s := &Searcher{
		db:          db,
		engines:     DefaultEngines(),
		userAgent:   defaultUserAgent,
		limit:       defaultLimit,
		concurrency: defaultConcurrency,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.torClient != nil {
		// The injecting transport repeats the user agent on redirects,
		// which engines follow across mirror hops.
		s.httpClient = s.torClient.NewHTTPClientWithHeaders(map[string]string{
			"User-Agent": s.userAgent,
		})
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return s
}

// Search sweeps every configured engine for the term and appends the
// mentions to the database.
//
// Engines run concurrently up to the configured limit. A failed engine is
// logged and recorded in Result.Failed while the others continue; only
// when every engine fails does Search return an error, and then nothing
// is persisted. Cancellation of the context aborts the sweep.
func (s *Searcher) Search(ctx context.Context, term string) (*Result, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.New("empty search term")
	}

	s.logger.Info("starting darkweb sweep",
		"term", term,
		"engines", len(s.engines),
		"concurrency", s.concurrency,
	)

	startTime := time.Now()

	// Per-engine slots keep the combined mention order stable no matter
	// which engine answers first.
	perEngine := make([][]model.DarkwebMention, len(s.engines))
	failures := make([]error, len(s.engines))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, engine := range s.engines {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			mentions, err := s.queryEngine(ctx, engine, term)
			if err != nil {
				s.logger.Warn("engine query failed",
					"engine", engine.Name,
					"error", err,
				)
				// Record the failure and keep sweeping the other
				// engines.
				failures[i] = fmt.Errorf("%s: %w", engine.Name, err)
				return nil
			}

			perEngine[i] = mentions
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("darkweb sweep aborted: %w", err)
	}

	var (
		mentions []model.DarkwebMention
		engines  []string
		failed   []string
		errs     []error
	)
	for i, engine := range s.engines {
		engines = append(engines, engine.Name)
		if failures[i] != nil {
			failed = append(failed, engine.Name)
			errs = append(errs, failures[i])
			continue
		}
		mentions = append(mentions, perEngine[i]...)
	}

	if len(errs) == len(s.engines) {
		return nil, fmt.Errorf("every search engine failed: %w", errors.Join(errs...))
	}

	if err := s.db.SaveDarkwebMentions(ctx, mentions); err != nil {
		return nil, fmt.Errorf("failed to persist darkweb mentions: %w", err)
	}

	session := &model.SearchSession{
		SessionID:    uuid.NewString(),
		Type:         "darkweb",
		Query:        term,
		ResultsCount: len(mentions),
	}
	if _, err := s.db.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to record search session: %w", err)
	}

	s.logger.Info("darkweb sweep completed",
		"term", term,
		"mentions", len(mentions),
		"failed_engines", len(failed),
		"elapsed", time.Since(startTime),
	)

	return &Result{
		Term:     term,
		Mentions: mentions,
		Engines:  engines,
		Failed:   failed,
	}, nil
}

// queryEngine fetches one engine's result page and parses it into
// mentions, capped at the configured per-engine limit.
func (s *Searcher) queryEngine(ctx context.Context, engine Engine, term string) ([]model.DarkwebMention, error) {
	endpoint := engine.searchURL(term, s.torClient != nil)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("engine returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	mentions := s.parseResults(engine, term, body)
	if s.limit > 0 && len(mentions) > s.limit {
		mentions = mentions[:s.limit]
	}

	return mentions, nil
}

// parseResults extracts result links from an engine page. Anchors whose
// target resolves to a valid v3 onion host become mentions, deduplicated
// by host in document order. When the markup yields nothing, the raw
// page is scanned for onion addresses instead.
func (s *Searcher) parseResults(engine Engine, term string, body []byte) []model.DarkwebMention {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		s.logger.Debug("failed to parse engine page",
			"engine", engine.Name,
			"error", err,
		)
		return s.scanRaw(engine, term, string(body))
	}

	var mentions []model.DarkwebMention
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}

		target := resultTarget(href)
		host, err := tor.NormalizeAddress(target)
		if err != nil {
			// Clearnet links, v2 leftovers and mistyped addresses all
			// land here.
			return
		}
		if seen[host] {
			return
		}
		seen[host] = true

		mentions = append(mentions, model.DarkwebMention{
			Term:      term,
			Engine:    engine.Name,
			Title:     strings.Join(strings.Fields(sel.Text()), " "),
			URL:       target,
			OnionHost: host,
		})
	})

	if len(mentions) > 0 {
		return mentions
	}
	return s.scanRaw(engine, term, string(body))
}

// scanRaw recovers onion addresses from pages whose markup carried no
// parseable result anchors. These mentions have no title.
func (s *Searcher) scanRaw(engine Engine, term, body string) []model.DarkwebMention {
	var mentions []model.DarkwebMention
	for _, address := range tor.ExtractV3Addresses(body) {
		host, err := tor.NormalizeAddress(address)
		if err != nil {
			continue
		}
		mentions = append(mentions, model.DarkwebMention{
			Term:      term,
			Engine:    engine.Name,
			URL:       "http://" + host,
			OnionHost: host,
		})
	}
	return mentions
}

// resultTarget unwraps engine redirect links. Ahmia wraps result targets
// in a redirect endpoint carrying the destination in a redirect_url
// parameter; direct links pass through unchanged.
func resultTarget(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if redirect := u.Query().Get("redirect_url"); redirect != "" {
		return redirect
	}
	return href
}
