package breach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ibnaleem/gobreach"
	"github.com/tidwall/gjson"

	"github.com/intelscan/intelscan/internal/database"
	"github.com/intelscan/intelscan/internal/model"
)

const (
	// SourceBreachDirectory labels hits returned by BreachDirectory.
	SourceBreachDirectory = "breachdirectory"

	// SourceHIBP labels hits returned by Have I Been Pwned.
	SourceHIBP = "hibp"

	// defaultHIBPBaseURL is the production Have I Been Pwned v3 API.
	defaultHIBPBaseURL = "https://haveibeenpwned.com/api/v3"

	// defaultUserAgent identifies the client to Have I Been Pwned, which
	// rejects requests without a user agent.
	defaultUserAgent = "intelscan"

	// defaultTimeout bounds each provider request.
	defaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a provider response is read.
	maxResponseBytes = 1 * 1024 * 1024
)

// ErrNoAPIKeys is returned when no breach provider has a configured key.
var ErrNoAPIKeys = errors.New("no breach provider API keys configured")

// Result is the outcome of checking one account across the configured
// providers.
type Result struct {
	// Account is the checked email address or username.
	Account string `json:"account"`

	// Hits are the persisted findings, BreachDirectory first.
	Hits []model.BreachHit `json:"hits"`

	// Sources lists the providers that were queried.
	Sources []string `json:"sources"`

	// Clean is true when every queried provider reported no exposure.
	Clean bool `json:"clean"`
}

// Checker queries breach providers and persists the findings.
type Checker struct {
	// db receives the hit rows plus a session row.
	db *database.LookupDB

	// httpClient issues the Have I Been Pwned requests.
	httpClient *http.Client

	// hibpBaseURL is the Have I Been Pwned API root.
	hibpBaseURL string

	// hibpKey and bdKey gate their providers. An empty key skips the
	// provider.
	hibpKey string
	bdKey   string

	// userAgent is sent on Have I Been Pwned requests.
	userAgent string

	// bdSearch performs the BreachDirectory query. Tests substitute
	// canned results here.
	bdSearch func(account string) ([]model.BreachHit, error)

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithHIBPKey sets the Have I Been Pwned API key.
func WithHIBPKey(key string) Option {
	return func(c *Checker) {
		c.hibpKey = key
	}
}

// WithBreachDirectoryKey sets the BreachDirectory (RapidAPI) key.
func WithBreachDirectoryKey(key string) Option {
	return func(c *Checker) {
		c.bdKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithHIBPBaseURL overrides the Have I Been Pwned API root.
func WithHIBPBaseURL(baseURL string) Option {
	return func(c *Checker) {
		if baseURL != "" {
			c.hibpBaseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithUserAgent sets the user agent sent to Have I Been Pwned.
func WithUserAgent(ua string) Option {
	return func(c *Checker) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChecker creates a Checker backed by the given database.
func NewChecker(db *database.LookupDB, opts ...Option) *Checker {
	c := &Checker{
		db:          db,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		hibpBaseURL: defaultHIBPBaseURL,
		userAgent:   defaultUserAgent,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.bdSearch == nil {
		c.bdSearch = c.searchBreachDirectory
	}

	return c
}

// Check queries every provider with a configured key and appends the
// findings to the database.
//
// A provider failure is tolerated as long as at least one provider
// answers; only when every queried provider fails does Check return an
// error, and then nothing is persisted.
func (c *Checker) Check(ctx context.Context, account string) (*Result, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, errors.New("empty account")
	}
	if c.bdKey == "" && c.hibpKey == "" {
		return nil, ErrNoAPIKeys
	}

	var (
		hits     []model.BreachHit
		sources  []string
		failures []error
	)

	if c.bdKey != "" {
		sources = append(sources, SourceBreachDirectory)
		found, err := c.bdSearch(account)
		if err != nil {
			c.logger.Warn("breachdirectory query failed", "account", account, "error", err)
			failures = append(failures, err)
		} else {
			hits = append(hits, found...)
		}
	}

	if c.hibpKey != "" {
		sources = append(sources, SourceHIBP)
		found, err := c.searchHIBP(ctx, account)
		if err != nil {
			c.logger.Warn("haveibeenpwned query failed", "account", account, "error", err)
			failures = append(failures, err)
		} else {
			hits = append(hits, found...)
		}
	}

	if len(failures) == len(sources) {
		return nil, fmt.Errorf("every breach provider failed: %w", errors.Join(failures...))
	}

	if err := c.db.SaveBreachHits(ctx, hits); err != nil {
		return nil, fmt.Errorf("failed to persist breach hits: %w", err)
	}

	session := &model.SearchSession{
		SessionID:    uuid.NewString(),
		Type:         "breach",
		Query:        account,
		ResultsCount: len(hits),
	}
	if _, err := c.db.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to record search session: %w", err)
	}

	c.logger.Info("breach check completed",
		"account", account,
		"sources", len(sources),
		"hits", len(hits),
	)

	return &Result{
		Account: account,
		Hits:    hits,
		Sources: sources,
		Clean:   len(hits) == 0,
	}, nil
}

// searchBreachDirectory queries BreachDirectory and maps each entry to a
// hit graded by the credential material it exposes.
func (c *Checker) searchBreachDirectory(account string) ([]model.BreachHit, error) {
	client, err := gobreach.NewBreachDirectoryClient(c.bdKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create breachdirectory client: %w", err)
	}

	resp, err := client.Search(account)
	if err != nil {
		return nil, fmt.Errorf("breachdirectory query failed: %w", err)
	}

	var hits []model.BreachHit
	for _, entry := range resp.Result {
		name := entry.Sources
		if name == "" {
			name = "BreachDirectory"
		}

		severity := breachDirectorySeverity(entry.Password, entry.Sha1, entry.Hash)
		details := "account listed in breach index"
		switch severity {
		case model.SeverityCritical:
			details = "password exposed in plaintext"
		case model.SeverityHigh:
			details = fmt.Sprintf("password hash exposed (%s)", hashPrefix(entry.Sha1, entry.Hash))
		}

		hits = append(hits, model.BreachHit{
			Account:    account,
			Source:     SourceBreachDirectory,
			BreachName: name,
			Severity:   severity,
			Details:    details,
		})
	}

	return hits, nil
}

// searchHIBP queries the Have I Been Pwned breachedaccount endpoint. A
// 404 means the account is clean and returns no hits and no error.
func (c *Checker) searchHIBP(ctx context.Context, account string) ([]model.BreachHit, error) {
	endpoint := c.hibpBaseURL + "/breachedaccount/" + url.PathEscape(account) + "?truncateResponse=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create haveibeenpwned request: %w", err)
	}
	req.Header.Set("hibp-api-key", c.hibpKey)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("haveibeenpwned request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to parsing
	case http.StatusNotFound:
		return nil, nil
	case http.StatusUnauthorized:
		return nil, errors.New("invalid haveibeenpwned api key")
	case http.StatusTooManyRequests:
		return nil, errors.New("haveibeenpwned rate limit exceeded")
	default:
		return nil, fmt.Errorf("haveibeenpwned returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read haveibeenpwned response: %w", err)
	}

	var hits []model.BreachHit
	for _, entry := range gjson.ParseBytes(body).Array() {
		name := entry.Get("Title").Str
		if name == "" {
			name = entry.Get("Name").Str
		}

		var classes []string
		for _, class := range entry.Get("DataClasses").Array() {
			classes = append(classes, class.Str)
		}

		details := "listed in breach"
		if breachDate := entry.Get("BreachDate").Str; breachDate != "" {
			details = "breached " + breachDate
		}
		if len(classes) > 0 {
			details += ", exposing " + strings.Join(classes, ", ")
		}

		hits = append(hits, model.BreachHit{
			Account:    account,
			Source:     SourceHIBP,
			BreachName: name,
			Severity:   hibpSeverity(classes),
			Details:    details,
		})
	}

	return hits, nil
}

// breachDirectorySeverity grades a BreachDirectory entry. Plaintext
// passwords outrank hashes, which outrank bare index membership.
func breachDirectorySeverity(password, sha1, hash string) model.Severity {
	switch {
	case password != "":
		return model.SeverityCritical
	case sha1 != "" || hash != "":
		return model.SeverityHigh
	default:
		return model.SeverityMedium
	}
}

// hibpSeverity grades a Have I Been Pwned breach by its exposed data
// classes. Have I Been Pwned never serves plaintext credentials, so
// password exposure grades as high rather than critical.
func hibpSeverity(classes []string) model.Severity {
	for _, class := range classes {
		if strings.EqualFold(class, "Passwords") {
			return model.SeverityHigh
		}
	}
	return model.SeverityMedium
}

// hashPrefix returns a short identifying prefix of the exposed hash so
// stored details never carry the full credential hash.
func hashPrefix(sha1, hash string) string {
	h := sha1
	if h == "" {
		h = hash
	}
	if len(h) > 12 {
		h = h[:12]
	}
	if h == "" {
		return "unknown hash"
	}
	return h + "..."
}
