package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/intelscan/intelscan/internal/model"
)

// notFoundPhrases are body substrings that mark a soft 404: platforms that
// answer HTTP 200 for missing profiles but render an error page. Matching
// is case-insensitive.
//
// This is a heuristic and a known limitation: a platform whose error page
// uses none of these phrases is misread as a hit, and a real profile whose
// bio contains one ("not available for hire") is misread as a miss. There
// are deliberately no per-platform overrides; classification stays uniform.
var notFoundPhrases = []string{
	"page not found",
	"user not found",
	"profile not found",
	"account not found",
	"doesn't exist",
	"not available",
	"sorry, this page isn't available",
	"the page you requested was not found",
}

// Prober performs the HTTP existence check for one username on one
// platform.
//
// Design decision: We use a struct with the http.Client rather than
// passing the client on each call because:
//  1. Client configuration (timeout, transport) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with httptest servers
type Prober struct {
	// client is the injected HTTP client; see NewClient.
	client *http.Client

	// userAgent is sent with every probe request.
	userAgent string

	// maxBodySize limits how much of a 200 response is inspected for
	// not-found phrases. Default is 1MB; error pages are small.
	maxBodySize int64
}

// Option configures a Prober.
type Option func(*Prober)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(p *Prober) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum number of response bytes inspected
// during classification.
func WithMaxBodySize(size int64) Option {
	return func(p *Prober) {
		if size > 0 {
			p.maxBodySize = size
		}
	}
}

// NewProber creates a prober around an injected HTTP client.
func NewProber(client *http.Client, opts ...Option) *Prober {
	p := &Prober{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: 1 << 20,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Check probes one platform for the given raw username and classifies the
// response. It never returns an error: transport failures come back as a
// negative result with an "Error: ..." reason and no status code, so a
// single unreachable platform cannot abort a sweep.
//
// Callers normally pre-filter platforms without a URL template; if one
// slips through, the result marks the platform as having no automated
// check.
func (p *Prober) Check(ctx context.Context, username string, platform model.Platform) model.ProbeResult {
	result := model.ProbeResult{Platform: platform.Name}

	if !platform.Probeable() {
		result.Reason = "No URL check available"
		return result
	}

	result.URL = BuildProfileURL(platform.URLTemplate, username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, result.URL, nil)
	if err != nil {
		result.Reason = "Error: " + err.Error()
		return result
	}

	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := p.client.Do(req)
	if err != nil {
		result.Reason = "Error: " + err.Error()
		return result
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodySize))
		if err != nil {
			// The body died mid-transfer; treat it like any other
			// transport failure.
			result.Reason = "Error: " + err.Error()
			return result
		}
		result.StatusCode = resp.StatusCode
		if hasNotFoundPhrase(string(body)) {
			result.Reason = "Profile page indicates user not found"
			return result
		}
		result.Found = true
		result.Reason = fmt.Sprintf("HTTP %d - Likely exists", resp.StatusCode)
	case http.StatusNotFound:
		result.StatusCode = resp.StatusCode
		result.Reason = "HTTP 404 - Not found"
	default:
		result.StatusCode = resp.StatusCode
		result.Reason = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	return result
}

// hasNotFoundPhrase reports whether the page body contains any soft-404
// phrase, ignoring case.
func hasNotFoundPhrase(body string) bool {
	lower := strings.ToLower(body)
	for _, phrase := range notFoundPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
