package probe

import (
	"net/http"
	"time"
)

const (
	// DefaultUserAgent is the browser identity sent with every probe.
	// Profile pages frequently serve interstitials or blocks to obvious
	// bot agents, which would skew classification.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// DefaultTimeout bounds one probe end to end, including redirects.
	DefaultTimeout = 5 * time.Second

	// maxTimeout is the ceiling for configurable probe timeouts. Probes
	// are sequential, so a generous timeout multiplies across the whole
	// sweep.
	maxTimeout = 5 * time.Second
)

// NewClient builds the HTTP client used for platform probes. Redirects are
// followed (Go's default, capped at 10), cookies are not kept, and the
// timeout covers the full request. Timeouts outside (0, 5s] fall back to
// the default.
//
// Design decision: We hand out a plain *http.Client rather than wrapping it
// because the prober is the only consumer and tests want to substitute
// httptest servers without going through another abstraction.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 || timeout > maxTimeout {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        16,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: timeout,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
