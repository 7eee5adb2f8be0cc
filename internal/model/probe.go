package model

// ProbeResult is the verdict of one HTTP check of one username against one
// platform. Results are created by the probe executor, consumed immediately
// by persistence and the sweep summary, and never mutated.
type ProbeResult struct {
	// Platform is the name of the checked platform.
	Platform string `json:"platform"`

	// URL is the fully constructed profile URL that was requested.
	// It is set even when the request itself failed at the transport level.
	URL string `json:"url,omitempty"`

	// Found reports whether the profile likely exists.
	Found bool `json:"found"`

	// StatusCode is the final HTTP status after redirects.
	// Zero means the request never produced a response (transport failure).
	StatusCode int `json:"status_code,omitempty"`

	// Reason is the human-readable classification explanation, for example
	// "HTTP 200 - Likely exists" or "Error: context deadline exceeded".
	Reason string `json:"reason"`
}
