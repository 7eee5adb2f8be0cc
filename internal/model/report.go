package model

import (
	"fmt"
	"time"
)

// Report aggregates every finding collected about one subject. It is the
// unit the report writers serialize and the investigation pipeline fills in
// step by step.
//
// Design decision: We use a single struct with optional sections rather than
// per-module report types to simplify serialization; a section left at its
// zero value is omitted from output.
type Report struct {
	// Subject is the investigated identifier (username, usually).
	Subject string `json:"subject"`

	// GeneratedAt is the report creation timestamp.
	GeneratedAt time.Time `json:"generated_at"`

	// ProbeResults holds the username presence verdicts in sweep order.
	ProbeResults []ProbeResult `json:"probe_results,omitempty"`

	// FoundCount and TotalProbes summarize the sweep. TotalProbes counts
	// executed probes only; platforms without a URL template are excluded.
	FoundCount  int `json:"found_count"`
	TotalProbes int `json:"total_probes"`

	// PhoneLookups holds phone analyses attached to this subject.
	PhoneLookups []PhoneLookup `json:"phone_lookups,omitempty"`

	// DomainLookup holds the domain snapshot, when one was requested.
	DomainLookup *DomainLookup `json:"domain_lookup,omitempty"`

	// BreachHits holds breach-exposure findings.
	BreachHits []BreachHit `json:"breach_hits,omitempty"`

	// DarkwebMentions holds onion search engine results.
	DarkwebMentions []DarkwebMention `json:"darkweb_mentions,omitempty"`

	// Errors records module failures that did not abort the run.
	Errors []string `json:"errors,omitempty"`
}

// NewReport creates an empty report for the given subject.
func NewReport(subject string) *Report {
	return &Report{
		Subject:     subject,
		GeneratedAt: time.Now(),
	}
}

// RecordError appends a non-fatal module failure to the report.
func (r *Report) RecordError(module string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", module, err))
}

// FoundProfiles returns the probe results with a positive verdict, in sweep
// order.
func (r *Report) FoundProfiles() []ProbeResult {
	var found []ProbeResult
	for _, pr := range r.ProbeResults {
		if pr.Found {
			found = append(found, pr)
		}
	}
	return found
}

// MaxBreachSeverity returns the highest severity among the breach hits, and
// false when there are no hits.
func (r *Report) MaxBreachSeverity() (Severity, bool) {
	if len(r.BreachHits) == 0 {
		return SeverityInfo, false
	}
	maxSev := SeverityInfo
	for _, h := range r.BreachHits {
		if h.Severity > maxSev {
			maxSev = h.Severity
		}
	}
	return maxSev, true
}
