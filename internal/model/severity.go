package model

// Severity grades how exposed an account is by a breach record.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct exposure.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor exposure with limited impact.
	SeverityLow

	// SeverityMedium indicates the account appeared in a breach without
	// credential material (membership only).
	SeverityMedium

	// SeverityHigh indicates hashed credential material was exposed.
	SeverityHigh

	// SeverityCritical indicates plaintext credentials were exposed.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON serializes the severity as its string form so reports and
// API responses stay readable.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON accepts the string form produced by MarshalJSON.
func (s *Severity) UnmarshalJSON(data []byte) error {
	*s = ParseSeverity(string(data))
	return nil
}

// ParseSeverity converts a string to a Severity. Unrecognized input maps to
// SeverityInfo, matching the storage convention of treating unknown rows as
// informational.
func ParseSeverity(raw string) Severity {
	switch trimQuotes(raw) {
	case "LOW":
		return SeverityLow
	case "MEDIUM":
		return SeverityMedium
	case "HIGH":
		return SeverityHigh
	case "CRITICAL":
		return SeverityCritical
	default:
		return SeverityInfo
	}
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
