package model

import "time"

// UsernameSearch is one persisted username probe attempt. The table is an
// append-only history: repeat searches for the same username create new rows
// rather than updating old ones, which is what makes historical comparison
// possible.
type UsernameSearch struct {
	// ID is the auto-incremented row identifier.
	ID int64 `json:"id"`

	// Username is the raw (unencoded) username that was searched.
	Username string `json:"username"`

	// Platform is the platform the probe ran against.
	Platform string `json:"platform"`

	// URL is the constructed profile URL.
	URL string `json:"url"`

	// Found is the probe verdict.
	Found bool `json:"found"`

	// AdditionalInfo carries the probe's classification reason.
	AdditionalInfo string `json:"additional_info"`

	// CreatedAt is the insertion timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// PhoneLookup is one persisted phone-number analysis.
type PhoneLookup struct {
	ID int64 `json:"id"`

	// Number is the number as entered by the user.
	Number string `json:"phone_number"`

	// Valid reports whether the number parsed as a valid number for its
	// region.
	Valid bool `json:"valid"`

	// Country is the geocoded country or region description.
	Country string `json:"country,omitempty"`

	// Carrier is the original carrier name, when known. Ported numbers may
	// report a stale carrier.
	Carrier string `json:"carrier,omitempty"`

	// LineType is the human-readable number type (Mobile, Fixed Line, ...).
	LineType string `json:"line_type,omitempty"`

	// Location is the geocoded location description.
	Location string `json:"location,omitempty"`

	// Timezone lists the IANA timezones for the number, comma separated.
	Timezone string `json:"timezone,omitempty"`

	// RawData is the full analysis serialized as JSON, including the E.164,
	// international, and national formats and any parse error.
	RawData string `json:"raw_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// DomainLookup is one persisted domain registration and DNS snapshot.
type DomainLookup struct {
	ID int64 `json:"id"`

	// Domain is the registrable domain that was looked up.
	Domain string `json:"domain"`

	// Registrar is the sponsoring registrar name from WHOIS.
	Registrar string `json:"registrar,omitempty"`

	// CreatedDate and ExpirationDate are the registration dates as reported
	// by WHOIS, kept as strings because registrar date formats vary.
	CreatedDate    string `json:"created_date,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`

	// NameServers is the JSON-encoded list of authoritative name servers.
	NameServers string `json:"name_servers,omitempty"`

	// DNSRecords is the JSON-encoded map of record type to values.
	DNSRecords string `json:"dns_records,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// BreachHit is one persisted breach-exposure finding for an account.
type BreachHit struct {
	ID int64 `json:"id"`

	// Account is the email address or username that was checked.
	Account string `json:"account"`

	// Source identifies the provider that reported the hit
	// (breachdirectory or hibp).
	Source string `json:"source"`

	// BreachName is the provider's name for the breach.
	BreachName string `json:"breach_name"`

	// Severity grades the exposure.
	Severity Severity `json:"severity"`

	// Details carries provider-specific context (exposed data classes,
	// password hash prefixes, breach dates).
	Details string `json:"details,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// DarkwebMention is one persisted onion search engine result for a term.
type DarkwebMention struct {
	ID int64 `json:"id"`

	// Term is the queried term.
	Term string `json:"term"`

	// Engine is the search engine that returned the result.
	Engine string `json:"engine"`

	// Title is the result title as shown by the engine.
	Title string `json:"title,omitempty"`

	// URL is the full result URL.
	URL string `json:"url"`

	// OnionHost is the validated v3 onion hostname of the result.
	OnionHost string `json:"onion_host"`

	CreatedAt time.Time `json:"created_at"`
}

// SearchSession summarizes one executed lookup command. Every command that
// performs a lookup writes exactly one session row, which is what the
// recent-searches view reads.
type SearchSession struct {
	ID int64 `json:"id"`

	// SessionID is a UUID correlating the session row with log output.
	SessionID string `json:"session_id"`

	// Type is the lookup kind: username, phone, domain, breach, darkweb,
	// or investigate.
	Type string `json:"search_type"`

	// Query is the looked-up subject.
	Query string `json:"query"`

	// ResultsCount is the number of results the lookup produced.
	ResultsCount int `json:"results_count"`

	CreatedAt time.Time `json:"created_at"`
}
