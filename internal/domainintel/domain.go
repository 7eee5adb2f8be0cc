package domainintel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/miekg/dns"
	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/intelscan/intelscan/internal/database"
	"github.com/intelscan/intelscan/internal/model"
)

const (
	// defaultResolver answers DNS queries when no resolver is configured.
	defaultResolver = "8.8.8.8:53"

	// defaultTimeout bounds each WHOIS and DNS exchange.
	defaultTimeout = 5 * time.Second
)

// recordTypes lists the record types a lookup resolves, in the order they
// are queried and reported.
var recordTypes = []struct {
	name  string
	qtype uint16
}{
	{"A", dns.TypeA},
	{"AAAA", dns.TypeAAAA},
	{"MX", dns.TypeMX},
	{"NS", dns.TypeNS},
	{"TXT", dns.TypeTXT},
}

// Whoiser issues raw WHOIS queries. *whois.Client implements it; tests
// substitute canned responses.
type Whoiser interface {
	Whois(domain string, servers ...string) (string, error)
}

// Result pairs the persisted record with the decoded lookup data.
type Result struct {
	// Record is the row appended to the lookup database.
	Record model.DomainLookup

	// NameServers are the authoritative name servers, from WHOIS when
	// available and from the resolver's NS answer otherwise.
	NameServers []string

	// DNSRecords maps record type to the resolved values.
	DNSRecords map[string][]string
}

// Inspector performs domain lookups and persists the outcome.
type Inspector struct {
	// db receives one row per looked-up domain plus a session row.
	db *database.LookupDB

	// whois issues registration queries.
	whois Whoiser

	// resolver is the "host:port" DNS server queried for records.
	resolver string

	// timeout bounds each WHOIS and DNS exchange.
	timeout time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithResolver sets the "host:port" DNS server to query.
func WithResolver(resolver string) Option {
	return func(i *Inspector) {
		if resolver != "" {
			i.resolver = resolver
		}
	}
}

// WithTimeout bounds each WHOIS and DNS exchange.
func WithTimeout(timeout time.Duration) Option {
	return func(i *Inspector) {
		if timeout > 0 {
			i.timeout = timeout
		}
	}
}

// WithWhoisClient substitutes the WHOIS client.
func WithWhoisClient(w Whoiser) Option {
	return func(i *Inspector) {
		if w != nil {
			i.whois = w
		}
	}
}

// NewInspector creates an Inspector backed by the given database.
func NewInspector(db *database.LookupDB, opts ...Option) *Inspector {
	i := &Inspector{
		db:       db,
		resolver: defaultResolver,
		timeout:  defaultTimeout,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(i)
	}

	if i.whois == nil {
		i.whois = whois.NewClient().SetTimeout(i.timeout)
	}

	return i
}

// Normalize reduces user input to its registrable domain.
//
// It accepts bare domains, host:port pairs, and full URLs, lowercases the
// host, and applies the public suffix list so "www.example.co.uk" and
// "https://example.co.uk/about" both normalize to "example.co.uk".
func Normalize(input string) (string, error) {
	host := strings.TrimSpace(input)
	if host == "" {
		return "", errors.New("empty domain")
	}

	// url.Parse needs a scheme to recognize the host part.
	target := host
	if !strings.Contains(target, "://") {
		target = "http://" + target
	}
	if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	} else {
		host = strings.Split(host, "/")[0]
		host = strings.Split(host, ":")[0]
	}

	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if net.ParseIP(host) != nil {
		return "", fmt.Errorf("%q is an IP address, not a domain", input)
	}
	if !strings.Contains(host, ".") {
		return "", fmt.Errorf("%q does not look like a domain", input)
	}

	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return "", fmt.Errorf("failed to derive registrable domain from %q: %w", input, err)
	}

	return domain, nil
}

// Lookup resolves one domain and appends the outcome to the database.
//
// Input that cannot be reduced to a registrable domain returns an error
// and leaves no database row. After that point the lookup always persists
// a record: WHOIS or DNS failures only leave the corresponding fields
// empty, matching the append-only history semantics of the other lookups.
func (i *Inspector) Lookup(ctx context.Context, input string) (*Result, error) {
	domain, err := Normalize(input)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize domain: %w", err)
	}

	reg := i.lookupRegistration(domain)
	records := i.lookupRecords(ctx, domain)

	// WHOIS is authoritative for delegation. Fall back to the resolver's
	// NS answer when WHOIS is unavailable.
	nameServers := reg.nameServers
	if len(nameServers) == 0 {
		nameServers = records["NS"]
	}

	record := model.DomainLookup{
		Domain:         domain,
		Registrar:      reg.registrar,
		CreatedDate:    reg.created,
		ExpirationDate: reg.expiration,
	}
	if len(nameServers) > 0 {
		encoded, err := json.Marshal(nameServers)
		if err != nil {
			return nil, fmt.Errorf("failed to encode name servers: %w", err)
		}
		record.NameServers = string(encoded)
	}
	if len(records) > 0 {
		encoded, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("failed to encode dns records: %w", err)
		}
		record.DNSRecords = string(encoded)
	}

	id, err := i.db.SaveDomainLookup(ctx, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to persist domain lookup: %w", err)
	}
	record.ID = id

	session := &model.SearchSession{
		SessionID:    uuid.NewString(),
		Type:         "domain",
		Query:        input,
		ResultsCount: 1,
	}
	if _, err := i.db.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to record search session: %w", err)
	}

	i.logger.Info("domain lookup completed",
		"domain", domain,
		"registrar", reg.registrar,
		"record_types", len(records),
	)

	return &Result{Record: record, NameServers: nameServers, DNSRecords: records}, nil
}

// registration holds the WHOIS facts a lookup extracts.
type registration struct {
	registrar   string
	created     string
	expiration  string
	nameServers []string
}

// lookupRegistration queries WHOIS for the domain. Unregistered domains
// and registries that refuse the query both come back empty.
func (i *Inspector) lookupRegistration(domain string) registration {
	var reg registration

	raw, err := i.whois.Whois(domain)
	if err != nil {
		i.logger.Debug("whois query failed", "domain", domain, "error", err)
		return reg
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		if errors.Is(err, whoisparser.ErrNotFoundDomain) {
			i.logger.Debug("domain not registered", "domain", domain)
		} else {
			i.logger.Debug("failed to parse whois response", "domain", domain, "error", err)
		}
		return reg
	}

	if info.Registrar != nil {
		reg.registrar = info.Registrar.Name
	}
	if info.Domain != nil {
		reg.created = info.Domain.CreatedDate
		reg.expiration = info.Domain.ExpirationDate
		reg.nameServers = info.Domain.NameServers
	}

	return reg
}

// lookupRecords resolves each record type against the configured resolver.
// Types that fail or return no answers are left out of the map.
func (i *Inspector) lookupRecords(ctx context.Context, domain string) map[string][]string {
	records := make(map[string][]string)
	client := &dns.Client{Timeout: i.timeout}

	for _, rt := range recordTypes {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(domain), rt.qtype)
		msg.RecursionDesired = true

		resp, _, err := client.ExchangeContext(ctx, msg, i.resolver)
		if err != nil {
			i.logger.Debug("dns query failed",
				"domain", domain,
				"type", rt.name,
				"error", err,
			)
			continue
		}

		var values []string
		for _, answer := range resp.Answer {
			if value, ok := renderAnswer(answer); ok {
				values = append(values, value)
			}
		}
		if len(values) > 0 {
			records[rt.name] = values
		}
	}

	return records
}

// renderAnswer formats one resource record the way it is shown to users.
// Record types outside the queried set (CNAMEs in an A answer, for
// example) are dropped.
func renderAnswer(rr dns.RR) (string, bool) {
	switch rec := rr.(type) {
	case *dns.A:
		return rec.A.String(), true
	case *dns.AAAA:
		return rec.AAAA.String(), true
	case *dns.MX:
		return fmt.Sprintf("%d %s", rec.Preference, strings.TrimSuffix(rec.Mx, ".")), true
	case *dns.NS:
		return strings.TrimSuffix(rec.Ns, "."), true
	case *dns.TXT:
		return strings.Join(rec.Txt, ""), true
	default:
		return "", false
	}
}
