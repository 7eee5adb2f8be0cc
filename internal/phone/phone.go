package phone

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"

	"github.com/intelscan/intelscan/internal/database"
	"github.com/intelscan/intelscan/internal/model"
)

// Formats holds the standard renderings of a parsed number.
// They are stored as the record's raw data so exports can show them
// without re-parsing.
type Formats struct {
	// E164 is the canonical +CC form, e.g. "+442079460000".
	E164 string `json:"e164"`

	// International is the human-readable international form.
	International string `json:"international"`

	// National is the domestic dialing form.
	National string `json:"national"`
}

// Result pairs the persisted record with the display formats.
type Result struct {
	// Record is the row appended to the lookup database.
	Record model.PhoneLookup

	// Formats are the standard renderings of the number.
	Formats Formats
}

// Analyzer performs phone number analysis and persists the outcome.
type Analyzer struct {
	// db receives one row per analyzed number plus a session row.
	db *database.LookupDB

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnalyzer creates an Analyzer backed by the given database.
func NewAnalyzer(db *database.LookupDB, opts ...Option) *Analyzer {
	a := &Analyzer{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Lookup analyzes one phone number and appends the outcome to the database.
//
// The region is an ISO 3166-1 alpha-2 code ("GB", "RU") used to interpret
// numbers written in national format; numbers starting with "+" carry their
// own country code and may pass an empty region. A number that cannot be
// parsed at all returns an error and leaves no database row. A parseable
// but invalid number is persisted with Valid=false, matching the
// append-only history semantics of the username sweep.
func (a *Analyzer) Lookup(ctx context.Context, number, region string) (*Result, error) {
	parsed, err := phonenumbers.Parse(number, region)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number %q: %w", number, err)
	}

	formats := Formats{
		E164:          phonenumbers.Format(parsed, phonenumbers.E164),
		International: phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL),
		National:      phonenumbers.Format(parsed, phonenumbers.NATIONAL),
	}

	rawData, err := json.Marshal(formats)
	if err != nil {
		return nil, fmt.Errorf("failed to encode number formats: %w", err)
	}

	// Geocoding, carrier and timezone data are best effort: missing
	// metadata for a prefix leaves the field empty rather than failing
	// the whole lookup.
	location, err := phonenumbers.GetGeocodingForNumber(parsed, "en")
	if err != nil {
		a.logger.Debug("no geocoding data", "number", formats.E164, "error", err)
	}
	carrier, err := phonenumbers.GetCarrierForNumber(parsed, "en")
	if err != nil {
		a.logger.Debug("no carrier data", "number", formats.E164, "error", err)
	}
	timezones, err := phonenumbers.GetTimezonesForNumber(parsed)
	if err != nil {
		a.logger.Debug("no timezone data", "number", formats.E164, "error", err)
	}

	record := model.PhoneLookup{
		Number:   formats.E164,
		Valid:    phonenumbers.IsValidNumber(parsed),
		Country:  phonenumbers.GetRegionCodeForNumber(parsed),
		Carrier:  carrier,
		LineType: lineTypeString(phonenumbers.GetNumberType(parsed)),
		Location: location,
		Timezone: strings.Join(timezones, ", "),
		RawData:  string(rawData),
	}

	id, err := a.db.SavePhoneLookup(ctx, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to persist phone lookup: %w", err)
	}
	record.ID = id

	session := &model.SearchSession{
		SessionID:    uuid.NewString(),
		Type:         "phone",
		Query:        number,
		ResultsCount: 1,
	}
	if _, err := a.db.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to record search session: %w", err)
	}

	a.logger.Info("phone lookup completed",
		"number", formats.E164,
		"valid", record.Valid,
		"country", record.Country,
	)

	return &Result{Record: record, Formats: formats}, nil
}

// lineTypeString maps libphonenumber line types onto the labels stored in
// the database and shown to users.
func lineTypeString(t phonenumbers.PhoneNumberType) string {
	switch t {
	case phonenumbers.FIXED_LINE:
		return "Fixed line"
	case phonenumbers.MOBILE:
		return "Mobile"
	case phonenumbers.FIXED_LINE_OR_MOBILE:
		return "Fixed line or mobile"
	case phonenumbers.TOLL_FREE:
		return "Toll free"
	case phonenumbers.PREMIUM_RATE:
		return "Premium rate"
	case phonenumbers.SHARED_COST:
		return "Shared cost"
	case phonenumbers.VOIP:
		return "VoIP"
	case phonenumbers.PERSONAL_NUMBER:
		return "Personal number"
	case phonenumbers.PAGER:
		return "Pager"
	case phonenumbers.UAN:
		return "UAN"
	case phonenumbers.VOICEMAIL:
		return "Voicemail"
	default:
		return "Unknown"
	}
}
