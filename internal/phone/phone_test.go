package phone

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nyaruka/phonenumbers"

	"github.com/intelscan/intelscan/internal/database"
)

// openTestDB creates a LookupDB in a temporary directory.
func openTestDB(t *testing.T) *database.LookupDB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	return db
}

// TestLookup_ValidLandline tests a full analysis of a known-valid number.
// The UK drama range 020 7946 09xx is reserved by Ofcom and stable.
func TestLookup_ValidLandline(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	analyzer := NewAnalyzer(db)

	res, err := analyzer.Lookup(context.Background(), "+442079460000", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Record.Valid {
		t.Error("expected number to be valid")
	}
	if res.Record.Country != "GB" {
		t.Errorf("Country = %q, want 'GB'", res.Record.Country)
	}
	if res.Record.LineType != "Fixed line" {
		t.Errorf("LineType = %q, want 'Fixed line'", res.Record.LineType)
	}
	if res.Formats.E164 != "+442079460000" {
		t.Errorf("E164 = %q, want '+442079460000'", res.Formats.E164)
	}
	if res.Formats.International != "+44 20 7946 0000" {
		t.Errorf("International = %q, want '+44 20 7946 0000'", res.Formats.International)
	}
	if res.Formats.National != "020 7946 0000" {
		t.Errorf("National = %q, want '020 7946 0000'", res.Formats.National)
	}
	if !strings.Contains(res.Record.Timezone, "Europe/London") {
		t.Errorf("Timezone = %q, want to contain 'Europe/London'", res.Record.Timezone)
	}
	if res.Record.ID <= 0 {
		t.Errorf("expected persisted row id, got %d", res.Record.ID)
	}
}

// TestLookup_MobileLineType tests number type classification for a UK
// mobile from the Ofcom drama range.
func TestLookup_MobileLineType(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	analyzer := NewAnalyzer(db)

	res, err := analyzer.Lookup(context.Background(), "+447700900123", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Record.LineType != "Mobile" {
		t.Errorf("LineType = %q, want 'Mobile'", res.Record.LineType)
	}
	if res.Record.Country != "GB" {
		t.Errorf("Country = %q, want 'GB'", res.Record.Country)
	}
}

// TestLookup_NationalFormatWithRegion tests that the region parameter
// lets national-format numbers parse.
func TestLookup_NationalFormatWithRegion(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	analyzer := NewAnalyzer(db)

	res, err := analyzer.Lookup(context.Background(), "020 7946 0000", "GB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Formats.E164 != "+442079460000" {
		t.Errorf("E164 = %q, want '+442079460000'", res.Formats.E164)
	}
}

// TestLookup_InvalidButParseable tests that a parseable number that fails
// validation is still persisted with Valid=false.
func TestLookup_InvalidButParseable(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	analyzer := NewAnalyzer(db)

	// Too short to be a real GB number, but structurally parseable.
	res, err := analyzer.Lookup(context.Background(), "+44123456", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Record.Valid {
		t.Error("expected number to be invalid")
	}

	rows, err := db.RecentPhoneLookups(context.Background(), 10)
	if err != nil {
		t.Fatalf("failed to query rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 persisted row, got %d", len(rows))
	}
	if rows[0].Valid {
		t.Error("persisted row should carry Valid=false")
	}
}

// TestLookup_ParseFailure tests that unparseable input produces an error
// and no database row.
func TestLookup_ParseFailure(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	analyzer := NewAnalyzer(db)

	testCases := []struct {
		name  string
		input string
	}{
		{name: "not a number at all", input: "not-a-number"},
		{name: "empty input", input: ""},
		{name: "national format without region", input: "020 7946 0000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := analyzer.Lookup(context.Background(), tc.input, ""); err == nil {
				t.Errorf("expected parse error for %q", tc.input)
			}
		})
	}

	rows, err := db.RecentPhoneLookups(context.Background(), 10)
	if err != nil {
		t.Fatalf("failed to query rows: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no persisted rows after parse failures, got %d", len(rows))
	}
}

// TestLookup_SessionRecorded tests that each lookup appends a session row.
func TestLookup_SessionRecorded(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	analyzer := NewAnalyzer(db)

	if _, err := analyzer.Lookup(context.Background(), "+442079460000", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sessions, err := db.RecentSessions(context.Background(), 10)
	if err != nil {
		t.Fatalf("failed to query sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].Type != "phone" {
		t.Errorf("session type = %q, want 'phone'", sessions[0].Type)
	}
	if sessions[0].Query != "+442079460000" {
		t.Errorf("session query = %q, want raw input", sessions[0].Query)
	}
}

// TestLookup_RawDataFormats tests that the stored raw data decodes back
// into the format struct.
func TestLookup_RawDataFormats(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	analyzer := NewAnalyzer(db)

	res, err := analyzer.Lookup(context.Background(), "+442079460000", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(res.Record.RawData, `"e164":"+442079460000"`) {
		t.Errorf("RawData = %q, want embedded e164 form", res.Record.RawData)
	}
}

// TestLineTypeString tests the line type label mapping.
func TestLineTypeString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   phonenumbers.PhoneNumberType
		want string
	}{
		{name: "fixed line", in: phonenumbers.FIXED_LINE, want: "Fixed line"},
		{name: "mobile", in: phonenumbers.MOBILE, want: "Mobile"},
		{name: "fixed or mobile", in: phonenumbers.FIXED_LINE_OR_MOBILE, want: "Fixed line or mobile"},
		{name: "toll free", in: phonenumbers.TOLL_FREE, want: "Toll free"},
		{name: "premium rate", in: phonenumbers.PREMIUM_RATE, want: "Premium rate"},
		{name: "shared cost", in: phonenumbers.SHARED_COST, want: "Shared cost"},
		{name: "voip", in: phonenumbers.VOIP, want: "VoIP"},
		{name: "personal number", in: phonenumbers.PERSONAL_NUMBER, want: "Personal number"},
		{name: "pager", in: phonenumbers.PAGER, want: "Pager"},
		{name: "uan", in: phonenumbers.UAN, want: "UAN"},
		{name: "voicemail", in: phonenumbers.VOICEMAIL, want: "Voicemail"},
		{name: "unknown", in: phonenumbers.UNKNOWN, want: "Unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := lineTypeString(tc.in); got != tc.want {
				t.Errorf("lineTypeString(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
