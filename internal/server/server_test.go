package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/intelscan/intelscan/internal/database"
	"github.com/intelscan/intelscan/internal/model"
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

// newTestAPI mounts the API on an httptest server and returns its base URL.
func newTestAPI(t *testing.T, db *database.LookupDB) string {
	t.Helper()

	srv := httptest.NewServer(New(db).Handler())
	t.Cleanup(srv.Close)

	return srv.URL
}

// getJSON issues a GET and decodes the JSON body into v (skipped when v
// is nil). It returns the HTTP status code.
func getJSON(t *testing.T, url string, v any) int {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}

	return resp.StatusCode
}

// TestNew tests Server construction and options.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		s := New(openTestDB(t))

		if s.addr != ":8080" {
			t.Errorf("addr = %q, want :8080", s.addr)
		}
		if s.shutdownTimeout != 10*time.Second {
			t.Errorf("shutdownTimeout = %v, want 10s", s.shutdownTimeout)
		}
		if s.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("options override defaults", func(t *testing.T) {
		t.Parallel()

		s := New(openTestDB(t),
			WithAddr("127.0.0.1:9000"),
			WithShutdownTimeout(time.Second),
		)

		if s.addr != "127.0.0.1:9000" {
			t.Errorf("addr = %q", s.addr)
		}
		if s.shutdownTimeout != time.Second {
			t.Errorf("shutdownTimeout = %v", s.shutdownTimeout)
		}
	})

	t.Run("zero option values are ignored", func(t *testing.T) {
		t.Parallel()

		s := New(openTestDB(t),
			WithAddr(""),
			WithShutdownTimeout(0),
			WithLogger(nil),
		)

		if s.addr != ":8080" {
			t.Errorf("addr = %q, want :8080", s.addr)
		}
		if s.shutdownTimeout != 10*time.Second {
			t.Errorf("shutdownTimeout = %v, want 10s", s.shutdownTimeout)
		}
		if s.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestHandlerHealthz tests the health endpoint.
func TestHandlerHealthz(t *testing.T) {
	t.Parallel()

	base := newTestAPI(t, openTestDB(t))

	var body map[string]any
	if status := getJSON(t, base+"/healthz", &body); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["service"] != "intelscan" {
		t.Errorf("service field = %v, want intelscan", body["service"])
	}
}

// TestHandlerSearches tests the recent-searches list endpoint.
func TestHandlerSearches(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, db *database.LookupDB, username string, platforms ...string) {
		t.Helper()
		for _, platform := range platforms {
			rec := &model.UsernameSearch{
				Username: username,
				Platform: platform,
				URL:      "https://" + strings.ToLower(platform) + ".example/" + username,
				Found:    true,
			}
			if _, err := db.SaveUsernameSearch(context.Background(), rec); err != nil {
				t.Fatalf("failed to seed search: %v", err)
			}
		}
	}

	t.Run("lists recent searches", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		seed(t, db, "alice", "GitHub", "Reddit", "Steam")
		base := newTestAPI(t, db)

		var searches []model.UsernameSearch
		if status := getJSON(t, base+"/api/v1/searches", &searches); status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		if len(searches) != 3 {
			t.Fatalf("expected 3 searches, got %d", len(searches))
		}
		if searches[0].Username != "alice" {
			t.Errorf("Username = %q", searches[0].Username)
		}
	})

	t.Run("limit caps the result", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		seed(t, db, "alice", "GitHub", "Reddit", "Steam")
		base := newTestAPI(t, db)

		var searches []model.UsernameSearch
		if status := getJSON(t, base+"/api/v1/searches?limit=2", &searches); status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		if len(searches) != 2 {
			t.Errorf("expected 2 searches, got %d", len(searches))
		}
	})

	t.Run("garbage limit falls back to default", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		seed(t, db, "alice", "GitHub")
		base := newTestAPI(t, db)

		var searches []model.UsernameSearch
		if status := getJSON(t, base+"/api/v1/searches?limit=banana", &searches); status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		if len(searches) != 1 {
			t.Errorf("expected 1 search, got %d", len(searches))
		}
	})

	t.Run("empty store returns an empty array", func(t *testing.T) {
		t.Parallel()

		base := newTestAPI(t, openTestDB(t))

		resp, err := http.Get(base + "/api/v1/searches")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}
		if got := strings.TrimSpace(string(body)); got != "[]" {
			t.Errorf("body = %q, want []", got)
		}
	})
}

// TestHandlerSearchesFor tests the per-username history endpoint.
func TestHandlerSearchesFor(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	for _, rec := range []model.UsernameSearch{
		{Username: "alice", Platform: "GitHub", URL: "https://github.com/alice", Found: true},
		{Username: "alice", Platform: "Reddit", URL: "https://reddit.com/user/alice", Found: false},
		{Username: "bob", Platform: "GitHub", URL: "https://github.com/bob", Found: true},
	} {
		rec := rec
		if _, err := db.SaveUsernameSearch(ctx, &rec); err != nil {
			t.Fatalf("failed to seed search: %v", err)
		}
	}
	base := newTestAPI(t, db)

	t.Run("returns only the requested username", func(t *testing.T) {
		t.Parallel()

		var searches []model.UsernameSearch
		if status := getJSON(t, base+"/api/v1/searches/alice", &searches); status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		if len(searches) != 2 {
			t.Fatalf("expected 2 searches, got %d", len(searches))
		}
		for _, rec := range searches {
			if rec.Username != "alice" {
				t.Errorf("unexpected username %q", rec.Username)
			}
		}
	})

	t.Run("unknown username returns 404", func(t *testing.T) {
		t.Parallel()

		var body map[string]any
		if status := getJSON(t, base+"/api/v1/searches/nobody", &body); status != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", status)
		}
		if _, ok := body["error"]; !ok {
			t.Error("expected an error message")
		}
	})
}

// TestHandlerPhones tests the recent phone lookups endpoint.
func TestHandlerPhones(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	for _, rec := range []model.PhoneLookup{
		{Number: "+442079460000", Valid: true, Country: "United Kingdom", LineType: "Fixed Line"},
		{Number: "+447700900123", Valid: true, Country: "United Kingdom", LineType: "Mobile"},
	} {
		rec := rec
		if _, err := db.SavePhoneLookup(ctx, &rec); err != nil {
			t.Fatalf("failed to seed phone lookup: %v", err)
		}
	}
	base := newTestAPI(t, db)

	var lookups []model.PhoneLookup
	if status := getJSON(t, base+"/api/v1/phones?limit=1", &lookups); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if len(lookups) != 1 {
		t.Fatalf("expected 1 lookup, got %d", len(lookups))
	}
	if lookups[0].Number != "+447700900123" {
		t.Errorf("expected newest lookup first, got %q", lookups[0].Number)
	}
}

// TestHandlerSessions tests the recent sessions endpoint.
func TestHandlerSessions(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	for _, session := range []model.SearchSession{
		{SessionID: "11111111-1111-1111-1111-111111111111", Type: "username", Query: "alice", ResultsCount: 4},
		{SessionID: "22222222-2222-2222-2222-222222222222", Type: "darkweb", Query: "alice underground", ResultsCount: 2},
	} {
		session := session
		if _, err := db.SaveSession(ctx, &session); err != nil {
			t.Fatalf("failed to seed session: %v", err)
		}
	}
	base := newTestAPI(t, db)

	var sessions []model.SearchSession
	if status := getJSON(t, base+"/api/v1/sessions", &sessions); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].Type != "darkweb" {
		t.Errorf("expected newest session first, got %q", sessions[0].Type)
	}
}

// TestHandlerBreaches tests the per-account breach hits endpoint.
func TestHandlerBreaches(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	hits := []model.BreachHit{
		{Account: "leaked@example.org", Source: "hibp", BreachName: "Example Forum", Severity: model.SeverityHigh},
		{Account: "leaked@example.org", Source: "breachdirectory", BreachName: "Collection #1", Severity: model.SeverityCritical},
	}
	if err := db.SaveBreachHits(context.Background(), hits); err != nil {
		t.Fatalf("failed to seed breach hits: %v", err)
	}
	base := newTestAPI(t, db)

	t.Run("returns hits for the account", func(t *testing.T) {
		t.Parallel()

		var got []model.BreachHit
		if status := getJSON(t, base+"/api/v1/breaches/leaked@example.org", &got); status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 hits, got %d", len(got))
		}
	})

	t.Run("unknown account returns 404", func(t *testing.T) {
		t.Parallel()

		if status := getJSON(t, base+"/api/v1/breaches/clean@example.org", nil); status != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", status)
		}
	})
}

// TestHandlerDarkweb tests the per-term mentions endpoint.
func TestHandlerDarkweb(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	mentions := []model.DarkwebMention{
		{
			Term:      "alice",
			Engine:    "ahmia",
			Title:     "alice's hidden blog",
			URL:       "http://aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqd.onion/blog",
			OnionHost: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqd.onion",
		},
	}
	if err := db.SaveDarkwebMentions(context.Background(), mentions); err != nil {
		t.Fatalf("failed to seed mentions: %v", err)
	}
	base := newTestAPI(t, db)

	t.Run("returns mentions for the term", func(t *testing.T) {
		t.Parallel()

		var got []model.DarkwebMention
		if status := getJSON(t, base+"/api/v1/darkweb/alice", &got); status != http.StatusOK {
			t.Fatalf("status = %d, want 200", status)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 mention, got %d", len(got))
		}
		if got[0].Engine != "ahmia" {
			t.Errorf("Engine = %q", got[0].Engine)
		}
	})

	t.Run("unknown term returns 404", func(t *testing.T) {
		t.Parallel()

		if status := getJSON(t, base+"/api/v1/darkweb/nobody", nil); status != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", status)
		}
	})
}

// TestServerRun tests the serve loop lifecycle.
func TestServerRun(t *testing.T) {
	t.Parallel()

	t.Run("shuts down on context cancellation", func(t *testing.T) {
		t.Parallel()

		s := New(openTestDB(t),
			WithAddr("127.0.0.1:0"),
			WithShutdownTimeout(time.Second),
		)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.Run(ctx) }()

		// Give the listener a moment to bind before cancelling.
		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run returned %v, want nil", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down")
		}
	})

	t.Run("bind failure surfaces as an error", func(t *testing.T) {
		t.Parallel()

		s := New(openTestDB(t), WithAddr("127.0.0.1:-1"))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.Run(ctx); err == nil {
			t.Error("expected bind error")
		}
	})
}
