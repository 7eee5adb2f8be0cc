package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/intelscan/intelscan/internal/model"
)

// defaultRecentLimit is used when a recent-query caller passes a
// non-positive limit.
const defaultRecentLimit = 10

// LookupDB provides SQLite-based storage for all lookup history.
// It manages the single connection and provides append and query methods;
// there are deliberately no update or delete paths.
//
// The handle is safe to reuse sequentially. Concurrent use from multiple
// processes is out of scope and must not be assumed safe.
type LookupDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures LookupDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent read
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a LookupDB at the specified file path.
// If CreateIfNotExists is true, the parent directory and database file are
// created as needed; otherwise a missing database is an error.
func Open(dbPath string, opts Options) (*LookupDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY on the sequential write path.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ldb := &LookupDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := ldb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return ldb, nil
}

// Close closes the database connection.
func (ldb *LookupDB) Close() error {
	return ldb.db.Close()
}

// Path returns the database file path.
func (ldb *LookupDB) Path() string {
	return ldb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (ldb *LookupDB) createTables() error {
	schema := `
	-- One row per executed username probe; duplicates across repeated
	-- searches are expected (history, not current state).
	CREATE TABLE IF NOT EXISTS people_searches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		platform TEXT,
		url TEXT,
		found BOOLEAN,
		additional_info TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_people_username ON people_searches(username);
	CREATE INDEX IF NOT EXISTS idx_people_created ON people_searches(created_at);

	CREATE TABLE IF NOT EXISTS phone_lookups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		phone_number TEXT NOT NULL,
		country TEXT,
		carrier TEXT,
		line_type TEXT,
		location TEXT,
		timezone TEXT,
		valid BOOLEAN,
		raw_data TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_phone_number ON phone_lookups(phone_number);
	CREATE INDEX IF NOT EXISTS idx_phone_created ON phone_lookups(created_at);

	CREATE TABLE IF NOT EXISTS domain_lookups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL,
		registrar TEXT,
		created_date TEXT,
		expiration_date TEXT,
		name_servers TEXT,
		dns_records TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_domain_name ON domain_lookups(domain);

	CREATE TABLE IF NOT EXISTS breach_hits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account TEXT NOT NULL,
		source TEXT,
		breach_name TEXT,
		severity TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_breach_account ON breach_hits(account);

	CREATE TABLE IF NOT EXISTS darkweb_mentions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		term TEXT NOT NULL,
		engine TEXT,
		title TEXT,
		url TEXT,
		onion_host TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_darkweb_term ON darkweb_mentions(term);

	-- One row per executed lookup command; the recent view reads this.
	CREATE TABLE IF NOT EXISTS search_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		search_type TEXT,
		query TEXT,
		results_count INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_created ON search_sessions(created_at);
	`

	_, err := ldb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveUsernameSearch appends one username probe record and returns its row
// id.
func (ldb *LookupDB) SaveUsernameSearch(ctx context.Context, rec *model.UsernameSearch) (int64, error) {
	query := `
	INSERT INTO people_searches (username, platform, url, found, additional_info)
	VALUES (?, ?, ?, ?, ?)
	`

	result, err := ldb.db.ExecContext(ctx, query,
		rec.Username,
		rec.Platform,
		rec.URL,
		rec.Found,
		rec.AdditionalInfo,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save username search: %w", err)
	}

	return result.LastInsertId()
}

// RecentUsernameSearches returns the most recent probe records, newest
// first. Non-positive limits fall back to the default.
func (ldb *LookupDB) RecentUsernameSearches(ctx context.Context, limit int) ([]model.UsernameSearch, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	query := `
	SELECT id, username, platform, url, found, additional_info, created_at
	FROM people_searches
	ORDER BY created_at DESC, id DESC
	LIMIT ?
	`

	rows, err := ldb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query username searches: %w", err)
	}
	defer rows.Close()

	return scanUsernameSearches(rows)
}

// UsernameSearchesFor returns every probe record for one username, newest
// first. A username with no history returns (nil, nil).
func (ldb *LookupDB) UsernameSearchesFor(ctx context.Context, username string) ([]model.UsernameSearch, error) {
	query := `
	SELECT id, username, platform, url, found, additional_info, created_at
	FROM people_searches
	WHERE username = ?
	ORDER BY created_at DESC, id DESC
	`

	rows, err := ldb.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query username searches: %w", err)
	}
	defer rows.Close()

	return scanUsernameSearches(rows)
}

func scanUsernameSearches(rows *sql.Rows) ([]model.UsernameSearch, error) {
	var results []model.UsernameSearch
	for rows.Next() {
		var rec model.UsernameSearch
		var createdAt string

		err := rows.Scan(
			&rec.ID,
			&rec.Username,
			&rec.Platform,
			&rec.URL,
			&rec.Found,
			&rec.AdditionalInfo,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan username search: %w", err)
		}

		rec.CreatedAt = parseTimestamp(createdAt)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// SavePhoneLookup appends one phone analysis record and returns its row id.
func (ldb *LookupDB) SavePhoneLookup(ctx context.Context, rec *model.PhoneLookup) (int64, error) {
	query := `
	INSERT INTO phone_lookups (phone_number, country, carrier, line_type, location, timezone, valid, raw_data)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := ldb.db.ExecContext(ctx, query,
		rec.Number,
		rec.Country,
		rec.Carrier,
		rec.LineType,
		rec.Location,
		rec.Timezone,
		rec.Valid,
		rec.RawData,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save phone lookup: %w", err)
	}

	return result.LastInsertId()
}

// RecentPhoneLookups returns the most recent phone analyses, newest first.
func (ldb *LookupDB) RecentPhoneLookups(ctx context.Context, limit int) ([]model.PhoneLookup, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	query := `
	SELECT id, phone_number, country, carrier, line_type, location, timezone, valid, raw_data, created_at
	FROM phone_lookups
	ORDER BY created_at DESC, id DESC
	LIMIT ?
	`

	rows, err := ldb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query phone lookups: %w", err)
	}
	defer rows.Close()

	var results []model.PhoneLookup
	for rows.Next() {
		var rec model.PhoneLookup
		var createdAt string

		err := rows.Scan(
			&rec.ID,
			&rec.Number,
			&rec.Country,
			&rec.Carrier,
			&rec.LineType,
			&rec.Location,
			&rec.Timezone,
			&rec.Valid,
			&rec.RawData,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan phone lookup: %w", err)
		}

		rec.CreatedAt = parseTimestamp(createdAt)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// SaveDomainLookup appends one domain snapshot and returns its row id.
func (ldb *LookupDB) SaveDomainLookup(ctx context.Context, rec *model.DomainLookup) (int64, error) {
	query := `
	INSERT INTO domain_lookups (domain, registrar, created_date, expiration_date, name_servers, dns_records)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := ldb.db.ExecContext(ctx, query,
		rec.Domain,
		rec.Registrar,
		rec.CreatedDate,
		rec.ExpirationDate,
		rec.NameServers,
		rec.DNSRecords,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save domain lookup: %w", err)
	}

	return result.LastInsertId()
}

// LatestDomainLookup returns the newest snapshot for a domain, or (nil,
// nil) when the domain has never been looked up.
func (ldb *LookupDB) LatestDomainLookup(ctx context.Context, domain string) (*model.DomainLookup, error) {
	query := `
	SELECT id, domain, registrar, created_date, expiration_date, name_servers, dns_records, created_at
	FROM domain_lookups
	WHERE domain = ?
	ORDER BY created_at DESC, id DESC
	LIMIT 1
	`

	var rec model.DomainLookup
	var createdAt string

	err := ldb.db.QueryRowContext(ctx, query, domain).Scan(
		&rec.ID,
		&rec.Domain,
		&rec.Registrar,
		&rec.CreatedDate,
		&rec.ExpirationDate,
		&rec.NameServers,
		&rec.DNSRecords,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get domain lookup: %w", err)
	}

	rec.CreatedAt = parseTimestamp(createdAt)
	return &rec, nil
}

// SaveBreachHits appends breach findings one row at a time. Each insert is
// an independent unit of work; a failure aborts with earlier rows intact.
func (ldb *LookupDB) SaveBreachHits(ctx context.Context, hits []model.BreachHit) error {
	query := `
	INSERT INTO breach_hits (account, source, breach_name, severity, details)
	VALUES (?, ?, ?, ?, ?)
	`

	for i := range hits {
		_, err := ldb.db.ExecContext(ctx, query,
			hits[i].Account,
			hits[i].Source,
			hits[i].BreachName,
			hits[i].Severity.String(),
			hits[i].Details,
		)
		if err != nil {
			return fmt.Errorf("failed to save breach hit: %w", err)
		}
	}

	return nil
}

// BreachHitsFor returns every breach finding for one account, newest first.
func (ldb *LookupDB) BreachHitsFor(ctx context.Context, account string) ([]model.BreachHit, error) {
	query := `
	SELECT id, account, source, breach_name, severity, details, created_at
	FROM breach_hits
	WHERE account = ?
	ORDER BY created_at DESC, id DESC
	`

	rows, err := ldb.db.QueryContext(ctx, query, account)
	if err != nil {
		return nil, fmt.Errorf("failed to query breach hits: %w", err)
	}
	defer rows.Close()

	var results []model.BreachHit
	for rows.Next() {
		var rec model.BreachHit
		var severity string
		var createdAt string

		err := rows.Scan(
			&rec.ID,
			&rec.Account,
			&rec.Source,
			&rec.BreachName,
			&severity,
			&rec.Details,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan breach hit: %w", err)
		}

		rec.Severity = model.ParseSeverity(severity)
		rec.CreatedAt = parseTimestamp(createdAt)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// SaveDarkwebMentions appends dark-web findings one row at a time.
func (ldb *LookupDB) SaveDarkwebMentions(ctx context.Context, mentions []model.DarkwebMention) error {
	query := `
	INSERT INTO darkweb_mentions (term, engine, title, url, onion_host)
	VALUES (?, ?, ?, ?, ?)
	`

	for i := range mentions {
		_, err := ldb.db.ExecContext(ctx, query,
			mentions[i].Term,
			mentions[i].Engine,
			mentions[i].Title,
			mentions[i].URL,
			mentions[i].OnionHost,
		)
		if err != nil {
			return fmt.Errorf("failed to save darkweb mention: %w", err)
		}
	}

	return nil
}

// DarkwebMentionsFor returns every stored mention for one term, newest
// first.
func (ldb *LookupDB) DarkwebMentionsFor(ctx context.Context, term string) ([]model.DarkwebMention, error) {
	query := `
	SELECT id, term, engine, title, url, onion_host, created_at
	FROM darkweb_mentions
	WHERE term = ?
	ORDER BY created_at DESC, id DESC
	`

	rows, err := ldb.db.QueryContext(ctx, query, term)
	if err != nil {
		return nil, fmt.Errorf("failed to query darkweb mentions: %w", err)
	}
	defer rows.Close()

	var results []model.DarkwebMention
	for rows.Next() {
		var rec model.DarkwebMention
		var createdAt string

		err := rows.Scan(
			&rec.ID,
			&rec.Term,
			&rec.Engine,
			&rec.Title,
			&rec.URL,
			&rec.OnionHost,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan darkweb mention: %w", err)
		}

		rec.CreatedAt = parseTimestamp(createdAt)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// SaveSession appends one session record and returns its row id.
func (ldb *LookupDB) SaveSession(ctx context.Context, session *model.SearchSession) (int64, error) {
	query := `
	INSERT INTO search_sessions (session_id, search_type, query, results_count)
	VALUES (?, ?, ?, ?)
	`

	result, err := ldb.db.ExecContext(ctx, query,
		session.SessionID,
		session.Type,
		session.Query,
		session.ResultsCount,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save session: %w", err)
	}

	return result.LastInsertId()
}

// RecentSessions returns the most recent sessions, newest first.
func (ldb *LookupDB) RecentSessions(ctx context.Context, limit int) ([]model.SearchSession, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	query := `
	SELECT id, session_id, search_type, query, results_count, created_at
	FROM search_sessions
	ORDER BY created_at DESC, id DESC
	LIMIT ?
	`

	rows, err := ldb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var results []model.SearchSession
	for rows.Next() {
		var rec model.SearchSession
		var createdAt string

		err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.Type,
			&rec.Query,
			&rec.ResultsCount,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		rec.CreatedAt = parseTimestamp(createdAt)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
