package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoDatabasePath is returned when the database path is empty.
	// Every lookup appends to the database, so the tool cannot run without one.
	ErrNoDatabasePath = errors.New("no database path: set --db or databasePath in the config file")

	// ErrNoResultsDir is returned when the results directory is empty.
	// The export command writes report files into this directory.
	ErrNoResultsDir = errors.New("no results directory: set --results-dir or resultsDir in the config file")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate connection failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidTorStartupTimeout is returned when the embedded Tor daemon
	// is requested with a non-positive startup timeout. The daemon needs a
	// bootstrap deadline to avoid hanging forever on broken networks.
	ErrInvalidTorStartupTimeout = errors.New("invalid tor startup timeout: must be positive when embedded tor is enabled")
)
