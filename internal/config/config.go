package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values match the behavior most OSINT targets tolerate without
// rate limiting or bot challenges.
const (
	// DefaultTimeout is the per-request timeout for profile probes and
	// API lookups. Presence checks against mainstream platforms resolve
	// in well under five seconds; anything slower is treated as a miss
	// rather than blocking a whole sweep on one host.
	DefaultTimeout = 5 * time.Second

	// DefaultUserAgent is a desktop browser User-Agent. Several platforms
	// return interstitial or challenge pages to clients that identify as
	// bots, which would break presence classification.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// DefaultResolver is the DNS server used for domain intelligence
	// queries in "host:port" format. A public resolver keeps results
	// consistent across machines with different local DNS setups.
	DefaultResolver = "8.8.8.8:53"

	// DefaultTorProxyAddress is the standard Tor SOCKS5 proxy address.
	// Port 9050 is the default for the Tor daemon's SOCKS port.
	// We use 127.0.0.1 instead of localhost to avoid DNS resolution overhead
	// and potential issues with IPv6 resolution on some systems.
	DefaultTorProxyAddress = "127.0.0.1:9050"

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap. 3 minutes is typically sufficient for most
	// network conditions, but may need to be increased for slow connections.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultServeAddr is the listen address for the read-only HTTP API.
	DefaultServeAddr = ":8080"

	// DefaultBatchSize is the number of subjects investigated concurrently
	// when several are given on one command line.
	DefaultBatchSize = 4

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 1MB covers the HTML of every profile page we classify while
	// preventing memory exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 1 * 1024 * 1024 // 1MB

	// AppName is the application name used for XDG directory paths.
	AppName = "intelscan"

	// DatabaseFileName is the SQLite file name inside the data directory.
	DatabaseFileName = "intelscan.db"
)

// Environment variable names for API credentials. Keys are read from the
// process environment (optionally seeded from a .env file) rather than the
// config file so that credentials stay out of dotfiles that users share.
const (
	// EnvHIBPAPIKey holds the Have I Been Pwned API key.
	EnvHIBPAPIKey = "INTELSCAN_HIBP_API_KEY"

	// EnvBreachDirectoryAPIKey holds the BreachDirectory (RapidAPI) key.
	EnvBreachDirectoryAPIKey = "INTELSCAN_BREACHDIRECTORY_API_KEY"
)

// Config holds all configuration options for intelscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ProbeConfig, TorConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// DatabasePath is the SQLite file that stores all lookup history.
	// Every executed lookup is appended here; nothing is ever updated
	// or deleted.
	DatabasePath string

	// ResultsDir is the directory where exported reports are written.
	// Created on demand by the export command.
	ResultsDir string

	// Timeout is the per-request timeout for probes and API lookups.
	// This applies to individual connections, not the overall sweep duration.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	// Defaults to a desktop browser string because several platforms
	// serve different pages to clients that identify as tools.
	UserAgent string

	// Resolver is the DNS server for domain intelligence queries in
	// "host:port" format.
	Resolver string

	// TorProxyAddress is the address of the Tor SOCKS5 proxy in "host:port"
	// format. Used by dark-web lookups when an external Tor daemon is
	// available.
	TorProxyAddress string

	// UseEmbeddedTor starts a bundled Tor daemon for dark-web lookups
	// instead of expecting an external proxy at TorProxyAddress.
	//
	// Note: The embedded Tor daemon takes 1-3 minutes to bootstrap and
	// connect to the Tor network on first start.
	UseEmbeddedTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor
	// daemon to start and bootstrap. Only used when UseEmbeddedTor is true.
	TorStartupTimeout time.Duration

	// ServeAddr is the listen address for the read-only HTTP API
	// in "host:port" or ":port" format.
	ServeAddr string

	// HIBPAPIKey authenticates against the Have I Been Pwned API.
	// When empty, the HIBP source is skipped during breach lookups.
	HIBPAPIKey string

	// BreachDirectoryAPIKey authenticates against BreachDirectory.
	// When empty, the BreachDirectory source is skipped.
	BreachDirectoryAPIKey string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (1MB).
	MaxBodySize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .intelscan in the current directory,
	// the user's home directory, and the XDG config directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, paths).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		DatabasePath:      filepath.Join(XDGDataDir(), DatabaseFileName),
		ResultsDir:        filepath.Join(XDGDataDir(), "results"),
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		Resolver:          DefaultResolver,
		TorProxyAddress:   DefaultTorProxyAddress,
		TorStartupTimeout: DefaultTorStartupTimeout,
		ServeAddr:         DefaultServeAddr,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for intelscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/intelscan
// On macOS: ~/Library/Application Support/intelscan
// On Windows: %LOCALAPPDATA%\intelscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for intelscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/intelscan
// On macOS: ~/Library/Application Support/intelscan
// On Windows: %APPDATA%\intelscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any lookup begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// Every command persists its results, so the database path is required
	if c.DatabasePath == "" {
		return ErrNoDatabasePath
	}

	// The export command needs somewhere to write
	if c.ResultsDir == "" {
		return ErrNoResultsDir
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// MaxBodySize must be non-negative; zero means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// The embedded daemon needs a bootstrap deadline
	if c.UseEmbeddedTor && c.TorStartupTimeout <= 0 {
		return ErrInvalidTorStartupTimeout
	}

	return nil
}
