package config

import "time"

// File represents the structure of the .intelscan configuration file.
// Every field is optional; zero values mean "keep the current setting".
// Credentials deliberately have no place here. API keys come from the
// environment so config files stay shareable.
type File struct {
	// DatabasePath overrides the SQLite file location.
	DatabasePath string `yaml:"databasePath,omitempty"`

	// ResultsDir overrides the export directory.
	ResultsDir string `yaml:"resultsDir,omitempty"`

	// TimeoutSeconds overrides the per-request timeout, in whole seconds.
	// Seconds rather than a duration string keeps the file format friendly
	// to hand editing.
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`

	// UserAgent overrides the User-Agent header for HTTP requests.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Resolver overrides the DNS server for domain lookups ("host:port").
	Resolver string `yaml:"resolver,omitempty"`

	// TorProxy overrides the Tor SOCKS5 proxy address ("host:port").
	TorProxy string `yaml:"torProxy,omitempty"`

	// ServeAddr overrides the HTTP API listen address.
	ServeAddr string `yaml:"serveAddr,omitempty"`
}

// ApplyTo copies every set field onto the config, leaving unset fields
// untouched. CLI flags are bound after the file is applied, so flags win
// over the file and the file wins over built-in defaults.
func (f *File) ApplyTo(c *Config) {
	if f.DatabasePath != "" {
		c.DatabasePath = f.DatabasePath
	}
	if f.ResultsDir != "" {
		c.ResultsDir = f.ResultsDir
	}
	if f.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(f.TimeoutSeconds) * time.Second
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.Resolver != "" {
		c.Resolver = f.Resolver
	}
	if f.TorProxy != "" {
		c.TorProxyAddress = f.TorProxy
	}
	if f.ServeAddr != "" {
		c.ServeAddr = f.ServeAddr
	}
}
