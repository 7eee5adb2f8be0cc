// Package config provides configuration structures and utilities for intelscan.
// It defines the main configuration options for lookups, persistence paths,
// network settings, and API credentials.
package config
