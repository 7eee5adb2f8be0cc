// Package breach checks accounts against breach data providers.
//
// Two providers are supported: BreachDirectory and Have I Been Pwned.
// Both require API keys and only providers with a configured key are
// queried, so running without credentials is an explicit error rather
// than a silent no-op. Every hit is graded by how much credential
// material the breach exposed and appended to the lookup database.
package breach
