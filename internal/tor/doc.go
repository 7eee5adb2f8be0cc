// Package tor provides Tor network connectivity for darkweb searches.
//
// It wraps a SOCKS5 dialer around an external Tor daemon, optionally
// manages an embedded daemon via tornago for users without a local Tor
// installation, and validates the v3 onion addresses that search results
// point at. The HTTP clients built here are what the darkweb searcher
// uses to query onion search engines.
//
// The package is designed to be used with dependency injection: create a
// Client and pass it to components that need Tor connectivity rather than
// using global state.
package tor
