// Package server exposes the lookup database over a read-only HTTP API.
//
// The API serves persisted username searches, phone lookups, breach hits,
// dark web mentions and search sessions as JSON, straight from the model
// types. It never triggers new lookups. Routing is handled by gin in
// release mode with only the Recovery middleware attached; request
// logging goes through slog instead of gin's own logger.
//
// Design decision: the server is read-only. Lookups hit external
// providers, carry API keys and can take minutes, which makes them a poor
// fit for an unauthenticated HTTP surface. Write paths stay in the CLI.
package server
