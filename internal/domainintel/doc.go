// Package domainintel looks up domain registration and DNS data.
//
// A lookup normalizes the input to its registrable domain, queries WHOIS
// for registration facts, resolves the common record types against a
// configurable resolver, and appends the combined snapshot to the lookup
// database. WHOIS and DNS are each best effort: a failure on one side
// leaves its fields empty instead of failing the whole lookup.
package domainintel
