// Package database provides SQLite-based storage for intelscan lookups.
//
// This package implements the LookupDB, an append-only history of executed
// lookups: username probes, phone analyses, domain snapshots, breach hits,
// dark-web mentions, and the session log every command writes to.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
//  1. No external dependencies - the database is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. Sufficient performance for a single-user local tool
//  4. WAL mode provides good concurrent read performance
//
// Rows are never updated or deleted; repeat lookups create new rows, which
// is what makes historical comparison possible.
package database
