// Package model defines the core data structures used throughout intelscan.
//
// This package contains the following main types:
//   - Platform: A checkable identity service and its profile URL template
//   - ProbeResult: The verdict of one username probe against one platform
//   - Report: The aggregated findings for a single subject
//   - UsernameSearch, PhoneLookup, DomainLookup, BreachHit, DarkwebMention,
//     SearchSession: Persisted lookup records
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (probe, search, database, report, server)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
