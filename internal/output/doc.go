// Package output renders lookup results for the terminal.
//
// The Printer writes human-readable, optionally colorized views of
// username sweeps, phone and domain lookups, breach checks and dark web
// sweeps. Line output goes through a log.Logger so every call site gets
// its trailing newline for free; tabular views (breach hits, recent
// sessions) render through a borderless table so the output stays
// copy-paste friendly.
//
// Design decision:
// Rendering lives apart from the lookup packages so they stay silent
// libraries. The pipeline and the HTTP server run the same lookups with
// no printer attached, while the CLI attaches one for progress output.
package output
