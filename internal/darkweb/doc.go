// Package darkweb sweeps onion search engines for mentions of a term.
//
// Engines are queried concurrently with a bounded errgroup, each over its
// clearnet mirror by default or over its onion mirror when a Tor client is
// configured. Result pages are parsed structurally with goquery; pages
// whose markup yields no result anchors fall back to scanning the raw
// HTML for onion addresses. Only hosts that validate as v3 onion
// addresses become mentions.
//
// A failed engine does not abort the sweep. Collected mentions are
// appended to the lookup database together with one session row.
package darkweb
