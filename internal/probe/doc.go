// Package probe implements the username presence check against a single
// platform: URL construction from the platform template, one HTTP GET with
// a browser User-Agent, and the heuristic existence classification.
//
// A probe never fails: transport errors are downgraded into a negative
// ProbeResult so that one broken platform cannot abort a sweep. The HTTP
// client is constructed explicitly and injected, never ambient.
package probe
