// Package main provides the entry point for the intelscan CLI.
//
// intelscan runs open-source intelligence lookups from the command line:
// username presence sweeps, phone number analysis, domain intelligence,
// breach exposure checks, and dark web searches over Tor.
//
// Usage:
//
//	intelscan search <username>
//	intelscan investigate <username> --domain example.com
//
// See --help for all available options.
package main

// main is the entry point for intelscan.
func main() {
	Execute()
}
