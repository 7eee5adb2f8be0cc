// Package search orchestrates username sweeps across the platform registry.
//
// A sweep runs one probe per selected platform, strictly in order, and
// appends every executed probe to the lookup database before moving on.
// Platforms without a profile URL template are excluded before the sweep
// starts, so they appear in neither the results nor the totals.
package search
