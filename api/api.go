// Package api contains the types and interfaces that are shared between the
// strata packages: parsed lookup keys, the interpolation scope, the hierarchy
// configuration contracts, and the resolution result.
package api

// LookupOptionsKey is the reserved top level key under which a data file
// declares per-key merge policy. The key itself can never be looked up.
const LookupOptionsKey = `lookup_options`

// DefaultMerge is the merge method used when neither the caller nor any
// lookup_options block names one.
const DefaultMerge = `first`
