package api

import "github.com/lyraproj/dgo/dgo"

// LocationKind describes the kind of location that is used in a hierarchy
// entry.
type LocationKind string

// LcPath indicates that the location is a path in a file system
const LcPath = LocationKind(`path`)

// LcGlob indicates that the location is a glob
const LcGlob = LocationKind(`glob`)

// A Location is one path or glob template of a hierarchy entry. A template
// is resolved into zero or more physical locations by interpolating it with
// a scope and joining it with the entry's data directory.
type Location interface {
	Kind() LocationKind

	// Exists returns true when this location is resolved and denotes an
	// existing file.
	Exists() bool

	// Resolve interpolates the template using the given scope, joins it
	// with the given data directory, and returns the resulting concrete
	// locations. Substituted template variables are recorded in vars when
	// vars is non-nil.
	Resolve(scope *Scope, dataDir string, vars dgo.Map) []Location

	// Original returns the template as declared in the configuration.
	Original() string

	// Resolved returns the resolved file system path.
	Resolved() string
}

// An Entry is one named hierarchy level.
type Entry interface {
	Name() string

	// DataDir returns the level's data directory, possibly unresolved.
	DataDir() string

	// Locations returns the level's location templates, or its resolved
	// locations when the entry itself is resolved.
	Locations() []Location

	// Resolve returns a copy of this entry where the data directory and all
	// locations are interpolated with the given scope. Defaults supplies
	// the configuration wide fallbacks.
	Resolve(scope *Scope, defaults Entry, vars dgo.Map) Entry
}

// A Config is a declared hierarchy of data sources. It is immutable per
// resolution call and owned by the caller. The shape of the configuration is
// validated when it is loaded; resolution assumes it is valid.
type Config interface {
	// Root returns the directory that relative data directories are
	// resolved against.
	Root() string

	// Path returns the path of the configuration file, or the empty string
	// for a default configuration.
	Path() string

	// Hierarchy returns the ordered hierarchy levels. Document order
	// encodes priority with the topmost entry first.
	Hierarchy() []Entry

	// Defaults returns the entry holding configuration wide defaults.
	Defaults() Entry
}
