package api

import (
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
)

// LookupOptions is the per-key merge policy discovered by scanning the
// lookup_options blocks of the hierarchy's data files.
type LookupOptions struct {
	// Merge is the name of the merge method: first, unique, hash, or deep.
	Merge string

	// KnockoutPrefix is the marker that, when prefixing a list element or a
	// map key, removes the referenced element from the merged result. Empty
	// when no knockout applies.
	KnockoutPrefix string

	// SortMergedArrays sorts merged lists lexicographically by their
	// canonical string form.
	SortMergedArrays bool

	// MergeHashArrays makes the deep method union-merge arrays instead of
	// letting the higher priority array replace the lower one.
	MergeHashArrays bool
}

// A KeyLocation is one concrete instance of a key's value found at one
// hierarchy level.
type KeyLocation struct {
	// Path is the data file the value came from.
	Path string

	// Level is the name of the hierarchy level that declared the file.
	Level string

	// Line is the 1-based line where the key is textually defined, or 0
	// when the line could not be determined.
	Line int

	// Value is the already interpolated value found at this location.
	Value dgo.Value
}

// A Resolution is the result of one resolve call. Locations are ordered
// top-to-bottom in hierarchy declaration order; index 0 is the highest
// priority and is the authoritative source for first-style provenance.
//
// When Found is false the resolution carries no locations, no source file,
// and Value holds the caller supplied default (possibly nil).
type Resolution struct {
	// Key is the key that was looked up.
	Key string

	// Value is the final merged value, or the default when not found.
	Value dgo.Value

	// Method is the name of the merge method that was actually used.
	Method string

	// SourceFile is the file of the first contributing location.
	SourceFile string

	// Level is the hierarchy level of the first contributing location.
	Level string

	// Locations is the complete ordered list of contributing locations.
	Locations []KeyLocation

	// Variables maps every interpolation reference that was actually
	// substituted during this resolution to its resolved value.
	Variables dgo.Map

	// Warnings are the catalog compilation warnings threaded through from
	// the scope.
	Warnings []string

	// Found is true when at least one hierarchy level defined the key.
	Found bool
}

// ToMap returns the resolution as a Map, suitable for rendering.
func (r *Resolution) ToMap() dgo.Map {
	m := vf.MutableMap()
	m.Put(`key`, r.Key)
	m.Put(`found`, r.Found)
	if r.Value != nil {
		m.Put(`value`, r.Value)
	}
	if r.Found {
		m.Put(`merge`, r.Method)
		m.Put(`source_file`, r.SourceFile)
		m.Put(`hierarchy_level`, r.Level)
		ls := make([]dgo.Value, len(r.Locations))
		for i := range r.Locations {
			l := &r.Locations[i]
			ls[i] = vf.Map(
				`path`, l.Path,
				`hierarchy_level`, l.Level,
				`line`, l.Line,
				`value`, l.Value)
		}
		m.Put(`locations`, vf.Array(ls))
	}
	if r.Variables != nil && r.Variables.Len() > 0 {
		m.Put(`variables`, r.Variables)
	}
	if len(r.Warnings) > 0 {
		m.Put(`warnings`, vf.Array(r.Warnings))
	}
	return m
}
