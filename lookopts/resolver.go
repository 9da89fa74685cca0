// Package lookopts discovers the per-key merge policy that applies to a
// lookup by scanning the lookup_options blocks of the hierarchy's data files.
package lookopts

import (
	"regexp"
	"strings"

	"github.com/lyraproj/dgo/dgo"
	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/datafile"
	"github.com/strataproj/strata/util"
)

// A table is the lookup_options block of one data file, compiled into an
// exact match map and an ordered pattern list. Exact entries always win over
// patterns within the same file.
type table struct {
	exact    map[string]*api.LookupOptions
	patterns []patternEntry
}

type patternEntry struct {
	rx   *regexp.Regexp
	opts *api.LookupOptions
}

// A Resolver answers which LookupOptions apply to a key under a given
// hierarchy. Compiled tables are cached per resolved file path and shared by
// concurrent resolutions until Flush is called.
type Resolver struct {
	data   *datafile.Accessor
	tables *util.ConcurrentMap
}

// New creates a Resolver reading data files through the given accessor.
func New(data *datafile.Accessor) *Resolver {
	return &Resolver{data: data, tables: util.NewConcurrentMap(17)}
}

// OptionsFor scans the hierarchy top to bottom and returns the LookupOptions
// declared for the given key, or nil when no level declares any. Within each
// level the interpolated paths are tried in declaration order and the first
// file with a matching entry wins.
func (r *Resolver) OptionsFor(key string, cfg api.Config, scope *api.Scope) *api.LookupOptions {
	defaults := cfg.Defaults()
	for _, e := range cfg.Hierarchy() {
		re := e.Resolve(scope, defaults, nil)
		for _, loc := range re.Locations() {
			if !loc.Exists() {
				continue
			}
			if o := r.table(loc.Resolved()).match(key); o != nil {
				return o
			}
		}
	}
	return nil
}

// Flush drops all compiled tables.
func (r *Resolver) Flush() {
	r.tables.Clear()
}

func (r *Resolver) table(path string) *table {
	v, _ := r.tables.EnsureSet(path, func() (interface{}, bool) {
		return compile(r.data.LookupOptions(path)), true
	})
	return v.(*table)
}

func (t *table) match(key string) *api.LookupOptions {
	if o, ok := t.exact[key]; ok {
		return o
	}
	for _, p := range t.patterns {
		if p.rx.MatchString(key) {
			return p.opts
		}
	}
	return nil
}

func compile(block dgo.Map) *table {
	t := &table{exact: map[string]*api.LookupOptions{}}
	if block == nil {
		return t
	}
	block.EachEntry(func(e dgo.MapEntry) {
		ks, ok := e.Key().(dgo.String)
		if !ok {
			return
		}
		om, ok := e.Value().(dgo.Map)
		if !ok {
			return
		}
		opts := parseOptions(om)
		pattern := ks.GoString()
		if strings.ContainsRune(pattern, '*') {
			// A single * wildcard expands to a greedy subexpression
			rx, err := regexp.Compile(`^` + strings.Replace(regexp.QuoteMeta(pattern), `\*`, `.*`, -1) + `$`)
			if err == nil {
				t.patterns = append(t.patterns, patternEntry{rx: rx, opts: opts})
			}
		} else {
			t.exact[pattern] = opts
		}
	})
	return t
}

func parseOptions(om dgo.Map) *api.LookupOptions {
	o := &api.LookupOptions{}
	switch mv := om.Get(`merge`).(type) {
	case dgo.String:
		o.Merge = mv.GoString()
	case dgo.Map:
		// The merge entry may itself be a hash with a strategy name and
		// merge tunables
		if s, ok := mv.Get(`strategy`).(dgo.String); ok {
			o.Merge = s.GoString()
		}
		readTunables(mv, o)
	}
	readTunables(om, o)
	return o
}

func readTunables(m dgo.Map, o *api.LookupOptions) {
	if v, ok := m.Get(`knockout_prefix`).(dgo.String); ok {
		o.KnockoutPrefix = v.GoString()
	}
	if v, ok := m.Get(`sort_merged_arrays`).(dgo.Boolean); ok {
		o.SortMergedArrays = v.GoBool()
	}
	if v, ok := m.Get(`merge_hash_arrays`).(dgo.Boolean); ok {
		o.MergeHashArrays = v.GoBool()
	}
}
