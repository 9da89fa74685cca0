// Package strata contains the resolver that walks a declared hierarchy of
// data sources and resolves a key into a single value with full provenance.
package strata

import (
	"github.com/hashicorp/go-hclog"
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/util"
	"github.com/lyraproj/dgo/vf"
	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/datafile"
	"github.com/strataproj/strata/interpolate"
	"github.com/strataproj/strata/lookopts"
	"github.com/strataproj/strata/merge"
)

// Options are the caller supplied options for one resolution.
type Options struct {
	// Merge overrides the merge method. When set, no lookup_options scan
	// takes place and the remaining fields of this struct supply the merge
	// tunables.
	Merge string

	// KnockoutPrefix applies together with a Merge override.
	KnockoutPrefix string

	// SortMergedArrays applies together with a Merge override.
	SortMergedArrays bool

	// MergeHashArrays applies together with a Merge override.
	MergeHashArrays bool

	// Default is returned as the resolution value when no hierarchy level
	// defines the key.
	Default dgo.Value
}

// A Resolver performs hierarchical lookups. It owns the data file and
// lookup_options caches and is safe for use by concurrent resolutions of
// many nodes.
type Resolver struct {
	log  hclog.Logger
	data *datafile.Accessor
	opts *lookopts.Resolver
}

// New creates a Resolver that logs through the given logger, or through
// hclog.Default() when nil is given.
func New(log hclog.Logger) *Resolver {
	if log == nil {
		log = hclog.Default()
	}
	data := datafile.New(log)
	return &Resolver{log: log, data: data, opts: lookopts.New(data)}
}

// Flush drops all cached data files and lookup_options tables. Callers
// invoke it when underlying data files have changed.
func (r *Resolver) Flush() {
	r.data.Flush()
	r.opts.Flush()
}

// Resolve walks the hierarchy declared by cfg in document order and resolves
// the given key for the node described by scope. Malformed data files,
// missing files, and path templates that do not interpolate are all treated
// as locations contributing nothing; the only panic raised from here is an
// invalid key or an unknown merge method name.
func (r *Resolver) Resolve(key string, scope *api.Scope, cfg api.Config, o *Options) *api.Resolution {
	if o == nil {
		o = &Options{}
	}
	if scope == nil {
		scope = api.NewScope(nil, nil, nil)
	}
	k := api.NewKey(key)
	vars := vf.MutableMap()
	if k.Root() == api.LookupOptionsKey {
		return notFound(key, vars, scope, o)
	}

	locations := r.scan(k, scope, cfg, vars)
	if len(locations) == 0 {
		r.log.Debug(`key not found in any hierarchy level`, `key`, key)
		return notFound(key, vars, scope, o)
	}

	method, mergeOpts := r.methodFor(key, scope, cfg, o)
	values := make([]dgo.Value, len(locations))
	for i := range locations {
		values[i] = locations[i].Value
	}

	return &api.Resolution{
		Key:        key,
		Value:      merge.Apply(values, method, mergeOpts),
		Method:     method.String(),
		SourceFile: locations[0].Path,
		Level:      locations[0].Level,
		Locations:  locations,
		Variables:  vars,
		Warnings:   scope.Warnings(),
		Found:      true,
	}
}

// TryResolve calls Resolve and converts a panic raised by an invalid key,
// configuration, or merge method into an error.
func (r *Resolver) TryResolve(key string, scope *api.Scope, cfg api.Config, o *Options) (res *api.Resolution, err error) {
	err = util.Catch(func() {
		res = r.Resolve(key, scope, cfg, o)
	})
	return
}

// scan visits every hierarchy level in declared order and collects the
// locations that define the key. Values are interpolated as they are found
// and the substituted variables accumulate in vars, together with the
// variables used by the path templates themselves.
func (r *Resolver) scan(k api.Key, scope *api.Scope, cfg api.Config, vars dgo.Map) []api.KeyLocation {
	var locations []api.KeyLocation
	defaults := cfg.Defaults()
	for _, e := range cfg.Hierarchy() {
		re := e.Resolve(scope, defaults, vars)
		for _, loc := range re.Locations() {
			if !loc.Exists() {
				continue
			}
			raw, ok := r.data.Value(loc.Resolved(), k)
			if !ok {
				continue
			}
			locations = append(locations, api.KeyLocation{
				Path:  loc.Resolved(),
				Level: re.Name(),
				Line:  r.data.LineOf(loc.Resolved(), k),
				Value: interpolate.Value(raw, scope, vars),
			})
		}
	}
	return locations
}

// methodFor determines the effective merge method: the caller override wins,
// then the lookup_options discovered in the hierarchy, then first.
func (r *Resolver) methodFor(key string, scope *api.Scope, cfg api.Config, o *Options) (merge.Method, merge.Options) {
	if o.Merge != `` {
		m, err := merge.ParseMethod(o.Merge)
		if err != nil {
			panic(err)
		}
		return m, merge.Options{
			KnockoutPrefix:   o.KnockoutPrefix,
			SortMergedArrays: o.SortMergedArrays,
			MergeHashArrays:  o.MergeHashArrays,
		}
	}
	if lo := r.opts.OptionsFor(key, cfg, scope); lo != nil {
		m, err := merge.ParseMethod(lo.Merge)
		if err != nil {
			panic(err)
		}
		return m, merge.Options{
			KnockoutPrefix:   lo.KnockoutPrefix,
			SortMergedArrays: lo.SortMergedArrays,
			MergeHashArrays:  lo.MergeHashArrays,
		}
	}
	m, _ := merge.ParseMethod(api.DefaultMerge)
	return m, merge.Options{}
}

func notFound(key string, vars dgo.Map, scope *api.Scope, o *Options) *api.Resolution {
	return &api.Resolution{
		Key:       key,
		Value:     o.Default,
		Variables: vars,
		Warnings:  scope.Warnings(),
	}
}
