// Package merge implements the four lookup methods that combine the ordered
// list of per-level values collected for a key into one final value.
package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
)

// A Method is one of the four lookup methods. The set is fixed, so the
// methods form a closed sum type dispatched by Apply rather than an open
// strategy hierarchy.
type Method int

const (
	// First returns the highest priority value unchanged.
	First = Method(iota)
	// Unique merges all values into one flat list of unique elements.
	Unique
	// Hash merges map values key by key where the highest priority wins.
	Hash
	// Deep merges maps recursively and optionally unions arrays.
	Deep
)

var methodNames = map[Method]string{First: `first`, Unique: `unique`, Hash: `hash`, Deep: `deep`}

// ParseMethod returns the Method that corresponds to the given name.
func ParseMethod(name string) (Method, error) {
	switch name {
	case `first`, ``:
		return First, nil
	case `unique`:
		return Unique, nil
	case `hash`:
		return Hash, nil
	case `deep`:
		return Deep, nil
	default:
		return First, fmt.Errorf(`unknown merge method '%s'`, name)
	}
}

func (m Method) String() string {
	return methodNames[m]
}

// Options are the tunables that apply to the unique, hash, and deep methods.
type Options struct {
	// KnockoutPrefix marks list elements and map keys for removal instead
	// of addition. Empty disables knockout handling.
	KnockoutPrefix string

	// SortMergedArrays sorts merged lists lexicographically by their
	// canonical string form.
	SortMergedArrays bool

	// MergeHashArrays makes Deep union-merge arrays instead of letting the
	// higher priority array replace the lower priority one entirely.
	MergeHashArrays bool
}

// Apply combines the given values using the given method. The values must be
// ordered highest priority first; index 0 always wins a first-style conflict.
//
// A single value is returned unchanged regardless of method; the methods only
// differ when two or more values contributed. An empty slice yields nil, but
// the resolver never reaches this stage without at least one value.
func Apply(values []dgo.Value, m Method, opts Options) dgo.Value {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	}
	switch m {
	case Unique:
		return uniqueMerge(values, opts)
	case Hash:
		return hashMerge(values, opts)
	case Deep:
		return deepMerge(values, opts)
	default:
		return values[0]
	}
}

// uniqueMerge flattens every value into list elements and unions them in
// first-seen order. A knockout element removes its target from the result and
// bars it from ever being added again.
func uniqueMerge(values []dgo.Value, opts Options) dgo.Value {
	u := newUnion(opts)
	for _, v := range values {
		if a, ok := v.(dgo.Array); ok {
			a.Each(u.add)
		} else {
			u.add(v)
		}
	}
	return u.result()
}

// hashMerge folds map values so that the highest priority entry wins per key.
// Entries are visited highest priority first; a knockout key bars the
// un-prefixed key from all lower priority contributions.
func hashMerge(values []dgo.Value, opts Options) dgo.Value {
	result := vf.MutableMap()
	knocked := map[string]bool{}
	ko := opts.KnockoutPrefix
	for _, v := range values {
		m, ok := v.(dgo.Map)
		if !ok {
			continue
		}
		m.EachEntry(func(e dgo.MapEntry) {
			if ks, ok := e.Key().(dgo.String); ok {
				gs := ks.GoString()
				if ko != `` && strings.HasPrefix(gs, ko) {
					knocked[gs[len(ko):]] = true
					return
				}
				if knocked[gs] {
					return
				}
			}
			if !result.ContainsKey(e.Key()) {
				result.Put(e.Key(), e.Value())
			}
		})
	}
	return result
}

// deepMerge folds the values from lowest to highest priority so that each
// higher priority value is structurally merged on top of the accumulated
// result.
func deepMerge(values []dgo.Value, opts Options) dgo.Value {
	acc := values[len(values)-1]
	for i := len(values) - 2; i >= 0; i-- {
		acc = deepValue(values[i], acc, opts)
	}
	return acc
}

// deepValue merges the higher priority value a on top of the lower priority
// value b. An absent value never overrides a present one in either direction.
func deepValue(a, b dgo.Value, opts Options) dgo.Value {
	if a == nil || a == vf.Nil {
		return b
	}
	if b == nil || b == vf.Nil {
		return a
	}
	switch av := a.(type) {
	case dgo.Map:
		if bv, ok := b.(dgo.Map); ok {
			return deepMaps(av, bv, opts)
		}
	case dgo.Array:
		if bv, ok := b.(dgo.Array); ok {
			if opts.MergeHashArrays {
				return deepArrays(av, bv, opts)
			}
			return av
		}
	}
	return a
}

func deepMaps(a, b dgo.Map, opts Options) dgo.Value {
	result := vf.MapWithCapacity(a.Len() + b.Len())
	knocked := map[string]bool{}
	ko := opts.KnockoutPrefix
	a.EachEntry(func(e dgo.MapEntry) {
		if ks, ok := e.Key().(dgo.String); ok && ko != `` && strings.HasPrefix(ks.GoString(), ko) {
			knocked[ks.GoString()[len(ko):]] = true
			return
		}
		if bv := b.Get(e.Key()); bv != nil {
			result.Put(e.Key(), deepValue(e.Value(), bv, opts))
		} else {
			result.Put(e.Key(), e.Value())
		}
	})
	b.EachEntry(func(e dgo.MapEntry) {
		if a.ContainsKey(e.Key()) || result.ContainsKey(e.Key()) {
			return
		}
		if ks, ok := e.Key().(dgo.String); ok && knocked[ks.GoString()] {
			return
		}
		result.Put(e.Key(), e.Value())
	})
	return result
}

func deepArrays(a, b dgo.Array, opts Options) dgo.Value {
	u := newUnion(opts)
	a.Each(u.add)
	b.Each(u.add)
	return u.result()
}

// union accumulates unique list elements with knockout bookkeeping.
type union struct {
	opts     Options
	elements []dgo.Value
	knocked  map[string]bool
}

func newUnion(opts Options) *union {
	return &union{opts: opts, knocked: map[string]bool{}}
}

func (u *union) add(e dgo.Value) {
	if s, ok := e.(dgo.String); ok {
		gs := s.GoString()
		ko := u.opts.KnockoutPrefix
		if ko != `` && strings.HasPrefix(gs, ko) {
			u.knockout(gs[len(ko):])
			return
		}
		if u.knocked[gs] {
			return
		}
	}
	for _, p := range u.elements {
		if p.Equals(e) {
			return
		}
	}
	u.elements = append(u.elements, e)
}

func (u *union) knockout(target string) {
	u.knocked[target] = true
	ns := u.elements[:0]
	for _, p := range u.elements {
		if s, ok := p.(dgo.String); ok && s.GoString() == target {
			continue
		}
		ns = append(ns, p)
	}
	u.elements = ns
}

func (u *union) result() dgo.Value {
	if len(u.elements) == 0 {
		return vf.Values()
	}
	if u.opts.SortMergedArrays {
		sort.Slice(u.elements, func(i, j int) bool { return u.elements[i].String() < u.elements[j].String() })
	}
	return vf.Array(u.elements)
}
