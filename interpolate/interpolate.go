// Package interpolate rewrites %{...} placeholders in looked up values.
//
// A variable reference is classified by its prefix. The facts, legacy
// top-scope, trusted, and server_facts namespaces always and only read from
// the node's facts. Every other reference is resolved against the catalog
// variables first and falls back to facts, so code-defined values override
// data-defined ones for bare names.
package interpolate

import (
	"regexp"
	"strings"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/strataproj/strata/api"
)

var iplPattern = regexp.MustCompile(`%{[^}]*}`)

var emptyInterpolations = map[string]bool{
	``:     true,
	`::`:   true,
	`""`:   true,
	"''":   true,
	`"::"`: true,
	"'::'": true,
}

// Value resolves interpolations in the given value and returns the result.
// Strings are rewritten, arrays and maps are walked recursively with each
// string leaf interpolated individually, and any other value passes through
// unchanged. Substituted references are recorded in vars when vars is
// non-nil.
func Value(value dgo.Value, scope *api.Scope, vars dgo.Map) dgo.Value {
	if result, changed := do(value, scope, vars); changed {
		return result
	}
	return value
}

func do(value dgo.Value, scope *api.Scope, vars dgo.Map) (dgo.Value, bool) {
	if s, ok := value.(dgo.String); ok {
		return String(s.GoString(), scope, vars)
	}
	if a, ok := value.(dgo.Array); ok {
		cp := a.AppendToSlice(make([]dgo.Value, 0, a.Len()))
		changed := false
		for i, e := range cp {
			v, c := do(e, scope, vars)
			if c {
				changed = true
				cp[i] = v
			}
		}
		if changed {
			a = vf.Array(cp)
		}
		return a, changed
	}
	if h, ok := value.(dgo.Map); ok {
		cp := vf.MapWithCapacity(h.Len())
		changed := false
		h.EachEntry(func(e dgo.MapEntry) {
			v, c := do(e.Value(), scope, vars)
			cp.Put(e.Key(), v)
			if c {
				changed = true
			}
		})
		if changed {
			return cp, true
		}
		return h, false
	}
	return value, false
}

// String resolves a string containing interpolation expressions. A
// placeholder whose reference cannot be resolved is left verbatim so that
// callers can detect partial interpolation. The returned bool is true when
// at least one placeholder was rewritten.
func String(str string, scope *api.Scope, vars dgo.Map) (dgo.Value, bool) {
	if !strings.Contains(str, `%{`) {
		return vf.String(str), false
	}
	changed := false
	result := iplPattern.ReplaceAllStringFunc(str, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-1])
		if emptyInterpolations[expr] {
			changed = true
			return ``
		}
		val := Resolve(expr, scope)
		if val == nil {
			// Unresolvable references stay in place
			return match
		}
		if vars != nil {
			vars.Put(expr, val)
		}
		changed = true
		return val.String()
	})
	return vf.String(result), changed
}

// Resolve resolves one variable reference against the scope and returns nil
// when the reference does not lead to a value.
func Resolve(ref string, scope *api.Scope) dgo.Value {
	switch {
	case strings.HasPrefix(ref, `facts.`):
		return dig(scope.Facts(), ref[len(`facts.`):])
	case strings.HasPrefix(ref, `::`):
		return dig(scope.Facts(), ref[len(`::`):])
	case strings.HasPrefix(ref, `trusted.`), strings.HasPrefix(ref, `server_facts.`):
		// Dedicated namespaces that live as sub-trees of the fact map
		return dig(scope.Facts(), ref)
	default:
		if c := scope.Catalog(); c != nil {
			// An exact catalog variable name wins even when it contains dots
			if v := c.Get(ref); v != nil {
				return v
			}
			if v := dig(c, ref); v != nil {
				return v
			}
		}
		return dig(scope.Facts(), ref)
	}
}

// dig performs a dotted lookup of ref inside m. A reference that does not
// parse as a key resolves to nothing.
func dig(m dgo.Map, ref string) (v dgo.Value) {
	defer func() {
		if recover() != nil {
			v = nil
		}
	}()
	key := api.NewKey(ref)
	if root := m.Get(key.Root()); root != nil {
		v = key.Dig(root)
	}
	return
}
