package api

import (
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
)

// A Scope carries the per-node inputs to one resolution: the node's facts,
// the catalog-derived variables, and any compilation warnings reported by the
// catalog compiler. A Scope is read-only once created and is supplied fresh
// per resolution call.
//
// The facts map is the node's top level fact map. The `trusted` and
// `server_facts` sub-trees live inside it under their respective keys.
// Catalog variables take priority over facts for all bare variable
// references. The map may be nil, in which case interpolation falls back to
// facts only.
type Scope struct {
	facts    dgo.Map
	catalog  dgo.Map
	warnings []string
}

// NewScope creates a Scope from the given facts and catalog variables. Either
// argument may be nil. The maps are frozen so that a resolution can never
// mutate its inputs.
func NewScope(facts, catalog dgo.Map, warnings []string) *Scope {
	if facts == nil {
		facts = vf.Map()
	} else {
		facts = frozen(facts)
	}
	if catalog != nil {
		catalog = frozen(catalog)
	}
	return &Scope{facts: facts, catalog: catalog, warnings: warnings}
}

// Facts returns the node's fact map. Never nil.
func (s *Scope) Facts() dgo.Map {
	return s.facts
}

// Catalog returns the catalog-derived variables or nil when no catalog was
// supplied.
func (s *Scope) Catalog() dgo.Map {
	return s.catalog
}

// Warnings returns the catalog compilation warnings that were supplied with
// this scope.
func (s *Scope) Warnings() []string {
	return s.warnings
}

func frozen(m dgo.Map) dgo.Map {
	if f, ok := m.(dgo.Freezable); ok {
		return f.FrozenCopy().(dgo.Map)
	}
	return m
}
