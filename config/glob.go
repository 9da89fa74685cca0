package config

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar"
	"github.com/lyraproj/dgo/dgo"
	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/interpolate"
)

type glob string

// NewGlob returns a glob Location
func NewGlob(pattern string) api.Location {
	return glob(pattern)
}

func (g glob) Exists() bool {
	return false
}

func (g glob) Kind() api.LocationKind {
	return api.LcGlob
}

func (g glob) String() string {
	return fmt.Sprintf("glob{pattern:%s}", g.Original())
}

func (g glob) Original() string {
	return string(g)
}

func (g glob) Resolve(scope *api.Scope, dataDir string, vars dgo.Map) []api.Location {
	r, _ := interpolate.String(g.Original(), scope, vars)
	rp := filepath.Join(dataDir, r.String())
	matches, _ := doublestar.Glob(rp)
	sort.Strings(matches)
	ls := make([]api.Location, len(matches))
	for i, m := range matches {
		ls[i] = &path{g.Original(), m, true}
	}
	return ls
}

func (g glob) Resolved() string {
	// This should never happen.
	panic(fmt.Errorf(`resolved requested on a glob`))
}
