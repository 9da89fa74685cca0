package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lyraproj/dgo/dgo"
	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/interpolate"
)

type path struct {
	original string
	resolved string
	exists   bool
}

// NewPath returns a path Location
func NewPath(original string) api.Location {
	return &path{original: original}
}

func (p *path) Exists() bool {
	return p.exists
}

func (p *path) Kind() api.LocationKind {
	return api.LcPath
}

func (p *path) String() string {
	return fmt.Sprintf("path{ original:%s, resolved:%s, exists:%v}", p.original, p.resolved, p.exists)
}

func (p *path) Resolve(scope *api.Scope, dataDir string, vars dgo.Map) []api.Location {
	r, _ := interpolate.String(p.original, scope, vars)
	rp := filepath.Join(dataDir, r.String())
	_, err := os.Stat(rp)
	return []api.Location{&path{p.original, rp, err == nil}}
}

func (p *path) Original() string {
	return p.original
}

func (p *path) Resolved() string {
	return p.resolved
}
