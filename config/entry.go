package config

import (
	"fmt"
	"path/filepath"

	"github.com/lyraproj/dgo/dgo"
	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/interpolate"
)

type entry struct {
	cfg       *strataCfg
	dataDir   string
	name      string
	locations []api.Location
}

func (e *entry) Name() string {
	return e.name
}

func (e *entry) DataDir() string {
	return e.dataDir
}

func (e *entry) Locations() []api.Location {
	return e.locations
}

func (e *entry) addLocations(name string, ls []api.Location) {
	if e.locations != nil {
		panic(fmt.Errorf(`only one of path, paths, glob, globs can be defined in hierarchy '%s'`, name))
	}
	e.locations = ls
}

// Resolve interpolates the data directory and all location templates of this
// entry with the given scope and returns the resolved copy.
func (e *entry) Resolve(scope *api.Scope, defaults api.Entry, vars dgo.Map) api.Entry {
	ce := *e
	ce.resolveDataDir(scope, defaults, vars)
	ce.resolveLocations(scope, vars)
	return &ce
}

func (e *entry) resolveDataDir(scope *api.Scope, defaults api.Entry, vars dgo.Map) {
	if e.dataDir == `` {
		if defaults == nil || defaults.DataDir() == `` {
			e.dataDir = defaultDataDir()
		} else {
			e.dataDir = defaults.DataDir()
		}
	}
	if d, dc := interpolate.String(e.dataDir, scope, vars); dc {
		e.dataDir = d.String()
	}
}

func (e *entry) resolveLocations(scope *api.Scope, vars dgo.Map) {
	var dataRoot string
	if filepath.IsAbs(e.dataDir) {
		dataRoot = e.dataDir
	} else {
		dataRoot = filepath.Join(e.cfg.root, e.dataDir)
	}
	if e.locations != nil {
		ne := make([]api.Location, 0, len(e.locations))
		for _, l := range e.locations {
			ne = append(ne, l.Resolve(scope, dataRoot, vars)...)
		}
		e.locations = ne
	}
}
