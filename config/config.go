// Package config contains the code to load and resolve the strata hierarchy
// configuration
package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/tf"
	"github.com/lyraproj/dgoyaml/yaml"
	"github.com/strataproj/strata/api"
)

type strataCfg struct {
	root      string
	path      string
	defaults  *entry
	hierarchy []api.Entry
}

const definitions = `{
	rstring=string[1],
	defaults={
	  datadir?:rstring
	},
	entry={
	  name:rstring,
	  datadir?:rstring,
	  path?:rstring,
	  paths?:[1]rstring,
	  glob?:rstring,
	  globs?:[1]rstring
	}
}`

const cfgTypeString = `{
	version?:5,
	defaults?:defaults,
	hierarchy?:[]entry
}`

// FileName is the default file name for the strata configuration file.
const FileName = `strata.yaml`

var cfgType dgo.Type

func init() {
	tf.ParseType(definitions)
	cfgType = tf.ParseType(cfgTypeString)
}

// New creates a new Config from the given path. If the path does not exist,
// the default config is returned. A file that exists but does not conform to
// the configuration schema raises a panic; an invalid configuration is a
// caller contract violation, not a soft failure.
func New(configPath string) api.Config {
	content, err := ioutil.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			panic(err)
		}
		dc := &strataCfg{root: filepath.Dir(configPath), path: ``}
		dc.defaults = dc.makeDefaultConfig()
		dc.hierarchy = dc.makeDefaultHierarchy()
		return dc
	}

	yv, err := yaml.Unmarshal(content)
	if err != nil {
		panic(err)
	}
	cfgMap, ok := yv.(dgo.Map)
	if !ok {
		panic(fmt.Errorf(`configuration '%s' does not contain a hash`, configPath))
	}
	if !cfgType.Instance(cfgMap) {
		panic(tf.IllegalAssignment(cfgType, cfgMap))
	}
	return createConfig(configPath, cfgMap)
}

func createConfig(path string, hash dgo.Map) api.Config {
	cfg := &strataCfg{root: filepath.Dir(path), path: path}

	if dv, ok := hash.Get(`defaults`).(dgo.Map); ok {
		cfg.defaults = cfg.createEntry(`defaults`, dv)
	} else {
		cfg.defaults = cfg.makeDefaultConfig()
	}

	if hv, ok := hash.Get(`hierarchy`).(dgo.Array); ok {
		cfg.hierarchy = cfg.createHierarchy(hv)
	} else {
		cfg.hierarchy = cfg.makeDefaultHierarchy()
	}
	return cfg
}

func defaultDataDir() string {
	dataDir, exists := os.LookupEnv(`STRATA_DATADIR`)
	if !exists {
		dataDir = `data`
	}
	return dataDir
}

func (hc *strataCfg) makeDefaultConfig() *entry {
	return &entry{cfg: hc, dataDir: defaultDataDir()}
}

func (hc *strataCfg) makeDefaultHierarchy() []api.Entry {
	return []api.Entry{
		&entry{cfg: hc, name: `Common`, locations: []api.Location{NewPath(`common.yaml`)}}}
}

func (hc *strataCfg) Hierarchy() []api.Entry {
	return hc.hierarchy
}

func (hc *strataCfg) Root() string {
	return hc.root
}

func (hc *strataCfg) Path() string {
	return hc.path
}

func (hc *strataCfg) Defaults() api.Entry {
	return hc.defaults
}

func (hc *strataCfg) createHierarchy(hierarchy dgo.Array) []api.Entry {
	entries := make([]api.Entry, 0, hierarchy.Len())
	uniqueNames := make(map[string]bool, hierarchy.Len())
	hierarchy.Each(func(hv dgo.Value) {
		hh := hv.(dgo.Map)
		name := ``
		if nv := hh.Get(`name`); nv != nil {
			name = nv.String()
		}
		if uniqueNames[name] {
			panic(fmt.Errorf(`hierarchy name '%s' defined more than once`, name))
		}
		uniqueNames[name] = true
		entries = append(entries, hc.createEntry(name, hh))
	})
	return entries
}

func (hc *strataCfg) createEntry(name string, entryHash dgo.Map) *entry {
	entry := &entry{cfg: hc, name: name}
	entryHash.EachEntry(func(me dgo.MapEntry) {
		ks := me.Key().String()
		v := me.Value()
		switch ks {
		case `datadir`:
			entry.dataDir = v.String()
		case `path`:
			entry.addLocations(name, []api.Location{NewPath(v.String())})
		case `paths`:
			a := v.(dgo.Array)
			ls := make([]api.Location, 0, a.Len())
			a.Each(func(p dgo.Value) { ls = append(ls, NewPath(p.String())) })
			entry.addLocations(name, ls)
		case `glob`:
			entry.addLocations(name, []api.Location{NewGlob(v.String())})
		case `globs`:
			a := v.(dgo.Array)
			ls := make([]api.Location, 0, a.Len())
			a.Each(func(p dgo.Value) { ls = append(ls, NewGlob(p.String())) })
			entry.addLocations(name, ls)
		}
	})
	if name != `defaults` && entry.locations == nil {
		panic(fmt.Errorf(`one of path, paths, glob, globs must be defined in hierarchy '%s'`, name))
	}
	return entry
}
