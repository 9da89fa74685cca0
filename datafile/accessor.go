// Package datafile reads hierarchy level data files and answers key lookups
// against them, including the best effort line number scan used for
// provenance.
package datafile

import (
	"io/ioutil"
	"os"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgoyaml/yaml"
	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/util"
)

// A document is one parsed data file. The hash is nil when the file is
// missing, unreadable, malformed, or not a map; such a file contributes
// nothing to a lookup but never fails it.
type document struct {
	hash  dgo.Map
	lines []string
}

// An Accessor loads and caches data files. It is safe for use by concurrent
// resolutions; parsed documents are cached per path until Flush is called.
type Accessor struct {
	log  hclog.Logger
	docs *util.ConcurrentMap
}

// New creates an Accessor that logs through the given logger, or through
// hclog.Default() when nil is given.
func New(log hclog.Logger) *Accessor {
	if log == nil {
		log = hclog.Default()
	}
	return &Accessor{log: log, docs: util.NewConcurrentMap(17)}
}

// Value returns the value paired with the given key in the data file at the
// given path. The lookup happens in two phases: first the key's source string
// is tried as one exact top level key, so that flat keys such as
// "profile::nginx::port" or quoted dotted keys match atomically, and then the
// key digs through nested collections segment by segment. Each dig step is an
// explicit key presence check against a plain map value.
func (a *Accessor) Value(path string, key api.Key) (dgo.Value, bool) {
	h := a.document(path).hash
	if h == nil {
		return nil, false
	}
	if v := h.Get(key.Source()); v != nil {
		return v, true
	}
	root := h.Get(key.Root())
	if root == nil {
		return nil, false
	}
	if v := key.Dig(root); v != nil {
		return v, true
	}
	return nil, false
}

// LookupOptions returns the lookup_options block declared by the data file at
// the given path, or nil when the file has none.
func (a *Accessor) LookupOptions(path string) dgo.Map {
	h := a.document(path).hash
	if h == nil {
		return nil
	}
	if m, ok := h.Get(api.LookupOptionsKey).(dgo.Map); ok {
		return m
	}
	return nil
}

// LineOf returns the 1-based line number where the given key is textually
// defined in the file at path, or 0 when no line matches. The scan is
// independent of the structural parse: it looks for the key, or for a dotted
// key its last segment, at the start of a line followed by a colon.
func (a *Accessor) LineOf(path string, key api.Key) int {
	doc := a.document(path)
	if len(doc.lines) == 0 {
		return 0
	}
	seg := key.Source()
	if parts := key.Parts(); len(parts) > 1 {
		if s, ok := parts[len(parts)-1].(string); ok {
			seg = s
		}
	}
	rx, err := regexp.Compile(`^\s*["']?` + regexp.QuoteMeta(seg) + `["']?\s*:`)
	if err != nil {
		return 0
	}
	for i, ln := range doc.lines {
		if rx.MatchString(ln) {
			return i + 1
		}
	}
	return 0
}

// Flush drops all cached documents. Callers use this when underlying data
// files have changed; no automatic invalidation takes place.
func (a *Accessor) Flush() {
	a.docs.Clear()
}

func (a *Accessor) document(path string) *document {
	v, _ := a.docs.EnsureSet(path, func() (interface{}, bool) {
		return a.load(path), true
	})
	return v.(*document)
}

func (a *Accessor) load(path string) *document {
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			a.log.Debug(`unreadable data file`, `path`, path, `error`, err)
		}
		return &document{}
	}
	lines := strings.Split(string(bs), "\n")
	yv, err := yaml.Unmarshal(bs)
	if err != nil {
		a.log.Warn(`malformed data file`, `path`, path, `error`, err)
		return &document{lines: lines}
	}
	h, ok := yv.(dgo.Map)
	if !ok {
		a.log.Warn(`data file does not contain a hash`, `path`, path)
		return &document{lines: lines}
	}
	return &document{hash: h, lines: lines}
}
