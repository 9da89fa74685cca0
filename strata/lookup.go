package strata

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"regexp"
	"strings"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/dgoyaml/yaml"
	"github.com/strataproj/strata/api"
)

// A CommandOptions contains the options given to the CLI lookup command or a
// REST invocation.
type CommandOptions struct {
	// Merge is the name of a merge method
	Merge string

	// KnockoutPrefix applies together with Merge
	KnockoutPrefix string

	// Default is a pointer to the string representation of a default value
	// or nil if no default value exists
	Default *string

	// FactPaths are optional paths to files containing the node's facts
	FactPaths []string

	// CatalogPaths are optional paths to files containing catalog-derived
	// variables
	CatalogPaths []string

	// Variables are literal key=value or key:value catalog variables
	Variables []string

	// RenderAs is the name of the desired rendering
	RenderAs string

	// Explain renders the provenance of the lookup instead of the value
	Explain bool

	// All looks up all of the keys and outputs the results as a map
	All bool
}

// varSplit splits on either ':' or '=' but not on '::', ':=', '=:' or '=='
var varSplit = regexp.MustCompile(`\A(.*?[^:=])[:=]([^:=].*)\z`)

// LookupAndRender performs a lookup using the given command options and
// arguments and renders the result on the given io.Writer in accordance with
// the RenderAs option. It returns true when a value was found or a default
// was supplied.
func LookupAndRender(r *Resolver, cfg api.Config, opts *CommandOptions, args []string, out io.Writer) bool {
	scope := createScope(opts)
	ro := &Options{Merge: opts.Merge, KnockoutPrefix: opts.KnockoutPrefix}
	if opts.Default != nil {
		ro.Default = parseCommandLineValue(*opts.Default)
	}

	if opts.All {
		response := vf.MutableMap()
		for _, key := range args {
			res := r.Resolve(key, scope, cfg, ro)
			if opts.Explain {
				RenderProvenance(res, out)
			}
			if res.Found || res.Value != nil {
				response.Put(key, res.Value)
			}
		}
		if opts.Explain {
			return response.Len() > 0
		}
		Render(response, renderName(opts.RenderAs), out)
		return response.Len() > 0
	}

	for _, key := range args {
		res := r.Resolve(key, scope, cfg, ro)
		if opts.Explain {
			RenderProvenance(res, out)
			return res.Found || res.Value != nil
		}
		if res.Found || res.Value != nil {
			Render(res.Value, renderName(opts.RenderAs), out)
			return true
		}
	}
	return false
}

func renderName(s string) RenderName {
	if s == `` {
		return YAML
	}
	return RenderName(s)
}

// parseCommandLineValue parses a literal command line value. A value that
// starts with a YAML collection or quote character is parsed as YAML, any
// other value is taken as a plain string.
func parseCommandLineValue(vs string) dgo.Value {
	vs = strings.TrimSpace(vs)
	for _, pfx := range []string{`{`, `[`, `"`, `'`} {
		if strings.HasPrefix(vs, pfx) {
			v, err := yaml.Unmarshal([]byte(vs))
			if err != nil {
				panic(fmt.Errorf(`unable to parse value '%s': %s`, vs, err.Error()))
			}
			return v
		}
	}
	return vf.String(vs)
}

func createScope(opts *CommandOptions) *api.Scope {
	return CreateScope(opts.FactPaths, opts.CatalogPaths, opts.Variables)
}

// CreateScope builds a Scope by loading the node's facts and the
// catalog-derived variables from the given YAML or JSON files. Literal
// key=value or key:value variables are added to the catalog variables, so
// they override data the same way code-defined values do.
func CreateScope(factPaths, catalogPaths, variables []string) *api.Scope {
	facts := vf.MutableMap()
	addVarPaths(factPaths, facts)

	var catalog dgo.Map
	if len(catalogPaths) > 0 || len(variables) > 0 {
		cm := vf.MutableMap()
		addVarPaths(catalogPaths, cm)
		for _, e := range variables {
			if m := varSplit.FindStringSubmatch(e); m != nil {
				cm.Put(strings.TrimSpace(m[1]), parseCommandLineValue(m[2]))
			} else {
				panic(fmt.Errorf(`unable to parse variable '%s'`, e))
			}
		}
		catalog = cm
	}
	return api.NewScope(facts, catalog, nil)
}

func addVarPaths(varPaths []string, m dgo.Map) {
	for _, vars := range varPaths {
		var bs []byte
		var err error
		if vars == `-` {
			bs, err = ioutil.ReadAll(os.Stdin)
		} else {
			bs, err = ioutil.ReadFile(vars)
		}
		if err == nil && len(bs) > 0 {
			var yv dgo.Value
			if yv, err = yaml.Unmarshal(bs); err == nil {
				if data, ok := yv.(dgo.Map); ok {
					m.PutAll(data)
				} else {
					err = fmt.Errorf(`file '%s' does not contain a YAML hash`, vars)
				}
			}
		}
		if err != nil {
			panic(err)
		}
	}
}
