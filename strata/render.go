package strata

import (
	"fmt"
	"io"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/streamer"
	"github.com/lyraproj/dgo/util"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/dgoyaml/yaml"
	"github.com/strataproj/strata/api"
)

// RenderName is the name of the option value that describes how to render
// output
type RenderName string

const (
	// YAML render output in YAML
	YAML = RenderName(`yaml`)
	// JSON render output in JSON
	JSON = RenderName(`json`)
	// Text render output as plain text
	Text = RenderName(`s`)
)

// Render renders a value on a writer using a specified RenderName
func Render(value dgo.Value, renderAs RenderName, out io.Writer) {
	switch renderAs {
	case JSON:
		if value == nil || value.Equals(vf.Nil) {
			util.WriteString(out, "null\n")
		} else {
			opts := streamer.DefaultOptions()
			opts.DedupLevel = streamer.NoDedup
			streamer.New(nil, opts).Stream(value, streamer.JSON(out))
			util.WriteByte(out, '\n')
		}
	case YAML:
		if value == nil || value.Equals(vf.Nil) {
			util.WriteString(out, "\n")
		} else {
			bs, err := yaml.Marshal(value)
			if err != nil {
				panic(err)
			}
			util.WriteString(out, string(bs))
		}
	case Text:
		util.Fprintln(out, value)
	default:
		panic(fmt.Errorf(`unknown rendering '%s'`, renderAs))
	}
}

// RenderProvenance writes a human readable report of where a resolution's
// value came from: the method used, every contributing file with its line
// number and hierarchy level, and the variables that were substituted.
func RenderProvenance(res *api.Resolution, out io.Writer) {
	if !res.Found {
		fmt.Fprintf(out, "key %q was not found in any hierarchy level\n", res.Key)
		if res.Value != nil {
			fmt.Fprintf(out, "  using default: %s\n", res.Value)
		}
		return
	}
	fmt.Fprintf(out, "key %q resolved using method %q\n", res.Key, res.Method)
	for i := range res.Locations {
		l := &res.Locations[i]
		if l.Line > 0 {
			fmt.Fprintf(out, "  %d. %s:%d in level %q -> %s\n", i+1, l.Path, l.Line, l.Level, l.Value)
		} else {
			fmt.Fprintf(out, "  %d. %s in level %q -> %s\n", i+1, l.Path, l.Level, l.Value)
		}
	}
	if res.Variables != nil && res.Variables.Len() > 0 {
		fmt.Fprintf(out, "  interpolated variables:\n")
		res.Variables.EachEntry(func(e dgo.MapEntry) {
			fmt.Fprintf(out, "    %s = %s\n", e.Key(), e.Value())
		})
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
}
