// Package cli contains the strata command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/strataproj/strata/config"
	"github.com/strataproj/strata/server"
	"github.com/strataproj/strata/strata"
)

// OptString is a string option that can differentiate between an empty
// string and no value
type OptString struct {
	value *string
}

// Type of option
func (s *OptString) Type() string {
	return "stringpointer"
}

// String value
func (s *OptString) String() string {
	if s == nil || s.value == nil {
		return ``
	}
	return *s.value
}

// Set sets the string value
func (s *OptString) Set(v string) error {
	s.value = &v
	return nil
}

// StringPointer returns the internal value pointer
func (s *OptString) StringPointer() *string {
	return s.value
}

var (
	cmdOpts    strata.CommandOptions
	dflt       OptString
	logLevel   string
	configPath string
)

// NewCommand creates the strata command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   `strata`,
		Short: `strata - hierarchical configuration resolution`,
	}
	cmd.AddCommand(newLookupCommand())
	cmd.AddCommand(server.NewCommand())
	return cmd
}

func newLookupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   `lookup <key> [<key> ...]`,
		Short: `Lookup - Resolve keys against a hierarchy of data sources`,
		Long: `Lookup - Resolve keys against a hierarchy of data sources.
    Walks the configured hierarchy top to bottom, merges the values found
    for the key, and renders the result with its provenance on request.`,
		RunE: cmdLookup,
		Args: cobra.MinimumNArgs(1)}

	flags := cmd.Flags()
	flags.StringVar(&logLevel, `loglevel`, `error`,
		`error/warn/info/debug`)
	flags.StringVar(&configPath, `config`, ``,
		`path to the strata config file. Overrides <current directory>/`+config.FileName)
	flags.StringVar(&cmdOpts.Merge, `merge`, ``,
		`first/unique/hash/deep. Overrides any lookup_options found in data`)
	flags.StringVar(&cmdOpts.KnockoutPrefix, `knockout-prefix`, ``,
		`prefix that removes elements and keys from a merged result`)
	flags.Var(&dflt, `default`,
		`a value to return when no data source defines the key`)
	flags.StringVar(&cmdOpts.RenderAs, `render-as`, ``,
		`s/json/yaml: Specify the output format of the results; s means plain text`)
	flags.BoolVar(&cmdOpts.Explain, `explain`, false,
		`Explain which files, levels, and lines produced the final value`)
	flags.StringArrayVar(&cmdOpts.FactPaths, `facts`, nil,
		`path to a YAML or JSON file that contains the node's facts`)
	flags.StringArrayVar(&cmdOpts.CatalogPaths, `catalog`, nil,
		`path to a YAML or JSON file that contains catalog-derived variables`)
	flags.StringArrayVar(&cmdOpts.Variables, `var`, nil,
		`a key:value or key=value added to the catalog variables for this lookup`)
	flags.BoolVar(&cmdOpts.All, `all`, false,
		`lookup all of the keys and output the results as a map`)
	return cmd
}

func cmdLookup(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmdOpts.Default = dflt.StringPointer()
	hclog.DefaultOptions = &hclog.LoggerOptions{
		Name:  `lookup`,
		Level: hclog.LevelFromString(logLevel),
	}

	return runLookup(cmd, args)
}

func runLookup(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var ok bool
			if err, ok = r.(error); !ok {
				err = fmt.Errorf(`%v`, r)
			}
		}
	}()
	cfg := config.New(effectiveConfigPath())
	strata.LookupAndRender(strata.New(hclog.Default()), cfg, &cmdOpts, args, cmd.OutOrStdout())
	return nil
}

func effectiveConfigPath() string {
	if configPath != `` {
		return configPath
	}
	fileName := config.FileName
	if cf, ok := os.LookupEnv(`STRATA_CONFIGFILE`); ok {
		fileName = cf
	}
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return filepath.Join(wd, fileName)
}
