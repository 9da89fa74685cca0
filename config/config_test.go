package config_test

import (
	"path/filepath"
	"testing"

	require "github.com/lyraproj/dgo/dgo_test"
	"github.com/lyraproj/dgo/vf"
	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/config"
)

func testConfig(t *testing.T) api.Config {
	t.Helper()
	return config.New(filepath.Join(`testdata`, `strata.yaml`))
}

func testScope() *api.Scope {
	return api.NewScope(vf.Map(`hostname`, `n1`, `environment`, `production`), nil, nil)
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)
	require.Equal(t, `testdata`, cfg.Root())
	require.Equal(t, filepath.Join(`testdata`, `strata.yaml`), cfg.Path())
	require.Equal(t, `data`, cfg.Defaults().DataDir())

	h := cfg.Hierarchy()
	require.Equal(t, 4, len(h))
	require.Equal(t, `Node`, h[0].Name())
	require.Equal(t, `Environment`, h[1].Name())
	require.Equal(t, `Globbed`, h[2].Name())
	require.Equal(t, `Common`, h[3].Name())
	require.Equal(t, `env_data`, h[1].DataDir())
}

func TestNew_missingFileYieldsDefault(t *testing.T) {
	cfg := config.New(filepath.Join(`testdata`, `nosuch`, `strata.yaml`))
	require.Equal(t, filepath.Join(`testdata`, `nosuch`), cfg.Root())
	require.Equal(t, ``, cfg.Path())
	h := cfg.Hierarchy()
	require.Equal(t, 1, len(h))
	require.Equal(t, `Common`, h[0].Name())
	require.Equal(t, 1, len(h[0].Locations()))
	require.Equal(t, `common.yaml`, h[0].Locations()[0].Original())
}

func TestNew_duplicateName(t *testing.T) {
	require.Panic(t, func() { config.New(filepath.Join(`testdata`, `duplicate.yaml`)) },
		`hierarchy name 'Common' defined more than once`)
}

func TestNew_multipleLocationKinds(t *testing.T) {
	require.Panic(t, func() { config.New(filepath.Join(`testdata`, `both.yaml`)) },
		`only one of path, paths, glob, globs can be defined in hierarchy 'Common'`)
}

func TestNew_noLocations(t *testing.T) {
	require.Panic(t, func() { config.New(filepath.Join(`testdata`, `none.yaml`)) },
		`one of path, paths, glob, globs must be defined in hierarchy 'Common'`)
}

func TestEntry_Resolve_path(t *testing.T) {
	cfg := testConfig(t)
	re := cfg.Hierarchy()[0].Resolve(testScope(), cfg.Defaults(), nil)
	ls := re.Locations()
	require.Equal(t, 1, len(ls))
	require.Equal(t, api.LcPath, ls[0].Kind())
	require.Equal(t, `nodes/%{facts.hostname}.yaml`, ls[0].Original())
	require.Equal(t, filepath.Join(`testdata`, `data`, `nodes`, `n1.yaml`), ls[0].Resolved())
	require.Equal(t, true, ls[0].Exists())
}

func TestEntry_Resolve_unresolvedTemplate(t *testing.T) {
	cfg := testConfig(t)
	re := cfg.Hierarchy()[0].Resolve(api.NewScope(nil, nil, nil), cfg.Defaults(), nil)
	ls := re.Locations()
	require.Equal(t, 1, len(ls))
	require.Equal(t, false, ls[0].Exists())
}

func TestEntry_Resolve_entryDataDir(t *testing.T) {
	cfg := testConfig(t)
	re := cfg.Hierarchy()[1].Resolve(testScope(), cfg.Defaults(), nil)
	ls := re.Locations()
	require.Equal(t, 2, len(ls))
	require.Equal(t, filepath.Join(`testdata`, `env_data`, `production.yaml`), ls[0].Resolved())
	require.Equal(t, filepath.Join(`testdata`, `env_data`, `stage.yaml`), ls[1].Resolved())
	require.Equal(t, true, ls[0].Exists())
	require.Equal(t, true, ls[1].Exists())
}

func TestEntry_Resolve_glob(t *testing.T) {
	cfg := testConfig(t)
	re := cfg.Hierarchy()[2].Resolve(testScope(), cfg.Defaults(), nil)
	ls := re.Locations()
	require.Equal(t, 2, len(ls))
	require.Equal(t, filepath.Join(`testdata`, `data`, `globs`, `a.yaml`), ls[0].Resolved())
	require.Equal(t, filepath.Join(`testdata`, `data`, `globs`, `b.yaml`), ls[1].Resolved())
	require.Equal(t, true, ls[0].Exists())
}

func TestEntry_Resolve_recordsPathVariables(t *testing.T) {
	cfg := testConfig(t)
	vars := vf.MutableMap()
	cfg.Hierarchy()[0].Resolve(testScope(), cfg.Defaults(), vars)
	require.Equal(t, `n1`, vars.Get(`facts.hostname`))
}

func TestGlob_Resolved(t *testing.T) {
	require.Panic(t, func() { config.NewGlob(`globs/*.yaml`).Resolved() }, `resolved requested on a glob`)
}
