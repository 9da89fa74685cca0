package datafile_test

import (
	"path/filepath"
	"testing"

	require "github.com/lyraproj/dgo/dgo_test"
	"github.com/lyraproj/dgo/vf"
	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/datafile"
)

func sample() string {
	return filepath.Join(`testdata`, `sample.yaml`)
}

func TestValue_flatKey(t *testing.T) {
	v, ok := datafile.New(nil).Value(sample(), api.NewKey(`profile::nginx::port`))
	require.Equal(t, true, ok)
	require.Equal(t, 8080, v)
}

func TestValue_dotted(t *testing.T) {
	v, ok := datafile.New(nil).Value(sample(), api.NewKey(`server.host`))
	require.Equal(t, true, ok)
	require.Equal(t, `example.com`, v)
}

func TestValue_dottedIndex(t *testing.T) {
	v, ok := datafile.New(nil).Value(sample(), api.NewKey(`server.ports.1`))
	require.Equal(t, true, ok)
	require.Equal(t, 443, v)
}

func TestValue_exactBeforeDig(t *testing.T) {
	// a top level key containing dots matches atomically before any
	// segment wise descent is attempted
	v, ok := datafile.New(nil).Value(sample(), api.NewKey(`dotted.key`))
	require.Equal(t, true, ok)
	require.Equal(t, `atomic`, v)
}

func TestValue_root(t *testing.T) {
	v, ok := datafile.New(nil).Value(sample(), api.NewKey(`server`))
	require.Equal(t, true, ok)
	require.Equal(t, vf.Map(`host`, `example.com`, `ports`, vf.Values(80, 443)), v)
}

func TestValue_missingKey(t *testing.T) {
	_, ok := datafile.New(nil).Value(sample(), api.NewKey(`absent`))
	require.Equal(t, false, ok)
}

func TestValue_missingSubKey(t *testing.T) {
	_, ok := datafile.New(nil).Value(sample(), api.NewKey(`server.absent`))
	require.Equal(t, false, ok)
}

func TestValue_missingFile(t *testing.T) {
	_, ok := datafile.New(nil).Value(filepath.Join(`testdata`, `nosuch.yaml`), api.NewKey(`a`))
	require.Equal(t, false, ok)
}

func TestValue_malformedFile(t *testing.T) {
	_, ok := datafile.New(nil).Value(filepath.Join(`testdata`, `malformed.yaml`), api.NewKey(`a`))
	require.Equal(t, false, ok)
}

func TestValue_nonHashFile(t *testing.T) {
	_, ok := datafile.New(nil).Value(filepath.Join(`testdata`, `list.yaml`), api.NewKey(`a`))
	require.Equal(t, false, ok)
}

func TestLookupOptions(t *testing.T) {
	lo := datafile.New(nil).LookupOptions(sample())
	require.Equal(t, vf.Map(`users`, vf.Map(`merge`, `unique`)), lo)
}

func TestLookupOptions_absent(t *testing.T) {
	require.Nil(t, datafile.New(nil).LookupOptions(filepath.Join(`testdata`, `list.yaml`)))
}

func TestLineOf(t *testing.T) {
	a := datafile.New(nil)
	require.Equal(t, 1, a.LineOf(sample(), api.NewKey(`profile::nginx::port`)))
	require.Equal(t, 2, a.LineOf(sample(), api.NewKey(`server`)))
	require.Equal(t, 3, a.LineOf(sample(), api.NewKey(`server.host`)))
}

func TestLineOf_missing(t *testing.T) {
	a := datafile.New(nil)
	require.Equal(t, 0, a.LineOf(sample(), api.NewKey(`absent`)))
	require.Equal(t, 0, a.LineOf(filepath.Join(`testdata`, `nosuch.yaml`), api.NewKey(`a`)))
}

func TestFlush(t *testing.T) {
	a := datafile.New(nil)
	_, ok := a.Value(sample(), api.NewKey(`server.host`))
	require.Equal(t, true, ok)
	a.Flush()
	v, ok := a.Value(sample(), api.NewKey(`server.host`))
	require.Equal(t, true, ok)
	require.Equal(t, `example.com`, v)
}
