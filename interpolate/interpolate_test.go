package interpolate_test

import (
	"testing"

	require "github.com/lyraproj/dgo/dgo_test"
	"github.com/lyraproj/dgo/vf"
	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/interpolate"
)

func testScope() *api.Scope {
	return api.NewScope(
		vf.Map(
			`port`, 80,
			`networking`, vf.Map(`fqdn`, `n1.example.com`),
			`trusted`, vf.Map(`certname`, `n1`),
			`server_facts`, vf.Map(`environment`, `production`)),
		vf.Map(
			`port`, 8080,
			`role`, `web`,
			`svc`, vf.Map(`host`, `h1`)),
		nil)
}

func TestString_catalogWins(t *testing.T) {
	v, changed := interpolate.String(`%{port}`, testScope(), nil)
	require.Equal(t, true, changed)
	require.Equal(t, `8080`, v)
}

func TestString_factsNamespace(t *testing.T) {
	v, _ := interpolate.String(`%{facts.port}`, testScope(), nil)
	require.Equal(t, `80`, v)
}

func TestString_topScopeNamespace(t *testing.T) {
	v, _ := interpolate.String(`%{::port}`, testScope(), nil)
	require.Equal(t, `80`, v)
}

func TestString_trusted(t *testing.T) {
	v, _ := interpolate.String(`%{trusted.certname}`, testScope(), nil)
	require.Equal(t, `n1`, v)
}

func TestString_serverFacts(t *testing.T) {
	v, _ := interpolate.String(`%{server_facts.environment}`, testScope(), nil)
	require.Equal(t, `production`, v)
}

func TestString_dottedFact(t *testing.T) {
	v, _ := interpolate.String(`nodes/%{facts.networking.fqdn}.yaml`, testScope(), nil)
	require.Equal(t, `nodes/n1.example.com.yaml`, v)
}

func TestString_dottedCatalog(t *testing.T) {
	v, _ := interpolate.String(`%{svc.host}`, testScope(), nil)
	require.Equal(t, `h1`, v)
}

func TestString_exactCatalogNameWins(t *testing.T) {
	scope := api.NewScope(nil, vf.Map(`a.b`, `exact`, `a`, vf.Map(`b`, `nested`)), nil)
	v, _ := interpolate.String(`%{a.b}`, scope, nil)
	require.Equal(t, `exact`, v)
}

func TestString_bareNameFallsBackToFacts(t *testing.T) {
	v, _ := interpolate.String(`%{networking.fqdn}`, testScope(), nil)
	require.Equal(t, `n1.example.com`, v)
}

func TestString_unresolvedLeftVerbatim(t *testing.T) {
	v, changed := interpolate.String(`ask %{nosuch.variable}`, testScope(), nil)
	require.Equal(t, false, changed)
	require.Equal(t, `ask %{nosuch.variable}`, v)
}

func TestString_emptyInterpolation(t *testing.T) {
	for _, s := range []string{`Start%{}End`, `Start%{::}End`, `Start%{ }End`, `Start%{''}End`, `Start%{""}End`} {
		v, changed := interpolate.String(s, testScope(), nil)
		require.Equal(t, true, changed)
		require.Equal(t, `StartEnd`, v)
	}
}

func TestString_spaceInExpression(t *testing.T) {
	v, _ := interpolate.String(`%{ role }`, testScope(), nil)
	require.Equal(t, `web`, v)
}

func TestString_multiple(t *testing.T) {
	v, _ := interpolate.String(`%{role}:%{port}`, testScope(), nil)
	require.Equal(t, `web:8080`, v)
}

func TestString_noInterpolation(t *testing.T) {
	v, changed := interpolate.String(`plain`, testScope(), nil)
	require.Equal(t, false, changed)
	require.Equal(t, `plain`, v)
}

func TestString_recordsVariables(t *testing.T) {
	vars := vf.MutableMap()
	_, _ = interpolate.String(`%{role} on %{facts.port}`, testScope(), vars)
	require.Equal(t, `web`, vars.Get(`role`))
	require.Equal(t, 80, vars.Get(`facts.port`))
}

func TestValue_array(t *testing.T) {
	v := interpolate.Value(vf.Values(`%{role}`, `static`), testScope(), nil)
	require.Equal(t, vf.Values(`web`, `static`), v)
}

func TestValue_mapValuesOnly(t *testing.T) {
	v := interpolate.Value(vf.Map(`%{role}`, `%{role}`), testScope(), nil)
	require.Equal(t, vf.Map(`%{role}`, `web`), v)
}

func TestValue_nested(t *testing.T) {
	v := interpolate.Value(vf.Map(`servers`, vf.Values(vf.Map(`host`, `%{svc.host}`))), testScope(), nil)
	require.Equal(t, vf.Map(`servers`, vf.Values(vf.Map(`host`, `h1`))), v)
}

func TestValue_passThrough(t *testing.T) {
	v := vf.Integer(42)
	require.Equal(t, v, interpolate.Value(v, testScope(), nil))
}

func TestResolve_badReference(t *testing.T) {
	require.Nil(t, interpolate.Resolve(`a..b`, testScope()))
}
