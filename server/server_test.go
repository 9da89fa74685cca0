package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo"
	"github.com/stretchr/testify/require"

	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/config"
	"github.com/strataproj/strata/strata"
)

func resolve(t *testing.T, key string, query string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	cfg := config.New(filepath.Join(`testdata`, `strata.yaml`))
	resolver := strata.New(nil)
	scope := api.NewScope(nil, nil, nil)

	e := echo.New()
	target := `/resolve/` + key
	if query != `` {
		target += `?` + query
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(`key`)
	c.SetParamValues(key)
	return rec, doResolve(c, resolver, cfg, scope)
}

func TestResolve(t *testing.T) {
	rec, err := resolve(t, `port`, ``)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `"key":"port"`)
	require.Contains(t, body, `"found":true`)
	require.Contains(t, body, `"value":80`)
	require.Contains(t, body, `"hierarchy_level":"Common"`)
}

func TestResolve_mergeParam(t *testing.T) {
	rec, err := resolve(t, `users`, `merge=unique`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"merge":"unique"`)
}

func TestResolve_notFound(t *testing.T) {
	rec, err := resolve(t, `absent`, ``)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"key":"absent"`)
}

func TestResolve_badRequest(t *testing.T) {
	rec, err := resolve(t, `a..b`, ``)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `empty segment`)
}

func TestResolve_badMerge(t *testing.T) {
	rec, err := resolve(t, `port`, `merge=bogus`)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `unknown merge method`)
}
