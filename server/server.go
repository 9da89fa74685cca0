// Package server exposes the resolver over a small REST surface. It responds
// to key lookups under the /resolve endpoint.
package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo"
	"github.com/spf13/cobra"
	"github.com/strataproj/strata/api"
	"github.com/strataproj/strata/config"
	"github.com/strataproj/strata/strata"
)

var (
	logLevel     string
	configPath   string
	factPaths    []string
	catalogPaths []string
	addr         string
	port         int
)

// NewCommand creates the strata server command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   `server`,
		Short: `Server - Start a strata REST server`,
		Long: `Server - Start a REST server that resolves keys against a hierarchy of
  data sources. Responds to key lookups under the /resolve endpoint`,
		RunE: startServer,
		Args: cobra.NoArgs}

	flags := cmd.Flags()
	flags.StringVar(&logLevel, `loglevel`, `error`, `error/warn/info/debug`)
	flags.StringVar(&configPath, `config`, config.FileName,
		`path to the strata config file`)
	flags.StringArrayVar(&factPaths, `facts`, nil,
		`path to a YAML or JSON file that contains the node's facts`)
	flags.StringArrayVar(&catalogPaths, `catalog`, nil,
		`path to a YAML or JSON file that contains catalog-derived variables`)
	flags.StringVar(&addr, `addr`, ``, `ip address to listen on`)
	flags.IntVar(&port, `port`, 8080, `port number to listen to`)
	return cmd
}

func startServer(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	hclog.DefaultOptions = &hclog.LoggerOptions{
		Name:  `server`,
		Level: hclog.LevelFromString(logLevel),
	}

	cfg := config.New(configPath)
	resolver := strata.New(hclog.Default())
	scope := strata.CreateScope(factPaths, catalogPaths, nil)

	e := echo.New()
	e.Logger.SetOutput(cmd.OutOrStdout())
	e.GET(`/resolve/:key`, func(c echo.Context) error {
		return doResolve(c, resolver, cfg, scope)
	})
	e.POST(`/flush`, func(c echo.Context) error {
		resolver.Flush()
		return c.NoContent(http.StatusNoContent)
	})
	return e.Start(addr + `:` + strconv.Itoa(port))
}

func doResolve(c echo.Context, r *strata.Resolver, cfg api.Config, scope *api.Scope) error {
	ro := &strata.Options{
		Merge:          c.QueryParam(`merge`),
		KnockoutPrefix: c.QueryParam(`knockout_prefix`),
	}
	res, err := r.TryResolve(c.Param(`key`), scope, cfg, ro)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{`message`: err.Error()})
	}
	if !res.Found {
		return c.JSON(http.StatusNotFound, map[string]string{`message`: `not found`, `key`: res.Key})
	}
	buf := new(bytes.Buffer)
	strata.Render(res.ToMap(), strata.JSON, buf)
	return c.JSONBlob(http.StatusOK, buf.Bytes())
}
