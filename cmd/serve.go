package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gallerops/dwpipe/actions"
	"github.com/gallerops/dwpipe/constants"
)

var serveCfg = actions.WebServerConfig{}
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP server exposing reports, validation and sync",
	Long: `Start an HTTP server against a source and target connection pair.

Endpoints:
  GET  /health
  GET  /reports/exhibition-value
  GET  /reports/top-artists?limit=N
  GET  /reports/monthly-activity?year=YYYY
  GET  /validate
  POST /sync?mode=full|incremental
  GET  /stop

Report results are cached for the configured TTL; a sync through this server
invalidates the cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serveCfg.Connections = getConnectionHandler()
		serveCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunWebServer(&serveCfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	switches.addFlag(serveCmd, &serveCfg.SourceName, "source", "", true)
	switches.addFlag(serveCmd, &serveCfg.TargetName, "target", "", true)
	switches.addFlag(serveCmd, &serveCfg.Addr, "addr", "", false)
	switches.addFlag(serveCmd, &serveCfg.Port, "port", strconv.Itoa(constants.DefaultHTTPPort), false)
	switches.addFlag(serveCmd, &serveCfg.CacheTTLMinutes, "cache-ttl", strconv.Itoa(constants.DefaultCacheTTLMinutes), false)
	switches.addFlag(serveCmd, &serveCfg.LogLevel, "log-level", "info", false)
}
