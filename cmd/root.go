package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gallerops/dwpipe/actions"
	"github.com/gallerops/dwpipe/config"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2026-01-02T03:04+0000"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use: "dwpipe",
	Long: `
dwpipe keeps a gallery-management data warehouse in step with its operational database.

Use the sync actions to propagate dimensions and facts in full or incremental mode,
validate to check referential integrity between the two schemas, and serve to expose
reports and sync over a RESTful API. Connections are stored with the config command
and can be overridden per-environment with DW_<NAME>_DSN variables.`,
}

func init() {
	// General setup.
	cobra.EnableCommandSorting = false
	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// getConnectionHandler returns the store of logical connections.
func getConnectionHandler() actions.ConnectionHandler {
	return config.Connections
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Execute() prints the error.
		os.Exit(1)
	}
}
