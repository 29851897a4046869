package cmd

import (
	"github.com/spf13/cobra"
)

var configConnCmd = &cobra.Command{
	Use:   "connections",
	Short: "Add, list and remove database connections",
	Long: `Add, list and remove logical database connections.

A connection maps a name to a DSN so the sync, validate and serve actions can
refer to databases by name. The DSN of connection NAME can be overridden at
runtime with the environment variable DW_<NAME>_DSN.`,
	Aliases: []string{"conn"},
}

func initConfigConn() {
	configCmd.AddCommand(configConnCmd)
	initConnAdd()
	initConnList()
	initConnRemove()
}
