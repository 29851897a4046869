package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gallerops/dwpipe/actions"
	"github.com/gallerops/dwpipe/config"
)

var connRemoveCfg = actions.ConnectionConfig{}
var configConnRemoveCmd = &cobra.Command{
	Use:     "remove",
	Short:   "Remove a connection",
	Long:    `Remove a stored connection by name.`,
	Aliases: []string{"rm"},
	RunE: func(cmd *cobra.Command, args []string) error {
		connRemoveCfg.ConfigFile = config.Connections
		return actions.RunConnectionRemove(&connRemoveCfg)
	},
}

func initConnRemove() {
	configConnCmd.AddCommand(configConnRemoveCmd)
	configConnRemoveCmd.Flags().SortFlags = false
	switches.addFlag(configConnRemoveCmd, &connRemoveCfg.LogicalName, "connection-name", "", true)
}
