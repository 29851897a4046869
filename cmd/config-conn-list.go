package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gallerops/dwpipe/actions"
	"github.com/gallerops/dwpipe/config"
)

var configConnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connections",
	Long:  `List the stored connections with redacted credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return actions.RunConnectionList(&actions.ConnectionConfig{ConfigFile: config.Connections})
	},
}

func initConnList() {
	configConnCmd.AddCommand(configConnListCmd)
}
