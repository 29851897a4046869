package cmd

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stored connections",
	Long:  `Manage the logical connections stored in ~/.dwpipe/connections.yaml.`,
}

func init() {
	rootCmd.AddCommand(configCmd)
	initConfigConn()
}
