package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gallerops/dwpipe/actions"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision warehouse or demo schemas",
	Long:  `Provision the warehouse star schema on a target connection, or a demo gallery source schema to experiment with.`,
}

func init() {
	rootCmd.AddCommand(createCmd)
	initCreateWarehouse()
	initCreateDemo()
}

var createWarehouseCfg = actions.CreateWarehouseConfig{}
var createWarehouseCmd = &cobra.Command{
	Use:   "warehouse",
	Short: "Create the star-schema tables on the target connection",
	Long: `Create the dimension, fact and run-log tables on the target connection.

Existing tables are left alone, so this is safe to run against a partially
provisioned warehouse.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		createWarehouseCfg.Connections = getConnectionHandler()
		createWarehouseCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunCreateWarehouse(&createWarehouseCfg)
	},
}

func initCreateWarehouse() {
	createCmd.AddCommand(createWarehouseCmd)
	createWarehouseCmd.Flags().SortFlags = false
	switches.addFlag(createWarehouseCmd, &createWarehouseCfg.TargetName, "target", "", true)
	switches.addFlag(createWarehouseCmd, &createWarehouseCfg.LogLevel, "log-level", "warn", false)
}

var createDemoCfg = actions.CreateDemoConfig{}
var createDemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Create a demo gallery source schema",
	Long:  `Create the operational gallery tables on the source connection, optionally seeded with sample records.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		createDemoCfg.Connections = getConnectionHandler()
		createDemoCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunCreateDemo(&createDemoCfg)
	},
}

func initCreateDemo() {
	createCmd.AddCommand(createDemoCmd)
	createDemoCmd.Flags().SortFlags = false
	switches.addFlag(createDemoCmd, &createDemoCfg.SourceName, "source", "", true)
	switches.addFlag(createDemoCmd, &createDemoCfg.WithData, "with-data", "true", false)
	switches.addFlag(createDemoCmd, &createDemoCfg.LogLevel, "log-level", "warn", false)
}
