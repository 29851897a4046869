package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gallerops/dwpipe/actions"
)

var validateCfg = actions.ValidateConfig{}
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check referential integrity between source and warehouse",
	Long: `Run read-only integrity checks across the gallery database and the warehouse.

- Current dimension rows are checked against the source for orphans.
- Dimension and fact foreign keys are checked for dangling references.
- The report is printed as JSON; a non-zero exit code means the warehouse
  has issues beyond warnings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		validateCfg.Connections = getConnectionHandler()
		validateCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunValidate(&validateCfg)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().SortFlags = false
	switches.addFlag(validateCmd, &validateCfg.SourceName, "source", "", true)
	switches.addFlag(validateCmd, &validateCfg.TargetName, "target", "", true)
	switches.addFlag(validateCmd, &validateCfg.LogLevel, "log-level", "warn", false)
}
