package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gallerops/dwpipe/actions"
	"github.com/gallerops/dwpipe/constants"
)

var scheduleCfg = actions.ScheduleConfig{}
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run incremental syncs on a fixed interval",
	Long: `Run incremental syncs on a fixed interval until interrupted.

The first sync fires immediately. Runs never overlap: if a sync is still going
when the next interval elapses, the new run is skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scheduleCfg.Connections = getConnectionHandler()
		scheduleCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunSchedule(&scheduleCfg)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().SortFlags = false
	switches.addFlag(scheduleCmd, &scheduleCfg.SourceName, "source", "", true)
	switches.addFlag(scheduleCmd, &scheduleCfg.TargetName, "target", "", true)
	switches.addFlag(scheduleCmd, &scheduleCfg.IntervalMinutes, "repeat", strconv.Itoa(constants.DefaultScheduleMinutes), false)
	switches.addFlag(scheduleCmd, &scheduleCfg.LogLevel, "log-level", "info", false)
}
