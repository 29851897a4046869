package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gallerops/dwpipe/actions"
	"github.com/gallerops/dwpipe/config"
	"github.com/gallerops/dwpipe/constants"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

var configConnAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a connection",
	Long:  `Add a logical database connection for use with the sync, validate and serve actions.`,
}

func initConnAdd() {
	configConnCmd.AddCommand(configConnAddCmd)
	initConnAddMysql()
	initConnAddSqlite()
}

var mysqlConnDetails = shared.DsnConnectionDetails{}
var connAddMysqlCfg = actions.ConnectionConfig{
	Type:        constants.ConnectionTypeMysql,
	ConnDetails: &mysqlConnDetails,
}
var configConnAddMysqlCmd = &cobra.Command{
	Use:   "mysql",
	Short: "Add a MySQL connection",
	Long: `Add a MySQL connection using a DSN of the form:

  mysql://<user>:<password>@<host>[:<port>]/<database>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		connAddMysqlCfg.ConfigFile = config.Connections
		return actions.RunConnectionAdd(&connAddMysqlCfg)
	},
}

func initConnAddMysql() {
	configConnAddCmd.AddCommand(configConnAddMysqlCmd)
	configConnAddMysqlCmd.Flags().SortFlags = false
	switches.addFlag(configConnAddMysqlCmd, &connAddMysqlCfg.LogicalName, "connection-name", "", true)
	switches.addFlag(configConnAddMysqlCmd, &mysqlConnDetails.Dsn, "dsn", "", true)
	switches.addFlag(configConnAddMysqlCmd, &connAddMysqlCfg.Force, "force-connection", "", false)
}

var sqliteConnDetails = shared.DsnConnectionDetails{}
var connAddSqliteCfg = actions.ConnectionConfig{
	Type:        constants.ConnectionTypeSqlite,
	ConnDetails: &sqliteConnDetails,
}
var configConnAddSqliteCmd = &cobra.Command{
	Use:   "sqlite",
	Short: "Add a SQLite connection",
	Long: `Add a SQLite connection using a DSN of the form:

  sqlite:/path/to/database.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		connAddSqliteCfg.ConfigFile = config.Connections
		return actions.RunConnectionAdd(&connAddSqliteCfg)
	},
}

func initConnAddSqlite() {
	configConnAddCmd.AddCommand(configConnAddSqliteCmd)
	configConnAddSqliteCmd.Flags().SortFlags = false
	switches.addFlag(configConnAddSqliteCmd, &connAddSqliteCfg.LogicalName, "connection-name", "", true)
	switches.addFlag(configConnAddSqliteCmd, &sqliteConnDetails.Dsn, "dsn", "", true)
	switches.addFlag(configConnAddSqliteCmd, &connAddSqliteCfg.Force, "force-connection", "", false)
}
