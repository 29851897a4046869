package rdbms

import (
	"fmt"

	"github.com/gallerops/dwpipe/constants"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

// Capabilities records which target tables exist, resolved once per run so we
// don't repeat catalog queries per call.
type Capabilities map[string]bool

// HasTable returns true if the named table was present when the capabilities
// were resolved.
func (c Capabilities) HasTable(table string) bool {
	return c[table]
}

// ProbeTables answers which of the supplied tables exist in the target database.
// A partially provisioned warehouse is tolerated: missing tables come back false
// so the caller can skip those stages with a warning instead of aborting.
func ProbeTables(log logger.Logger, db shared.Connector, tables []string) Capabilities {
	caps := make(Capabilities, len(tables))
	for _, t := range tables {
		caps[t] = TableExists(log, db, t)
	}
	return caps
}

// TableExists checks the database catalog for the supplied table name.
// If the catalog query itself fails we fall back to a probe select that is
// expected to fail harmlessly when the table is absent.
func TableExists(log logger.Logger, db shared.Connector, table string) bool {
	var catalogSql string
	switch db.GetType() {
	case constants.ConnectionTypeSqlite:
		catalogSql = "select count(*) from sqlite_master where type = 'table' and name = ?"
	case constants.ConnectionTypeMysql:
		catalogSql = "select count(*) from information_schema.tables where table_schema = database() and table_name = ?"
	}
	if catalogSql != "" { // if the database type has a known catalog...
		var count int
		err := db.QueryRow(catalogSql, table).Scan(&count)
		if err == nil {
			return count > 0
		}
		log.Warn("catalog query failed for table ", table, ", falling back to probe select: ", err)
	}
	// Probe select. Table names come from our fixed warehouse table set, never
	// from user input.
	rows, err := db.Query(fmt.Sprintf("select 1 from %v where 1=0", table))
	if err != nil { // if the probe failed then the table is absent...
		return false
	}
	_ = rows.Close()
	return true
}
