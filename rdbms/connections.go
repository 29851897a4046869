package rdbms

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/xo/dburl"
	_ "modernc.org/sqlite"

	"github.com/gallerops/dwpipe/constants"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

// OpenDbConnection opens a database connection using the supplied ConnectionDetails struct in c.
func OpenDbConnection(log logger.Logger, c shared.ConnectionDetails) (db shared.Connector, err error) {
	log.Debug("opening connection type ", c.Type, " with logicalName ", c.LogicalName) // don't log password details in c.Data!
	switch c.Type {
	case constants.ConnectionTypeMysql:
		db, err = newMysqlConnection(log, shared.GetDsnConnectionDetails(&c))
	case constants.ConnectionTypeSqlite:
		db, err = newSqliteConnection(log, shared.GetDsnConnectionDetails(&c))
	default: // else we have an unsupported database...
		err = fmt.Errorf("unsupported database type, %q", c.Type)
	}
	return
}

// OpenDbConnectionFromDsn opens a connection from a raw DSN, deriving the
// connection type from the DSN scheme.
func OpenDbConnectionFromDsn(log logger.Logger, dsn string) (shared.Connector, error) {
	d := &shared.DsnConnectionDetails{Dsn: dsn}
	scheme, err := d.GetScheme()
	if err != nil {
		return nil, err
	}
	switch scheme {
	case constants.ConnectionTypeMysql:
		return newMysqlConnection(log, d)
	case constants.ConnectionTypeSqlite, "sqlite3", "file":
		return newSqliteConnection(log, d)
	default:
		return nil, fmt.Errorf("unsupported DSN scheme, %q", scheme)
	}
}

func newMysqlConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	log.Info("Opening MySQL database connection: ", d)
	u, err := dburl.Parse(d.Dsn)
	if err != nil { // if the DSN could not be parsed...
		return nil, fmt.Errorf("error parsing DSN %q: %w", d.Dsn, err)
	}
	conn := &shared.SqlConnection{
		Dml:    &shared.DmlGeneratorTxt{},
		DbType: constants.ConnectionTypeMysql,
	}
	conn.DbSql, err = sql.Open("mysql", u.DSN)
	if err != nil {
		return nil, err
	}
	// Test the connection.
	if err = conn.DbSql.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	log.Info("Successful connection to: ", d)
	return conn, nil
}

// newSqliteConnection opens a SQLite database file via the pure-Go driver.
// The DSN may be supplied as 'sqlite:/path/to/file' or a bare file path.
func newSqliteConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	path := d.Dsn
	for _, prefix := range []string{"sqlite://", "sqlite:", "sqlite3://", "sqlite3:", "file:"} {
		if strings.HasPrefix(path, prefix) {
			path = strings.TrimPrefix(path, prefix)
			break
		}
	}
	conn := &shared.SqlConnection{
		Dml:    &shared.DmlGeneratorTxt{},
		DbType: constants.ConnectionTypeSqlite,
	}
	var err error
	conn.DbSql, err = sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; cap the pool so concurrent stages queue
	// instead of failing with a locked database.
	conn.DbSql.SetMaxOpenConns(1)
	if err = conn.DbSql.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	log.Debug("Successful SQLite connection to ", path)
	return conn, nil
}
