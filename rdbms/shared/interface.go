package shared

import (
	"context"
	"database/sql"
)

// Connector abstracts all access to Go SQL functionality.
type Connector interface {
	// Go SQL entry points:
	Begin() (Transacter, error)
	Exec(query string, args ...interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	Close()
	// Pipeline functionality:
	GetType() string
	GetDmlGenerator() DmlGenerator
}

type Transacter interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Commit() error
	Rollback() error
}

// DmlGenerator builds parameterized DML statements for a target table so that
// field mappings stay centrally reviewable and no values are ever concatenated
// into SQL text.
type DmlGenerator interface {
	NewInsertGenerator(cfg *SqlStatementGeneratorConfig) SqlStmtGenerator
	NewUpdateGenerator(cfg *SqlStatementGeneratorConfig) SqlStmtGenerator
	NewDeleteGenerator(cfg *SqlStatementGeneratorConfig) SqlStmtGenerator
	NewSelectGenerator(cfg *SqlStatementGeneratorConfig) SqlStmtGenerator
}

// SqlStmtGenerator returns a complete SQL statement with bind placeholders.
type SqlStmtGenerator interface {
	GetStatement() string
}

type ConnectionGetter interface {
	LoadConnection(name string) (ConnectionDetails, error)
}
