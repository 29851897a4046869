package shared

import (
	"context"
	"database/sql"
)

// SqlConnection implements Connector over the native Go SQL library.
type SqlConnection struct {
	DbSql  *sql.DB
	Dml    DmlGenerator
	DbType string
}

func (c *SqlConnection) Begin() (Transacter, error) {
	tx, err := c.DbSql.Begin()
	if err != nil {
		return nil, err
	}
	return &SqlTransaction{tx: tx}, nil
}

func (c *SqlConnection) Exec(query string, args ...interface{}) (sql.Result, error) {
	return c.DbSql.Exec(query, args...)
}

func (c *SqlConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.DbSql.ExecContext(ctx, query, args...)
}

func (c *SqlConnection) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return c.DbSql.Query(query, args...)
}

func (c *SqlConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.DbSql.QueryContext(ctx, query, args...)
}

func (c *SqlConnection) QueryRow(query string, args ...interface{}) *sql.Row {
	return c.DbSql.QueryRow(query, args...)
}

func (c *SqlConnection) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.DbSql.QueryRowContext(ctx, query, args...)
}

func (c *SqlConnection) Close() {
	_ = c.DbSql.Close()
}

func (c *SqlConnection) GetType() string {
	return c.DbType
}

func (c *SqlConnection) GetDmlGenerator() DmlGenerator {
	return c.Dml
}

// SqlTransaction implements Transacter over the native Go SQL library.
type SqlTransaction struct {
	tx *sql.Tx
}

func (t *SqlTransaction) Exec(query string, args ...interface{}) (sql.Result, error) {
	return t.tx.Exec(query, args...)
}

func (t *SqlTransaction) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *SqlTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *SqlTransaction) Rollback() error {
	return t.tx.Rollback()
}
