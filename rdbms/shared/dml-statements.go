package shared

import (
	"fmt"
	"strings"

	h "github.com/gallerops/dwpipe/helper"
)

// SqlInsertTxt generates 'insert into <table> (<all-cols>) values (?,...)'.
// Bind order: key columns followed by other columns.
type SqlInsertTxt struct {
	SqlStatementGeneratorConfig
	sqlStmt string
}

func (o *SqlInsertTxt) GetStatement() string {
	if o.sqlStmt == "" { // if we have not generated the SQL yet...
		allCols := o.allCols()
		o.sqlStmt = fmt.Sprintf("insert into %v (%v) values (%v)",
			o.qualifiedTable(),
			strings.Join(allCols, ","),
			h.GenerateStringOfBindPlaceholders(len(allCols)))
	}
	return o.sqlStmt
}

// SqlUpdateTxt generates 'update <table> set <other-cols> = ? where <key-cols> = ?'.
// Bind order: other columns followed by key columns.
type SqlUpdateTxt struct {
	SqlStatementGeneratorConfig
	sqlStmt string
}

func (o *SqlUpdateTxt) GetStatement() string {
	if o.sqlStmt == "" {
		o.sqlStmt = fmt.Sprintf("update %v set %v where %v",
			o.qualifiedTable(),
			h.GenerateStringOfColsEqualsBinds(o.otherCols(), ","),
			h.GenerateStringOfColsEqualsBinds(o.keyCols(), " and "))
	}
	return o.sqlStmt
}

// SqlDeleteTxt generates 'delete from <table> where <key-cols> = ?'.
type SqlDeleteTxt struct {
	SqlStatementGeneratorConfig
	sqlStmt string
}

func (o *SqlDeleteTxt) GetStatement() string {
	if o.sqlStmt == "" {
		o.sqlStmt = fmt.Sprintf("delete from %v where %v",
			o.qualifiedTable(),
			h.GenerateStringOfColsEqualsBinds(o.keyCols(), " and "))
	}
	return o.sqlStmt
}

// SqlSelectTxt generates 'select <all-cols> from <table> where <key-cols> = ?'.
type SqlSelectTxt struct {
	SqlStatementGeneratorConfig
	sqlStmt string
}

func (o *SqlSelectTxt) GetStatement() string {
	if o.sqlStmt == "" {
		o.sqlStmt = fmt.Sprintf("select %v from %v where %v",
			strings.Join(o.allCols(), ","),
			o.qualifiedTable(),
			h.GenerateStringOfColsEqualsBinds(o.keyCols(), " and "))
	}
	return o.sqlStmt
}
