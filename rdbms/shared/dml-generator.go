package shared

import (
	"github.com/cevaris/ordered_map"

	h "github.com/gallerops/dwpipe/helper"
	"github.com/gallerops/dwpipe/logger"
)

// SqlStatementGeneratorConfig holds the target table description used to build
// parameterized DML. TargetKeyCols and TargetOtherCols are ordered maps of
// column name to source field name so the bind order is deterministic.
type SqlStatementGeneratorConfig struct {
	Log             logger.Logger
	OutputSchema    string
	SchemaSeparator string // default '.'
	OutputTable     string
	TargetKeyCols   *ordered_map.OrderedMap
	TargetOtherCols *ordered_map.OrderedMap
}

// FixSqlStatementGeneratorConfig applies defaults to cfg in place.
func FixSqlStatementGeneratorConfig(cfg *SqlStatementGeneratorConfig) {
	if cfg.SchemaSeparator == "" {
		cfg.SchemaSeparator = "."
	}
	if cfg.TargetKeyCols == nil {
		cfg.TargetKeyCols = ordered_map.NewOrderedMap()
	}
	if cfg.TargetOtherCols == nil {
		cfg.TargetOtherCols = ordered_map.NewOrderedMap()
	}
}

// qualifiedTable returns [<schema><separator>]<table>.
func (cfg *SqlStatementGeneratorConfig) qualifiedTable() string {
	if cfg.OutputSchema == "" {
		return cfg.OutputTable
	}
	return cfg.OutputSchema + cfg.SchemaSeparator + cfg.OutputTable
}

// keyCols returns the ordered list of key column names.
func (cfg *SqlStatementGeneratorConfig) keyCols() []string {
	cols := make([]string, cfg.TargetKeyCols.Len())
	idx := 0
	h.OrderedMapKeysToStringSlice(cfg.Log, cfg.TargetKeyCols, &cols, &idx)
	return cols
}

// otherCols returns the ordered list of non-key column names.
func (cfg *SqlStatementGeneratorConfig) otherCols() []string {
	cols := make([]string, cfg.TargetOtherCols.Len())
	idx := 0
	h.OrderedMapKeysToStringSlice(cfg.Log, cfg.TargetOtherCols, &cols, &idx)
	return cols
}

// allCols returns key columns followed by other columns.
func (cfg *SqlStatementGeneratorConfig) allCols() []string {
	cols := make([]string, cfg.TargetKeyCols.Len()+cfg.TargetOtherCols.Len())
	idx := 0
	h.OrderedMapKeysToStringSlice(cfg.Log, cfg.TargetKeyCols, &cols, &idx)
	h.OrderedMapKeysToStringSlice(cfg.Log, cfg.TargetOtherCols, &cols, &idx)
	return cols
}

// DmlGeneratorTxt builds generic parameterized DML text using '?' binds.
// It works for all supported connection types (MySQL and SQLite).
type DmlGeneratorTxt struct{}

func (o *DmlGeneratorTxt) NewInsertGenerator(cfg *SqlStatementGeneratorConfig) SqlStmtGenerator {
	FixSqlStatementGeneratorConfig(cfg)
	return &SqlInsertTxt{SqlStatementGeneratorConfig: *cfg}
}

func (o *DmlGeneratorTxt) NewUpdateGenerator(cfg *SqlStatementGeneratorConfig) SqlStmtGenerator {
	FixSqlStatementGeneratorConfig(cfg)
	return &SqlUpdateTxt{SqlStatementGeneratorConfig: *cfg}
}

func (o *DmlGeneratorTxt) NewDeleteGenerator(cfg *SqlStatementGeneratorConfig) SqlStmtGenerator {
	FixSqlStatementGeneratorConfig(cfg)
	return &SqlDeleteTxt{SqlStatementGeneratorConfig: *cfg}
}

func (o *DmlGeneratorTxt) NewSelectGenerator(cfg *SqlStatementGeneratorConfig) SqlStmtGenerator {
	FixSqlStatementGeneratorConfig(cfg)
	return &SqlSelectTxt{SqlStatementGeneratorConfig: *cfg}
}
