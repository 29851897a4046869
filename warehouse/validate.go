package warehouse

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gallerops/dwpipe/constants"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

// orphanCheck compares the current rows of a versioned dimension against the
// natural keys still present in the source.
type orphanCheck struct {
	Dim         dimensionSpec
	SourceTable string
}

// referenceCheck counts rows whose foreign key points at no row in the
// referenced warehouse table.
type referenceCheck struct {
	Name       string
	Table      string
	Column     string
	RefTable   string
	RefColumn  string
	Constraint string // extra where clause on the referencing table, or "".
}

var orphanChecks = []orphanCheck{
	{artistDim, "artists"},
	{artworkDim, "artworks"},
	{exhibitionDim, "exhibitions"},
	{visitorDim, "visitors"},
	{staffDim, "staff"},
	{insuranceDim, "insurance"},
}

var referenceChecks = []referenceCheck{
	{"dim_artwork.artist_key", constants.TableDimArtwork, "artist_key", constants.TableDimArtist, "artist_key", "is_current = 1"},
	{"dim_exhibition.exhibitor_key", constants.TableDimExhibition, "exhibitor_key", constants.TableDimExhibitor, "exhibitor_key", "is_current = 1"},
	{"fact.artwork_key", constants.TableFactArtworkExhibition, "artwork_key", constants.TableDimArtwork, "artwork_key", ""},
	{"fact.exhibition_key", constants.TableFactArtworkExhibition, "exhibition_key", constants.TableDimExhibition, "exhibition_key", ""},
	{"fact.date_key", constants.TableFactArtworkExhibition, "date_key", constants.TableDimDate, "date_key", ""},
}

// Validator runs read-only consistency checks across the source and target.
// It never mutates either database and always returns a structured result,
// folding check execution failures into the issue list instead of aborting.
type Validator struct {
	log  logger.Logger
	src  *Reader
	db   shared.Connector
	caps rdbms.Capabilities
}

func NewValidator(log logger.Logger, src *Reader, db shared.Connector, caps rdbms.Capabilities) *Validator {
	return &Validator{log: log, src: src, db: db, caps: caps}
}

// Validate runs every applicable check and aggregates the outcome. Checks on
// tables the target does not have are skipped rather than reported as failures.
func (v *Validator) Validate(ctx context.Context) *IntegrityResult {
	result := &IntegrityResult{CheckedAt: time.Now().UTC()}
	for _, c := range orphanChecks {
		if !v.caps.HasTable(c.Dim.Table) {
			continue
		}
		v.runCheck(result, "orphan "+c.Dim.Table, func() (int64, string, error) {
			n, err := v.countOrphans(ctx, c)
			desc := fmt.Sprintf("%v current rows in %v have no source row in %v", n, c.Dim.Table, c.SourceTable)
			return n, desc, err
		}, constants.IssueTypeOrphanDimension, c.Dim.Table)
	}
	for _, c := range referenceChecks {
		if !v.caps.HasTable(c.Table) || !v.caps.HasTable(c.RefTable) {
			continue
		}
		v.runCheck(result, "reference "+c.Name, func() (int64, string, error) {
			n, err := v.countMissingReferences(ctx, c)
			desc := fmt.Sprintf("%v rows in %v reference %v.%v values that do not exist", n, c.Table, c.RefTable, c.RefColumn)
			return n, desc, err
		}, constants.IssueTypeMissingReference, c.Table)
	}
	sortIssues(result.Issues)
	result.IsValid = result.FailedChecks == 0
	return result
}

// runCheck executes one check and records either a pass, a data issue, or a
// Critical issue describing the execution failure itself.
func (v *Validator) runCheck(result *IntegrityResult, name string, check func() (int64, string, error), issueType, table string) {
	result.TotalChecks++
	affected, desc, err := check()
	if err != nil {
		v.log.Error("check ", name, " failed to execute: ", err)
		result.FailedChecks++
		result.Issues = append(result.Issues, IntegrityIssue{
			Table:       table,
			IssueType:   constants.IssueTypeCheckError,
			Description: fmt.Sprintf("check %v failed to execute: %v", name, err),
			Severity:    constants.SeverityCritical,
		})
		return
	}
	if affected == 0 {
		result.PassedChecks++
		return
	}
	severity := constants.SeverityWarning
	if affected >= constants.SeverityErrorThreshold {
		severity = constants.SeverityError
	}
	result.FailedChecks++
	result.Issues = append(result.Issues, IntegrityIssue{
		Table:           table,
		IssueType:       issueType,
		Description:     desc,
		AffectedRecords: affected,
		Severity:        severity,
	})
}

// countOrphans diffs dimension natural keys against the source in memory since
// the two schemas live on separate connections.
func (v *Validator) countOrphans(ctx context.Context, c orphanCheck) (int64, error) {
	sourceKeys, err := v.src.NaturalKeySet(ctx, c.SourceTable)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("select %v from %v where is_current = 1", c.Dim.NaturalCol, c.Dim.Table)
	rows, err := v.db.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var orphans int64
	for rows.Next() {
		var key int64
		if err := rows.Scan(&key); err != nil {
			return 0, err
		}
		if _, ok := sourceKeys[key]; !ok {
			orphans++
		}
	}
	return orphans, rows.Err()
}

func (v *Validator) countMissingReferences(ctx context.Context, c referenceCheck) (int64, error) {
	query := fmt.Sprintf(
		"select count(*) from %v t where t.%v is not null and not exists (select 1 from %v r where r.%v = t.%v)",
		c.Table, c.Column, c.RefTable, c.RefColumn, c.Column)
	if c.Constraint != "" {
		query += " and t." + c.Constraint
	}
	var n int64
	err := v.db.QueryRowContext(ctx, query).Scan(&n)
	return n, err
}

// sortIssues keeps reports deterministic for identical database states.
func sortIssues(issues []IntegrityIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Table != issues[j].Table {
			return issues[i].Table < issues[j].Table
		}
		return issues[i].IssueType < issues[j].IssueType
	})
}
