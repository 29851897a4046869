package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/gallerops/dwpipe/constants"
	h "github.com/gallerops/dwpipe/helper"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

// dimensionSpec describes one dimension table: its surrogate and natural key
// columns and the ordered descriptive attribute columns.
type dimensionSpec struct {
	Table        string
	SurrogateCol string
	NaturalCol   string
	AttrCols     []string
}

var (
	artistDim = dimensionSpec{
		Table: constants.TableDimArtist, SurrogateCol: "artist_key", NaturalCol: "artist_id",
		AttrCols: []string{"full_name", "nationality", "birth_year", "death_year"},
	}
	collectionDim = dimensionSpec{
		Table: constants.TableDimCollection, SurrogateCol: "collection_key", NaturalCol: "collection_id",
		AttrCols: []string{"name", "category"},
	}
	locationDim = dimensionSpec{
		Table: constants.TableDimLocation, SurrogateCol: "location_key", NaturalCol: "location_id",
		AttrCols: []string{"name", "building", "room"},
	}
	exhibitorDim = dimensionSpec{
		Table: constants.TableDimExhibitor, SurrogateCol: "exhibitor_key", NaturalCol: "exhibitor_id",
		AttrCols: []string{"name", "country", "exhibitor_type"},
	}
	policyDim = dimensionSpec{
		Table: constants.TableDimPolicy, SurrogateCol: "policy_key", NaturalCol: "policy_id",
		AttrCols: []string{"provider", "policy_number", "coverage_type"},
	}
	artworkDim = dimensionSpec{
		Table: constants.TableDimArtwork, SurrogateCol: "artwork_key", NaturalCol: "artwork_id",
		AttrCols: []string{"title", "artist_key", "creation_year", "medium", "collection_key", "location_key", "estimated_value"},
	}
	exhibitionDim = dimensionSpec{
		Table: constants.TableDimExhibition, SurrogateCol: "exhibition_key", NaturalCol: "exhibition_id",
		AttrCols: []string{"name", "exhibitor_key", "start_date", "end_date"},
	}
	insuranceDim = dimensionSpec{
		Table: constants.TableDimInsurance, SurrogateCol: "insurance_key", NaturalCol: "insurance_id",
		AttrCols: []string{"artwork_id", "policy_key", "insured_amount", "start_date", "end_date"},
	}
	visitorDim = dimensionSpec{
		Table: constants.TableDimVisitor, SurrogateCol: "visitor_key", NaturalCol: "visitor_id",
		AttrCols: []string{"full_name", "email", "membership_type"},
	}
	staffDim = dimensionSpec{
		Table: constants.TableDimStaff, SurrogateCol: "staff_key", NaturalCol: "staff_id",
		AttrCols: []string{"full_name", "job_title", "hire_date"},
	}
)

// Upserter writes source records into the dimension tables using per-record
// lookup-then-write round trips.
type Upserter struct {
	log      logger.Logger
	db       shared.Connector
	caps     rdbms.Capabilities
	loadTime time.Time
}

func NewUpserter(log logger.Logger, db shared.Connector, caps rdbms.Capabilities, loadTime time.Time) *Upserter {
	return &Upserter{log: log, db: db, caps: caps, loadTime: loadTime}
}

// attrOrderedMap builds the ordered column map for the DML generators.
func attrOrderedMap(cols ...string) string {
	pairs := make([]string, len(cols))
	for i, c := range cols {
		pairs[i] = c + ":" + c
	}
	return strings.Join(pairs, ",")
}

// insertStatement builds a parameterized insert covering the dimension's full column set.
func (u *Upserter) insertStatement(spec dimensionSpec, extraCols ...string) string {
	cols := append([]string{spec.NaturalCol}, spec.AttrCols...)
	cols = append(cols, extraCols...)
	gen := u.db.GetDmlGenerator().NewInsertGenerator(&shared.SqlStatementGeneratorConfig{
		Log:             u.log,
		OutputTable:     spec.Table,
		TargetKeyCols:   h.TokensToOrderedMap(attrOrderedMap(spec.SurrogateCol)),
		TargetOtherCols: h.TokensToOrderedMap(attrOrderedMap(cols...)),
	})
	return gen.GetStatement()
}

// nextSurrogateKey allocates the next unused surrogate key for the table.
func (u *Upserter) nextSurrogateKey(ctx context.Context, spec dimensionSpec) (int64, error) {
	var next int64
	query := fmt.Sprintf("select coalesce(max(%v),0)+1 from %v", spec.SurrogateCol, spec.Table)
	if err := u.db.QueryRowContext(ctx, query).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

// lookupCurrent fetches the surrogate key and attribute values of the current
// row for the natural key, or found == false when there is none.
func (u *Upserter) lookupCurrent(ctx context.Context, spec dimensionSpec) func(naturalKey int64) (int64, []interface{}, bool, error) {
	query := fmt.Sprintf("select %v,%v from %v where %v = ? and is_current = 1",
		spec.SurrogateCol, strings.Join(spec.AttrCols, ","), spec.Table, spec.NaturalCol)
	return func(naturalKey int64) (int64, []interface{}, bool, error) {
		var surrogate int64
		attrs := make([]interface{}, len(spec.AttrCols))
		scanTargets := make([]interface{}, 0, len(spec.AttrCols)+1)
		scanTargets = append(scanTargets, &surrogate)
		for i := range attrs {
			scanTargets = append(scanTargets, &attrs[i])
		}
		err := u.db.QueryRowContext(ctx, query, naturalKey).Scan(scanTargets...)
		if err == sql.ErrNoRows {
			return 0, nil, false, nil
		}
		if err != nil {
			return 0, nil, false, err
		}
		return surrogate, attrs, true, nil
	}
}

// upsertScd2 applies true Type 2 semantics: insert a fresh version when the
// natural key is new, close the current row and insert a new version when
// attributes changed, and leave unchanged rows alone so re-runs are no-ops.
func (u *Upserter) upsertScd2(ctx context.Context, spec dimensionSpec, naturalKey int64, attrs []interface{}) error {
	surrogate, existing, found, err := u.lookupCurrent(ctx, spec)(naturalKey)
	if err != nil {
		return errors.Wrapf(err, "lookup of current %v row failed", spec.Table)
	}
	if found && attrValuesEqual(existing, attrs) { // if nothing changed...
		return nil
	}
	next, err := u.nextSurrogateKey(ctx, spec)
	if err != nil {
		return errors.Wrapf(err, "unable to allocate surrogate key for %v", spec.Table)
	}
	args := make([]interface{}, 0, len(attrs)+5)
	args = append(args, next, naturalKey)
	args = append(args, attrs...)
	args = append(args, formatTime(u.loadTime), nil, 1) // effective_start, effective_end, is_current
	insertSql := u.insertStatement(spec, "effective_start", "effective_end", "is_current")
	if !found { // if the natural key is new...
		if _, err := u.db.ExecContext(ctx, insertSql, args...); err != nil {
			return errors.Wrapf(err, "unable to insert %v row for natural key %v", spec.Table, naturalKey)
		}
		return nil
	}
	// Attributes changed: close the current version and insert its successor in
	// one transaction so a closed row never lacks a replacement.
	closeGen := u.db.GetDmlGenerator().NewUpdateGenerator(&shared.SqlStatementGeneratorConfig{
		Log:             u.log,
		OutputTable:     spec.Table,
		TargetKeyCols:   h.TokensToOrderedMap(attrOrderedMap(spec.SurrogateCol)),
		TargetOtherCols: h.TokensToOrderedMap(attrOrderedMap("is_current", "effective_end")),
	})
	tx, err := u.db.Begin()
	if err != nil {
		return errors.Wrapf(err, "unable to open transaction on %v", spec.Table)
	}
	if _, err := tx.ExecContext(ctx, closeGen.GetStatement(), 0, formatTime(u.loadTime), surrogate); err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "unable to close current %v row %v", spec.Table, surrogate)
	}
	if _, err := tx.ExecContext(ctx, insertSql, args...); err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "unable to insert %v row for natural key %v", spec.Table, naturalKey)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "unable to commit %v version change", spec.Table)
	}
	return nil
}

// upsertType1 overwrites attributes in place; the surrogate key equals the
// natural key for these simple reference dimensions.
func (u *Upserter) upsertType1(ctx context.Context, spec dimensionSpec, naturalKey int64, attrs []interface{}) error {
	var count int
	query := fmt.Sprintf("select count(*) from %v where %v = ?", spec.Table, spec.NaturalCol)
	if err := u.db.QueryRowContext(ctx, query, naturalKey).Scan(&count); err != nil {
		return errors.Wrapf(err, "lookup of %v row failed", spec.Table)
	}
	if count == 0 { // if the natural key is new...
		args := make([]interface{}, 0, len(attrs)+2)
		args = append(args, naturalKey, naturalKey)
		args = append(args, attrs...)
		if _, err := u.db.ExecContext(ctx, u.insertStatement(spec), args...); err != nil {
			return errors.Wrapf(err, "unable to insert %v row for natural key %v", spec.Table, naturalKey)
		}
		return nil
	}
	updateGen := u.db.GetDmlGenerator().NewUpdateGenerator(&shared.SqlStatementGeneratorConfig{
		Log:             u.log,
		OutputTable:     spec.Table,
		TargetKeyCols:   h.TokensToOrderedMap(attrOrderedMap(spec.NaturalCol)),
		TargetOtherCols: h.TokensToOrderedMap(attrOrderedMap(spec.AttrCols...)),
	})
	args := append(append([]interface{}{}, attrs...), naturalKey)
	if _, err := u.db.ExecContext(ctx, updateGen.GetStatement(), args...); err != nil {
		return errors.Wrapf(err, "unable to update %v row for natural key %v", spec.Table, naturalKey)
	}
	return nil
}

// currentSurrogate resolves the current dimension row for a natural key.
// Referencing a natural key with no current row is a hard error so that
// foreign-key-bearing rows never point at nonexistent dimension rows.
func (u *Upserter) currentSurrogate(ctx context.Context, spec dimensionSpec, naturalKey int64) (int64, error) {
	var surrogate int64
	query := fmt.Sprintf("select %v from %v where %v = ? and is_current = 1", spec.SurrogateCol, spec.Table, spec.NaturalCol)
	err := u.db.QueryRowContext(ctx, query, naturalKey).Scan(&surrogate)
	if err == sql.ErrNoRows {
		return 0, errors.Errorf("no current %v row for natural key %v", spec.Table, naturalKey)
	}
	if err != nil {
		return 0, err
	}
	return surrogate, nil
}

// type1Key resolves a type-1 reference key, returning NULL when the referenced
// dimension table is not provisioned (graceful degradation) and an error when
// the table exists but the key is missing.
func (u *Upserter) type1Key(ctx context.Context, spec dimensionSpec, id sql.NullInt64) (interface{}, error) {
	if !id.Valid { // if the source FK is null...
		return nil, nil
	}
	if !u.caps.HasTable(spec.Table) { // if the target has no such dimension...
		u.log.Warn("table ", spec.Table, " is not provisioned; storing a null reference for key ", id.Int64)
		return nil, nil
	}
	var count int
	query := fmt.Sprintf("select count(*) from %v where %v = ?", spec.Table, spec.SurrogateCol)
	if err := u.db.QueryRowContext(ctx, query, id.Int64).Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errors.Errorf("%v has no row for key %v", spec.Table, id.Int64)
	}
	return id.Int64, nil
}

// Per-dimension loaders. Each converts source records using its own
// field-mapping rules and applies the appropriate upsert behaviour.

func (u *Upserter) LoadArtists(ctx context.Context, artists []Artist) (int, error) {
	for _, a := range artists {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		attrs := []interface{}{a.FullName, stringOrUnknown(a.Nationality), nullInt64Arg(a.BirthYear), nullInt64Arg(a.DeathYear)}
		if err := u.upsertScd2(ctx, artistDim, a.ID, attrs); err != nil {
			return 0, err
		}
	}
	return len(artists), nil
}

func (u *Upserter) LoadCollections(ctx context.Context, collections []Collection) (int, error) {
	for _, c := range collections {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		attrs := []interface{}{c.Name, stringOrUnknown(c.Category)}
		if err := u.upsertType1(ctx, collectionDim, c.ID, attrs); err != nil {
			return 0, err
		}
	}
	return len(collections), nil
}

func (u *Upserter) LoadLocations(ctx context.Context, locations []Location) (int, error) {
	for _, l := range locations {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		attrs := []interface{}{l.Name, nullStringArg(l.Building), nullStringArg(l.Room)}
		if err := u.upsertType1(ctx, locationDim, l.ID, attrs); err != nil {
			return 0, err
		}
	}
	return len(locations), nil
}

func (u *Upserter) LoadExhibitors(ctx context.Context, exhibitors []Exhibitor) (int, error) {
	for _, e := range exhibitors {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		attrs := []interface{}{e.Name, stringOrUnknown(e.Country), stringOrUnknown(e.Kind)}
		if err := u.upsertType1(ctx, exhibitorDim, e.ID, attrs); err != nil {
			return 0, err
		}
	}
	return len(exhibitors), nil
}

func (u *Upserter) LoadPolicies(ctx context.Context, policies []Policy) (int, error) {
	for _, p := range policies {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		attrs := []interface{}{p.Provider, nullStringArg(p.PolicyNumber), stringOrUnknown(p.CoverageType)}
		if err := u.upsertType1(ctx, policyDim, p.ID, attrs); err != nil {
			return 0, err
		}
	}
	return len(policies), nil
}

func (u *Upserter) LoadArtworks(ctx context.Context, artworks []Artwork) (int, error) {
	for _, a := range artworks {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		artistKey, err := u.currentSurrogate(ctx, artistDim, a.ArtistID)
		if err != nil {
			return 0, errors.Wrapf(err, "artwork %v references artist %v", a.ID, a.ArtistID)
		}
		collectionKey, err := u.type1Key(ctx, collectionDim, a.CollectionID)
		if err != nil {
			return 0, errors.Wrapf(err, "artwork %v references a missing collection", a.ID)
		}
		locationKey, err := u.type1Key(ctx, locationDim, a.LocationID)
		if err != nil {
			return 0, errors.Wrapf(err, "artwork %v references a missing location", a.ID)
		}
		attrs := []interface{}{a.Title, artistKey, nullInt64Arg(a.CreationYear), stringOrUnknown(a.Medium),
			collectionKey, locationKey, nullFloat64Arg(a.EstimatedValue)}
		if err := u.upsertScd2(ctx, artworkDim, a.ID, attrs); err != nil {
			return 0, err
		}
	}
	return len(artworks), nil
}

func (u *Upserter) LoadExhibitions(ctx context.Context, exhibitions []Exhibition) (int, error) {
	for _, e := range exhibitions {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		exhibitorKey, err := u.type1Key(ctx, exhibitorDim, sql.NullInt64{Int64: e.ExhibitorID, Valid: true})
		if err != nil {
			return 0, errors.Wrapf(err, "exhibition %v references a missing exhibitor", e.ID)
		}
		if exhibitorKey == nil {
			return 0, errors.Errorf("exhibition %v requires the exhibitor dimension", e.ID)
		}
		// The exhibition start date anchors the fact date key; make sure the
		// date-dimension row exists.
		if u.caps.HasTable(constants.TableDimDate) {
			if _, err := EnsureDate(ctx, u.log, u.db, e.StartDate); err != nil {
				return 0, errors.Wrapf(err, "unable to ensure date row for exhibition %v", e.ID)
			}
		}
		attrs := []interface{}{e.Name, exhibitorKey, formatTime(e.StartDate), formatNullTime(e.EndDate)}
		if err := u.upsertScd2(ctx, exhibitionDim, e.ID, attrs); err != nil {
			return 0, err
		}
	}
	return len(exhibitions), nil
}

func (u *Upserter) LoadInsurance(ctx context.Context, records []Insurance) (int, error) {
	for _, i := range records {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		policyKey, err := u.type1Key(ctx, policyDim, i.PolicyID)
		if err != nil {
			return 0, errors.Wrapf(err, "insurance %v references a missing policy", i.ID)
		}
		attrs := []interface{}{i.ArtworkID, policyKey, i.InsuredAmount, formatTime(i.StartDate), formatNullTime(i.EndDate)}
		if err := u.upsertScd2(ctx, insuranceDim, i.ID, attrs); err != nil {
			return 0, err
		}
	}
	return len(records), nil
}

func (u *Upserter) LoadVisitors(ctx context.Context, visitors []Visitor) (int, error) {
	for _, v := range visitors {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		attrs := []interface{}{v.FullName, nullStringArg(v.Email), stringOrUnknown(v.MembershipType)}
		if err := u.upsertScd2(ctx, visitorDim, v.ID, attrs); err != nil {
			return 0, err
		}
	}
	return len(visitors), nil
}

func (u *Upserter) LoadStaff(ctx context.Context, staff []Staff) (int, error) {
	for _, s := range staff {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		attrs := []interface{}{s.FullName, stringOrUnknown(s.JobTitle), formatNullTime(s.HireDate)}
		if err := u.upsertScd2(ctx, staffDim, s.ID, attrs); err != nil {
			return 0, err
		}
	}
	return len(staff), nil
}

// attrValuesEqual compares attribute values scanned from the target with the
// freshly computed ones, normalizing driver types first.
func attrValuesEqual(existing, computed []interface{}) bool {
	if len(existing) != len(computed) {
		return false
	}
	for i := range existing {
		if normalizeValue(existing[i]) != normalizeValue(computed[i]) {
			return false
		}
	}
	return true
}

// normalizeValue maps driver-specific scan types onto a comparable value.
func normalizeValue(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte: // MySQL returns text columns as byte slices.
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return float64(x)
	case float64:
		return x
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		return formatTime(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
