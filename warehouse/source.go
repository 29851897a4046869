package warehouse

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

// Reader provides read-only access to the OLTP gallery database. A zero since
// time reads everything; otherwise only records updated after the watermark
// are returned (incremental mode).
type Reader struct {
	log logger.Logger
	db  shared.Connector
}

func NewReader(log logger.Logger, db shared.Connector) *Reader {
	return &Reader{log: log, db: db}
}

// Ping verifies the source is reachable before a run starts.
func (r *Reader) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, "select 1").Scan(&one); err != nil {
		return errors.Wrap(err, "source database is unavailable")
	}
	return nil
}

// sinceClause appends the incremental watermark predicate when since is set.
func sinceClause(query string, since time.Time) (string, []interface{}) {
	if since.IsZero() { // if we are reading the full source...
		return query, nil
	}
	return query + " where updated_at > ?", []interface{}{formatTime(since)}
}

func (r *Reader) Artists(ctx context.Context, since time.Time) ([]Artist, error) {
	query, args := sinceClause("select id, full_name, nationality, birth_year, death_year from artists", since)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read artists")
	}
	defer rows.Close()
	var out []Artist
	for rows.Next() {
		var a Artist
		if err := rows.Scan(&a.ID, &a.FullName, &a.Nationality, &a.BirthYear, &a.DeathYear); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Reader) Collections(ctx context.Context, since time.Time) ([]Collection, error) {
	query, args := sinceClause("select id, name, category from collections", since)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read collections")
	}
	defer rows.Close()
	var out []Collection
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.Category); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Reader) Locations(ctx context.Context, since time.Time) ([]Location, error) {
	query, args := sinceClause("select id, name, building, room from locations", since)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read locations")
	}
	defer rows.Close()
	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Building, &l.Room); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Reader) Exhibitors(ctx context.Context, since time.Time) ([]Exhibitor, error) {
	query, args := sinceClause("select id, name, country, exhibitor_type from exhibitors", since)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read exhibitors")
	}
	defer rows.Close()
	var out []Exhibitor
	for rows.Next() {
		var e Exhibitor
		if err := rows.Scan(&e.ID, &e.Name, &e.Country, &e.Kind); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Reader) Policies(ctx context.Context, since time.Time) ([]Policy, error) {
	query, args := sinceClause("select id, provider, policy_number, coverage_type from policies", since)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read policies")
	}
	defer rows.Close()
	var out []Policy
	for rows.Next() {
		var p Policy
		if err := rows.Scan(&p.ID, &p.Provider, &p.PolicyNumber, &p.CoverageType); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Reader) Artworks(ctx context.Context, since time.Time) ([]Artwork, error) {
	query, args := sinceClause(
		"select id, title, artist_id, creation_year, medium, collection_id, location_id, estimated_value from artworks", since)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read artworks")
	}
	defer rows.Close()
	var out []Artwork
	for rows.Next() {
		var a Artwork
		if err := rows.Scan(&a.ID, &a.Title, &a.ArtistID, &a.CreationYear, &a.Medium,
			&a.CollectionID, &a.LocationID, &a.EstimatedValue); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Reader) Exhibitions(ctx context.Context, since time.Time) ([]Exhibition, error) {
	query, args := sinceClause("select id, name, exhibitor_id, start_date, end_date from exhibitions", since)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read exhibitions")
	}
	defer rows.Close()
	var out []Exhibition
	for rows.Next() {
		var e Exhibition
		var start string
		var end sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &e.ExhibitorID, &start, &end); err != nil {
			return nil, err
		}
		e.StartDate, err = parseFlexibleTime(start)
		if err != nil {
			return nil, errors.Wrapf(err, "bad start_date for exhibition %v", e.ID)
		}
		e.EndDate, err = parseNullTime(end)
		if err != nil {
			return nil, errors.Wrapf(err, "bad end_date for exhibition %v", e.ID)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Reader) Insurance(ctx context.Context, since time.Time) ([]Insurance, error) {
	query, args := sinceClause("select id, artwork_id, policy_id, insured_amount, start_date, end_date from insurance", since)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read insurance records")
	}
	defer rows.Close()
	var out []Insurance
	for rows.Next() {
		var i Insurance
		var start string
		var end sql.NullString
		if err := rows.Scan(&i.ID, &i.ArtworkID, &i.PolicyID, &i.InsuredAmount, &start, &end); err != nil {
			return nil, err
		}
		i.StartDate, err = parseFlexibleTime(start)
		if err != nil {
			return nil, errors.Wrapf(err, "bad start_date for insurance %v", i.ID)
		}
		i.EndDate, err = parseNullTime(end)
		if err != nil {
			return nil, errors.Wrapf(err, "bad end_date for insurance %v", i.ID)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *Reader) Visitors(ctx context.Context, since time.Time) ([]Visitor, error) {
	query, args := sinceClause("select id, full_name, email, membership_type from visitors", since)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read visitors")
	}
	defer rows.Close()
	var out []Visitor
	for rows.Next() {
		var v Visitor
		if err := rows.Scan(&v.ID, &v.FullName, &v.Email, &v.MembershipType); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Reader) Staff(ctx context.Context, since time.Time) ([]Staff, error) {
	query, args := sinceClause("select id, full_name, job_title, hire_date from staff", since)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read staff")
	}
	defer rows.Close()
	var out []Staff
	for rows.Next() {
		var s Staff
		var hireDate sql.NullString
		if err := rows.Scan(&s.ID, &s.FullName, &s.JobTitle, &hireDate); err != nil {
			return nil, err
		}
		s.HireDate, err = parseNullTime(hireDate)
		if err != nil {
			return nil, errors.Wrapf(err, "bad hire_date for staff %v", s.ID)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ArtworkExhibitions returns every (artwork, exhibition) pairing; the fact
// grain always covers the whole join table so existing fact rows are refreshed
// even in incremental mode.
func (r *Reader) ArtworkExhibitions(ctx context.Context) ([]ArtworkExhibition, error) {
	rows, err := r.db.QueryContext(ctx, "select artwork_id, exhibition_id from artwork_exhibitions")
	if err != nil {
		return nil, errors.Wrap(err, "unable to read artwork exhibitions")
	}
	defer rows.Close()
	var out []ArtworkExhibition
	for rows.Next() {
		var ae ArtworkExhibition
		if err := rows.Scan(&ae.ArtworkID, &ae.ExhibitionID); err != nil {
			return nil, err
		}
		out = append(out, ae)
	}
	return out, rows.Err()
}

// Aggregate measures derived from related OLTP tables, one artwork at a time
// to match the per-record round-trip style of the loaders.

func (r *Reader) InsuredAmountForArtwork(ctx context.Context, artworkID int64) (float64, error) {
	var amount sql.NullFloat64
	err := r.db.QueryRowContext(ctx, "select sum(insured_amount) from insurance where artwork_id = ?", artworkID).Scan(&amount)
	if err != nil {
		return 0, err
	}
	if !amount.Valid { // if there are no insurance records...
		return 0, nil
	}
	return amount.Float64, nil
}

// FirstPolicyForArtwork returns the policy of the artwork's first insurance
// record, or an invalid NullInt64 when the artwork is uninsured.
func (r *Reader) FirstPolicyForArtwork(ctx context.Context, artworkID int64) (sql.NullInt64, error) {
	var policy sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"select policy_id from insurance where artwork_id = ? order by id limit 1", artworkID).Scan(&policy)
	if err == sql.ErrNoRows {
		return sql.NullInt64{}, nil
	}
	if err != nil {
		return sql.NullInt64{}, err
	}
	return policy, nil
}

func (r *Reader) HasLoanForArtwork(ctx context.Context, artworkID int64) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "select count(*) from loans where artwork_id = ?", artworkID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Reader) RestorationCountForArtwork(ctx context.Context, artworkID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "select count(*) from restorations where artwork_id = ?", artworkID).Scan(&count)
	return count, err
}

// ReviewStatsForArtwork returns the review count and average rating; the
// average is invalid when there are no reviews.
func (r *Reader) ReviewStatsForArtwork(ctx context.Context, artworkID int64) (int64, sql.NullFloat64, error) {
	var count int64
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		"select count(*), avg(rating) from reviews where artwork_id = ?", artworkID).Scan(&count, &avg)
	return count, avg, err
}

// NaturalKeySet returns all primary keys of the named source table; used by
// the integrity validator to find orphaned dimension rows.
func (r *Reader) NaturalKeySet(ctx context.Context, table string) (map[int64]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, "select id from "+table)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read keys of %v", table)
	}
	defer rows.Close()
	out := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// parseFlexibleTime accepts timestamp or date-only text.
func parseFlexibleTime(s string) (time.Time, error) {
	t, err := parseTime(s)
	if err != nil {
		return parseDate(s)
	}
	return t, nil
}
