// Package analytics answers reporting queries against the star schema.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/gallerops/dwpipe/constants"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

// ErrNotProvisioned is returned when a report needs warehouse tables the
// target does not have.
var ErrNotProvisioned = errors.New("warehouse tables are not provisioned")

// DateRange optionally bounds a report to facts whose exhibition date falls
// inside [From, To], inclusive. Either side may be unset.
type DateRange struct {
	From sql.NullTime
	To   sql.NullTime
}

func (r DateRange) isSet() bool {
	return r.From.Valid || r.To.Valid
}

func (r DateRange) cacheKey() string {
	bound := func(t sql.NullTime) string {
		if !t.Valid {
			return "-"
		}
		return t.Time.UTC().Format(constants.TimeFormatDate)
	}
	return bound(r.From) + ":" + bound(r.To)
}

// ExhibitionValueRow summarises the exposure of one exhibition.
type ExhibitionValueRow struct {
	ExhibitionID   int64   `json:"exhibitionId"`
	Name           string  `json:"name"`
	StartDate      string  `json:"startDate"`
	ArtworkCount   int64   `json:"artworkCount"`
	EstimatedValue float64 `json:"estimatedValue"`
	InsuredAmount  float64 `json:"insuredAmount"`
}

// ArtistInsuredRow ranks an artist by the insured amount of their exhibited work.
type ArtistInsuredRow struct {
	ArtistID      int64   `json:"artistId"`
	FullName      string  `json:"fullName"`
	ArtworkCount  int64   `json:"artworkCount"`
	InsuredAmount float64 `json:"insuredAmount"`
}

// MonthlyActivityRow aggregates exhibition activity per calendar month.
type MonthlyActivityRow struct {
	Year          int64   `json:"year"`
	Month         int64   `json:"month"`
	MonthName     string  `json:"monthName"`
	FactCount     int64   `json:"factCount"`
	InsuredAmount float64 `json:"insuredAmount"`
}

// Service runs the reporting queries, memoising results for the cache TTL.
type Service struct {
	log   logger.Logger
	db    shared.Connector
	caps  rdbms.Capabilities
	cache *Cache
}

func NewService(log logger.Logger, db shared.Connector, caps rdbms.Capabilities, ttl time.Duration) *Service {
	return &Service{log: log, db: db, caps: caps, cache: NewCache(ttl)}
}

// InvalidateCache drops memoised results, e.g. after a sync.
func (s *Service) InvalidateCache() {
	s.cache.Clear()
}

func (s *Service) require(tables ...string) error {
	for _, t := range tables {
		if !s.caps.HasTable(t) {
			return errors.Wrapf(ErrNotProvisioned, "missing table %v", t)
		}
	}
	return nil
}

// ExhibitionValueSummary reports artwork counts and value exposure per
// exhibition, ordered by insured amount descending. The optional date range is
// resolved through dim_date so the fact table is only ever filtered by its
// date_key, never by raw date text.
func (s *Service) ExhibitionValueSummary(ctx context.Context, dates DateRange) ([]ExhibitionValueRow, error) {
	required := []string{constants.TableFactArtworkExhibition, constants.TableDimExhibition}
	if dates.isSet() {
		required = append(required, constants.TableDimDate)
	}
	if err := s.require(required...); err != nil {
		return nil, err
	}
	key := "exhibition-value-summary:" + dates.cacheKey()
	if v, ok := s.cache.Get(key); ok {
		return v.([]ExhibitionValueRow), nil
	}
	query := `
		select e.exhibition_id, e.name, e.start_date,
			count(*), coalesce(sum(f.estimated_value), 0), sum(f.insured_amount)
		from fact_artwork_exhibition f
		join dim_exhibition e on e.exhibition_key = f.exhibition_key and e.is_current = 1`
	args := make([]interface{}, 0, 2)
	if dates.isSet() {
		query += `
		join dim_date d on d.date_key = f.date_key
		where 1=1`
		if dates.From.Valid {
			query += " and d.calendar_date >= ?"
			args = append(args, dates.From.Time.UTC().Format(constants.TimeFormatDate))
		}
		if dates.To.Valid {
			query += " and d.calendar_date <= ?"
			args = append(args, dates.To.Time.UTC().Format(constants.TimeFormatDate))
		}
	}
	query += `
		group by e.exhibition_id, e.name, e.start_date
		order by sum(f.insured_amount) desc, e.exhibition_id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "exhibition value summary query failed")
	}
	defer rows.Close()
	out := make([]ExhibitionValueRow, 0)
	for rows.Next() {
		var r ExhibitionValueRow
		if err := rows.Scan(&r.ExhibitionID, &r.Name, &r.StartDate, &r.ArtworkCount, &r.EstimatedValue, &r.InsuredAmount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.cache.Set(key, out)
	return out, nil
}

// TopArtistsByInsuredAmount ranks artists by the insured amount on their
// exhibited artworks. Limit is clamped to a sane range.
func (s *Service) TopArtistsByInsuredAmount(ctx context.Context, limit int) ([]ArtistInsuredRow, error) {
	if err := s.require(constants.TableFactArtworkExhibition, constants.TableDimArtist); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	key := fmt.Sprintf("top-artists:%v", limit)
	if v, ok := s.cache.Get(key); ok {
		return v.([]ArtistInsuredRow), nil
	}
	rows, err := s.db.QueryContext(ctx, `
		select a.artist_id, a.full_name, count(distinct f.artwork_key), sum(f.insured_amount)
		from fact_artwork_exhibition f
		join dim_artist a on a.artist_key = f.artist_key and a.is_current = 1
		group by a.artist_id, a.full_name
		order by sum(f.insured_amount) desc, a.artist_id
		limit ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "top artists query failed")
	}
	defer rows.Close()
	out := make([]ArtistInsuredRow, 0)
	for rows.Next() {
		var r ArtistInsuredRow
		if err := rows.Scan(&r.ArtistID, &r.FullName, &r.ArtworkCount, &r.InsuredAmount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.cache.Set(key, out)
	return out, nil
}

// MonthlyActivityTrend aggregates facts per month for one year.
func (s *Service) MonthlyActivityTrend(ctx context.Context, year int) ([]MonthlyActivityRow, error) {
	if err := s.require(constants.TableFactArtworkExhibition, constants.TableDimDate); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("monthly-activity:%v", year)
	if v, ok := s.cache.Get(key); ok {
		return v.([]MonthlyActivityRow), nil
	}
	rows, err := s.db.QueryContext(ctx, `
		select d.year, d.month, d.month_name, count(*), sum(f.insured_amount)
		from fact_artwork_exhibition f
		join dim_date d on d.date_key = f.date_key
		where d.year = ?
		group by d.year, d.month, d.month_name
		order by d.month`, year)
	if err != nil {
		return nil, errors.Wrap(err, "monthly activity query failed")
	}
	defer rows.Close()
	out := make([]MonthlyActivityRow, 0)
	for rows.Next() {
		var r MonthlyActivityRow
		if err := rows.Scan(&r.Year, &r.Month, &r.MonthName, &r.FactCount, &r.InsuredAmount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.cache.Set(key, out)
	return out, nil
}
