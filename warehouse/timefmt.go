package warehouse

import (
	"database/sql"
	"time"

	"github.com/gallerops/dwpipe/constants"
)

// Temporal columns are stored as ISO-formatted text in both the OLTP source
// and the warehouse so the same SQL works across MySQL and SQLite and text
// comparison matches time ordering.

func formatTime(t time.Time) string {
	return t.UTC().Format(constants.TimeFormatTimestamp)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(constants.TimeFormatTimestamp, s, time.UTC)
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(constants.TimeFormatDate, s, time.UTC)
}

// formatNullTime returns nil for invalid times so NULLs stay NULLs.
func formatNullTime(t sql.NullTime) interface{} {
	if !t.Valid {
		return nil
	}
	return formatTime(t.Time)
}

func parseNullTime(s sql.NullString) (sql.NullTime, error) {
	if !s.Valid || s.String == "" {
		return sql.NullTime{}, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		// Date-only values appear where the source stores calendar dates.
		t, err = parseDate(s.String)
		if err != nil {
			return sql.NullTime{}, err
		}
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

// nullStringArg converts a NullString to a bind value that keeps NULL as NULL.
func nullStringArg(s sql.NullString) interface{} {
	if !s.Valid {
		return nil
	}
	return s.String
}

func nullInt64Arg(i sql.NullInt64) interface{} {
	if !i.Valid {
		return nil
	}
	return i.Int64
}

func nullFloat64Arg(f sql.NullFloat64) interface{} {
	if !f.Valid {
		return nil
	}
	return f.Float64
}

// stringOrUnknown applies the default descriptive label where the source
// attribute is null.
func stringOrUnknown(s sql.NullString) string {
	if !s.Valid || s.String == "" {
		return constants.DefaultUnknownLabel
	}
	return s.String
}
