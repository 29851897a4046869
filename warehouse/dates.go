package warehouse

import (
	"context"
	"time"

	"github.com/gallerops/dwpipe/constants"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

// DateKey returns the deterministic integer encoding of a calendar date used
// by every fact row and analytical query: YYYY*10000 + MM*100 + DD.
func DateKey(t time.Time) int64 {
	t = t.UTC()
	return int64(t.Year())*10000 + int64(t.Month())*100 + int64(t.Day())
}

// DateForKey is the inverse of DateKey. It does not validate that the
// components form a real calendar date.
func DateForKey(key int64) time.Time {
	year := int(key / 10000)
	month := time.Month((key / 100) % 100)
	day := int(key % 100)
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

var monthNames = []string{"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December"}

var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// EnsureDate inserts the dim_date row for the supplied date if it is missing,
// so that fact rows and SCD2 boundary dates always resolve to an existing
// date-dimension row.
func EnsureDate(ctx context.Context, log logger.Logger, db shared.Connector, t time.Time) (int64, error) {
	key := DateKey(t)
	var count int
	err := db.QueryRowContext(ctx, "select count(*) from "+constants.TableDimDate+" where date_key = ?", key).Scan(&count)
	if err != nil {
		return 0, err
	}
	if count > 0 { // if the date row already exists...
		return key, nil
	}
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	month := int(day.Month())
	quarter := (month-1)/3 + 1
	dayOfWeek := int(day.Weekday()) + 1 // 1=Sunday, 7=Saturday
	isWeekend := 0
	if dayOfWeek == 1 || dayOfWeek == 7 {
		isWeekend = 1
	}
	log.Debug("inserting date dimension row for key ", key)
	_, err = db.ExecContext(ctx, `insert into `+constants.TableDimDate+`
		(date_key, calendar_date, year, quarter, month, month_name, day_of_month, day_of_week, day_name, is_weekend)
		values (?,?,?,?,?,?,?,?,?,?)`,
		key,
		day.Format(constants.TimeFormatDate),
		day.Year(),
		quarter,
		month,
		monthNames[month-1],
		day.Day(),
		dayOfWeek,
		dayNames[dayOfWeek-1],
		isWeekend,
	)
	if err != nil {
		return 0, err
	}
	return key, nil
}
