package warehouse

import (
	"context"
	"testing"
	"time"
)

func TestDateKeyEncoding(t *testing.T) {
	d := time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC)
	key := DateKey(d)
	if key != 20260301 {
		t.Fatal("unexpected date key: ", key)
	}
	back := DateForKey(key)
	if back.Year() != 2026 || back.Month() != time.March || back.Day() != 1 {
		t.Fatal("round trip mismatch: ", back)
	}
}

func TestDateKeyUsesUtc(t *testing.T) {
	loc := time.FixedZone("west", -5*3600)
	d := time.Date(2026, 3, 1, 22, 0, 0, 0, loc) // 2026-03-02 in UTC.
	if key := DateKey(d); key != 20260302 {
		t.Fatal("expected UTC conversion, got key ", key)
	}
}

func TestEnsureDate(t *testing.T) {
	db := newTestTarget(t)
	ctx := context.Background()
	sunday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	key, err := EnsureDate(ctx, testLogger(), db, sunday)
	if err != nil {
		t.Fatal(err)
	}
	// Calling again must not duplicate the row.
	if _, err := EnsureDate(ctx, testLogger(), db, sunday); err != nil {
		t.Fatal(err)
	}
	if n := countRows(t, db, "select count(*) from dim_date where date_key = ?", key); n != 1 {
		t.Fatal("expected one dim_date row, got ", n)
	}
	var quarter, dayOfWeek, isWeekend int
	var monthName string
	err = db.QueryRowContext(ctx, "select quarter, day_of_week, is_weekend, month_name from dim_date where date_key = ?", key).
		Scan(&quarter, &dayOfWeek, &isWeekend, &monthName)
	if err != nil {
		t.Fatal(err)
	}
	if quarter != 1 || dayOfWeek != 1 || isWeekend != 1 || monthName != "March" {
		t.Fatalf("bad date attributes: quarter=%v dayOfWeek=%v isWeekend=%v monthName=%v", quarter, dayOfWeek, isWeekend, monthName)
	}
}
