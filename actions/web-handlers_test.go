package actions

import (
	"net/http/httptest"
	"testing"
)

func TestParseDateRange(t *testing.T) {
	r := httptest.NewRequest("GET", "/reports/exhibition-value?from=2026-03-01&to=2026-06-30", nil)
	dates, err := parseDateRange(r)
	if err != nil {
		t.Fatal(err)
	}
	if !dates.From.Valid || dates.From.Time.Format("2006-01-02") != "2026-03-01" {
		t.Fatalf("unexpected lower bound: %+v", dates.From)
	}
	if !dates.To.Valid || dates.To.Time.Format("2006-01-02") != "2026-06-30" {
		t.Fatalf("unexpected upper bound: %+v", dates.To)
	}

	r = httptest.NewRequest("GET", "/reports/exhibition-value", nil)
	dates, err = parseDateRange(r)
	if err != nil {
		t.Fatal(err)
	}
	if dates.From.Valid || dates.To.Valid {
		t.Fatalf("expected an unset range, got %+v", dates)
	}

	r = httptest.NewRequest("GET", "/reports/exhibition-value?from=03/01/2026", nil)
	if _, err = parseDateRange(r); err == nil {
		t.Fatal("expected an error for a malformed date")
	}
}
