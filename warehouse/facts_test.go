package warehouse

import (
	"context"
	"testing"
)

func TestFactRowsAreUniquePerPairing(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	runFull(t, src, tgt)
	runFull(t, src, tgt) // re-running must update in place

	total := countRows(t, tgt, "select count(*) from fact_artwork_exhibition")
	distinct := countRows(t, tgt, "select count(*) from (select distinct artwork_id, exhibition_id from fact_artwork_exhibition)")
	if total != 4 || total != distinct {
		t.Fatalf("expected 4 unique facts, got total=%v distinct=%v", total, distinct)
	}
}

func TestInsuredAmountSumsAcrossPolicies(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	runFull(t, src, tgt)

	// Artwork 1 carries two policies: 250000 + 50000.
	var insured float64
	err := tgt.QueryRowContext(context.Background(),
		"select insured_amount from fact_artwork_exhibition where artwork_id = 1").Scan(&insured)
	if err != nil {
		t.Fatal(err)
	}
	if insured != 300000 {
		t.Fatal("expected insured amount 300000, got ", insured)
	}
	// Artwork 2 has no insurance at all.
	err = tgt.QueryRowContext(context.Background(),
		"select insured_amount from fact_artwork_exhibition where artwork_id = 2").Scan(&insured)
	if err != nil {
		t.Fatal(err)
	}
	if insured != 0 {
		t.Fatal("uninsured artwork should total zero, got ", insured)
	}
}

func TestLoanFlagAndCounts(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	runFull(t, src, tgt)

	var loanFlag, restorations, reviews int64
	err := tgt.QueryRowContext(context.Background(),
		"select loan_flag, restoration_count, review_count from fact_artwork_exhibition where artwork_id = 3").
		Scan(&loanFlag, &restorations, &reviews)
	if err != nil {
		t.Fatal(err)
	}
	if loanFlag != 1 {
		t.Fatal("artwork 3 is on loan, expected loan_flag 1")
	}
	err = tgt.QueryRowContext(context.Background(),
		"select loan_flag, restoration_count, review_count from fact_artwork_exhibition where artwork_id = 1").
		Scan(&loanFlag, &restorations, &reviews)
	if err != nil {
		t.Fatal(err)
	}
	if loanFlag != 0 || restorations != 2 || reviews != 2 {
		t.Fatalf("unexpected measures for artwork 1: loan=%v restorations=%v reviews=%v", loanFlag, restorations, reviews)
	}
}

func TestFactDateKeyMatchesExhibitionStart(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	runFull(t, src, tgt)

	var dateKey int64
	err := tgt.QueryRowContext(context.Background(),
		"select date_key from fact_artwork_exhibition where exhibition_id = 1 limit 1").Scan(&dateKey)
	if err != nil {
		t.Fatal(err)
	}
	if dateKey != 20260301 {
		t.Fatal("expected date key 20260301, got ", dateKey)
	}
	if n := countRows(t, tgt, "select count(*) from dim_date where date_key = ?", dateKey); n != 1 {
		t.Fatal("fact date key must resolve to a dim_date row")
	}
}

func TestFactMeasuresRefreshOnRerun(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	runFull(t, src, tgt)

	mustExec(t, src, "insert into insurance (id, artwork_id, policy_id, insured_amount, start_date, end_date, updated_at) values (4, 2, 1, 18000.0, '2026-03-01 00:00:00', null, '2026-03-01 00:00:00')")
	runFull(t, src, tgt)

	var insured float64
	err := tgt.QueryRowContext(context.Background(),
		"select insured_amount from fact_artwork_exhibition where artwork_id = 2").Scan(&insured)
	if err != nil {
		t.Fatal(err)
	}
	if insured != 18000 {
		t.Fatal("expected refreshed insured amount 18000, got ", insured)
	}
}
