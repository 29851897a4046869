package analytics

import (
	"context"
	"database/sql"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gallerops/dwpipe/constants"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms"
	"github.com/gallerops/dwpipe/rdbms/shared"
	"github.com/gallerops/dwpipe/warehouse"
)

func testLogger() logger.Logger {
	l := logrus.New()
	l.SetOutput(ioutil.Discard)
	return l
}

// newLoadedWarehouse builds a target populated from the demo source.
func newLoadedWarehouse(t *testing.T) shared.Connector {
	t.Helper()
	ctx := context.Background()
	openDb := func(name string) shared.Connector {
		db, err := rdbms.OpenDbConnectionFromDsn(testLogger(), "sqlite:"+filepath.Join(t.TempDir(), name))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { db.Close() })
		return db
	}
	src := openDb("source.db")
	if err := warehouse.CreateSourceTables(ctx, testLogger(), src); err != nil {
		t.Fatal(err)
	}
	if err := warehouse.SeedDemoSource(ctx, testLogger(), src); err != nil {
		t.Fatal(err)
	}
	tgt := openDb("target.db")
	if err := warehouse.CreateWarehouseTables(ctx, testLogger(), tgt); err != nil {
		t.Fatal(err)
	}
	runner := warehouse.NewRunner(&warehouse.RunnerConfig{Log: testLogger(), Source: src, Target: tgt, Mode: constants.RunModeFull})
	if result := runner.RunPropagation(ctx); result.Status != constants.RunStatusSuccess {
		t.Fatalf("propagation failed: %+v", result.Errors)
	}
	return tgt
}

func newTestService(t *testing.T, db shared.Connector) *Service {
	t.Helper()
	caps := rdbms.ProbeTables(testLogger(), db, warehouse.WarehouseTables)
	return NewService(testLogger(), db, caps, 5*time.Minute)
}

func TestExhibitionValueSummary(t *testing.T) {
	db := newLoadedWarehouse(t)
	svc := newTestService(t, db)

	rows, err := svc.ExhibitionValueSummary(context.Background(), DateRange{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatal("expected 2 exhibitions, got ", len(rows))
	}
	// Northern Light carries the insured artworks, so it ranks first.
	if rows[0].ExhibitionID != 1 || rows[0].ArtworkCount != 2 {
		t.Fatalf("unexpected top exhibition: %+v", rows[0])
	}
	if rows[0].InsuredAmount != 390000 { // 300000 + 90000
		t.Fatal("expected insured total 390000, got ", rows[0].InsuredAmount)
	}
}

func TestExhibitionValueSummaryDateRange(t *testing.T) {
	db := newLoadedWarehouse(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	day := func(s string) sql.NullTime {
		d, err := time.Parse(constants.TimeFormatDate, s)
		if err != nil {
			t.Fatal(err)
		}
		return sql.NullTime{Time: d, Valid: true}
	}

	// Only the June exhibition starts on or after 2026-06-01.
	rows, err := svc.ExhibitionValueSummary(ctx, DateRange{From: day("2026-06-01")})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ExhibitionID != 2 {
		t.Fatalf("expected only the June exhibition, got %+v", rows)
	}

	// An upper bound keeps only the March exhibition.
	rows, err = svc.ExhibitionValueSummary(ctx, DateRange{To: day("2026-03-31")})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ExhibitionID != 1 {
		t.Fatalf("expected only the March exhibition, got %+v", rows)
	}

	// Bounded and unbounded results are cached independently.
	all, err := svc.ExhibitionValueSummary(ctx, DateRange{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatal("expected the unbounded summary to keep both exhibitions, got ", len(all))
	}

	// A range covering no exhibition dates yields an empty report.
	rows, err = svc.ExhibitionValueSummary(ctx, DateRange{From: day("2027-01-01"), To: day("2027-12-31")})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no exhibitions in 2027, got %+v", rows)
	}
}

func TestTopArtistsByInsuredAmount(t *testing.T) {
	db := newLoadedWarehouse(t)
	svc := newTestService(t, db)

	rows, err := svc.TopArtistsByInsuredAmount(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatal("expected 2 artists, got ", len(rows))
	}
	if rows[0].ArtistID != 1 || rows[0].InsuredAmount != 300000 {
		t.Fatalf("unexpected leader: %+v", rows[0])
	}
}

func TestTopArtistsClampsBadLimit(t *testing.T) {
	db := newLoadedWarehouse(t)
	svc := newTestService(t, db)
	if _, err := svc.TopArtistsByInsuredAmount(context.Background(), -3); err != nil {
		t.Fatal(err)
	}
}

func TestMonthlyActivityTrend(t *testing.T) {
	db := newLoadedWarehouse(t)
	svc := newTestService(t, db)

	rows, err := svc.MonthlyActivityTrend(context.Background(), 2026)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 { // March and June exhibitions
		t.Fatalf("expected 2 active months, got %+v", rows)
	}
	if rows[0].Month != 3 || rows[0].FactCount != 2 {
		t.Fatalf("unexpected first month: %+v", rows[0])
	}
	if rows[1].Month != 6 || rows[1].MonthName != "June" {
		t.Fatalf("unexpected second month: %+v", rows[1])
	}
}

func TestReportsAreCachedUntilInvalidated(t *testing.T) {
	db := newLoadedWarehouse(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	before, err := svc.ExhibitionValueSummary(ctx, DateRange{})
	if err != nil {
		t.Fatal(err)
	}
	// Mutate the warehouse behind the cache's back.
	if _, err := db.ExecContext(ctx, "delete from fact_artwork_exhibition"); err != nil {
		t.Fatal(err)
	}
	cached, err := svc.ExhibitionValueSummary(ctx, DateRange{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != len(before) {
		t.Fatal("expected the cached result inside the TTL")
	}
	svc.InvalidateCache()
	fresh, err := svc.ExhibitionValueSummary(ctx, DateRange{})
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 0 {
		t.Fatal("expected a fresh empty result after invalidation, got ", len(fresh))
	}
}

func TestUnprovisionedWarehouseIsReported(t *testing.T) {
	db, err := rdbms.OpenDbConnectionFromDsn(testLogger(), "sqlite:"+filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	svc := newTestService(t, db)
	_, err = svc.ExhibitionValueSummary(context.Background(), DateRange{})
	if !errors.Is(err, ErrNotProvisioned) {
		t.Fatal("expected ErrNotProvisioned, got ", err)
	}
}
