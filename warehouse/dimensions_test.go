package warehouse

import (
	"context"
	"database/sql"
	"testing"
	"time"
)

func TestScd2FirstLoadInsertsCurrentRow(t *testing.T) {
	db := newTestTarget(t)
	ctx := context.Background()
	loadTime := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	ups := NewUpserter(testLogger(), db, probeTarget(t, db), loadTime)

	n, err := ups.LoadArtists(ctx, []Artist{{ID: 7, FullName: "Ada Vermeer"}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatal("expected 1 record processed, got ", n)
	}
	if c := countRows(t, db, "select count(*) from dim_artist where artist_id = 7 and is_current = 1"); c != 1 {
		t.Fatal("expected one current row, got ", c)
	}
	var nationality string
	if err := db.QueryRowContext(ctx, "select nationality from dim_artist where artist_id = 7").Scan(&nationality); err != nil {
		t.Fatal(err)
	}
	if nationality != "Unknown" {
		t.Fatal("null nationality should default to Unknown, got ", nationality)
	}
}

func TestScd2UnchangedRecordIsNoOp(t *testing.T) {
	db := newTestTarget(t)
	ctx := context.Background()
	caps := probeTarget(t, db)
	artist := Artist{ID: 7, FullName: "Ada Vermeer", Nationality: sql.NullString{String: "Dutch", Valid: true}}

	first := NewUpserter(testLogger(), db, caps, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
	if _, err := first.LoadArtists(ctx, []Artist{artist}); err != nil {
		t.Fatal(err)
	}
	second := NewUpserter(testLogger(), db, caps, time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC))
	if _, err := second.LoadArtists(ctx, []Artist{artist}); err != nil {
		t.Fatal(err)
	}
	if c := countRows(t, db, "select count(*) from dim_artist where artist_id = 7"); c != 1 {
		t.Fatal("re-running an unchanged record must not version, got ", c, " rows")
	}
}

func TestScd2ChangeClosesOldVersion(t *testing.T) {
	db := newTestTarget(t)
	ctx := context.Background()
	caps := probeTarget(t, db)
	firstLoad := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	secondLoad := time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)

	first := NewUpserter(testLogger(), db, caps, firstLoad)
	if _, err := first.LoadArtists(ctx, []Artist{{ID: 7, FullName: "Ada Vermeer"}}); err != nil {
		t.Fatal(err)
	}
	second := NewUpserter(testLogger(), db, caps, secondLoad)
	if _, err := second.LoadArtists(ctx, []Artist{{ID: 7, FullName: "Ada Vermeer-Smit"}}); err != nil {
		t.Fatal(err)
	}

	if c := countRows(t, db, "select count(*) from dim_artist where artist_id = 7"); c != 2 {
		t.Fatal("expected two versions, got ", c)
	}
	if c := countRows(t, db, "select count(*) from dim_artist where artist_id = 7 and is_current = 1"); c != 1 {
		t.Fatal("expected exactly one current version, got ", c)
	}
	// The closed version ends exactly where the new one starts.
	var closedEnd, openStart string
	err := db.QueryRowContext(ctx,
		"select effective_end from dim_artist where artist_id = 7 and is_current = 0").Scan(&closedEnd)
	if err != nil {
		t.Fatal(err)
	}
	err = db.QueryRowContext(ctx,
		"select effective_start from dim_artist where artist_id = 7 and is_current = 1").Scan(&openStart)
	if err != nil {
		t.Fatal(err)
	}
	if closedEnd != openStart {
		t.Fatalf("version intervals must be contiguous: closed ends %q, open starts %q", closedEnd, openStart)
	}
	var name string
	if err := db.QueryRowContext(ctx, "select full_name from dim_artist where artist_id = 7 and is_current = 1").Scan(&name); err != nil {
		t.Fatal(err)
	}
	if name != "Ada Vermeer-Smit" {
		t.Fatal("current version should carry the new attributes, got ", name)
	}
}

func TestType1OverwritesInPlace(t *testing.T) {
	db := newTestTarget(t)
	ctx := context.Background()
	ups := NewUpserter(testLogger(), db, probeTarget(t, db), time.Now().UTC())

	if _, err := ups.LoadCollections(ctx, []Collection{{ID: 3, Name: "Sculpture", Category: sql.NullString{String: "3D", Valid: true}}}); err != nil {
		t.Fatal(err)
	}
	if _, err := ups.LoadCollections(ctx, []Collection{{ID: 3, Name: "Modern Sculpture", Category: sql.NullString{String: "3D", Valid: true}}}); err != nil {
		t.Fatal(err)
	}
	if c := countRows(t, db, "select count(*) from dim_collection where collection_id = 3"); c != 1 {
		t.Fatal("type 1 dimensions never version, got ", c, " rows")
	}
	var name string
	var key int64
	if err := db.QueryRowContext(ctx, "select collection_key, name from dim_collection where collection_id = 3").Scan(&key, &name); err != nil {
		t.Fatal(err)
	}
	if key != 3 || name != "Modern Sculpture" {
		t.Fatalf("expected key 3 with overwritten name, got key=%v name=%v", key, name)
	}
}

func TestArtworkRequiresCurrentArtist(t *testing.T) {
	db := newTestTarget(t)
	ups := NewUpserter(testLogger(), db, probeTarget(t, db), time.Now().UTC())
	_, err := ups.LoadArtworks(context.Background(), []Artwork{{ID: 1, Title: "Untitled", ArtistID: 99}})
	if err == nil {
		t.Fatal("expected an error for an artwork referencing an unknown artist")
	}
}

func TestMissingLocationTableStoresNullReference(t *testing.T) {
	db := newTestTarget(t)
	ctx := context.Background()
	mustExec(t, db, "drop table dim_location")
	caps := probeTarget(t, db)
	ups := NewUpserter(testLogger(), db, caps, time.Now().UTC())

	if _, err := ups.LoadArtists(ctx, []Artist{{ID: 1, FullName: "Ada Vermeer"}}); err != nil {
		t.Fatal(err)
	}
	artwork := Artwork{ID: 5, Title: "Dune", ArtistID: 1, LocationID: sql.NullInt64{Int64: 4, Valid: true}}
	if _, err := ups.LoadArtworks(ctx, []Artwork{artwork}); err != nil {
		t.Fatal(err)
	}
	if c := countRows(t, db, "select count(*) from dim_artwork where artwork_id = 5 and location_key is null"); c != 1 {
		t.Fatal("expected a null location reference when dim_location is absent")
	}
}

func TestLoadStopsOnCancelledContext(t *testing.T) {
	db := newTestTarget(t)
	ups := NewUpserter(testLogger(), db, probeTarget(t, db), time.Now().UTC())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ups.LoadArtists(ctx, []Artist{{ID: 1, FullName: "Ada Vermeer"}}); err == nil {
		t.Fatal("expected a context error")
	}
	if c := countRows(t, db, "select count(*) from dim_artist"); c != 0 {
		t.Fatal("no rows should be written after cancellation, got ", c)
	}
}
