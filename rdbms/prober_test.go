package rdbms

import (
	"path/filepath"
	"testing"

	"github.com/gallerops/dwpipe/logger"
)

func TestTableExists(t *testing.T) {
	log := logger.NewLogger("prober-test", "error", false)
	path := filepath.Join(t.TempDir(), "probe.db")
	db, err := OpenDbConnectionFromDsn(log, "sqlite:"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.Exec("create table dim_artist (artist_key integer primary key)"); err != nil {
		t.Fatal(err)
	}

	if !TableExists(log, db, "dim_artist") {
		t.Fatal("expected dim_artist to exist")
	}
	if TableExists(log, db, "dim_location") {
		t.Fatal("expected dim_location to be absent")
	}
}

func TestProbeTables(t *testing.T) {
	log := logger.NewLogger("prober-test", "error", false)
	path := filepath.Join(t.TempDir(), "probe.db")
	db, err := OpenDbConnectionFromDsn(log, "sqlite:"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.Exec("create table dim_artist (artist_key integer primary key)"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("create table dim_artwork (artwork_key integer primary key)"); err != nil {
		t.Fatal(err)
	}

	caps := ProbeTables(log, db, []string{"dim_artist", "dim_artwork", "dim_location"})
	if !caps.HasTable("dim_artist") || !caps.HasTable("dim_artwork") {
		t.Fatal("expected created tables to be reported present")
	}
	if caps.HasTable("dim_location") {
		t.Fatal("expected dim_location to be reported absent")
	}
}
