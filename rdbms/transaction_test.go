package rdbms

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gallerops/dwpipe/logger"
)

func TestTransactionCommitAndRollback(t *testing.T) {
	log := logger.NewLogger("tx-test", "error", false)
	path := filepath.Join(t.TempDir(), "tx.db")
	db, err := OpenDbConnectionFromDsn(log, "sqlite:"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.Exec("create table dim_artist (artist_key integer primary key, full_name text)"); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	tx, err := db.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tx.ExecContext(ctx, "insert into dim_artist (artist_key, full_name) values (?, ?)", 1, "Rolled Back"); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := db.QueryRow("select count(*) from dim_artist").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatal("expected the rolled back insert to vanish, got ", n, " rows")
	}

	tx, err = db.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tx.ExecContext(ctx, "insert into dim_artist (artist_key, full_name) values (?, ?)", 1, "Committed"); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("select count(*) from dim_artist").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatal("expected the committed insert to persist, got ", n, " rows")
	}
}
