package warehouse

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/gallerops/dwpipe/constants"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

func testLogger() logger.Logger {
	l := logrus.New()
	l.SetOutput(ioutil.Discard)
	return l
}

func openTestDb(t *testing.T, name string) shared.Connector {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	db, err := rdbms.OpenDbConnectionFromDsn(testLogger(), "sqlite:"+path)
	if err != nil {
		t.Fatal("unable to open test database: ", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestSource(t *testing.T) shared.Connector {
	t.Helper()
	db := openTestDb(t, "source.db")
	ctx := context.Background()
	if err := CreateSourceTables(ctx, testLogger(), db); err != nil {
		t.Fatal(err)
	}
	if err := SeedDemoSource(ctx, testLogger(), db); err != nil {
		t.Fatal(err)
	}
	return db
}

func newTestTarget(t *testing.T) shared.Connector {
	t.Helper()
	db := openTestDb(t, "target.db")
	if err := CreateWarehouseTables(context.Background(), testLogger(), db); err != nil {
		t.Fatal(err)
	}
	return db
}

func mustExec(t *testing.T, db shared.Connector, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.ExecContext(context.Background(), query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func countRows(t *testing.T, db shared.Connector, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.QueryRowContext(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}

func runPropagation(t *testing.T, src, tgt shared.Connector, mode string) *PropagationResult {
	t.Helper()
	runner := NewRunner(&RunnerConfig{Log: testLogger(), Source: src, Target: tgt, Mode: mode})
	return runner.RunPropagation(context.Background())
}

func runFull(t *testing.T, src, tgt shared.Connector) *PropagationResult {
	t.Helper()
	result := runPropagation(t, src, tgt, constants.RunModeFull)
	if result.Status != constants.RunStatusSuccess {
		t.Fatalf("full run failed: %+v", result.Errors)
	}
	return result
}

func probeTarget(t *testing.T, db shared.Connector) rdbms.Capabilities {
	t.Helper()
	tables := append(append([]string{}, WarehouseTables...), constants.TableEtlRunLog)
	return rdbms.ProbeTables(testLogger(), db, tables)
}
