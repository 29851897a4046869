package warehouse

import (
	"context"
	"testing"

	"github.com/gallerops/dwpipe/constants"
)

func tableResult(t *testing.T, result *PropagationResult, table string) TableResult {
	t.Helper()
	for _, r := range result.PerTableResults {
		if r.Table == table {
			return r
		}
	}
	t.Fatal("no result recorded for table ", table)
	return TableResult{}
}

func TestFullRunLoadsEveryTable(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	result := runFull(t, src, tgt)

	if len(result.PerTableResults) != 11 {
		t.Fatal("expected 11 stage results, got ", len(result.PerTableResults))
	}
	for _, r := range result.PerTableResults {
		if r.Status != constants.TableStatusLoaded {
			t.Fatalf("table %v status %v", r.Table, r.Status)
		}
	}
	if r := tableResult(t, result, constants.TableDimArtist); r.RecordsProcessed != 3 {
		t.Fatal("expected 3 artists, got ", r.RecordsProcessed)
	}
	if r := tableResult(t, result, constants.TableFactArtworkExhibition); r.RecordsProcessed != 4 {
		t.Fatal("expected 4 facts, got ", r.RecordsProcessed)
	}
	if result.RunID == "" || result.DurationMs < 0 {
		t.Fatal("missing run bookkeeping fields")
	}
	if n := countRows(t, tgt, "select count(*) from etl_run_log where status = ?", constants.RunStatusSuccess); n != 1 {
		t.Fatal("expected one successful run-log row, got ", n)
	}
}

func TestRerunIsIdempotent(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	runFull(t, src, tgt)

	dims := countRows(t, tgt, "select count(*) from dim_artist")
	facts := countRows(t, tgt, "select count(*) from fact_artwork_exhibition")

	runFull(t, src, tgt)
	if n := countRows(t, tgt, "select count(*) from dim_artist"); n != dims {
		t.Fatal("artist rows changed on identical re-run: ", n)
	}
	if n := countRows(t, tgt, "select count(*) from fact_artwork_exhibition"); n != facts {
		t.Fatal("fact rows changed on identical re-run: ", n)
	}
	if n := countRows(t, tgt, "select count(*) from dim_artist where is_current = 1"); n != dims {
		t.Fatal("every artist should still have exactly one current row")
	}
}

func TestMissingTableIsSkippedNotFatal(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	mustExec(t, tgt, "drop table dim_location")
	result := runPropagation(t, src, tgt, constants.RunModeFull)

	if result.Status != constants.RunStatusSuccess {
		t.Fatalf("missing dimension should not fail the run: %+v", result.Errors)
	}
	if r := tableResult(t, result, constants.TableDimLocation); r.Status != constants.TableStatusSkipped {
		t.Fatal("expected dim_location to be skipped, got ", r.Status)
	}
	// Artworks still load, with null location references.
	if r := tableResult(t, result, constants.TableDimArtwork); r.Status != constants.TableStatusLoaded {
		t.Fatal("artworks should still load, got ", r.Status)
	}
	if n := countRows(t, tgt, "select count(*) from dim_artwork where location_key is not null"); n != 0 {
		t.Fatal("expected all location references to be null, got ", n, " set")
	}
}

func TestDependentStageSkipsWithItsPrerequisite(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	mustExec(t, tgt, "drop table dim_exhibition")
	result := runPropagation(t, src, tgt, constants.RunModeFull)

	if result.Status != constants.RunStatusSuccess {
		t.Fatalf("unexpected failure: %+v", result.Errors)
	}
	if r := tableResult(t, result, constants.TableFactArtworkExhibition); r.Status != constants.TableStatusSkipped {
		t.Fatal("facts need dim_exhibition and should skip, got ", r.Status)
	}
}

func TestUnreachableSourceAbortsBeforeLoading(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	src.Close()
	result := runPropagation(t, src, tgt, constants.RunModeFull)

	if result.Status != constants.RunStatusError {
		t.Fatal("expected Error status for an unreachable source")
	}
	if len(result.PerTableResults) != 0 {
		t.Fatal("no stage should run when the source is unreachable")
	}
	if len(result.Errors) == 0 {
		t.Fatal("expected a recorded error")
	}
}

func TestStageFailureSkipsDependentsOnly(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	// Break the artist stage from the target side.
	mustExec(t, tgt, "drop table dim_artist")
	mustExec(t, tgt, "create table dim_artist (wrong_column integer)")
	result := runPropagation(t, src, tgt, constants.RunModeFull)

	if result.Status != constants.RunStatusError {
		t.Fatal("expected Error status")
	}
	if r := tableResult(t, result, constants.TableDimArtist); r.Status != constants.TableStatusError || r.Error == "" {
		t.Fatalf("expected an artist stage error, got %+v", r)
	}
	// Stages that read artist keys sit out; the rest of the run proceeds.
	if r := tableResult(t, result, constants.TableDimArtwork); r.Status != constants.TableStatusSkipped {
		t.Fatalf("expected dim_artwork to be skipped, got %+v", r)
	}
	if r := tableResult(t, result, constants.TableFactArtworkExhibition); r.Status != constants.TableStatusSkipped {
		t.Fatalf("expected the fact stage to be skipped, got %+v", r)
	}
	if r := tableResult(t, result, constants.TableDimVisitor); r.Status != constants.TableStatusLoaded {
		t.Fatalf("expected independent stages to still load, got %+v", r)
	}
	if len(result.PerTableResults) != 11 {
		t.Fatal("expected every stage to report a result, got ", len(result.PerTableResults))
	}
	if n := countRows(t, tgt, "select count(*) from etl_run_log where status = ?", constants.RunStatusError); n != 1 {
		t.Fatal("expected the failed run to be recorded")
	}
}

func TestIncrementalRunUsesWatermark(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	runFull(t, src, tgt)

	// A record newer than the first run's start should be the only one read.
	mustExec(t, src, "insert into artists (id, full_name, nationality, birth_year, death_year, updated_at) values (9, 'New Artist', 'Finnish', 1980, null, '2999-01-01 00:00:00')")
	result := runPropagation(t, src, tgt, constants.RunModeIncremental)
	if result.Status != constants.RunStatusSuccess {
		t.Fatalf("incremental run failed: %+v", result.Errors)
	}
	if r := tableResult(t, result, constants.TableDimArtist); r.RecordsProcessed != 1 {
		t.Fatal("expected only the new artist to be read, got ", r.RecordsProcessed)
	}
	if n := countRows(t, tgt, "select count(*) from dim_artist where artist_id = 9 and is_current = 1"); n != 1 {
		t.Fatal("new artist should be present in the dimension")
	}
}

func TestIncrementalNewArtworkThenFullIsStable(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	runFull(t, src, tgt)
	artistsBefore := countRows(t, tgt, "select count(*) from dim_artist")

	// A new artwork referencing an existing artist arrives after the first run.
	mustExec(t, src, "insert into artworks (id, title, artist_id, creation_year, medium, collection_id, location_id, estimated_value, updated_at) values (9, 'Late Arrival', 2, 2025, 'Oil', null, null, 12000, '2999-01-01 00:00:00')")
	result := runPropagation(t, src, tgt, constants.RunModeIncremental)
	if result.Status != constants.RunStatusSuccess {
		t.Fatalf("incremental run failed: %+v", result.Errors)
	}
	if r := tableResult(t, result, constants.TableDimArtwork); r.RecordsProcessed != 1 {
		t.Fatal("expected only the new artwork to be read, got ", r.RecordsProcessed)
	}
	if n := countRows(t, tgt, "select count(*) from dim_artwork where artwork_id = 9 and is_current = 1"); n != 1 {
		t.Fatal("new artwork should have a current dimension row")
	}
	if n := countRows(t, tgt, "select count(*) from dim_artist"); n != artistsBefore {
		t.Fatal("unchanged artists should not gain rows, got ", n)
	}

	// A follow-up full run re-reads everything but changes nothing.
	artworksAfter := countRows(t, tgt, "select count(*) from dim_artwork")
	factsAfter := countRows(t, tgt, "select count(*) from fact_artwork_exhibition")
	runFull(t, src, tgt)
	if n := countRows(t, tgt, "select count(*) from dim_artwork"); n != artworksAfter {
		t.Fatal("full re-run should not add artwork rows, got ", n)
	}
	if n := countRows(t, tgt, "select count(*) from dim_artist"); n != artistsBefore {
		t.Fatal("full re-run should not add artist rows, got ", n)
	}
	if n := countRows(t, tgt, "select count(*) from fact_artwork_exhibition"); n != factsAfter {
		t.Fatal("full re-run should not add fact rows, got ", n)
	}
}

func TestIncrementalWithoutHistoryReadsEverything(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	result := runPropagation(t, src, tgt, constants.RunModeIncremental)
	if result.Status != constants.RunStatusSuccess {
		t.Fatalf("run failed: %+v", result.Errors)
	}
	if r := tableResult(t, result, constants.TableDimArtist); r.RecordsProcessed != 3 {
		t.Fatal("first incremental run should behave like a full read, got ", r.RecordsProcessed)
	}
}

func TestCancelledContextAbortsRun(t *testing.T) {
	src := newTestSource(t)
	tgt := newTestTarget(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := NewRunner(&RunnerConfig{Log: testLogger(), Source: src, Target: tgt, Mode: constants.RunModeFull})
	result := runner.RunPropagation(ctx)
	if result.Status != constants.RunStatusError {
		t.Fatal("expected Error status for a cancelled run")
	}
}
