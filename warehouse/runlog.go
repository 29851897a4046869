package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"

	"github.com/gallerops/dwpipe/constants"
	h "github.com/gallerops/dwpipe/helper"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

const runLogDdl = `create table if not exists etl_run_log (
	run_id text not null primary key,
	run_mode text not null,
	status text not null,
	started_at text not null,
	finished_at text,
	record_count integer not null,
	error_text text
)`

// CreateRunLogTable provisions the bookkeeping table used by incremental runs.
func CreateRunLogTable(ctx context.Context, db shared.Connector) error {
	if _, err := db.ExecContext(ctx, runLogDdl); err != nil {
		return errors.Wrap(err, "unable to create table etl_run_log")
	}
	return nil
}

// RunLog records propagation runs in the target database so later incremental
// runs can pick up from the last successful watermark.
type RunLog struct {
	log logger.Logger
	db  shared.Connector
}

func NewRunLog(log logger.Logger, db shared.Connector) *RunLog {
	return &RunLog{log: log, db: db}
}

// StartRun opens a new run-log row and returns its generated run ID.
func (r *RunLog) StartRun(ctx context.Context, mode string, startedAt time.Time) (string, error) {
	runID := xid.New().String()
	gen := r.db.GetDmlGenerator().NewInsertGenerator(&shared.SqlStatementGeneratorConfig{
		Log:             r.log,
		OutputTable:     constants.TableEtlRunLog,
		TargetKeyCols:   h.TokensToOrderedMap("run_id:run_id"),
		TargetOtherCols: h.TokensToOrderedMap("run_mode:run_mode,status:status,started_at:started_at,record_count:record_count"),
	})
	_, err := r.db.ExecContext(ctx, gen.GetStatement(), runID, mode, constants.RunStatusRunning, formatTime(startedAt), 0)
	if err != nil {
		return "", errors.Wrap(err, "unable to start run-log entry")
	}
	return runID, nil
}

// FinishRun closes the run-log row with its final status and record count.
func (r *RunLog) FinishRun(ctx context.Context, runID, status string, finishedAt time.Time, recordCount int64, runErr error) error {
	gen := r.db.GetDmlGenerator().NewUpdateGenerator(&shared.SqlStatementGeneratorConfig{
		Log:             r.log,
		OutputTable:     constants.TableEtlRunLog,
		TargetKeyCols:   h.TokensToOrderedMap("run_id:run_id"),
		TargetOtherCols: h.TokensToOrderedMap("status:status,finished_at:finished_at,record_count:record_count,error_text:error_text"),
	})
	var errText interface{}
	if runErr != nil {
		errText = runErr.Error()
	}
	_, err := r.db.ExecContext(ctx, gen.GetStatement(), status, formatTime(finishedAt), recordCount, errText, runID)
	if err != nil {
		return errors.Wrapf(err, "unable to finish run-log entry %v", runID)
	}
	return nil
}

// LastSuccessfulRun returns the start time of the most recent successful run,
// or found == false when there has never been one.
func (r *RunLog) LastSuccessfulRun(ctx context.Context) (time.Time, bool, error) {
	query := fmt.Sprintf("select started_at from %v where status = ? order by started_at desc limit 1", constants.TableEtlRunLog)
	var started string
	err := r.db.QueryRowContext(ctx, query, constants.RunStatusSuccess).Scan(&started)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "unable to read run-log watermark")
	}
	t, err := parseTime(started)
	if err != nil {
		return time.Time{}, false, errors.Wrapf(err, "bad started_at value %q in run log", started)
	}
	return t, true, nil
}
