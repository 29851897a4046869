package warehouse

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"

	"github.com/gallerops/dwpipe/constants"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms"
	"github.com/gallerops/dwpipe/rdbms/shared"
)

// RunnerConfig carries the collaborators for one propagation run.
type RunnerConfig struct {
	Log    logger.Logger
	Source shared.Connector
	Target shared.Connector
	Mode   string // constants.RunModeFull or constants.RunModeIncremental.
}

// Runner drives a full or incremental propagation: dimensions in dependency
// order, then facts, with per-table bookkeeping.
type Runner struct {
	log    logger.Logger
	source shared.Connector
	target shared.Connector
	mode   string
}

func NewRunner(cfg *RunnerConfig) *Runner {
	return &Runner{log: cfg.Log, source: cfg.Source, target: cfg.Target, mode: cfg.Mode}
}

// stage is one loading step. Stages run strictly in order so dimension rows
// exist before anything references them.
type stage struct {
	Table    string
	Requires []string // other target tables this stage reads from.
	Load     func(ctx context.Context, since time.Time) (int, error)
}

// RunPropagation executes the pipeline and always returns a structured result,
// even when the run aborts early.
func (r *Runner) RunPropagation(ctx context.Context) *PropagationResult {
	started := time.Now().UTC()
	result := &PropagationResult{
		RunID:  xid.New().String(),
		Mode:   r.mode,
		Status: constants.RunStatusSuccess,
	}
	defer func() {
		result.DurationMs = time.Since(started).Milliseconds()
	}()

	src := NewReader(r.log, r.source)
	if err := src.Ping(ctx); err != nil { // if the source is unreachable then nothing runs...
		r.log.Error("source connectivity check failed: ", err)
		result.Status = constants.RunStatusError
		result.Errors = append(result.Errors, "source connectivity check failed: "+err.Error())
		return result
	}

	// Probe target capabilities once per run; stages consult the snapshot.
	probeList := append(append([]string{}, WarehouseTables...), constants.TableEtlRunLog)
	caps := rdbms.ProbeTables(r.log, r.target, probeList)

	runLog := NewRunLog(r.log, r.target)
	haveRunLog := caps.HasTable(constants.TableEtlRunLog)
	var since time.Time
	if r.mode == constants.RunModeIncremental && haveRunLog {
		watermark, found, err := runLog.LastSuccessfulRun(ctx)
		if err != nil {
			result.Status = constants.RunStatusError
			result.Errors = append(result.Errors, err.Error())
			return result
		}
		if found { // otherwise an incremental run degrades to a full read.
			since = watermark
		}
	}
	if haveRunLog {
		runID, err := runLog.StartRun(ctx, r.mode, started)
		if err != nil {
			result.Status = constants.RunStatusError
			result.Errors = append(result.Errors, err.Error())
			return result
		}
		result.RunID = runID
	}

	ups := NewUpserter(r.log, r.target, caps, started)
	facts := NewFactBuilder(r.log, r.target, src, ups)
	stages := []stage{
		{Table: constants.TableDimArtist, Load: func(ctx context.Context, since time.Time) (int, error) {
			records, err := src.Artists(ctx, since)
			if err != nil {
				return 0, err
			}
			return ups.LoadArtists(ctx, records)
		}},
		{Table: constants.TableDimCollection, Load: func(ctx context.Context, since time.Time) (int, error) {
			records, err := src.Collections(ctx, since)
			if err != nil {
				return 0, err
			}
			return ups.LoadCollections(ctx, records)
		}},
		{Table: constants.TableDimLocation, Load: func(ctx context.Context, since time.Time) (int, error) {
			records, err := src.Locations(ctx, since)
			if err != nil {
				return 0, err
			}
			return ups.LoadLocations(ctx, records)
		}},
		{Table: constants.TableDimExhibitor, Load: func(ctx context.Context, since time.Time) (int, error) {
			records, err := src.Exhibitors(ctx, since)
			if err != nil {
				return 0, err
			}
			return ups.LoadExhibitors(ctx, records)
		}},
		{Table: constants.TableDimPolicy, Load: func(ctx context.Context, since time.Time) (int, error) {
			records, err := src.Policies(ctx, since)
			if err != nil {
				return 0, err
			}
			return ups.LoadPolicies(ctx, records)
		}},
		{Table: constants.TableDimArtwork, Requires: []string{constants.TableDimArtist}, Load: func(ctx context.Context, since time.Time) (int, error) {
			records, err := src.Artworks(ctx, since)
			if err != nil {
				return 0, err
			}
			return ups.LoadArtworks(ctx, records)
		}},
		{Table: constants.TableDimExhibition, Requires: []string{constants.TableDimExhibitor}, Load: func(ctx context.Context, since time.Time) (int, error) {
			records, err := src.Exhibitions(ctx, since)
			if err != nil {
				return 0, err
			}
			return ups.LoadExhibitions(ctx, records)
		}},
		{Table: constants.TableDimInsurance, Load: func(ctx context.Context, since time.Time) (int, error) {
			records, err := src.Insurance(ctx, since)
			if err != nil {
				return 0, err
			}
			return ups.LoadInsurance(ctx, records)
		}},
		{Table: constants.TableDimVisitor, Load: func(ctx context.Context, since time.Time) (int, error) {
			records, err := src.Visitors(ctx, since)
			if err != nil {
				return 0, err
			}
			return ups.LoadVisitors(ctx, records)
		}},
		{Table: constants.TableDimStaff, Load: func(ctx context.Context, since time.Time) (int, error) {
			records, err := src.Staff(ctx, since)
			if err != nil {
				return 0, err
			}
			return ups.LoadStaff(ctx, records)
		}},
		{Table: constants.TableFactArtworkExhibition,
			Requires: []string{constants.TableDimArtwork, constants.TableDimExhibition, constants.TableDimDate},
			Load: func(ctx context.Context, since time.Time) (int, error) {
				return facts.Build(ctx)
			}},
	}

	unavailable := map[string]bool{}
	for _, s := range stages {
		if skip, reason := r.shouldSkip(caps, unavailable, s); skip {
			r.log.Warn("skipping table ", s.Table, ": ", reason)
			result.PerTableResults = append(result.PerTableResults, TableResult{
				Table: s.Table, Status: constants.TableStatusSkipped,
			})
			unavailable[s.Table] = true // skipped tables are unavailable to later stages too.
			continue
		}
		count, err := s.Load(ctx, since)
		if err != nil {
			r.log.Error("loading table ", s.Table, " failed: ", err)
			result.Status = constants.RunStatusError
			result.Errors = append(result.Errors, "table "+s.Table+": "+err.Error())
			result.PerTableResults = append(result.PerTableResults, TableResult{
				Table: s.Table, Status: constants.TableStatusError, Error: err.Error(),
			})
			unavailable[s.Table] = true
			if ctx.Err() != nil { // cancelled runs stop here; independent stages otherwise continue.
				break
			}
			continue
		}
		result.LoadedRecordCount += count
		result.PerTableResults = append(result.PerTableResults, TableResult{
			Table: s.Table, RecordsProcessed: count, Status: constants.TableStatusLoaded,
		})
	}

	if haveRunLog {
		finishCtx := ctx
		if ctx.Err() != nil { // still record cancelled runs.
			var cancel context.CancelFunc
			finishCtx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
		}
		var runErr error
		if len(result.Errors) > 0 {
			runErr = errorsToError(result.Errors)
		}
		status := result.Status
		if err := runLog.FinishRun(finishCtx, result.RunID, status, time.Now().UTC(), int64(result.LoadedRecordCount), runErr); err != nil {
			r.log.Error("unable to finish run-log entry: ", err)
		}
	}
	return result
}

func errorsToError(msgs []string) error {
	return errors.New(strings.Join(msgs, "; "))
}

// shouldSkip reports whether the stage's own table is absent on the target, or
// whether a table it reads from is absent or was not loaded earlier in the run.
func (r *Runner) shouldSkip(caps rdbms.Capabilities, unavailable map[string]bool, s stage) (bool, string) {
	if !caps.HasTable(s.Table) {
		return true, "target is missing " + s.Table
	}
	for _, dep := range s.Requires {
		if !caps.HasTable(dep) {
			return true, "target is missing " + dep
		}
		if unavailable[dep] {
			return true, dep + " was not loaded"
		}
	}
	return false, ""
}
