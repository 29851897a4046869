package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/gallerops/dwpipe/constants"
	h "github.com/gallerops/dwpipe/helper"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms"
	"github.com/gallerops/dwpipe/rdbms/shared"
	"github.com/gallerops/dwpipe/warehouse"
)

type SyncConfig struct {
	Connections      ConnectionHandler
	SourceName       string `errorTxt:"source connection name" mandatory:"yes"`
	TargetName       string `errorTxt:"target connection name" mandatory:"yes"`
	Mode             string `errorTxt:"sync mode" mandatory:"yes"`
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic bool
}

// RunSync propagates the gallery source into the warehouse and prints the
// structured run result as JSON.
func RunSync(cfg *SyncConfig) error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	log := logger.NewLogger("dwpipe", cfg.LogLevel, cfg.StackDumpOnPanic)
	if err := h.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	result, err := ExecuteSync(context.Background(), log, cfg)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if result.Status != constants.RunStatusSuccess { // if the run failed then exit non-zero via the caller...
		return errors.Errorf("propagation finished with status %v", result.Status)
	}
	return nil
}

// ExecuteSync opens both connections and runs one propagation. It is shared by
// the CLI action, the web server and the scheduler.
func ExecuteSync(ctx context.Context, log logger.Logger, cfg *SyncConfig) (*warehouse.PropagationResult, error) {
	source, target, err := openSourceAndTarget(log, cfg.Connections, cfg.SourceName, cfg.TargetName)
	if err != nil {
		return nil, err
	}
	defer func() {
		source.Close()
		target.Close()
	}()
	runner := warehouse.NewRunner(&warehouse.RunnerConfig{Log: log, Source: source, Target: target, Mode: cfg.Mode})
	return runner.RunPropagation(ctx), nil
}

func openSourceAndTarget(log logger.Logger, connections ConnectionHandler, sourceName, targetName string) (source, target shared.Connector, err error) {
	srcDetails, err := connections.GetConnectionDetails(sourceName)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to load source connection %q", sourceName)
	}
	tgtDetails, err := connections.GetConnectionDetails(targetName)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to load target connection %q", targetName)
	}
	source, err = rdbms.OpenDbConnection(log, *srcDetails)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to open source connection %q", sourceName)
	}
	target, err = rdbms.OpenDbConnection(log, *tgtDetails)
	if err != nil {
		source.Close()
		return nil, nil, errors.Wrapf(err, "unable to open target connection %q", targetName)
	}
	return source, target, nil
}
