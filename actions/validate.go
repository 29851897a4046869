package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	h "github.com/gallerops/dwpipe/helper"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms"
	"github.com/gallerops/dwpipe/warehouse"
)

type ValidateConfig struct {
	Connections      ConnectionHandler
	SourceName       string `errorTxt:"source connection name" mandatory:"yes"`
	TargetName       string `errorTxt:"target connection name" mandatory:"yes"`
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic bool
}

// RunValidate checks source/warehouse consistency and prints the report as JSON.
func RunValidate(cfg *ValidateConfig) error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	log := logger.NewLogger("dwpipe", cfg.LogLevel, cfg.StackDumpOnPanic)
	if err := h.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	result, err := ExecuteValidate(context.Background(), log, cfg)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if !result.IsValid {
		return errors.New("integrity validation failed")
	}
	return nil
}

// ExecuteValidate opens both connections and runs the integrity checks.
func ExecuteValidate(ctx context.Context, log logger.Logger, cfg *ValidateConfig) (*warehouse.IntegrityResult, error) {
	source, target, err := openSourceAndTarget(log, cfg.Connections, cfg.SourceName, cfg.TargetName)
	if err != nil {
		return nil, err
	}
	defer func() {
		source.Close()
		target.Close()
	}()
	caps := rdbms.ProbeTables(log, target, warehouse.WarehouseTables)
	v := warehouse.NewValidator(log, warehouse.NewReader(log, source), target, caps)
	return v.Validate(ctx), nil
}
