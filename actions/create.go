package actions

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	h "github.com/gallerops/dwpipe/helper"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms"
	"github.com/gallerops/dwpipe/warehouse"
)

type CreateWarehouseConfig struct {
	Connections      ConnectionHandler
	TargetName       string `errorTxt:"target connection name" mandatory:"yes"`
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic bool
}

// RunCreateWarehouse provisions the star schema on the target connection.
func RunCreateWarehouse(cfg *CreateWarehouseConfig) error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	log := logger.NewLogger("dwpipe", cfg.LogLevel, cfg.StackDumpOnPanic)
	if err := h.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	details, err := cfg.Connections.GetConnectionDetails(cfg.TargetName)
	if err != nil {
		return errors.Wrapf(err, "unable to load target connection %q", cfg.TargetName)
	}
	db, err := rdbms.OpenDbConnection(log, *details)
	if err != nil {
		return errors.Wrapf(err, "unable to open target connection %q", cfg.TargetName)
	}
	defer func() { db.Close() }()
	if err := warehouse.CreateWarehouseTables(context.Background(), log, db); err != nil {
		return err
	}
	fmt.Printf("Warehouse tables created on connection %q\n", cfg.TargetName)
	return nil
}

type CreateDemoConfig struct {
	Connections      ConnectionHandler
	SourceName       string `errorTxt:"source connection name" mandatory:"yes"`
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic bool
	WithData         bool
}

// RunCreateDemo provisions the OLTP gallery schema and optionally seeds it
// with sample records so the sync actions have something to work with.
func RunCreateDemo(cfg *CreateDemoConfig) error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	log := logger.NewLogger("dwpipe", cfg.LogLevel, cfg.StackDumpOnPanic)
	if err := h.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	details, err := cfg.Connections.GetConnectionDetails(cfg.SourceName)
	if err != nil {
		return errors.Wrapf(err, "unable to load source connection %q", cfg.SourceName)
	}
	db, err := rdbms.OpenDbConnection(log, *details)
	if err != nil {
		return errors.Wrapf(err, "unable to open source connection %q", cfg.SourceName)
	}
	defer func() { db.Close() }()
	ctx := context.Background()
	if err := warehouse.CreateSourceTables(ctx, log, db); err != nil {
		return err
	}
	if cfg.WithData {
		if err := warehouse.SeedDemoSource(ctx, log, db); err != nil {
			return err
		}
	}
	fmt.Printf("Demo gallery schema created on connection %q\n", cfg.SourceName)
	return nil
}
