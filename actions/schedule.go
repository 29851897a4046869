package actions

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/gallerops/dwpipe/constants"
	h "github.com/gallerops/dwpipe/helper"
	"github.com/gallerops/dwpipe/logger"
)

type ScheduleConfig struct {
	Connections      ConnectionHandler
	SourceName       string `errorTxt:"source connection name" mandatory:"yes"`
	TargetName       string `errorTxt:"target connection name" mandatory:"yes"`
	IntervalMinutes  int    `errorTxt:"repeat interval in minutes" mandatory:"yes"`
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic bool
}

// RunSchedule runs incremental syncs on a fixed interval until interrupted.
// The first sync fires immediately so a fresh warehouse is not left empty
// until the interval elapses.
func RunSchedule(cfg *ScheduleConfig) error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	log := logger.NewLogger("dwpipe", cfg.LogLevel, cfg.StackDumpOnPanic)
	if err := h.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	syncCfg := &SyncConfig{
		Connections: cfg.Connections,
		SourceName:  cfg.SourceName,
		TargetName:  cfg.TargetName,
		Mode:        constants.RunModeIncremental,
		LogLevel:    cfg.LogLevel,
	}
	job := func() {
		result, err := ExecuteSync(context.Background(), log, syncCfg)
		if err != nil {
			log.Error("scheduled sync failed to start: ", err)
			return
		}
		if result.Status != constants.RunStatusSuccess {
			log.Error("scheduled sync ", result.RunID, " finished with status ", result.Status, ": ", result.Errors)
			return
		}
		log.Info("scheduled sync ", result.RunID, " loaded ", result.LoadedRecordCount, " records in ", result.DurationMs, "ms")
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll() // overlapping runs would race on the run log.
	if _, err := s.Every(cfg.IntervalMinutes).Minutes().StartImmediately().Do(job); err != nil {
		return err
	}
	s.StartAsync()
	log.Info("scheduler started, syncing every ", cfg.IntervalMinutes, " minutes")

	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt)
	<-chanOS
	fmt.Println() // print new line char for clean looking CLI.
	log.Info("Shutting down scheduler...")
	s.Stop()
	return nil
}
