package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// Scheduler runs a [SyncEngine] on a cron expression.
type Scheduler struct {
	cron   *cron.Cron
	engine SyncEngine
	logger *log.Logger
}

// cronLogger adapts charmbracelet/log to the cron.Logger interface.
type cronLogger struct {
	logger *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.logger.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}

// NewScheduler creates a scheduler that triggers a full mirroring run on the
// given cron expression. A tick is skipped entirely while the previous run is
// still executing.
func NewScheduler(engine SyncEngine, expr string, logger *log.Logger) (*Scheduler, error) {
	adapter := cronLogger{logger: logger}
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(adapter),
		cron.Recover(adapter),
	))

	s := &Scheduler{cron: c, engine: engine, logger: logger}

	if _, err := c.AddFunc(expr, s.tick); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	return s, nil
}

func (s *Scheduler) tick() {
	run, err := s.engine.RunAll(context.Background(), nil)
	if err != nil {
		s.logger.Error("scheduled run failed", "error", err)
		return
	}

	s.logger.Info("scheduled run complete",
		"succeeded", run.Succeeded,
		"failed", run.Failed,
		"skipped", run.Skipped,
	)
}

// Start begins triggering runs in a background goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts future ticks and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
