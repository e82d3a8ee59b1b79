package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kurbezz/discord-bot/internal/repositories"
	"github.com/kurbezz/discord-bot/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncRun runs a reconciliation pass for one streamer or all enabled streamers.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	login := cmd.String("login")

	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	repo := repositories.NewStreamerRepository(db)
	engine, err := r.newEngine(repo)
	if err != nil {
		return err
	}

	// Progress channel and goroutine to surface updates as they happen
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.SyncStreamer:
				r.writePlain("→ %s\n", update.Message)
			case tasks.SkipStreamer:
				r.writePlain("%s %s\n", r.styles.Warn("~"), update.Message)
			}
		}
	}()

	var run *tasks.RunResult
	if login != "" {
		streamer, ferr := findByLogin(repo, login)
		if ferr != nil {
			close(progressCh)
			<-done
			return ferr
		}

		result, rerr := engine.RunOne(ctx, progressCh, streamer.TwitchID())
		close(progressCh)
		<-done
		if rerr != nil {
			return rerr
		}
		run = &tasks.RunResult{Results: []tasks.StreamerResult{*result}, Succeeded: 1}
	} else {
		run, err = engine.RunAll(ctx, progressCh)
		close(progressCh)
		<-done
		if err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(summarizeRun(run), true)
	}

	r.writePlainln("%s", r.styles.Title("Sync complete"))
	for _, result := range run.Results {
		name := result.Streamer.DisplayName()
		switch {
		case result.Skipped:
			r.writePlain("%s %s: skipped, previous run still in flight\n", r.styles.Warn("~"), name)
		case result.Err != nil:
			r.writePlain("%s %s: %v\n", r.styles.Err("✗"), name, result.Err)
		default:
			counts := result.Result
			r.writePlain("%s %s: %d created, %d updated, %d deleted\n",
				r.styles.OK("✓"), name, counts.Created, counts.Updated, counts.Deleted)
			if counts.Orphans > 0 {
				r.writePlain("  %s\n", r.styles.Help(fmt.Sprintf("%d unmanaged events left untouched", counts.Orphans)))
			}
			for _, applyErr := range counts.Errors {
				r.writePlain("  %s %v\n", r.styles.Err("!"), applyErr)
			}
		}
	}

	return nil
}

// summarizeRun flattens a run result for JSON output.
func summarizeRun(run *tasks.RunResult) map[string]any {
	results := make([]map[string]any, 0, len(run.Results))
	for _, result := range run.Results {
		row := map[string]any{
			"login":   result.Streamer.TwitchLogin(),
			"skipped": result.Skipped,
		}
		if result.Err != nil {
			row["error"] = result.Err.Error()
		}
		if result.Result != nil {
			row["created"] = result.Result.Created
			row["updated"] = result.Result.Updated
			row["deleted"] = result.Result.Deleted
			row["orphans"] = result.Result.Orphans
			if len(result.Result.Errors) > 0 {
				applyErrors := make([]string, 0, len(result.Result.Errors))
				for _, applyErr := range result.Result.Errors {
					applyErrors = append(applyErrors, applyErr.Error())
				}
				row["apply_errors"] = applyErrors
			}
		}
		results = append(results, row)
	}

	return map[string]any{
		"succeeded": run.Succeeded,
		"failed":    run.Failed,
		"skipped":   run.Skipped,
		"results":   results,
	}
}

// Daemon runs reconciliation continuously on the configured cron schedule.
func (r *Runner) Daemon(ctx context.Context, cmd *cli.Command) error {
	expr := cmd.String("cron")
	if expr == "" {
		expr = r.config.Sync.Cron
	}

	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	repo := repositories.NewStreamerRepository(db)
	engine, err := r.newEngine(repo)
	if err != nil {
		return err
	}

	scheduler, err := tasks.NewScheduler(engine, expr, r.logger)
	if err != nil {
		return err
	}

	r.logger.Info("daemon starting", "cron", expr)
	scheduler.Start()
	defer scheduler.Stop()

	// Block until interrupted or the surrounding context ends.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		r.logger.Info("signal received, shutting down", "signal", sig.String())
	case <-ctx.Done():
		r.logger.Info("context canceled, shutting down")
	}

	return nil
}
