// package tasks implements schedule mirroring runs across all tracked streamers.
//
// The core abstraction is SyncEngine, which orchestrates reconciliation runs per streamer.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/kurbezz/discord-bot/internal/models"
	"github.com/kurbezz/discord-bot/internal/schedule"
	"github.com/kurbezz/discord-bot/internal/shared"
)

// StreamerResult contains the outcome of mirroring a single streamer's schedule.
type StreamerResult struct {
	Streamer *models.Streamer // Streamer the run was for
	Result   *schedule.Result // Reconciliation counts (nil when the run failed or was skipped)
	Skipped  bool             // True when a previous run for the same streamer was still in flight
	Err      error            // Error if the run failed
}

// RunResult contains all data from a full mirroring run.
type RunResult struct {
	Results   []StreamerResult // Individual streamer results in run order
	Succeeded int              // Number of streamers reconciled without error
	Failed    int              // Number of streamers whose run failed
	Skipped   int              // Number of streamers skipped because a run was in flight
}

// SyncEngine defines operations for mirroring Twitch schedules onto Discord guilds.
type SyncEngine interface {
	// RunAll reconciles every enabled streamer's schedule against their guild's events.
	RunAll(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error)

	// RunOne reconciles a single streamer's schedule by Twitch broadcaster ID.
	RunOne(ctx context.Context, progress chan<- ProgressUpdate, twitchID string) (*StreamerResult, error)
}

// StreamerStore defines the persistence operations the engine needs.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type StreamerStore interface {
	List(criteria map[string]any) ([]*models.Streamer, error)
	GetByTwitchID(twitchID string) (*models.Streamer, error)
}

// PairSyncer runs a single source/target reconciliation pass.
type PairSyncer interface {
	Run(ctx context.Context, pair schedule.Pair) (*schedule.Result, error)
}

// MirrorEngine implements SyncEngine for schedule mirroring operations.
type MirrorEngine struct {
	store  StreamerStore
	syncer PairSyncer
	logger *log.Logger

	mu      sync.Mutex
	running map[string]*sync.Mutex
}

// NewMirrorEngine creates a new MirrorEngine with the provided store and syncer.
func NewMirrorEngine(store StreamerStore, syncer PairSyncer, logger *log.Logger) *MirrorEngine {
	return &MirrorEngine{
		store:   store,
		syncer:  syncer,
		logger:  logger,
		running: make(map[string]*sync.Mutex),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *MirrorEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// pairLock returns the mutex guarding runs for the given streamer.
func (e *MirrorEngine) pairLock(twitchID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.running[twitchID]
	if !ok {
		lock = &sync.Mutex{}
		e.running[twitchID] = lock
	}
	return lock
}

// syncStreamer reconciles one streamer, skipping when a run is already in flight.
func (e *MirrorEngine) syncStreamer(ctx context.Context, streamer *models.Streamer) StreamerResult {
	lock := e.pairLock(streamer.TwitchID())
	if !lock.TryLock() {
		return StreamerResult{Streamer: streamer, Skipped: true}
	}
	defer lock.Unlock()

	pair := schedule.Pair{
		SourceID: streamer.TwitchID(),
		TargetID: streamer.GuildID(),
		Location: streamer.ChannelURL(),
	}

	result, err := e.syncer.Run(ctx, pair)
	if err != nil {
		return StreamerResult{Streamer: streamer, Err: fmt.Errorf("sync %s: %w", streamer.TwitchLogin(), err)}
	}

	return StreamerResult{Streamer: streamer, Result: result}
}

// RunAll reconciles every enabled streamer's schedule against their guild's events.
//
// Individual streamer failures do not abort the run; they are recorded in the
// returned [RunResult] and the run continues with the next streamer.
func (e *MirrorEngine) RunAll(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error) {
	e.sendProgress(progress, loadingStreamersUpdate())

	streamers, err := e.store.List(map[string]any{"enabled": true})
	if err != nil {
		return nil, fmt.Errorf("failed to load streamers: %w", err)
	}

	run := &RunResult{}
	total := len(streamers)

	for i, streamer := range streamers {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		e.sendProgress(progress, syncingStreamerUpdate(i+1, total, streamer.TwitchLogin()))

		result := e.syncStreamer(ctx, streamer)
		run.Results = append(run.Results, result)

		switch {
		case result.Skipped:
			run.Skipped++
			e.sendProgress(progress, skippingStreamerUpdate(i+1, total, streamer.TwitchLogin()))
			e.logger.Warn("skipping streamer, previous run still in flight", "login", streamer.TwitchLogin())
		case result.Err != nil:
			run.Failed++
			e.logger.Error("streamer sync failed", "login", streamer.TwitchLogin(), "error", result.Err)
		default:
			run.Succeeded++
		}
	}

	e.sendProgress(progress, runCompleteUpdate(run.Succeeded, run.Failed))
	return run, nil
}

// RunOne reconciles a single streamer's schedule by Twitch broadcaster ID.
//
// Unlike [MirrorEngine.RunAll], disabled streamers are still reconciled: a
// manual run is an explicit request.
func (e *MirrorEngine) RunOne(ctx context.Context, progress chan<- ProgressUpdate, twitchID string) (*StreamerResult, error) {
	streamer, err := e.store.GetByTwitchID(twitchID)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, syncingStreamerUpdate(1, 1, streamer.TwitchLogin()))

	result := e.syncStreamer(ctx, streamer)
	if result.Skipped {
		return &result, fmt.Errorf("%w: run already in flight for %s", shared.ErrServiceUnavailable, streamer.TwitchLogin())
	}
	if result.Err != nil {
		return &result, result.Err
	}

	e.sendProgress(progress, runCompleteUpdate(1, 0))
	return &result, nil
}
