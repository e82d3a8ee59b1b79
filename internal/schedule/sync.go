package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kurbezz/discord-bot/internal/shared"
)

// Source fetches the system-of-record events for one broadcaster.
// Implementations must return only events that have not started yet or that
// recur; the differ double-guards the stale one-shot case regardless.
type Source interface {
	Events(ctx context.Context, sourceID string) ([]SourceEvent, error)
}

// Mirror is the scheduled-events surface the engine writes to.
// OwnedEvents must return only events created by the bot itself; the engine
// never mutates or deletes an event it did not create.
type Mirror interface {
	OwnedEvents(ctx context.Context, targetID string) ([]MirrorEvent, error)
	Create(ctx context.Context, targetID string, req CreateRequest) (MirrorEvent, error)
	Update(ctx context.Context, targetID, eventID string, req UpdateRequest) (MirrorEvent, error)
	Delete(ctx context.Context, targetID, eventID string) error
}

// Pair identifies one source/target pairing for a sync pass.
type Pair struct {
	SourceID string // broadcaster whose schedule is mirrored
	TargetID string // guild holding the mirrored events
	Location string // location label stamped on created events
}

// Result summarizes one sync pass. Errors holds per-operation failures;
// the pass keeps going past them, and the next scheduled pass re-diffs and
// retries whatever is still divergent.
type Result struct {
	Created int     `json:"created"`
	Deleted int     `json:"deleted"`
	Updated int     `json:"updated"`
	Orphans int     `json:"orphans"`
	Errors  []error `json:"-"`
}

// Syncer runs fetch-diff-apply passes for source/target pairs. It keeps no
// state between passes; running concurrently for distinct pairs is safe,
// while overlapping passes for the same pair are the caller's job to
// prevent.
type Syncer struct {
	source Source
	mirror Mirror
	logger *log.Logger
	now    func() time.Time
}

// NewSyncer creates a Syncer over the given collaborators.
func NewSyncer(source Source, mirror Mirror, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Syncer{
		source: source,
		mirror: mirror,
		logger: logger,
		now:    time.Now,
	}
}

// Run performs one reconciliation pass for the pair. Both snapshots are
// fetched concurrently, the diff runs on the results, and the operations
// apply sequentially: deletes, then creates, then updates. A fetch failure
// or a diff invariant violation aborts the pass; individual write failures
// are recorded in the result and do not stop the remaining operations.
func (s *Syncer) Run(ctx context.Context, pair Pair) (*Result, error) {
	if s.source == nil || s.mirror == nil {
		return nil, fmt.Errorf("%w: syncer collaborators not initialized", shared.ErrServiceUnavailable)
	}

	var (
		wg        sync.WaitGroup
		sourceEvs []SourceEvent
		mirrorEvs []MirrorEvent
		sourceErr error
		mirrorErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sourceEvs, sourceErr = s.source.Events(ctx, pair.SourceID)
	}()
	go func() {
		defer wg.Done()
		mirrorEvs, mirrorErr = s.mirror.OwnedEvents(ctx, pair.TargetID)
	}()
	wg.Wait()

	if sourceErr != nil {
		return nil, fmt.Errorf("fetch source events: %w", sourceErr)
	}
	if mirrorErr != nil {
		return nil, fmt.Errorf("fetch mirror events: %w", mirrorErr)
	}

	plan, err := BuildPlan(sourceEvs, mirrorEvs, pair.Location, s.now())
	if err != nil {
		return nil, fmt.Errorf("build plan: %w", err)
	}

	result := &Result{Orphans: len(plan.Orphans)}
	for _, orphan := range plan.Orphans {
		s.logger.Warn("mirror event has no correlation marker, skipping",
			"event_id", orphan.ID, "name", orphan.Name)
	}

	for _, ev := range plan.Deletes {
		if err := s.mirror.Delete(ctx, pair.TargetID, ev.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("delete %q: %w", ev.ID, err))
			continue
		}
		result.Deleted++
	}

	for _, req := range plan.Creates {
		if _, err := s.mirror.Create(ctx, pair.TargetID, req); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("create %q: %w", req.Name, err))
			continue
		}
		result.Created++
	}

	for _, op := range plan.Updates {
		if _, err := s.mirror.Update(ctx, pair.TargetID, op.EventID, op.Request); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("update %q: %w", op.EventID, err))
			continue
		}
		result.Updated++
	}

	s.logger.Info("sync pass finished",
		"source_id", pair.SourceID,
		"target_id", pair.TargetID,
		"created", result.Created,
		"deleted", result.Deleted,
		"updated", result.Updated,
		"errors", len(result.Errors),
	)

	return result, nil
}
