package schedule

import (
	"fmt"
	"time"
)

// UpdateOp pairs a mirror event id with the rewrite to apply to it.
type UpdateOp struct {
	EventID string
	Request UpdateRequest
}

// Plan is the full set of operations that reconciles a mirror snapshot with
// a source snapshot. Orphans are owned mirror events whose description
// carries no correlation marker; they can never be matched, so the engine
// reports them and otherwise leaves them untouched.
type Plan struct {
	Creates []CreateRequest
	Deletes []MirrorEvent
	Updates []UpdateOp
	Orphans []MirrorEvent
}

// Empty reports whether the plan performs no writes. A converged pair
// always yields an empty plan.
func (p *Plan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Deletes) == 0 && len(p.Updates) == 0
}

// BuildPlan diffs the two snapshots into the operations that bring the
// mirror in line with the source. It is a pure function of its inputs:
// callers own fetching, locking and application.
//
// Matching keys both sides by the source uid: the source event's own UID
// and, on the mirror side, the uid extracted from the event description.
// Three passes follow, each emitting in input order:
//
//  1. creates for source events with no mirror counterpart, skipping
//     one-shot events that already started
//  2. deletes for mirror events whose uid no longer exists in the source
//  3. updates for matched pairs that fail field equivalence
//
// Recurring creates and updates have their anchor advanced to the next
// future occurrence (carrying the duration) before being emitted. An
// advancement failure is an invariant violation that aborts the whole plan.
func BuildPlan(source []SourceEvent, mirror []MirrorEvent, location string, now time.Time) (*Plan, error) {
	plan := &Plan{}

	mirrorByUID := make(map[string]MirrorEvent, len(mirror))
	for _, ev := range mirror {
		uid, ok := ExtractCorrelationID(ev.Description)
		if !ok {
			plan.Orphans = append(plan.Orphans, ev)
			continue
		}
		// Should two mirror events embed the same uid, the last one listed
		// wins; the earlier duplicate is left untouched this pass.
		mirrorByUID[uid] = ev
	}

	sourceUIDs := make(map[string]struct{}, len(source))
	for _, ev := range source {
		sourceUIDs[ev.UID] = struct{}{}
	}

	// Pass 1: creates.
	for _, ev := range source {
		if _, ok := mirrorByUID[ev.UID]; ok {
			continue
		}
		if !ev.StartAt.After(now) && ev.Repeat == nil {
			// A one-shot event that already started is stale; creating it
			// now would be rejected or instantly outdated.
			continue
		}

		req := ToCreateRequest(ev, location)
		if req.Recurrence != nil {
			if err := advanceToFuture(req.Recurrence, &req.StartAt, &req.EndAt, now); err != nil {
				return nil, fmt.Errorf("create %q: %w", ev.UID, err)
			}
		}
		plan.Creates = append(plan.Creates, req)
	}

	// Pass 2: deletes.
	for _, ev := range mirror {
		uid, ok := ExtractCorrelationID(ev.Description)
		if !ok {
			continue
		}
		if _, ok := sourceUIDs[uid]; !ok {
			plan.Deletes = append(plan.Deletes, ev)
		}
	}

	// Pass 3: updates.
	for _, ev := range source {
		mirrored, ok := mirrorByUID[ev.UID]
		if !ok {
			continue
		}

		req := ToCreateRequest(ev, location)
		if equivalent(req, mirrored) {
			continue
		}

		update := UpdateRequest{
			Name:        req.Name,
			Description: req.Description,
			StartAt:     req.StartAt,
			EndAt:       req.EndAt,
			Recurrence:  req.Recurrence,
		}
		if update.Recurrence != nil {
			if err := advanceToFuture(update.Recurrence, &update.StartAt, &update.EndAt, now); err != nil {
				return nil, fmt.Errorf("update %q: %w", ev.UID, err)
			}
		}
		plan.Updates = append(plan.Updates, UpdateOp{EventID: mirrored.ID, Request: update})
	}

	return plan, nil
}

// advanceToFuture moves a recurring event's anchor to its next future
// occurrence, carrying the original duration forward and re-anchoring the
// rule. A recurring event is never written with a past anchor.
func advanceToFuture(rule *RecurrenceRule, start, end *time.Time, now time.Time) error {
	duration := end.Sub(*start)

	for !start.After(now) {
		next, err := rule.NextOccurrence(*start, now)
		if err != nil {
			return err
		}
		*start = next
		*end = next.Add(duration)
	}

	rule.Start = *start
	return nil
}

// equivalent decides whether a mirrored event already reflects the
// candidate payload, i.e. no write is needed.
//
// Titles and descriptions must match byte for byte. Recurrence must be
// present on both sides or neither. For recurring pairs the weekday sets
// and encoding fields must match and the two anchors must land on the same
// weekly slot; exact anchor equality is not required because the mirror
// advances its stored anchor between passes. The same slot tolerance
// applies to start/end mismatches of a recurring event, while one-shot
// events must match their instants exactly.
func equivalent(req CreateRequest, ev MirrorEvent) bool {
	if req.Name != ev.Name {
		return false
	}
	if req.Description != ev.Description {
		return false
	}

	if req.Recurrence != nil {
		if ev.Recurrence == nil {
			return false
		}
		if !sameWeekdays(req.Recurrence.ByWeekday, ev.Recurrence.ByWeekday) {
			return false
		}
		if req.Recurrence.Interval != ev.Recurrence.Interval {
			return false
		}
		if req.Recurrence.Frequency != ev.Recurrence.Frequency {
			return false
		}
		if !req.Recurrence.SameSlot(req.Recurrence.Start, ev.Recurrence.Start) {
			return false
		}
	} else if ev.Recurrence != nil {
		return false
	}

	if !req.StartAt.Equal(ev.StartAt) {
		if req.Recurrence == nil || !req.Recurrence.SameSlot(req.StartAt, ev.StartAt) {
			return false
		}
	}
	if !req.EndAt.Equal(ev.EndAt) {
		if req.Recurrence == nil || !req.Recurrence.SameSlot(req.EndAt, ev.EndAt) {
			return false
		}
	}

	return true
}
