package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a mirroring run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	LoadStreamers Phase = iota
	SyncStreamer
	SkipStreamer
	RunComplete
)

func (p Phase) String() string {
	switch p {
	case LoadStreamers:
		return "load_streamers"
	case SyncStreamer:
		return "sync_streamer"
	case SkipStreamer:
		return "skip_streamer"
	case RunComplete:
		return "run_complete"
	default:
		return ""
	}
}

func loadingStreamersUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadStreamers,
		Step:    0,
		Total:   1,
		Message: "Loading enabled streamers...",
	}
}

func syncingStreamerUpdate(step, total int, login string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncStreamer,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Mirroring schedule for %s...", login),
	}
}

func skippingStreamerUpdate(step, total int, login string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SkipStreamer,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Skipping %s, previous run still in flight", login),
	}
}

func runCompleteUpdate(succeeded, failed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RunComplete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Run complete: %d succeeded, %d failed", succeeded, failed),
	}
}
