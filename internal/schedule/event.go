package schedule

import (
	"strings"
	"time"
)

// correlationSeparator joins a source event's description and its uid marker
// inside a mirrored event description. The four newlines match how Discord
// renders the description block; previously created events depend on this
// exact byte sequence, so it is not negotiable.
const correlationSeparator = "\n\n\n\n#"

// WeeklyRepeat is a source-side weekly recurrence: the event repeats on each
// listed weekday at the time of day of the event's start.
type WeeklyRepeat struct {
	Weekdays []Weekday
}

// SourceEvent is one event from the system of record (the Twitch schedule
// feed), already reduced to the fields the engine cares about.
type SourceEvent struct {
	UID         string // stable id minted by the source calendar, the join key
	Title       string
	Description string
	Category    string // game/category label, empty when none
	StartAt     time.Time
	EndAt       time.Time
	Repeat      *WeeklyRepeat // nil for one-shot events
}

// MirrorEvent is one owned scheduled event on the mirror side. The adapter
// guarantees CreatorID equals the bot's own user id; events created by
// anyone else never reach the engine.
type MirrorEvent struct {
	ID          string // assigned by the mirror system
	Name        string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	Recurrence  *RecurrenceRule
	CreatorID   string
}

// CreateRequest is the canonical payload for creating a mirrored event.
type CreateRequest struct {
	Name        string
	Description string
	Location    string
	StartAt     time.Time
	EndAt       time.Time
	Recurrence  *RecurrenceRule
}

// UpdateRequest carries the fields rewritten on a divergent mirrored event.
type UpdateRequest struct {
	Name        string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	Recurrence  *RecurrenceRule
}

// EmbedCorrelationID appends the correlation marker for uid to a description.
func EmbedCorrelationID(description, uid string) string {
	return description + correlationSeparator + uid
}

// ExtractCorrelationID returns the source uid embedded in a mirrored event
// description: everything after the last '#'. The second return value is
// false when the description carries no marker at all; such events are
// unmatched and the engine leaves them alone.
func ExtractCorrelationID(description string) (string, bool) {
	i := strings.LastIndexByte(description, '#')
	if i < 0 {
		return "", false
	}
	return description[i+1:], true
}
