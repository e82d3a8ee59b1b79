package models

import (
	"time"
)

// ScheduleEntry is a single rendered row of a streamer's upcoming schedule.
type ScheduleEntry struct {
	Title    string    `json:"title"`
	Category string    `json:"category,omitempty"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
	Weekdays []string  `json:"weekdays,omitempty"` // Recurrence weekday names, empty for one-shot streams
}

// Recurring reports whether the entry repeats weekly.
func (e ScheduleEntry) Recurring() bool {
	return len(e.Weekdays) > 0
}

// DurationMinutes returns the entry's length in whole minutes.
func (e ScheduleEntry) DurationMinutes() int {
	return int(e.EndAt.Sub(e.StartAt) / time.Minute)
}

// ScheduleExport is a streamer's upcoming schedule prepared for display or export.
type ScheduleExport struct {
	DisplayName string          `json:"display_name"`
	Login       string          `json:"login"`
	ChannelURL  string          `json:"channel_url"`
	Entries     []ScheduleEntry `json:"entries"`
}
