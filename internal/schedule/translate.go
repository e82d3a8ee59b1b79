package schedule

import "slices"

// ToCreateRequest translates a source event into the canonical mirror
// payload. The title carries the category as a " | " suffix when present,
// the description gains the correlation marker, and a weekly repeat becomes
// a mirror recurrence rule anchored at the event's start.
//
// The transform is pure; future-anchor advancement for recurring events
// happens during diffing, not here.
func ToCreateRequest(ev SourceEvent, location string) CreateRequest {
	name := ev.Title
	if ev.Category != "" {
		name = ev.Title + " | " + ev.Category
	}

	var rule *RecurrenceRule
	if ev.Repeat != nil {
		rule = &RecurrenceRule{
			Start:     ev.StartAt,
			ByWeekday: slices.Clone(ev.Repeat.Weekdays),
			Interval:  1,
			Frequency: FrequencyWeekly,
		}
	}

	return CreateRequest{
		Name:        name,
		Description: EmbedCorrelationID(ev.Description, ev.UID),
		Location:    location,
		StartAt:     ev.StartAt,
		EndAt:       ev.EndAt,
		Recurrence:  rule,
	}
}
