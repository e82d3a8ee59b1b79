package schedule

import (
	"fmt"
	"slices"
	"time"

	"github.com/kurbezz/discord-bot/internal/shared"
)

// Weekday uses the scheduled-event API numbering: 0 = Monday ... 6 = Sunday.
// Note this differs from [time.Weekday], which starts the week on Sunday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

func (w Weekday) String() string {
	names := [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if w < Monday || w > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return names[w]
}

// WeekdayOf converts an instant's weekday into Monday-first numbering.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// FrequencyWeekly is the mirror system's encoding for a weekly repeat. The
// value is compared as an opaque constant during diffing and stamped on
// every rule the translator builds.
const FrequencyWeekly = 2

// maxWeekdaySearch bounds the day-by-day weekday scan in NextOccurrence. A
// rule with a non-empty weekday set must hit a member within one week, so
// running past it means the rule is malformed.
const maxWeekdaySearch = 7

// RecurrenceRule describes a weekly repeat as the mirror system stores it:
// an anchor instant plus the set of weekdays the event repeats on.
// Interval and Frequency are mirror-specific encoding fields that only
// participate in equality checks.
type RecurrenceRule struct {
	Start     time.Time
	ByWeekday []Weekday
	Interval  int
	Frequency int
}

// OnWeekday reports whether t falls on one of the rule's weekdays. The
// weekday is taken in UTC, the engine's reference timezone.
func (r *RecurrenceRule) OnWeekday(t time.Time) bool {
	return slices.Contains(r.ByWeekday, WeekdayOf(t.UTC()))
}

// SameSlot reports whether target represents the same weekly calendar slot
// as start under this rule: equal time of day once both are normalized to
// UTC, on a weekday the rule repeats on. Exact date equality is not
// required, which lets a mirror anchor that has drifted to a later week
// still count as "the same occurrence".
func (r *RecurrenceRule) SameSlot(start, target time.Time) bool {
	s, t := start.UTC(), target.UTC()
	if s.Hour() != t.Hour() || s.Minute() != t.Minute() || s.Second() != t.Second() {
		return false
	}
	return r.OnWeekday(target)
}

// NextOccurrence returns the next instant strictly after now that keeps
// from's time of day and lands on one of the rule's weekdays. Candidates
// are generated one day at a time; once a candidate is past now, failing to
// hit a rule weekday within maxWeekdaySearch further days is an invariant
// violation reported as [shared.ErrRecurrenceBound].
func (r *RecurrenceRule) NextOccurrence(from, now time.Time) (time.Time, error) {
	next := from
	for !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}

	for i := 0; i < maxWeekdaySearch; i++ {
		if r.OnWeekday(next) {
			return next, nil
		}
		next = next.AddDate(0, 0, 1)
	}

	return time.Time{}, fmt.Errorf("%w: no matching weekday within %d days of %s",
		shared.ErrRecurrenceBound, maxWeekdaySearch, from.Format(time.RFC3339))
}

// sameWeekdays compares two weekday sets ignoring order and duplicates.
func sameWeekdays(a, b []Weekday) bool {
	if len(a) != len(b) {
		return false
	}
	as := slices.Clone(a)
	bs := slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(as, bs)
}
