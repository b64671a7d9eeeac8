package calendar

import (
	"errors"
	"sort"
	"time"
)

// View mode constants.
const (
	ModeDay   = "day"
	ModeWeek  = "week"
	ModeMonth = "month"
)

// ErrInvalidMode indicates an unknown view mode.
var ErrInvalidMode = errors.New("view mode must be day, week, or month")

// Range is an inclusive date/time interval.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the inclusive interval.
// INVARIANT: Start <= End
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// RangeFor computes the inclusive interval for a view mode and anchor date.
//
//   - day:   [start of anchor day, end of anchor day]
//   - week:  [start of the Sunday-start week containing anchor, end of Saturday]
//   - month: [first instant of anchor's month, last instant of its final day]
//
// PRE: mode is one of the View mode constants
// POST: Returned bounds are in the anchor's location
func RangeFor(mode string, anchor time.Time) (Range, error) {
	switch mode {
	case ModeDay:
		return dayRange(anchor), nil
	case ModeWeek:
		// Week starts Sunday; time.Weekday has Sunday == 0.
		sunday := anchor.AddDate(0, 0, -int(anchor.Weekday()))
		r := dayRange(sunday)
		r.End = endOfDay(sunday.AddDate(0, 0, 6))
		return r, nil
	case ModeMonth:
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		last := first.AddDate(0, 1, -1)
		return Range{Start: first, End: endOfDay(last)}, nil
	default:
		return Range{}, ErrInvalidMode
	}
}

// Advance moves the anchor forward by one view unit: 1 day, 7 days, or one
// calendar month. Month arithmetic uses AddDate so month-end rollovers are
// calendar-correct.
func Advance(mode string, anchor time.Time) (time.Time, error) {
	return step(mode, anchor, 1)
}

// Retreat moves the anchor backward by one view unit.
func Retreat(mode string, anchor time.Time) (time.Time, error) {
	return step(mode, anchor, -1)
}

func step(mode string, anchor time.Time, dir int) (time.Time, error) {
	switch mode {
	case ModeDay:
		return anchor.AddDate(0, 0, dir), nil
	case ModeWeek:
		return anchor.AddDate(0, 0, 7*dir), nil
	case ModeMonth:
		return anchor.AddDate(0, dir, 0), nil
	default:
		return time.Time{}, ErrInvalidMode
	}
}

// Entry is anything that can be placed on the calendar: a training session
// or a competition.
type Entry interface {
	CalendarDate() time.Time
	IsCancelled() bool
}

// Filter returns the entries whose date falls within r and whose status is
// not cancelled, in ascending date order. The input slice is not modified.
func Filter[E Entry](items []E, r Range) []E {
	out := make([]E, 0, len(items))
	for _, it := range items {
		if it.IsCancelled() {
			continue
		}
		if r.Contains(it.CalendarDate()) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CalendarDate().Before(out[j].CalendarDate())
	})
	return out
}

// TodayRange returns the inclusive interval for the current wall-clock day,
// independent of any selected anchor.
func TodayRange(now time.Time) Range {
	return dayRange(now)
}

func dayRange(t time.Time) Range {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Range{Start: start, End: endOfDay(t)}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
