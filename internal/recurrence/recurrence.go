// Package recurrence computes the next firing time of anniversary-style reminders.
package recurrence

import (
	"fmt"
	"time"

	"github.com/hisworks-api/internal/domain"
)

// Interval is the spacing between two occurrences of a recurring reminder.
type Interval string

const (
	Year    Interval = "year"
	Quarter Interval = "quarter"
)

// Months returns the interval length in calendar months, or 0 if unknown.
func (i Interval) Months() int {
	switch i {
	case Year:
		return 12
	case Quarter:
		return 3
	}
	return 0
}

// IntervalFor maps a reminder type to its interval. ok is false for terminal types.
func IntervalFor(t domain.ReminderType) (Interval, bool) {
	switch t {
	case domain.ReminderYearly:
		return Year, true
	case domain.ReminderQuarterly:
		return Quarter, true
	}
	return "", false
}

// AddMonths adds n calendar months to t. When the day of month does not exist in the target
// month it is clamped to that month's last day (Jan 31 + 1 month = Feb 28 or 29).
// Clock time and location are preserved.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	// Month arithmetic on the 1st never overflows, so normalise there first.
	first := time.Date(y, m+time.Month(n), 1, hh, mm, ss, t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// NextOccurrence returns the smallest base + k*interval (k >= 1) strictly after now.
// Every candidate is derived from base directly, so month-end clamping never compounds:
// a Jan 31 anchor yields Apr 30, Jul 31, Oct 31.
func NextOccurrence(base time.Time, interval Interval, now time.Time) (time.Time, error) {
	step := interval.Months()
	if step == 0 {
		return time.Time{}, fmt.Errorf("unknown interval %q: %w", interval, domain.ErrBadRequest)
	}

	k := 1
	if gap := monthsBetween(base, now); gap > step {
		// Jump close to now instead of walking one missed cycle at a time.
		k = gap / step
	}
	next := AddMonths(base, k*step)
	for k > 1 && AddMonths(base, (k-1)*step).After(now) {
		k--
		next = AddMonths(base, k*step)
	}
	for !next.After(now) {
		k++
		next = AddMonths(base, k*step)
	}
	return next, nil
}

// monthsBetween counts whole calendar months from a to b, ignoring day and clock.
func monthsBetween(a, b time.Time) int {
	b = b.In(a.Location())
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
