// Package inventory implements the date and counting logic behind room
// availability.  Everything in this package is a pure function of its
// inputs: occupancy is always derived from booking state passed in by the
// caller, never read from a second mutable source.
package inventory

import (
	"errors"
	"time"
)

// ErrInvalidDateRange is returned when a stay has fewer than one night,
// i.e. its start date is not strictly before its end date.
var ErrInvalidDateRange = errors.New("invalid date range")

// DateRange is a half-open stay interval [Start, End).  Start is the
// check-in date and End the check-out date; the checkout day itself is
// never an occupied night, so a stay ending on day X and another starting
// on day X do not conflict.
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Day truncates a timestamp to midnight UTC.  All range arithmetic in this
// package operates on day granularity.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDateRange builds a DateRange from check-in and check-out timestamps.
// Both are truncated to midnight UTC.  Ranges with zero or negative nights
// are rejected with ErrInvalidDateRange.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	if !r.Start.Before(r.End) {
		return DateRange{}, ErrInvalidDateRange
	}
	return r, nil
}

// Nights returns the number of occupied nights in the range.
func (r DateRange) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Overlaps reports whether two half-open ranges share at least one night:
// s1 < e2 AND s2 < e1.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// ContainsNight reports whether the given day is an occupied night of the
// range, i.e. Start <= day < End.
func (r DateRange) ContainsNight(day time.Time) bool {
	d := Day(day)
	return !d.Before(r.Start) && d.Before(r.End)
}

// EachNight calls fn for every occupied night from Start (inclusive) to
// End (exclusive) in ascending order.
func (r DateRange) EachNight(fn func(night time.Time)) {
	for d := r.Start; d.Before(r.End); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}
