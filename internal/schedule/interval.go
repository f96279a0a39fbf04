package schedule

import (
	"strings"
	"time"
)

// DefaultDuration is the length of a booking whose end time is not given.
const DefaultDuration = 2 * time.Hour

// Interval is a half-open span [Start, End) on the calendar date of Start.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval normalizes a booking slot. An empty end defaults to start + DefaultDuration.
// An explicit end must be later than start on the same date.
func NewInterval(date, start, end string) (Interval, error) {
	d, err := ParseDate(date)
	if err != nil {
		return Interval{}, err
	}
	sc, err := ParseClock("start_time", start)
	if err != nil {
		return Interval{}, err
	}
	startAt := d.At(sc)
	if strings.TrimSpace(end) == "" {
		return Interval{Start: startAt, End: startAt.Add(DefaultDuration)}, nil
	}
	ec, err := ParseClock("end_time", end)
	if err != nil {
		return Interval{}, err
	}
	endAt := d.At(ec)
	if !endAt.After(startAt) {
		return Interval{}, &ParseError{Field: "end_time", Value: end, Reason: "must be after start_time " + sc.String()}
	}
	return Interval{Start: startAt, End: endAt}, nil
}

// Date returns the calendar date the interval belongs to.
func (i Interval) Date() Date {
	y, m, d := i.Start.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// SameDate reports whether a and b belong to the same calendar date.
func SameDate(a, b Interval) bool {
	return a.Date() == b.Date()
}

// Overlaps reports whether a and b collide. Intervals on different dates never
// collide, and touching endpoints (a.End == b.Start) are not a collision.
func Overlaps(a, b Interval) bool {
	if !SameDate(a, b) {
		return false
	}
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
