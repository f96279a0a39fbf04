// Package schedule turns the loosely formatted dates and times used by venue bookings
// into comparable instants and decides whether two booking intervals collide.
//
// All instants are naive wall-clock times. They are carried in UTC only so that
// arithmetic never crosses a DST boundary; no zone conversion ever happens.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseError reports a date or time value that could not be normalized.
type ParseError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Date is a calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// At combines the date with a wall-clock time.
func (d Date) At(c Clock) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, time.UTC)
}

// Clock is a 24-hour wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// dateMatcher is one accepted date shape: a pattern and how to pull year, month and day out of it.
type dateMatcher struct {
	layout  string
	pattern *regexp.Regexp
	extract func(groups []string) (year, month, day int)
}

// dateMatchers are tried in order; the first match wins.
var dateMatchers = []dateMatcher{
	{
		layout:  "DD/MM/YYYY",
		pattern: regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`),
		extract: func(g []string) (int, int, int) { return digits(g[3]), digits(g[2]), digits(g[1]) },
	},
	{
		// Two-digit years always mean 20YY.
		layout:  "DD/MM/YY",
		pattern: regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`),
		extract: func(g []string) (int, int, int) { return 2000 + digits(g[3]), digits(g[2]), digits(g[1]) },
	},
	{
		layout:  "YYYY-MM-DD",
		pattern: regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`),
		extract: func(g []string) (int, int, int) { return digits(g[1]), digits(g[2]), digits(g[3]) },
	},
}

var (
	clockPattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2})(.*)$`)
	periodPattern = regexp.MustCompile(`(?i)(?:^|[^a-z])([ap])\.?m\.?(?:[^a-z]|$)`)
)

// ParseDate normalizes a DD/MM/YYYY, DD/MM/YY or YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	v := strings.TrimSpace(s)
	for _, m := range dateMatchers {
		g := m.pattern.FindStringSubmatch(v)
		if g == nil {
			continue
		}
		year, month, day := m.extract(g)
		if month < 1 || month > 12 {
			return Date{}, &ParseError{Field: "date", Value: s, Reason: fmt.Sprintf("month %d out of range (%s)", month, m.layout)}
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if day < 1 || t.Day() != day {
			return Date{}, &ParseError{Field: "date", Value: s, Reason: fmt.Sprintf("day %d out of range (%s)", day, m.layout)}
		}
		return Date{Year: year, Month: time.Month(month), Day: day}, nil
	}
	return Date{}, &ParseError{Field: "date", Value: s, Reason: "expected DD/MM/YYYY, DD/MM/YY or YYYY-MM-DD"}
}

// ParseClock normalizes an H:MM or HH:MM time with an optional AM/PM marker. Text after
// the minutes is ignored apart from the first AM/PM token, so "2:30 PM IST" is 14:30.
// field names the value in the returned ParseError.
func ParseClock(field, s string) (Clock, error) {
	v := strings.TrimSpace(s)
	g := clockPattern.FindStringSubmatch(v)
	if g == nil {
		return Clock{}, &ParseError{Field: field, Value: s, Reason: "expected H:MM or HH:MM with optional AM/PM"}
	}
	hour, minute := digits(g[1]), digits(g[2])
	if p := periodPattern.FindStringSubmatch(g[3]); p != nil {
		switch strings.ToLower(p[1]) {
		case "p":
			if hour < 12 {
				hour += 12
			}
		case "a":
			if hour == 12 {
				hour = 0
			}
		}
	}
	if hour > 23 {
		return Clock{}, &ParseError{Field: field, Value: s, Reason: fmt.Sprintf("hour %d out of range", hour)}
	}
	if minute > 59 {
		return Clock{}, &ParseError{Field: field, Value: s, Reason: fmt.Sprintf("minute %d out of range", minute)}
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// Normalize combines a date string and a time string into one naive instant.
func Normalize(date, clock string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	c, err := ParseClock("time", clock)
	if err != nil {
		return time.Time{}, err
	}
	return d.At(c), nil
}

// digits converts a regexp group that is known to hold only ASCII digits.
func digits(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
