// Package schedule provides business-day date arithmetic for phase planning.
//
// All functions operate on calendar dates normalized to local midnight.
// Dates are wall-clock values, not instants; no timezone conversion is
// performed, which is the right trade-off for day-granularity scheduling.
package schedule

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for all dates.
const DateLayout = "2006-01-02"

// ParseError reports an unparseable date string.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("schedule: parse date %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseDate parses a YYYY-MM-DD string into a local-midnight date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, &ParseError{Input: s, Err: err}
	}
	return t, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Normalize truncates t to local midnight.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AddBusinessDays returns the date n business days after start, skipping
// Saturdays and Sundays. n = 0 returns start unchanged, even when start
// falls on a weekend. Negative n is not supported and returns start
// unchanged.
func AddBusinessDays(start time.Time, n int) time.Time {
	d := Normalize(start)
	for i := 0; i < n; i++ {
		d = d.AddDate(0, 0, 1)
		for isWeekend(d) {
			d = d.AddDate(0, 0, 1)
		}
	}
	return d
}

// BusinessDaysBetween returns the inclusive count of weekdays in
// [start, end]. When end precedes start the count is 0; callers must not
// rely on negative counts.
func BusinessDaysBetween(start, end time.Time) int {
	s, e := Normalize(start), Normalize(end)
	if e.Before(s) {
		return 0
	}
	count := 0
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		if !isWeekend(d) {
			count++
		}
	}
	return count
}

// EndOffset returns the number of business days that must be added to start
// to land on end: the count of weekdays strictly after start, up to and
// including end. It is the inverse of AddBusinessDays for weekday end
// dates, so a phase whose duration is set to EndOffset(start, taskEnd)
// derives a planned end date covering taskEnd. Returns 0 when end is on or
// before start.
func EndOffset(start, end time.Time) int {
	s, e := Normalize(start), Normalize(end)
	if !e.After(s) {
		return 0
	}
	count := 0
	for d := s.AddDate(0, 0, 1); !d.After(e); d = d.AddDate(0, 0, 1) {
		if !isWeekend(d) {
			count++
		}
	}
	return count
}

// CalculateEndDate derives the effective end date for a schedulable unit:
// its start advanced by duration plus buffer business days.
func CalculateEndDate(start time.Time, durationDays, bufferDays int) time.Time {
	return AddBusinessDays(start, durationDays+bufferDays)
}

// CalendarDaysBetween returns the whole-day span between two dates,
// independent of weekends. Used for wall-clock project duration.
func CalendarDaysBetween(start, end time.Time) int {
	s, e := Normalize(start), Normalize(end)
	if e.Before(s) {
		return 0
	}
	// Round to absorb DST transitions in local time.
	return int(e.Sub(s).Hours()/24 + 0.5)
}
