// Package domain holds the pure types and calendar math for the Grit
// progression engine. Nothing in this package touches storage, the network,
// or the process clock — callers pass `now` in explicitly.
package domain

import (
	"fmt"
	"time"
)

// DateLayout is the date-only format used everywhere a calendar date is
// stored or compared. Streak and reset logic operates on these strings, not
// on timestamps, so a 23:59 activity and a 00:01 activity land on different
// days by local calendar, never by elapsed hours.
const DateLayout = "2006-01-02"

// DateOnly formats a time as a date-only string in its own location.
func DateOnly(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a date-only string at midnight UTC.
// Returns the zero time for an empty string.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// StartOfDay truncates a time to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextMidnight returns the first midnight strictly after t, in t's location.
func NextMidnight(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// DayGap returns the whole-day difference between two date-only strings
// (today - last). A negative gap means the clock moved backward; callers
// clamp that to 0 rather than guessing.
func DayGap(last, today string) (int, error) {
	lastT, err := ParseDate(last)
	if err != nil {
		return 0, err
	}
	todayT, err := ParseDate(today)
	if err != nil {
		return 0, err
	}
	return int(todayT.Sub(lastT).Hours() / 24), nil
}

// ISOWeek returns "YYYY-Www" for the given time, the marker used to decide
// whether weekly-scoped counters roll over.
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ElapsedSeconds returns now-then in whole seconds, floored at 0 so a stored
// timestamp in the future (clock anomaly) reads as zero elapsed time.
func ElapsedSeconds(then, now time.Time) int64 {
	if then.IsZero() || now.Before(then) {
		return 0
	}
	return int64(now.Sub(then).Seconds())
}
