package utils

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for all calendar dates.
const DateLayout = "2006-01-02"

// Date builds a timezone-naive calendar date (UTC midnight).
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOnly strips the time-of-day portion from t.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date. Callers capture it once per
// operation so that date boundaries cannot shift mid-computation.
func Today() time.Time {
	return DateOnly(time.Now())
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOnly(t), nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns b minus a in whole days. Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)) / (24 * time.Hour))
}

// AddDays shifts a calendar date by n days (n may be negative).
func AddDays(t time.Time, n int) time.Time {
	return DateOnly(t).AddDate(0, 0, n)
}

// AddMonths shifts a calendar date by n months, with Go's end-of-month
// normalization (Jan 31 + 1 month = Mar 3 in non-leap years).
func AddMonths(t time.Time, n int) time.Time {
	return DateOnly(t).AddDate(0, n, 0)
}

// PeriodsOverlap reports whether a candidate period starting at newStart
// collides with an incumbent period ending at incumbentEnd. Both bounds are
// inclusive: starting on the incumbent's last day is an overlap.
func PeriodsOverlap(newStart, incumbentEnd time.Time) bool {
	return !DateOnly(newStart).After(DateOnly(incumbentEnd))
}
