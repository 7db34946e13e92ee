package recurrence

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used for every date string
const DateLayout = "2006-01-02"

// Clock supplies the current instant. Validation reads "today" from it.
type Clock func() time.Time

// SystemClock reads the wall clock
func SystemClock() time.Time {
	return time.Now()
}

// FixedClock returns a clock frozen at t
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// Today returns the calendar date of the clock's current instant
func Today(clock Clock) time.Time {
	if clock == nil {
		clock = SystemClock
	}
	now := clock()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays returns t shifted by n days
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AddWeeks returns t shifted by n weeks
func AddWeeks(t time.Time, n int) time.Time {
	return AddDays(t, 7*n)
}

// AddMonths returns t shifted by n months. Day overflow follows time.AddDate,
// so Jan 31 plus one month lands in March.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// AddYears returns t shifted by n years. Feb 29 plus one year lands on Mar 1.
func AddYears(t time.Time, n int) time.Time {
	return t.AddDate(n, 0, 0)
}

// FormatDate renders the calendar date of t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a strict YYYY-MM-DD string into midnight UTC
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrInvalidDate)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidDate, s, err)
	}
	return t, nil
}

// IsValidDateString reports whether s is a real calendar date
func IsValidDateString(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// daysBetween counts whole days from a to b, both at midnight UTC
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
