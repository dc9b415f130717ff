package entities

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateOf normalizes a timestamp to its UTC calendar date (midnight UTC).
// All day-boundary logic in the engine operates on dates produced by this
// function; the boundary is global UTC midnight, not per-user local time.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// NextDay returns the calendar date one day after d.
func NextDay(d time.Time) time.Time {
	return DateOf(d).AddDate(0, 0, 1)
}

// PrevDay returns the calendar date one day before d.
func PrevDay(d time.Time) time.Time {
	return DateOf(d).AddDate(0, 0, -1)
}

// SameDate reports whether a and b fall on the same UTC calendar date.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.UTC().Format(DateLayout)
}
