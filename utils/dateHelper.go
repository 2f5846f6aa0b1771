package utils

import (
	"time"
)

const DateLayout = "2006-01-02"

// NormalizeDate drops the clock part and pins the date to UTC.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, NewInputError("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// MonthRange returns the first and last day of t's month.
func MonthRange(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// YearRange returns Jan 1 and Dec 31 of t's year.
func YearRange(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return first, time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
}

func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// EarlierDate returns the earlier of a and b.
func EarlierDate(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

// LaterDate returns the later of a and b.
func LaterDate(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
