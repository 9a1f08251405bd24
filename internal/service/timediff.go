package service

import (
	"fmt"
	"strings"
	"time"
)

// formatTimeDifference renders the calendar-aware distance between two dates
// as "N years and N months and N days", dropping zero components. A future
// date earlier than the reference is labelled overdue.
func formatTimeDifference(future, reference time.Time) string {
	if future.Before(reference) {
		return "overdue by " + calendarDelta(reference, future)
	}
	return calendarDelta(future, reference)
}

// calendarDelta computes the (years, months, days) span from earlier to
// later, borrowing days from the month preceding the later date.
func calendarDelta(later, earlier time.Time) string {
	years := later.Year() - earlier.Year()
	months := int(later.Month()) - int(earlier.Month())
	days := later.Day() - earlier.Day()
	if days < 0 {
		months--
		// Day 0 of the later month is the last day of the month before.
		days += time.Date(later.Year(), later.Month(), 0, 0, 0, 0, 0, time.UTC).Day()
	}
	if months < 0 {
		years--
		months += 12
	}

	var parts []string
	if years > 0 {
		parts = append(parts, plural(years, "year"))
	}
	if months > 0 {
		parts = append(parts, plural(months, "month"))
	}
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if len(parts) == 0 {
		return "0 days"
	}
	return strings.Join(parts, " and ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
