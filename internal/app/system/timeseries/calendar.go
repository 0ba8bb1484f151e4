// internal/app/system/timeseries/calendar.go
package timeseries

import (
	"fmt"
	"time"
)

// History window defaults.
const (
	DaysOfHistory       = 90
	DefaultDailyRange   = 30
	DefaultWeeklyRange  = 12
	DefaultMonthlyRange = 12
)

// DateLayout is the calendar-day format used for snapshot ids and daily buckets.
const DateLayout = "2006-01-02"

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Midnight returns t with the clock zeroed, keeping t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysAgoAtMidnight returns the calendar day n days before now, at midnight.
// The same n on the same calendar day always yields the same instant.
func DaysAgoAtMidnight(now time.Time, n int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-n, 0, 0, 0, 0, now.Location())
}

// ISOWeek returns the ISO-8601 year and week number of date's calendar day.
// The ISO year differs from the calendar year around January 1st
// (2024-12-30 belongs to week 1 of 2025).
func ISOWeek(date time.Time) (year, week int) {
	return date.ISOWeek()
}

// ISOWeekNumber returns only the week part of ISOWeek.
func ISOWeekNumber(date time.Time) int {
	_, w := date.ISOWeek()
	return w
}

// ISOWeekStart returns the Monday that starts the given ISO week, in loc.
func ISOWeekStart(year, week int, loc *time.Location) time.Time {
	// January 4th is always in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7
	return time.Date(year, time.January, 4-offset+(week-1)*7, 0, 0, 0, 0, loc)
}

// WeekLabel formats an ISO week number as "W<week>".
func WeekLabel(week int) string {
	return fmt.Sprintf("W%d", week)
}

// MonthName maps a zero-based month index to its three-letter name.
// Indexes outside 0..11 return "".
func MonthName(index int) string {
	if index < 0 || index >= len(monthNames) {
		return ""
	}
	return monthNames[index]
}

// FormatDate renders the calendar day of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
