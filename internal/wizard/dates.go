package wizard

import (
	"fmt"
	"time"
)

// WindowDays is how many days, starting today, can be booked.
const WindowDays = 7

const (
	dateKeyLayout    = "2006-01-02"
	shortLayout      = "Mon, Jan 2"
	longLayout       = "January 2, 2006"
	weekdayLayout    = "Mon"
	dayOfMonthLayout = "2"
)

// Midnight truncates t to the start of its calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Window returns the bookable days starting at today, inclusive.
func Window(today time.Time) []time.Time {
	days := make([]time.Time, 0, WindowDays)
	for i := 0; i < WindowDays; i++ {
		days = append(days, today.AddDate(0, 0, i))
	}
	return days
}

// DayOffset counts calendar days from today to date, ignoring clock time and DST.
func DayOffset(date, today time.Time) int {
	d := date.In(today.Location())
	a := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// InWindow reports whether date falls on one of the bookable days.
func InWindow(date, today time.Time) bool {
	off := DayOffset(date, today)
	return off >= 0 && off < WindowDays
}

// SameDay reports whether a and b fall on the same calendar day in a's zone.
func SameDay(a, b time.Time) bool {
	return DayOffset(b, a) == 0
}

// RelativeLabel renders "Today", "Tomorrow" or a short weekday/month/day label.
func RelativeLabel(date, today time.Time) string {
	switch DayOffset(date, today) {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return date.In(today.Location()).Format(shortLayout)
	}
}

// LongLabel renders the confirmation date, e.g. "January 2, 2006".
func LongLabel(date time.Time) string {
	return date.Format(longLayout)
}

// WeekdayLabel is the abbreviated weekday shown on a date button.
func WeekdayLabel(date time.Time) string {
	return date.Format(weekdayLayout)
}

// DayOfMonthLabel is the day number shown on a date button.
func DayOfMonthLabel(date time.Time) string {
	return date.Format(dayOfMonthLayout)
}

// DateKey is the form value identifying a day.
func DateKey(date time.Time) string {
	return date.Format(dateKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD form value as midnight in loc.
func ParseDateKey(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateKeyLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("wizard: parse date %q: %w", value, err)
	}
	return t, nil
}
