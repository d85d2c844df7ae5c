package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitlog/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FormatDay formats t as a YYYY-MM-DD day string.
func FormatDay(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDay parses a YYYY-MM-DD day string at midnight in loc.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(constants.DateFormat, day, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// AddDays shifts a day by n calendar days. AddDate keeps the wall clock,
// so DST transitions do not move the result off midnight.
func AddDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

// TrailingWindow returns the first and last day of the n-day window ending
// on today (inclusive).
func TrailingWindow(today time.Time, n int) (time.Time, time.Time) {
	end := StartOfDay(today)
	if n < 1 {
		n = 1
	}
	return AddDays(end, -(n - 1)), end
}

// WeekStart returns the Monday on or before day.
func WeekStart(day time.Time) time.Time {
	day = StartOfDay(day)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return AddDays(day, -offset)
}

// DaysInRange lists every day from start through end inclusive.
func DaysInRange(start, end time.Time) []time.Time {
	start, end = StartOfDay(start), StartOfDay(end)
	var days []time.Time
	for d := start; !d.After(end); d = AddDays(d, 1) {
		days = append(days, d)
	}
	return days
}
