package validation

import (
	"fmt"
	"strings"
	"time"
)

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// UTC returns the window with both bounds converted to UTC.
func (w Window) UTC() Window {
	return Window{Start: w.Start.UTC(), End: w.End.UTC()}
}

// IsValidDate reports whether year/month/day is a real Gregorian date.
// time.Date normalizes out-of-range values (Feb 30 becomes Mar 2), so the
// components must survive the round trip unchanged.
func IsValidDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Year() == year && int(d.Month()) == month && d.Day() == day
}

// DayWindow covers one civil day in loc.
func DayWindow(year, month, day int, loc *time.Location) Window {
	start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekWindow covers seven days starting at day (week-1)*7+1 of the month.
// Weeks are not aligned to weekdays, and week 5 or 6 may run into the next month.
func WeekWindow(year, month, week int, loc *time.Location) Window {
	start := time.Date(year, time.Month(month), (week-1)*7+1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthWindow covers one calendar month in loc.
func MonthWindow(year, month int, loc *time.Location) Window {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var civilLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDateTime parses an ISO 8601 style date-time. Values without a zone are
// read as civil time in loc.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range civilLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q", value)
}

// IsValidDateTime reports whether value parses to a real instant.
func IsValidDateTime(value string) bool {
	_, err := ParseDateTime(value, time.UTC)
	return err == nil
}
