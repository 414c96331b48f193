package scheduling

import (
	"fmt"
	"strings"
	"time"
)

const clockLayout = "15:04"

// ClockRange is a same-day interval in minutes after midnight.
type ClockRange struct {
	Start int
	End   int
}

func (r ClockRange) Overlaps(other ClockRange) bool {
	return r.Start < other.End && r.End > other.Start
}

// ParseClock parses "HH:MM" into minutes after midnight.
func ParseClock(value string) (int, error) {
	parsed, err := time.Parse(clockLayout, strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseClockRange parses a start/end pair. End must be after start.
func ParseClockRange(start, end string) (ClockRange, error) {
	startMinute, err := ParseClock(start)
	if err != nil {
		return ClockRange{}, err
	}
	endMinute, err := ParseClock(end)
	if err != nil {
		return ClockRange{}, err
	}
	if endMinute <= startMinute {
		return ClockRange{}, fmt.Errorf("end time %s must be after start time %s", end, start)
	}
	return ClockRange{Start: startMinute, End: endMinute}, nil
}

// DateOnly drops the time of day, keeping the calendar date as UTC midnight.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "2006-01-02" calendar date.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return parsed, nil
}

// At places a clock time on date in loc.
func At(date time.Time, minutes int, loc *time.Location) time.Time {
	year, month, day := date.Date()
	return time.Date(year, month, day, minutes/60, minutes%60, 0, 0, loc)
}

// Today is the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	return DateOnly(now.In(loc))
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func WeekdayName(day time.Weekday) string {
	return strings.ToLower(day.String())
}

func ParseWeekday(name string) (time.Weekday, bool) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return day, ok
}
