package scheduling

import (
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
)

const daysPerWeek = 7

type WeekWindow struct {
	Week  int       `json:"week"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w WeekWindow) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(w.Start) && !d.After(w.End)
}

// WeekWindows returns one inclusive 7-day window per program week, anchored
// at the enrollment date.
func WeekWindows(enrollmentDate time.Time, durationWeeks int) []WeekWindow {
	if durationWeeks <= 0 {
		return nil
	}
	anchor := DateOnly(enrollmentDate)
	windows := make([]WeekWindow, 0, durationWeeks)
	for week := 1; week <= durationWeeks; week++ {
		windows = append(windows, WindowFor(anchor, week))
	}
	return windows
}

func WindowFor(enrollmentDate time.Time, week int) WeekWindow {
	start := DateOnly(enrollmentDate).AddDate(0, 0, (week-1)*daysPerWeek)
	return WeekWindow{Week: week, Start: start, End: start.AddDate(0, 0, daysPerWeek-1)}
}

// WeekOf returns the program week date falls in, or 0 outside the program.
func WeekOf(enrollmentDate time.Time, durationWeeks int, date time.Time) int {
	days := int(DateOnly(date).Sub(DateOnly(enrollmentDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	week := days/daysPerWeek + 1
	if week > durationWeeks {
		return 0
	}
	return week
}

// ProgramSpan returns the first day of week 1 and the last day of the final
// week. ok is false for a program without weeks.
func ProgramSpan(enrollmentDate time.Time, durationWeeks int) (start, end time.Time, ok bool) {
	windows := WeekWindows(enrollmentDate, durationWeeks)
	if len(windows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return windows[0].Start, windows[len(windows)-1].End, true
}

// CheckPacing rejects a booking of session week on date unless date is inside
// that week's window. A week past the program's last week is a pacing
// failure reported against the whole program span.
func CheckPacing(enrollmentDate time.Time, durationWeeks, week int, date time.Time) error {
	if week < 1 {
		return apperr.NewValidation("week", "must be positive")
	}
	if week > durationWeeks {
		start, end, _ := ProgramSpan(enrollmentDate, durationWeeks)
		return &apperr.PacingError{
			ExpectedWeek: week,
			ActualWeek:   WeekOf(enrollmentDate, durationWeeks, date),
			Date:         DateOnly(date),
			WindowStart:  start,
			WindowEnd:    end,
			ProgramWeeks: durationWeeks,
		}
	}
	window := WindowFor(enrollmentDate, week)
	if window.Contains(date) {
		return nil
	}
	return &apperr.PacingError{
		ExpectedWeek: week,
		ActualWeek:   WeekOf(enrollmentDate, durationWeeks, date),
		Date:         DateOnly(date),
		WindowStart:  window.Start,
		WindowEnd:    window.End,
	}
}
