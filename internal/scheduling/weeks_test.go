package scheduling

import (
	"errors"
	"testing"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
)

func TestWeekWindowsAreContiguous(t *testing.T) {
	enrollment := time.Date(2026, 2, 26, 15, 30, 0, 0, time.UTC)

	for weeks := 1; weeks <= 12; weeks++ {
		windows := WeekWindows(enrollment, weeks)
		if len(windows) != weeks {
			t.Fatalf("expected %d windows, got %d", weeks, len(windows))
		}
		if !windows[0].Start.Equal(DateOnly(enrollment)) {
			t.Fatalf("first window starts %s", windows[0].Start)
		}
		for i, window := range windows {
			if window.Week != i+1 {
				t.Fatalf("unexpected week number %d at %d", window.Week, i)
			}
			if days := window.End.Sub(window.Start).Hours() / 24; days != 6 {
				t.Fatalf("window %d spans %.0f days", window.Week, days)
			}
			if i > 0 && !window.Start.Equal(windows[i-1].End.AddDate(0, 0, 1)) {
				t.Fatalf("window %d does not follow window %d", window.Week, i)
			}
		}
	}
}

func TestCheckPacingScenario(t *testing.T) {
	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := CheckPacing(day0, 4, 1, day0.AddDate(0, 0, 3)); err != nil {
		t.Fatalf("session 1 on day 3: %v", err)
	}

	err := CheckPacing(day0, 4, 2, day0.AddDate(0, 0, 3))
	var pacing *apperr.PacingError
	if !errors.As(err, &pacing) {
		t.Fatalf("expected pacing error, got %v", err)
	}
	if pacing.ExpectedWeek != 2 || pacing.ActualWeek != 1 {
		t.Fatalf("unexpected pacing detail %+v", pacing)
	}
	if !pacing.WindowStart.Equal(day0.AddDate(0, 0, 7)) {
		t.Fatalf("unexpected window start %s", pacing.WindowStart)
	}

	if err := CheckPacing(day0, 4, 2, day0.AddDate(0, 0, 9)); err != nil {
		t.Fatalf("session 2 on day 9: %v", err)
	}
}

func TestCheckPacingRejectsEveryOutOfWindowDate(t *testing.T) {
	day0 := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	const weeks = 6

	for week := 1; week <= weeks; week++ {
		for offset := -3; offset < weeks*7+3; offset++ {
			date := day0.AddDate(0, 0, offset)
			inWindow := offset >= (week-1)*7 && offset <= (week-1)*7+6
			err := CheckPacing(day0, weeks, week, date)
			if inWindow && err != nil {
				t.Fatalf("week %d offset %d: unexpected %v", week, offset, err)
			}
			if !inWindow {
				var pacing *apperr.PacingError
				if !errors.As(err, &pacing) {
					t.Fatalf("week %d offset %d: expected pacing error, got %v", week, offset, err)
				}
			}
		}
	}
}

func TestCheckPacingOutsideProgramReportsWeekZero(t *testing.T) {
	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	err := CheckPacing(day0, 2, 1, day0.AddDate(0, 0, -1))
	var pacing *apperr.PacingError
	if !errors.As(err, &pacing) || pacing.ActualWeek != 0 {
		t.Fatalf("expected week 0 pacing error, got %v", err)
	}
}

func TestCheckPacingValidatesWeek(t *testing.T) {
	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var verr *apperr.ValidationError
	if err := CheckPacing(day0, 4, 0, day0); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for week 0, got %v", err)
	}
}

func TestCheckPacingWeekBeyondProgram(t *testing.T) {
	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		date       time.Time
		actualWeek int
	}{
		{name: "inside program", date: day0.AddDate(0, 0, 10), actualWeek: 2},
		{name: "after program", date: day0.AddDate(0, 0, 30), actualWeek: 0},
	}

	for _, tt := range tests {
		err := CheckPacing(day0, 4, 5, tt.date)
		var pacing *apperr.PacingError
		if !errors.As(err, &pacing) {
			t.Fatalf("%s: expected pacing error, got %v", tt.name, err)
		}
		if pacing.ExpectedWeek != 5 || pacing.ActualWeek != tt.actualWeek || pacing.ProgramWeeks != 4 {
			t.Fatalf("%s: unexpected pacing details %+v", tt.name, pacing)
		}
		if !pacing.WindowStart.Equal(day0) || !pacing.WindowEnd.Equal(day0.AddDate(0, 0, 27)) {
			t.Fatalf("%s: expected the program span, got %s to %s", tt.name, pacing.WindowStart, pacing.WindowEnd)
		}
	}
}
