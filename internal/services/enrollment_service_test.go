package services

import (
	"testing"
	"time"
)

func TestProgramWeeksListsEveryWeekWindow(t *testing.T) {
	enrolled := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)

	weeks := programWeeks(enrolled, 3)
	if len(weeks) != 3 {
		t.Fatalf("expected 3 weeks, got %+v", weeks)
	}

	want := [][2]string{
		{"2026-03-01", "2026-03-07"},
		{"2026-03-08", "2026-03-14"},
		{"2026-03-15", "2026-03-21"},
	}
	for i, week := range weeks {
		if week.Week != i+1 || week.Start != want[i][0] || week.End != want[i][1] {
			t.Fatalf("week %d: got %+v, want %v", i+1, week, want[i])
		}
	}

	if empty := programWeeks(enrolled, 0); len(empty) != 0 {
		t.Fatalf("expected no weeks for an empty program, got %+v", empty)
	}
}
