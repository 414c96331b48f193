package scheduling

import (
	"reflect"
	"testing"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/models"
)

// 2026-03-16 is a Monday.
var monday = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

func TestResolveSlotsCutsWindowsIntoFullSlots(t *testing.T) {
	windows := []models.AvailabilityWindow{
		{DayOfWeek: "Monday", StartTime: "09:00", EndTime: "14:30"},
		{DayOfWeek: "tuesday", StartTime: "09:00", EndTime: "17:00"},
		{DayOfWeek: "monday", StartTime: "16:00", EndTime: "18:00"},
	}

	slots := ResolveSlots(windows, monday, 2*time.Hour, nil)

	want := []Slot{
		{StartTime: "09:00", EndTime: "11:00"},
		{StartTime: "11:00", EndTime: "13:00"},
		{StartTime: "16:00", EndTime: "18:00"},
	}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("unexpected slots %+v", slots)
	}
}

func TestResolveSlotsDropsBookedOverlaps(t *testing.T) {
	windows := []models.AvailabilityWindow{{DayOfWeek: "monday", StartTime: "08:00", EndTime: "16:00"}}
	booked := []ClockRange{{Start: 10*60 + 30, End: 12*60 + 30}}

	slots := ResolveSlots(windows, monday, 2*time.Hour, booked)

	want := []Slot{
		{StartTime: "08:00", EndTime: "10:00"},
		{StartTime: "14:00", EndTime: "16:00"},
	}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("unexpected slots %+v", slots)
	}
}

func TestResolveSlotsEdgeWindows(t *testing.T) {
	tests := []struct {
		name   string
		window models.AvailabilityWindow
	}{
		{name: "shorter than a slot", window: models.AvailabilityWindow{DayOfWeek: "monday", StartTime: "09:00", EndTime: "10:30"}},
		{name: "overnight", window: models.AvailabilityWindow{DayOfWeek: "monday", StartTime: "22:00", EndTime: "02:00"}},
		{name: "empty", window: models.AvailabilityWindow{DayOfWeek: "monday", StartTime: "09:00", EndTime: "09:00"}},
		{name: "other day", window: models.AvailabilityWindow{DayOfWeek: "sunday", StartTime: "09:00", EndTime: "17:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := ResolveSlots([]models.AvailabilityWindow{tt.window}, monday, 2*time.Hour, nil)
			if len(slots) != 0 {
				t.Fatalf("expected no slots, got %+v", slots)
			}
		})
	}
}

func TestResolvedSlotsStayInsideWindowsAndAvoidBookings(t *testing.T) {
	windows := []models.AvailabilityWindow{
		{DayOfWeek: "monday", StartTime: "06:15", EndTime: "13:00"},
		{DayOfWeek: "monday", StartTime: "15:00", EndTime: "21:45"},
	}
	spans := []ClockRange{{Start: 6*60 + 15, End: 13 * 60}, {Start: 15 * 60, End: 21*60 + 45}}

	bookedSets := [][]ClockRange{
		nil,
		{{Start: 7 * 60, End: 9 * 60}},
		{{Start: 12 * 60, End: 16 * 60}, {Start: 19 * 60, End: 20 * 60}},
		{{Start: 0, End: 24 * 60}},
	}
	for _, booked := range bookedSets {
		for _, slot := range ResolveSlots(windows, monday, 2*time.Hour, booked) {
			span, err := ParseClockRange(slot.StartTime, slot.EndTime)
			if err != nil {
				t.Fatalf("ParseClockRange: %v", err)
			}
			if span.End-span.Start != 120 {
				t.Fatalf("slot %+v is not two hours", slot)
			}
			inside := false
			for _, window := range spans {
				if span.Start >= window.Start && span.End <= window.End {
					inside = true
				}
			}
			if !inside {
				t.Fatalf("slot %+v is outside every window", slot)
			}
			if overlapsAny(span, booked) {
				t.Fatalf("slot %+v overlaps a booking in %+v", slot, booked)
			}
		}
	}
}

func TestContainsSlot(t *testing.T) {
	slots := []Slot{{StartTime: "09:00", EndTime: "11:00"}}
	if !ContainsSlot(slots, "9:00", "11:00") {
		t.Fatalf("expected slot to match")
	}
	if ContainsSlot(slots, "09:30", "11:30") {
		t.Fatalf("expected shifted slot to be rejected")
	}
}

func TestValidateWindowsRejectsOverlapAndBadDay(t *testing.T) {
	err := ValidateWindows([]models.AvailabilityWindow{
		{DayOfWeek: "monday", StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: "monday", StartTime: "11:00", EndTime: "13:00"},
		{DayOfWeek: "funday", StartTime: "09:00", EndTime: "12:00"},
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}

	if err := ValidateWindows([]models.AvailabilityWindow{
		{DayOfWeek: "monday", StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: "monday", StartTime: "12:00", EndTime: "14:00"},
	}); err != nil {
		t.Fatalf("expected adjacent windows to pass, got %v", err)
	}
}
