package scheduling

import (
	"fmt"
	"sort"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
)

type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ResolveSlots cuts the windows matching date's weekday into consecutive
// slots of slotLength and drops every slot that overlaps a booked range.
// Partial slots at the end of a window are not emitted, and a window whose
// end is not after its start yields nothing.
func ResolveSlots(
	windows []models.AvailabilityWindow,
	date time.Time,
	slotLength time.Duration,
	booked []ClockRange,
) []Slot {
	step := int(slotLength / time.Minute)
	if step <= 0 {
		return nil
	}
	dayName := WeekdayName(date.Weekday())

	seen := make(map[int]struct{})
	starts := make([]int, 0)
	for _, window := range windows {
		day, ok := ParseWeekday(window.DayOfWeek)
		if !ok || WeekdayName(day) != dayName {
			continue
		}
		span, err := ParseClockRange(window.StartTime, window.EndTime)
		if err != nil {
			continue
		}
		for start := span.Start; start+step <= span.End; start += step {
			candidate := ClockRange{Start: start, End: start + step}
			if overlapsAny(candidate, booked) {
				continue
			}
			if _, dup := seen[start]; dup {
				continue
			}
			seen[start] = struct{}{}
			starts = append(starts, start)
		}
	}

	sort.Ints(starts)
	slots := make([]Slot, 0, len(starts))
	for _, start := range starts {
		slots = append(slots, Slot{StartTime: FormatClock(start), EndTime: FormatClock(start + step)})
	}
	return slots
}

func overlapsAny(candidate ClockRange, booked []ClockRange) bool {
	for _, b := range booked {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

// ContainsSlot reports whether start/end is exactly one of slots.
func ContainsSlot(slots []Slot, start, end string) bool {
	startMinute, err := ParseClock(start)
	if err != nil {
		return false
	}
	endMinute, err := ParseClock(end)
	if err != nil {
		return false
	}
	for _, slot := range slots {
		s, _ := ParseClock(slot.StartTime)
		e, _ := ParseClock(slot.EndTime)
		if s == startMinute && e == endMinute {
			return true
		}
	}
	return false
}

// ValidateWindows checks a weekly availability set before it is stored.
// Windows on the same day must not overlap.
func ValidateWindows(windows []models.AvailabilityWindow) error {
	verr := &apperr.ValidationError{}
	byDay := make(map[time.Weekday][]ClockRange)
	for i, window := range windows {
		field := fmt.Sprintf("availability[%d]", i)
		day, ok := ParseWeekday(window.DayOfWeek)
		if !ok {
			verr.Add(field+".day_of_week", "must be a weekday name")
			continue
		}
		span, err := ParseClockRange(window.StartTime, window.EndTime)
		if err != nil {
			verr.Add(field, err.Error())
			continue
		}
		for _, other := range byDay[day] {
			if span.Overlaps(other) {
				verr.Add(field, "overlaps another window on the same day")
				break
			}
		}
		byDay[day] = append(byDay[day], span)
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
