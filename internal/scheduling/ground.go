package scheduling

import (
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/models"
)

// FreeGroundSlots lists slot numbers in [1, capacity] not held by a live
// booking overlapping [start, end).
func FreeGroundSlots(capacity int, start, end time.Time, bookings []models.GroundBooking) []int {
	taken := make(map[int]struct{}, len(bookings))
	for _, booking := range bookings {
		if booking.ReleasedAt != nil {
			continue
		}
		if booking.StartsAt.Before(end) && booking.EndsAt.After(start) {
			taken[booking.SlotNumber] = struct{}{}
		}
	}

	free := make([]int, 0, capacity)
	for slot := 1; slot <= capacity; slot++ {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free
}

func ContainsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
