package models

import "time"

type Ground struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	TotalSlots int       `json:"total_slots"`
	Facilities []string  `json:"facilities"`
	CreatedAt  time.Time `json:"created_at"`
}

type GroundBooking struct {
	ID          int64      `json:"id"`
	GroundID    int64      `json:"ground_id"`
	SessionID   int64      `json:"session_id"`
	BookingDate time.Time  `json:"booking_date"`
	SlotNumber  int        `json:"slot_number"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      time.Time  `json:"ends_at"`
	ReleasedAt  *time.Time `json:"released_at,omitempty"`
}
