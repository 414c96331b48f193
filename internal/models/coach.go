package models

import "time"

type Coach struct {
	UserID       int64                `json:"user_id"`
	FullName     string               `json:"full_name"`
	Bio          *string              `json:"bio,omitempty"`
	Availability []AvailabilityWindow `json:"availability"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// AvailabilityWindow is a weekly recurring window. Times are "HH:MM" in the
// academy timezone.
type AvailabilityWindow struct {
	Position  int    `json:"position"`
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
