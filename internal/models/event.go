package models

import "time"

const (
	EventSessionBooked      = "session.booked"
	EventSessionCancelled   = "session.cancelled"
	EventSessionRescheduled = "session.rescheduled"
	EventAttendanceMarked   = "session.attendance_marked"
	EventCertificateIssued  = "certificate.issued"
)

// ScheduleEvent is pushed to the users named in Recipients.
type ScheduleEvent struct {
	Type       string    `json:"type"`
	SessionID  int64     `json:"session_id,omitempty"`
	Recipients []int64   `json:"-"`
	Payload    any       `json:"payload,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
