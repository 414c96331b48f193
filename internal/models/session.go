package models

import "time"

const (
	SessionScheduled   = "scheduled"
	SessionInProgress  = "in-progress"
	SessionCompleted   = "completed"
	SessionCancelled   = "cancelled"
	SessionRescheduled = "rescheduled"
)

const (
	AttendancePresent  = "present"
	AttendanceAbsent   = "absent"
	AttendanceUnmarked = "unmarked"
)

type Session struct {
	ID              int64                `json:"id"`
	ProgramID       int64                `json:"program_id"`
	CoachID         int64                `json:"coach_id"`
	EnrollmentID    int64                `json:"enrollment_id"`
	Week            int                  `json:"week"`
	ScheduledDate   time.Time            `json:"scheduled_date"`
	StartTime       string               `json:"start_time"`
	EndTime         string               `json:"end_time"`
	StartsAt        time.Time            `json:"starts_at"`
	EndsAt          time.Time            `json:"ends_at"`
	GroundID        int64                `json:"ground_id"`
	GroundSlot      int                  `json:"ground_slot"`
	Status          string               `json:"status"`
	RescheduleCount int                  `json:"reschedule_count"`
	Rescheduled     bool                 `json:"rescheduled"`
	RescheduledFrom *RescheduleSnapshot  `json:"rescheduled_from,omitempty"`
	Participants    []SessionParticipant `json:"participants"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// RescheduleSnapshot is the slot a session held before its reschedule.
type RescheduleSnapshot struct {
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	GroundSlot int    `json:"ground_slot"`
}

type SessionParticipant struct {
	SessionID          int64      `json:"session_id"`
	LearnerID          int64      `json:"learner_id"`
	EnrollmentID       int64      `json:"enrollment_id"`
	Attended           bool       `json:"attended"`
	AttendanceStatus   string     `json:"attendance_status"`
	AttendanceMarkedAt *time.Time `json:"attendance_marked_at,omitempty"`
}

func (p SessionParticipant) AttendanceMarked() bool {
	return p.AttendanceStatus == AttendancePresent || p.AttendanceStatus == AttendanceAbsent
}

// ParticipantFor returns the participant entry of learnerID, if any.
func (s *Session) ParticipantFor(learnerID int64) *SessionParticipant {
	for i := range s.Participants {
		if s.Participants[i].LearnerID == learnerID {
			return &s.Participants[i]
		}
	}
	return nil
}

type AttendanceRecord struct {
	ID          int64     `json:"id"`
	SessionID   int64     `json:"session_id"`
	LearnerID   int64     `json:"learner_id"`
	CoachID     int64     `json:"coach_id"`
	Attended    bool      `json:"attended"`
	Status      string    `json:"status"`
	MarkedAt    time.Time `json:"marked_at"`
	Performance *string   `json:"performance,omitempty"`
	Remarks     *string   `json:"remarks,omitempty"`
}
