package scheduling

import (
	"fmt"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
)

// Rules are the lifecycle guards for booked sessions.
type Rules struct {
	CancelLeadTime        time.Duration
	RescheduleLeadTime    time.Duration
	MaxReschedules        int
	AllowFutureAttendance bool
}

// IsLive reports whether a session still occupies its coach and ground.
func IsLive(status string) bool {
	return status != models.SessionCancelled
}

func isOpen(status string) bool {
	return status == models.SessionScheduled || status == models.SessionRescheduled
}

func (r Rules) CanCancel(session *models.Session, participant *models.SessionParticipant, now time.Time) error {
	if !isOpen(session.Status) {
		return apperr.NewGuard(apperr.ReasonTerminalState, fmt.Sprintf("session is %s", session.Status))
	}
	if participant != nil && participant.AttendanceMarked() {
		return apperr.NewGuard(apperr.ReasonAttendanceMarked, "attendance has already been marked for this session")
	}
	if !now.Before(session.StartsAt.Add(-r.CancelLeadTime)) {
		return apperr.NewGuard(
			apperr.ReasonTooCloseToSession,
			fmt.Sprintf("sessions can only be cancelled more than %s before they start", r.CancelLeadTime),
		)
	}
	return nil
}

func (r Rules) CanReschedule(session *models.Session, participant *models.SessionParticipant, now time.Time) error {
	if !isOpen(session.Status) {
		return apperr.NewGuard(apperr.ReasonTerminalState, fmt.Sprintf("session is %s", session.Status))
	}
	if participant != nil && participant.AttendanceMarked() {
		return apperr.NewGuard(apperr.ReasonAttendanceMarked, "attendance has already been marked for this session")
	}
	if session.RescheduleCount >= r.MaxReschedules {
		return apperr.NewGuard(apperr.ReasonAlreadyRescheduled, "session has already been rescheduled")
	}
	if !now.Before(session.StartsAt.Add(-r.RescheduleLeadTime)) {
		return apperr.NewGuard(
			apperr.ReasonTooCloseToSession,
			fmt.Sprintf("sessions can only be rescheduled more than %s before they start", r.RescheduleLeadTime),
		)
	}
	return nil
}

// CanMarkAttendance allows marking on any session that was not cancelled.
// Completed sessions accept corrections.
func (r Rules) CanMarkAttendance(session *models.Session, now time.Time) error {
	if session.Status == models.SessionCancelled {
		return apperr.NewGuard(apperr.ReasonTerminalState, "attendance cannot be marked on a cancelled session")
	}
	if !r.AllowFutureAttendance && session.StartsAt.After(now) {
		return apperr.NewGuard(apperr.ReasonFutureSession, "attendance cannot be marked before the session starts")
	}
	return nil
}
