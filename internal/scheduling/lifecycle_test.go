package scheduling

import (
	"errors"
	"testing"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
)

var testRules = Rules{
	CancelLeadTime:     2 * time.Hour,
	RescheduleLeadTime: 24 * time.Hour,
	MaxReschedules:     1,
}

func guardReason(t *testing.T, err error) string {
	t.Helper()
	var guard *apperr.GuardError
	if !errors.As(err, &guard) {
		t.Fatalf("expected guard error, got %v", err)
	}
	return guard.Reason
}

func TestCanCancel(t *testing.T) {
	now := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
	unmarked := &models.SessionParticipant{AttendanceStatus: models.AttendanceUnmarked}

	session := &models.Session{Status: models.SessionScheduled, StartsAt: now.Add(3 * time.Hour)}
	if err := testRules.CanCancel(session, unmarked, now); err != nil {
		t.Fatalf("expected cancel to be allowed, got %v", err)
	}

	session.StartsAt = now.Add(2 * time.Hour)
	if reason := guardReason(t, testRules.CanCancel(session, unmarked, now)); reason != apperr.ReasonTooCloseToSession {
		t.Fatalf("unexpected reason %q", reason)
	}

	session.StartsAt = now.Add(48 * time.Hour)
	absent := &models.SessionParticipant{AttendanceStatus: models.AttendanceAbsent}
	if reason := guardReason(t, testRules.CanCancel(session, absent, now)); reason != apperr.ReasonAttendanceMarked {
		t.Fatalf("unexpected reason %q", reason)
	}

	session.Status = models.SessionCancelled
	if reason := guardReason(t, testRules.CanCancel(session, unmarked, now)); reason != apperr.ReasonTerminalState {
		t.Fatalf("unexpected reason %q", reason)
	}
}

func TestCanRescheduleOnlyOnce(t *testing.T) {
	now := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
	unmarked := &models.SessionParticipant{AttendanceStatus: models.AttendanceUnmarked}
	session := &models.Session{Status: models.SessionScheduled, StartsAt: now.Add(30 * time.Hour)}

	if err := testRules.CanReschedule(session, unmarked, now); err != nil {
		t.Fatalf("expected first reschedule to be allowed, got %v", err)
	}

	session.Status = models.SessionRescheduled
	session.RescheduleCount = 1
	if reason := guardReason(t, testRules.CanReschedule(session, unmarked, now)); reason != apperr.ReasonAlreadyRescheduled {
		t.Fatalf("unexpected reason %q", reason)
	}
}

func TestCanRescheduleLeadTimeAndAttendance(t *testing.T) {
	now := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
	session := &models.Session{Status: models.SessionScheduled, StartsAt: now.Add(23 * time.Hour)}
	unmarked := &models.SessionParticipant{AttendanceStatus: models.AttendanceUnmarked}

	if reason := guardReason(t, testRules.CanReschedule(session, unmarked, now)); reason != apperr.ReasonTooCloseToSession {
		t.Fatalf("unexpected reason %q", reason)
	}

	session.StartsAt = now.Add(72 * time.Hour)
	present := &models.SessionParticipant{AttendanceStatus: models.AttendancePresent, Attended: true}
	if reason := guardReason(t, testRules.CanReschedule(session, present, now)); reason != apperr.ReasonAttendanceMarked {
		t.Fatalf("unexpected reason %q", reason)
	}
}

func TestCanMarkAttendance(t *testing.T) {
	now := time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)
	future := &models.Session{Status: models.SessionScheduled, StartsAt: now.Add(time.Hour)}

	if reason := guardReason(t, testRules.CanMarkAttendance(future, now)); reason != apperr.ReasonFutureSession {
		t.Fatalf("unexpected reason %q", reason)
	}

	permissive := testRules
	permissive.AllowFutureAttendance = true
	if err := permissive.CanMarkAttendance(future, now); err != nil {
		t.Fatalf("expected future attendance to be allowed, got %v", err)
	}

	completed := &models.Session{Status: models.SessionCompleted, StartsAt: now.Add(-time.Hour)}
	if err := testRules.CanMarkAttendance(completed, now); err != nil {
		t.Fatalf("expected correction on completed session, got %v", err)
	}

	cancelled := &models.Session{Status: models.SessionCancelled, StartsAt: now.Add(-time.Hour)}
	if reason := guardReason(t, testRules.CanMarkAttendance(cancelled, now)); reason != apperr.ReasonTerminalState {
		t.Fatalf("unexpected reason %q", reason)
	}
}
