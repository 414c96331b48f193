package services

import (
	"context"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/config"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/scheduling"
)

type coachAvailabilityReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Coach, error)
}

type coachSessionLister interface {
	ListCoachSessionsOn(ctx context.Context, coachID int64, date time.Time, excludedSessionID int64) ([]models.Session, error)
}

type AvailabilityService struct {
	coachRepo   coachAvailabilityReader
	sessionRepo coachSessionLister
	policy      config.Policy
}

func NewAvailabilityService(
	coachRepo coachAvailabilityReader,
	sessionRepo coachSessionLister,
	policy config.Policy,
) *AvailabilityService {
	return &AvailabilityService{
		coachRepo:   coachRepo,
		sessionRepo: sessionRepo,
		policy:      policy,
	}
}

// AvailableSlotsQuery carries optional pacing inputs. When all three are
// set the date is first checked against the session's week window.
type AvailableSlotsQuery struct {
	CoachID        int64
	Date           time.Time
	EnrollmentDate *time.Time
	DurationWeeks  *int
	SessionNumber  *int
}

func (s *AvailabilityService) GetAvailableSlots(ctx context.Context, query AvailableSlotsQuery) ([]scheduling.Slot, error) {
	if query.CoachID <= 0 {
		return nil, apperr.NewValidation("coach_id", "must be positive")
	}
	if query.EnrollmentDate != nil && query.DurationWeeks != nil && query.SessionNumber != nil {
		if err := scheduling.CheckPacing(*query.EnrollmentDate, *query.DurationWeeks, *query.SessionNumber, query.Date); err != nil {
			return nil, err
		}
	}

	coach, err := s.coachRepo.GetByUserID(ctx, query.CoachID)
	if err != nil {
		return nil, notFound(err, "coach", query.CoachID)
	}
	booked, err := s.sessionRepo.ListCoachSessionsOn(ctx, query.CoachID, scheduling.DateOnly(query.Date), 0)
	if err != nil {
		return nil, err
	}
	return scheduling.ResolveSlots(coach.Availability, query.Date, s.policy.SlotDuration, bookedRanges(booked)), nil
}

// checkCoachSlot verifies start/end is one of the coach's generated slots on
// date and that no other live session of the coach overlaps it.
func checkCoachSlot(
	ctx context.Context,
	windows []models.AvailabilityWindow,
	sessions coachSessionLister,
	coachID int64,
	date time.Time,
	slotLength time.Duration,
	startTime string,
	endTime string,
	excludedSessionID int64,
) error {
	all := scheduling.ResolveSlots(windows, date, slotLength, nil)
	if !scheduling.ContainsSlot(all, startTime, endTime) {
		return apperr.NewValidation("start_time", "is not one of the coach's available slots on this date")
	}

	booked, err := sessions.ListCoachSessionsOn(ctx, coachID, scheduling.DateOnly(date), excludedSessionID)
	if err != nil {
		return err
	}
	free := scheduling.ResolveSlots(windows, date, slotLength, bookedRanges(booked))
	if !scheduling.ContainsSlot(free, startTime, endTime) {
		return apperr.NewConflict(apperr.ResourceCoachSlot, "the coach is already booked at this time")
	}
	return nil
}
