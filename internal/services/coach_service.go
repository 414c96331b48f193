package services

import (
	"context"
	"strings"

	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/repository"
	"github.com/saeid-a/CoachAcademyBack/internal/scheduling"
)

type CoachService struct {
	db        txStarter
	coachRepo *repository.CoachRepository
	userRepo  userReader
}

func NewCoachService(db txStarter, coachRepo *repository.CoachRepository, userRepo userReader) *CoachService {
	return &CoachService{db: db, coachRepo: coachRepo, userRepo: userRepo}
}

func (s *CoachService) GetCoach(ctx context.Context, coachID int64) (*models.Coach, error) {
	coach, err := s.coachRepo.GetByUserID(ctx, coachID)
	if err != nil {
		return nil, notFound(err, "coach", coachID)
	}
	return coach, nil
}

// ReplaceAvailability swaps the coach's weekly windows as one unit. Booked
// sessions are left alone even when they fall outside the new windows.
func (s *CoachService) ReplaceAvailability(
	ctx context.Context,
	coachID int64,
	role string,
	windows []models.AvailabilityWindow,
) (*models.Coach, error) {
	if role != models.RoleCoach {
		return nil, apperr.NewAuthorization("edit availability")
	}

	normalized := make([]models.AvailabilityWindow, 0, len(windows))
	for i, window := range windows {
		normalized = append(normalized, models.AvailabilityWindow{
			Position:  i + 1,
			DayOfWeek: strings.ToLower(strings.TrimSpace(window.DayOfWeek)),
			StartTime: strings.TrimSpace(window.StartTime),
			EndTime:   strings.TrimSpace(window.EndTime),
		})
	}
	if err := scheduling.ValidateWindows(normalized); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, coachID)
	if err != nil {
		return nil, notFound(err, "coach", coachID)
	}
	if user.Role != models.RoleCoach {
		return nil, apperr.NewAuthorization("edit availability")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txCoachRepo := repository.NewCoachRepository(tx)
	if err := txCoachRepo.CreateEmpty(ctx, coachID); err != nil {
		return nil, err
	}
	if err := lockKey(ctx, tx, "coach", coachID); err != nil {
		return nil, err
	}
	if err := txCoachRepo.ReplaceAvailability(ctx, coachID, normalized); err != nil {
		return nil, err
	}
	coach, err := txCoachRepo.GetByUserID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return coach, nil
}
