package services

import (
	"context"
	"strings"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/config"
	"github.com/saeid-a/CoachAcademyBack/internal/metrics"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/repository"
	"github.com/saeid-a/CoachAcademyBack/internal/scheduling"
)

type groundStore interface {
	Create(ctx context.Context, input repository.CreateGroundInput) (*models.Ground, error)
	GetByID(ctx context.Context, groundID int64) (*models.Ground, error)
	ListLiveBookings(ctx context.Context, groundID int64, start, end time.Time) ([]models.GroundBooking, error)
}

type GroundService struct {
	groundRepo groundStore
	policy     config.Policy
}

func NewGroundService(groundRepo groundStore, policy config.Policy) *GroundService {
	return &GroundService{groundRepo: groundRepo, policy: policy}
}

type CreateGroundInput struct {
	Name       string
	Location   string
	TotalSlots int
	Facilities []string
}

func (s *GroundService) CreateGround(ctx context.Context, role string, input CreateGroundInput) (*models.Ground, error) {
	if role != models.RoleAdmin {
		return nil, apperr.NewAuthorization("create grounds")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.NewValidation("name", "is required")
	}
	if input.TotalSlots <= 0 {
		return nil, apperr.NewValidation("total_slots", "must be positive")
	}
	facilities := make([]string, 0, len(input.Facilities))
	for _, facility := range input.Facilities {
		if trimmed := strings.TrimSpace(facility); trimmed != "" {
			facilities = append(facilities, trimmed)
		}
	}
	return s.groundRepo.Create(ctx, repository.CreateGroundInput{
		Name:       name,
		Location:   strings.TrimSpace(input.Location),
		TotalSlots: input.TotalSlots,
		Facilities: facilities,
	})
}

func (s *GroundService) GetGround(ctx context.Context, groundID int64) (*models.Ground, error) {
	ground, err := s.groundRepo.GetByID(ctx, groundID)
	if err != nil {
		return nil, notFound(err, "ground", groundID)
	}
	return ground, nil
}

// GetFreeGroundSlots is the advisory half of ground allocation. The answer
// may be stale by the time the caller books.
func (s *GroundService) GetFreeGroundSlots(
	ctx context.Context,
	groundID int64,
	date time.Time,
	startTime string,
	endTime string,
) ([]int, error) {
	span, err := scheduling.ParseClockRange(startTime, endTime)
	if err != nil {
		return nil, apperr.NewValidation("start_time", err.Error())
	}
	ground, err := s.GetGround(ctx, groundID)
	if err != nil {
		return nil, err
	}

	loc := s.policy.Location()
	start := scheduling.At(date, span.Start, loc)
	end := scheduling.At(date, span.End, loc)
	bookings, err := s.groundRepo.ListLiveBookings(ctx, groundID, start, end)
	if err != nil {
		return nil, err
	}
	return scheduling.FreeGroundSlots(ground.TotalSlots, start, end, bookings), nil
}

// claimGroundSlot is the commit half: it must run inside the booking
// transaction. The exclusion constraint on ground_bookings is the final
// arbiter; a violation becomes a ConflictError.
func claimGroundSlot(
	ctx context.Context,
	db repository.DBTX,
	m *metrics.Metrics,
	ground *models.Ground,
	sessionID int64,
	date time.Time,
	slot int,
	start time.Time,
	end time.Time,
) error {
	if slot < 1 || slot > ground.TotalSlots {
		return apperr.NewValidation("ground_slot", "must be between 1 and the ground's total slots")
	}
	if err := lockKey(ctx, db, "ground", ground.ID, formatDate(date)); err != nil {
		return err
	}

	groundRepo := repository.NewGroundRepository(db)
	bookings, err := groundRepo.ListLiveBookings(ctx, ground.ID, start, end)
	if err != nil {
		return err
	}
	if !scheduling.ContainsInt(scheduling.FreeGroundSlots(ground.TotalSlots, start, end, bookings), slot) {
		m.GroundConflict()
		return apperr.NewConflict(apperr.ResourceGroundSlot, "the ground slot is no longer available")
	}

	if _, err := groundRepo.CreateBooking(ctx, repository.CreateGroundBookingInput{
		GroundID:    ground.ID,
		SessionID:   sessionID,
		BookingDate: scheduling.DateOnly(date),
		SlotNumber:  slot,
		StartsAt:    start,
		EndsAt:      end,
	}); err != nil {
		if _, ok := repository.ConstraintViolation(err); ok {
			m.GroundConflict()
			return apperr.NewConflict(apperr.ResourceGroundSlot, "the ground slot is no longer available")
		}
		return err
	}
	return nil
}
