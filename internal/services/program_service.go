package services

import (
	"context"
	"strings"

	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type programStore interface {
	Create(ctx context.Context, input repository.CreateProgramInput) (*models.Program, error)
	Update(ctx context.Context, programID int64, input repository.UpdateProgramInput) (*models.Program, error)
	GetByID(ctx context.Context, programID int64) (*models.Program, error)
	ListByCoachID(ctx context.Context, coachID int64) ([]models.Program, error)
	HasSessions(ctx context.Context, programID int64) (bool, error)
}

type ProgramService struct {
	programRepo programStore
	userRepo    userReader
	log         *zap.Logger
}

func NewProgramService(programRepo programStore, userRepo userReader, log *zap.Logger) *ProgramService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgramService{
		programRepo: programRepo,
		userRepo:    userRepo,
		log:         log,
	}
}

type ProgramInput struct {
	CoachID       int64
	Title         string
	Description   *string
	Fee           decimal.Decimal
	DurationWeeks int
	Capacity      int
}

func (input ProgramInput) validate() (string, error) {
	title := strings.TrimSpace(input.Title)
	var verr *apperr.ValidationError
	add := func(field, message string) {
		if verr == nil {
			verr = apperr.NewValidation(field, message)
			return
		}
		verr.Add(field, message)
	}

	if title == "" {
		add("title", "is required")
	}
	if input.Fee.IsNegative() {
		add("fee", "cannot be negative")
	}
	if input.DurationWeeks <= 0 {
		add("duration_weeks", "must be positive")
	}
	if input.Capacity <= 0 {
		add("capacity", "must be positive")
	}
	if verr != nil {
		return "", verr
	}
	return title, nil
}

// CreateProgram lets a coach create a program for themselves, or an admin
// create one for any coach. total_sessions always equals duration_weeks.
func (s *ProgramService) CreateProgram(ctx context.Context, actorID int64, role string, input ProgramInput) (*models.Program, error) {
	switch role {
	case models.RoleCoach:
		input.CoachID = actorID
	case models.RoleAdmin:
		if input.CoachID <= 0 {
			return nil, apperr.NewValidation("coach_id", "is required")
		}
	default:
		return nil, apperr.NewAuthorization("create programs")
	}

	title, err := input.validate()
	if err != nil {
		return nil, err
	}

	coach, err := s.userRepo.GetByID(ctx, input.CoachID)
	if err != nil {
		return nil, notFound(err, "coach", input.CoachID)
	}
	if coach.Role != models.RoleCoach {
		return nil, apperr.NewValidation("coach_id", "is not a coach")
	}

	program, err := s.programRepo.Create(ctx, repository.CreateProgramInput{
		CoachID:       input.CoachID,
		Title:         title,
		Description:   trimmedOrNil(input.Description),
		Fee:           input.Fee.Round(2),
		DurationWeeks: input.DurationWeeks,
		Capacity:      input.Capacity,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("program created", zap.Int64("program_id", program.ID), zap.Int64("coach_id", program.CoachID))
	return program, nil
}

// UpdateProgram rewrites a program. Once sessions have been booked against it
// only an admin passing override may change it.
func (s *ProgramService) UpdateProgram(
	ctx context.Context,
	actorID int64,
	role string,
	programID int64,
	input ProgramInput,
	override bool,
) (*models.Program, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, notFound(err, "program", programID)
	}
	if role != models.RoleAdmin && !(role == models.RoleCoach && program.CoachID == actorID) {
		return nil, apperr.NewAuthorization("edit this program")
	}

	title, err := input.validate()
	if err != nil {
		return nil, err
	}

	locked, err := s.programRepo.HasSessions(ctx, programID)
	if err != nil {
		return nil, err
	}
	if locked && !(role == models.RoleAdmin && override) {
		return nil, apperr.NewGuard(apperr.ReasonProgramLocked, "program has booked sessions and can only be changed by an admin override")
	}

	updated, err := s.programRepo.Update(ctx, programID, repository.UpdateProgramInput{
		Title:         title,
		Description:   trimmedOrNil(input.Description),
		Fee:           input.Fee.Round(2),
		DurationWeeks: input.DurationWeeks,
		Capacity:      input.Capacity,
	})
	if err != nil {
		return nil, notFound(err, "program", programID)
	}
	if locked {
		s.log.Warn("program edited after sessions were booked",
			zap.Int64("program_id", programID),
			zap.Int64("admin_id", actorID),
		)
	}
	return updated, nil
}

func (s *ProgramService) GetProgram(ctx context.Context, programID int64) (*models.Program, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, notFound(err, "program", programID)
	}
	return program, nil
}

// ListCoachPrograms is the coach's assigned-program index, derived from the
// programs' coach reference.
func (s *ProgramService) ListCoachPrograms(ctx context.Context, coachID int64) ([]models.Program, error) {
	if coachID <= 0 {
		return nil, apperr.NewValidation("coach_id", "must be positive")
	}
	return s.programRepo.ListByCoachID(ctx, coachID)
}
