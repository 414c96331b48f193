package services

import (
	"context"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/config"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/repository"
	"github.com/saeid-a/CoachAcademyBack/internal/scheduling"
)

type EnrollmentService struct {
	db             txStarter
	enrollmentRepo *repository.EnrollmentRepository
	programRepo    *repository.ProgramRepository
	attendanceRepo *repository.AttendanceRepository
	policy         config.Policy
	now            func() time.Time
}

func NewEnrollmentService(
	db txStarter,
	enrollmentRepo *repository.EnrollmentRepository,
	programRepo *repository.ProgramRepository,
	attendanceRepo *repository.AttendanceRepository,
	policy config.Policy,
) *EnrollmentService {
	return &EnrollmentService{
		db:             db,
		enrollmentRepo: enrollmentRepo,
		programRepo:    programRepo,
		attendanceRepo: attendanceRepo,
		policy:         policy,
		now:            time.Now,
	}
}

type EnrollInput struct {
	ProgramID      int64
	EnrollmentDate *time.Time
}

// Enroll signs a learner up for a program. The enrollment stays pending
// until its payment settles.
func (s *EnrollmentService) Enroll(ctx context.Context, learnerID int64, role string, input EnrollInput) (*models.Enrollment, error) {
	if role != models.RoleLearner {
		return nil, apperr.NewAuthorization("enroll in programs")
	}
	if input.ProgramID <= 0 {
		return nil, apperr.NewValidation("program_id", "must be positive")
	}

	today := scheduling.Today(s.now(), s.policy.Location())
	enrollmentDate := today
	if input.EnrollmentDate != nil {
		enrollmentDate = scheduling.DateOnly(*input.EnrollmentDate)
		if enrollmentDate.Before(today) {
			return nil, apperr.NewValidation("enrollment_date", "cannot be in the past")
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	program, err := repository.NewProgramRepository(tx).GetByIDForUpdate(ctx, input.ProgramID)
	if err != nil {
		return nil, notFound(err, "program", input.ProgramID)
	}

	txEnrollmentRepo := repository.NewEnrollmentRepository(tx)
	open, err := txEnrollmentRepo.CountOpenByProgram(ctx, program.ID)
	if err != nil {
		return nil, err
	}
	if open >= program.Capacity {
		return nil, apperr.NewGuard(apperr.ReasonProgramFull, "program has no free places")
	}

	enrollment, err := txEnrollmentRepo.Create(ctx, learnerID, program.ID, enrollmentDate)
	if err != nil {
		if name, ok := repository.ConstraintViolation(err); ok && name == repository.ConstraintOpenEnrollment {
			return nil, apperr.NewConflict(apperr.ResourceEnrollment, "learner is already enrolled in this program")
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) GetEnrollment(ctx context.Context, actorID int64, role string, enrollmentID int64) (*models.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, notFound(err, "enrollment", enrollmentID)
	}
	if err := s.authorize(ctx, actorID, role, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// GetProgress recomputes progress from the attendance ledger rather than
// trusting the stored percentage.
func (s *EnrollmentService) GetProgress(ctx context.Context, actorID int64, role string, enrollmentID int64) (*models.Progress, error) {
	enrollment, err := s.GetEnrollment(ctx, actorID, role, enrollmentID)
	if err != nil {
		return nil, err
	}
	program, err := s.programRepo.GetByID(ctx, enrollment.ProgramID)
	if err != nil {
		return nil, notFound(err, "program", enrollment.ProgramID)
	}
	attended, err := s.attendanceRepo.CountAttended(ctx, enrollment.LearnerID, enrollment.ProgramID)
	if err != nil {
		return nil, err
	}

	today := scheduling.Today(s.now(), s.policy.Location())
	return &models.Progress{
		EnrollmentID:     enrollment.ID,
		AttendedSessions: attended,
		TotalSessions:    program.TotalSessions,
		Percentage:       scheduling.Progress(attended, program.TotalSessions, enrollment.EnrollmentDate, today),
		Eligible: scheduling.IsEligible(
			scheduling.AttendancePercentage(attended, program.TotalSessions),
			s.policy.EligibilityThreshold,
		),
		CurrentWeek: scheduling.WeekOf(enrollment.EnrollmentDate, program.DurationWeeks, today),
		Weeks:       programWeeks(enrollment.EnrollmentDate, program.DurationWeeks),
	}, nil
}

func programWeeks(enrollmentDate time.Time, durationWeeks int) []models.ProgramWeek {
	windows := scheduling.WeekWindows(enrollmentDate, durationWeeks)
	weeks := make([]models.ProgramWeek, 0, len(windows))
	for _, window := range windows {
		weeks = append(weeks, models.ProgramWeek{
			Week:  window.Week,
			Start: formatDate(window.Start),
			End:   formatDate(window.End),
		})
	}
	return weeks
}

func (s *EnrollmentService) authorize(ctx context.Context, actorID int64, role string, enrollment *models.Enrollment) error {
	switch role {
	case models.RoleAdmin:
		return nil
	case models.RoleLearner:
		if enrollment.LearnerID == actorID {
			return nil
		}
	case models.RoleCoach:
		program, err := s.programRepo.GetByID(ctx, enrollment.ProgramID)
		if err != nil {
			return notFound(err, "program", enrollment.ProgramID)
		}
		if program.CoachID == actorID {
			return nil
		}
	}
	return apperr.NewAuthorization("view this enrollment")
}
