package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/repository"
	"github.com/shopspring/decimal"
)

type stubProgramRepo struct {
	createResult *models.Program
	createErr    error
	updateResult *models.Program
	getResult    *models.Program
	getErr       error
	hasSessions  bool
	lastCreate   repository.CreateProgramInput
	updated      bool
}

func (r *stubProgramRepo) Create(_ context.Context, input repository.CreateProgramInput) (*models.Program, error) {
	r.lastCreate = input
	return r.createResult, r.createErr
}

func (r *stubProgramRepo) Update(_ context.Context, _ int64, _ repository.UpdateProgramInput) (*models.Program, error) {
	r.updated = true
	return r.updateResult, nil
}

func (r *stubProgramRepo) GetByID(_ context.Context, _ int64) (*models.Program, error) {
	return r.getResult, r.getErr
}

func (r *stubProgramRepo) ListByCoachID(_ context.Context, _ int64) ([]models.Program, error) {
	return nil, nil
}

func (r *stubProgramRepo) HasSessions(_ context.Context, _ int64) (bool, error) {
	return r.hasSessions, nil
}

type stubUserRepo struct {
	users map[int64]*models.User
}

func (r *stubUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func programInput() ProgramInput {
	description := "  Eight weeks of net practice  "
	return ProgramInput{
		Title:         " Junior Batting ",
		Description:   &description,
		Fee:           decimal.RequireFromString("15000.499"),
		DurationWeeks: 8,
		Capacity:      12,
	}
}

func TestProgramServiceCreateProgramForCoach(t *testing.T) {
	programRepo := &stubProgramRepo{createResult: &models.Program{ID: 1, CoachID: 7}}
	service := NewProgramService(programRepo, &stubUserRepo{users: map[int64]*models.User{
		7: {ID: 7, Role: models.RoleCoach},
	}}, nil)

	input := programInput()
	input.CoachID = 99
	program, err := service.CreateProgram(context.Background(), 7, models.RoleCoach, input)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	if program.ID != 1 {
		t.Fatalf("expected program id 1, got %d", program.ID)
	}
	if programRepo.lastCreate.CoachID != 7 {
		t.Fatalf("expected coach to own the program, got %d", programRepo.lastCreate.CoachID)
	}
	if programRepo.lastCreate.Title != "Junior Batting" {
		t.Fatalf("expected trimmed title, got %q", programRepo.lastCreate.Title)
	}
	if programRepo.lastCreate.Description == nil || *programRepo.lastCreate.Description != "Eight weeks of net practice" {
		t.Fatalf("unexpected description: %+v", programRepo.lastCreate.Description)
	}
	if got := programRepo.lastCreate.Fee.StringFixed(2); got != "15000.50" {
		t.Fatalf("expected rounded fee, got %s", got)
	}
}

func TestProgramServiceCreateProgramRejectsLearnerAndBadInput(t *testing.T) {
	service := NewProgramService(&stubProgramRepo{}, &stubUserRepo{}, nil)

	_, err := service.CreateProgram(context.Background(), 5, models.RoleLearner, programInput())
	var authErr *apperr.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected authorization error, got %v", err)
	}

	input := programInput()
	input.DurationWeeks = 0
	input.Title = " "
	_, err = service.CreateProgram(context.Background(), 7, models.RoleCoach, input)
	var validation *apperr.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := validation.Fields["title"]; !ok {
		t.Fatalf("expected title field error, got %+v", validation.Fields)
	}
	if _, ok := validation.Fields["duration_weeks"]; !ok {
		t.Fatalf("expected duration_weeks field error, got %+v", validation.Fields)
	}
}

func TestProgramServiceUpdateProgramLockedOnceSessionsExist(t *testing.T) {
	programRepo := &stubProgramRepo{
		getResult:    &models.Program{ID: 3, CoachID: 7},
		updateResult: &models.Program{ID: 3, CoachID: 7},
		hasSessions:  true,
	}
	service := NewProgramService(programRepo, &stubUserRepo{}, nil)

	_, err := service.UpdateProgram(context.Background(), 7, models.RoleCoach, 3, programInput(), true)
	var guard *apperr.GuardError
	if !errors.As(err, &guard) || guard.Reason != apperr.ReasonProgramLocked {
		t.Fatalf("expected program_locked guard for coach, got %v", err)
	}

	_, err = service.UpdateProgram(context.Background(), 1, models.RoleAdmin, 3, programInput(), false)
	if !errors.As(err, &guard) {
		t.Fatalf("expected guard for admin without override, got %v", err)
	}
	if programRepo.updated {
		t.Fatalf("expected locked program to stay unchanged")
	}

	if _, err := service.UpdateProgram(context.Background(), 1, models.RoleAdmin, 3, programInput(), true); err != nil {
		t.Fatalf("UpdateProgram with override: %v", err)
	}
	if !programRepo.updated {
		t.Fatalf("expected admin override to update the program")
	}
}

func TestProgramServiceUpdateProgramChecksOwnership(t *testing.T) {
	service := NewProgramService(&stubProgramRepo{getResult: &models.Program{ID: 3, CoachID: 7}}, &stubUserRepo{}, nil)

	_, err := service.UpdateProgram(context.Background(), 8, models.RoleCoach, 3, programInput(), false)
	var authErr *apperr.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestProgramServiceGetProgramNotFound(t *testing.T) {
	service := NewProgramService(&stubProgramRepo{getErr: pgx.ErrNoRows}, &stubUserRepo{}, nil)

	_, err := service.GetProgram(context.Background(), 42)
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) || nf.Resource != "program" {
		t.Fatalf("expected program not found, got %v", err)
	}
}
