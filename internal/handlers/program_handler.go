package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type programApplicationService interface {
	CreateProgram(ctx context.Context, actorID int64, role string, input services.ProgramInput) (*models.Program, error)
	UpdateProgram(ctx context.Context, actorID int64, role string, programID int64, input services.ProgramInput, override bool) (*models.Program, error)
	GetProgram(ctx context.Context, programID int64) (*models.Program, error)
}

type ProgramHandler struct {
	service programApplicationService
	log     *zap.Logger
}

func NewProgramHandler(service programApplicationService, log *zap.Logger) *ProgramHandler {
	return &ProgramHandler{service: service, log: orNop(log)}
}

type programRequest struct {
	CoachID       int64           `json:"coach_id" validate:"omitempty,gt=0"`
	Title         string          `json:"title" validate:"required,max=200"`
	Description   *string         `json:"description" validate:"omitempty,max=5000"`
	Fee           decimal.Decimal `json:"fee"`
	DurationWeeks int             `json:"duration_weeks" validate:"required,gt=0,lte=104"`
	Capacity      int             `json:"capacity" validate:"required,gt=0"`
	Override      bool            `json:"override"`
}

func (req programRequest) input() services.ProgramInput {
	return services.ProgramInput{
		CoachID:       req.CoachID,
		Title:         req.Title,
		Description:   req.Description,
		Fee:           req.Fee,
		DurationWeeks: req.DurationWeeks,
		Capacity:      req.Capacity,
	}
}

func (h *ProgramHandler) CreateProgram(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if role != models.RoleCoach && role != models.RoleAdmin {
		return forbidden(c)
	}

	var req programRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	program, err := h.service.CreateProgram(c.UserContext(), userID, role, req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"program": program})
}

// UpdateProgram replaces the editable fields. Admins pass "override": true to
// edit a program that already has sessions.
func (h *ProgramHandler) UpdateProgram(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req programRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	program, err := h.service.UpdateProgram(c.UserContext(), userID, role, programID, req.input(), req.Override)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"program": program})
}

func (h *ProgramHandler) GetProgram(c *fiber.Ctx) error {
	programID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	program, err := h.service.GetProgram(c.UserContext(), programID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"program": program})
}
