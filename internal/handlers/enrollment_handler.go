package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/services"
	"go.uber.org/zap"
)

type enrollmentApplicationService interface {
	Enroll(ctx context.Context, learnerID int64, role string, input services.EnrollInput) (*models.Enrollment, error)
	GetEnrollment(ctx context.Context, actorID int64, role string, enrollmentID int64) (*models.Enrollment, error)
	GetProgress(ctx context.Context, actorID int64, role string, enrollmentID int64) (*models.Progress, error)
}

type EnrollmentHandler struct {
	service enrollmentApplicationService
	log     *zap.Logger
}

func NewEnrollmentHandler(service enrollmentApplicationService, log *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{service: service, log: orNop(log)}
}

type enrollRequest struct {
	ProgramID      int64  `json:"program_id" validate:"required,gt=0"`
	EnrollmentDate string `json:"enrollment_date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req enrollRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	input := services.EnrollInput{ProgramID: req.ProgramID}
	if req.EnrollmentDate != "" {
		date := mustDate(req.EnrollmentDate)
		input.EnrollmentDate = &date
	}

	enrollment, err := h.service.Enroll(c.UserContext(), userID, role, input)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"enrollment": enrollment})
}

func (h *EnrollmentHandler) GetEnrollment(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	enrollmentID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	enrollment, err := h.service.GetEnrollment(c.UserContext(), userID, role, enrollmentID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"enrollment": enrollment})
}

func (h *EnrollmentHandler) GetProgress(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	enrollmentID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	progress, err := h.service.GetProgress(c.UserContext(), userID, role, enrollmentID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"progress": progress})
}
