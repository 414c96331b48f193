package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/services"
	"go.uber.org/zap"
)

type groundApplicationService interface {
	CreateGround(ctx context.Context, role string, input services.CreateGroundInput) (*models.Ground, error)
	GetGround(ctx context.Context, groundID int64) (*models.Ground, error)
	GetFreeGroundSlots(ctx context.Context, groundID int64, date time.Time, startTime, endTime string) ([]int, error)
}

type GroundHandler struct {
	service groundApplicationService
	log     *zap.Logger
}

func NewGroundHandler(service groundApplicationService, log *zap.Logger) *GroundHandler {
	return &GroundHandler{service: service, log: orNop(log)}
}

type createGroundRequest struct {
	Name       string   `json:"name" validate:"required,max=200"`
	Location   string   `json:"location" validate:"max=300"`
	TotalSlots int      `json:"total_slots" validate:"required,gt=0"`
	Facilities []string `json:"facilities"`
}

func (h *GroundHandler) CreateGround(c *fiber.Ctx) error {
	_, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req createGroundRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	ground, err := h.service.CreateGround(c.UserContext(), role, services.CreateGroundInput{
		Name:       req.Name,
		Location:   req.Location,
		TotalSlots: req.TotalSlots,
		Facilities: req.Facilities,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ground": ground})
}

func (h *GroundHandler) GetGround(c *fiber.Ctx) error {
	groundID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	ground, err := h.service.GetGround(c.UserContext(), groundID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"ground": ground})
}

func (h *GroundHandler) GetFreeSlots(c *fiber.Ctx) error {
	groundID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	date, err := parseDateQuery(c, "date", true)
	if err != nil {
		return respondError(c, h.log, err)
	}
	startTime, endTime := c.Query("start_time"), c.Query("end_time")
	if startTime == "" || endTime == "" {
		return respondError(c, h.log, apperr.NewValidation("start_time", "start_time and end_time are required"))
	}

	free, err := h.service.GetFreeGroundSlots(c.UserContext(), groundID, *date, startTime, endTime)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"ground_id":  groundID,
		"date":       date.Format(time.DateOnly),
		"start_time": startTime,
		"end_time":   endTime,
		"free_slots": free,
	})
}
