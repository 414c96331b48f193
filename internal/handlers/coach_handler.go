package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/scheduling"
	"github.com/saeid-a/CoachAcademyBack/internal/services"
	"go.uber.org/zap"
)

type coachApplicationService interface {
	GetCoach(ctx context.Context, coachID int64) (*models.Coach, error)
	ReplaceAvailability(ctx context.Context, coachID int64, role string, windows []models.AvailabilityWindow) (*models.Coach, error)
}

type availabilityApplicationService interface {
	GetAvailableSlots(ctx context.Context, query services.AvailableSlotsQuery) ([]scheduling.Slot, error)
}

type coachProgramLister interface {
	ListCoachPrograms(ctx context.Context, coachID int64) ([]models.Program, error)
}

type CoachHandler struct {
	coaches      coachApplicationService
	availability availabilityApplicationService
	programs     coachProgramLister
	log          *zap.Logger
}

func NewCoachHandler(
	coaches coachApplicationService,
	availability availabilityApplicationService,
	programs coachProgramLister,
	log *zap.Logger,
) *CoachHandler {
	return &CoachHandler{
		coaches:      coaches,
		availability: availability,
		programs:     programs,
		log:          orNop(log),
	}
}

type availabilityWindowRequest struct {
	DayOfWeek string `json:"day_of_week" validate:"required,oneof=sunday monday tuesday wednesday thursday friday saturday"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
}

type replaceAvailabilityRequest struct {
	Windows []availabilityWindowRequest `json:"windows" validate:"dive"`
}

func (h *CoachHandler) GetAvailability(c *fiber.Ctx) error {
	coachID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	coach, err := h.coaches.GetCoach(c.UserContext(), coachID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"coach_id": coach.UserID, "availability": coach.Availability})
}

func (h *CoachHandler) ReplaceAvailability(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if role != models.RoleCoach {
		return forbidden(c)
	}

	var req replaceAvailabilityRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	windows := make([]models.AvailabilityWindow, 0, len(req.Windows))
	for _, window := range req.Windows {
		windows = append(windows, models.AvailabilityWindow{
			DayOfWeek: window.DayOfWeek,
			StartTime: window.StartTime,
			EndTime:   window.EndTime,
		})
	}

	coach, err := h.coaches.ReplaceAvailability(c.UserContext(), userID, role, windows)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"coach_id": coach.UserID, "availability": coach.Availability})
}

// GetSlots answers with the coach's free slots on ?date. Passing
// enrollment_date, duration_weeks and session_number also checks pacing.
func (h *CoachHandler) GetSlots(c *fiber.Ctx) error {
	coachID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	date, err := parseDateQuery(c, "date", true)
	if err != nil {
		return respondError(c, h.log, err)
	}
	enrollmentDate, err := parseDateQuery(c, "enrollment_date", false)
	if err != nil {
		return respondError(c, h.log, err)
	}
	durationWeeks, err := parseIntQuery(c, "duration_weeks")
	if err != nil {
		return respondError(c, h.log, err)
	}
	sessionNumber, err := parseIntQuery(c, "session_number")
	if err != nil {
		return respondError(c, h.log, err)
	}

	slots, err := h.availability.GetAvailableSlots(c.UserContext(), services.AvailableSlotsQuery{
		CoachID:        coachID,
		Date:           *date,
		EnrollmentDate: enrollmentDate,
		DurationWeeks:  durationWeeks,
		SessionNumber:  sessionNumber,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"coach_id": coachID,
		"date":     date.Format(time.DateOnly),
		"slots":    slots,
	})
}

func (h *CoachHandler) ListPrograms(c *fiber.Ctx) error {
	coachID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	programs, err := h.programs.ListCoachPrograms(c.UserContext(), coachID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"programs": programs})
}
