package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/services"
	"go.uber.org/zap"
)

type sessionApplicationService interface {
	BookSession(ctx context.Context, learnerID int64, input services.BookSessionInput) (*models.Session, error)
	CancelSession(ctx context.Context, learnerID, sessionID int64) (*models.Session, error)
	RescheduleSession(ctx context.Context, learnerID, sessionID int64, input services.RescheduleSessionInput) (*models.Session, error)
	MarkAttendance(ctx context.Context, actorID int64, role string, sessionID int64, input services.MarkAttendanceInput) (*models.Session, error)
	GetSession(ctx context.Context, actorID int64, role string, sessionID int64) (*models.Session, error)
	ListSessions(ctx context.Context, actorID int64, role string, input services.ListSessionsInput) ([]models.Session, int, error)
}

type SessionHandler struct {
	service sessionApplicationService
	log     *zap.Logger
}

func NewSessionHandler(service sessionApplicationService, log *zap.Logger) *SessionHandler {
	return &SessionHandler{service: service, log: orNop(log)}
}

type bookSessionRequest struct {
	ProgramID     int64  `json:"program_id" validate:"required,gt=0"`
	CoachID       int64  `json:"coach_id" validate:"required,gt=0"`
	SessionNumber int    `json:"session_number" validate:"required,gt=0"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime     string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime       string `json:"end_time" validate:"required,datetime=15:04"`
	GroundID      int64  `json:"ground_id" validate:"required,gt=0"`
	GroundSlot    int    `json:"ground_slot" validate:"required,gt=0"`
}

type rescheduleSessionRequest struct {
	NewDate      string `json:"new_date" validate:"required,datetime=2006-01-02"`
	NewStartTime string `json:"new_start_time" validate:"required,datetime=15:04"`
	GroundSlot   *int   `json:"ground_slot" validate:"omitempty,gt=0"`
}

type markAttendanceRequest struct {
	LearnerID   int64   `json:"learner_id" validate:"omitempty,gt=0"`
	Attended    *bool   `json:"attended" validate:"required"`
	Performance *string `json:"performance" validate:"omitempty,max=500"`
	Remarks     *string `json:"remarks" validate:"omitempty,max=1000"`
}

func (h *SessionHandler) BookSession(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if role != models.RoleLearner {
		return forbidden(c)
	}

	var req bookSessionRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	session, err := h.service.BookSession(c.UserContext(), userID, services.BookSessionInput{
		ProgramID:  req.ProgramID,
		CoachID:    req.CoachID,
		Week:       req.SessionNumber,
		Date:       mustDate(req.Date),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		GroundID:   req.GroundID,
		GroundSlot: req.GroundSlot,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) CancelSession(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if role != models.RoleLearner {
		return forbidden(c)
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	session, err := h.service.CancelSession(c.UserContext(), userID, sessionID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) RescheduleSession(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if role != models.RoleLearner {
		return forbidden(c)
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req rescheduleSessionRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	session, err := h.service.RescheduleSession(c.UserContext(), userID, sessionID, services.RescheduleSessionInput{
		Date:       mustDate(req.NewDate),
		StartTime:  req.NewStartTime,
		GroundSlot: req.GroundSlot,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) MarkAttendance(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req markAttendanceRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	session, err := h.service.MarkAttendance(c.UserContext(), userID, role, sessionID, services.MarkAttendanceInput{
		LearnerID:   req.LearnerID,
		Attended:    req.Attended,
		Performance: req.Performance,
		Remarks:     req.Remarks,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	session, err := h.service.GetSession(c.UserContext(), userID, role, sessionID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	page, limit := parsePage(c)

	sessions, total, err := h.service.ListSessions(c.UserContext(), userID, role, services.ListSessionsInput{
		Status:    c.Query("status"),
		Timeframe: c.Query("timeframe"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"sessions":   sessions,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}
