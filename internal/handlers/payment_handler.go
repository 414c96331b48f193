package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/services"
	"go.uber.org/zap"
)

type paymentApplicationService interface {
	CreatePayment(ctx context.Context, learnerID, enrollmentID int64) (*models.Payment, error)
	HandleNotification(ctx context.Context, notif services.Notification) (*models.Payment, error)
}

type PaymentHandler struct {
	service paymentApplicationService
	log     *zap.Logger
}

func NewPaymentHandler(service paymentApplicationService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, log: orNop(log)}
}

func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if role != models.RoleLearner {
		return forbidden(c)
	}
	enrollmentID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	payment, err := h.service.CreatePayment(c.UserContext(), userID, enrollmentID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payment": payment})
}

// Notification is the Midtrans HTTP notification endpoint. It is
// unauthenticated; the payload signature is the credential.
func (h *PaymentHandler) Notification(c *fiber.Ctx) error {
	var notif services.Notification
	if err := c.BodyParser(&notif); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	payment, err := h.service.HandleNotification(c.UserContext(), notif)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"order_id": payment.OrderID, "status": payment.Status})
}
