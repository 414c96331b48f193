package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/render"
	"github.com/saeid-a/CoachAcademyBack/internal/services"
	"go.uber.org/zap"
)

// respondError maps the domain error taxonomy to HTTP. Anything unrecognised
// is logged and answered with a generic 500.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var (
		validation  *apperr.ValidationError
		pacing      *apperr.PacingError
		conflict    *apperr.ConflictError
		guard       *apperr.GuardError
		eligibility *apperr.EligibilityError
		notFound    *apperr.NotFoundError
		forbidden   *apperr.AuthorizationError
	)

	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Invalid request",
			"fields": validation.Fields,
		})
	case errors.As(err, &pacing):
		body := fiber.Map{
			"error":         pacing.Error(),
			"reason":        "pacing",
			"expected_week": pacing.ExpectedWeek,
			"actual_week":   pacing.ActualWeek,
			"date":          pacing.Date.Format(apperr.DateLayout),
			"window_start":  pacing.WindowStart.Format(apperr.DateLayout),
			"window_end":    pacing.WindowEnd.Format(apperr.DateLayout),
		}
		if pacing.ProgramWeeks > 0 {
			body["program_weeks"] = pacing.ProgramWeeks
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(body)
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":    conflict.Message,
			"resource": conflict.Resource,
		})
	case errors.As(err, &guard):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  guard.Message,
			"reason": guard.Reason,
		})
	case errors.As(err, &eligibility):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":    eligibility.Error(),
			"reason":   "not_eligible",
			"current":  eligibility.Current,
			"required": eligibility.Required,
		})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":    notFound.Error(),
			"resource": notFound.Resource,
		})
	case errors.As(err, &forbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, errInvalidActor):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	case errors.Is(err, services.ErrInvalidSignature):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid signature"})
	case errors.Is(err, services.ErrStorageUnavailable),
		errors.Is(err, services.ErrPaymentsUnavailable),
		errors.Is(err, render.ErrRendererUnavailable):
		log.Warn("dependency unavailable", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Service temporarily unavailable"})
	default:
		requestID, _ := c.Locals("request_id").(string)
		log.Error("request failed",
			zap.String("request_id", requestID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process request"})
	}
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
