package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"go.uber.org/zap"
)

type certificateApplicationService interface {
	CheckEligibility(ctx context.Context, actorID int64, role string, enrollmentID int64) (*models.CertificateEligibility, error)
	GenerateCertificate(ctx context.Context, actorID int64, role string, enrollmentID int64) (*models.Certificate, bool, error)
	GetCertificate(ctx context.Context, actorID int64, role string, certificateID int64) (*models.Certificate, error)
	DownloadCertificate(ctx context.Context, actorID int64, role string, certificateID int64) ([]byte, *models.Certificate, error)
	CertificateLink(ctx context.Context, actorID int64, role string, certificateID int64) (string, error)
	VerifyByNumber(ctx context.Context, number, hash string) (*models.CertificateVerification, error)
	VerifyByHash(ctx context.Context, hash string) (*models.CertificateVerification, error)
}

type CertificateHandler struct {
	service certificateApplicationService
	log     *zap.Logger
}

func NewCertificateHandler(service certificateApplicationService, log *zap.Logger) *CertificateHandler {
	return &CertificateHandler{service: service, log: orNop(log)}
}

func (h *CertificateHandler) CheckEligibility(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	enrollmentID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	eligibility, err := h.service.CheckEligibility(c.UserContext(), userID, role, enrollmentID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"eligibility": eligibility})
}

// GenerateCertificate answers 201 when this request issued the certificate
// and 200 when it already existed.
func (h *CertificateHandler) GenerateCertificate(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	enrollmentID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	certificate, created, err := h.service.GenerateCertificate(c.UserContext(), userID, role, enrollmentID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"certificate": certificate, "created": created})
}

func (h *CertificateHandler) GetCertificate(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	certificateID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	certificate, err := h.service.GetCertificate(c.UserContext(), userID, role, certificateID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"certificate": certificate})
}

func (h *CertificateHandler) DownloadCertificate(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	certificateID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	pdf, certificate, err := h.service.DownloadCertificate(c.UserContext(), userID, role, certificateID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.pdf"`, certificate.CertificateNumber))
	return c.Send(pdf)
}

func (h *CertificateHandler) CertificateLink(c *fiber.Ctx) error {
	userID, role, err := actor(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	certificateID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	url, err := h.service.CertificateLink(c.UserContext(), userID, role, certificateID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

func (h *CertificateHandler) VerifyByNumber(c *fiber.Ctx) error {
	verification, err := h.service.VerifyByNumber(c.UserContext(), c.Params("number"), c.Query("hash"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"verification": verification})
}

func (h *CertificateHandler) VerifyByHash(c *fiber.Ctx) error {
	verification, err := h.service.VerifyByHash(c.UserContext(), c.Params("hash"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"verification": verification})
}
