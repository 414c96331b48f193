package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/render"
	"github.com/saeid-a/CoachAcademyBack/internal/services"
)

type stubCertificateService struct {
	certificate  *models.Certificate
	created      bool
	eligibility  *models.CertificateEligibility
	verification *models.CertificateVerification
	pdf          []byte
	link         string
	err          error
	lastNumber   string
	lastHash     string
	lastActorID  int64
	lastRole     string
}

func (s *stubCertificateService) CheckEligibility(_ context.Context, actorID int64, role string, _ int64) (*models.CertificateEligibility, error) {
	s.lastActorID, s.lastRole = actorID, role
	return s.eligibility, s.err
}

func (s *stubCertificateService) GenerateCertificate(_ context.Context, actorID int64, role string, _ int64) (*models.Certificate, bool, error) {
	s.lastActorID, s.lastRole = actorID, role
	return s.certificate, s.created, s.err
}

func (s *stubCertificateService) GetCertificate(context.Context, int64, string, int64) (*models.Certificate, error) {
	return s.certificate, s.err
}

func (s *stubCertificateService) DownloadCertificate(context.Context, int64, string, int64) ([]byte, *models.Certificate, error) {
	return s.pdf, s.certificate, s.err
}

func (s *stubCertificateService) CertificateLink(context.Context, int64, string, int64) (string, error) {
	return s.link, s.err
}

func (s *stubCertificateService) VerifyByNumber(_ context.Context, number, hash string) (*models.CertificateVerification, error) {
	s.lastNumber, s.lastHash = number, hash
	return s.verification, s.err
}

func (s *stubCertificateService) VerifyByHash(_ context.Context, hash string) (*models.CertificateVerification, error) {
	s.lastHash = hash
	return s.verification, s.err
}

func sampleCertificate() *models.Certificate {
	return &models.Certificate{
		ID:                11,
		CertificateNumber: "CERT-2026-004217",
		LearnerID:         42,
		EnrollmentID:      5,
		ProgramID:         3,
		IssueDate:         time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		VerificationHash:  "abc123",
	}
}

func TestGenerateCertificateStatusReflectsCreation(t *testing.T) {
	tests := []struct {
		name    string
		created bool
		status  int
	}{
		{name: "issued now", created: true, status: http.StatusCreated},
		{name: "already issued", created: false, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubCertificateService{certificate: sampleCertificate(), created: tt.created}
			handler := NewCertificateHandler(service, nil)

			app := newTestApp(models.RoleLearner, "42")
			app.Post("/api/v1/enrollments/:id/certificate", handler.GenerateCertificate)

			resp, body := doJSON(t, app, http.MethodPost, "/api/v1/enrollments/5/certificate", "")
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			certificate, _ := body["certificate"].(map[string]any)
			if certificate["certificate_number"] != "CERT-2026-004217" {
				t.Fatalf("unexpected body %v", body)
			}
		})
	}
}

func TestGenerateCertificateBelowThreshold(t *testing.T) {
	service := &stubCertificateService{err: &apperr.EligibilityError{Current: 50, Required: 75}}
	handler := NewCertificateHandler(service, nil)

	app := newTestApp(models.RoleLearner, "42")
	app.Post("/api/v1/enrollments/:id/certificate", handler.GenerateCertificate)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/enrollments/5/certificate", "")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if body["current"] != float64(50) || body["required"] != float64(75) {
		t.Fatalf("expected current and required percentages, got %v", body)
	}
}

func TestCheckEligibilityReturnsFigures(t *testing.T) {
	service := &stubCertificateService{eligibility: &models.CertificateEligibility{
		EnrollmentID:         5,
		AttendedSessions:     3,
		TotalSessions:        4,
		AttendancePercentage: 75,
		RequiredPercentage:   75,
		IsEligible:           true,
	}}
	handler := NewCertificateHandler(service, nil)

	app := newTestApp(models.RoleCoach, "7")
	app.Get("/api/v1/enrollments/:id/certificate/eligibility", handler.CheckEligibility)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/enrollments/5/certificate/eligibility", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	eligibility, _ := body["eligibility"].(map[string]any)
	if eligibility["is_eligible"] != true || service.lastRole != models.RoleCoach {
		t.Fatalf("unexpected eligibility %v", body)
	}
}

func TestDownloadCertificateServesPDF(t *testing.T) {
	service := &stubCertificateService{certificate: sampleCertificate(), pdf: []byte("%PDF-1.7 test")}
	handler := NewCertificateHandler(service, nil)

	app := newTestApp(models.RoleLearner, "42")
	app.Get("/api/v1/certificates/:id/download", handler.DownloadCertificate)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/certificates/11/download", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename="CERT-2026-004217.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	raw, _ := io.ReadAll(resp.Body)
	if string(raw) != "%PDF-1.7 test" {
		t.Fatalf("unexpected body %q", raw)
	}
}

func TestDownloadCertificateRendererUnavailable(t *testing.T) {
	handler := NewCertificateHandler(&stubCertificateService{err: render.ErrRendererUnavailable}, nil)

	app := newTestApp(models.RoleLearner, "42")
	app.Get("/api/v1/certificates/:id/download", handler.DownloadCertificate)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/certificates/11/download", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestCertificateLinkWithoutStorage(t *testing.T) {
	handler := NewCertificateHandler(&stubCertificateService{err: services.ErrStorageUnavailable}, nil)

	app := newTestApp(models.RoleLearner, "42")
	app.Get("/api/v1/certificates/:id/link", handler.CertificateLink)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/certificates/11/link", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestVerifyCertificateIsPublic(t *testing.T) {
	issued := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	service := &stubCertificateService{verification: &models.CertificateVerification{
		Valid:             true,
		CertificateNumber: "CERT-2026-004217",
		Recipient:         "Dilani Perera",
		FinalGrade:        "A",
		IssueDate:         &issued,
	}}
	handler := NewCertificateHandler(service, nil)

	app := newTestApp("", "")
	app.Get("/public/certificates/verify/:number", handler.VerifyByNumber)
	app.Get("/public/certificates/hash/:hash", handler.VerifyByHash)

	resp, body := doJSON(t, app, http.MethodGet, "/public/certificates/verify/CERT-2026-004217?hash=abc123", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastNumber != "CERT-2026-004217" || service.lastHash != "abc123" {
		t.Fatalf("unexpected verify call %q %q", service.lastNumber, service.lastHash)
	}
	verification, _ := body["verification"].(map[string]any)
	if verification["valid"] != true {
		t.Fatalf("unexpected verification %v", body)
	}

	service.verification = &models.CertificateVerification{Valid: false}
	resp, body = doJSON(t, app, http.MethodGet, "/public/certificates/hash/deadbeef", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for an unknown hash, got %d", resp.StatusCode)
	}
	verification, _ = body["verification"].(map[string]any)
	if verification["valid"] != false || service.lastHash != "deadbeef" {
		t.Fatalf("unexpected verification %v", body)
	}
}
