package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/services"
)

type stubPaymentService struct {
	payment   *models.Payment
	err       error
	lastNotif services.Notification
	calls     int
}

func (s *stubPaymentService) CreatePayment(context.Context, int64, int64) (*models.Payment, error) {
	s.calls++
	return s.payment, s.err
}

func (s *stubPaymentService) HandleNotification(_ context.Context, notif services.Notification) (*models.Payment, error) {
	s.calls++
	s.lastNotif = notif
	return s.payment, s.err
}

func TestCreatePaymentReturnsSnapRedirect(t *testing.T) {
	redirect := "https://app.sandbox.midtrans.com/snap/v2/vtweb/token"
	service := &stubPaymentService{payment: &models.Payment{ID: 1, OrderID: "ENR-5-abcd1234", Status: models.PaymentPending, RedirectURL: &redirect}}
	handler := NewPaymentHandler(service, nil)

	app := newTestApp(models.RoleLearner, "42")
	app.Post("/api/v1/enrollments/:id/payment", handler.CreatePayment)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/enrollments/5/payment", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	payment, _ := body["payment"].(map[string]any)
	if payment["redirect_url"] != redirect {
		t.Fatalf("unexpected payment %v", body)
	}
}

func TestCreatePaymentForSettledEnrollment(t *testing.T) {
	service := &stubPaymentService{err: apperr.NewGuard(apperr.ReasonPaymentSettled, "enrollment is not awaiting payment")}
	handler := NewPaymentHandler(service, nil)

	app := newTestApp(models.RoleLearner, "42")
	app.Post("/api/v1/enrollments/:id/payment", handler.CreatePayment)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/enrollments/5/payment", "")
	if resp.StatusCode != http.StatusUnprocessableEntity || body["reason"] != apperr.ReasonPaymentSettled {
		t.Fatalf("expected payment_settled 422, got %d %v", resp.StatusCode, body)
	}
}

func TestPaymentNotificationRejectsBadSignature(t *testing.T) {
	service := &stubPaymentService{err: services.ErrInvalidSignature}
	handler := NewPaymentHandler(service, nil)

	app := newTestApp("", "")
	app.Post("/webhooks/midtrans", handler.Notification)

	resp, _ := doJSON(t, app, http.MethodPost, "/webhooks/midtrans", `{
		"order_id": "ENR-5-abcd1234",
		"status_code": "200",
		"gross_amount": "150000.00",
		"signature_key": "forged",
		"transaction_status": "settlement"
	}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if service.lastNotif.OrderID != "ENR-5-abcd1234" || service.lastNotif.TransactionStatus != "settlement" {
		t.Fatalf("unexpected notification %+v", service.lastNotif)
	}
}

func TestPaymentNotificationAcknowledges(t *testing.T) {
	service := &stubPaymentService{payment: &models.Payment{OrderID: "ENR-5-abcd1234", Status: models.PaymentPaid}}
	handler := NewPaymentHandler(service, nil)

	app := newTestApp("", "")
	app.Post("/webhooks/midtrans", handler.Notification)

	resp, body := doJSON(t, app, http.MethodPost, "/webhooks/midtrans", `{"order_id": "ENR-5-abcd1234", "transaction_status": "settlement"}`)
	if resp.StatusCode != http.StatusOK || body["status"] != models.PaymentPaid {
		t.Fatalf("expected paid acknowledgement, got %d %v", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/webhooks/midtrans", `not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed body, got %d", resp.StatusCode)
	}
}
