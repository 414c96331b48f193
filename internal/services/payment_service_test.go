package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/saeid-a/CoachAcademyBack/internal/models"
)

func TestNotificationSignature(t *testing.T) {
	got := NotificationSignature("ENR-1-abcd1234", "200", "150000.00", "server-key")
	if len(got) != 128 {
		t.Fatalf("expected a hex sha512 digest, got %q", got)
	}
	if got != NotificationSignature("ENR-1-abcd1234", "200", "150000.00", "server-key") {
		t.Fatalf("expected the signature to be deterministic")
	}
	if got == NotificationSignature("ENR-1-abcd1234", "200", "150000.00", "other-key") {
		t.Fatalf("expected the server key to change the signature")
	}
}

func TestHandleNotificationRejectsBadSignature(t *testing.T) {
	service := NewPaymentService(nil, nil, nil, "server-key", nil)

	_, err := service.HandleNotification(context.Background(), Notification{
		OrderID:           "ENR-1-abcd1234",
		StatusCode:        "200",
		GrossAmount:       "150000.00",
		SignatureKey:      NotificationSignature("ENR-1-abcd1234", "200", "150000.00", "wrong-key"),
		TransactionStatus: "settlement",
	})
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	_, err = service.HandleNotification(context.Background(), Notification{OrderID: "ENR-1-abcd1234"})
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected missing signature to be rejected, got %v", err)
	}
}

func TestValidSignatureIgnoresCase(t *testing.T) {
	service := NewPaymentService(nil, nil, nil, "server-key", nil)
	signature := NotificationSignature("ENR-2-ffff0000", "201", "99000.00", "server-key")

	notif := Notification{
		OrderID:      "ENR-2-ffff0000",
		StatusCode:   "201",
		GrossAmount:  "99000.00",
		SignatureKey: " " + strings.ToUpper(signature) + " ",
	}
	if !service.validSignature(notif) {
		t.Fatalf("expected upper-case signature to validate")
	}
}

func TestCreatePaymentWithoutGateway(t *testing.T) {
	service := NewPaymentService(nil, nil, nil, "", nil)

	if _, err := service.CreatePayment(context.Background(), 1, 1); !errors.Is(err, ErrPaymentsUnavailable) {
		t.Fatalf("expected ErrPaymentsUnavailable, got %v", err)
	}
}

func TestPaymentStatusFor(t *testing.T) {
	tests := []struct {
		transaction string
		fraud       string
		want        string
	}{
		{transaction: "settlement", want: models.PaymentPaid},
		{transaction: "capture", fraud: "accept", want: models.PaymentPaid},
		{transaction: "capture", want: models.PaymentPaid},
		{transaction: "capture", fraud: "challenge", want: models.PaymentPending},
		{transaction: "pending", want: models.PaymentPending},
		{transaction: "deny", want: models.PaymentFailed},
		{transaction: "expire", want: models.PaymentFailed},
		{transaction: "cancel", want: models.PaymentFailed},
	}

	for _, tt := range tests {
		got := paymentStatusFor(Notification{TransactionStatus: tt.transaction, FraudStatus: tt.fraud})
		if got != tt.want {
			t.Fatalf("paymentStatusFor(%s/%s) = %s, want %s", tt.transaction, tt.fraud, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Batting Fundamentals", 7); got != "Batting" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncate("Short", 50); got != "Short" {
		t.Fatalf("expected short titles untouched, got %q", got)
	}
}
