package services

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrInvalidSignature    = errors.New("invalid notification signature")
	ErrPaymentsUnavailable = errors.New("payment gateway is not configured")
)

// SnapClient is the subset of the Midtrans Snap client the service uses.
type SnapClient interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

func NewSnapClient(serverKey string, production bool) *snap.Client {
	var client snap.Client
	if production {
		client.New(serverKey, midtrans.Production)
	} else {
		client.New(serverKey, midtrans.Sandbox)
	}
	return &client
}

type PaymentService struct {
	db        txStarter
	userRepo  userReader
	snap      SnapClient
	serverKey string
	log       *zap.Logger
}

func NewPaymentService(db txStarter, userRepo userReader, client SnapClient, serverKey string, log *zap.Logger) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{
		db:        db,
		userRepo:  userRepo,
		snap:      client,
		serverKey: serverKey,
		log:       log,
	}
}

// CreatePayment opens a Snap transaction for the program fee of a pending
// enrollment.
func (s *PaymentService) CreatePayment(ctx context.Context, learnerID, enrollmentID int64) (*models.Payment, error) {
	if s.snap == nil {
		return nil, ErrPaymentsUnavailable
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	enrollment, err := repository.NewEnrollmentRepository(tx).GetByIDForUpdate(ctx, enrollmentID)
	if err != nil {
		return nil, notFound(err, "enrollment", enrollmentID)
	}
	if enrollment.LearnerID != learnerID {
		return nil, apperr.NewAuthorization("pay for this enrollment")
	}
	if enrollment.Status != models.EnrollmentPending {
		return nil, apperr.NewGuard(apperr.ReasonPaymentSettled, "enrollment is not awaiting payment")
	}

	program, err := repository.NewProgramRepository(tx).GetByID(ctx, enrollment.ProgramID)
	if err != nil {
		return nil, notFound(err, "program", enrollment.ProgramID)
	}
	learner, err := s.userRepo.GetByID(ctx, learnerID)
	if err != nil {
		return nil, notFound(err, "user", learnerID)
	}

	txPaymentRepo := repository.NewPaymentRepository(tx)
	payment, err := txPaymentRepo.Create(ctx, repository.CreatePaymentInput{
		EnrollmentID: enrollment.ID,
		LearnerID:    learnerID,
		OrderID:      fmt.Sprintf("ENR-%d-%s", enrollment.ID, uuid.NewString()[:8]),
		Amount:       program.Fee,
	})
	if err != nil {
		return nil, err
	}

	gross := program.Fee.Round(0).IntPart()
	resp, merr := s.snap.CreateTransaction(&snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  payment.OrderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: learner.FullName,
			Email: learner.Email,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:       fmt.Sprintf("program-%d", program.ID),
			Price:    gross,
			Qty:      1,
			Name:     truncate(program.Title, 50),
			Category: "program",
		}},
	})
	if merr != nil {
		return nil, fmt.Errorf("create snap transaction: %w", merr)
	}

	payment, err = txPaymentRepo.SetGatewaySession(ctx, payment.ID, resp.Token, resp.RedirectURL)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return payment, nil
}

// Notification is the subset of a Midtrans HTTP notification the service reads.
type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}

// HandleNotification applies a gateway notification. Replayed notifications
// leave the enrollment where the first one put it.
func (s *PaymentService) HandleNotification(ctx context.Context, notif Notification) (*models.Payment, error) {
	if !s.validSignature(notif) {
		return nil, ErrInvalidSignature
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPaymentRepo := repository.NewPaymentRepository(tx)
	payment, err := txPaymentRepo.GetByOrderIDForUpdate(ctx, notif.OrderID)
	if err != nil {
		return nil, notFound(err, "payment", notif.OrderID)
	}

	status := paymentStatusFor(notif)
	if payment.Status == models.PaymentPaid {
		status = models.PaymentPaid
	}
	payment, err = txPaymentRepo.UpdateStatus(ctx, payment.ID, status, notif.TransactionStatus)
	if err != nil {
		return nil, err
	}

	if status == models.PaymentPaid {
		_, err := repository.NewEnrollmentRepository(tx).UpdateStatusIfCurrent(
			ctx, payment.EnrollmentID, models.EnrollmentPending, models.EnrollmentActive,
		)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.log.Info("payment notification applied",
		zap.String("order_id", payment.OrderID),
		zap.String("transaction_status", notif.TransactionStatus),
		zap.String("status", payment.Status),
	)
	return payment, nil
}

func (s *PaymentService) validSignature(notif Notification) bool {
	want := strings.ToLower(strings.TrimSpace(notif.SignatureKey))
	if want == "" || s.serverKey == "" {
		return false
	}
	got := NotificationSignature(notif.OrderID, notif.StatusCode, notif.GrossAmount, s.serverKey)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// NotificationSignature is SHA512(order_id + status_code + gross_amount + server_key).
func NotificationSignature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func paymentStatusFor(notif Notification) string {
	switch notif.TransactionStatus {
	case "capture":
		if notif.FraudStatus == "" || notif.FraudStatus == "accept" {
			return models.PaymentPaid
		}
		return models.PaymentPending
	case "settlement":
		return models.PaymentPaid
	case "deny", "cancel", "expire", "failure":
		return models.PaymentFailed
	default:
		return models.PaymentPending
	}
}

func truncate(value string, n int) string {
	if n <= 0 || len(value) <= n {
		return value
	}
	return value[:n]
}
