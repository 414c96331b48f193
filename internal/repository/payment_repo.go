package repository

import (
	"context"

	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/shopspring/decimal"
)

type CreatePaymentInput struct {
	EnrollmentID int64
	LearnerID    int64
	OrderID      string
	Amount       decimal.Decimal
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, enrollment_id, learner_id, order_id, amount::text, status, gateway_status,
	snap_token, redirect_url, created_at, updated_at`

func scanPayment(row interface{ Scan(dest ...any) error }) (*models.Payment, error) {
	var payment models.Payment
	var amount string
	if err := row.Scan(
		&payment.ID,
		&payment.EnrollmentID,
		&payment.LearnerID,
		&payment.OrderID,
		&amount,
		&payment.Status,
		&payment.GatewayStatus,
		&payment.SnapToken,
		&payment.RedirectURL,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	payment.Amount = parsed
	return &payment, nil
}

func (r *PaymentRepository) Create(ctx context.Context, input CreatePaymentInput) (*models.Payment, error) {
	query := `
		INSERT INTO payments (enrollment_id, learner_id, order_id, amount, status)
		VALUES ($1, $2, $3, $4::numeric, 'pending')
		RETURNING ` + paymentColumns
	return scanPayment(r.db.QueryRow(
		ctx,
		query,
		input.EnrollmentID,
		input.LearnerID,
		input.OrderID,
		input.Amount.StringFixed(2),
	))
}

func (r *PaymentRepository) SetGatewaySession(ctx context.Context, paymentID int64, snapToken, redirectURL string) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET snap_token = $2, redirect_url = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + paymentColumns
	return scanPayment(r.db.QueryRow(ctx, query, paymentID, snapToken, redirectURL))
}

func (r *PaymentRepository) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 FOR UPDATE`
	return scanPayment(r.db.QueryRow(ctx, query, orderID))
}

func (r *PaymentRepository) GetLatestByEnrollmentID(ctx context.Context, enrollmentID int64) (*models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE enrollment_id = $1
		ORDER BY id DESC
		LIMIT 1
	`
	return scanPayment(r.db.QueryRow(ctx, query, enrollmentID))
}

func (r *PaymentRepository) UpdateStatus(
	ctx context.Context,
	paymentID int64,
	status string,
	gatewayStatus string,
) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET status = $2, gateway_status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + paymentColumns
	return scanPayment(r.db.QueryRow(ctx, query, paymentID, status, gatewayStatus))
}
