package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EnrollmentPending   = "pending"
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentCancelled = "cancelled"
)

type Enrollment struct {
	ID                  int64     `json:"id"`
	LearnerID           int64     `json:"learner_id"`
	ProgramID           int64     `json:"program_id"`
	EnrollmentDate      time.Time `json:"enrollment_date"`
	Status              string    `json:"status"`
	ProgressPercentage  float64   `json:"progress_percentage"`
	CertificateEligible bool      `json:"certificate_eligible"`
	CertificateIssued   bool      `json:"certificate_issued"`
	CertificateID       *int64    `json:"certificate_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type Progress struct {
	EnrollmentID     int64   `json:"enrollment_id"`
	AttendedSessions int     `json:"attended_sessions"`
	TotalSessions    int     `json:"total_sessions"`
	Percentage       float64 `json:"progress_percentage"`
	Eligible         bool    `json:"certificate_eligible"`
	// CurrentWeek is 0 before the first week and after the last.
	CurrentWeek int           `json:"current_week"`
	Weeks       []ProgramWeek `json:"weeks"`
}

// ProgramWeek is the booking window of one program week. Dates are
// inclusive and formatted 2006-01-02.
type ProgramWeek struct {
	Week  int    `json:"week"`
	Start string `json:"start"`
	End   string `json:"end"`
}

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

type Payment struct {
	ID            int64           `json:"id"`
	EnrollmentID  int64           `json:"enrollment_id"`
	LearnerID     int64           `json:"learner_id"`
	OrderID       string          `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	GatewayStatus *string         `json:"gateway_status,omitempty"`
	SnapToken     *string         `json:"snap_token,omitempty"`
	RedirectURL   *string         `json:"redirect_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
