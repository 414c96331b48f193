package repository

import (
	"context"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/models"
)

type CreateCertificateInput struct {
	CertificateNumber string
	LearnerID         int64
	EnrollmentID      int64
	ProgramID         int64
	CoachID           int64
	Details           models.CompletionDetails
	IssueDate         time.Time
	VerificationHash  string

	// CompleteEnrollment closes the enrollment along with issuance.
	CompleteEnrollment bool
}

type CertificateRepository struct {
	db DBTX
}

func NewCertificateRepository(db DBTX) *CertificateRepository {
	return &CertificateRepository{db: db}
}

const certificateColumns = `id, certificate_number, learner_id, enrollment_id, program_id, coach_id,
	total_sessions, attended_sessions, attendance_percentage, final_grade, issue_date,
	download_count, verification_hash, document_url, created_at`

func scanCertificate(row interface{ Scan(dest ...any) error }) (*models.Certificate, error) {
	var certificate models.Certificate
	if err := row.Scan(
		&certificate.ID,
		&certificate.CertificateNumber,
		&certificate.LearnerID,
		&certificate.EnrollmentID,
		&certificate.ProgramID,
		&certificate.CoachID,
		&certificate.CompletionDetails.TotalSessions,
		&certificate.CompletionDetails.AttendedSessions,
		&certificate.CompletionDetails.AttendancePercentage,
		&certificate.CompletionDetails.FinalGrade,
		&certificate.IssueDate,
		&certificate.DownloadCount,
		&certificate.VerificationHash,
		&certificate.DocumentURL,
		&certificate.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &certificate, nil
}

func (r *CertificateRepository) Create(ctx context.Context, input CreateCertificateInput) (*models.Certificate, error) {
	query := `
		INSERT INTO certificates (
			certificate_number, learner_id, enrollment_id, program_id, coach_id,
			total_sessions, attended_sessions, attendance_percentage, final_grade,
			issue_date, verification_hash
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + certificateColumns
	return scanCertificate(r.db.QueryRow(
		ctx,
		query,
		input.CertificateNumber,
		input.LearnerID,
		input.EnrollmentID,
		input.ProgramID,
		input.CoachID,
		input.Details.TotalSessions,
		input.Details.AttendedSessions,
		input.Details.AttendancePercentage,
		input.Details.FinalGrade,
		input.IssueDate,
		input.VerificationHash,
	))
}

func (r *CertificateRepository) GetByID(ctx context.Context, certificateID int64) (*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE id = $1`
	return scanCertificate(r.db.QueryRow(ctx, query, certificateID))
}

func (r *CertificateRepository) GetByLearnerProgram(ctx context.Context, learnerID, programID int64) (*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE learner_id = $1 AND program_id = $2`
	return scanCertificate(r.db.QueryRow(ctx, query, learnerID, programID))
}

func (r *CertificateRepository) GetByNumber(ctx context.Context, number string) (*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE certificate_number = $1`
	return scanCertificate(r.db.QueryRow(ctx, query, number))
}

func (r *CertificateRepository) GetByHash(ctx context.Context, hash string) (*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE verification_hash = $1`
	return scanCertificate(r.db.QueryRow(ctx, query, hash))
}

func (r *CertificateRepository) IncrementDownloadCount(ctx context.Context, certificateID int64) error {
	query := `UPDATE certificates SET download_count = download_count + 1 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, certificateID)
	return err
}

func (r *CertificateRepository) SetDocumentURL(ctx context.Context, certificateID int64, url string) error {
	query := `UPDATE certificates SET document_url = $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, certificateID, url)
	return err
}
