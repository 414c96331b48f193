package repository

import (
	"context"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/models"
)

type EnrollmentRepository struct {
	db DBTX
}

func NewEnrollmentRepository(db DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, learner_id, program_id, enrollment_date, status, progress_percentage,
	certificate_eligible, certificate_issued, certificate_id, created_at, updated_at`

func scanEnrollment(row interface{ Scan(dest ...any) error }) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := row.Scan(
		&enrollment.ID,
		&enrollment.LearnerID,
		&enrollment.ProgramID,
		&enrollment.EnrollmentDate,
		&enrollment.Status,
		&enrollment.ProgressPercentage,
		&enrollment.CertificateEligible,
		&enrollment.CertificateIssued,
		&enrollment.CertificateID,
		&enrollment.CreatedAt,
		&enrollment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) Create(
	ctx context.Context,
	learnerID int64,
	programID int64,
	enrollmentDate time.Time,
) (*models.Enrollment, error) {
	query := `
		INSERT INTO enrollments (learner_id, program_id, enrollment_date, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING ` + enrollmentColumns
	return scanEnrollment(r.db.QueryRow(ctx, query, learnerID, programID, enrollmentDate))
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	return scanEnrollment(r.db.QueryRow(ctx, query, enrollmentID))
}

func (r *EnrollmentRepository) GetByIDForUpdate(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1 FOR UPDATE`
	return scanEnrollment(r.db.QueryRow(ctx, query, enrollmentID))
}

func (r *EnrollmentRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	enrollmentID int64,
	currentStatus string,
	nextStatus string,
) (*models.Enrollment, error) {
	query := `
		UPDATE enrollments
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + enrollmentColumns
	return scanEnrollment(r.db.QueryRow(ctx, query, enrollmentID, currentStatus, nextStatus))
}

func (r *EnrollmentRepository) UpdateProgress(
	ctx context.Context,
	enrollmentID int64,
	percentage float64,
	eligible bool,
) error {
	query := `
		UPDATE enrollments
		SET progress_percentage = $2, certificate_eligible = $3, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, enrollmentID, percentage, eligible)
	return err
}

// MarkCertificateIssued links the certificate. complete also closes an active
// enrollment; callers pass it only once the final week has ended.
func (r *EnrollmentRepository) MarkCertificateIssued(ctx context.Context, enrollmentID, certificateID int64, complete bool) error {
	query := `
		UPDATE enrollments
		SET certificate_issued = TRUE,
			certificate_eligible = TRUE,
			certificate_id = $2,
			status = CASE WHEN $3::boolean AND status = 'active' THEN 'completed' ELSE status END,
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, enrollmentID, certificateID, complete)
	return err
}

// GetOpenByLearnerProgram returns the learner's pending or active enrollment.
func (r *EnrollmentRepository) GetOpenByLearnerProgram(
	ctx context.Context,
	learnerID int64,
	programID int64,
) (*models.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE learner_id = $1 AND program_id = $2 AND status IN ('pending', 'active')
		FOR UPDATE`
	return scanEnrollment(r.db.QueryRow(ctx, query, learnerID, programID))
}

// GetLatestByLearnerProgram returns the learner's most recent enrollment in
// the program whatever its status.
func (r *EnrollmentRepository) GetLatestByLearnerProgram(
	ctx context.Context,
	learnerID int64,
	programID int64,
) (*models.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE learner_id = $1 AND program_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	return scanEnrollment(r.db.QueryRow(ctx, query, learnerID, programID))
}

func (r *EnrollmentRepository) CountOpenByProgram(ctx context.Context, programID int64) (int, error) {
	query := `SELECT COUNT(*) FROM enrollments WHERE program_id = $1 AND status IN ('pending', 'active')`
	var count int
	if err := r.db.QueryRow(ctx, query, programID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
