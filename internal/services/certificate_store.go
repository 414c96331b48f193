package services

import (
	"context"

	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/repository"
)

// certificateStore is everything the certification engine reads or writes.
type certificateStore interface {
	GetEnrollment(ctx context.Context, enrollmentID int64) (*models.Enrollment, error)
	GetProgram(ctx context.Context, programID int64) (*models.Program, error)
	CountAttended(ctx context.Context, learnerID, programID int64) (int, error)

	GetByID(ctx context.Context, certificateID int64) (*models.Certificate, error)
	GetByLearnerProgram(ctx context.Context, learnerID, programID int64) (*models.Certificate, error)
	GetByNumber(ctx context.Context, number string) (*models.Certificate, error)
	GetByHash(ctx context.Context, hash string) (*models.Certificate, error)

	// Issue persists the certificate and closes the enrollment atomically.
	Issue(ctx context.Context, input repository.CreateCertificateInput) (*models.Certificate, error)
	IncrementDownloadCount(ctx context.Context, certificateID int64) error
	SetDocumentURL(ctx context.Context, certificateID int64, url string) error
}

type PostgresCertificateStore struct {
	db              txStarter
	certificateRepo *repository.CertificateRepository
	enrollmentRepo  *repository.EnrollmentRepository
	programRepo     *repository.ProgramRepository
	attendanceRepo  *repository.AttendanceRepository
}

// NewCertificateStore builds the PostgreSQL-backed store. db must be the pool
// the repositories were built on.
func NewCertificateStore(
	db txStarter,
	certificateRepo *repository.CertificateRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	programRepo *repository.ProgramRepository,
	attendanceRepo *repository.AttendanceRepository,
) *PostgresCertificateStore {
	return &PostgresCertificateStore{
		db:              db,
		certificateRepo: certificateRepo,
		enrollmentRepo:  enrollmentRepo,
		programRepo:     programRepo,
		attendanceRepo:  attendanceRepo,
	}
}

func (s *PostgresCertificateStore) GetEnrollment(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	return s.enrollmentRepo.GetByID(ctx, enrollmentID)
}

func (s *PostgresCertificateStore) GetProgram(ctx context.Context, programID int64) (*models.Program, error) {
	return s.programRepo.GetByID(ctx, programID)
}

func (s *PostgresCertificateStore) CountAttended(ctx context.Context, learnerID, programID int64) (int, error) {
	return s.attendanceRepo.CountAttended(ctx, learnerID, programID)
}

func (s *PostgresCertificateStore) GetByID(ctx context.Context, certificateID int64) (*models.Certificate, error) {
	return s.certificateRepo.GetByID(ctx, certificateID)
}

func (s *PostgresCertificateStore) GetByLearnerProgram(ctx context.Context, learnerID, programID int64) (*models.Certificate, error) {
	return s.certificateRepo.GetByLearnerProgram(ctx, learnerID, programID)
}

func (s *PostgresCertificateStore) GetByNumber(ctx context.Context, number string) (*models.Certificate, error) {
	return s.certificateRepo.GetByNumber(ctx, number)
}

func (s *PostgresCertificateStore) GetByHash(ctx context.Context, hash string) (*models.Certificate, error) {
	return s.certificateRepo.GetByHash(ctx, hash)
}

func (s *PostgresCertificateStore) Issue(ctx context.Context, input repository.CreateCertificateInput) (*models.Certificate, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	certificate, err := repository.NewCertificateRepository(tx).Create(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := repository.NewEnrollmentRepository(tx).MarkCertificateIssued(ctx, input.EnrollmentID, certificate.ID, input.CompleteEnrollment); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return certificate, nil
}

func (s *PostgresCertificateStore) IncrementDownloadCount(ctx context.Context, certificateID int64) error {
	return s.certificateRepo.IncrementDownloadCount(ctx, certificateID)
}

func (s *PostgresCertificateStore) SetDocumentURL(ctx context.Context, certificateID int64, url string) error {
	return s.certificateRepo.SetDocumentURL(ctx, certificateID, url)
}
