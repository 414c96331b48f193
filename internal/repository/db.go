package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// ConstraintViolation returns the constraint name when err is a unique or
// exclusion violation.
func ConstraintViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != pgUniqueViolation && pgErr.Code != pgExclusionViolation {
		return "", false
	}
	return pgErr.ConstraintName, true
}

// Constraint names referenced by services.
const (
	ConstraintGroundNoOverlap        = "ground_bookings_no_overlap"
	ConstraintCoachNoOverlap         = "sessions_coach_no_overlap"
	ConstraintLiveWeek               = "sessions_live_week_key"
	ConstraintOpenEnrollment         = "enrollments_open_learner_program_key"
	ConstraintCertificateNumber      = "certificates_number_key"
	ConstraintCertificateHash        = "certificates_verification_hash_key"
	ConstraintCertificateLearnerProg = "certificates_learner_program_key"
)
