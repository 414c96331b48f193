package repository

import (
	"context"

	"github.com/saeid-a/CoachAcademyBack/internal/models"
)

type UpsertAttendanceInput struct {
	SessionID   int64
	LearnerID   int64
	CoachID     int64
	Attended    bool
	Performance *string
	Remarks     *string
}

// AttendanceRepository is the authoritative attendance ledger.
type AttendanceRepository struct {
	db DBTX
}

func NewAttendanceRepository(db DBTX) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Upsert(ctx context.Context, input UpsertAttendanceInput) (*models.AttendanceRecord, error) {
	status := models.AttendanceAbsent
	if input.Attended {
		status = models.AttendancePresent
	}

	query := `
		INSERT INTO attendance_records (session_id, learner_id, coach_id, attended, status, marked_at, performance, remarks)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6, $7)
		ON CONFLICT (session_id, learner_id) DO UPDATE
		SET coach_id = EXCLUDED.coach_id,
			attended = EXCLUDED.attended,
			status = EXCLUDED.status,
			marked_at = EXCLUDED.marked_at,
			performance = EXCLUDED.performance,
			remarks = EXCLUDED.remarks
		RETURNING id, session_id, learner_id, coach_id, attended, status, marked_at, performance, remarks
	`
	var record models.AttendanceRecord
	err := r.db.QueryRow(
		ctx,
		query,
		input.SessionID,
		input.LearnerID,
		input.CoachID,
		input.Attended,
		status,
		input.Performance,
		input.Remarks,
	).Scan(
		&record.ID,
		&record.SessionID,
		&record.LearnerID,
		&record.CoachID,
		&record.Attended,
		&record.Status,
		&record.MarkedAt,
		&record.Performance,
		&record.Remarks,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CountAttended counts present records of the learner on sessions of the
// program where the learner is a participant.
func (r *AttendanceRepository) CountAttended(ctx context.Context, learnerID, programID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM attendance_records a
		JOIN sessions s ON s.id = a.session_id
		JOIN session_participants p ON p.session_id = a.session_id AND p.learner_id = a.learner_id
		WHERE a.learner_id = $1
		  AND s.program_id = $2
		  AND a.attended
	`
	var count int
	if err := r.db.QueryRow(ctx, query, learnerID, programID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
