package repository

import (
	"context"

	"github.com/saeid-a/CoachAcademyBack/internal/models"
)

// ParticipantRepository maintains session_participants, a per-session view
// rebuilt from attendance_records.
type ParticipantRepository struct {
	db DBTX
}

func NewParticipantRepository(db DBTX) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, sessionID, learnerID, enrollmentID int64) error {
	query := `
		INSERT INTO session_participants (session_id, learner_id, enrollment_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, learner_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, sessionID, learnerID, enrollmentID)
	return err
}

func (r *ParticipantRepository) ListBySessionIDs(
	ctx context.Context,
	sessionIDs []int64,
) (map[int64][]models.SessionParticipant, error) {
	result := make(map[int64][]models.SessionParticipant)
	if len(sessionIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT session_id, learner_id, enrollment_id, attended, attendance_status, attendance_marked_at
		FROM session_participants
		WHERE session_id = ANY($1)
		ORDER BY session_id ASC, learner_id ASC
	`
	rows, err := r.db.Query(ctx, query, sessionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var participant models.SessionParticipant
		if err := rows.Scan(
			&participant.SessionID,
			&participant.LearnerID,
			&participant.EnrollmentID,
			&participant.Attended,
			&participant.AttendanceStatus,
			&participant.AttendanceMarkedAt,
		); err != nil {
			return nil, err
		}
		result[participant.SessionID] = append(result[participant.SessionID], participant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// RebuildFromLedger overwrites the participant rows of a session with the
// outcomes recorded in attendance_records.
func (r *ParticipantRepository) RebuildFromLedger(ctx context.Context, sessionID int64) error {
	query := `
		UPDATE session_participants p
		SET attended = COALESCE(a.attended, FALSE),
			attendance_status = COALESCE(a.status, 'unmarked'),
			attendance_marked_at = a.marked_at
		FROM session_participants base
		LEFT JOIN attendance_records a
			ON a.session_id = base.session_id AND a.learner_id = base.learner_id
		WHERE p.session_id = $1
		  AND base.session_id = p.session_id
		  AND base.learner_id = p.learner_id
	`
	_, err := r.db.Exec(ctx, query, sessionID)
	return err
}
