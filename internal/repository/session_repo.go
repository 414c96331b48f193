package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/models"
)

type CreateSessionInput struct {
	ProgramID     int64
	CoachID       int64
	EnrollmentID  int64
	Week          int
	ScheduledDate time.Time
	StartTime     string
	EndTime       string
	StartsAt      time.Time
	EndsAt        time.Time
	GroundID      int64
	GroundSlot    int
}

type RescheduleSessionInput struct {
	ScheduledDate time.Time
	StartTime     string
	EndTime       string
	StartsAt      time.Time
	EndsAt        time.Time
	GroundSlot    int
	Previous      models.RescheduleSnapshot
}

type SessionListFilter struct {
	ActorID   int64
	Role      string
	Status    string
	Timeframe string
	Limit     int
	Offset    int
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `s.id, s.program_id, s.coach_id, s.enrollment_id, s.week, s.scheduled_date,
	s.start_time, s.end_time, s.starts_at, s.ends_at, s.ground_id, s.ground_slot, s.status,
	s.reschedule_count, s.rescheduled_from, s.created_at, s.updated_at`

func scanSession(row interface{ Scan(dest ...any) error }) (*models.Session, error) {
	var session models.Session
	if err := row.Scan(
		&session.ID,
		&session.ProgramID,
		&session.CoachID,
		&session.EnrollmentID,
		&session.Week,
		&session.ScheduledDate,
		&session.StartTime,
		&session.EndTime,
		&session.StartsAt,
		&session.EndsAt,
		&session.GroundID,
		&session.GroundSlot,
		&session.Status,
		&session.RescheduleCount,
		&session.RescheduledFrom,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		return nil, err
	}
	session.Rescheduled = session.RescheduleCount > 0
	session.Participants = make([]models.SessionParticipant, 0)
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	query := `
		INSERT INTO sessions AS s (
			program_id, coach_id, enrollment_id, week, scheduled_date, start_time, end_time,
			starts_at, ends_at, ground_id, ground_slot, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'scheduled')
		RETURNING ` + sessionColumns
	return scanSession(r.db.QueryRow(
		ctx,
		query,
		input.ProgramID,
		input.CoachID,
		input.EnrollmentID,
		input.Week,
		input.ScheduledDate,
		input.StartTime,
		input.EndTime,
		input.StartsAt,
		input.EndsAt,
		input.GroundID,
		input.GroundSlot,
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions s WHERE s.id = $1`
	session, err := scanSession(r.db.QueryRow(ctx, query, sessionID))
	if err != nil {
		return nil, err
	}
	return session, r.attachParticipants(ctx, session)
}

func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions s WHERE s.id = $1 FOR UPDATE`
	session, err := scanSession(r.db.QueryRow(ctx, query, sessionID))
	if err != nil {
		return nil, err
	}
	return session, r.attachParticipants(ctx, session)
}

func (r *SessionRepository) attachParticipants(ctx context.Context, session *models.Session) error {
	byID, err := NewParticipantRepository(r.db).ListBySessionIDs(ctx, []int64{session.ID})
	if err != nil {
		return err
	}
	if participants, ok := byID[session.ID]; ok {
		session.Participants = participants
	}
	return nil
}

func (r *SessionRepository) listWhere(filter SessionListFilter) ([]string, []any) {
	args := []any{}
	whereParts := []string{}

	switch filter.Role {
	case models.RoleCoach:
		args = append(args, filter.ActorID)
		whereParts = append(whereParts, fmt.Sprintf("s.coach_id = $%d", len(args)))
	case models.RoleLearner:
		args = append(args, filter.ActorID)
		whereParts = append(whereParts, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM session_participants p WHERE p.session_id = s.id AND p.learner_id = $%d)",
			len(args),
		))
	}

	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("s.status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(whereParts, "s.ends_at > NOW()")
	case "past":
		whereParts = append(whereParts, "s.ends_at <= NOW()")
	}

	if len(whereParts) == 0 {
		whereParts = append(whereParts, "TRUE")
	}
	return whereParts, args
}

// List returns one page of sessions visible to the actor plus the total count.
func (r *SessionRepository) List(ctx context.Context, filter SessionListFilter) ([]models.Session, int, error) {
	whereParts, args := r.listWhere(filter)
	where := strings.Join(whereParts, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sessions s WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions s
		WHERE %s
		ORDER BY s.starts_at ASC, s.id ASC
		LIMIT $%d OFFSET $%d
	`, sessionColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, *session)
		ids = append(ids, session.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	participants, err := NewParticipantRepository(r.db).ListBySessionIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range sessions {
		if list, ok := participants[sessions[i].ID]; ok {
			sessions[i].Participants = list
		}
	}
	return sessions, total, nil
}

// ListCoachSessionsOn returns the coach's live sessions on date, skipping
// excludedSessionID.
func (r *SessionRepository) ListCoachSessionsOn(
	ctx context.Context,
	coachID int64,
	date time.Time,
	excludedSessionID int64,
) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions s
		WHERE s.coach_id = $1
		  AND s.scheduled_date = $2
		  AND s.status <> 'cancelled'
		  AND s.id <> $3
		ORDER BY s.starts_at ASC
	`
	rows, err := r.db.Query(ctx, query, coachID, date, excludedSessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *SessionRepository) HasLiveWeekSession(ctx context.Context, enrollmentID int64, week int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions
			WHERE enrollment_id = $1
			  AND week = $2
			  AND status <> 'cancelled'
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, enrollmentID, week).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *SessionRepository) UpdateStatus(ctx context.Context, sessionID int64, status string) error {
	query := `UPDATE sessions SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, sessionID, status)
	return err
}

func (r *SessionRepository) Reschedule(ctx context.Context, sessionID int64, input RescheduleSessionInput) error {
	query := `
		UPDATE sessions
		SET scheduled_date = $2,
			start_time = $3,
			end_time = $4,
			starts_at = $5,
			ends_at = $6,
			ground_slot = $7,
			rescheduled_from = $8,
			reschedule_count = reschedule_count + 1,
			status = 'rescheduled',
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(
		ctx,
		query,
		sessionID,
		input.ScheduledDate,
		input.StartTime,
		input.EndTime,
		input.StartsAt,
		input.EndsAt,
		input.GroundSlot,
		input.Previous,
	)
	return err
}
