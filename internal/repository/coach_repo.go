package repository

import (
	"context"

	"github.com/saeid-a/CoachAcademyBack/internal/models"
)

type CoachRepository struct {
	db DBTX
}

func NewCoachRepository(db DBTX) *CoachRepository {
	return &CoachRepository{db: db}
}

func (r *CoachRepository) CreateEmpty(ctx context.Context, userID int64) error {
	query := `INSERT INTO coaches (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *CoachRepository) GetByUserID(ctx context.Context, userID int64) (*models.Coach, error) {
	query := `
		SELECT c.user_id, u.full_name, c.bio, c.created_at, c.updated_at
		FROM coaches c
		JOIN users u ON u.id = c.user_id
		WHERE c.user_id = $1
	`
	var coach models.Coach
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&coach.UserID,
		&coach.FullName,
		&coach.Bio,
		&coach.CreatedAt,
		&coach.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	availability, err := r.ListAvailability(ctx, userID)
	if err != nil {
		return nil, err
	}
	coach.Availability = availability
	return &coach, nil
}

func (r *CoachRepository) ListAvailability(ctx context.Context, coachID int64) ([]models.AvailabilityWindow, error) {
	query := `
		SELECT position, day_of_week, start_time, end_time
		FROM coach_availability
		WHERE coach_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.Query(ctx, query, coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make([]models.AvailabilityWindow, 0)
	for rows.Next() {
		var window models.AvailabilityWindow
		if err := rows.Scan(&window.Position, &window.DayOfWeek, &window.StartTime, &window.EndTime); err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return windows, nil
}

// ReplaceAvailability swaps the whole weekly set. Callers run it inside a
// transaction.
func (r *CoachRepository) ReplaceAvailability(
	ctx context.Context,
	coachID int64,
	windows []models.AvailabilityWindow,
) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM coach_availability WHERE coach_id = $1`, coachID); err != nil {
		return err
	}

	query := `
		INSERT INTO coach_availability (coach_id, position, day_of_week, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, window := range windows {
		if _, err := r.db.Exec(ctx, query, coachID, i+1, window.DayOfWeek, window.StartTime, window.EndTime); err != nil {
			return err
		}
	}

	_, err := r.db.Exec(ctx, `UPDATE coaches SET updated_at = NOW() WHERE user_id = $1`, coachID)
	return err
}
