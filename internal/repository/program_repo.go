package repository

import (
	"context"

	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/shopspring/decimal"
)

type CreateProgramInput struct {
	CoachID       int64
	Title         string
	Description   *string
	Fee           decimal.Decimal
	DurationWeeks int
	Capacity      int
}

type UpdateProgramInput struct {
	Title         string
	Description   *string
	Fee           decimal.Decimal
	DurationWeeks int
	Capacity      int
}

type ProgramRepository struct {
	db DBTX
}

func NewProgramRepository(db DBTX) *ProgramRepository {
	return &ProgramRepository{db: db}
}

const programColumns = `id, coach_id, title, description, fee::text, duration_weeks, total_sessions, capacity, created_at, updated_at`

func scanProgram(row interface{ Scan(dest ...any) error }) (*models.Program, error) {
	var program models.Program
	var fee string
	if err := row.Scan(
		&program.ID,
		&program.CoachID,
		&program.Title,
		&program.Description,
		&fee,
		&program.DurationWeeks,
		&program.TotalSessions,
		&program.Capacity,
		&program.CreatedAt,
		&program.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(fee)
	if err != nil {
		return nil, err
	}
	program.Fee = parsed
	return &program, nil
}

// Create stores a program. total_sessions always equals duration_weeks.
func (r *ProgramRepository) Create(ctx context.Context, input CreateProgramInput) (*models.Program, error) {
	query := `
		INSERT INTO programs (coach_id, title, description, fee, duration_weeks, total_sessions, capacity)
		VALUES ($1, $2, $3, $4::numeric, $5, $5, $6)
		RETURNING ` + programColumns
	return scanProgram(r.db.QueryRow(
		ctx,
		query,
		input.CoachID,
		input.Title,
		input.Description,
		input.Fee.StringFixed(2),
		input.DurationWeeks,
		input.Capacity,
	))
}

func (r *ProgramRepository) Update(ctx context.Context, programID int64, input UpdateProgramInput) (*models.Program, error) {
	query := `
		UPDATE programs
		SET title = $2,
			description = $3,
			fee = $4::numeric,
			duration_weeks = $5,
			total_sessions = $5,
			capacity = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + programColumns
	return scanProgram(r.db.QueryRow(
		ctx,
		query,
		programID,
		input.Title,
		input.Description,
		input.Fee.StringFixed(2),
		input.DurationWeeks,
		input.Capacity,
	))
}

func (r *ProgramRepository) GetByID(ctx context.Context, programID int64) (*models.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE id = $1`
	return scanProgram(r.db.QueryRow(ctx, query, programID))
}

func (r *ProgramRepository) GetByIDForUpdate(ctx context.Context, programID int64) (*models.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE id = $1 FOR UPDATE`
	return scanProgram(r.db.QueryRow(ctx, query, programID))
}

// ListByCoachID is the derived coach → programs index.
func (r *ProgramRepository) ListByCoachID(ctx context.Context, coachID int64) ([]models.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE coach_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	programs := make([]models.Program, 0)
	for rows.Next() {
		program, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, *program)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *ProgramRepository) HasSessions(ctx context.Context, programID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE program_id = $1)`, programID).Scan(&exists)
	return exists, err
}
