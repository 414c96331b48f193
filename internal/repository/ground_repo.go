package repository

import (
	"context"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/models"
)

type CreateGroundInput struct {
	Name       string
	Location   string
	TotalSlots int
	Facilities []string
}

type CreateGroundBookingInput struct {
	GroundID    int64
	SessionID   int64
	BookingDate time.Time
	SlotNumber  int
	StartsAt    time.Time
	EndsAt      time.Time
}

type GroundRepository struct {
	db DBTX
}

func NewGroundRepository(db DBTX) *GroundRepository {
	return &GroundRepository{db: db}
}

func (r *GroundRepository) Create(ctx context.Context, input CreateGroundInput) (*models.Ground, error) {
	facilities := input.Facilities
	if facilities == nil {
		facilities = []string{}
	}
	query := `
		INSERT INTO grounds (name, location, total_slots, facilities)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, location, total_slots, facilities, created_at
	`
	var ground models.Ground
	err := r.db.QueryRow(ctx, query, input.Name, input.Location, input.TotalSlots, facilities).Scan(
		&ground.ID,
		&ground.Name,
		&ground.Location,
		&ground.TotalSlots,
		&ground.Facilities,
		&ground.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ground, nil
}

func (r *GroundRepository) GetByID(ctx context.Context, groundID int64) (*models.Ground, error) {
	query := `
		SELECT id, name, location, total_slots, facilities, created_at
		FROM grounds
		WHERE id = $1
	`
	var ground models.Ground
	err := r.db.QueryRow(ctx, query, groundID).Scan(
		&ground.ID,
		&ground.Name,
		&ground.Location,
		&ground.TotalSlots,
		&ground.Facilities,
		&ground.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ground, nil
}

// ListLiveBookings returns unreleased bookings of a ground overlapping
// [start, end).
func (r *GroundRepository) ListLiveBookings(
	ctx context.Context,
	groundID int64,
	start time.Time,
	end time.Time,
) ([]models.GroundBooking, error) {
	query := `
		SELECT id, ground_id, session_id, booking_date, slot_number, starts_at, ends_at, released_at
		FROM ground_bookings
		WHERE ground_id = $1
		  AND released_at IS NULL
		  AND starts_at < $3
		  AND ends_at > $2
		ORDER BY slot_number ASC, starts_at ASC
	`
	rows, err := r.db.Query(ctx, query, groundID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.GroundBooking, 0)
	for rows.Next() {
		var booking models.GroundBooking
		if err := rows.Scan(
			&booking.ID,
			&booking.GroundID,
			&booking.SessionID,
			&booking.BookingDate,
			&booking.SlotNumber,
			&booking.StartsAt,
			&booking.EndsAt,
			&booking.ReleasedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GroundRepository) CreateBooking(ctx context.Context, input CreateGroundBookingInput) (*models.GroundBooking, error) {
	query := `
		INSERT INTO ground_bookings (ground_id, session_id, booking_date, slot_number, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, ground_id, session_id, booking_date, slot_number, starts_at, ends_at, released_at
	`
	var booking models.GroundBooking
	err := r.db.QueryRow(
		ctx,
		query,
		input.GroundID,
		input.SessionID,
		input.BookingDate,
		input.SlotNumber,
		input.StartsAt,
		input.EndsAt,
	).Scan(
		&booking.ID,
		&booking.GroundID,
		&booking.SessionID,
		&booking.BookingDate,
		&booking.SlotNumber,
		&booking.StartsAt,
		&booking.EndsAt,
		&booking.ReleasedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *GroundRepository) ReleaseBySession(ctx context.Context, sessionID int64) error {
	query := `
		UPDATE ground_bookings
		SET released_at = NOW()
		WHERE session_id = $1 AND released_at IS NULL
	`
	_, err := r.db.Exec(ctx, query, sessionID)
	return err
}
