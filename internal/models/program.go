package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Program struct {
	ID            int64           `json:"id"`
	CoachID       int64           `json:"coach_id"`
	Title         string          `json:"title"`
	Description   *string         `json:"description,omitempty"`
	Fee           decimal.Decimal `json:"fee"`
	DurationWeeks int             `json:"duration_weeks"`
	TotalSessions int             `json:"total_sessions"`
	Capacity      int             `json:"capacity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
