package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/config"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/repository"
	"github.com/saeid-a/CoachAcademyBack/internal/scheduling"
)

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// EventPublisher receives schedule changes after they commit.
type EventPublisher interface {
	Publish(event models.ScheduleEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(models.ScheduleEvent) {}

func notFound(err error, resource string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NewNotFound(resource, id)
	}
	return err
}

func rulesFromPolicy(policy config.Policy) scheduling.Rules {
	return scheduling.Rules{
		CancelLeadTime:        policy.CancelLeadTime,
		RescheduleLeadTime:    policy.RescheduleLeadTime,
		MaxReschedules:        policy.MaxReschedules,
		AllowFutureAttendance: policy.AllowFutureAttendance,
	}
}

// lockKey serializes writers on one resource for the rest of the transaction.
func lockKey(ctx context.Context, db repository.DBTX, kind string, parts ...any) error {
	key := kind
	for _, part := range parts {
		key += ":" + fmt.Sprint(part)
	}
	_, err := db.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key)
	return err
}

// bookedRanges turns sessions into clock ranges on their scheduled date.
func bookedRanges(sessions []models.Session) []scheduling.ClockRange {
	ranges := make([]scheduling.ClockRange, 0, len(sessions))
	for _, session := range sessions {
		span, err := scheduling.ParseClockRange(session.StartTime, session.EndTime)
		if err != nil {
			continue
		}
		ranges = append(ranges, span)
	}
	return ranges
}

func canAccessSession(role string, actorID int64, session *models.Session) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleCoach:
		return session.CoachID == actorID
	case models.RoleLearner:
		return session.ParticipantFor(actorID) != nil
	default:
		return false
	}
}

func formatDate(t time.Time) string {
	return t.Format(apperr.DateLayout)
}
