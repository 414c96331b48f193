package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/config"
	"github.com/saeid-a/CoachAcademyBack/internal/metrics"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/repository"
	"github.com/saeid-a/CoachAcademyBack/internal/scheduling"
	"go.uber.org/zap"
)

// txStarter is satisfied by *pgxpool.Pool.
type txStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

var validSessionStatuses = map[string]struct{}{
	models.SessionScheduled:   {},
	models.SessionInProgress:  {},
	models.SessionCompleted:   {},
	models.SessionCancelled:   {},
	models.SessionRescheduled: {},
}

type SessionService struct {
	db          txStarter
	sessionRepo *repository.SessionRepository
	policy      config.Policy
	rules       scheduling.Rules
	events      EventPublisher
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
}

func NewSessionService(
	db txStarter,
	sessionRepo *repository.SessionRepository,
	policy config.Policy,
	events EventPublisher,
	m *metrics.Metrics,
	log *zap.Logger,
) *SessionService {
	if events == nil {
		events = noopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{
		db:          db,
		sessionRepo: sessionRepo,
		policy:      policy,
		rules:       rulesFromPolicy(policy),
		events:      events,
		metrics:     m,
		log:         log,
		now:         time.Now,
	}
}

type BookSessionInput struct {
	ProgramID  int64
	CoachID    int64
	Week       int
	Date       time.Time
	StartTime  string
	EndTime    string
	GroundID   int64
	GroundSlot int
}

func (input BookSessionInput) validate() error {
	var verr *apperr.ValidationError
	add := func(field, message string) {
		if verr == nil {
			verr = apperr.NewValidation(field, message)
			return
		}
		verr.Add(field, message)
	}

	if input.ProgramID <= 0 {
		add("program_id", "must be positive")
	}
	if input.CoachID <= 0 {
		add("coach_id", "must be positive")
	}
	if input.Week <= 0 {
		add("session_number", "must be positive")
	}
	if input.Date.IsZero() {
		add("date", "is required")
	}
	if _, err := scheduling.ParseClockRange(input.StartTime, input.EndTime); err != nil {
		add("start_time", err.Error())
	}
	if input.GroundID <= 0 {
		add("ground_id", "must be positive")
	}
	if input.GroundSlot <= 0 {
		add("ground_slot", "must be positive")
	}
	if verr != nil {
		return verr
	}
	return nil
}

// BookSession books one session of a learner's program. Every check and
// write runs in a single transaction; the coach and ground locks plus the
// table constraints decide races.
func (s *SessionService) BookSession(ctx context.Context, learnerID int64, input BookSessionInput) (*models.Session, error) {
	session, err := s.bookSession(ctx, learnerID, input)
	s.recordOutcome(err, metrics.OutcomeBooked)
	if err != nil {
		return nil, err
	}

	s.publish(models.EventSessionBooked, session)
	return session, nil
}

// openEnrollment returns the learner's pending or active enrollment. A
// learner whose only enrollment is closed gets a terminal-state guard.
func openEnrollment(ctx context.Context, enrollments *repository.EnrollmentRepository, learnerID, programID int64) (*models.Enrollment, error) {
	enrollment, err := enrollments.GetOpenByLearnerProgram(ctx, learnerID, programID)
	if err == nil {
		return enrollment, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	latest, err := enrollments.GetLatestByLearnerProgram(ctx, learnerID, programID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NewNotFound("enrollment in program", programID)
		}
		return nil, err
	}
	return nil, apperr.NewGuard(apperr.ReasonTerminalState, "enrollment is "+latest.Status)
}

func (s *SessionService) bookSession(ctx context.Context, learnerID int64, input BookSessionInput) (*models.Session, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	date := scheduling.DateOnly(input.Date)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	enrollment, err := openEnrollment(ctx, repository.NewEnrollmentRepository(tx), learnerID, input.ProgramID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != models.EnrollmentActive {
		return nil, apperr.NewGuard(apperr.ReasonEnrollmentInactive, "enrollment is awaiting payment")
	}

	program, err := repository.NewProgramRepository(tx).GetByID(ctx, input.ProgramID)
	if err != nil {
		return nil, notFound(err, "program", input.ProgramID)
	}
	if program.CoachID != input.CoachID {
		return nil, apperr.NewValidation("coach_id", "does not coach this program")
	}

	if err := scheduling.CheckPacing(enrollment.EnrollmentDate, program.DurationWeeks, input.Week, date); err != nil {
		return nil, err
	}

	span, _ := scheduling.ParseClockRange(input.StartTime, input.EndTime)
	loc := s.policy.Location()
	startsAt := scheduling.At(date, span.Start, loc)
	endsAt := scheduling.At(date, span.End, loc)
	if !startsAt.After(s.now()) {
		return nil, apperr.NewValidation("date", "session must start in the future")
	}

	if err := lockKey(ctx, tx, "coach", input.CoachID); err != nil {
		return nil, err
	}

	coach, err := repository.NewCoachRepository(tx).GetByUserID(ctx, input.CoachID)
	if err != nil {
		return nil, notFound(err, "coach", input.CoachID)
	}
	txSessionRepo := repository.NewSessionRepository(tx)
	if err := checkCoachSlot(
		ctx, coach.Availability, txSessionRepo, input.CoachID, date,
		s.policy.SlotDuration, input.StartTime, input.EndTime, 0,
	); err != nil {
		return nil, err
	}

	taken, err := txSessionRepo.HasLiveWeekSession(ctx, enrollment.ID, input.Week)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.NewConflict(apperr.ResourceWeekSession, "a session is already booked for this week")
	}

	ground, err := repository.NewGroundRepository(tx).GetByID(ctx, input.GroundID)
	if err != nil {
		return nil, notFound(err, "ground", input.GroundID)
	}
	if input.GroundSlot > ground.TotalSlots {
		return nil, apperr.NewValidation("ground_slot", "must be between 1 and the ground's total slots")
	}

	session, err := txSessionRepo.Create(ctx, repository.CreateSessionInput{
		ProgramID:     program.ID,
		CoachID:       input.CoachID,
		EnrollmentID:  enrollment.ID,
		Week:          input.Week,
		ScheduledDate: date,
		StartTime:     scheduling.FormatClock(span.Start),
		EndTime:       scheduling.FormatClock(span.End),
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		GroundID:      ground.ID,
		GroundSlot:    input.GroundSlot,
	})
	if err != nil {
		return nil, sessionConstraintError(err)
	}

	if err := repository.NewParticipantRepository(tx).Create(ctx, session.ID, learnerID, enrollment.ID); err != nil {
		return nil, err
	}
	if err := claimGroundSlot(ctx, tx, s.metrics, ground, session.ID, date, input.GroundSlot, startsAt, endsAt); err != nil {
		return nil, err
	}

	booked, err := txSessionRepo.GetByID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, sessionConstraintError(err)
	}
	return booked, nil
}

func (s *SessionService) CancelSession(ctx context.Context, learnerID, sessionID int64) (*models.Session, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	session, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, notFound(err, "session", sessionID)
	}
	participant := session.ParticipantFor(learnerID)
	if participant == nil {
		return nil, apperr.NewAuthorization("cancel this session")
	}
	if err := s.rules.CanCancel(session, participant, s.now()); err != nil {
		s.metrics.SessionOperation(metrics.OutcomeRejected)
		return nil, err
	}

	if err := txSessionRepo.UpdateStatus(ctx, session.ID, models.SessionCancelled); err != nil {
		return nil, err
	}
	if err := repository.NewGroundRepository(tx).ReleaseBySession(ctx, session.ID); err != nil {
		return nil, err
	}

	cancelled, err := txSessionRepo.GetByID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.metrics.SessionOperation(metrics.OutcomeCancelled)
	s.publish(models.EventSessionCancelled, cancelled)
	return cancelled, nil
}

type RescheduleSessionInput struct {
	Date       time.Time
	StartTime  string
	GroundSlot *int
}

// RescheduleSession moves a session once, within its own week window. The old
// ground booking is released and the new one claimed in the same transaction.
func (s *SessionService) RescheduleSession(
	ctx context.Context,
	learnerID int64,
	sessionID int64,
	input RescheduleSessionInput,
) (*models.Session, error) {
	session, err := s.rescheduleSession(ctx, learnerID, sessionID, input)
	s.recordOutcome(err, metrics.OutcomeRescheduled)
	if err != nil {
		return nil, err
	}

	s.publish(models.EventSessionRescheduled, session)
	return session, nil
}

func (s *SessionService) rescheduleSession(
	ctx context.Context,
	learnerID int64,
	sessionID int64,
	input RescheduleSessionInput,
) (*models.Session, error) {
	if input.Date.IsZero() {
		return nil, apperr.NewValidation("new_date", "is required")
	}
	start, err := scheduling.ParseClock(strings.TrimSpace(input.StartTime))
	if err != nil {
		return nil, apperr.NewValidation("new_start_time", err.Error())
	}
	if input.GroundSlot != nil && *input.GroundSlot <= 0 {
		return nil, apperr.NewValidation("ground_slot", "must be positive")
	}
	date := scheduling.DateOnly(input.Date)
	end := start + int(s.policy.SlotDuration/time.Minute)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	session, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, notFound(err, "session", sessionID)
	}
	participant := session.ParticipantFor(learnerID)
	if participant == nil {
		return nil, apperr.NewAuthorization("reschedule this session")
	}
	if err := s.rules.CanReschedule(session, participant, s.now()); err != nil {
		return nil, err
	}

	enrollment, err := repository.NewEnrollmentRepository(tx).GetByID(ctx, session.EnrollmentID)
	if err != nil {
		return nil, notFound(err, "enrollment", session.EnrollmentID)
	}
	program, err := repository.NewProgramRepository(tx).GetByID(ctx, session.ProgramID)
	if err != nil {
		return nil, notFound(err, "program", session.ProgramID)
	}
	if err := scheduling.CheckPacing(enrollment.EnrollmentDate, program.DurationWeeks, session.Week, date); err != nil {
		return nil, err
	}

	loc := s.policy.Location()
	startsAt := scheduling.At(date, start, loc)
	endsAt := scheduling.At(date, end, loc)
	if !startsAt.After(s.now()) {
		return nil, apperr.NewValidation("new_date", "session must start in the future")
	}
	startTime := scheduling.FormatClock(start)
	endTime := scheduling.FormatClock(end)

	if err := lockKey(ctx, tx, "coach", session.CoachID); err != nil {
		return nil, err
	}
	coach, err := repository.NewCoachRepository(tx).GetByUserID(ctx, session.CoachID)
	if err != nil {
		return nil, notFound(err, "coach", session.CoachID)
	}
	if err := checkCoachSlot(
		ctx, coach.Availability, txSessionRepo, session.CoachID, date,
		s.policy.SlotDuration, startTime, endTime, session.ID,
	); err != nil {
		return nil, err
	}

	groundSlot := session.GroundSlot
	if input.GroundSlot != nil {
		groundSlot = *input.GroundSlot
	}
	groundRepo := repository.NewGroundRepository(tx)
	ground, err := groundRepo.GetByID(ctx, session.GroundID)
	if err != nil {
		return nil, notFound(err, "ground", session.GroundID)
	}
	if err := groundRepo.ReleaseBySession(ctx, session.ID); err != nil {
		return nil, err
	}
	if err := claimGroundSlot(ctx, tx, s.metrics, ground, session.ID, date, groundSlot, startsAt, endsAt); err != nil {
		return nil, err
	}

	if err := txSessionRepo.Reschedule(ctx, session.ID, repository.RescheduleSessionInput{
		ScheduledDate: date,
		StartTime:     startTime,
		EndTime:       endTime,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		GroundSlot:    groundSlot,
		Previous: models.RescheduleSnapshot{
			Date:       formatDate(session.ScheduledDate),
			StartTime:  session.StartTime,
			EndTime:    session.EndTime,
			GroundSlot: session.GroundSlot,
		},
	}); err != nil {
		return nil, sessionConstraintError(err)
	}

	rescheduled, err := txSessionRepo.GetByID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, sessionConstraintError(err)
	}
	return rescheduled, nil
}

type MarkAttendanceInput struct {
	LearnerID   int64
	Attended    *bool
	Performance *string
	Remarks     *string
}

// MarkAttendance writes the ledger, rebuilds the participant cache from it
// and recomputes the enrollment's progress. Marking again overwrites the
// previous mark.
func (s *SessionService) MarkAttendance(
	ctx context.Context,
	actorID int64,
	role string,
	sessionID int64,
	input MarkAttendanceInput,
) (*models.Session, error) {
	if input.Attended == nil {
		return nil, apperr.NewValidation("attended", "is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	session, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, notFound(err, "session", sessionID)
	}
	if role != models.RoleAdmin && !(role == models.RoleCoach && session.CoachID == actorID) {
		return nil, apperr.NewAuthorization("mark attendance for this session")
	}
	if err := s.rules.CanMarkAttendance(session, s.now()); err != nil {
		return nil, err
	}

	participant, err := attendanceTarget(session, input.LearnerID)
	if err != nil {
		return nil, err
	}

	record, err := repository.NewAttendanceRepository(tx).Upsert(ctx, repository.UpsertAttendanceInput{
		SessionID:   session.ID,
		LearnerID:   participant.LearnerID,
		CoachID:     session.CoachID,
		Attended:    *input.Attended,
		Performance: trimmedOrNil(input.Performance),
		Remarks:     trimmedOrNil(input.Remarks),
	})
	if err != nil {
		return nil, err
	}
	if err := repository.NewParticipantRepository(tx).RebuildFromLedger(ctx, session.ID); err != nil {
		return nil, err
	}
	if session.Status != models.SessionCompleted {
		if err := txSessionRepo.UpdateStatus(ctx, session.ID, models.SessionCompleted); err != nil {
			return nil, err
		}
	}
	if err := s.refreshProgress(ctx, tx, participant.EnrollmentID); err != nil {
		return nil, err
	}

	marked, err := txSessionRepo.GetByID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.metrics.AttendanceMarked(record.Status)
	s.publish(models.EventAttendanceMarked, marked)
	return marked, nil
}

func attendanceTarget(session *models.Session, learnerID int64) (*models.SessionParticipant, error) {
	if learnerID > 0 {
		participant := session.ParticipantFor(learnerID)
		if participant == nil {
			return nil, apperr.NewValidation("learner_id", "is not a participant of this session")
		}
		return participant, nil
	}
	if len(session.Participants) != 1 {
		return nil, apperr.NewValidation("learner_id", "is required for this session")
	}
	return &session.Participants[0], nil
}

func (s *SessionService) refreshProgress(ctx context.Context, tx pgx.Tx, enrollmentID int64) error {
	enrollmentRepo := repository.NewEnrollmentRepository(tx)
	enrollment, err := enrollmentRepo.GetByIDForUpdate(ctx, enrollmentID)
	if err != nil {
		return notFound(err, "enrollment", enrollmentID)
	}
	program, err := repository.NewProgramRepository(tx).GetByID(ctx, enrollment.ProgramID)
	if err != nil {
		return notFound(err, "program", enrollment.ProgramID)
	}
	attended, err := repository.NewAttendanceRepository(tx).CountAttended(ctx, enrollment.LearnerID, enrollment.ProgramID)
	if err != nil {
		return err
	}

	today := scheduling.Today(s.now(), s.policy.Location())
	progress := scheduling.Progress(attended, program.TotalSessions, enrollment.EnrollmentDate, today)
	eligible := scheduling.IsEligible(
		scheduling.AttendancePercentage(attended, program.TotalSessions),
		s.policy.EligibilityThreshold,
	)
	return enrollmentRepo.UpdateProgress(ctx, enrollment.ID, progress, eligible)
}

func (s *SessionService) GetSession(ctx context.Context, actorID int64, role string, sessionID int64) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, notFound(err, "session", sessionID)
	}
	if !canAccessSession(role, actorID, session) {
		return nil, apperr.NewAuthorization("view this session")
	}
	return session, nil
}

type ListSessionsInput struct {
	Status    string
	Timeframe string
	Page      int
	Limit     int
}

func (s *SessionService) ListSessions(
	ctx context.Context,
	actorID int64,
	role string,
	input ListSessionsInput,
) ([]models.Session, int, error) {
	status := strings.TrimSpace(input.Status)
	if status != "" {
		if _, ok := validSessionStatuses[status]; !ok {
			return nil, 0, apperr.NewValidation("status", "is not a session status")
		}
	}
	timeframe := strings.TrimSpace(input.Timeframe)
	if timeframe != "" && timeframe != "upcoming" && timeframe != "past" {
		return nil, 0, apperr.NewValidation("timeframe", "must be upcoming or past")
	}
	page := input.Page
	if page <= 0 {
		page = 1
	}

	return s.sessionRepo.List(ctx, repository.SessionListFilter{
		ActorID:   actorID,
		Role:      role,
		Status:    status,
		Timeframe: timeframe,
		Limit:     input.Limit,
		Offset:    (page - 1) * input.Limit,
	})
}

func (s *SessionService) publish(eventType string, session *models.Session) {
	recipients := []int64{session.CoachID}
	for _, participant := range session.Participants {
		recipients = append(recipients, participant.LearnerID)
	}
	s.events.Publish(models.ScheduleEvent{
		Type:       eventType,
		SessionID:  session.ID,
		Recipients: recipients,
		Payload:    session,
		Timestamp:  s.now().UTC(),
	})
}

func (s *SessionService) recordOutcome(err error, success string) {
	if err == nil {
		s.metrics.SessionOperation(success)
		return
	}

	var (
		pacing   *apperr.PacingError
		conflict *apperr.ConflictError
		guard    *apperr.GuardError
	)
	switch {
	case errors.As(err, &pacing):
		s.metrics.SessionOperation(metrics.OutcomePacing)
	case errors.As(err, &conflict):
		s.metrics.SessionOperation(metrics.OutcomeConflict)
	case errors.As(err, &guard):
		s.metrics.SessionOperation(metrics.OutcomeRejected)
	}
}

// sessionConstraintError maps the sessions table constraints to conflicts.
func sessionConstraintError(err error) error {
	name, ok := repository.ConstraintViolation(err)
	if !ok {
		return err
	}
	switch name {
	case repository.ConstraintLiveWeek:
		return apperr.NewConflict(apperr.ResourceWeekSession, "a session is already booked for this week")
	case repository.ConstraintCoachNoOverlap:
		return apperr.NewConflict(apperr.ResourceCoachSlot, "the coach is already booked at this time")
	case repository.ConstraintGroundNoOverlap:
		return apperr.NewConflict(apperr.ResourceGroundSlot, "the ground slot is no longer available")
	default:
		return apperr.NewConflict(name, "the request conflicts with existing data")
	}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
