// Package apperr defines the domain error taxonomy shared by services and
// handlers. Every error carries enough context for a client to render an
// actionable message without another round trip.
package apperr

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ValidationError reports malformed or missing input, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Add(field, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
	return e
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// PacingError is returned when a booking date falls outside the week window
// assigned to the requested session number. ActualWeek is 0 when the date is
// outside the program entirely.
type PacingError struct {
	ExpectedWeek int       `json:"expected_week"`
	ActualWeek   int       `json:"actual_week"`
	Date         time.Time `json:"date"`
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
	// ProgramWeeks is set when ExpectedWeek lies past the program's last
	// week; the window is then the whole program.
	ProgramWeeks int `json:"program_weeks,omitempty"`
}

func (e *PacingError) Error() string {
	if e.ProgramWeeks > 0 {
		return fmt.Sprintf(
			"session %d is beyond the program's %d weeks (%s to %s)",
			e.ExpectedWeek, e.ProgramWeeks, e.WindowStart.Format(DateLayout), e.WindowEnd.Format(DateLayout),
		)
	}
	if e.ActualWeek == 0 {
		return fmt.Sprintf(
			"date %s is outside the program; session %d must be booked between %s and %s",
			e.Date.Format(DateLayout), e.ExpectedWeek, e.WindowStart.Format(DateLayout), e.WindowEnd.Format(DateLayout),
		)
	}
	return fmt.Sprintf(
		"date %s falls in week %d; session %d must be booked between %s and %s",
		e.Date.Format(DateLayout), e.ActualWeek, e.ExpectedWeek, e.WindowStart.Format(DateLayout), e.WindowEnd.Format(DateLayout),
	)
}

// Conflict resources.
const (
	ResourceGroundSlot  = "ground_slot"
	ResourceCoachSlot   = "coach_slot"
	ResourceWeekSession = "week_session"
	ResourceCertificate = "certificate"
	ResourceEnrollment  = "enrollment"
	ResourcePayment     = "payment"
)

// ConflictError reports a lost race or an already-taken resource.
type ConflictError struct {
	Resource string
	Message  string
}

func NewConflict(resource, message string) *ConflictError {
	return &ConflictError{Resource: resource, Message: message}
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Guard reasons.
const (
	ReasonTooCloseToSession  = "too_close_to_session"
	ReasonAlreadyRescheduled = "already_rescheduled"
	ReasonAttendanceMarked   = "attendance_marked"
	ReasonTerminalState      = "terminal_state"
	ReasonEnrollmentInactive = "enrollment_inactive"
	ReasonFutureSession      = "session_in_future"
	ReasonProgramLocked      = "program_locked"
	ReasonProgramFull        = "program_full"
	ReasonPaymentSettled     = "payment_settled"
)

// GuardError reports an action the lifecycle rules do not allow right now.
type GuardError struct {
	Reason  string
	Message string
}

func NewGuard(reason, message string) *GuardError {
	return &GuardError{Reason: reason, Message: message}
}

func (e *GuardError) Error() string {
	return e.Message
}

// EligibilityError reports an attendance percentage below the threshold.
type EligibilityError struct {
	Current  float64
	Required float64
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("attendance %.2f%% is below the required %.2f%%", e.Current, e.Required)
}

// NotFoundError reports a dangling reference.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFound(resource string, id any) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// AuthorizationError reports an actor acting on a resource they do not own.
type AuthorizationError struct {
	Action string
}

func NewAuthorization(action string) *AuthorizationError {
	return &AuthorizationError{Action: action}
}

func (e *AuthorizationError) Error() string {
	if e.Action == "" {
		return "forbidden"
	}
	return "not allowed to " + e.Action
}

const DateLayout = "2006-01-02"
