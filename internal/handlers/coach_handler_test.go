package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"github.com/saeid-a/CoachAcademyBack/internal/scheduling"
	"github.com/saeid-a/CoachAcademyBack/internal/services"
)

type stubCoachService struct {
	coach       *models.Coach
	err         error
	lastWindows []models.AvailabilityWindow
}

func (s *stubCoachService) GetCoach(context.Context, int64) (*models.Coach, error) {
	return s.coach, s.err
}

func (s *stubCoachService) ReplaceAvailability(_ context.Context, _ int64, _ string, windows []models.AvailabilityWindow) (*models.Coach, error) {
	s.lastWindows = windows
	return s.coach, s.err
}

type stubAvailabilityService struct {
	slots     []scheduling.Slot
	err       error
	lastQuery services.AvailableSlotsQuery
}

func (s *stubAvailabilityService) GetAvailableSlots(_ context.Context, query services.AvailableSlotsQuery) ([]scheduling.Slot, error) {
	s.lastQuery = query
	return s.slots, s.err
}

type stubProgramLister struct {
	programs []models.Program
}

func (s stubProgramLister) ListCoachPrograms(context.Context, int64) ([]models.Program, error) {
	return s.programs, nil
}

type stubGroundService struct {
	ground   *models.Ground
	free     []int
	err      error
	lastDate time.Time
	lastRole string
}

func (s *stubGroundService) CreateGround(_ context.Context, role string, _ services.CreateGroundInput) (*models.Ground, error) {
	s.lastRole = role
	return s.ground, s.err
}

func (s *stubGroundService) GetGround(context.Context, int64) (*models.Ground, error) {
	return s.ground, s.err
}

func (s *stubGroundService) GetFreeGroundSlots(_ context.Context, _ int64, date time.Time, _, _ string) ([]int, error) {
	s.lastDate = date
	return s.free, s.err
}

func TestGetSlotsPassesPacingQuery(t *testing.T) {
	availability := &stubAvailabilityService{slots: []scheduling.Slot{{StartTime: "08:00", EndTime: "10:00"}}}
	handler := NewCoachHandler(&stubCoachService{}, availability, stubProgramLister{}, nil)

	app := newTestApp(models.RoleLearner, "42")
	app.Get("/api/v1/coaches/:id/slots", handler.GetSlots)

	resp, body := doJSON(t, app, http.MethodGet,
		"/api/v1/coaches/7/slots?date=2026-03-16&enrollment_date=2026-03-01&duration_weeks=8&session_number=3", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	query := availability.lastQuery
	if query.CoachID != 7 || query.SessionNumber == nil || *query.SessionNumber != 3 || query.EnrollmentDate == nil {
		t.Fatalf("unexpected query %+v", query)
	}
	slots, _ := body["slots"].([]any)
	if len(slots) != 1 || body["date"] != "2026-03-16" {
		t.Fatalf("unexpected slots body %v", body)
	}
}

func TestGetSlotsRequiresDate(t *testing.T) {
	handler := NewCoachHandler(&stubCoachService{}, &stubAvailabilityService{}, stubProgramLister{}, nil)

	app := newTestApp(models.RoleLearner, "42")
	app.Get("/api/v1/coaches/:id/slots", handler.GetSlots)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/coaches/7/slots", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	fields, _ := body["fields"].(map[string]any)
	if _, ok := fields["date"]; !ok {
		t.Fatalf("expected date field error, got %v", body)
	}
}

func TestReplaceAvailabilityValidatesWindows(t *testing.T) {
	coaches := &stubCoachService{coach: &models.Coach{UserID: 7}}
	handler := NewCoachHandler(coaches, &stubAvailabilityService{}, stubProgramLister{}, nil)

	app := newTestApp(models.RoleCoach, "7")
	app.Put("/api/v1/coaches/me/availability", handler.ReplaceAvailability)

	resp, body := doJSON(t, app, http.MethodPut, "/api/v1/coaches/me/availability",
		`{"windows": [{"day_of_week": "funday", "start_time": "08:00", "end_time": "12:00"}]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	fields, _ := body["fields"].(map[string]any)
	if _, ok := fields["windows[0].day_of_week"]; !ok {
		t.Fatalf("expected nested field error, got %v", fields)
	}

	resp, _ = doJSON(t, app, http.MethodPut, "/api/v1/coaches/me/availability",
		`{"windows": [{"day_of_week": "monday", "start_time": "08:00", "end_time": "12:00"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(coaches.lastWindows) != 1 || coaches.lastWindows[0].DayOfWeek != "monday" {
		t.Fatalf("unexpected windows %+v", coaches.lastWindows)
	}
}

func TestListCoachPrograms(t *testing.T) {
	handler := NewCoachHandler(&stubCoachService{}, &stubAvailabilityService{}, stubProgramLister{
		programs: []models.Program{{ID: 1, CoachID: 7}, {ID: 2, CoachID: 7}},
	}, nil)

	app := newTestApp(models.RoleLearner, "42")
	app.Get("/api/v1/coaches/:id/programs", handler.ListPrograms)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/coaches/7/programs", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if programs, _ := body["programs"].([]any); len(programs) != 2 {
		t.Fatalf("unexpected programs %v", body)
	}
}

func TestGetFreeGroundSlots(t *testing.T) {
	grounds := &stubGroundService{free: []int{2, 4}}
	handler := NewGroundHandler(grounds, nil)

	app := newTestApp(models.RoleLearner, "42")
	app.Get("/api/v1/grounds/:id/free-slots", handler.GetFreeSlots)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/grounds/4/free-slots?date=2026-03-16&start_time=08:00&end_time=10:00", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	free, _ := body["free_slots"].([]any)
	if len(free) != 2 || free[0] != float64(2) {
		t.Fatalf("unexpected free slots %v", body)
	}
	if !grounds.lastDate.Equal(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", grounds.lastDate)
	}

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/grounds/4/free-slots?date=2026-03-16", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without a time range, got %d", resp.StatusCode)
	}
}

func TestCreateGroundForbiddenForCoach(t *testing.T) {
	grounds := &stubGroundService{err: apperr.NewAuthorization("create grounds")}
	handler := NewGroundHandler(grounds, nil)

	app := newTestApp(models.RoleCoach, "7")
	app.Post("/api/v1/grounds", handler.CreateGround)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/grounds", `{"name": "North Oval", "total_slots": 4}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if grounds.lastRole != models.RoleCoach {
		t.Fatalf("expected role to reach the service, got %q", grounds.lastRole)
	}
}
