package handlers

import (
	"net/http"
	"testing"

	schedulews "github.com/saeid-a/CoachAcademyBack/internal/websocket"
)

func TestWebSocketAuthRequiresUpgrade(t *testing.T) {
	handler := NewEventsHandler(schedulews.NewHub(nil), "secret")

	app := newTestApp("", "")
	app.Get("/api/v1/ws", handler.WebSocketAuth)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/ws?token=abc", "")
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Fatalf("expected 426, got %d", resp.StatusCode)
	}
}
