package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mmuslimabdulj/navsocket/internal/config"
	"github.com/mmuslimabdulj/navsocket/internal/delivery/ws"
	"github.com/mmuslimabdulj/navsocket/internal/domain"
	"github.com/mmuslimabdulj/navsocket/internal/route"
	"github.com/mmuslimabdulj/navsocket/internal/usecase"
)

type fakeLister struct {
	records []domain.TripRecord
	err     error
	userID  string
	limit   int
}

func (f *fakeLister) ListTrips(ctx context.Context, userID string, limit int) ([]domain.TripRecord, error) {
	f.userID = userID
	f.limit = limit
	return f.records, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestHandler(trips TripLister, recorder usecase.TripRecorder) *Handler {
	logger := testLogger()
	cfg := config.DefaultConfig()
	hub := ws.NewHub()
	nav := usecase.NewNavigator(usecase.NewTripTable(), route.StraightLine{}, recorder, logger)
	gateway := ws.NewGateway(hub, nav, logger)
	return NewHandler(hub, gateway, nav, trips, cfg, logger)
}

// === SECURITY TESTS ===

func TestIsOriginAllowed(t *testing.T) {
	allowed := config.DefaultConfig().AllowedOrigins

	tests := []struct {
		origin   string
		expected bool
	}{
		{"http://localhost:8080", true},
		{"http://localhost:3000", true},
		{"", true}, // Empty origin allowed (same-origin)
		{"http://evil.com", false},
		{"https://attacker.com", false},
	}

	for _, tc := range tests {
		if result := isOriginAllowed(tc.origin, allowed); result != tc.expected {
			t.Errorf("isOriginAllowed(%s) = %v, expected %v", tc.origin, result, tc.expected)
		}
	}

	if !isOriginAllowed("http://anything.example", []string{"*"}) {
		t.Error("Expected wildcard to allow any origin")
	}
}

func TestHandleWebSocket_RejectsForeignOrigin(t *testing.T) {
	h := setupTestHandler(nil, nil)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	header := http.Header{}
	header.Set("Origin", "http://evil.com")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	if err == nil {
		t.Fatal("Expected handshake to fail for foreign origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %v", resp)
	}
}

// === PAGES ===

func TestHandleStatus(t *testing.T) {
	h := setupTestHandler(nil, nil)
	h.nav.Register("<b>u1</b>")
	h.gateway.Activity().Add("<b>u1</b>", domain.ActivityRegistered, "")

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	h.HandleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Expected HTML, got %s", w.Header().Get("Content-Type"))
	}
	body := w.Body.String()
	if !strings.Contains(body, "Recent activity") {
		t.Error("Expected activity section")
	}
	if strings.Contains(body, "<b>u1</b>") || !strings.Contains(body, "&lt;b&gt;u1&lt;/b&gt;") {
		t.Error("Expected user ids to be escaped")
	}

	// Invalid path
	req = httptest.NewRequest("GET", "/random", nil)
	w = httptest.NewRecorder()
	h.HandleStatus(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for invalid path, got %d", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	h := setupTestHandler(nil, nil)
	h.nav.Register("u1")
	h.nav.StartTrip(context.Background(), "u1", domain.Coordinate{}, domain.Coordinate{Latitude: 1}, 1)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	h.HandleHealth(w, req)

	var res struct {
		Status      string `json:"status"`
		Connections int    `json:"connections"`
		ActiveTrips int    `json:"activeTrips"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if res.Status != "ok" || res.Connections != 0 || res.ActiveTrips != 1 {
		t.Errorf("Unexpected health %+v", res)
	}
}

// === TRIP HISTORY ===

func TestHandleTripHistory(t *testing.T) {
	started := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	lister := &fakeLister{records: []domain.TripRecord{
		{ID: 7, UserID: "u1", Destination: &domain.Coordinate{Latitude: 2, Longitude: 2}, Priority: 1, StartedAt: &started},
	}}
	h := setupTestHandler(lister, nil)

	req := httptest.NewRequest("GET", "/api/trips?userId=u1&limit=5", nil)
	w := httptest.NewRecorder()
	h.HandleTripHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if lister.userID != "u1" || lister.limit != 5 {
		t.Errorf("Expected lister called with u1/5, got %s/%d", lister.userID, lister.limit)
	}

	var res struct {
		UserID string              `json:"userId"`
		Trips  []domain.TripRecord `json:"trips"`
	}
	json.NewDecoder(w.Body).Decode(&res)
	if len(res.Trips) != 1 || res.Trips[0].ID != 7 {
		t.Errorf("Unexpected trips %+v", res.Trips)
	}
}

func TestHandleTripHistory_Errors(t *testing.T) {
	tests := []struct {
		name     string
		lister   TripLister
		method   string
		target   string
		expected int
	}{
		{"No store", nil, "GET", "/api/trips?userId=u1", http.StatusNotImplemented},
		{"Wrong method", &fakeLister{}, "POST", "/api/trips?userId=u1", http.StatusMethodNotAllowed},
		{"Missing user", &fakeLister{}, "GET", "/api/trips", http.StatusBadRequest},
		{"Bad limit", &fakeLister{}, "GET", "/api/trips?userId=u1&limit=abc", http.StatusBadRequest},
		{"Limit too large", &fakeLister{}, "GET", "/api/trips?userId=u1&limit=501", http.StatusBadRequest},
		{"Store failure", &fakeLister{err: errors.New("locked")}, "GET", "/api/trips?userId=u1", http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := setupTestHandler(tc.lister, nil)
			req := httptest.NewRequest(tc.method, tc.target, nil)
			w := httptest.NewRecorder()
			h.HandleTripHistory(w, req)

			if w.Code != tc.expected {
				t.Errorf("Expected status %d, got %d", tc.expected, w.Code)
			}
		})
	}
}

func TestHandleTripHistory_EmptyList(t *testing.T) {
	h := setupTestHandler(&fakeLister{}, nil)

	req := httptest.NewRequest("GET", "/api/trips?userId=u1", nil)
	w := httptest.NewRecorder()
	h.HandleTripHistory(w, req)

	if !strings.Contains(w.Body.String(), `"trips":[]`) {
		t.Errorf("Expected empty array, got %s", w.Body.String())
	}
}

// === WEBSOCKET INTEGRATION ===

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func sendEvent(t *testing.T, conn *websocket.Conn, eventType domain.MessageType, payload any) {
	t.Helper()
	frame := map[string]any{"type": eventType}
	if payload != nil {
		frame["payload"] = payload
	}
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("Failed to send %s: %v", eventType, err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) domain.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	var m domain.Message
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Failed to unmarshal %s: %v", data, err)
	}
	return m
}

func TestWebSocket_TripLifecycle(t *testing.T) {
	store, err := route.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "trips.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer store.Close()

	h := setupTestHandler(store, store)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWebSocket)
	mux.HandleFunc("/api/trips", h.HandleTripHistory)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	if m := readEvent(t, conn); m.Type != domain.MessageTypeSuccess {
		t.Fatalf("Expected success on connect, got %s", m.Type)
	}

	sendEvent(t, conn, domain.MessageTypeRegisterUser, map[string]string{"userId": "u1"})
	if m := readEvent(t, conn); m.Type != domain.MessageTypeRoomCreated {
		t.Fatalf("Expected roomCreated, got %s", m.Type)
	}

	sendEvent(t, conn, domain.MessageTypeStartTrip, map[string]any{
		"origin":      map[string]float64{"latitude": 52.52, "longitude": 13.405},
		"destination": map[string]float64{"latitude": 48.8566, "longitude": 2.3522},
		"priority":    2,
	})
	m := readEvent(t, conn)
	if m.Type != domain.MessageTypeTripPath {
		t.Fatalf("Expected tripPath, got %s", m.Type)
	}
	var path domain.TripPathPayload
	json.Unmarshal(m.Payload, &path)
	if path.Room != "user-u1" || len(path.Path.Points) != 2 || path.Path.Distance <= 0 {
		t.Errorf("Unexpected path %+v", path)
	}

	sendEvent(t, conn, domain.MessageTypeEndTrip, nil)
	// Events are handled in order, so the reply proves endTrip completed
	sendEvent(t, conn, domain.MessageTypeGetUsersLocations, nil)
	if m := readEvent(t, conn); m.Type != domain.MessageTypeUsersLocations {
		t.Fatalf("Expected usersLocations, got %s", m.Type)
	}

	resp, err := http.Get(srv.URL + "/api/trips?userId=u1")
	if err != nil {
		t.Fatalf("GET /api/trips failed: %v", err)
	}
	defer resp.Body.Close()

	var history struct {
		Trips []domain.TripRecord `json:"trips"`
	}
	json.NewDecoder(resp.Body).Decode(&history)
	if len(history.Trips) != 1 {
		t.Fatalf("Expected 1 persisted trip, got %d", len(history.Trips))
	}
	if history.Trips[0].Priority != 2 || history.Trips[0].Destination == nil {
		t.Errorf("Unexpected record %+v", history.Trips[0])
	}
}

func TestWebSocket_DisconnectRemovesConnection(t *testing.T) {
	h := setupTestHandler(nil, nil)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	readEvent(t, conn)
	sendEvent(t, conn, domain.MessageTypeRegisterUser, map[string]string{"userId": "u1"})
	readEvent(t, conn)

	if h.hub.ClientCount() != 1 {
		t.Fatalf("Expected 1 client, got %d", h.hub.ClientCount())
	}

	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for h.hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expected connection to be removed after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, ok := h.nav.Trips().Get("u1"); !ok {
		t.Error("Expected trip-state entry to outlive the connection")
	}
}
