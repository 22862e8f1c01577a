package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/mmuslimabdulj/navsocket/internal/config"
	"github.com/mmuslimabdulj/navsocket/internal/delivery/ws"
	"github.com/mmuslimabdulj/navsocket/internal/domain"
	"github.com/mmuslimabdulj/navsocket/internal/usecase"
	"golang.org/x/time/rate"
)

// maxHistoryLimit caps /api/trips page size
const maxHistoryLimit = 500

// TripLister reads persisted trips back
type TripLister interface {
	ListTrips(ctx context.Context, userID string, limit int) ([]domain.TripRecord, error)
}

// isOriginAllowed checks if the origin is in the allowed list
func isOriginAllowed(origin string, allowed []string) bool {
	// Empty origin is allowed (same-origin requests)
	if origin == "" {
		return true
	}

	for _, a := range allowed {
		if a == "*" || origin == a {
			return true
		}
	}
	return false
}

type Handler struct {
	hub      *ws.Hub
	gateway  *ws.Gateway
	nav      *usecase.Navigator
	trips    TripLister
	cfg      *config.Config
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler wires the HTTP surface. trips may be nil when the trip store
// cannot be queried.
func NewHandler(hub *ws.Hub, gateway *ws.Gateway, nav *usecase.Navigator, trips TripLister, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		hub:     hub,
		gateway: gateway,
		nav:     nav,
		trips:   trips,
		cfg:     cfg,
		logger:  logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return isOriginAllowed(r.Header.Get("Origin"), cfg.AllowedOrigins)
		},
	}
	return h
}

// HandleWebSocket upgrades HTTP to WebSocket and starts the connection pumps
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := ws.NewClient(conn, rate.NewLimiter(h.cfg.EventRate, h.cfg.EventBurst))
	h.gateway.HandleConnect(client)

	// The request context ends when this handler returns
	ctx := context.WithoutCancel(r.Context())

	go client.WritePump()
	go client.ReadPump(ctx, h.gateway, int64(h.cfg.MaxMessageSize))
}

// HandleStatus serves the status page
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	trips := h.nav.Trips()
	view := statusView{
		Connections: h.hub.ClientCount(),
		Registered:  trips.Len(),
		ActiveTrips: trips.ActiveCount(),
		Online:      sortedOnline(h.hub.OnlineUsers()),
		Activity:    h.gateway.Activity().Recent(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statusPage(view).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render status page", "error", err)
	}
}

// HandleHealth reports liveness and basic gauges
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": h.hub.ClientCount(),
		"onlineUsers": h.hub.UserCount(),
		"activeTrips": h.nav.Trips().ActiveCount(),
	})
}

// HandleTripHistory lists persisted trips of a user
func (h *Handler) HandleTripHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.trips == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{
			"error": "trip history requires the sqlite trip store",
		})
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userId is required"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	records, err := h.trips.ListTrips(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to list trips", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load trips"})
		return
	}
	if records == nil {
		records = []domain.TripRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId": userID,
		"trips":  records,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
