package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/mmuslimabdulj/navsocket/internal/domain"
	"github.com/mmuslimabdulj/navsocket/internal/observability"
	"github.com/mmuslimabdulj/navsocket/internal/usecase"
)

// Gateway turns inbound socket events into trip lifecycle operations and
// emits the resulting events to a connection or to a user's group.
// Errors are reported to the triggering connection only.
type Gateway struct {
	hub      *Hub
	nav      *usecase.Navigator
	validate *validator.Validate
	scope    string
	activity *ActivityLog
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewGateway creates a Gateway over the given hub and navigator
func NewGateway(hub *Hub, nav *usecase.Navigator, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		hub:      hub,
		nav:      nav,
		validate: newValidator(),
		scope:    domain.LocationsScopeAll,
		activity: NewActivityLog(domain.ActivityLogSize),
		logger:   logger,
	}
}

// SetLocationsScope selects what getUsersLocations returns: "all" or "self"
func (g *Gateway) SetLocationsScope(scope string) {
	g.scope = scope
}

// SetMetrics attaches Prometheus metrics
func (g *Gateway) SetMetrics(m *observability.Metrics) {
	g.metrics = m
}

// Activity returns the recent lifecycle feed
func (g *Gateway) Activity() *ActivityLog {
	return g.activity
}

// HandleConnect registers a new connection and tells it its id
func (g *Gateway) HandleConnect(c *Client) {
	g.hub.Register(c)
	g.sendTo(c, domain.MessageTypeSuccess, domain.SuccessPayload{Client: c.ID})
	g.logger.Debug("connection opened", "conn_id", c.ID)
}

// HandleMessage decodes one inbound frame and dispatches it
func (g *Gateway) HandleMessage(ctx context.Context, c *Client, raw []byte) {
	var in domain.Incoming
	if err := json.Unmarshal(raw, &in); err != nil || in.Type == "" {
		g.sendError(c, "", domain.ErrorCodeMalformedMessage, "frame is not a valid event envelope", nil)
		return
	}

	if !c.allow() {
		g.sendError(c, in.Type, domain.ErrorCodeRateLimited, "too many events", nil)
		return
	}
	g.metrics.RecordEvent(string(in.Type))

	switch in.Type {
	case domain.MessageTypeRegisterUser:
		g.registerUser(c, in.Payload)
	case domain.MessageTypeStartTrip:
		g.startTrip(ctx, c, in.Payload)
	case domain.MessageTypeUpdateLocation:
		g.updateLocation(ctx, c, in.Payload)
	case domain.MessageTypeEndTrip:
		g.endTrip(ctx, c)
	case domain.MessageTypeGetUsersLocations:
		g.getUsersLocations(c)
	default:
		g.sendError(c, in.Type, domain.ErrorCodeUnknownEvent, "unknown event", nil)
	}
}

// HandleDisconnect persists an active trip of the connection's user and then
// removes the connection from its group.
func (g *Gateway) HandleDisconnect(ctx context.Context, c *Client) {
	logger := g.logger.With("conn_id", c.ID)

	userID, ok := g.hub.UserOf(c.ID)
	if !ok {
		logger.Debug("unregistered connection closed")
		g.hub.Unregister(c)
		return
	}

	saved, err := g.nav.Disconnect(ctx, userID)
	if err != nil {
		logger.Error("failed to persist trip on disconnect", "user_id", userID, "error", err)
		g.activity.Add(userID, domain.ActivityFailed, err.Error())
	} else if saved {
		logger.Info("active trip persisted on disconnect", "user_id", userID)
		g.activity.Add(userID, domain.ActivityTripSaved, "")
	}

	g.hub.Unregister(c)
	logger.Debug("connection closed", "user_id", userID)
}

func (g *Gateway) registerUser(c *Client, raw json.RawMessage) {
	var p domain.RegisterUserPayload
	if !g.decode(c, domain.MessageTypeRegisterUser, raw, &p) {
		return
	}

	room, previous := g.hub.Join(c, p.UserID)
	if previous != "" && previous != p.UserID {
		g.logger.Info("connection moved to another user", "conn_id", c.ID, "from", previous, "to", p.UserID)
	}
	if g.nav.Register(p.UserID) {
		g.activity.Add(p.UserID, domain.ActivityRegistered, "")
	}

	g.emitToRoom(room, domain.MessageTypeRoomCreated, domain.RoomCreatedPayload{Room: room})
}

func (g *Gateway) startTrip(ctx context.Context, c *Client, raw json.RawMessage) {
	userID, room, ok := g.resolve(c, domain.MessageTypeStartTrip)
	if !ok {
		return
	}

	var p domain.StartTripPayload
	if !g.decode(c, domain.MessageTypeStartTrip, raw, &p) {
		return
	}

	path, err := g.nav.StartTrip(ctx, userID, p.Origin.Coordinate(), p.Destination.Coordinate(), *p.Priority)
	if err != nil {
		g.fail(c, domain.MessageTypeStartTrip, err)
		g.activity.Add(userID, domain.ActivityFailed, err.Error())
		return
	}
	g.activity.Add(userID, domain.ActivityTripStarted, "")

	g.emitToRoom(room, domain.MessageTypeTripPath, domain.TripPathPayload{Room: room, Path: path})
}

func (g *Gateway) updateLocation(ctx context.Context, c *Client, raw json.RawMessage) {
	userID, _, ok := g.resolve(c, domain.MessageTypeUpdateLocation)
	if !ok {
		return
	}

	var p domain.UpdateLocationPayload
	if !g.decode(c, domain.MessageTypeUpdateLocation, raw, &p) {
		return
	}

	location := domain.Coordinate{Latitude: *p.Latitude, Longitude: *p.Longitude}
	if err := g.nav.UpdateLocation(ctx, userID, location, p.Priority); err != nil {
		g.fail(c, domain.MessageTypeUpdateLocation, err)
	}
}

func (g *Gateway) endTrip(ctx context.Context, c *Client) {
	userID, _, ok := g.resolve(c, domain.MessageTypeEndTrip)
	if !ok {
		return
	}

	if err := g.nav.EndTrip(ctx, userID); err != nil {
		g.fail(c, domain.MessageTypeEndTrip, err)
		g.activity.Add(userID, domain.ActivityFailed, err.Error())
		return
	}
	g.activity.Add(userID, domain.ActivityTripEnded, "")
}

func (g *Gateway) getUsersLocations(c *Client) {
	userID, room, ok := g.resolve(c, domain.MessageTypeGetUsersLocations)
	if !ok {
		return
	}

	g.emitToRoom(room, domain.MessageTypeUsersLocations, g.nav.Locations(userID, g.scope))
}

// resolve finds the user a connection registered as and reports
// not_registered to the connection when it has none
func (g *Gateway) resolve(c *Client, event domain.MessageType) (userID, room string, ok bool) {
	userID, ok = g.hub.UserOf(c.ID)
	if !ok {
		g.fail(c, event, usecase.ErrNotRegistered)
		return "", "", false
	}
	return userID, RoomName(userID), true
}

// decode validates a payload and reports problems to the connection
func (g *Gateway) decode(c *Client, event domain.MessageType, raw json.RawMessage, dst any) bool {
	fields, err := decodePayload(g.validate, raw, dst)
	if errors.Is(err, errMalformedPayload) {
		g.sendError(c, event, domain.ErrorCodeMalformedMessage, "payload is not valid JSON for this event", nil)
		return false
	}
	if err != nil {
		g.logger.Error("payload validation failed", "event", event, "error", err)
		g.sendError(c, event, domain.ErrorCodeInternal, "could not validate payload", nil)
		return false
	}
	if len(fields) > 0 {
		g.sendError(c, event, domain.ErrorCodeValidation, "invalid payload", fields)
		return false
	}
	return true
}

// fail maps a usecase error to an error event
func (g *Gateway) fail(c *Client, event domain.MessageType, err error) {
	code := errorCode(err)
	if code == domain.ErrorCodeInternal {
		g.logger.Error("event failed", "conn_id", c.ID, "event", event, "error", err)
	} else {
		g.logger.Warn("event rejected", "conn_id", c.ID, "event", event, "code", code, "error", err)
	}
	g.sendError(c, event, code, err.Error(), nil)
}

func errorCode(err error) domain.ErrorCode {
	switch {
	case errors.Is(err, usecase.ErrNotRegistered), errors.Is(err, usecase.ErrUnknownUser):
		return domain.ErrorCodeNotRegistered
	case errors.Is(err, usecase.ErrRouteFailed):
		return domain.ErrorCodeRouteFailed
	case errors.Is(err, usecase.ErrSaveFailed):
		return domain.ErrorCodeSaveFailed
	default:
		return domain.ErrorCodeInternal
	}
}

func (g *Gateway) sendError(c *Client, event domain.MessageType, code domain.ErrorCode, message string, fields map[string]string) {
	g.metrics.RecordError(string(code))
	g.sendTo(c, domain.MessageTypeError, domain.ErrorPayload{
		Code:    code,
		Message: message,
		Event:   event,
		Fields:  fields,
	})
}

func (g *Gateway) sendTo(c *Client, eventType domain.MessageType, payload any) {
	data, err := buildMessage(eventType, payload)
	if err != nil {
		g.logger.Error("failed to encode event", "event", eventType, "error", err)
		return
	}
	if !c.Send(data) {
		g.logger.Warn("dropped event for slow or closed connection", "conn_id", c.ID, "event", eventType)
	}
}

func (g *Gateway) emitToRoom(room string, eventType domain.MessageType, payload any) {
	data, err := buildMessage(eventType, payload)
	if err != nil {
		g.logger.Error("failed to encode event", "event", eventType, "error", err)
		return
	}
	g.hub.EmitToRoom(room, data)
}
