package domain

import (
	"encoding/json"
	"time"
)

// MessageType is the name of an event on the socket
type MessageType string

const (
	// Inbound (client -> gateway)
	MessageTypeRegisterUser      MessageType = "registerUser"
	MessageTypeStartTrip         MessageType = "startTrip"
	MessageTypeUpdateLocation    MessageType = "updateLocation"
	MessageTypeEndTrip           MessageType = "endTrip"
	MessageTypeGetUsersLocations MessageType = "getUsersLocations"

	// Outbound (gateway -> client)
	MessageTypeSuccess        MessageType = "success"
	MessageTypeRoomCreated    MessageType = "roomCreated"
	MessageTypeTripPath       MessageType = "tripPath"
	MessageTypeUsersLocations MessageType = "usersLocations"
	MessageTypeError          MessageType = "error"
)

// ErrorCode classifies an error event
type ErrorCode string

const (
	ErrorCodeNotRegistered    ErrorCode = "not_registered"
	ErrorCodeValidation       ErrorCode = "validation_failed"
	ErrorCodeMalformedMessage ErrorCode = "malformed_message"
	ErrorCodeUnknownEvent     ErrorCode = "unknown_event"
	ErrorCodeRouteFailed      ErrorCode = "route_failed"
	ErrorCodeSaveFailed       ErrorCode = "save_failed"
	ErrorCodeRateLimited      ErrorCode = "rate_limited"
	ErrorCodeInternal         ErrorCode = "internal"
)

// Incoming is the envelope a client sends
type Incoming struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Message is the envelope the gateway sends
type Message struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// RegisterUserPayload is the body of registerUser
type RegisterUserPayload struct {
	UserID string `json:"userId" validate:"required,max=128"`
}

// WireCoordinate is a position as sent by a client; both fields must be present
type WireCoordinate struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// Coordinate converts a validated wire position
func (w WireCoordinate) Coordinate() Coordinate {
	return Coordinate{Latitude: *w.Latitude, Longitude: *w.Longitude}
}

// StartTripPayload is the body of startTrip
type StartTripPayload struct {
	Origin      *WireCoordinate `json:"origin" validate:"required"`
	Destination *WireCoordinate `json:"destination" validate:"required"`
	Priority    *int            `json:"priority" validate:"required"`
}

// UpdateLocationPayload is the body of updateLocation
type UpdateLocationPayload struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Priority  *int     `json:"priority"` // absent keeps the current priority
}

// SuccessPayload is sent to a connection right after it connects
type SuccessPayload struct {
	Client string `json:"client"`
}

// RoomCreatedPayload echoes the group a connection joined
type RoomCreatedPayload struct {
	Room string `json:"room"`
}

// TripPathPayload carries a computed path to the user's group
type TripPathPayload struct {
	Room string `json:"room"`
	Path Path   `json:"path"`
}

// ErrorPayload describes a failed event
type ErrorPayload struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Event   MessageType       `json:"event,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
