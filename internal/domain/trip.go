package domain

import "time"

// Coordinate is a WGS84 position
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TripState is the live navigation state of one user.
// A nil pointer field means the value is absent.
type TripState struct {
	Origin          *Coordinate `json:"origin"`
	Destination     *Coordinate `json:"destination"`
	CurrentLocation *Coordinate `json:"currentLocation"`
	Priority        int         `json:"priority"`
	StartedAt       *time.Time  `json:"startedAt"`
}

// NewIdleTrip returns a trip state with every field absent
func NewIdleTrip() *TripState {
	return &TripState{}
}

// Active reports whether a trip is in progress
func (t TripState) Active() bool {
	return t.Destination != nil
}

// Clone returns a deep copy so callers never share pointers with the table
func (t TripState) Clone() TripState {
	out := TripState{Priority: t.Priority}
	if t.Origin != nil {
		c := *t.Origin
		out.Origin = &c
	}
	if t.Destination != nil {
		c := *t.Destination
		out.Destination = &c
	}
	if t.CurrentLocation != nil {
		c := *t.CurrentLocation
		out.CurrentLocation = &c
	}
	if t.StartedAt != nil {
		ts := *t.StartedAt
		out.StartedAt = &ts
	}
	return out
}

// RouteQuery is the origin/destination pair sent to the path finder
type RouteQuery struct {
	OriginLatitude       float64 `json:"originLatitude"`
	OriginLongitude      float64 `json:"originLongitude"`
	DestinationLatitude  float64 `json:"destinationLatitude"`
	DestinationLongitude float64 `json:"destinationLongitude"`
}

// NewRouteQuery builds a query from two coordinates
func NewRouteQuery(origin, destination Coordinate) RouteQuery {
	return RouteQuery{
		OriginLatitude:       origin.Latitude,
		OriginLongitude:      origin.Longitude,
		DestinationLatitude:  destination.Latitude,
		DestinationLongitude: destination.Longitude,
	}
}

// Path is a computed route
type Path struct {
	Points   []Coordinate `json:"points"`
	Distance float64      `json:"distance,omitempty"` // metres
}

// TripRecord is a persisted, finished trip
type TripRecord struct {
	ID              int64       `json:"id"`
	UserID          string      `json:"userId"`
	Origin          *Coordinate `json:"origin"`
	Destination     *Coordinate `json:"destination"`
	CurrentLocation *Coordinate `json:"currentLocation"`
	Priority        int         `json:"priority"`
	StartedAt       *time.Time  `json:"startedAt"`
	EndedAt         time.Time   `json:"endedAt"`
}
