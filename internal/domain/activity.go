package domain

import "time"

// ActivityKind names a trip lifecycle step shown on the status page
type ActivityKind string

const (
	ActivityRegistered  ActivityKind = "registered"
	ActivityTripStarted ActivityKind = "trip started"
	ActivityTripEnded   ActivityKind = "trip ended"
	ActivityTripSaved   ActivityKind = "trip saved on disconnect"
	ActivityFailed      ActivityKind = "failed"
)

// Activity is one entry of the recent activity feed
type Activity struct {
	At     time.Time    `json:"at"`
	UserID string       `json:"userId"`
	Kind   ActivityKind `json:"kind"`
	Detail string       `json:"detail,omitempty"`
}
