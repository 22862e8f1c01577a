package domain

import "time"

// ==== WebSocket Constants ====

// MaxMessageSize is the maximum allowed WebSocket message size in bytes
const MaxMessageSize = 4096

// SendBufferSize is the number of outbound frames queued per connection
const SendBufferSize = 256

// ==== Group Constants ====

// RoomPrefix marks the broadcast group that belongs to a single user
const RoomPrefix = "user-"

// ==== Rate Limit Constants ====

const (
	// DefaultRateLimitAPI is the default rate limit for API endpoints (requests/sec)
	DefaultRateLimitAPI = 10

	// DefaultRateLimitWS is the default rate limit for WebSocket connections (req/sec)
	DefaultRateLimitWS = 5

	// DefaultEventRate is the number of inbound events per second a connection may send
	DefaultEventRate = 20

	// DefaultEventBurst is the burst allowance on top of DefaultEventRate
	DefaultEventBurst = 40
)

// ==== Timing Constants ====

const (
	// RouteTimeout bounds a single call to the route & trip service
	RouteTimeout = 10 * time.Second

	// DisconnectSaveTimeout bounds the trip save performed when a connection drops
	DisconnectSaveTimeout = 15 * time.Second
)

// ==== Locations Scope ====

const (
	// LocationsScopeAll sends the whole trip table on getUsersLocations
	LocationsScopeAll = "all"

	// LocationsScopeSelf sends only the caller's own entry
	LocationsScopeSelf = "self"
)

// ActivityLogSize is how many lifecycle entries the status page keeps
const ActivityLogSize = 50
