package usecase

import (
	"sync"
	"time"

	"github.com/mmuslimabdulj/navsocket/internal/domain"
)

// TripTable holds the trip state of every user registered since start.
// Entries are never removed, only reset to the idle shape.
type TripTable struct {
	mu    sync.RWMutex
	trips map[string]*domain.TripState
	locks map[string]*sync.Mutex // per-user operation locks
	now   func() time.Time
}

// NewTripTable creates an empty table
func NewTripTable() *TripTable {
	return &TripTable{
		trips: make(map[string]*domain.TripState),
		locks: make(map[string]*sync.Mutex),
		now:   time.Now,
	}
}

// Ensure creates an idle entry for userID if none exists.
// It reports whether a new entry was created.
func (t *TripTable) Ensure(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.trips[userID]; exists {
		return false
	}
	t.trips[userID] = domain.NewIdleTrip()
	t.locks[userID] = &sync.Mutex{}
	return true
}

// Get returns a copy of the user's trip state
func (t *TripTable) Get(userID string) (domain.TripState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	trip, exists := t.trips[userID]
	if !exists {
		return domain.TripState{}, false
	}
	return trip.Clone(), true
}

// Start overwrites the user's trip with a freshly started one.
// The previous state is returned so callers can see whether a trip was discarded.
func (t *TripTable) Start(userID string, origin, destination domain.Coordinate, priority int) (prev, next domain.TripState, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	trip, exists := t.trips[userID]
	if !exists {
		return prev, next, ErrUnknownUser
	}
	prev = trip.Clone()

	startedAt := t.now()
	*trip = domain.TripState{
		Origin:      &origin,
		Destination: &destination,
		Priority:    priority,
		StartedAt:   &startedAt,
	}
	return prev, trip.Clone(), nil
}

// UpdateLocation merges the current location and priority into the user's trip.
// A nil priority keeps the existing value.
func (t *TripTable) UpdateLocation(userID string, location domain.Coordinate, priority *int) (domain.TripState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	trip, exists := t.trips[userID]
	if !exists {
		return domain.TripState{}, ErrUnknownUser
	}
	trip.CurrentLocation = &location
	if priority != nil {
		trip.Priority = *priority
	}
	return trip.Clone(), nil
}

// Reset clears origin, destination, start time and priority.
// The last known location is kept.
func (t *TripTable) Reset(userID string) (domain.TripState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	trip, exists := t.trips[userID]
	if !exists {
		return domain.TripState{}, ErrUnknownUser
	}
	trip.Origin = nil
	trip.Destination = nil
	trip.StartedAt = nil
	trip.Priority = 0
	return trip.Clone(), nil
}

// Snapshot copies the whole table
func (t *TripTable) Snapshot() map[string]domain.TripState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]domain.TripState, len(t.trips))
	for userID, trip := range t.trips {
		out[userID] = trip.Clone()
	}
	return out
}

// Len returns the number of known users
func (t *TripTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.trips)
}

// ActiveCount returns the number of users with a trip in progress
func (t *TripTable) ActiveCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, trip := range t.trips {
		if trip.Active() {
			n++
		}
	}
	return n
}

// LockUser serializes operations on one user and returns the unlock func.
// Unknown users get ErrUnknownUser.
func (t *TripTable) LockUser(userID string) (func(), error) {
	t.mu.RLock()
	lock, exists := t.locks[userID]
	t.mu.RUnlock()

	if !exists {
		return nil, ErrUnknownUser
	}
	lock.Lock()
	return lock.Unlock, nil
}
