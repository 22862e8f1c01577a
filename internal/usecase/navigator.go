package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmuslimabdulj/navsocket/internal/domain"
	"github.com/mmuslimabdulj/navsocket/internal/observability"
)

var (
	// ErrNotRegistered is returned for events on a connection that never sent registerUser
	ErrNotRegistered = errors.New("connection is not registered")

	// ErrUnknownUser is returned when a user has no trip-state entry
	ErrUnknownUser = errors.New("unknown user")

	// ErrRouteFailed wraps path computation failures
	ErrRouteFailed = errors.New("route search failed")

	// ErrSaveFailed wraps trip persistence failures
	ErrSaveFailed = errors.New("trip save failed")
)

// PathFinder computes a path for an origin/destination pair
type PathFinder interface {
	SearchPath(ctx context.Context, query domain.RouteQuery) (domain.Path, error)
}

// TripRecorder durably records a finished trip
type TripRecorder interface {
	SaveTrip(ctx context.Context, userID string, trip domain.TripState) error
}

// Navigator drives the per-user trip lifecycle: idle -> en route -> idle.
// Every operation on a user runs under that user's lock, collaborator calls included.
type Navigator struct {
	trips    *TripTable
	paths    PathFinder
	recorder TripRecorder
	timeout  time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewNavigator creates a Navigator over the given table and collaborators
func NewNavigator(trips *TripTable, paths PathFinder, recorder TripRecorder, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{
		trips:    trips,
		paths:    paths,
		recorder: recorder,
		timeout:  domain.RouteTimeout,
		logger:   logger,
	}
}

// SetTimeout bounds each collaborator call; zero disables the bound
func (n *Navigator) SetTimeout(d time.Duration) {
	n.timeout = d
}

// SetMetrics attaches Prometheus metrics
func (n *Navigator) SetMetrics(m *observability.Metrics) {
	n.metrics = m
}

// Trips exposes the underlying table for read-only callers
func (n *Navigator) Trips() *TripTable {
	return n.trips
}

// Register makes sure userID has a trip-state entry. Existing state is left untouched.
func (n *Navigator) Register(userID string) bool {
	created := n.trips.Ensure(userID)
	if created {
		n.logger.Debug("user registered", "user_id", userID)
	}
	return created
}

// StartTrip replaces the user's trip with a new one and computes its path.
// An already active trip is discarded without confirmation.
// The state change is kept even when the path search fails.
func (n *Navigator) StartTrip(ctx context.Context, userID string, origin, destination domain.Coordinate, priority int) (domain.Path, error) {
	unlock, err := n.trips.LockUser(userID)
	if err != nil {
		return domain.Path{}, err
	}
	defer unlock()

	prev, _, err := n.trips.Start(userID, origin, destination, priority)
	if err != nil {
		return domain.Path{}, err
	}
	if prev.Active() {
		n.logger.Warn("active trip overwritten by startTrip", "user_id", userID)
	}
	n.metrics.SetActiveTrips(n.trips.ActiveCount())

	path, err := n.searchPath(ctx, domain.NewRouteQuery(origin, destination))
	if err != nil {
		return domain.Path{}, fmt.Errorf("%w: %w", ErrRouteFailed, err)
	}
	return path, nil
}

// UpdateLocation records the user's latest position and priority
func (n *Navigator) UpdateLocation(ctx context.Context, userID string, location domain.Coordinate, priority *int) error {
	unlock, err := n.trips.LockUser(userID)
	if err != nil {
		return err
	}
	defer unlock()

	_, err = n.trips.UpdateLocation(userID, location, priority)
	return err
}

// EndTrip persists the active trip and resets the user to idle.
// The reset happens whether or not the save succeeded.
// An endTrip while idle is not persisted, so each completed trip is saved once.
func (n *Navigator) EndTrip(ctx context.Context, userID string) error {
	unlock, err := n.trips.LockUser(userID)
	if err != nil {
		return err
	}
	defer unlock()

	trip, _ := n.trips.Get(userID)

	var saveErr error
	if trip.Active() {
		saveErr = n.saveTrip(ctx, userID, trip)
	} else {
		n.logger.Debug("endTrip without active trip", "user_id", userID)
	}

	if _, err := n.trips.Reset(userID); err != nil {
		return err
	}
	n.metrics.SetActiveTrips(n.trips.ActiveCount())

	if saveErr != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, saveErr)
	}
	return nil
}

// Disconnect persists and resets an active trip when a connection of the user drops.
// It reports whether a save was attempted.
func (n *Navigator) Disconnect(ctx context.Context, userID string) (bool, error) {
	unlock, err := n.trips.LockUser(userID)
	if err != nil {
		return false, err
	}
	defer unlock()

	trip, _ := n.trips.Get(userID)
	if !trip.Active() {
		return false, nil
	}

	saveErr := n.saveTrip(ctx, userID, trip)
	if _, err := n.trips.Reset(userID); err != nil {
		return true, err
	}
	n.metrics.SetActiveTrips(n.trips.ActiveCount())

	if saveErr != nil {
		return true, fmt.Errorf("%w: %w", ErrSaveFailed, saveErr)
	}
	return true, nil
}

// Locations returns the trip table as seen by userID under the given scope
func (n *Navigator) Locations(userID, scope string) map[string]domain.TripState {
	if scope == domain.LocationsScopeSelf {
		out := make(map[string]domain.TripState, 1)
		if trip, ok := n.trips.Get(userID); ok {
			out[userID] = trip
		}
		return out
	}
	return n.trips.Snapshot()
}

func (n *Navigator) searchPath(ctx context.Context, query domain.RouteQuery) (domain.Path, error) {
	ctx, cancel := n.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	path, err := n.paths.SearchPath(ctx, query)
	n.metrics.ObserveCall("searchPath", started, err)
	return path, err
}

func (n *Navigator) saveTrip(ctx context.Context, userID string, trip domain.TripState) error {
	ctx, cancel := n.withTimeout(ctx)
	defer cancel()

	started := time.Now()
	err := n.recorder.SaveTrip(ctx, userID, trip)
	n.metrics.ObserveCall("saveTrip", started, err)
	if err != nil {
		n.logger.Error("failed to save trip", "user_id", userID, "error", err)
	}
	return err
}

func (n *Navigator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if n.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, n.timeout)
}
