package route

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmuslimabdulj/navsocket/internal/domain"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS trips (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	origin_lat REAL,
	origin_lng REAL,
	dest_lat REAL,
	dest_lng REAL,
	last_lat REAL,
	last_lng REAL,
	priority INTEGER NOT NULL DEFAULT 0,
	started_at INTEGER,
	ended_at INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS trips_user_id ON trips (user_id, id)`,
}

// SQLStore records finished trips in a SQL database
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLStore wraps an open database handle
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// OpenSQLite opens (or creates) the SQLite file at path and applies the schema
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	store := NewSQLStore(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Migrate creates the trips table if needed
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate trips: %w", err)
		}
	}
	return nil
}

// Close releases the database handle
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// SaveTrip inserts one finished trip
func (s *SQLStore) SaveTrip(ctx context.Context, userID string, trip domain.TripState) error {
	originLat, originLng := nullCoordinate(trip.Origin)
	destLat, destLng := nullCoordinate(trip.Destination)
	lastLat, lastLng := nullCoordinate(trip.CurrentLocation)

	var startedAt sql.NullInt64
	if trip.StartedAt != nil {
		startedAt = sql.NullInt64{Int64: trip.StartedAt.UnixMilli(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trips (user_id, origin_lat, origin_lng, dest_lat, dest_lng, last_lat, last_lng, priority, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, originLat, originLng, destLat, destLng, lastLat, lastLng, trip.Priority, startedAt, s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

// ListTrips returns the most recent trips of userID, newest first
func (s *SQLStore) ListTrips(ctx context.Context, userID string, limit int) ([]domain.TripRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, origin_lat, origin_lng, dest_lat, dest_lng, last_lat, last_lng, priority, started_at, ended_at
		 FROM trips WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	records := make([]domain.TripRecord, 0)
	for rows.Next() {
		var rec domain.TripRecord
		var originLat, originLng, destLat, destLng, lastLat, lastLng sql.NullFloat64
		var startedAt sql.NullInt64
		var endedAt int64
		if err := rows.Scan(&rec.ID, &rec.UserID, &originLat, &originLng, &destLat, &destLng,
			&lastLat, &lastLng, &rec.Priority, &startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}

		rec.Origin = coordinateFromNull(originLat, originLng)
		rec.Destination = coordinateFromNull(destLat, destLng)
		rec.CurrentLocation = coordinateFromNull(lastLat, lastLng)
		if startedAt.Valid {
			ts := time.UnixMilli(startedAt.Int64).UTC()
			rec.StartedAt = &ts
		}
		rec.EndedAt = time.UnixMilli(endedAt).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trips: %w", err)
	}
	return records, nil
}

func nullCoordinate(c *domain.Coordinate) (lat, lng sql.NullFloat64) {
	if c == nil {
		return lat, lng
	}
	return sql.NullFloat64{Float64: c.Latitude, Valid: true}, sql.NullFloat64{Float64: c.Longitude, Valid: true}
}

func coordinateFromNull(lat, lng sql.NullFloat64) *domain.Coordinate {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &domain.Coordinate{Latitude: lat.Float64, Longitude: lng.Float64}
}
