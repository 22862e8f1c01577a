package route

import (
	"context"
	"math"

	"github.com/mmuslimabdulj/navsocket/internal/domain"
)

const earthRadiusMeters = 6371000.0

// StraightLine is a development path finder: the path is the segment from origin to destination
type StraightLine struct{}

// SearchPath returns origin and destination with their great-circle distance
func (StraightLine) SearchPath(ctx context.Context, query domain.RouteQuery) (domain.Path, error) {
	if err := ctx.Err(); err != nil {
		return domain.Path{}, err
	}

	origin := domain.Coordinate{Latitude: query.OriginLatitude, Longitude: query.OriginLongitude}
	destination := domain.Coordinate{Latitude: query.DestinationLatitude, Longitude: query.DestinationLongitude}

	return domain.Path{
		Points:   []domain.Coordinate{origin, destination},
		Distance: haversineMeters(origin, destination),
	}, nil
}

func haversineMeters(a, b domain.Coordinate) float64 {
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180
	la1 := a.Latitude * math.Pi / 180
	la2 := b.Latitude * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
