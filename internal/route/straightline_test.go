package route

import (
	"context"
	"math"
	"testing"

	"github.com/mmuslimabdulj/navsocket/internal/domain"
)

func TestStraightLine_SearchPath(t *testing.T) {
	origin := domain.Coordinate{Latitude: 0, Longitude: 0}
	destination := domain.Coordinate{Latitude: 0, Longitude: 1}

	path, err := StraightLine{}.SearchPath(context.Background(), domain.NewRouteQuery(origin, destination))
	if err != nil {
		t.Fatalf("SearchPath failed: %v", err)
	}
	if len(path.Points) != 2 || path.Points[0] != origin || path.Points[1] != destination {
		t.Errorf("Unexpected points %+v", path.Points)
	}

	// One degree of longitude on the equator
	want := 111195.0
	if math.Abs(path.Distance-want) > 10 {
		t.Errorf("Expected distance ~%v, got %v", want, path.Distance)
	}
}

func TestStraightLine_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (StraightLine{}).SearchPath(ctx, domain.RouteQuery{}); err == nil {
		t.Fatal("Expected error for canceled context")
	}
}

func TestHaversineMeters(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.Coordinate
		want float64
	}{
		{"Same point", domain.Coordinate{Latitude: 10, Longitude: 10}, domain.Coordinate{Latitude: 10, Longitude: 10}, 0},
		{"Pole to pole", domain.Coordinate{Latitude: 90}, domain.Coordinate{Latitude: -90}, math.Pi * earthRadiusMeters},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := haversineMeters(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1 {
				t.Errorf("haversineMeters = %v, expected %v", got, tc.want)
			}
		})
	}
}
