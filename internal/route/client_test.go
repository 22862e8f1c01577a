package route

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmuslimabdulj/navsocket/internal/domain"
)

func TestHTTPClient_SearchPath(t *testing.T) {
	var got domain.RouteQuery
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/routes/search" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"points":[{"latitude":1,"longitude":1},{"latitude":2,"longitude":2}],"distance":157000}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL+"/", time.Second)
	query := domain.NewRouteQuery(domain.Coordinate{Latitude: 1, Longitude: 1}, domain.Coordinate{Latitude: 2, Longitude: 3})

	path, err := client.SearchPath(context.Background(), query)
	if err != nil {
		t.Fatalf("SearchPath failed: %v", err)
	}
	if got != query {
		t.Errorf("Expected query %+v, got %+v", query, got)
	}
	if got.DestinationLongitude != 3 {
		t.Errorf("Expected destination longitude 3, got %v", got.DestinationLongitude)
	}
	if len(path.Points) != 2 || path.Distance != 157000 {
		t.Errorf("Unexpected path %+v", path)
	}
}

func TestHTTPClient_SearchPathErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no route", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	_, err := client.SearchPath(context.Background(), domain.RouteQuery{})
	if err == nil {
		t.Fatal("Expected error for 404")
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "no route") {
		t.Errorf("Expected status and body in error, got %v", err)
	}
}

func TestHTTPClient_SaveTrip(t *testing.T) {
	var body struct {
		UserID string           `json:"userId"`
		Trip   domain.TripState `json:"trip"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trips" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	dest := domain.Coordinate{Latitude: 2, Longitude: 2}
	client := NewHTTPClient(srv.URL, time.Second)
	if err := client.SaveTrip(context.Background(), "u1", domain.TripState{Destination: &dest, Priority: 2}); err != nil {
		t.Fatalf("SaveTrip failed: %v", err)
	}

	if body.UserID != "u1" {
		t.Errorf("Expected userId u1, got %q", body.UserID)
	}
	if body.Trip.Destination == nil || *body.Trip.Destination != dest {
		t.Errorf("Unexpected trip %+v", body.Trip)
	}
	if body.Trip.Priority != 2 {
		t.Errorf("Expected priority 2, got %d", body.Trip.Priority)
	}
}

func TestHTTPClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewHTTPClient(srv.URL, time.Second)
	if err := client.SaveTrip(ctx, "u1", domain.TripState{}); err == nil {
		t.Fatal("Expected error when context expires")
	}
}
