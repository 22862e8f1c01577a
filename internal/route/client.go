// Package route holds adapters for the external route and trip service.
package route

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmuslimabdulj/navsocket/internal/domain"
)

// HTTPClient talks to a remote route & trip service over JSON/HTTP
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the service at baseURL
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchPath asks the service for a path between two points
func (c *HTTPClient) SearchPath(ctx context.Context, query domain.RouteQuery) (domain.Path, error) {
	var path domain.Path
	if err := c.post(ctx, "/routes/search", query, &path); err != nil {
		return domain.Path{}, fmt.Errorf("search path: %w", err)
	}
	return path, nil
}

// SaveTrip stores a finished trip for userID
func (c *HTTPClient) SaveTrip(ctx context.Context, userID string, trip domain.TripState) error {
	body := struct {
		UserID string           `json:"userId"`
		Trip   domain.TripState `json:"trip"`
	}{userID, trip}

	if err := c.post(ctx, "/trips", body, nil); err != nil {
		return fmt.Errorf("save trip: %w", err)
	}
	return nil
}

func (c *HTTPClient) post(ctx context.Context, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
