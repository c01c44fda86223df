package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"prewalk_engine/models"
)

// Geocoder turns a free-text query into a structured geocode result.
// A nil result with a nil error means the query produced nothing.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*models.GeocodeResult, error)
}

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// Usage policy caps us at one request per second; leave a little headroom.
const nominatimMinInterval = 1100 * time.Millisecond

// NominatimClient geocodes through the public Nominatim endpoint, spacing
// requests to stay inside its rate limit.
type NominatimClient struct {
	baseURL   string
	userAgent string
	client    *http.Client

	mu       sync.Mutex
	lastCall time.Time
}

// NewNominatimClient builds a geocoder. A nil client gets a default one
// with the endpoint's 10s timeout.
func NewNominatimClient(client *http.Client) *NominatimClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &NominatimClient{
		baseURL:   nominatimBaseURL,
		userAgent: "prewalk-engine/1.0",
		client:    client,
	}
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Postcode      string `json:"postcode"`
		Neighbourhood string `json:"neighbourhood"`
		Suburb        string `json:"suburb"`
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
		State         string `json:"state"`
	} `json:"address"`
}

func (n *NominatimClient) Geocode(ctx context.Context, query string) (*models.GeocodeResult, error) {
	if err := n.throttle(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	params.Set("countrycodes", "us")

	req, err := http.NewRequestWithContext(ctx, "GET", n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nominatim error %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding nominatim response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	r := results[0]
	return &models.GeocodeResult{
		Postcode:      r.Address.Postcode,
		Neighbourhood: r.Address.Neighbourhood,
		Suburb:        r.Address.Suburb,
		City:          r.Address.City,
		Town:          r.Address.Town,
		Village:       r.Address.Village,
		State:         r.Address.State,
		DisplayName:   r.DisplayName,
	}, nil
}

// throttle blocks until the minimum spacing since the previous request has
// elapsed, or the context is done.
func (n *NominatimClient) throttle(ctx context.Context) error {
	n.mu.Lock()
	wait := nominatimMinInterval - time.Since(n.lastCall)
	n.lastCall = time.Now().Add(wait)
	n.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
