package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"prewalk_engine/models"
)

// SerpAPIStrategy runs a paid Google search scoped to the catalog's detail
// pages. It is skipped entirely when no API key is configured.
type SerpAPIStrategy struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSerpAPIStrategy(apiKey string, client *http.Client) *SerpAPIStrategy {
	return &SerpAPIStrategy{
		apiKey:  apiKey,
		baseURL: "https://serpapi.com",
		client:  client,
	}
}

func (s *SerpAPIStrategy) Name() string { return models.StrategyPaidSearch }

func (s *SerpAPIStrategy) Attempt(ctx context.Context, addr models.Address) ([]*models.ListingCandidate, error) {
	if s.apiKey == "" {
		return nil, nil
	}

	queries := []string{addr.Raw}
	if stripped := StripUnit(addr.Raw); stripped != addr.Raw {
		queries = append(queries, stripped)
	}

	var candidates []*models.ListingCandidate
	for _, q := range queries {
		links, err := s.search(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, link := range links {
			candidates = append(candidates, &models.ListingCandidate{
				Strategy: s.Name(),
				URL:      link,
			})
		}
		if len(candidates) > 0 {
			break
		}
	}
	return candidates, nil
}

func (s *SerpAPIStrategy) search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query+" site:realtor.com"+detailPathMarker)
	params.Set("num", "10")
	params.Set("api_key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi status %d", resp.StatusCode)
	}

	var payload struct {
		OrganicResults []struct {
			Link string `json:"link"`
		} `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding serpapi response: %w", err)
	}

	var links []string
	for _, r := range payload.OrganicResults {
		if strings.Contains(r.Link, detailPathMarker) {
			links = append(links, r.Link)
		}
	}
	return links, nil
}
