package listing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"prewalk_engine/models"
)

// SiteSearchStrategy queries the catalog's own search page for the
// building and takes the first detail link it renders.
type SiteSearchStrategy struct {
	baseURL string
	client  *http.Client
}

const siteSearchAttempts = 3

func NewSiteSearchStrategy(client *http.Client) *SiteSearchStrategy {
	return &SiteSearchStrategy{
		baseURL: "https://www.realtor.com",
		client:  client,
	}
}

func (s *SiteSearchStrategy) Name() string { return models.StrategySiteSearch }

func (s *SiteSearchStrategy) Attempt(ctx context.Context, addr models.Address) ([]*models.ListingCandidate, error) {
	slug := Slugify(StripUnit(addr.Raw))
	if slug == "" {
		return nil, nil
	}

	doc, err := s.fetchSearchPage(ctx, s.baseURL+"/realestateandhomes-search/"+slug)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	var candidates []*models.ListingCandidate
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.Contains(href, detailPathMarker) {
			return true
		}
		if !strings.HasPrefix(href, "http") {
			href = s.baseURL + href
		}
		candidates = append(candidates, &models.ListingCandidate{
			Strategy: s.Name(),
			URL:      href,
		})
		return false
	})
	return candidates, nil
}

// fetchSearchPage retries on the block statuses the search page throws
// under load, backing off a little more each attempt. A response that
// stays blocked is a miss, not an error.
func (s *SiteSearchStrategy) fetchSearchPage(ctx context.Context, searchURL string) (*goquery.Document, error) {
	for attempt := 0; attempt < siteSearchAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", browserUserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}

		switch resp.StatusCode {
		case http.StatusOK:
			doc, err := goquery.NewDocumentFromReader(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("parsing search page: %w", err)
			}
			return doc, nil
		case http.StatusTooManyRequests, http.StatusForbidden, http.StatusBadGateway:
			resp.Body.Close()
			if attempt == siteSearchAttempts-1 {
				return nil, nil
			}
			select {
			case <-time.After(time.Duration(2+attempt) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		default:
			resp.Body.Close()
			return nil, nil
		}
	}
	return nil, nil
}
