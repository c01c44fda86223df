package listing

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"prewalk_engine/models"
)

// WebSearchStrategy scrapes a DuckDuckGo HTML search for catalog detail
// links, trying several phrasings of the address. Every matching result is
// returned; validation downstream picks the right one.
type WebSearchStrategy struct {
	baseURL string
	client  *http.Client
}

func NewWebSearchStrategy(client *http.Client) *WebSearchStrategy {
	return &WebSearchStrategy{
		baseURL: "https://duckduckgo.com",
		client:  client,
	}
}

func (w *WebSearchStrategy) Name() string { return models.StrategyWebSearch }

func (w *WebSearchStrategy) Attempt(ctx context.Context, addr models.Address) ([]*models.ListingCandidate, error) {
	var candidates []*models.ListingCandidate
	for _, variant := range queryVariants(addr.Raw) {
		links, err := w.search(ctx, variant)
		if err != nil {
			return candidates, err
		}
		for _, link := range links {
			candidates = append(candidates, &models.ListingCandidate{
				Strategy: w.Name(),
				URL:      link,
			})
		}
		if len(candidates) > 0 {
			break
		}
	}
	return candidates, nil
}

// FindListingID searches for the address and pulls a listing ID out of the
// first detail link whose unit does not contradict the request. Used by
// the constructed-URL fallback.
func (w *WebSearchStrategy) FindListingID(ctx context.Context, addr models.Address) (string, error) {
	links, err := w.search(ctx, addr.Raw)
	if err != nil {
		return "", err
	}
	for _, link := range links {
		if addr.Unit != "" {
			if urlUnit := unitFromURL(link); urlUnit != "" && !strings.EqualFold(urlUnit, addr.Unit) {
				continue
			}
		}
		if id := ExtractListingID(link); id != "" {
			return id, nil
		}
	}
	return "", nil
}

func (w *WebSearchStrategy) search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("q", query+" site:realtor.com"+strings.TrimSuffix(detailPathMarker, "/"))

	req, err := http.NewRequestWithContext(ctx, "GET", w.baseURL+"/html/?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a.result__a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		real := unwrapResultLink(href)
		if real != "" && strings.Contains(real, detailPathMarker) {
			links = append(links, real)
		}
	})
	return links, nil
}

// unwrapResultLink resolves DuckDuckGo's redirect wrapper
// (/l/?uddg=<encoded-url>) to the underlying URL.
func unwrapResultLink(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("uddg")
}

// queryVariants generates the address phrasings worth searching: as given,
// without the unit, and with compass directions flipped between the
// abbreviated and spelled-out forms.
func queryVariants(addr string) []string {
	variants := []string{addr}
	if stripped := StripUnit(addr); stripped != addr {
		variants = append(variants, stripped)
	}

	dirForms := []struct{ full, abbr string }{
		{" North ", " N "},
		{" South ", " S "},
		{" East ", " E "},
		{" West ", " W "},
	}
	for _, v := range append([]string(nil), variants...) {
		for _, d := range dirForms {
			if strings.Contains(v, d.full) {
				variants = append(variants, strings.Replace(v, d.full, d.abbr, 1))
			}
			if strings.Contains(v, d.abbr) {
				variants = append(variants, strings.Replace(v, d.abbr, d.full, 1))
			}
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, v := range variants {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
