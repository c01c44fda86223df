package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"prewalk_engine/models"
)

const defaultHost = "us-real-estate-listings.p.rapidapi.com"

// Dependent calls against the catalog API keep a one second spacing.
const minRequestInterval = time.Second

// Client fetches structured listing data from the catalog API by listing
// ID. All lookups are read-only GETs authenticated with an API key.
type Client struct {
	baseURL string
	host    string
	apiKey  string
	client  *http.Client

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient builds a catalog client. A nil client gets a default one.
func NewClient(apiKey string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: "https://" + defaultHost,
		host:    defaultHost,
		apiKey:  apiKey,
		client:  client,
	}
}

type detailEntry struct {
	Category string   `json:"category"`
	Text     []string `json:"text"`
}

type propertyData struct {
	ListPrice     int64          `json:"list_price"`
	LastSoldPrice int64          `json:"last_sold_price"`
	LastSoldDate  string         `json:"last_sold_date"`
	Description   map[string]any `json:"description"`
	Details       []detailEntry  `json:"details"`

	PropertyHistory []struct {
		EventName string `json:"event_name"`
		Price     int64  `json:"price"`
		Date      string `json:"date"`
		Listing   *struct {
			Description map[string]any `json:"description"`
		} `json:"listing"`
	} `json:"property_history"`

	Location *struct {
		Address *struct {
			Line         string `json:"line"`
			StreetNumber string `json:"street_number"`
			StreetName   string `json:"street_name"`
			StreetSuffix string `json:"street_suffix"`
			Unit         string `json:"unit"`
			City         string `json:"city"`
			StateCode    string `json:"state_code"`
			State        string `json:"state"`
			PostalCode   string `json:"postal_code"`
		} `json:"address"`
		Neighborhoods []struct {
			Name string `json:"name"`
		} `json:"neighborhoods"`
	} `json:"location"`

	HOA *struct {
		Fee int64 `json:"fee"`
	} `json:"hoa"`

	Photos []struct {
		Href string `json:"href"`
		Tags []struct {
			Label string `json:"label"`
		} `json:"tags"`
	} `json:"photos"`
}

var (
	priceTextRegex  = regexp.MustCompile(`Price: \$?([\d,]+)`)
	bedsTextRegexes = []*regexp.Regexp{
		regexp.MustCompile(`Bedrooms: (\d+)`),
		regexp.MustCompile(`Beds: (\d+)`),
		regexp.MustCompile(`Bedrooms?: (\d+)`),
	}
	bathsTextRegexes = []*regexp.Regexp{
		regexp.MustCompile(`Bathrooms: (\d+)`),
		regexp.MustCompile(`Baths: (\d+)`),
		regexp.MustCompile(`Bathrooms?: (\d+)`),
	}
	roomsTextRegex   = regexp.MustCompile(`Total Rooms: (\d+)`)
	sqftTextRegex    = regexp.MustCompile(`(\d{3,5})\s*sqft`)
	yearTextRegex    = regexp.MustCompile(`Year Built: (\d{4})`)
	hoaTextRegex     = regexp.MustCompile(`Association Fee: (\d+)`)
	subtypeTextRegex = regexp.MustCompile(`Property Subtype: ([\w-]+)`)
	hoodTextRegex    = regexp.MustCompile(`Neighborhood: ([\w\s-]+)`)

	urlKeys = []string{"href", "url", "listing_url", "realtor_url", "permalink", "web_url"}
)

// PropertyDetails fetches the full detail record for a listing ID.
func (c *Client) PropertyDetails(ctx context.Context, listingID string) (*models.PropertyDetails, error) {
	body, err := c.get(ctx, "/v2/property", listingID)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data *propertyData `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding property response: %w", err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("property %s: empty response", listingID)
	}
	d := payload.Data

	details := &models.PropertyDetails{
		LastSoldPrice: d.LastSoldPrice,
		LastSoldDate:  d.LastSoldDate,
	}

	if d.Location != nil && d.Location.Address != nil {
		a := d.Location.Address
		details.Address = a.Line
		if details.Address == "" {
			details.Address = strings.TrimSpace(strings.Join(strings.Fields(
				a.StreetNumber+" "+a.StreetName+" "+a.StreetSuffix+" "+a.Unit), " "))
		}
		details.City = a.City
		details.State = a.StateCode
		if details.State == "" {
			details.State = a.State
		}
		details.ZIP = a.PostalCode
	}

	details.Price = d.ListPrice
	if details.Price == 0 {
		if m := c.searchDetails(d, priceTextRegex); m != "" {
			details.Price, _ = strconv.ParseInt(strings.ReplaceAll(m, ",", ""), 10, 64)
		}
	}

	if details.LastSoldPrice == 0 || details.LastSoldDate == "" {
		for _, h := range d.PropertyHistory {
			name := strings.ToLower(h.EventName)
			if name != "sold" && name != "sold (public record)" {
				continue
			}
			if details.LastSoldPrice == 0 {
				details.LastSoldPrice = h.Price
			}
			if details.LastSoldDate == "" {
				details.LastSoldDate = h.Date
			}
			if details.LastSoldPrice != 0 && details.LastSoldDate != "" {
				break
			}
		}
	}

	details.Bedrooms = descString(d.Description, "beds")
	if details.Bedrooms == "" {
		details.Bedrooms = c.searchDetailsAny(d, bedsTextRegexes)
	}
	details.Bathrooms = descString(d.Description, "baths")
	if details.Bathrooms == "" {
		details.Bathrooms = descString(d.Description, "baths_consolidated")
	}
	if details.Bathrooms == "" {
		details.Bathrooms = c.searchDetailsAny(d, bathsTextRegexes)
	}
	details.Rooms = c.searchDetails(d, roomsTextRegex)

	details.SqFt = descInt(d.Description, "sqft")
	if details.SqFt == 0 {
		if m := c.searchDetails(d, sqftTextRegex); m != "" {
			details.SqFt, _ = strconv.Atoi(m)
		}
	}
	if details.SqFt == 0 {
		for _, h := range d.PropertyHistory {
			if h.Listing != nil {
				if sqft := descInt(h.Listing.Description, "sqft"); sqft != 0 {
					details.SqFt = sqft
					break
				}
			}
		}
	}

	details.YearBuilt = descInt(d.Description, "year_built")
	if details.YearBuilt == 0 {
		if m := c.searchDetails(d, yearTextRegex); m != "" {
			details.YearBuilt, _ = strconv.Atoi(m)
		}
	}

	if d.HOA != nil && d.HOA.Fee != 0 {
		details.HOAFee = strconv.FormatInt(d.HOA.Fee, 10)
	}
	if details.HOAFee == "" {
		details.HOAFee = c.searchDetails(d, hoaTextRegex)
	}

	details.PropertyType = descString(d.Description, "type")
	if details.PropertyType == "" {
		details.PropertyType = descString(d.Description, "sub_type")
	}
	if details.PropertyType == "" {
		details.PropertyType = c.searchDetails(d, subtypeTextRegex)
	}

	if d.Location != nil && len(d.Location.Neighborhoods) > 0 {
		details.Neighborhood = d.Location.Neighborhoods[0].Name
	}
	if details.Neighborhood == "" {
		details.Neighborhood = strings.TrimSpace(c.searchDetails(d, hoodTextRegex))
	}

	for _, p := range d.Photos {
		if p.Href == "" {
			continue
		}
		photo := models.Photo{URL: p.Href, Description: "photo"}
		if hasFloorPlanTag(p.Tags) {
			photo.Description = "floor_plan"
			details.FloorPlans = append(details.FloorPlans, photo)
		} else {
			details.Photos = append(details.Photos, photo)
		}
	}

	details.ListingURL = extractListingURL(body)
	return details, nil
}

// PropertyPhotos fetches the photo set for a listing, separating floor
// plans. Floor plans appear in both slices, matching the photo feed.
func (c *Client) PropertyPhotos(ctx context.Context, listingID string) (images, floorPlans []models.Photo, err error) {
	body, err := c.get(ctx, "/propertyPhotos", listingID)
	if err != nil {
		return nil, nil, err
	}

	var payload struct {
		Photos []photoEntry `json:"photos"`
		Data   struct {
			HomeImages []photoEntry `json:"homeImages"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("decoding photos response: %w", err)
	}

	entries := payload.Photos
	if len(entries) == 0 {
		entries = payload.Data.HomeImages
	}

	for _, e := range entries {
		u := e.URL
		if u == "" {
			u = e.Link
		}
		if u == "" {
			u = e.Href
		}
		if u == "" {
			continue
		}
		if hasFloorPlanTag(e.Tags) {
			floorPlans = append(floorPlans, models.Photo{URL: u, Description: "floor_plan"})
		}
		images = append(images, models.Photo{URL: u, Description: e.Description})
	}
	return images, floorPlans, nil
}

type photoEntry struct {
	URL         string `json:"url"`
	Link        string `json:"link"`
	Href        string `json:"href"`
	Description string `json:"description"`
	Tags        []struct {
		Label string `json:"label"`
	} `json:"tags"`
}

func (c *Client) get(ctx context.Context, endpoint, listingID string) ([]byte, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET",
		c.baseURL+endpoint+"?id="+url.QueryEscape(listingID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog %s status %d: %s", endpoint, resp.StatusCode, truncate(body, 256))
	}
	return body, nil
}

func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	wait := minRequestInterval - time.Since(c.lastCall)
	c.lastCall = time.Now().Add(wait)
	c.mu.Unlock()

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

func (c *Client) searchDetails(d *propertyData, re *regexp.Regexp) string {
	for _, det := range d.Details {
		for _, t := range det.Text {
			if m := re.FindStringSubmatch(t); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

func (c *Client) searchDetailsAny(d *propertyData, res []*regexp.Regexp) string {
	for _, re := range res {
		if m := c.searchDetails(d, re); m != "" {
			return m
		}
	}
	return ""
}

// extractListingURL hunts the raw response for the canonical detail URL,
// which the API has parked under half a dozen different keys over time.
func extractListingURL(body []byte) string {
	var payload struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Data == nil {
		return ""
	}

	if u := urlFromMap(payload.Data); u != "" {
		return u
	}
	for _, key := range []string{"listing", "property", "details"} {
		if nested, ok := payload.Data[key].(map[string]any); ok {
			if u := urlFromMap(nested); u != "" {
				return u
			}
		}
	}
	return ""
}

func urlFromMap(m map[string]any) string {
	for _, key := range urlKeys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func descString(desc map[string]any, key string) string {
	switch v := desc[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func descInt(desc map[string]any, key string) int {
	if f, ok := desc[key].(float64); ok {
		return int(f)
	}
	return 0
}

func hasFloorPlanTag(tags []struct {
	Label string `json:"label"`
}) bool {
	for _, t := range tags {
		if t.Label == "floor_plan" {
			return true
		}
	}
	return false
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
