package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const propertyFixture = `{
  "data": {
    "list_price": 1250000,
    "permalink": "https://www.realtor.com/realestateandhomes-detail/16-W-21st-St_New-York_NY_10010_M123",
    "description": {"beds": 2, "baths_consolidated": "2.5", "sqft": 1100, "year_built": 1927, "type": "condo"},
    "location": {
      "address": {"line": "16 W 21st St", "city": "New York", "state_code": "NY", "postal_code": "10010"},
      "neighborhoods": [{"name": "Flatiron"}]
    },
    "hoa": {"fee": 850},
    "property_history": [
      {"event_name": "Listed", "price": 1300000, "date": "2024-01-10"},
      {"event_name": "Sold", "price": 1100000, "date": "2021-06-02"}
    ],
    "details": [
      {"category": "Other Rooms", "text": ["Total Rooms: 5"]}
    ],
    "photos": [
      {"href": "https://img.example.com/1.jpg", "tags": [{"label": "garden"}]},
      {"href": "https://img.example.com/plan.jpg", "tags": [{"label": "floor_plan"}]}
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", srv.Client())
	c.baseURL = srv.URL
	return c
}

func TestPropertyDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/property" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-rapidapi-key") != "test-key" {
			t.Fatalf("missing api key header")
		}
		if r.URL.Query().Get("id") != "123" {
			t.Fatalf("unexpected id %q", r.URL.Query().Get("id"))
		}
		fmt.Fprint(w, propertyFixture)
	})

	d, err := c.PropertyDetails(context.Background(), "123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Address != "16 W 21st St" || d.City != "New York" || d.ZIP != "10010" {
		t.Fatalf("address fields wrong: %+v", d)
	}
	if d.Price != 1250000 {
		t.Fatalf("expected price 1250000, got %d", d.Price)
	}
	if d.LastSoldPrice != 1100000 || d.LastSoldDate != "2021-06-02" {
		t.Fatalf("last sold not taken from history: %d / %s", d.LastSoldPrice, d.LastSoldDate)
	}
	if d.Bedrooms != "2" || d.Bathrooms != "2.5" || d.Rooms != "5" {
		t.Fatalf("room counts wrong: beds=%q baths=%q rooms=%q", d.Bedrooms, d.Bathrooms, d.Rooms)
	}
	if d.SqFt != 1100 || d.YearBuilt != 1927 {
		t.Fatalf("size fields wrong: %d / %d", d.SqFt, d.YearBuilt)
	}
	if d.HOAFee != "850" || d.PropertyType != "condo" || d.Neighborhood != "Flatiron" {
		t.Fatalf("attributes wrong: %q / %q / %q", d.HOAFee, d.PropertyType, d.Neighborhood)
	}
	if len(d.Photos) != 1 || len(d.FloorPlans) != 1 {
		t.Fatalf("photo split wrong: %d photos, %d plans", len(d.Photos), len(d.FloorPlans))
	}
	if d.ListingURL == "" {
		t.Fatalf("permalink not extracted as listing URL")
	}
}

func TestPropertyDetails_EmptyResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": null}`)
	})

	if _, err := c.PropertyDetails(context.Background(), "123"); err == nil {
		t.Fatalf("expected error on empty payload")
	}
}

func TestPropertyPhotos(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"photos": [
			{"url": "https://img.example.com/1.jpg", "description": "kitchen"},
			{"link": "https://img.example.com/2.jpg", "tags": [{"label": "floor_plan"}]},
			{"description": "no url, skipped"}
		]}`)
	})

	images, plans, err := c.PropertyPhotos(context.Background(), "123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if len(plans) != 1 || plans[0].URL != "https://img.example.com/2.jpg" {
		t.Fatalf("floor plan split wrong: %v", plans)
	}
}
