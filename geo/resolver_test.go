package geo

import (
	"context"
	"path/filepath"
	"testing"

	"prewalk_engine/address"
	"prewalk_engine/models"
)

type fakeGeocoder struct {
	result  *models.GeocodeResult
	queries []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, query string) (*models.GeocodeResult, error) {
	f.queries = append(f.queries, query)
	return f.result, nil
}

func newTestResolver(t *testing.T, geocoder Geocoder) (*Resolver, *GeocodeCache) {
	t.Helper()
	cache := OpenGeocodeCache(filepath.Join(t.TempDir(), "geocode_cache.json"))
	return NewResolver(loadTestTables(t), cache, geocoder), cache
}

func TestResolve_DirectBeforeZIP(t *testing.T) {
	r, _ := newTestResolver(t, &fakeGeocoder{})

	hood, source := r.Resolve(context.Background(), "123 East 5th Street, New York, NY 10003", false)
	if hood != "East Village" || source != models.SourceDirect {
		t.Fatalf("expected East Village via direct, got %q via %q", hood, source)
	}
}

func TestResolve_ZIPFallback(t *testing.T) {
	r, _ := newTestResolver(t, &fakeGeocoder{})

	hood, source := r.Resolve(context.Background(), "1 Main Street, Flushing, NY 11354", false)
	if hood != "Flushing" || source != models.SourceZIP {
		t.Fatalf("expected Flushing via zip, got %q via %q", hood, source)
	}
}

func TestResolve_LiveDisabled(t *testing.T) {
	gc := &fakeGeocoder{result: &models.GeocodeResult{Postcode: "10014", State: "New York"}}
	r, _ := newTestResolver(t, gc)

	hood, source := r.Resolve(context.Background(), "7 Nowhere Lane", false)
	if hood != "" || source != "" {
		t.Fatalf("expected no resolution with live disabled, got %q via %q", hood, source)
	}
	if len(gc.queries) != 0 {
		t.Fatalf("geocoder must not be called when live lookups are off")
	}
}

func TestResolve_LiveGeocodePopulatesCache(t *testing.T) {
	gc := &fakeGeocoder{result: &models.GeocodeResult{Postcode: "10014", State: "New York"}}
	r, cache := newTestResolver(t, gc)

	hood, source := r.Resolve(context.Background(), "7 Nowhere Lane", true)
	if hood != "West Village" || source != models.SourceGeocodeLive {
		t.Fatalf("expected West Village via live geocode, got %q via %q", hood, source)
	}

	key := address.Normalize("7 Nowhere Lane").Normalized
	if _, ok := cache.Get(key); !ok {
		t.Fatalf("live result was not cached")
	}

	// Second resolution is served from cache without another network call.
	calls := len(gc.queries)
	hood, source = r.Resolve(context.Background(), "7 Nowhere Lane", true)
	if hood != "West Village" || source != models.SourceGeocodeCache {
		t.Fatalf("expected cache hit, got %q via %q", hood, source)
	}
	if len(gc.queries) != calls {
		t.Fatalf("cache hit still called the geocoder")
	}
}

func TestResolve_CachedNegativeSuppressesLive(t *testing.T) {
	gc := &fakeGeocoder{result: &models.GeocodeResult{Postcode: "10014", State: "New York"}}
	r, cache := newTestResolver(t, gc)

	key := address.Normalize("7 Nowhere Lane").Normalized
	if err := cache.Put(key, nil); err != nil {
		t.Fatalf("seeding cache: %v", err)
	}

	hood, source := r.Resolve(context.Background(), "7 Nowhere Lane", true)
	if hood != "" || source != "" {
		t.Fatalf("cached negative must resolve to nothing, got %q via %q", hood, source)
	}
	if len(gc.queries) != 0 {
		t.Fatalf("cached negative must suppress the geocoder")
	}
}

func TestResolve_IrrelevantStateRejected(t *testing.T) {
	gc := &fakeGeocoder{result: &models.GeocodeResult{Postcode: "90210", State: "California"}}
	r, cache := newTestResolver(t, gc)

	hood, source := r.Resolve(context.Background(), "7 Nowhere Lane", true)
	if hood != "" || source != "" {
		t.Fatalf("out-of-state result must be rejected, got %q via %q", hood, source)
	}

	// The miss is recorded so the next pass stays offline.
	key := address.Normalize("7 Nowhere Lane").Normalized
	res, ok := cache.Get(key)
	if !ok || res != nil {
		t.Fatalf("expected cached negative entry, got %v (ok=%v)", res, ok)
	}
}

func TestResolve_GeocodeFallbackOrder(t *testing.T) {
	cases := []struct {
		geo  models.GeocodeResult
		hood string
	}{
		{models.GeocodeResult{Postcode: "11215", State: "New York"}, "Park Slope"},
		{models.GeocodeResult{Neighbourhood: "DUMBO", State: "New York"}, "DUMBO"},
		{models.GeocodeResult{Suburb: "Riverdale", State: "New York"}, "Riverdale"},
		{models.GeocodeResult{City: "Hoboken", State: "New Jersey"}, "Hoboken"},
		{models.GeocodeResult{Town: "Town of Rye", State: "New York"}, "Rye"},
		{models.GeocodeResult{Village: "Larchmont", State: "New York"}, "Larchmont"},
	}

	for _, tc := range cases {
		geo := tc.geo
		r, _ := newTestResolver(t, &fakeGeocoder{result: &geo})
		hood, _ := r.Resolve(context.Background(), "7 Nowhere Lane", true)
		if hood != tc.hood {
			t.Fatalf("%+v: expected %q, got %q", tc.geo, tc.hood, hood)
		}
	}
}

func TestQueryVariants(t *testing.T) {
	r, _ := newTestResolver(t, &fakeGeocoder{})

	qs := r.queryVariants("123 Dean Street, Brooklyn, NY")
	if len(qs) != 1 || qs[0] != "123 Dean Street, Brooklyn, NY" {
		t.Fatalf("located address must geocode as-is, got %v", qs)
	}

	qs = r.queryVariants("850 NW 42nd Ave")
	if len(qs) != 2 || qs[0] != "850 NW 42nd Ave, Miami, FL" {
		t.Fatalf("compass-grid address must try Miami first, got %v", qs)
	}

	qs = r.queryVariants("7 Nowhere Lane")
	if len(qs) != 3 || qs[0] != "7 Nowhere Lane, New York, NY" {
		t.Fatalf("bare address must try NYC first, got %v", qs)
	}
}
