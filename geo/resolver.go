package geo

import (
	"context"
	"log"
	"regexp"
	"strings"

	"prewalk_engine/address"
	"prewalk_engine/models"
)

// Resolver maps street addresses to neighborhood labels. Lookups walk a
// fixed chain: direct street tables, ZIP tables, the geocode cache, and
// finally the live geocoder when the caller allows it.
type Resolver struct {
	tables   *Tables
	cache    *GeocodeCache
	geocoder Geocoder
}

func NewResolver(tables *Tables, cache *GeocodeCache, geocoder Geocoder) *Resolver {
	return &Resolver{tables: tables, cache: cache, geocoder: geocoder}
}

var compassAbbrevRegex = regexp.MustCompile(`\b(nw|sw|ne|se)\b`)

var locationHints = []string{
	"new york", ", ny", "miami", "florida", ", fl", ", nj", "jersey",
	"connecticut", ", ct", "westchester", "brooklyn", "queens", "bronx",
	"staten island", "hoboken",
}

var floridaHints = []string{"brickell", "collins", "biscayne", "bayshore", "ocean drive"}

var relevantStates = map[string]bool{
	"New York":    true,
	"New Jersey":  true,
	"Connecticut": true,
	"Florida":     true,
}

// Resolve returns the neighborhood for a raw address along with the source
// that produced it. Both are empty when nothing resolves. allowLive gates
// the only step that touches the network.
func (r *Resolver) Resolve(ctx context.Context, rawAddr string, allowLive bool) (string, string) {
	if strings.TrimSpace(rawAddr) == "" {
		return "", ""
	}
	addr := address.Normalize(rawAddr)

	if hood := r.tables.NeighborhoodFromStreet(addr); hood != "" {
		return hood, models.SourceDirect
	}

	if zip := r.tables.ZIPFor(addr); zip != "" {
		if hood, ok := r.tables.NeighborhoodForZIP(zip); ok {
			return hood, models.SourceZIP
		}
	}

	key := addr.Normalized
	if geo, ok := r.cache.Get(key); ok {
		if geo == nil {
			// Cached negative: already looked up, nothing there.
			return "", ""
		}
		return r.neighborhoodFromGeocode(geo), models.SourceGeocodeCache
	}

	if !allowLive {
		return "", ""
	}

	geo := r.geocodeWithVariants(ctx, rawAddr)
	if err := r.cache.Put(key, geo); err != nil {
		log.Printf("Warning: could not persist geocode cache: %v", err)
	}
	if geo == nil {
		return "", ""
	}
	return r.neighborhoodFromGeocode(geo), models.SourceGeocodeLive
}

// geocodeWithVariants tries city-qualified queries before the bare
// address, and keeps only results in the states the engine serves.
func (r *Resolver) geocodeWithVariants(ctx context.Context, rawAddr string) *models.GeocodeResult {
	for _, query := range r.queryVariants(rawAddr) {
		geo, err := r.geocoder.Geocode(ctx, query)
		if err != nil {
			log.Printf("Warning: geocoding failed for %q: %v", query, err)
			continue
		}
		if geo == nil {
			continue
		}
		if _, known := r.tables.NeighborhoodForZIP(geo.Postcode); known || relevantStates[geo.State] {
			return geo
		}
	}
	return nil
}

func (r *Resolver) queryVariants(rawAddr string) []string {
	lower := strings.ToLower(rawAddr)

	for _, hint := range locationHints {
		if strings.Contains(lower, hint) {
			return []string{rawAddr}
		}
	}

	floridaStyle := compassAbbrevRegex.MatchString(lower)
	for _, hint := range floridaHints {
		if strings.Contains(lower, hint) {
			floridaStyle = true
		}
	}
	if floridaStyle {
		return []string{rawAddr + ", Miami, FL", rawAddr}
	}

	// Most addresses without a locality are NYC.
	return []string{rawAddr + ", New York, NY", rawAddr + ", Brooklyn, NY", rawAddr}
}

// neighborhoodFromGeocode picks a label out of a geocode result, postcode
// first, then successively coarser locality fields.
func (r *Resolver) neighborhoodFromGeocode(geo *models.GeocodeResult) string {
	if hood, ok := r.tables.NeighborhoodForZIP(geo.Postcode); ok {
		return hood
	}
	if geo.Neighbourhood != "" {
		return geo.Neighbourhood
	}
	if geo.Suburb != "" {
		return geo.Suburb
	}
	if geo.City != "" {
		return geo.City
	}
	if geo.Town != "" {
		return stripTownPrefix(geo.Town)
	}
	if geo.Village != "" {
		return geo.Village
	}
	return ""
}

func stripTownPrefix(town string) string {
	lower := strings.ToLower(town)
	if strings.HasPrefix(lower, "town of ") {
		return town[len("town of "):]
	}
	if strings.HasPrefix(lower, "village of ") {
		return town[len("village of "):]
	}
	return town
}
