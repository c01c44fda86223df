package services

import (
	"context"
	"log"

	"prewalk_engine/address"
	"prewalk_engine/models"
)

// Unavailable is the placeholder rendered for any field that could not
// be resolved.
const Unavailable = "Information not available"

// ListingFinder runs the listing strategy chain for an address.
type ListingFinder interface {
	Resolve(ctx context.Context, addr models.Address) *models.ListingCandidate
}

// CatalogAPI fetches property details and photos by listing ID.
type CatalogAPI interface {
	PropertyDetails(ctx context.Context, listingID string) (*models.PropertyDetails, error)
	PropertyPhotos(ctx context.Context, listingID string) (images, floorPlans []models.Photo, err error)
}

// NeighborhoodResolver derives a neighborhood for a raw address.
type NeighborhoodResolver interface {
	Resolve(ctx context.Context, rawAddr string, allowLive bool) (neighborhood, source string)
}

// ProjectFinder queries the deal snapshot for neighboring projects.
type ProjectFinder interface {
	FindNeighboring(targetAddress, targetNeighborhood string, sameBuildingOnly bool) []models.NeighboringProject
}

// RunRecorder persists resolution runs. Recording failures are logged,
// never fatal.
type RunRecorder interface {
	CreateRun(run *models.ResolutionRun) error
	FinishRun(run *models.ResolutionRun) error
}

// Report is everything resolved for one address.
type Report struct {
	Address      models.Address
	ListingID    string
	ListingURL   string
	Strategy     string
	Details      *models.PropertyDetails
	Photos       []models.Photo
	FloorPlans   []models.Photo
	Neighborhood string
	HoodSource   string
	Neighbors    []models.NeighboringProject
}

// Reporter assembles report data for a single address. Every lookup
// degrades to placeholders on failure; only the inputs themselves can
// make it error.
type Reporter struct {
	listings       ListingFinder
	catalog        CatalogAPI
	geo            NeighborhoodResolver
	projects       ProjectFinder
	runs           RunRecorder
	geocodeEnabled bool
}

func NewReporter(listings ListingFinder, cat CatalogAPI, geoRes NeighborhoodResolver, proj ProjectFinder, runs RunRecorder, geocodeEnabled bool) *Reporter {
	return &Reporter{
		listings:       listings,
		catalog:        cat,
		geo:            geoRes,
		projects:       proj,
		runs:           runs,
		geocodeEnabled: geocodeEnabled,
	}
}

// ResolveProperty resolves one address end to end: listing identity,
// catalog details and photos, neighborhood, and neighboring projects.
func (r *Reporter) ResolveProperty(ctx context.Context, rawAddress string) *Report {
	addr := address.Normalize(rawAddress)
	report := &Report{Address: addr}

	run := &models.ResolutionRun{Address: rawAddress}
	if r.runs != nil {
		if err := r.runs.CreateRun(run); err != nil {
			log.Printf("Warning: recording resolution run: %v", err)
		}
	}

	if r.listings != nil {
		if cand := r.listings.Resolve(ctx, addr); cand != nil {
			report.ListingID = cand.ListingID
			report.ListingURL = cand.URL
			report.Strategy = cand.Strategy
		}
	}

	if report.ListingID != "" && r.catalog != nil {
		details, err := r.catalog.PropertyDetails(ctx, report.ListingID)
		if err != nil {
			log.Printf("Warning: property details for %s: %v", report.ListingID, err)
		} else {
			report.Details = details
			// The catalog's own URL is authoritative when present.
			if details.ListingURL != "" {
				report.ListingURL = details.ListingURL
			}
		}

		images, plans, err := r.catalog.PropertyPhotos(ctx, report.ListingID)
		if err != nil {
			log.Printf("Warning: property photos for %s: %v", report.ListingID, err)
		} else {
			report.Photos = images
			report.FloorPlans = plans
		}
	}

	report.Neighborhood, report.HoodSource = r.resolveNeighborhood(ctx, rawAddress, report.Details)

	if r.projects != nil {
		report.Neighbors = r.projects.FindNeighboring(rawAddress, report.Neighborhood, false)
	}

	if r.runs != nil {
		run.Status = models.RunStatusCompleted
		run.ListingID = report.ListingID
		run.ListingURL = report.ListingURL
		run.Strategy = report.Strategy
		run.Neighborhood = report.Neighborhood
		run.NeighborsHit = len(report.Neighbors)
		if err := r.runs.FinishRun(run); err != nil {
			log.Printf("Warning: finishing resolution run: %v", err)
		}
	}

	return report
}

// resolveNeighborhood prefers the catalog's answer and falls back to the
// table/geocode resolver.
func (r *Reporter) resolveNeighborhood(ctx context.Context, rawAddress string, details *models.PropertyDetails) (string, string) {
	if details != nil && details.Neighborhood != "" && details.Neighborhood != Unavailable {
		return details.Neighborhood, "catalog"
	}
	if r.geo == nil {
		return "", ""
	}
	return r.geo.Resolve(ctx, rawAddress, r.geocodeEnabled)
}

// OrUnavailable substitutes the placeholder for empty values at render
// time.
func OrUnavailable(v string) string {
	if v == "" {
		return Unavailable
	}
	return v
}
