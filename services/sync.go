package services

import (
	"context"
	"fmt"
	"log"

	"prewalk_engine/models"
)

// DealSource fetches the full deal set from the CRM.
type DealSource interface {
	FetchDeals(ctx context.Context) ([]models.CachedDeal, error)
}

// SnapshotWriter persists the refreshed deal set.
type SnapshotWriter interface {
	Save(deals []models.CachedDeal) error
}

// Syncer refreshes the deal snapshot: fetch every deal, enrich each one
// with a neighborhood, and replace the snapshot on disk. Fetch and write
// failures are hard errors; a deal that cannot be placed just stays
// without a neighborhood.
type Syncer struct {
	crm            DealSource
	geo            NeighborhoodResolver
	snapshot       SnapshotWriter
	geocodeEnabled bool
}

func NewSyncer(crm DealSource, geoRes NeighborhoodResolver, snapshot SnapshotWriter, geocodeEnabled bool) *Syncer {
	return &Syncer{crm: crm, geo: geoRes, snapshot: snapshot, geocodeEnabled: geocodeEnabled}
}

func (s *Syncer) RefreshSnapshot(ctx context.Context) error {
	deals, err := s.crm.FetchDeals(ctx)
	if err != nil {
		return fmt.Errorf("fetching deals: %w", err)
	}

	log.Printf("Enriching %d deals with neighborhoods", len(deals))
	enriched := 0
	for i := range deals {
		if deals[i].Name == "" {
			continue
		}
		hood, _ := s.geo.Resolve(ctx, deals[i].Name, s.geocodeEnabled)
		if hood != "" {
			deals[i].Neighborhood = &hood
			enriched++
		}
		if (i+1)%50 == 0 {
			log.Printf("Enriched %d/%d deals", i+1, len(deals))
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	log.Printf("Neighborhoods assigned to %d/%d deals", enriched, len(deals))

	if err := s.snapshot.Save(deals); err != nil {
		return fmt.Errorf("saving deal snapshot: %w", err)
	}
	return nil
}
