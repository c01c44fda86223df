package projects

import (
	"log"
	"sort"
	"strings"

	"prewalk_engine/address"
	"prewalk_engine/models"
)

// unknownValue is the placeholder callers use when a field could not be
// resolved; it never counts as a real neighborhood.
const unknownValue = "Information not available"

// NeighborhoodFunc derives a neighborhood for an address without any
// network calls. Matching falls back to it when the caller has no
// neighborhood for the target address.
type NeighborhoodFunc func(rawAddress string) string

// Matcher answers neighboring-project queries against the snapshot.
type Matcher struct {
	store  *Store
	lookup NeighborhoodFunc
}

func NewMatcher(store *Store, lookup NeighborhoodFunc) *Matcher {
	return &Matcher{store: store, lookup: lookup}
}

// FindNeighboring returns snapshot deals that share a building or a
// neighborhood with the target address, same-building matches first and
// then by descending amount. With sameBuildingOnly set, neighborhood
// matches are dropped.
func (m *Matcher) FindNeighboring(targetAddress, targetNeighborhood string, sameBuildingOnly bool) []models.NeighboringProject {
	snap := m.store.Load()
	if snap == nil {
		log.Printf("Warning: no valid deal snapshot for neighboring-project query")
		return nil
	}

	if (targetNeighborhood == "" || targetNeighborhood == unknownValue) && m.lookup != nil {
		targetNeighborhood = m.lookup(targetAddress)
	}
	if targetNeighborhood == unknownValue {
		targetNeighborhood = ""
	}

	targetHood := strings.ToLower(strings.TrimSpace(targetNeighborhood))
	if targetHood == "" {
		log.Printf("Warning: could not determine neighborhood for %q", targetAddress)
	}

	targetStreet := address.Normalize(targetAddress).Street

	var matches []models.NeighboringProject
	for _, deal := range snap.Deals {
		if deal.Name == "" {
			continue
		}

		dealHood := ""
		if deal.Neighborhood != nil {
			dealHood = *deal.Neighborhood
		}

		sameBldg := targetStreet != "" && targetStreet == address.Normalize(deal.Name).Street
		sameHood := targetHood != "" && dealHood != "" &&
			targetHood == strings.ToLower(strings.TrimSpace(dealHood))

		if sameBuildingOnly && !sameBldg {
			continue
		}
		if !sameBldg && !sameHood {
			continue
		}

		matches = append(matches, models.NeighboringProject{
			DealName:       deal.Name,
			Address:        deal.Name,
			Amount:         deal.Amount,
			Stage:          stageOrUnknown(deal.Stage),
			IsSameBuilding: sameBldg,
			Neighborhood:   dealHood,
			ContactName:    deal.ContactName,
			ClosingDate:    deal.ClosingDate,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].IsSameBuilding != matches[j].IsSameBuilding {
			return matches[i].IsSameBuilding
		}
		return matches[i].Amount > matches[j].Amount
	})

	log.Printf("Found %d neighboring projects for %q (neighborhood: %s)",
		len(matches), targetAddress, targetNeighborhood)
	return matches
}

func stageOrUnknown(stage string) string {
	if stage == "" {
		return "Unknown"
	}
	return stage
}
