package listing

import (
	"context"

	"prewalk_engine/models"
)

// IDFinder locates a bare listing ID for an address when no confirmed
// detail URL exists.
type IDFinder interface {
	FindListingID(ctx context.Context, addr models.Address) (string, error)
}

// ConstructStrategy is the last resort: find a listing ID, then assemble
// the canonical detail URL from the address slug and the ID. The slug may
// not match the catalog's exact spelling, but the ID makes the URL land.
type ConstructStrategy struct {
	baseURL string
	ids     IDFinder
}

func NewConstructStrategy(ids IDFinder) *ConstructStrategy {
	return &ConstructStrategy{
		baseURL: "https://www.realtor.com",
		ids:     ids,
	}
}

func (c *ConstructStrategy) Name() string { return models.StrategyConstruct }

func (c *ConstructStrategy) Attempt(ctx context.Context, addr models.Address) ([]*models.ListingCandidate, error) {
	slug := Slugify(addr.Raw)
	if slug == "" {
		return nil, nil
	}

	id, err := c.ids.FindListingID(ctx, addr)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}

	return []*models.ListingCandidate{{
		Strategy:  c.Name(),
		URL:       c.baseURL + detailPathMarker + slug + "_M" + id,
		ListingID: id,
	}}, nil
}
