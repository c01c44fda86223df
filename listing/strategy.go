package listing

import (
	"context"

	"prewalk_engine/models"
)

// Strategy is one way of locating catalog detail URLs for an address.
// Attempt returns candidates in preference order; an empty slice means the
// strategy ran but found nothing, an error means it was unavailable.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, addr models.Address) ([]*models.ListingCandidate, error)
}

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
