package listing

import (
	"context"
	"log"
	"net/http"
	"time"

	"prewalk_engine/models"
)

// Resolver walks the strategy chain in order and returns the first
// candidate that survives validation. A strategy that errors is logged and
// skipped; running out of strategies is a miss, not an error.
type Resolver struct {
	strategies []Strategy
}

func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// NewDefaultResolver wires the production chain: paid search (when keyed),
// catalog site search, web search, constructed URL. A nil client gets a
// default one.
func NewDefaultResolver(serpAPIKey string, client *http.Client) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	web := NewWebSearchStrategy(client)
	return NewResolver(
		NewSerpAPIStrategy(serpAPIKey, client),
		NewSiteSearchStrategy(client),
		web,
		NewConstructStrategy(web),
	)
}

// Resolve finds a validated detail URL for the address. Returns nil when
// every strategy comes up empty.
func (r *Resolver) Resolve(ctx context.Context, addr models.Address) *models.ListingCandidate {
	for _, s := range r.strategies {
		candidates, err := s.Attempt(ctx, addr)
		if err != nil {
			log.Printf("Warning: %s strategy unavailable: %v", s.Name(), err)
		}

		for _, c := range candidates {
			if reason := ValidateCandidate(addr, c.URL); reason != "" {
				c.RejectedBy = reason
				log.Printf("Warning: %s candidate rejected (%s): %s", c.Strategy, reason, c.URL)
				continue
			}
			c.Accepted = true
			if c.ListingID == "" {
				c.ListingID = ExtractListingID(c.URL)
			}
			return c
		}
	}
	return nil
}
