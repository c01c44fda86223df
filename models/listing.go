package models

// Strategy tags identifying which resolver produced a candidate.
const (
	StrategyPaidSearch = "paid_search"
	StrategySiteSearch = "site_search"
	StrategyWebSearch  = "web_search"
	StrategyConstruct  = "constructed_url"
)

// ListingCandidate is one proposed catalog match for an address. Candidates
// are created per strategy attempt and discarded immediately when validation
// rejects them; the first validated candidate becomes the resolver's output.
type ListingCandidate struct {
	Strategy   string `json:"strategy"`
	URL        string `json:"url"`
	ListingID  string `json:"listing_id"` // catalog numeric identifier, digits only
	Accepted   bool   `json:"accepted"`
	RejectedBy string `json:"rejected_by,omitempty"` // mismatch reason when not accepted
}

// PropertyDetails holds the structured listing attributes returned by the
// catalog data API. String fields default to "Information not available"
// downstream; the engine leaves them empty here.
type PropertyDetails struct {
	Address       string  `json:"address"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	ZIP           string  `json:"zip"`
	Price         int64   `json:"price"`
	LastSoldPrice int64   `json:"last_sold_price"`
	LastSoldDate  string  `json:"last_sold_date"`
	Bedrooms      string  `json:"bedrooms"`
	Bathrooms     string  `json:"bathrooms"`
	Rooms         string  `json:"rooms"`
	SqFt          int     `json:"sqft"`
	YearBuilt     int     `json:"year_built"`
	HOAFee        string  `json:"hoa_fee"`
	PropertyType  string  `json:"property_type"`
	Neighborhood  string  `json:"neighborhood"`
	ListingURL    string  `json:"listing_url"` // present when the API already knows the canonical URL
	Photos        []Photo `json:"photos"`
	FloorPlans    []Photo `json:"floor_plans"`
}

// Photo is a single listing image or floor plan.
type Photo struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}
