package models

import "time"

// CachedDeal is one CRM deal record as held in the snapshot. Deals are
// immutable once cached; a refresh replaces the whole set.
type CachedDeal struct {
	Name         string  `json:"deal_name"` // address-bearing deal title
	Amount       float64 `json:"amount"`
	Stage        string  `json:"stage"`
	ContactName  string  `json:"contact_name"`
	ClosingDate  string  `json:"closing_date"`
	Neighborhood *string `json:"neighborhood"` // assigned at enrichment time, nil when unresolved
}

// DealSnapshot is the on-disk deal cache: the full deal set plus the
// timestamp its TTL is measured against.
type DealSnapshot struct {
	Timestamp time.Time    `json:"timestamp"`
	Count     int          `json:"count"`
	Deals     []CachedDeal `json:"deals"`
}

// NeighboringProject is one match returned by a neighboring-projects query.
type NeighboringProject struct {
	DealName       string  `json:"deal_name"`
	Address        string  `json:"address"`
	Amount         float64 `json:"amount"`
	Stage          string  `json:"stage"`
	IsSameBuilding bool    `json:"is_same_building"`
	Neighborhood   string  `json:"neighborhood"`
	ContactName    string  `json:"contact_name"`
	ClosingDate    string  `json:"closing_date"`
}

// SnapshotStats describes the state of the deal cache.
type SnapshotStats struct {
	Exists           bool      `json:"exists"`
	Valid            bool      `json:"valid"`
	Count            int       `json:"count"`
	WithNeighborhood int       `json:"deals_with_neighborhood"`
	AgeHours         float64   `json:"age_hours"`
	LastUpdated      time.Time `json:"last_updated"`
}
