package models

// Neighborhood resolution sources, in priority order.
const (
	SourceDirect       = "direct"
	SourceZIP          = "zip"
	SourceGeocodeCache = "geocode-cache"
	SourceGeocodeLive  = "geocode-live"
)

// NeighborhoodAssignment records how a normalized address resolved to a
// neighborhood label. Assignments are write-once per cache state;
// re-resolution overwrites rather than merges.
type NeighborhoodAssignment struct {
	AddressKey   string `json:"address_key"`
	Neighborhood string `json:"neighborhood"`
	Source       string `json:"source"`
}

// GeocodeResult is the structured best-guess returned by the geocoding
// service for a free-text query. A cached nil result means "looked up, no
// usable answer" and suppresses further network calls for that key.
type GeocodeResult struct {
	Postcode      string `json:"postcode"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	State         string `json:"state"`
	DisplayName   string `json:"display_name"`
}
