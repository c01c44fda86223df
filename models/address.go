package models

// Address is the canonical form of a free-text property address.
// Normalized is a pure function of Raw: feeding Normalized back through
// the normalizer returns it unchanged.
type Address struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`

	// Street is the normalized street line only (house number + street,
	// no unit, no city/state/zip). Two addresses in the same building
	// share an identical Street.
	Street string `json:"street"`

	StreetNumber string `json:"street_number"` // house number, digits only
	Direction    string `json:"direction"`     // east, west, north, south or ""
	CrossStreet  int    `json:"cross_street"`  // numbered cross street (21 for "West 21st"), 0 if none
	StreetName   string `json:"street_name"`   // named street/avenue, "" for numbered cross streets
	Unit         string `json:"unit"`          // apartment/suite/floor token, "" if none
	City         string `json:"city"`
	State        string `json:"state"`
	ZIP          string `json:"zip"`
}

// HasUnit reports whether the original text carried a unit designator.
func (a *Address) HasUnit() bool {
	return a.Unit != ""
}
