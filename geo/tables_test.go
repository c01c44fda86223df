package geo

import (
	"testing"

	"prewalk_engine/address"
)

func loadTestTables(t *testing.T) *Tables {
	t.Helper()
	tables, err := LoadTables()
	if err != nil {
		t.Fatalf("loading tables: %v", err)
	}
	return tables
}

func TestZIPFor_ExplicitZIP(t *testing.T) {
	tables := loadTestTables(t)

	addr := address.Normalize("1 Main Street, Flushing, NY 11354")
	if zip := tables.ZIPFor(addr); zip != "11354" {
		t.Fatalf("expected 11354, got %q", zip)
	}
}

func TestZIPFor_ManhattanCrossStreet(t *testing.T) {
	tables := loadTestTables(t)

	cases := []struct {
		in  string
		zip string
	}{
		{"305 East 24th Street", "10010"},
		{"510 E. 86th St.", "10028"},
		{"350 West 42nd Street", "10036"},
		{"12 West 72nd Street", "10023"},
	}
	for _, tc := range cases {
		addr := address.Normalize(tc.in)
		if zip := tables.ZIPFor(addr); zip != tc.zip {
			t.Fatalf("%q: expected %s, got %q", tc.in, tc.zip, zip)
		}
	}
}

func TestZIPFor_HighHouseNumberSkipsManhattan(t *testing.T) {
	tables := loadTestTables(t)

	// House numbers at 800 and above on numbered streets are not
	// Manhattan; the cross-street table must not claim them.
	addr := address.Normalize("2260 East 29th Street")
	if zip := tables.ZIPFor(addr); zip != "" {
		t.Fatalf("expected no ZIP for high house number, got %q", zip)
	}
}

func TestZIPFor_NamedStreetRanges(t *testing.T) {
	tables := loadTestTables(t)

	cases := []struct {
		in  string
		zip string
	}{
		{"25 Broadway", "10006"},
		{"2000 Broadway", "10023"},
		{"740 Park Avenue", "10021"},
		{"801 Brickell Avenue", "33131"},
	}
	for _, tc := range cases {
		addr := address.Normalize(tc.in)
		if zip := tables.ZIPFor(addr); zip != tc.zip {
			t.Fatalf("%q: expected %s, got %q", tc.in, tc.zip, zip)
		}
	}
}

func TestZIPFor_HouseNumberPastRangesTakesLast(t *testing.T) {
	tables := loadTestTables(t)

	addr := address.Normalize("2600 Broadway")
	if zip := tables.ZIPFor(addr); zip != "10023" {
		t.Fatalf("expected last Broadway range 10023, got %q", zip)
	}
}

func TestZIPFor_BrooklynLookups(t *testing.T) {
	tables := loadTestTables(t)

	cases := []struct {
		in  string
		zip string
	}{
		{"123 Dean Street, Brooklyn", "11217"},
		{"394 15th Street", "11215"},
		{"161 North 7th Street", "11211"},
		{"1402 Avenue R, Brooklyn", "11229"},
	}
	for _, tc := range cases {
		addr := address.Normalize(tc.in)
		if zip := tables.ZIPFor(addr); zip != tc.zip {
			t.Fatalf("%q: expected %s, got %q", tc.in, tc.zip, zip)
		}
	}
}

func TestZIPFor_BaseNameFallback(t *testing.T) {
	tables := loadTestTables(t)

	addr := address.Normalize("68 Bradhurst")
	if zip := tables.ZIPFor(addr); zip != "10039" {
		t.Fatalf("expected 10039 via base-name match, got %q", zip)
	}
}

func TestNeighborhoodFromStreet(t *testing.T) {
	tables := loadTestTables(t)

	cases := []struct {
		in   string
		hood string
	}{
		{"123 East 5th Street", "East Village"},
		{"200 5th Avenue", "Flatiron"},
		{"61 Irving Place", "Gramercy Park"},
		{"305 East 24th Street", "Kips Bay"},
		{"2600 Broadway", "Upper West Side"},
	}
	for _, tc := range cases {
		addr := address.Normalize(tc.in)
		if hood := tables.NeighborhoodFromStreet(addr); hood != tc.hood {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.hood, hood)
		}
	}
}

func TestNeighborhoodForZIP(t *testing.T) {
	tables := loadTestTables(t)

	if hood, ok := tables.NeighborhoodForZIP("11215"); !ok || hood != "Park Slope" {
		t.Fatalf("expected Park Slope, got %q (ok=%v)", hood, ok)
	}
	if _, ok := tables.NeighborhoodForZIP("99999"); ok {
		t.Fatalf("unknown ZIP must not resolve")
	}
}
