package geo

import (
	"embed"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"prewalk_engine/models"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Manhattan house numbers on numbered cross streets stay below this;
// anything higher is another borough with the same street number.
const maxManhattanHouseNumber = 800

type sideRange struct {
	Side         string `yaml:"side"`
	Lo           int    `yaml:"lo"`
	Hi           int    `yaml:"hi"`
	ZIP          string `yaml:"zip"`
	Neighborhood string `yaml:"neighborhood"`
}

type houseRange struct {
	Lo           int    `yaml:"lo"`
	Hi           int    `yaml:"hi"`
	ZIP          string `yaml:"zip"`
	Neighborhood string `yaml:"neighborhood"`
}

type namedStreet struct {
	Name   string       `yaml:"name"`
	Ranges []houseRange `yaml:"ranges"`
}

type manhattanTables struct {
	ZIPRanges          []sideRange `yaml:"zip_ranges"`
	NeighborhoodRanges []sideRange `yaml:"neighborhood_ranges"`
	UptownFallbacks    []sideRange `yaml:"uptown_fallbacks"`
	BronxFallbacks     []sideRange `yaml:"bronx_fallbacks"`
}

type namedTables struct {
	ZIPStreets          []namedStreet     `yaml:"zip_streets"`
	NeighborhoodPlain   map[string]string `yaml:"neighborhood_plain"`
	NeighborhoodStreets []namedStreet     `yaml:"neighborhood_streets"`
}

type brooklynTables struct {
	NamedStreets    map[string]string `yaml:"named_streets"`
	NumberedRanges  []houseRange      `yaml:"numbered_street_ranges"`
	LetteredAvenues map[string]string `yaml:"lettered_avenues"`
}

// Tables holds the embedded street and ZIP lookup data. All lookups are
// deterministic: list-backed tables scan in file order, map-backed ones in
// sorted key order.
type Tables struct {
	zipNeighborhoods map[string]string
	manhattan        manhattanTables
	named            namedTables
	brooklyn         brooklynTables

	brooklynNames []string
	plainNames    []string
	patterns      map[string]*regexp.Regexp
}

var (
	crossStreetRegex  = regexp.MustCompile(`(\d+)\s+(east|west)\s+(\d+)(?:st|nd|rd|th)?\b`)
	northStreetRegex  = regexp.MustCompile(`(\d+)\s+north\s+(\d+)(?:st|nd|rd|th)\b`)
	bareNumberedRegex = regexp.MustCompile(`(\d+)\s+(\d+)(?:st|nd|rd|th)(?:\s+(?:street|st))?`)
	bareNumberedEnd   = regexp.MustCompile(`(\d+)\s+(\d+)(?:st|nd|rd|th)(?:\s+(?:street|st))?$`)
	letteredAveRegex  = regexp.MustCompile(`\bave(?:nue)?\s+([a-z])\b`)
	houseSuffixRegex  = regexp.MustCompile(`^(\d+)[a-z]\b`)
	centralParkSRegex = regexp.MustCompile(`\bcentral park s\b`)
)

func LoadTables() (*Tables, error) {
	t := &Tables{patterns: make(map[string]*regexp.Regexp)}

	if err := loadYAML("data/zip_neighborhoods.yaml", &t.zipNeighborhoods); err != nil {
		return nil, err
	}
	if err := loadYAML("data/manhattan_streets.yaml", &t.manhattan); err != nil {
		return nil, err
	}
	if err := loadYAML("data/named_streets.yaml", &t.named); err != nil {
		return nil, err
	}
	if err := loadYAML("data/brooklyn.yaml", &t.brooklyn); err != nil {
		return nil, err
	}

	for name := range t.brooklyn.NamedStreets {
		t.brooklynNames = append(t.brooklynNames, name)
	}
	sort.Strings(t.brooklynNames)
	for name := range t.named.NeighborhoodPlain {
		t.plainNames = append(t.plainNames, name)
	}
	sort.Strings(t.plainNames)

	for _, s := range t.named.ZIPStreets {
		t.patterns[s.Name] = numberedPattern(s.Name)
	}
	for _, s := range t.named.NeighborhoodStreets {
		if _, ok := t.patterns[s.Name]; !ok {
			t.patterns[s.Name] = numberedPattern(s.Name)
		}
	}

	return t, nil
}

func loadYAML(path string, out any) error {
	data, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func numberedPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(\d+)\s+` + regexp.QuoteMeta(name) + `\b`)
}

// NeighborhoodForZIP returns the label for a known ZIP.
func (t *Tables) NeighborhoodForZIP(zip string) (string, bool) {
	hood, ok := t.zipNeighborhoods[zip]
	return hood, ok
}

// ZIPFor derives a ZIP code for a normalized address from the lookup
// tables. Returns "" when no table covers the address.
func (t *Tables) ZIPFor(addr models.Address) string {
	if _, ok := t.zipNeighborhoods[addr.ZIP]; ok {
		return addr.ZIP
	}

	key := lookupKey(addr.Normalized)
	if key == "" {
		return ""
	}

	if m := letteredAveRegex.FindStringSubmatch(key); m != nil {
		if z, ok := t.brooklyn.LetteredAvenues[m[1]]; ok {
			return z
		}
	}

	if m := crossStreetRegex.FindStringSubmatch(key); m != nil {
		house, _ := strconv.Atoi(m[1])
		street, _ := strconv.Atoi(m[3])
		if house < maxManhattanHouseNumber {
			if z := zipFromSideRanges(t.manhattan.ZIPRanges, m[2], street); z != "" {
				return z
			}
			if z := zipFromSideRanges(t.manhattan.UptownFallbacks, m[2], street); z != "" {
				return z
			}
		}
	}

	for _, name := range t.brooklynNames {
		if containsStreet(key, name) {
			return t.brooklyn.NamedStreets[name]
		}
	}

	for _, s := range t.named.ZIPStreets {
		if m := t.patterns[s.Name].FindStringSubmatch(key); m != nil {
			house, _ := strconv.Atoi(m[1])
			return zipFromHouseRanges(s.Ranges, house)
		}
	}

	// Streets that pin a single ZIP match without a house number.
	for _, s := range t.named.ZIPStreets {
		if len(s.Ranges) == 1 && strings.Contains(key, s.Name) {
			return s.Ranges[0].ZIP
		}
	}

	if m := bareNumberedRegex.FindStringSubmatch(key); m != nil {
		street, _ := strconv.Atoi(m[2])
		for _, r := range t.brooklyn.NumberedRanges {
			if r.Lo <= street && street <= r.Hi {
				return r.ZIP
			}
		}
	}

	if northStreetRegex.MatchString(key) {
		return "11211" // Williamsburg north-numbered grid
	}

	if m := bareNumberedEnd.FindStringSubmatch(key); m != nil {
		street, _ := strconv.Atoi(m[2])
		switch {
		case street >= 130 && street <= 175:
			return "10451"
		case street >= 176 && street <= 240:
			return "10453"
		}
	}

	if m := crossStreetRegex.FindStringSubmatch(key); m != nil {
		street, _ := strconv.Atoi(m[3])
		if street > 220 {
			if z := zipFromSideRanges(t.manhattan.BronxFallbacks, m[2], street); z != "" {
				return z
			}
		}
	}

	return t.baseNameZIP(key)
}

// baseNameZIP retries the named streets with their type suffix stripped,
// so "68 bradhurst" still lands on Bradhurst Avenue.
func (t *Tables) baseNameZIP(key string) string {
	for _, s := range t.named.ZIPStreets {
		base := stripStreetType(s.Name)
		if len(base) < 4 || base == s.Name {
			continue
		}
		re := regexp.MustCompile(`(\d+)\s+` + regexp.QuoteMeta(base) + `\b`)
		if m := re.FindStringSubmatch(key); m != nil {
			house, _ := strconv.Atoi(m[1])
			return zipFromHouseRanges(s.Ranges, house)
		}
	}
	return ""
}

// NeighborhoodFromStreet resolves a neighborhood straight from the street
// tables, bypassing ZIP granularity. Returns "" when nothing matches.
func (t *Tables) NeighborhoodFromStreet(addr models.Address) string {
	key := lookupKey(addr.Normalized)
	if key == "" {
		return ""
	}

	for _, name := range t.plainNames {
		if strings.Contains(key, name) {
			return t.named.NeighborhoodPlain[name]
		}
	}

	for _, s := range t.named.NeighborhoodStreets {
		if m := t.patterns[s.Name].FindStringSubmatch(key); m != nil {
			house, _ := strconv.Atoi(m[1])
			return hoodFromHouseRanges(s.Ranges, house)
		}
	}

	if m := crossStreetRegex.FindStringSubmatch(key); m != nil {
		house, _ := strconv.Atoi(m[1])
		street, _ := strconv.Atoi(m[3])
		if house < maxManhattanHouseNumber {
			for _, r := range t.manhattan.NeighborhoodRanges {
				if r.Side == m[2] && r.Lo <= street && street <= r.Hi {
					return r.Neighborhood
				}
			}
		}
	}

	return ""
}

func zipFromSideRanges(ranges []sideRange, side string, street int) string {
	for _, r := range ranges {
		if r.Side == side && r.Lo <= street && street <= r.Hi {
			return r.ZIP
		}
	}
	return ""
}

// House ranges are half-open [lo, hi); a house number past every range
// takes the last one.
func zipFromHouseRanges(ranges []houseRange, house int) string {
	for _, r := range ranges {
		if r.Lo <= house && house < r.Hi {
			return r.ZIP
		}
	}
	if len(ranges) > 0 {
		return ranges[len(ranges)-1].ZIP
	}
	return ""
}

func hoodFromHouseRanges(ranges []houseRange, house int) string {
	for _, r := range ranges {
		if r.Lo <= house && house < r.Hi {
			return r.Neighborhood
		}
	}
	if len(ranges) > 0 {
		return ranges[len(ranges)-1].Neighborhood
	}
	return ""
}

// containsStreet matches a named street along with its common abbreviated
// type ("dean street" also matches "dean st").
func containsStreet(key, name string) bool {
	if strings.Contains(key, name) {
		return true
	}
	for full, abbr := range map[string]string{" street": " st", " avenue": " ave", " place": " pl"} {
		if strings.HasSuffix(name, full) {
			short := strings.TrimSuffix(name, full) + abbr
			if strings.Contains(key, short) {
				return true
			}
		}
	}
	return false
}

func stripStreetType(name string) string {
	for _, suffix := range []string{" street", " avenue", " place", " boulevard", " drive", " road"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// lookupKey applies the last-mile spelling fixes the tables expect on top
// of normalization: trailing letters on house numbers, "central park s"
// and a bare "west end".
func lookupKey(normalized string) string {
	key := houseSuffixRegex.ReplaceAllString(normalized, "$1")
	key = centralParkSRegex.ReplaceAllString(key, "central park south")
	if strings.Contains(key, "west end") && !strings.Contains(key, "west end avenue") {
		key = strings.ReplaceAll(key, "west end", "west end avenue")
	}
	return key
}
