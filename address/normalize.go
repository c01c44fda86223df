package address

import (
	"regexp"
	"strconv"
	"strings"

	"prewalk_engine/models"
)

var (
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	parenRegex      = regexp.MustCompile(`\s*\([^)]*\)`)

	// Unit extraction. The keyword patterns require a following identifier so
	// that words like "United" or "Eastern" are never mistaken for unit
	// markers.
	aptRegex   = regexp.MustCompile(`(?i)\s*,?\s*#?\s*\b(?:apt|apartment|suite|ste)\.?\s+#?\s*([a-zA-Z0-9/\-]+)\b`)
	unitRegex  = regexp.MustCompile(`(?i)\s+\bunit\s+([a-zA-Z0-9/\-]+)\b`)
	floorRegex = regexp.MustCompile(`(?i)\s+\b(?:fl|floor)\.?\s*(\d{1,3})\b`)
	hashRegex  = regexp.MustCompile(`\s*,?\s*#([a-zA-Z0-9/\-]+)\b`)

	zipRegex   = regexp.MustCompile(`\b(\d{5})\b`)
	crossRegex = regexp.MustCompile(`^(\d+)\s+(east|west|north|south)\s+(\d+)(?:st|nd|rd|th)?\b`)
	namedRegex = regexp.MustCompile(`^(\d+)\s+([a-z0-9][a-z0-9 ]*[a-z0-9])$`)
)

// Street-type abbreviations expanded only after a house-number-plus-word
// pattern. "ct" is deliberately absent: it collides with Connecticut.
var streetTypeExpansions = map[string]string{
	"st":   "street",
	"ave":  "avenue",
	"rd":   "road",
	"pl":   "place",
	"blvd": "boulevard",
	"pkwy": "parkway",
	"dr":   "drive",
	"ter":  "terrace",
}

var directionExpansions = map[string]string{
	"e": "east",
	"w": "west",
	"n": "north",
	"s": "south",
}

var ordinalWords = map[string]string{
	"first":    "1st",
	"second":   "2nd",
	"third":    "3rd",
	"fourth":   "4th",
	"fifth":    "5th",
	"sixth":    "6th",
	"seventh":  "7th",
	"eighth":   "8th",
	"ninth":    "9th",
	"tenth":    "10th",
	"eleventh": "11th",
	"twelfth":  "12th",
}

var stateTokens = map[string]bool{
	"ny": true,
	"nj": true,
	"ct": true,
	"fl": true,
}

// Normalize canonicalizes a free-text address. It is pure and idempotent:
// normalizing an already-normalized string returns it unchanged. Unparsable
// input yields a best-effort normalized string with empty parsed fields.
func Normalize(raw string) models.Address {
	addr := models.Address{Raw: raw}

	s := multiSpaceRegex.ReplaceAllString(strings.TrimSpace(raw), " ")
	s = parenRegex.ReplaceAllString(s, "")

	s, unit := extractUnit(s)
	addr.Unit = strings.ToUpper(unit)

	s = strings.ToLower(s)

	// Comma structure carries the street/city/state split; capture it before
	// commas are normalized away.
	parts := splitParts(s)

	addr.Normalized = normalizeTokens(strings.ReplaceAll(s, ",", " "))
	if len(parts) > 0 {
		addr.Street = normalizeTokens(parts[0])
	}

	parseLocality(&addr, parts)
	parseStreet(&addr)

	return addr
}

// SameBuilding reports whether two raw addresses share a street-level
// address ignoring unit. The comparison is symmetric.
func SameBuilding(a, b string) bool {
	na := Normalize(a)
	nb := Normalize(b)
	if na.Street == "" || nb.Street == "" {
		return false
	}
	return na.Street == nb.Street
}

func extractUnit(s string) (string, string) {
	for _, re := range []*regexp.Regexp{aptRegex, unitRegex, floorRegex, hashRegex} {
		if m := re.FindStringSubmatch(s); m != nil {
			return strings.TrimSpace(re.ReplaceAllString(s, "")), m[1]
		}
	}
	return s, ""
}

func splitParts(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// normalizeTokens runs the per-token passes: trailing-period stripping,
// compass-direction expansion, ordinal-word conversion, and street-type
// abbreviation expansion.
func normalizeTokens(s string) string {
	tokens := strings.Fields(s)
	houseNumberLead := len(tokens) > 0 && isDigits(tokens[0])

	for i, tok := range tokens {
		tok = strings.TrimRight(tok, ".")

		if full, ok := directionExpansions[tok]; ok && i+1 < len(tokens) && startsWithDigit(tokens[i+1]) {
			tok = full
		}
		if num, ok := ordinalWords[tok]; ok {
			tok = num
		}
		if full, ok := streetTypeExpansions[tok]; ok && houseNumberLead && i >= 2 {
			tok = full
		}
		tokens[i] = tok
	}

	return strings.Join(tokens, " ")
}

func parseLocality(addr *models.Address, parts []string) {
	if len(parts) >= 2 {
		last := strings.Fields(normalizeTokens(parts[len(parts)-1]))
		rest := last
		if len(last) > 0 && stateTokens[last[0]] {
			addr.State = strings.ToUpper(last[0])
			rest = last[1:]
			if len(parts) >= 3 {
				addr.City = normalizeTokens(parts[len(parts)-2])
			}
		} else {
			// Single trailing part like "brooklyn ny 11215".
			for i, tok := range last {
				if stateTokens[tok] && i > 0 {
					addr.State = strings.ToUpper(tok)
					addr.City = strings.Join(last[:i], " ")
					rest = last[i+1:]
					break
				}
			}
			if addr.State == "" && len(parts) >= 3 {
				addr.City = normalizeTokens(parts[len(parts)-2])
			}
		}
		for _, tok := range rest {
			if len(tok) == 5 && isDigits(tok) {
				addr.ZIP = tok
			}
		}
	}

	if addr.ZIP == "" {
		// A trailing five-digit token anywhere in the text; never the house
		// number itself.
		matches := zipRegex.FindAllStringIndex(addr.Normalized, -1)
		for _, m := range matches {
			if m[0] > 0 {
				addr.ZIP = addr.Normalized[m[0]:m[1]]
			}
		}
	}
}

func parseStreet(addr *models.Address) {
	street := addr.Street
	if street == "" {
		return
	}

	if m := crossRegex.FindStringSubmatch(street); m != nil {
		addr.StreetNumber = m[1]
		addr.Direction = m[2]
		addr.CrossStreet, _ = strconv.Atoi(m[3])
		return
	}

	if m := namedRegex.FindStringSubmatch(street); m != nil {
		addr.StreetNumber = m[1]
		addr.StreetName = strings.TrimSpace(m[2])
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
