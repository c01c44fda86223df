package listing

import (
	"regexp"
	"strings"
)

var (
	hashUnitRegex  = regexp.MustCompile(`\s*#\w+`)
	wordUnitRegex  = regexp.MustCompile(`(?i)\s*,?\s*(?:apt|apartment|unit)\s*\w+`)
	trailingRegex  = regexp.MustCompile(`,?\s*#\s*[a-zA-Z0-9]+`)
	directionAbbrs = []struct{ full, abbr string }{
		{"West", "W"}, {"East", "E"}, {"North", "N"}, {"South", "S"},
	}
	suffixAbbrs = map[string]string{
		"Street":  "St",
		"Avenue":  "Ave",
		"Place":   "Pl",
		"Road":    "Rd",
		"Court":   "Ct",
		"Parkway": "Pkwy",
	}
)

// StripUnit removes apartment designators so search slugs and queries hit
// the building rather than one unit.
func StripUnit(addr string) string {
	s := wordUnitRegex.ReplaceAllString(addr, "")
	s = trailingRegex.ReplaceAllString(s, "")
	s = hashUnitRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Slugify converts "16 West 21st Street, New York, NY 10010" into the
// catalog's URL slug form "16-W-21st-St_New-York_NY_10010". Returns ""
// when the address lacks the street, city, state-zip parts the slug needs.
func Slugify(addr string) string {
	var parts []string
	for _, p := range strings.Split(addr, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 3 {
		return ""
	}

	street := StripUnit(parts[0])
	tokens := strings.Fields(street)
	if len(tokens) == 0 {
		return ""
	}
	// The direction word sits after the house number, so match tokens
	// rather than the line prefix.
direction:
	for i, tok := range tokens {
		for _, d := range directionAbbrs {
			if strings.EqualFold(tok, d.full) {
				tokens[i] = d.abbr
				break direction
			}
		}
	}
	if abbr, ok := suffixAbbrs[titleCase(tokens[len(tokens)-1])]; ok {
		tokens[len(tokens)-1] = abbr
	}
	streetSlug := strings.Join(tokens, "-")

	city := parts[len(parts)-2]
	switch strings.ToLower(city) {
	case "manhattan", "new york", "new york city":
		city = "New-York"
	default:
		city = strings.ReplaceAll(city, " ", "-")
	}

	stateZip := strings.Fields(parts[len(parts)-1])
	if len(stateZip) < 2 {
		return ""
	}

	return streetSlug + "_" + city + "_" + stateZip[0] + "_" + stateZip[1]
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
