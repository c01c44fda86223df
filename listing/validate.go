package listing

import (
	"regexp"
	"strings"

	"prewalk_engine/address"
	"prewalk_engine/models"
)

const detailPathMarker = "/realestateandhomes-detail/"

var (
	listingIDRegex = regexp.MustCompile(`_M([\d-]+)`)
	urlUnitRegex   = regexp.MustCompile(`(?i)(?:Apt|Unit)-([a-zA-Z0-9]+)`)
	digitsRegex    = regexp.MustCompile(`^\d+$`)
)

// Rejection reasons recorded on discarded candidates.
const (
	RejectStreetNumber = "street_number_mismatch"
	RejectCrossStreet  = "cross_street_mismatch"
	RejectUnit         = "unit_mismatch"
	RejectNotDetail    = "not_a_detail_url"
)

// ExtractListingID pulls the numeric listing ID out of a detail URL.
// Hyphenated forms like M48195-62808 collapse to plain digits. Returns ""
// when the URL carries no usable ID.
func ExtractListingID(url string) string {
	m := listingIDRegex.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	id := strings.ReplaceAll(m[1], "-", "")
	if !digitsRegex.MatchString(id) {
		return ""
	}
	return id
}

// ValidateCandidate checks a candidate detail URL against the requested
// address. Returns "" when the candidate is acceptable, otherwise the
// rejection reason. A candidate is rejected only on positive evidence of a
// mismatch; URLs whose slug cannot be parsed pass through.
func ValidateCandidate(want models.Address, candidateURL string) string {
	idx := strings.Index(candidateURL, detailPathMarker)
	if idx < 0 {
		return RejectNotDetail
	}

	slug := candidateURL[idx+len(detailPathMarker):]
	if cut := strings.Index(slug, "?"); cut >= 0 {
		slug = slug[:cut]
	}
	got := address.Normalize(slugText(slug))

	if want.StreetNumber != "" && got.StreetNumber != "" && want.StreetNumber != got.StreetNumber {
		return RejectStreetNumber
	}
	if want.CrossStreet != 0 && got.CrossStreet != 0 && want.CrossStreet != got.CrossStreet {
		return RejectCrossStreet
	}
	if want.Unit != "" {
		if urlUnit := unitFromURL(candidateURL); urlUnit != "" && !strings.EqualFold(urlUnit, want.Unit) {
			return RejectUnit
		}
	}
	return ""
}

func unitFromURL(url string) string {
	if m := urlUnitRegex.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

// slugText flattens a URL slug back into address-like text so it can run
// through the normalizer: "16-W-21st-St_New-York_NY_10010_M123" becomes
// "16 W 21st St New York NY 10010 M123".
func slugText(slug string) string {
	s := strings.ReplaceAll(slug, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return s
}
