package listing

import (
	"testing"

	"prewalk_engine/address"
)

func TestExtractListingID(t *testing.T) {
	cases := []struct {
		url string
		id  string
	}{
		{"https://www.realtor.com/realestateandhomes-detail/16-W-21st-St_New-York_NY_10010_M12345-67890", "1234567890"},
		{"https://www.realtor.com/realestateandhomes-detail/16-W-21st-St_New-York_NY_10010_M98765", "98765"},
		{"https://www.realtor.com/realestateandhomes-search/16-W-21st-St", ""},
		{"https://www.realtor.com/realestateandhomes-detail/16-W-21st-St_Mabc", ""},
	}
	for _, tc := range cases {
		if got := ExtractListingID(tc.url); got != tc.id {
			t.Fatalf("%q: expected %q, got %q", tc.url, tc.id, got)
		}
	}
}

func TestValidateCandidate_Accepts(t *testing.T) {
	addr := address.Normalize("16 West 21st Street, Apt 5A, New York, NY 10010")

	url := "https://www.realtor.com/realestateandhomes-detail/16-W-21st-St-Apt-5A_New-York_NY_10010_M12345-67890"
	if reason := ValidateCandidate(addr, url); reason != "" {
		t.Fatalf("matching candidate rejected: %s", reason)
	}

	// No unit in the URL is not a contradiction.
	url = "https://www.realtor.com/realestateandhomes-detail/16-W-21st-St_New-York_NY_10010_M12345-67890"
	if reason := ValidateCandidate(addr, url); reason != "" {
		t.Fatalf("unitless candidate rejected: %s", reason)
	}
}

func TestValidateCandidate_StreetNumberMismatch(t *testing.T) {
	addr := address.Normalize("16 West 21st Street, New York, NY 10010")

	url := "https://www.realtor.com/realestateandhomes-detail/18-W-21st-St_New-York_NY_10010_M1"
	if reason := ValidateCandidate(addr, url); reason != RejectStreetNumber {
		t.Fatalf("expected street number rejection, got %q", reason)
	}
}

func TestValidateCandidate_CrossStreetMismatch(t *testing.T) {
	addr := address.Normalize("16 West 21st Street, New York, NY 10010")

	url := "https://www.realtor.com/realestateandhomes-detail/16-W-22nd-St_New-York_NY_10011_M1"
	if reason := ValidateCandidate(addr, url); reason != RejectCrossStreet {
		t.Fatalf("expected cross street rejection, got %q", reason)
	}
}

func TestValidateCandidate_UnitMismatch(t *testing.T) {
	addr := address.Normalize("16 West 21st Street, Apt 3B, New York, NY 10010")

	url := "https://www.realtor.com/realestateandhomes-detail/16-W-21st-St-Apt-5A_New-York_NY_10010_M1"
	if reason := ValidateCandidate(addr, url); reason != RejectUnit {
		t.Fatalf("expected unit rejection, got %q", reason)
	}
}

func TestValidateCandidate_UnparsableSlugPasses(t *testing.T) {
	addr := address.Normalize("16 West 21st Street, New York, NY 10010")

	// A slug with no recognizable structure offers no evidence either way.
	url := "https://www.realtor.com/realestateandhomes-detail/The-Chelsea-Mews_M1"
	if reason := ValidateCandidate(addr, url); reason != "" {
		t.Fatalf("structureless candidate must pass, got %q", reason)
	}
}

func TestValidateCandidate_NonDetailURL(t *testing.T) {
	addr := address.Normalize("16 West 21st Street, New York, NY 10010")

	if reason := ValidateCandidate(addr, "https://example.com/listing/1"); reason != RejectNotDetail {
		t.Fatalf("expected non-detail rejection, got %q", reason)
	}
}
