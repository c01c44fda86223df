package listing

import (
	"context"
	"errors"
	"testing"

	"prewalk_engine/address"
	"prewalk_engine/models"
)

type stubStrategy struct {
	name string
	urls []string
	err  error
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Attempt(_ context.Context, _ models.Address) ([]*models.ListingCandidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*models.ListingCandidate
	for _, u := range s.urls {
		out = append(out, &models.ListingCandidate{Strategy: s.name, URL: u})
	}
	return out, nil
}

func TestResolve_FirstValidatedWins(t *testing.T) {
	addr := address.Normalize("16 West 21st Street, New York, NY 10010")

	wrong := "https://www.realtor.com/realestateandhomes-detail/18-W-21st-St_New-York_NY_10010_M1"
	right := "https://www.realtor.com/realestateandhomes-detail/16-W-21st-St_New-York_NY_10010_M12345-67890"

	r := NewResolver(
		&stubStrategy{name: "first", urls: []string{wrong}},
		&stubStrategy{name: "second", urls: []string{right}},
	)

	c := r.Resolve(context.Background(), addr)
	if c == nil {
		t.Fatalf("expected a candidate")
	}
	if c.Strategy != "second" {
		t.Fatalf("expected the second strategy to win, got %q", c.Strategy)
	}
	if !c.Accepted || c.ListingID != "1234567890" {
		t.Fatalf("candidate not finalized: %+v", c)
	}
}

func TestResolve_SkipsFailedStrategy(t *testing.T) {
	addr := address.Normalize("16 West 21st Street, New York, NY 10010")
	right := "https://www.realtor.com/realestateandhomes-detail/16-W-21st-St_New-York_NY_10010_M1"

	r := NewResolver(
		&stubStrategy{name: "down", err: errors.New("upstream unavailable")},
		&stubStrategy{name: "up", urls: []string{right}},
	)

	c := r.Resolve(context.Background(), addr)
	if c == nil || c.Strategy != "up" {
		t.Fatalf("expected fallback past the failed strategy, got %+v", c)
	}
}

func TestResolve_ExhaustedChainIsNil(t *testing.T) {
	addr := address.Normalize("16 West 21st Street, New York, NY 10010")

	r := NewResolver(
		&stubStrategy{name: "a"},
		&stubStrategy{name: "b", err: errors.New("blocked")},
	)

	if c := r.Resolve(context.Background(), addr); c != nil {
		t.Fatalf("expected nil on exhausted chain, got %+v", c)
	}
}
