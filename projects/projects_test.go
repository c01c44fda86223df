package projects

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"prewalk_engine/models"
)

func strPtr(s string) *string { return &s }

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), ttl)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return s
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t, time.Hour)

	deals := []models.CachedDeal{
		{Name: "16 West 21st Street", Amount: 1200000, Stage: "Closed Won", Neighborhood: strPtr("Flatiron")},
		{Name: "123 Dean Street", Amount: 500000, Stage: "Proposal"},
	}
	if err := s.Save(deals); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	snap := s.Load()
	if snap == nil {
		t.Fatalf("expected a valid snapshot")
	}
	if snap.Count != 2 || len(snap.Deals) != 2 {
		t.Fatalf("snapshot count wrong: %d / %d", snap.Count, len(snap.Deals))
	}
	if snap.Deals[0].Neighborhood == nil || *snap.Deals[0].Neighborhood != "Flatiron" {
		t.Fatalf("neighborhood not preserved: %+v", snap.Deals[0])
	}
}

func TestStore_MissingAndCorruptAreNil(t *testing.T) {
	s := newTestStore(t, time.Hour)
	if s.Load() != nil {
		t.Fatalf("missing snapshot must load as nil")
	}

	if err := os.WriteFile(s.path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}
	if s.Load() != nil {
		t.Fatalf("corrupt snapshot must load as nil")
	}
}

func TestStore_TTL(t *testing.T) {
	s := newTestStore(t, time.Hour)

	writeSnapshotAt := func(ts time.Time) {
		snap := models.DealSnapshot{Timestamp: ts, Count: 1, Deals: []models.CachedDeal{{Name: "1 Main Street"}}}
		data, err := json.Marshal(snap)
		if err != nil {
			t.Fatalf("encoding snapshot: %v", err)
		}
		if err := os.WriteFile(s.path, data, 0o644); err != nil {
			t.Fatalf("writing snapshot: %v", err)
		}
	}

	writeSnapshotAt(time.Now().Add(-50 * time.Minute))
	if s.Load() == nil {
		t.Fatalf("snapshot within TTL must load")
	}
	if !s.Valid() {
		t.Fatalf("snapshot within TTL must be valid")
	}

	writeSnapshotAt(time.Now().Add(-2 * time.Hour))
	if s.Load() != nil {
		t.Fatalf("stale snapshot must load as nil")
	}

	stats := s.Stats()
	if !stats.Exists || stats.Valid {
		t.Fatalf("stale snapshot stats wrong: %+v", stats)
	}
	if stats.Count != 1 {
		t.Fatalf("stats must report stored count, got %d", stats.Count)
	}
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t, time.Hour)
	if stats := s.Stats(); stats.Exists {
		t.Fatalf("missing snapshot must not exist in stats")
	}

	deals := []models.CachedDeal{
		{Name: "16 West 21st Street", Neighborhood: strPtr("Flatiron")},
		{Name: "123 Dean Street"},
		{Name: "740 Park Avenue", Neighborhood: strPtr("Upper East Side")},
	}
	if err := s.Save(deals); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	stats := s.Stats()
	if !stats.Exists || !stats.Valid {
		t.Fatalf("fresh snapshot stats wrong: %+v", stats)
	}
	if stats.Count != 3 || stats.WithNeighborhood != 2 {
		t.Fatalf("counts wrong: %+v", stats)
	}
}

func saveMatchFixture(t *testing.T, s *Store) {
	t.Helper()
	deals := []models.CachedDeal{
		{Name: "200 East 24th Street, Apt 3B", Amount: 500000, Stage: "Proposal", Neighborhood: strPtr("Kips Bay")},
		{Name: "16 West 21st Street, Apt 9C", Amount: 800000, Stage: "Closed Won", Neighborhood: strPtr("Flatiron")},
		{Name: "305 East 24th Street, Apt 12F", Amount: 1200000, Stage: "Negotiation", Neighborhood: strPtr("Kips Bay")},
		{Name: "305 East 24th Street, Apt 2A", Amount: 300000, Stage: "", Neighborhood: strPtr("Kips Bay")},
		{Name: "740 Park Avenue", Amount: 2500000, Stage: "Closed Won", Neighborhood: strPtr("Upper East Side")},
	}
	if err := s.Save(deals); err != nil {
		t.Fatalf("save failed: %v", err)
	}
}

func TestFindNeighboring_OrderingAndFlags(t *testing.T) {
	s := newTestStore(t, time.Hour)
	saveMatchFixture(t, s)

	m := NewMatcher(s, nil)
	got := m.FindNeighboring("305 E 24th St, Apt 5A, New York, NY 10010", "Kips Bay", false)

	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d: %+v", len(got), got)
	}
	// Same building first, then by amount descending.
	if !got[0].IsSameBuilding || got[0].Amount != 1200000 {
		t.Fatalf("first match wrong: %+v", got[0])
	}
	if !got[1].IsSameBuilding || got[1].Amount != 300000 {
		t.Fatalf("second match wrong: %+v", got[1])
	}
	if got[2].IsSameBuilding || got[2].Amount != 500000 {
		t.Fatalf("third match wrong: %+v", got[2])
	}
	if got[1].Stage != "Unknown" {
		t.Fatalf("empty stage must map to Unknown, got %q", got[1].Stage)
	}
}

func TestFindNeighboring_SameBuildingOnly(t *testing.T) {
	s := newTestStore(t, time.Hour)
	saveMatchFixture(t, s)

	m := NewMatcher(s, nil)
	got := m.FindNeighboring("305 East 24th Street, New York, NY", "Kips Bay", true)

	if len(got) != 2 {
		t.Fatalf("expected 2 same-building matches, got %d", len(got))
	}
	for _, p := range got {
		if !p.IsSameBuilding {
			t.Fatalf("same-building-only returned %+v", p)
		}
	}
}

func TestFindNeighboring_LookupFallback(t *testing.T) {
	s := newTestStore(t, time.Hour)
	saveMatchFixture(t, s)

	m := NewMatcher(s, func(raw string) string {
		return "Flatiron"
	})
	got := m.FindNeighboring("20 West 21st Street, New York, NY", "Information not available", false)

	if len(got) != 1 || got[0].Neighborhood != "Flatiron" {
		t.Fatalf("lookup fallback failed: %+v", got)
	}
	if got[0].IsSameBuilding {
		t.Fatalf("different house number must not be same building")
	}
}

func TestFindNeighboring_SameBuildingAcrossAbbreviations(t *testing.T) {
	s := newTestStore(t, time.Hour)
	deals := []models.CachedDeal{
		{Name: "16 W 21st St, Apt 2B", Amount: 900000, Stage: "Closed Won", Neighborhood: strPtr("Flatiron")},
		{Name: "18 W 21st St", Amount: 400000, Stage: "Proposal"},
	}
	if err := s.Save(deals); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// No neighborhood on either side: only the building comparison can match,
	// and it must see through abbreviation and unit differences.
	m := NewMatcher(s, nil)
	got := m.FindNeighboring("16 West 21st Street, New York, NY 10010", "", false)

	if len(got) != 1 {
		t.Fatalf("expected 1 same-building match, got %d: %+v", len(got), got)
	}
	if !got[0].IsSameBuilding || got[0].DealName != "16 W 21st St, Apt 2B" {
		t.Fatalf("wrong match: %+v", got[0])
	}
}

func TestFindNeighboring_NoSnapshot(t *testing.T) {
	s := newTestStore(t, time.Hour)
	m := NewMatcher(s, nil)

	if got := m.FindNeighboring("1 Main Street", "Flatiron", false); got != nil {
		t.Fatalf("expected nil without a snapshot, got %+v", got)
	}
}

func TestStore_SaveIsAtomic(t *testing.T) {
	s := newTestStore(t, time.Hour)
	if err := s.Save([]models.CachedDeal{{Name: "1 Main Street"}}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := os.Stat(s.path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
	if filepath.Base(s.path) != "zoho_deals_cache.json" {
		t.Fatalf("unexpected snapshot filename %s", s.path)
	}
}
