package projects

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"prewalk_engine/models"
)

const (
	snapshotFile = "zoho_deals_cache.json"

	// DefaultTTL is how long a deal snapshot stays usable before a
	// refresh is required.
	DefaultTTL = 168 * time.Hour
)

// Store holds the on-disk deal snapshot that neighboring-project queries
// run against.
type Store struct {
	path string
	ttl  time.Duration
}

func NewStore(cacheDir string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", cacheDir, err)
	}
	return &Store{path: filepath.Join(cacheDir, snapshotFile), ttl: ttl}, nil
}

// Save atomically replaces the snapshot with the given deal set.
func (s *Store) Save(deals []models.CachedDeal) error {
	snap := models.DealSnapshot{
		Timestamp: time.Now(),
		Count:     len(deals),
		Deals:     deals,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding deal snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing deal snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing deal snapshot: %w", err)
	}

	log.Printf("Saved %d deals to snapshot", len(deals))
	return nil
}

// Load returns the snapshot, or nil when it is missing, unreadable, or
// older than the TTL. A nil snapshot means matching has nothing to work
// with and a refresh is due.
func (s *Store) Load() *models.DealSnapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: reading deal snapshot: %v", err)
		}
		return nil
	}

	var snap models.DealSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("Warning: corrupt deal snapshot: %v", err)
		return nil
	}

	if age := time.Since(snap.Timestamp); age > s.ttl {
		log.Printf("Deal snapshot is stale (age %s)", age.Round(time.Minute))
		return nil
	}
	return &snap
}

// Valid reports whether a usable snapshot is on disk.
func (s *Store) Valid() bool {
	return s.Load() != nil
}

// Stats summarizes the snapshot state regardless of freshness.
func (s *Store) Stats() models.SnapshotStats {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return models.SnapshotStats{}
	}

	var snap models.DealSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.SnapshotStats{Exists: true}
	}

	age := time.Since(snap.Timestamp)
	withHood := 0
	for _, d := range snap.Deals {
		if d.Neighborhood != nil && *d.Neighborhood != "" {
			withHood++
		}
	}

	return models.SnapshotStats{
		Exists:           true,
		Valid:            age <= s.ttl,
		Count:            snap.Count,
		WithNeighborhood: withHood,
		AgeHours:         age.Hours(),
		LastUpdated:      snap.Timestamp,
	}
}
