package geo

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"prewalk_engine/models"
)

// GeocodeCache is a persistent map from cleaned address to geocode result.
// A stored nil means the address was looked up and produced nothing usable;
// that negative entry suppresses further network calls. Entries never
// expire.
type GeocodeCache struct {
	path string

	mu      sync.Mutex
	entries map[string]*models.GeocodeResult
}

// OpenGeocodeCache loads the cache at path. A missing or corrupt file
// starts an empty cache rather than failing.
func OpenGeocodeCache(path string) *GeocodeCache {
	c := &GeocodeCache{
		path:    path,
		entries: make(map[string]*models.GeocodeResult),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: could not read geocode cache %s: %v", path, err)
		}
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		log.Printf("Warning: corrupt geocode cache %s, starting fresh: %v", path, err)
		c.entries = make(map[string]*models.GeocodeResult)
	}
	return c
}

// Get returns the cached result for key. The second return reports whether
// the key was present at all; a present key with a nil result is a cached
// negative lookup.
func (c *GeocodeCache) Get(key string) (*models.GeocodeResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.entries[key]
	return res, ok
}

// Put stores a result (nil for a negative lookup) and persists the cache.
func (c *GeocodeCache) Put(key string, res *models.GeocodeResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = res
	return c.save()
}

func (c *GeocodeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *GeocodeCache) save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding geocode cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing geocode cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replacing geocode cache: %w", err)
	}
	return nil
}
