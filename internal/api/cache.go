package api

import (
	"sync"

	"github.com/armadafleet/fleetsynth/internal/models"
)

// SeriesCache memoizes seeded series. Only requests with an explicit seed are
// cached since unseeded requests must draw fresh noise every time. The oldest
// entry is evicted once the cache is full.
type SeriesCache struct {
	capacity int
	entries  map[string]*models.Series
	order    []string
	mu       sync.RWMutex
}

// NewSeriesCache creates a cache holding at most capacity series. A capacity
// below one disables caching.
func NewSeriesCache(capacity int) *SeriesCache {
	return &SeriesCache{
		capacity: capacity,
		entries:  make(map[string]*models.Series),
	}
}

// Get returns the cached series for key
func (c *SeriesCache) Get(key string) (*models.Series, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[key]
	return s, ok
}

// Put stores a series under key
func (c *SeriesCache) Put(key string, series *models.Series) {
	if c.capacity < 1 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = series
		return
	}
	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = series
	c.order = append(c.order, key)
}

// Len returns the number of cached series
func (c *SeriesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
