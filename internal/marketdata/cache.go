package marketdata

import (
	"sync"
	"time"
)

// TTLs per data class: quotes go stale in minutes, company profiles and
// fundamentals in hours.
const (
	quoteTTL   = 120 * time.Second
	profileTTL = 3600 * time.Second
	metricTTL  = 3600 * time.Second
	searchTTL  = 30 * time.Minute
)

type cacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

// responseCache is an in-process TTL cache for upstream response bodies,
// keyed by request URL. The clock is a field so tests can move time.
type responseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func newResponseCache() *responseCache {
	return &responseCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *responseCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.payload, true
}

func (c *responseCache) set(key string, payload []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		payload:   payload,
		expiresAt: c.now().Add(ttl),
	}
}

func (c *responseCache) purgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if c.now().After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}
