package cache

import "sync"

// IDCache maps external string IDs (season UUIDs) to their database row IDs.
type IDCache struct {
	mu  sync.RWMutex
	ids map[string]uint
}

// NewIDCache creates a new IDCache
func NewIDCache() *IDCache {
	return &IDCache{
		ids: make(map[string]uint),
	}
}

// Get retrieves a row ID by external ID
func (c *IDCache) Get(key string) (uint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[key]
	return id, ok
}

// Set stores a row ID by external ID
func (c *IDCache) Set(key string, id uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[key] = id
}

// Delete removes an entry
func (c *IDCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, key)
}

// Reset clears the cache
func (c *IDCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = make(map[string]uint)
}
