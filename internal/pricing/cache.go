// Package pricing provides the session price cache and the throttled
// single-worker queue that scrapes card prices from the secondary source.
package pricing

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// CachePrefix namespaces every session cache key so that a bulk clear only
// touches keys owned by this application.
const CachePrefix = "portal_mtg_"

// Session cache key builders.
func SearchKey(query string) string    { return CachePrefix + "search_" + query }
func PriceKey(name, set string) string { return CachePrefix + "price_" + name + "_" + set }
func RulingsKey(cardID string) string  { return CachePrefix + "rulings_" + cardID }
func SetsKey() string                  { return CachePrefix + "sets_list" }
func CreatureTypesKey() string         { return CachePrefix + "creature_types" }

// SessionCache is a process-scoped key-value store with JSON-serialized
// values. Entries never expire on their own; Clear drops everything under
// the namespace prefix in one shot. Safe for concurrent use.
type SessionCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewSessionCache creates an empty session cache.
func NewSessionCache() *SessionCache {
	return &SessionCache{entries: make(map[string][]byte)}
}

// Get unmarshals the cached value for key into v and reports whether the
// key was present. A corrupt entry is treated as a miss.
func (c *SessionCache) Get(key string, v any) bool {
	c.mu.RLock()
	data, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false
	}
	return true
}

// Put stores v under key. Values that fail to serialize are silently
// dropped; the cache is best-effort enrichment, never a dependency.
func (c *SessionCache) Put(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.entries[key] = data
	c.mu.Unlock()
}

// Delete removes a single key.
func (c *SessionCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes every key under the namespace prefix and reports how many
// entries were dropped. Keys outside the prefix are left alone.
func (c *SessionCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	cleared := 0
	for key := range c.entries {
		if strings.HasPrefix(key, CachePrefix) {
			delete(c.entries, key)
			cleared++
		}
	}
	return cleared
}

// Len returns the number of cached entries.
func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// String implements fmt.Stringer for debug logging.
func (c *SessionCache) String() string {
	return fmt.Sprintf("SessionCache(%d entries)", c.Len())
}
