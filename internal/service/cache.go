package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultCacheTTL is how long a cached result stays valid.
	DefaultCacheTTL = time.Hour
)

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// CacheStats reports cache effectiveness counters.
type CacheStats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// ResultCache memoizes expensive pipeline stages keyed by a content hash of
// the operation and its arguments. Eviction is lazy: expired entries are
// dropped when read or when the cache is full, with no background sweeper.
// Concurrent misses for the same key may compute redundantly; that is
// cheaper than coordinating a lock around the factory.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	maxSize int
	ttl     time.Duration

	hits      int64
	misses    int64
	evictions int64

	// now is swappable for tests.
	now func() time.Time
}

// NewResultCache creates a cache with the given default TTL and maximum
// entry count. Non-positive values fall back to DefaultCacheTTL and an
// unbounded size respectively.
func NewResultCache(ttl time.Duration, maxSize int) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResultCache{
		entries: make(map[string]cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// CacheKey builds a stable key from an operation name and its arguments.
// Arguments are JSON-encoded, so logically equal argument structs always
// produce the same key.
// Parameters:
//   - operation: pipeline stage name.
//   - args: argument value; must be JSON-encodable.
// Returns:
//   - string: hex-encoded sha256 digest.
func CacheKey(operation string, args interface{}) string {
	encoded, err := json.Marshal(args)
	if err != nil {
		encoded = []byte(fmt.Sprintf("%v", args))
	}
	sum := sha256.Sum256(append([]byte(operation+":"), encoded...))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached value for the key if present and unexpired.
func (c *ResultCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: another goroutine may have
		// refreshed the entry meanwhile.
		if current, still := c.entries[key]; still && c.now().After(current.expiresAt) {
			delete(c.entries, key)
			c.evictions++
		}
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return entry.value, true
}

// Set stores a value under the key with the cache's default TTL.
func (c *ResultCache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value under the key with an explicit TTL.
func (c *ResultCache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictExpiredLocked()
		if len(c.entries) >= c.maxSize {
			c.evictSoonestLocked()
		}
	}

	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// GetOrCompute returns the cached value for the key, or invokes factory,
// stores its result with the default TTL, and returns it. A factory error
// is returned without caching.
// Parameters:
//   - key: stable cache key, usually from CacheKey.
//   - factory: computes the value on a miss.
// Returns:
//   - interface{}: cached or freshly computed value.
//   - error: non-nil only if factory fails.
func (c *ResultCache) GetOrCompute(key string, factory func() (interface{}, error)) (interface{}, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err := factory()
	if err != nil {
		return nil, err
	}
	c.Set(key, value)
	return value, nil
}

// Invalidate removes a single entry.
func (c *ResultCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.evictions++
	}
}

// Clear removes all entries.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictions += int64(len(c.entries))
	c.entries = make(map[string]cacheEntry)
}

// Stats returns current cache counters.
func (c *ResultCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// evictExpiredLocked drops all expired entries. Caller holds the write lock.
func (c *ResultCache) evictExpiredLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			c.evictions++
		}
	}
}

// evictSoonestLocked drops the entry closest to expiry to make room.
// Caller holds the write lock.
func (c *ResultCache) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.expiresAt.Before(soonest) {
			victim = key
			soonest = entry.expiresAt
			first = false
		}
	}
	if !first {
		delete(c.entries, victim)
		c.evictions++
	}
}
