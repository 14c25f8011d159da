// Package cache provides the time-windowed response cache that sits in front
// of the hub source.
package cache

import (
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTTL is how long a stored response stays valid.
const DefaultTTL = 30 * time.Second

// Lookup results reported to the Observer.
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultExpired = "expired"
)

// Observer receives the result of every Get. It may be nil.
type Observer func(result string)

// Cache is a thread-safe key/value store whose entries expire a fixed
// duration after they were written. It has no size bound; stale entries are
// evicted lazily on read.
type Cache[V any] struct {
	clock    clockwork.Clock
	ttl      time.Duration
	observer Observer

	mu      sync.Mutex
	entries map[string]entry[V]
	gen     uint64
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Status describes the current cache contents.
type Status struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// New creates a cache. A nil clock uses the real clock and a non-positive ttl
// uses DefaultTTL.
func New[V any](clock clockwork.Clock, ttl time.Duration, observer Observer) *Cache[V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{
		clock:    clock,
		ttl:      ttl,
		observer: observer,
		entries:  make(map[string]entry[V]),
	}
}

// TTL returns the validity window of an entry.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the value stored under key if it was written less than TTL ago.
// An expired entry is removed.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	result := ResultMiss
	if ok {
		if c.clock.Since(e.storedAt) < c.ttl {
			result = ResultHit
		} else {
			delete(c.entries, key)
			result = ResultExpired
			ok = false
		}
	}
	c.mu.Unlock()

	if c.observer != nil {
		c.observer(result)
	}
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key with the current time, replacing any prior entry.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.clock.Now()}
}

// Generation returns the current cache generation. Clear advances it.
func (c *Cache[V]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// PutIfCurrent stores value like Put, unless the cache was cleared after gen
// was read. Callers read the generation before fetching, so a value fetched
// before a Clear cannot outlive it. Reports whether the value was stored.
func (c *Cache[V]) PutIfCurrent(key string, value V, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.entries[key] = entry[V]{value: value, storedAt: c.clock.Now()}
	return true
}

// Clear removes every entry and advances the generation.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.gen++
}

// Status reports the number of entries and their keys in sorted order.
// Expired entries that have not been read yet are still counted.
func (c *Cache[V]) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return Status{Size: len(keys), Keys: keys}
}

// Key derives a cache key from an endpoint path and its request parameters.
// Parameters are encoded in sorted key order, so equal queries share a key.
func Key(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
