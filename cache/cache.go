// Package cache implements the in-memory, time-bounded memo of prior
// resolutions. Entries never survive the process; persistence is deliberately
// out of scope for resolution results.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/samber/mo"
	"github.com/tokgrab-cli/tokgrab/media"
)

// entry is one memoized resolution. Entries are replaced whole, never merged.
type entry struct {
	value     media.Media
	createdAt time.Time
}

// Cache is a TTL-expiring map keyed by a content hash of the normalized
// reference. Get never evicts: an expired entry found on read is reported as
// a miss and left for the sweeper, keeping the read path O(1) and
// allocation-free. The background sweeper is the only path that removes
// entries.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	maxAge  time.Duration
	enabled bool

	done chan struct{}
	once sync.Once
}

// New constructs a cache and starts its sweeper. A disabled cache always
// misses on Get and ignores Put; the sweeper is not started for it.
// Callers own the lifecycle and must Stop the cache when done.
func New(maxAge time.Duration, enabled bool) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		maxAge:  maxAge,
		enabled: enabled,
		done:    make(chan struct{}),
	}

	if enabled {
		go c.sweepLoop()
	}

	return c
}

// Key derives the stable cache key for a reference. The caller is expected
// to have normalized the reference already; the cache hashes verbatim.
func Key(reference string) string {
	sum := sha256.Sum256([]byte(reference))
	return hex.EncodeToString(sum[:])
}

// Get returns the memoized resolution for the reference if one exists and is
// younger than the cache's max age.
func (c *Cache) Get(reference string) mo.Option[media.Media] {
	if !c.enabled {
		return mo.None[media.Media]()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[Key(reference)]
	if !ok || time.Since(e.createdAt) >= c.maxAge {
		return mo.None[media.Media]()
	}

	return mo.Some(e.value)
}

// Put memoizes a resolution, refreshing any previous entry for the same
// reference.
func (c *Cache) Put(reference string, value media.Media) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[Key(reference)] = entry{value: value, createdAt: time.Now()}
}

// Sweep deletes every entry older than the max age. It runs periodically in
// the background but is exported so operators can trigger it directly.
func (c *Cache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.Sub(e.createdAt) >= c.maxAge {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stop terminates the background sweeper. Safe to call more than once.
func (c *Cache) Stop() {
	c.once.Do(func() {
		close(c.done)
	})
}

// sweepLoop fires on a fixed period equal to the max age.
func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(c.maxAge)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.done:
			return
		}
	}
}
