package airesponsecache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aiprovider"
)

// Entry is a cached completion (spec §3.1 CacheEntry).
type Entry struct {
	Response     aiprovider.CompletionResult
	CreatedAt    time.Time
	HitCount     int
	LastAccessed time.Time
}

// Cache maps a fingerprint to a previously computed completion, guarded by
// a single mutex over the map (spec §4.2: "the simplest correct design
// guards the map with a mutex"), grounded on the teacher's
// mutex-plus-map OpenRouterCache (pkg/connector/model_cache.go). A
// singleflight.Group de-duplicates concurrent misses for the same key.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	ttl     time.Duration
	group   singleflight.Group
}

// New builds a response cache with the given TTL (spec §4.2 default 1h,
// configured by internal/config).
func New(ttl time.Duration) *Cache {
	return &Cache{entries: make(map[string]*Entry), ttl: ttl}
}

// Get returns the cached response for fingerprint if present and unexpired.
// An expired hit is removed as a side effect (spec §4.2).
func (c *Cache) Get(fingerprint string) (aiprovider.CompletionResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[fingerprint]
	c.mu.RUnlock()
	if !ok {
		return aiprovider.CompletionResult{}, false
	}
	if time.Since(entry.CreatedAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, fingerprint)
		c.mu.Unlock()
		return aiprovider.CompletionResult{}, false
	}

	c.mu.Lock()
	entry.HitCount++
	entry.LastAccessed = time.Now()
	c.mu.Unlock()
	return entry.Response, true
}

// Set unconditionally installs response under fingerprint (spec §4.2).
func (c *Cache) Set(fingerprint string, response aiprovider.CompletionResult) {
	now := time.Now()
	c.mu.Lock()
	c.entries[fingerprint] = &Entry{Response: response, CreatedAt: now, LastAccessed: now}
	c.mu.Unlock()
}

// Sweep removes all expired entries (spec §4.2, §3.3).
func (c *Cache) Sweep() int {
	removed := 0
	now := time.Now()
	c.mu.Lock()
	for key, entry := range c.entries {
		if now.Sub(entry.CreatedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()
	return removed
}

// Len reports the number of entries currently stored (including any not
// yet swept past their TTL).
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetOrCompute returns the cached response for fingerprint if present,
// otherwise invokes compute exactly once across all concurrent callers for
// that fingerprint (single-flight, spec §4.2/§GLOSSARY) and caches the
// result on success. The bool return reports whether the value came from
// cache.
func (c *Cache) GetOrCompute(ctx context.Context, fingerprint string, compute func(context.Context) (aiprovider.CompletionResult, error)) (aiprovider.CompletionResult, bool, error) {
	if cached, ok := c.Get(fingerprint); ok {
		return cached, true, nil
	}

	v, err, _ := c.group.Do(fingerprint, func() (any, error) {
		// Re-check: another goroutine may have populated the cache while
		// this one waited to enter Do.
		if cached, ok := c.Get(fingerprint); ok {
			return cached, nil
		}
		result, err := compute(ctx)
		if err != nil {
			return aiprovider.CompletionResult{}, err
		}
		c.Set(fingerprint, result)
		return result, nil
	})
	if err != nil {
		return aiprovider.CompletionResult{}, false, err
	}
	return v.(aiprovider.CompletionResult), false, nil
}
