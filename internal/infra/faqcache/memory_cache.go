package faqcache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/faq-kb/internal/domain/faq"
	"github.com/yanqian/faq-kb/pkg/util"
)

type cacheEntry struct {
	records   []faq.Record
	expiresAt time.Time
}

// MemoryCache is an in-process implementation of faq.Cache for tests/dev.
type MemoryCache struct {
	mu      sync.RWMutex
	gen     int64
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewMemoryCache constructs a cache backed by process memory.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		now:     util.NowUTC,
	}
}

// Generation implements faq.Cache.
func (c *MemoryCache) Generation(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen, nil
}

// GetRecords implements faq.Cache. Lookups for a stale generation miss.
func (c *MemoryCache) GetRecords(_ context.Context, gen int64, key string) ([]faq.Record, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	current := c.gen
	c.mu.RUnlock()
	if !ok || gen != current {
		return nil, false, nil
	}
	if c.hasExpired(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return cloneRecords(entry.records), true, nil
}

// SaveRecords caches the listing with optional TTL. A save for a generation
// that has since been invalidated is dropped.
func (c *MemoryCache) SaveRecords(_ context.Context, gen int64, key string, records []faq.Record, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil
	}
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.entries[key] = cacheEntry{records: cloneRecords(records), expiresAt: exp}
	return nil
}

// Invalidate advances the generation and drops every cached listing.
func (c *MemoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries = make(map[string]cacheEntry)
	return nil
}

func (c *MemoryCache) hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(c.now())
}

func cloneRecords(records []faq.Record) []faq.Record {
	out := make([]faq.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

var _ faq.Cache = (*MemoryCache)(nil)
