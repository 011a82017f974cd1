package pricing

import (
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a resolved price is served without a new
// upstream query.
const DefaultCacheTTL = 5 * time.Minute

// cacheEntry is one cached price with its expiry deadline.
type cacheEntry struct {
	price    float64
	deadline time.Time
}

// priceCache is a TTL cache keyed by mint. Only successfully resolved
// prices are stored; the fixed default price never enters the cache.
type priceCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func newPriceCache(ttl time.Duration) *priceCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &priceCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// get returns the cached price for a mint if it has not expired.
func (c *priceCache) get(mint string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[mint]
	if !ok {
		return 0, false
	}
	if c.now().After(entry.deadline) {
		delete(c.entries, mint)
		return 0, false
	}
	return entry.price, true
}

// put stores a resolved price with a fresh deadline.
func (c *priceCache) put(mint string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[mint] = cacheEntry{
		price:    price,
		deadline: c.now().Add(c.ttl),
	}
}
