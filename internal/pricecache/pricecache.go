// Package pricecache holds the last listing price applied per token so the
// bot can skip re-listing at an unchanged price. The cache is wiped in full
// on a fixed interval, independent of the evaluation cycle, so a stale entry
// never suppresses listings for more than that window.
package pricecache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultClearInterval matches the 30-minute full reset of the cache.
const DefaultClearInterval = 30 * time.Minute

// Cache maps a token key (contract:tokenId) to the last applied listing
// price. Safe for concurrent use; per-token tasks touch disjoint keys.
type Cache struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

func New() *Cache {
	return &Cache{prices: make(map[string]decimal.Decimal)}
}

// Get returns the last applied listing price for key, if any.
func (c *Cache) Get(key string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[key]
	return p, ok
}

// Put records the listing price just applied for key, overwriting any
// previous entry.
func (c *Cache) Put(key string, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[key] = price
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices = make(map[string]decimal.Decimal)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.prices)
}

// RunClearLoop clears the cache every interval until ctx is done. Call in a
// goroutine alongside the scheduler.
func (c *Cache) RunClearLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultClearInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Printf("[info] clearing listing price cache (%d entries)", c.Len())
			c.Clear()
		}
	}
}
