package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// ChartCache stores rendered chart PNGs keyed by user and dashboard
// version. A new version produces a new key, so stale images simply age
// out under the LRU bound; no explicit invalidation is needed.
type ChartCache struct {
	lru *LRU[[]byte]
}

func NewChartCache(maxEntries int, ttl time.Duration) *ChartCache {
	return &ChartCache{lru: NewLRU[[]byte](maxEntries, ttl)}
}

func chartKey(userID string, version uint64) string {
	return fmt.Sprintf("%s@%s", userID, strconv.FormatUint(version, 10))
}

func (c *ChartCache) Get(userID string, version uint64) ([]byte, bool) {
	return c.lru.Get(chartKey(userID, version))
}

func (c *ChartCache) Put(userID string, version uint64, png []byte) {
	c.lru.Set(chartKey(userID, version), png)
}

func (c *ChartCache) Size() int {
	return c.lru.Size()
}

// Janitor sweeps expired entries until ctx is done.
func (c *ChartCache) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.lru.CleanExpired()
		case <-ctx.Done():
			return
		}
	}
}
