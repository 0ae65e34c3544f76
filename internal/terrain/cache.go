// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package terrain

import (
	"sync"
	"time"

	"github.com/tomtom215/ambulo/internal/geo"
	"github.com/tomtom215/ambulo/internal/metrics"
	"github.com/tomtom215/ambulo/internal/models"
)

// cacheEntry pairs a classification with the location it was computed
// for. An entry satisfies a query iff it is younger than the TTL and
// closer than the proximity radius.
type cacheEntry struct {
	classification models.TerrainClassification
	location       geo.Coordinate
	storedAt       time.Time
}

// cache is a TTL+proximity map keyed by quantized coordinates. Private
// to the classifier; nothing outside this package reads or writes it.
type cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	radius  float64

	hits   uint64
	misses uint64
	swept  uint64
}

func newCache(ttl time.Duration, radius float64) *cache {
	return &cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		radius:  radius,
	}
}

// get returns a cached classification valid for the query location.
func (c *cache) get(loc geo.Coordinate, now time.Time) (models.TerrainClassification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := geo.QuantizeKey(loc)
	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		metrics.TerrainCacheOps.WithLabelValues("miss").Inc()
		return models.TerrainClassification{}, false
	}

	if now.Sub(entry.storedAt) >= c.ttl || geo.Haversine(entry.location, loc) >= c.radius {
		// Stale or too far: treat as a miss and drop it eagerly.
		delete(c.entries, key)
		c.misses++
		metrics.TerrainCacheOps.WithLabelValues("miss").Inc()
		return models.TerrainClassification{}, false
	}

	c.hits++
	metrics.TerrainCacheOps.WithLabelValues("hit").Inc()
	return entry.classification, true
}

// put stores a classification for the query location, overwriting any
// previous entry at the same quantized key.
func (c *cache) put(loc geo.Coordinate, cls models.TerrainClassification, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[geo.QuantizeKey(loc)] = cacheEntry{
		classification: cls,
		location:       loc,
		storedAt:       now,
	}
}

// sweep removes entries older than the TTL regardless of query
// activity. Returns the number removed.
func (c *cache) sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.swept += uint64(removed)
		metrics.TerrainCacheOps.WithLabelValues("swept").Add(float64(removed))
	}
	return removed
}

// len returns the live entry count.
func (c *cache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
