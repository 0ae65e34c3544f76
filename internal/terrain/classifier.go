// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package terrain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/geo"
	"github.com/tomtom215/ambulo/internal/logging"
	"github.com/tomtom215/ambulo/internal/metrics"
	"github.com/tomtom215/ambulo/internal/models"
)

// Fusion policy values. Tuned defaults, not precision guarantees.
const (
	strongSemanticThreshold  = 0.6
	usableThreshold          = 0.3
	agreementSemanticWeight  = 0.8
	agreementHeuristicWeight = 0.2
	agreementBonus           = 0.1
	disagreementPenalty      = 0.8
)

// Classifier fuses the semantic and heuristic terrain estimators per
// query, behind a TTL+proximity cache. All mutable state is guarded by
// the cache's own lock plus mu for the counters.
type Classifier struct {
	cfg      config.TerrainConfig
	geocoder Geocoder
	cache    *cache

	mu      sync.Mutex
	queries uint64
	gated   uint64
}

// NewClassifier creates a terrain classifier. A nil geocoder disables
// the semantic estimator; classification then leans on the heuristic
// path.
func NewClassifier(cfg config.TerrainConfig, geocoder Geocoder) *Classifier {
	return &Classifier{
		cfg:      cfg,
		geocoder: geocoder,
		cache:    newCache(cfg.CacheTTL, cfg.CacheRadius),
	}
}

// Classify returns the terrain under the query location.
//
// A valid cache entry short-circuits both estimators. Otherwise the
// semantic and heuristic estimators run concurrently, their results are
// fused, and the fusion is cached. Queries with horizontal accuracy
// worse than the quality gate skip everything and return a fixed
// low-confidence default without a network call.
func (c *Classifier) Classify(ctx context.Context, q Query) models.TerrainClassification {
	c.mu.Lock()
	c.queries++
	c.mu.Unlock()

	if q.HorizontalAccuracy > c.cfg.MaxQueryAccuracy {
		c.mu.Lock()
		c.gated++
		c.mu.Unlock()
		metrics.GeocodeLookups.WithLabelValues("rejected").Inc()
		return models.TerrainClassification{
			Category:   models.TerrainPavedRoad,
			Confidence: semanticFailedConfidence,
			Timestamp:  q.Timestamp,
		}
	}

	loc := geo.Coordinate{Latitude: q.Latitude, Longitude: q.Longitude}
	if cached, ok := c.cache.get(loc, q.Timestamp); ok {
		return cached
	}

	// Both estimators run concurrently; the heuristic one is pure
	// computation, the semantic one may block up to the geocode
	// timeout.
	var (
		wg        sync.WaitGroup
		semantic  models.TerrainClassification
		heuristic models.TerrainClassification
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		semantic = c.semanticEstimate(ctx, loc, q.Timestamp)
	}()
	go func() {
		defer wg.Done()
		heuristic = heuristicEstimate(q)
	}()
	wg.Wait()

	fused := fuse(semantic, heuristic)
	c.cache.put(loc, fused, q.Timestamp)

	logging.Ctx(ctx).Trace().
		Str("category", string(fused.Category)).
		Float64("confidence", fused.Confidence).
		Msg("terrain classified")

	return fused
}

// fuse combines the two estimates:
//
//  1. Strong semantic evidence wins outright.
//  2. Usable and agreeing estimates reinforce each other.
//  3. Usable but disagreeing estimates fall back to the semantic
//     category at a penalty.
//  4. Otherwise the more confident estimator wins.
func fuse(semantic, heuristic models.TerrainClassification) models.TerrainClassification {
	switch {
	case semantic.Confidence > strongSemanticThreshold:
		return semantic

	case semantic.Confidence > usableThreshold && heuristic.Confidence > usableThreshold &&
		semantic.Category == heuristic.Category:
		fused := semantic
		fused.Confidence = clampConfidence(
			semantic.Confidence*agreementSemanticWeight +
				heuristic.Confidence*agreementHeuristicWeight +
				agreementBonus)
		return fused

	case semantic.Confidence > usableThreshold && heuristic.Confidence > usableThreshold:
		fused := semantic
		fused.Confidence = semantic.Confidence * disagreementPenalty
		return fused

	case heuristic.Confidence > semantic.Confidence:
		return heuristic

	default:
		return semantic
	}
}

// Serve runs the periodic cache sweep until the context is canceled.
// It satisfies suture.Service so the supervisor owns the sweeper's
// lifetime.
func (c *Classifier) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if removed := c.cache.sweep(now); removed > 0 {
				logging.Debug().Int("removed", removed).Msg("terrain cache sweep")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (c *Classifier) String() string { return "terrain-classifier" }

// CacheSize returns the number of live cache entries.
func (c *Classifier) CacheSize() int { return c.cache.len() }

// DebugInfo returns a one-line diagnostic summary.
func (c *Classifier) DebugInfo() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.mu.Lock()
	hits, misses := c.cache.hits, c.cache.misses
	c.cache.mu.Unlock()

	return fmt.Sprintf("terrain: queries=%d gated=%d cache(hits=%d misses=%d size=%d)",
		c.queries, c.gated, hits, misses, c.cache.len())
}
