// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package pace accumulates distance and duration for one session and
// derives the rolling and average pace. The calculator is fed accepted
// fixes in arrival order and is the sole owner of SessionMetrics;
// everyone else reads snapshots.
package pace

import (
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/models"
)

// windowEntry is one (distance, time) increment in the rolling window.
type windowEntry struct {
	distance float64
	elapsed  time.Duration
}

// Calculator owns the cumulative session metrics. All mutable state is
// guarded by mu.
type Calculator struct {
	cfg config.PaceConfig

	mu        sync.Mutex
	metrics   models.SessionMetrics
	window    []windowEntry
	lastFixAt time.Time
	paused    bool
	updates   uint64
}

// NewCalculator creates a metrics calculator.
func NewCalculator(cfg config.PaceConfig) *Calculator {
	return &Calculator{
		cfg:    cfg,
		window: make([]windowEntry, 0, cfg.WindowSize),
	}
}

// StartSession zeroes all state. Called once per new session.
func (c *Calculator) StartSession() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics = models.SessionMetrics{}
	c.window = c.window[:0]
	c.lastFixAt = time.Time{}
	c.paused = false
	c.updates = 0
}

// Update folds one accepted fix into the session metrics and returns
// the updated snapshot.
//
// Elapsed time is taken from the fix timestamps, not the local clock,
// so replayed streams produce identical metrics. The first fix of a
// session contributes zero distance and zero elapsed time.
func (c *Calculator) Update(fix models.ProcessedFix) models.SessionMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	var elapsed time.Duration
	if !c.lastFixAt.IsZero() {
		elapsed = fix.Timestamp.Sub(c.lastFixAt)
		if elapsed < 0 {
			elapsed = 0
		}
	}
	c.lastFixAt = fix.Timestamp

	c.metrics.TotalDistance += fix.IncrementalDistance
	c.metrics.TotalDuration += elapsed
	if !fix.IsAutoPaused && !c.paused {
		c.metrics.ActiveDuration += elapsed
	}
	c.metrics.InstantSpeed = fix.ComputedSpeed
	c.metrics.IsAutoPaused = fix.IsAutoPaused

	c.pushWindow(windowEntry{distance: fix.IncrementalDistance, elapsed: elapsed})

	if windowDist := c.windowDistance(); windowDist >= c.cfg.MinWindowDistance {
		c.metrics.CurrentPace = paceMinPerKm(c.windowElapsed(), windowDist)
	}

	if c.metrics.TotalDistance >= c.cfg.MinAverageDistance {
		c.metrics.AveragePace = paceMinPerKm(c.metrics.ActiveDuration, c.metrics.TotalDistance)
	} else {
		c.metrics.AveragePace = 0
	}

	c.updates++
	return c.metrics
}

// Pause marks the session manually paused. While paused, elapsed time
// is excluded from the active duration.
func (c *Calculator) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = true
}

// Resume clears the manual pause. The elapsed anchor is also cleared so
// the wall time spent paused never leaks into the durations via the
// first fix after resume.
func (c *Calculator) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = false
	c.lastFixAt = time.Time{}
}

// Snapshot returns the current metrics without mutation.
func (c *Calculator) Snapshot() models.SessionMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// DebugInfo returns a one-line diagnostic summary.
func (c *Calculator) DebugInfo() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("pace: updates=%d distance=%.1fm active=%s window=%d current=%.2f avg=%.2f",
		c.updates, c.metrics.TotalDistance, c.metrics.ActiveDuration,
		len(c.window), c.metrics.CurrentPace, c.metrics.AveragePace)
}

// pushWindow appends an entry, evicting the oldest beyond the window
// size. Must be called with mu held.
func (c *Calculator) pushWindow(e windowEntry) {
	if len(c.window) == c.cfg.WindowSize {
		copy(c.window, c.window[1:])
		c.window = c.window[:len(c.window)-1]
	}
	c.window = append(c.window, e)
}

func (c *Calculator) windowDistance() float64 {
	var sum float64
	for _, e := range c.window {
		sum += e.distance
	}
	return sum
}

func (c *Calculator) windowElapsed() time.Duration {
	var sum time.Duration
	for _, e := range c.window {
		sum += e.elapsed
	}
	return sum
}

// paceMinPerKm converts an elapsed duration over a distance in meters
// to minutes per kilometer.
func paceMinPerKm(elapsed time.Duration, meters float64) float64 {
	if meters <= 0 {
		return 0
	}
	return (elapsed.Seconds() / 60.0) / (meters / 1000.0)
}
