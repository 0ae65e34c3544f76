// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package location

import (
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/geo"
	"github.com/tomtom215/ambulo/internal/logging"
	"github.com/tomtom215/ambulo/internal/metrics"
	"github.com/tomtom215/ambulo/internal/models"
)

// Rejection reasons, used as log fields and metric labels.
const (
	reasonAccuracy   = "accuracy"
	reasonStale      = "stale"
	reasonJump       = "jump"
	reasonNoiseFloor = "noise_floor"
)

// Processor validates raw fixes and maintains the auto-pause sub-state.
// All mutable state is guarded by mu; callers interact only through the
// exported methods.
type Processor struct {
	cfg config.LocationConfig

	mu           sync.Mutex
	lastFix      *models.RawFix
	paused       bool
	lastMovement time.Time

	accepted uint64
	rejected map[string]uint64

	// now is swappable for tests.
	now func() time.Time
}

// NewProcessor creates a location processor with the given gates.
func NewProcessor(cfg config.LocationConfig) *Processor {
	return &Processor{
		cfg:      cfg,
		rejected: make(map[string]uint64),
		now:      time.Now,
	}
}

// Process validates one raw fix. It returns nil when the fix fails a
// quality gate; rejection is logged and counted but never fatal.
//
// The auto-pause clock advances on every fix that passes the accuracy,
// staleness, and jump gates, including fixes below the noise floor:
// stationary fixes barely move by definition, and the pause decision
// must still observe them. Last-accepted-fix state changes only on
// acceptance, and a fix that flips the pause flag is always accepted so
// the transition is visible downstream.
func (p *Processor) Process(fix models.RawFix) *models.ProcessedFix {
	p.mu.Lock()
	defer p.mu.Unlock()

	if fix.HorizontalAccuracy > p.cfg.MinHorizontalAccuracy {
		p.reject(fix, reasonAccuracy)
		return nil
	}

	if age := p.now().Sub(fix.Timestamp); age > p.cfg.MaxFixAge {
		p.reject(fix, reasonStale)
		return nil
	}

	var dist, implied float64
	if p.lastFix != nil {
		dt := fix.Timestamp.Sub(p.lastFix.Timestamp)
		if dt <= 0 {
			// Out of order or duplicate timestamp.
			p.reject(fix, reasonStale)
			return nil
		}

		dist = geo.Haversine(p.lastFix.Coordinate(), fix.Coordinate())
		implied = dist / dt.Seconds()
		if implied > p.cfg.MaxSpeed {
			p.reject(fix, reasonJump)
			return nil
		}
	}

	speed := fix.Speed
	if speed < 0 {
		speed = implied
	}

	wasPaused := p.paused
	pausedNow := p.evaluateAutoPause(fix.Timestamp, speed)
	transition := pausedNow != wasPaused

	if p.lastFix != nil && dist < p.cfg.MinDistance && !transition {
		p.reject(fix, reasonNoiseFloor)
		return nil
	}

	p.paused = pausedNow
	if transition {
		direction := "resumed"
		if pausedNow {
			direction = "paused"
		}
		metrics.AutoPauseTransitions.WithLabelValues(direction).Inc()
		logging.Debug().
			Str("direction", direction).
			Time("at", fix.Timestamp).
			Msg("auto-pause transition")
	}

	fixCopy := fix
	p.lastFix = &fixCopy
	p.accepted++
	metrics.FixesAccepted.Inc()

	return &models.ProcessedFix{
		RawFix:              fix,
		IncrementalDistance: dist,
		ComputedSpeed:       speed,
		IsAutoPaused:        pausedNow,
		AutoPauseChanged:    transition,
	}
}

// evaluateAutoPause returns the pause state implied by this fix and
// advances the movement clock. Must be called with mu held.
func (p *Processor) evaluateAutoPause(ts time.Time, speed float64) bool {
	if p.lastMovement.IsZero() {
		// Session start is the initial movement reference.
		p.lastMovement = ts
	}

	if speed >= p.cfg.AutoPauseSpeedThreshold {
		p.lastMovement = ts
		return false
	}

	if !p.paused && ts.Sub(p.lastMovement) >= p.cfg.AutoPauseDwell {
		return true
	}
	return p.paused
}

// reject logs and counts a dropped fix. Must be called with mu held.
func (p *Processor) reject(fix models.RawFix, reason string) {
	p.rejected[reason]++
	metrics.FixesRejected.WithLabelValues(reason).Inc()
	logging.Debug().
		Str("reason", reason).
		Float64("lat", fix.Latitude).
		Float64("lon", fix.Longitude).
		Float64("accuracy", fix.HorizontalAccuracy).
		Time("at", fix.Timestamp).
		Msg("fix rejected")
}

// IsAutoPaused reports the current auto-pause state.
func (p *Processor) IsAutoPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Reset clears the last-fix and movement state. Called once per new
// session.
func (p *Processor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastFix = nil
	p.paused = false
	p.lastMovement = time.Time{}
	p.accepted = 0
	p.rejected = make(map[string]uint64)
}

// DebugInfo returns a one-line diagnostic summary.
func (p *Processor) DebugInfo() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := uint64(0)
	for _, n := range p.rejected {
		total += n
	}
	return fmt.Sprintf("location: accepted=%d rejected=%d (accuracy=%d stale=%d jump=%d noise=%d) autoPaused=%v",
		p.accepted, total,
		p.rejected[reasonAccuracy], p.rejected[reasonStale],
		p.rejected[reasonJump], p.rejected[reasonNoiseFloor],
		p.paused)
}
