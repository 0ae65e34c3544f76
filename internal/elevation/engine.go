// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package elevation fuses barometric relative altitude with positional
// altitude into a single elevation estimate with cumulative gain/loss
// and grade.
//
// The barometer reports altitude relative to its own arbitrary zero
// point. Once a reliable positional altitude and a barometric reading
// coexist, the engine derives an anchor (positional minus relative);
// from then on the barometric path provides smooth absolute elevation:
//
//	fused = anchor + barometric_relative
//
// Without a barometer the noisier positional altitude is used directly,
// smoothed by a single-axis recursive filter, with confidence derived
// from the reported vertical accuracy.
package elevation

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/tomtom215/ambulo/internal/models"
)

// Tier selects the engine's accuracy/power trade-off.
type Tier string

const (
	TierPrecise      Tier = "precise"
	TierBalanced     Tier = "balanced"
	TierBatterySaver Tier = "battery_saver"
)

// tierParams holds the per-tier tuning values.
type tierParams struct {
	// sampleInterval is the minimum spacing between samples that count
	// toward gain/loss.
	sampleInterval time.Duration

	// minDelta is the elevation change in meters required before a
	// delta counts toward gain or loss.
	minDelta float64

	// processNoise and measurementNoise tune the positional-path
	// smoother; larger measurement noise trusts the GPS altitude less.
	processNoise     float64
	measurementNoise float64
}

// params maps each tier to its tuning values.
var params = map[Tier]tierParams{
	TierPrecise:      {sampleInterval: time.Second, minDelta: 0.5, processNoise: 0.05, measurementNoise: 1.0},
	TierBalanced:     {sampleInterval: 2 * time.Second, minDelta: 1.0, processNoise: 0.02, measurementNoise: 2.0},
	TierBatterySaver: {sampleInterval: 5 * time.Second, minDelta: 2.0, processNoise: 0.01, measurementNoise: 4.0},
}

// ParseTier maps a config string onto a Tier, defaulting to balanced.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierPrecise, TierBalanced, TierBatterySaver:
		return Tier(s)
	default:
		return TierBalanced
	}
}

// Engine fuses elevation sources for one session. All mutable state is
// guarded by mu.
type Engine struct {
	tier tierParams
	name Tier

	mu           sync.Mutex
	anchor       *float64
	lastFused    *float64
	lastSampleAt time.Time
	gain         float64
	loss         float64
	smoother     smoother
	samples      uint64
}

// smoother is a single-axis recursive estimator applied to the
// positional-altitude path.
type smoother struct {
	estimate    float64
	variance    float64
	initialized bool
}

// step folds one measurement into the estimate.
func (s *smoother) step(measurement, processNoise, measurementNoise float64) float64 {
	if !s.initialized {
		s.estimate = measurement
		s.variance = measurementNoise
		s.initialized = true
		return s.estimate
	}

	s.variance += processNoise
	gain := s.variance / (s.variance + measurementNoise)
	s.estimate += gain * (measurement - s.estimate)
	s.variance *= 1 - gain
	return s.estimate
}

// NewEngine creates an elevation fusion engine for the given tier.
func NewEngine(tier Tier) *Engine {
	p, ok := params[tier]
	if !ok {
		tier = TierBalanced
		p = params[TierBalanced]
	}
	return &Engine{tier: p, name: tier}
}

// Process fuses one elevation observation.
//
// positional is the GPS altitude in meters, vAccuracy its reported
// vertical accuracy, barometric the relative-altitude reading when one
// is available, and horizDistance the horizontal meters traveled since
// the previous sample (zero when unknown; grade is then omitted).
func (e *Engine) Process(timestamp time.Time, positional, vAccuracy float64, barometric *float64, horizDistance float64) models.ElevationSample {
	e.mu.Lock()
	defer e.mu.Unlock()

	sample := models.ElevationSample{
		Raw:                positional,
		BarometricRelative: barometric,
		Timestamp:          timestamp,
	}

	if barometric != nil && e.anchor == nil && vAccuracy > 0 && vAccuracy <= 10 {
		anchor := positional - *barometric
		e.anchor = &anchor
	}

	if barometric != nil && e.anchor != nil {
		sample.Fused = *e.anchor + *barometric
		sample.Confidence = clamp(1-vAccuracy/10, 0.7, 1.0)
	} else {
		sample.Fused = e.smoother.step(positional, e.tier.processNoise, e.tier.measurementNoise)
		if vAccuracy > 0 {
			sample.Confidence = clamp(10/vAccuracy, 0, 1)
		} else {
			sample.Confidence = 0.5
		}
	}

	if e.lastFused != nil {
		delta := sample.Fused - *e.lastFused
		if horizDistance > 0 {
			grade := delta / horizDistance * 100
			sample.Grade = &grade
		}

		intervalOK := e.lastSampleAt.IsZero() || timestamp.Sub(e.lastSampleAt) >= e.tier.sampleInterval
		if sample.Confidence > 0.5 && math.Abs(delta) >= e.tier.minDelta && intervalOK {
			if delta > 0 {
				e.gain += delta
			} else {
				e.loss += -delta
			}
			fused := sample.Fused
			e.lastFused = &fused
			e.lastSampleAt = timestamp
		}
	} else {
		fused := sample.Fused
		e.lastFused = &fused
		e.lastSampleAt = timestamp
	}

	e.samples++
	return sample
}

// Gain returns the cumulative elevation gain in meters.
func (e *Engine) Gain() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gain
}

// Loss returns the cumulative elevation loss in meters.
func (e *Engine) Loss() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loss
}

// Reset clears the anchor, last elevation, and accumulators. Called at
// session start.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.anchor = nil
	e.lastFused = nil
	e.lastSampleAt = time.Time{}
	e.gain = 0
	e.loss = 0
	e.smoother = smoother{}
	e.samples = 0
}

// DebugInfo returns a one-line diagnostic summary.
func (e *Engine) DebugInfo() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	anchored := e.anchor != nil
	return fmt.Sprintf("elevation: tier=%s samples=%d anchored=%v gain=%.1fm loss=%.1fm",
		e.name, e.samples, anchored, e.gain, e.loss)
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
