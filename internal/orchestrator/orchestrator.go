// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/elevation"
	"github.com/tomtom215/ambulo/internal/geo"
	"github.com/tomtom215/ambulo/internal/logging"
	"github.com/tomtom215/ambulo/internal/metrics"
	"github.com/tomtom215/ambulo/internal/models"
	"github.com/tomtom215/ambulo/internal/terrain"
)

// WeatherService is the weather collaborator contract. Fetch must honor
// context cancellation; the orchestrator applies its own timeout and
// wall-clock throttle.
type WeatherService interface {
	Fetch(ctx context.Context, coord geo.Coordinate) (*models.WeatherSnapshot, error)
}

// MotionAnalyzer is the motion-analysis collaborator contract.
type MotionAnalyzer interface {
	Analyze(ctx context.Context, fix models.ProcessedFix) (*models.MotionState, error)
}

// TickResult carries whatever the fan-out produced for one accepted
// fix. Weather and Motion are nil when throttled, disabled, or failed;
// the tick itself never fails.
type TickResult struct {
	Elevation *models.ElevationSample
	Terrain   *models.TerrainClassification
	Weather   *models.WeatherSnapshot
	Motion    *models.MotionState
}

// Orchestrator owns the per-tick fan-out. It holds no mutable state of
// its own beyond the weather limiter; the subsystems it calls guard
// their own state.
type Orchestrator struct {
	elevation *elevation.Engine
	terrain   *terrain.Classifier
	weather   WeatherService
	motion    MotionAnalyzer

	weatherLimiter *rate.Limiter
	weatherTimeout time.Duration

	mu    sync.Mutex
	ticks uint64
}

// New creates an orchestrator. A nil weather service or motion analyzer
// disables that task; elevation and terrain are required.
func New(cfg config.WeatherConfig, elev *elevation.Engine, terr *terrain.Classifier, weather WeatherService, motion MotionAnalyzer) *Orchestrator {
	return &Orchestrator{
		elevation:      elev,
		terrain:        terr,
		weather:        weather,
		motion:         motion,
		weatherLimiter: rate.NewLimiter(rate.Every(cfg.FetchInterval), 1),
		weatherTimeout: cfg.Timeout,
	}
}

// ProcessFix runs one fan-out tick for an accepted fix. The barometric
// argument is the most recent relative-altitude sample, nil when the
// barometer is unavailable. All tasks complete before ProcessFix
// returns; a panicking or erroring task yields a nil slot in the
// result, nothing more.
func (o *Orchestrator) ProcessFix(ctx context.Context, fix models.ProcessedFix, barometric *float64) TickResult {
	o.mu.Lock()
	o.ticks++
	o.mu.Unlock()

	var (
		wg     sync.WaitGroup
		result TickResult
	)

	wg.Add(1)
	go o.runTask(ctx, "elevation", &wg, func() error {
		sample := o.elevation.Process(fix.Timestamp, fix.Altitude, fix.VerticalAccuracy,
			barometric, fix.IncrementalDistance)
		result.Elevation = &sample
		return nil
	})

	wg.Add(1)
	go o.runTask(ctx, "terrain", &wg, func() error {
		cls := o.terrain.Classify(ctx, terrain.Query{
			Latitude:           fix.Latitude,
			Longitude:          fix.Longitude,
			Altitude:           fix.Altitude,
			Speed:              fix.ComputedSpeed,
			HorizontalAccuracy: fix.HorizontalAccuracy,
			Timestamp:          fix.Timestamp,
		})
		result.Terrain = &cls
		return nil
	})

	if o.weather != nil {
		wg.Add(1)
		go o.runTask(ctx, "weather", &wg, func() error {
			return o.fetchWeather(ctx, fix.Coordinate(), &result)
		})
	}

	if o.motion != nil {
		wg.Add(1)
		go o.runTask(ctx, "motion", &wg, func() error {
			state, err := o.motion.Analyze(ctx, fix)
			if err != nil {
				return fmt.Errorf("motion analysis: %w", err)
			}
			result.Motion = state
			return nil
		})
	}

	wg.Wait()
	return result
}

// fetchWeather applies the wall-clock throttle and the fetch timeout. A
// throttled tick is not a failure.
func (o *Orchestrator) fetchWeather(ctx context.Context, coord geo.Coordinate, result *TickResult) error {
	if !o.weatherLimiter.Allow() {
		metrics.WeatherFetches.WithLabelValues("throttled").Inc()
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.weatherTimeout)
	defer cancel()

	snapshot, err := o.weather.Fetch(fetchCtx, coord)
	if err != nil {
		metrics.WeatherFetches.WithLabelValues("error").Inc()
		return fmt.Errorf("weather fetch: %w", err)
	}
	metrics.WeatherFetches.WithLabelValues("ok").Inc()
	result.Weather = snapshot
	return nil
}

// runTask executes one fan-out task with panic and error containment.
// Failures are absorbed here so sibling tasks always run to completion.
func (o *Orchestrator) runTask(ctx context.Context, name string, wg *sync.WaitGroup, fn func() error) {
	defer wg.Done()

	start := time.Now()
	defer func() {
		metrics.FanoutTaskDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			metrics.FanoutTaskFailures.WithLabelValues(name).Inc()
			logging.Ctx(ctx).Error().
				Str("task", name).
				Interface("panic", r).
				Msg("fan-out task panicked")
		}
	}()

	if err := fn(); err != nil {
		metrics.FanoutTaskFailures.WithLabelValues(name).Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("task", name).Msg("fan-out task failed")
	}
}

// DebugInfo returns a one-line diagnostic summary.
func (o *Orchestrator) DebugInfo() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return fmt.Sprintf("orchestrator: ticks=%d weather=%t motion=%t",
		o.ticks, o.weather != nil, o.motion != nil)
}
