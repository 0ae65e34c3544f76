// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package provider

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/ambulo/internal/geo"
	"github.com/tomtom215/ambulo/internal/logging"
	"github.com/tomtom215/ambulo/internal/metrics"
	"github.com/tomtom215/ambulo/internal/models"
	"github.com/tomtom215/ambulo/internal/orchestrator"
	"github.com/tomtom215/ambulo/internal/terrain"
)

// Breaker settings shared by both external HTTP collaborators. The
// breaker protects the upstream, not the tracking loop: the loop is
// already insulated by per-task error absorption, so tripping only
// stops us hammering a dead endpoint.
//
// DETERMINISM NOTE: gobreaker uses real time for its interval and
// timeout windows. Tests exercise the wrapped client directly rather
// than waiting out breaker transitions.
func newBreaker[T any](name string) *gobreaker.CircuitBreaker[T] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := breakerStateString(from), breakerStateString(to)
			logging.Info().
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
}

func breakerStateString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// BreakerGeocoder wraps any geocoder in a circuit breaker.
type BreakerGeocoder struct {
	inner terrain.Geocoder
	cb    *gobreaker.CircuitBreaker[*models.PlaceAttributes]
}

// NewBreakerGeocoder wraps client; a nil client yields nil so callers
// can chain constructors without checking. The parameter is the
// concrete type on purpose: a typed-nil *HTTPGeocoder inside a
// terrain.Geocoder interface would defeat the nil guard.
func NewBreakerGeocoder(client *HTTPGeocoder) *BreakerGeocoder {
	if client == nil {
		return nil
	}
	return &BreakerGeocoder{
		inner: client,
		cb:    newBreaker[*models.PlaceAttributes]("geocoder"),
	}
}

// Lookup delegates through the breaker. An open circuit fails fast with
// gobreaker.ErrOpenState, which the terrain classifier absorbs like any
// lookup failure.
func (b *BreakerGeocoder) Lookup(ctx context.Context, coord geo.Coordinate) (*models.PlaceAttributes, error) {
	return b.cb.Execute(func() (*models.PlaceAttributes, error) {
		return b.inner.Lookup(ctx, coord)
	})
}

// BreakerWeather wraps any weather service in a circuit breaker.
type BreakerWeather struct {
	inner orchestrator.WeatherService
	cb    *gobreaker.CircuitBreaker[*models.WeatherSnapshot]
}

// NewBreakerWeather wraps client; nil in, nil out, with the same
// concrete parameter type as NewBreakerGeocoder.
func NewBreakerWeather(client *HTTPWeatherService) *BreakerWeather {
	if client == nil {
		return nil
	}
	return &BreakerWeather{
		inner: client,
		cb:    newBreaker[*models.WeatherSnapshot]("weather"),
	}
}

// Fetch delegates through the breaker.
func (b *BreakerWeather) Fetch(ctx context.Context, coord geo.Coordinate) (*models.WeatherSnapshot, error) {
	return b.cb.Execute(func() (*models.WeatherSnapshot, error) {
		return b.inner.Fetch(ctx, coord)
	})
}
