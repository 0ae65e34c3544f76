// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package metrics provides Prometheus instrumentation for the tracking
// engine: fix validation outcomes, auto-pause transitions, terrain
// cache efficiency, collaborator call results, fan-out latency, and
// checkpoint health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Fix pipeline

	FixesAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ambulo_fixes_accepted_total",
			Help: "Total number of raw fixes accepted by the location processor",
		},
	)

	FixesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambulo_fixes_rejected_total",
			Help: "Total number of raw fixes rejected by the location processor",
		},
		[]string{"reason"}, // "accuracy", "stale", "jump", "noise_floor"
	)

	AutoPauseTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambulo_auto_pause_transitions_total",
			Help: "Auto-pause state transitions detected",
		},
		[]string{"direction"}, // "paused", "resumed"
	)

	// Terrain classification

	TerrainCacheOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambulo_terrain_cache_operations_total",
			Help: "Terrain cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "swept"
	)

	GeocodeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambulo_geocode_lookups_total",
			Help: "Reverse-geocoding lookups by outcome",
		},
		[]string{"outcome"}, // "ok", "timeout", "error", "rejected"
	)

	// Orchestrator fan-out

	FanoutTaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ambulo_fanout_task_duration_seconds",
			Help:    "Duration of per-tick fan-out tasks",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task"}, // "elevation", "terrain", "weather", "motion"
	)

	FanoutTaskFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambulo_fanout_task_failures_total",
			Help: "Fan-out tasks that returned an error or panicked",
		},
		[]string{"task"},
	)

	WeatherFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambulo_weather_fetches_total",
			Help: "Weather collaborator calls by outcome",
		},
		[]string{"outcome"}, // "ok", "error", "throttled"
	)

	// Session lifecycle and persistence

	TrackingState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ambulo_tracking_state",
			Help: "Current coordinator state (0=stopped, 1=tracking, 2=paused)",
		},
	)

	InvalidTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambulo_invalid_transitions_total",
			Help: "Lifecycle calls made from an invalid source state",
		},
		[]string{"operation"}, // "start", "pause", "resume", "stop"
	)

	CheckpointWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambulo_checkpoint_writes_total",
			Help: "Session persistence checkpoint attempts by outcome",
		},
		[]string{"outcome"}, // "ok", "error", "retried"
	)

	// Circuit breakers around external collaborators

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ambulo_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambulo_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// trackingStateValue maps coordinator states onto the gauge encoding.
var trackingStateValue = map[string]float64{
	"stopped":  0,
	"tracking": 1,
	"paused":   2,
}

// SetTrackingState records the coordinator's current state.
func SetTrackingState(state string) {
	if v, ok := trackingStateValue[state]; ok {
		TrackingState.Set(v)
	}
}
