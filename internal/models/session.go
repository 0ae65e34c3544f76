// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackingState is the coordinator's lifecycle state. Stopped is both
// the initial and the terminal state.
type TrackingState string

const (
	StateStopped  TrackingState = "stopped"
	StateTracking TrackingState = "tracking"
	StatePaused   TrackingState = "paused"
)

// SessionMetrics is the cumulative view of one activity session.
// Owned and mutated only by pace.Calculator; everyone else sees
// snapshots.
type SessionMetrics struct {
	// TotalDistance in meters. Monotonically non-decreasing; equals
	// the sum of accepted-fix deltas.
	TotalDistance float64 `json:"total_distance"`

	// TotalDuration is wall time since the first accepted fix.
	TotalDuration time.Duration `json:"total_duration"`

	// ActiveDuration excludes auto-paused and manually paused time.
	ActiveDuration time.Duration `json:"active_duration"`

	// CurrentPace is the rolling-window pace in minutes per kilometer.
	// Zero until the window holds at least 10 m of travel.
	CurrentPace float64 `json:"current_pace"`

	// AveragePace is total-distance pace in minutes per kilometer over
	// active duration. Zero until 100 m of total distance.
	AveragePace float64 `json:"average_pace"`

	// InstantSpeed is the last accepted fix's speed in m/s.
	InstantSpeed float64 `json:"instant_speed"`

	IsAutoPaused bool `json:"is_auto_paused"`
}

// ElevationSample is one fused elevation estimate.
type ElevationSample struct {
	// Fused is the best elevation estimate in meters.
	Fused float64 `json:"fused"`

	// Raw is the unfused positional altitude in meters.
	Raw float64 `json:"raw"`

	// BarometricRelative is the barometer's relative altitude reading,
	// when one was available for this sample.
	BarometricRelative *float64 `json:"barometric_relative,omitempty"`

	// Confidence is in [0,1].
	Confidence float64 `json:"confidence"`

	// Grade is percent slope since the previous sample, when
	// horizontal travel is known.
	Grade *float64 `json:"grade,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// WeatherSnapshot is the environmental state fetched from the weather
// collaborator, at most once per five minutes.
type WeatherSnapshot struct {
	TemperatureCelsius float64   `json:"temperature_celsius"`
	HumidityPercent    float64   `json:"humidity_percent"`
	WindSpeedMS        float64   `json:"wind_speed_ms"`
	Condition          string    `json:"condition"`
	FetchedAt          time.Time `json:"fetched_at"`
}

// MotionState is the motion-analysis collaborator's per-tick output.
type MotionState struct {
	ActivityType string    `json:"activity_type"`
	CadenceSPM   float64   `json:"cadence_spm"`
	Timestamp    time.Time `json:"timestamp"`
}

// TrackingSession is the aggregate for one activity. Created on start,
// mutated only by the coordinator, finalized and handed to the
// persistence sink on stop.
type TrackingSession struct {
	ID        uuid.UUID  `json:"id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Metrics       SessionMetrics `json:"metrics"`
	ElevationGain float64        `json:"elevation_gain"`
	ElevationLoss float64        `json:"elevation_loss"`

	// Fixes is the append-only, arrival-ordered sequence of accepted
	// fixes.
	Fixes []ProcessedFix `json:"fixes"`

	TerrainSegments []TerrainSegment `json:"terrain_segments,omitempty"`

	Weather *WeatherSnapshot `json:"weather,omitempty"`
}

// NewTrackingSession creates an empty session aggregate starting now.
func NewTrackingSession() *TrackingSession {
	return &TrackingSession{
		ID:        uuid.New(),
		StartTime: time.Now().UTC(),
	}
}
