// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package models

import (
	"time"

	"github.com/tomtom215/ambulo/internal/geo"
)

// RawFix is one timestamped positioning sample as delivered by the
// positioning collaborator. Immutable; one per sensor sample.
type RawFix struct {
	Timestamp          time.Time `json:"timestamp"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	Altitude           float64   `json:"altitude"`
	HorizontalAccuracy float64   `json:"horizontal_accuracy"`
	VerticalAccuracy   float64   `json:"vertical_accuracy"`

	// Speed is the receiver-reported ground speed in m/s. Negative
	// means the receiver did not provide one.
	Speed float64 `json:"speed"`

	// Course is the heading in degrees from true north. Negative means
	// unavailable.
	Course float64 `json:"course"`

	// IsKeyPoint marks fixes the acquisition layer considers route
	// defining (turns, waypoint hits). Carried through untouched.
	IsKeyPoint bool `json:"is_key_point,omitempty"`
}

// Coordinate returns the fix position as a geo.Coordinate.
func (f RawFix) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: f.Latitude, Longitude: f.Longitude}
}

// ProcessedFix is a RawFix that passed every quality gate, annotated
// with the increments derived from the previously accepted fix.
type ProcessedFix struct {
	RawFix

	// IncrementalDistance is the meters traveled since the last
	// accepted fix. Zero for the first fix of a session.
	IncrementalDistance float64 `json:"incremental_distance"`

	// ComputedSpeed is the instantaneous speed in m/s: the reported
	// speed when the receiver provides one, otherwise derived from
	// IncrementalDistance over elapsed time.
	ComputedSpeed float64 `json:"computed_speed"`

	// IsAutoPaused reports the auto-pause state after this fix.
	IsAutoPaused bool `json:"is_auto_paused"`

	// AutoPauseChanged is set exactly on the fix where IsAutoPaused
	// flipped, in either direction.
	AutoPauseChanged bool `json:"auto_pause_changed,omitempty"`
}
