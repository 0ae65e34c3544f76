// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package models

import "time"

// AuthStatus is the positioning collaborator's authorization state.
type AuthStatus string

const (
	AuthStatusAuthorized AuthStatus = "authorized"
	AuthStatusDenied     AuthStatus = "denied"
	AuthStatusUndecided  AuthStatus = "undecided"
)

// PlaceAttributes is the reverse-geocoding collaborator's response for
// one coordinate. Empty fields mean the attribute is unknown.
type PlaceAttributes struct {
	// Thoroughfare is the road or path name ("Via delle Foppe",
	// "Ridge Trail").
	Thoroughfare string `json:"thoroughfare,omitempty"`

	// AreaOfInterest names a park, reserve, beach, or similar feature.
	AreaOfInterest string `json:"area_of_interest,omitempty"`

	// Locality is the town or city name; non-empty implies an urban
	// context.
	Locality string `json:"locality,omitempty"`

	InlandWater string `json:"inland_water,omitempty"`
	Ocean       string `json:"ocean,omitempty"`
	Country     string `json:"country,omitempty"`
}

// BarometricSample is one relative-altitude reading pushed by the
// motion/barometer collaborator. RelativeAltitude is meters from the
// barometer's own zero point, not above sea level.
type BarometricSample struct {
	RelativeAltitude float64   `json:"relative_altitude"`
	Pressure         float64   `json:"pressure,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}
