// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package geo provides the small set of geodesic helpers shared by the
// tracking engine: great-circle distance, coordinate quantization for
// cache keys, and epsilon-safe coordinate comparisons.
package geo

import (
	"fmt"
	"math"
)

// earthRadiusMeters is the mean Earth radius used by the Haversine formula.
const earthRadiusMeters = 6371000.0

// coordEpsilon is the tolerance for treating two coordinates as equal.
// DETERMINISM: direct float equality on coordinates is unreliable; an
// epsilon of 1e-9 degrees (~0.1 mm) is far below GPS resolution.
const coordEpsilon = 1e-9

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Haversine returns the great-circle distance in meters between two
// coordinates.
func Haversine(from, to Coordinate) float64 {
	lat1 := from.Latitude * math.Pi / 180
	lat2 := to.Latitude * math.Pi / 180
	dLat := (to.Latitude - from.Latitude) * math.Pi / 180
	dLon := (to.Longitude - from.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// QuantizeKey maps a coordinate to a cache-key string by truncating to
// four decimal places (~11 m of latitude). Nearby queries collapse onto
// the same key, which keeps proximity-cache lookups O(1).
func QuantizeKey(c Coordinate) string {
	lat := math.Trunc(c.Latitude*1e4) / 1e4
	lon := math.Trunc(c.Longitude*1e4) / 1e4
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// IsZero reports whether the coordinate is the (0,0) null-island
// placeholder used for unknown locations.
func IsZero(c Coordinate) bool {
	return math.Abs(c.Latitude) < coordEpsilon && math.Abs(c.Longitude) < coordEpsilon
}

// Equal reports whether two coordinates are equal within epsilon.
func Equal(a, b Coordinate) bool {
	return math.Abs(a.Latitude-b.Latitude) < coordEpsilon &&
		math.Abs(a.Longitude-b.Longitude) < coordEpsilon
}
