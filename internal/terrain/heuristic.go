// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package terrain

import (
	"math"
	"time"

	"github.com/tomtom215/ambulo/internal/models"
)

// Heuristic band boundaries. Confidences stay in 0.3-0.5: without
// semantic evidence these are educated guesses only.
const (
	snowAltitudeMeters  = 3000.0
	trailAltitudeMeters = 1200.0
	polarLatitudeDeg    = 66.0
	pavedSpeedMS        = 3.5
	trailSpeedMS        = 2.0
)

// heuristicEstimate classifies from altitude, latitude, and speed bands
// with no network dependency.
func heuristicEstimate(q Query) models.TerrainClassification {
	cat, conf := heuristicBand(q.Altitude, q.Latitude, q.Speed)
	return models.TerrainClassification{
		Category:   cat,
		Confidence: conf,
		Timestamp:  q.Timestamp,
	}
}

// heuristicBand applies the bands in priority order: altitude first
// (strongest physical signal), then polar latitude, then speed.
func heuristicBand(altitude, latitude, speed float64) (models.TerrainCategory, float64) {
	switch {
	case altitude > snowAltitudeMeters:
		return models.TerrainSnow, 0.4
	case altitude > trailAltitudeMeters:
		return models.TerrainTrail, 0.45
	case math.Abs(latitude) > polarLatitudeDeg:
		return models.TerrainSnow, 0.35
	case speed > pavedSpeedMS:
		// Sustained fast movement implies a smooth, firm surface.
		return models.TerrainPavedRoad, 0.5
	case speed > trailSpeedMS:
		return models.TerrainTrail, 0.35
	default:
		return models.TerrainGrass, 0.3
	}
}

// Query is one terrain-classification request.
type Query struct {
	Latitude           float64
	Longitude          float64
	Altitude           float64
	Speed              float64
	HorizontalAccuracy float64
	Timestamp          time.Time
}
