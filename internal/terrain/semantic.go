// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package terrain

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/ambulo/internal/geo"
	"github.com/tomtom215/ambulo/internal/logging"
	"github.com/tomtom215/ambulo/internal/metrics"
	"github.com/tomtom215/ambulo/internal/models"
)

// Geocoder is the reverse-geocoding collaborator contract. Lookups must
// honor context cancellation; the classifier applies its own timeout.
type Geocoder interface {
	Lookup(ctx context.Context, coord geo.Coordinate) (*models.PlaceAttributes, error)
}

// Semantic-estimator policy values.
const (
	semanticBaseConfidence   = 0.6
	semanticFailedConfidence = 0.2
	wildernessModifier       = 1.1
	urbanLocalityModifier    = 0.7
	winterHintModifier       = 0.8
	stairsBuildingModifier   = 0.7
)

// keywordRule maps substring evidence in one place field to a category
// and a confidence modifier.
type keywordRule struct {
	keywords []string
	category models.TerrainCategory
	modifier float64
}

// thoroughfareRules classify by road/path name.
var thoroughfareRules = []keywordRule{
	{[]string{"trail", "path", "track", "footway", "singletrack"}, models.TerrainTrail, 1.0},
	{[]string{"gravel", "fire road", "forest road"}, models.TerrainGravel, 1.0},
	{[]string{"stairs", "steps", "staircase"}, models.TerrainStairs, stairsBuildingModifier},
	{[]string{"road", "street", "avenue", "boulevard", "lane", "drive", "way"}, models.TerrainPavedRoad, 1.0},
}

// areaRules classify by area-of-interest name.
var areaRules = []keywordRule{
	{[]string{"ski", "winter", "glacier", "snow"}, models.TerrainSnow, winterHintModifier},
	{[]string{"beach", "dune", "shore"}, models.TerrainSand, 1.0},
	{[]string{"marsh", "swamp", "wetland", "bog"}, models.TerrainMud, 1.0},
	{[]string{"garden", "lawn", "meadow", "pitch", "green"}, models.TerrainGrass, 1.0},
	{[]string{"wilderness", "forest", "park", "reserve", "mountain", "canyon"}, models.TerrainTrail, wildernessModifier},
	{[]string{"building", "mall", "station", "stadium"}, models.TerrainStairs, stairsBuildingModifier},
}

// semanticEstimate classifies a coordinate by reverse geocoding. On
// timeout or lookup failure it returns a low fixed-confidence default
// instead of an error; terrain classification must never stall or fail
// the tracking loop.
func (c *Classifier) semanticEstimate(ctx context.Context, coord geo.Coordinate, at time.Time) models.TerrainClassification {
	fallback := models.TerrainClassification{
		Category:   models.TerrainPavedRoad,
		Confidence: semanticFailedConfidence,
		Timestamp:  at,
	}

	if c.geocoder == nil {
		return fallback
	}

	lookupCtx, cancel := context.WithTimeout(ctx, c.cfg.GeocodeTimeout)
	defer cancel()

	place, err := c.geocoder.Lookup(lookupCtx, coord)
	if err != nil {
		outcome := "error"
		if lookupCtx.Err() == context.DeadlineExceeded {
			outcome = "timeout"
		}
		metrics.GeocodeLookups.WithLabelValues(outcome).Inc()
		logging.Ctx(ctx).Debug().Err(err).
			Float64("lat", coord.Latitude).
			Float64("lon", coord.Longitude).
			Msg("geocode lookup failed, using semantic fallback")
		return fallback
	}
	metrics.GeocodeLookups.WithLabelValues("ok").Inc()

	return classifyPlace(place, at)
}

// classifyPlace keyword-matches place attributes into a terrain
// category. Field priority: water bodies, then the named road/path,
// then areas of interest, then the urban-locality default.
func classifyPlace(place *models.PlaceAttributes, at time.Time) models.TerrainClassification {
	result := models.TerrainClassification{
		Category:   models.TerrainPavedRoad,
		Confidence: semanticFailedConfidence,
		Timestamp:  at,
	}
	if place == nil {
		return result
	}

	if place.Ocean != "" {
		result.Category = models.TerrainSand
		result.Confidence = semanticBaseConfidence
		return result
	}
	if place.InlandWater != "" {
		result.Category = models.TerrainMud
		result.Confidence = semanticBaseConfidence
		return result
	}

	if cat, mod, ok := matchRules(thoroughfareRules, place.Thoroughfare); ok {
		result.Category = cat
		result.Confidence = clampConfidence(semanticBaseConfidence * mod)
		return result
	}

	if cat, mod, ok := matchRules(areaRules, place.AreaOfInterest); ok {
		result.Category = cat
		result.Confidence = clampConfidence(semanticBaseConfidence * mod)
		return result
	}

	if place.Locality != "" {
		// Urban context with no named surface: most likely pavement,
		// held at reduced confidence.
		result.Category = models.TerrainPavedRoad
		result.Confidence = clampConfidence(semanticBaseConfidence * urbanLocalityModifier)
		return result
	}

	return result
}

// matchRules returns the first rule whose keyword occurs in the field.
func matchRules(rules []keywordRule, field string) (models.TerrainCategory, float64, bool) {
	if field == "" {
		return "", 0, false
	}
	lower := strings.ToLower(field)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category, rule.modifier, true
			}
		}
	}
	return "", 0, false
}

// clampConfidence bounds a confidence to [0,1].
func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
