// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package models

import "time"

// TerrainCategory is the closed set of surfaces the classifier can
// report. The set is fixed; switch statements over it should be
// exhaustive.
type TerrainCategory string

const (
	TerrainPavedRoad TerrainCategory = "paved_road"
	TerrainTrail     TerrainCategory = "trail"
	TerrainGravel    TerrainCategory = "gravel"
	TerrainSand      TerrainCategory = "sand"
	TerrainMud       TerrainCategory = "mud"
	TerrainSnow      TerrainCategory = "snow"
	TerrainStairs    TerrainCategory = "stairs"
	TerrainGrass     TerrainCategory = "grass"
)

// TerrainCategories lists every valid category, in declaration order.
var TerrainCategories = []TerrainCategory{
	TerrainPavedRoad,
	TerrainTrail,
	TerrainGravel,
	TerrainSand,
	TerrainMud,
	TerrainSnow,
	TerrainStairs,
	TerrainGrass,
}

// Valid reports whether the category is one of the closed set.
func (c TerrainCategory) Valid() bool {
	switch c {
	case TerrainPavedRoad, TerrainTrail, TerrainGravel, TerrainSand,
		TerrainMud, TerrainSnow, TerrainStairs, TerrainGrass:
		return true
	}
	return false
}

// TerrainClassification is one classifier output: a category with a
// normalized confidence and, when horizontal travel is known, a grade.
type TerrainClassification struct {
	Category TerrainCategory `json:"category"`

	// Confidence is in [0,1].
	Confidence float64 `json:"confidence"`

	// Grade is the surface slope in percent, when derivable.
	Grade *float64 `json:"grade,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// TerrainSegment is a run of consecutive accepted fixes sharing one
// terrain category, recorded on the session aggregate.
type TerrainSegment struct {
	Category   TerrainCategory `json:"category"`
	Confidence float64         `json:"confidence"`
	StartIndex int             `json:"start_index"`
	EndIndex   int             `json:"end_index"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
}
