// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package orchestrator

import "time"

// DetailLevel is the positioning-detail request passed back to the
// acquisition collaborator.
type DetailLevel string

const (
	DetailBest     DetailLevel = "best"
	DetailBalanced DetailLevel = "balanced"
	DetailReduced  DetailLevel = "reduced"
)

// AcquisitionParams trades fix frequency and detail against power.
type AcquisitionParams struct {
	UpdateInterval time.Duration
	DetailLevel    DetailLevel
}

// Battery and speed thresholds for the acquisition recommendation.
const (
	batteryComfortable = 0.5
	batteryLow         = 0.2
	fastMovementMS     = 3.0
)

// RecommendedAcquisitionParams is a pure function of power state and
// current speed. Charging always gets full detail. On battery, detail
// steps down with charge level, except that fast movement holds the
// update interval at one tier better so distance accumulation does not
// degrade mid-run.
func RecommendedAcquisitionParams(batteryLevel float64, isCharging bool, currentSpeed float64) AcquisitionParams {
	if isCharging || batteryLevel >= batteryComfortable {
		return AcquisitionParams{UpdateInterval: time.Second, DetailLevel: DetailBest}
	}

	if batteryLevel >= batteryLow {
		p := AcquisitionParams{UpdateInterval: 2 * time.Second, DetailLevel: DetailBalanced}
		if currentSpeed > fastMovementMS {
			p.UpdateInterval = time.Second
		}
		return p
	}

	p := AcquisitionParams{UpdateInterval: 5 * time.Second, DetailLevel: DetailReduced}
	if currentSpeed > fastMovementMS {
		p.UpdateInterval = 2 * time.Second
	}
	return p
}
