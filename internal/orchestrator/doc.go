// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package orchestrator fans one accepted fix out to the elevation,
// terrain, weather, and motion subsystems concurrently. Every task in a
// tick completes or reports failure before the tick is done; a failing
// task is caught and logged at its own boundary and never cancels its
// siblings. Weather fetches are additionally throttled to wall time,
// independent of fix rate.
package orchestrator
