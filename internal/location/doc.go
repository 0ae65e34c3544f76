// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package location validates the raw positioning stream. It is the
// first stage of the fix pipeline: every raw fix passes through
// Processor.Process, which either rejects it against the configured
// quality gates (accuracy floor, staleness, implausible jumps, noise
// floor) or promotes it to a ProcessedFix carrying the incremental
// distance and speed derived from the previously accepted fix.
//
// The processor also owns the auto-pause sub-state: it watches the
// instantaneous speed and flips the pause flag once the subject has
// been effectively stationary for the configured dwell time. Movement
// at or above the threshold clears the pause immediately.
package location
