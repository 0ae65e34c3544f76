// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package coordinator owns the session lifecycle state machine and the
// tracking loop. It is the single writer of the TrackingSession
// aggregate: fixes flow in arrival order through validation, metrics,
// and the fan-out, and every persistence write originates here.
//
// States are Stopped, Tracking, and Paused. Calling a transition from
// an invalid source state is a logged no-op, never fatal.
package coordinator
