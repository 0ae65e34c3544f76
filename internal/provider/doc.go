// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package provider holds the default implementations of the external
// collaborator contracts: the HTTP reverse geocoder and weather client
// (each with a circuit-breaker wrapper), the Badger checkpoint sink,
// and the simulated positioning and motion sources used by demo mode
// and tests. The engine packages define the contracts; nothing here is
// required to run the tracking core.
package provider
