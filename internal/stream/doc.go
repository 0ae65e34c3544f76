// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package stream pushes read-only session snapshots to websocket
// observers at tick cadence. The hub owns the client set; the publisher
// polls the coordinator and broadcasts. Observers never mutate session
// state through this surface.
package stream
