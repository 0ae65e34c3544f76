// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package api exposes the read-only observer surface over HTTP: health,
// the current session snapshot, per-subsystem debug info, Prometheus
// metrics, and the websocket snapshot stream. The tracking engine owns
// no wire protocol; this surface is a viewport, not a control plane —
// lifecycle control stays with the process embedding the coordinator.
package api
