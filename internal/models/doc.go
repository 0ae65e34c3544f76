// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package models defines the domain types shared across the tracking
// engine: raw and processed sensor fixes, cumulative session metrics,
// fused elevation samples, terrain classifications, and the
// TrackingSession aggregate that ties one activity together.
//
// Data flow between the types:
//
//	RawFix -> location.Processor -> ProcessedFix
//	ProcessedFix -> pace.Calculator -> SessionMetrics
//	ProcessedFix -> orchestrator -> ElevationSample + TerrainClassification
//	all of the above -> coordinator -> TrackingSession
//
// All types in this package are plain data. Mutation rules live with
// their owning components: SessionMetrics is mutated only by
// pace.Calculator, TrackingSession only by coordinator.Coordinator.
package models
