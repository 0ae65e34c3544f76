// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package terrain classifies the surface under the subject's feet by
// fusing two independent estimators:
//
//   - the semantic estimator reverse-geocodes the coordinate (bounded
//     by a timeout) and keyword-matches the returned place attributes;
//   - the heuristic estimator uses altitude, latitude, and speed bands
//     with no network dependency.
//
// Results are fused with a confidence-weighted policy that prefers
// strong semantic evidence, rewards agreement, and degrades gracefully
// when the geocoder is slow or unavailable. A TTL+proximity cache keyed
// by quantized coordinates keeps repeat queries along a route from
// hammering the geocoder; a periodic sweep drops expired entries.
//
// The fusion constants are tuned policy values, not precision
// guarantees; they are centralized at the top of classifier.go.
package terrain
