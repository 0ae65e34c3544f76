// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// contextKey is the private type for context keys in this package.
type contextKey string

const (
	// sessionIDKey is the context key for tracking-session IDs.
	sessionIDKey contextKey = "session_id"
)

// GenerateCorrelationID creates a new short correlation ID.
// Returns the first 8 characters of a UUID for readability.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// ContextWithSessionID returns a new context carrying the given
// tracking-session ID. All log events built via Ctx will include it.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext retrieves the tracking-session ID from context.
// Returns empty string if not present.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns a logger that includes the session ID from the context,
// if one is present. Use this inside the tracking loop and fan-out
// tasks so every event can be tied back to its session.
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := Logger()
	if id := SessionIDFromContext(ctx); id != "" {
		logger = logger.With().Str("session_id", id).Logger()
	}
	return &logger
}
