// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package api

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/ambulo/internal/logging"
)

// healthResponse is the /healthz payload.
type healthResponse struct {
	Status    string `json:"status"`
	State     string `json:"state"`
	Timestamp string `json:"timestamp"`
}

// debugResponse is the /api/v1/session/debug payload.
type debugResponse struct {
	State            string `json:"state"`
	PossibleDataLoss bool   `json:"possible_data_loss"`
	Subsystems       string `json:"subsystems"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		State:     string(s.coord.State()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.Snapshot())
}

func (s *Server) handleDebug(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, debugResponse{
		State:            string(s.coord.State()),
		PossibleDataLoss: s.coord.PossibleDataLoss(),
		Subsystems:       s.coord.DebugInfo(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}
