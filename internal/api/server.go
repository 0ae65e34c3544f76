// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/coordinator"
	"github.com/tomtom215/ambulo/internal/logging"
	"github.com/tomtom215/ambulo/internal/stream"
)

// Server is the observer HTTP server.
type Server struct {
	cfg   config.ServerConfig
	coord *coordinator.Coordinator
	srv   *http.Server
}

// NewServer builds the router and wraps it in an http.Server. The hub
// may be nil, which disables the websocket endpoint.
func NewServer(cfg config.ServerConfig, coord *coordinator.Coordinator, hub *stream.Hub) *Server {
	s := &Server{cfg: cfg, coord: coord}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
		r.Get("/session", s.handleSession)
		r.Get("/session/debug", s.handleDebug)
	})

	if hub != nil {
		r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
			stream.ServeWS(hub, w, req)
		})
	}

	s.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Timeout,
		WriteTimeout:      cfg.Timeout,
	}
	return s
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Serve runs the listener until the context is canceled, then shuts
// down gracefully. It satisfies suture.Service.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.cfg.Addr()).Msg("observer API listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error().Err(err).Msg("observer API shutdown failed")
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *Server) String() string { return "observer-api" }
