// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package main is the entry point for the Ambulo tracking daemon.
//
// Ambulo turns a live stream of noisy positioning and motion sensor
// readings into trustworthy session metrics: distance, pace, elevation
// gain and loss, terrain, and pause state, continuously while the
// activity is in progress.
//
// # Application Architecture
//
// The daemon initializes components in the following order:
//
//  1. Configuration: layered load from defaults, config.yaml, and
//     AMBULO_* environment variables (Koanf v2)
//  2. Persistence: BadgerDB checkpoint store (in-memory when no path
//     is configured)
//  3. Engine: location processor, pace calculator, elevation fusion,
//     terrain classifier, and the fan-out orchestrator
//  4. Collaborators: reverse geocoder and weather client, each behind
//     a circuit breaker; simulated positioning in demo mode
//  5. Surfaces: websocket snapshot hub and the observer HTTP API
//  6. Supervision: a two-layer suture tree runs everything
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (AMBULO_SECTION_KEY form)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The daemon shuts down gracefully on SIGINT and SIGTERM: the active
// session (if any) is stopped and finalized, a last checkpoint is
// written, and the HTTP server drains in-flight requests.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/ambulo/internal/api"
	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/coordinator"
	"github.com/tomtom215/ambulo/internal/elevation"
	"github.com/tomtom215/ambulo/internal/location"
	"github.com/tomtom215/ambulo/internal/logging"
	"github.com/tomtom215/ambulo/internal/orchestrator"
	"github.com/tomtom215/ambulo/internal/pace"
	"github.com/tomtom215/ambulo/internal/provider"
	"github.com/tomtom215/ambulo/internal/stream"
	"github.com/tomtom215/ambulo/internal/supervisor"
	"github.com/tomtom215/ambulo/internal/terrain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("elevation_tier", cfg.Elevation.Tier).
		Str("persistence_path", cfg.Persistence.Path).
		Bool("geocoder", cfg.Geocoder.URL != "").
		Bool("weather", cfg.Weather.URL != "").
		Msg("configuration loaded")

	sink, err := provider.NewBadgerSink(cfg.Persistence)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open checkpoint store")
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing checkpoint store")
		}
	}()

	// Engine subsystems. The breaker wrappers return nil for nil
	// inners, so a missing URL cleanly disables that collaborator.
	var geocoder terrain.Geocoder
	if g := provider.NewBreakerGeocoder(provider.NewHTTPGeocoder(cfg.Geocoder)); g != nil {
		geocoder = g
	}
	var weather orchestrator.WeatherService
	if w := provider.NewBreakerWeather(provider.NewHTTPWeatherService(cfg.Weather)); w != nil {
		weather = w
	}

	elev := elevation.NewEngine(elevation.ParseTier(cfg.Elevation.Tier))
	classifier := terrain.NewClassifier(cfg.Terrain, geocoder)
	orch := orchestrator.New(cfg.Weather, elev, classifier, weather, nil)
	saver := coordinator.NewSaver(cfg.Persistence, sink)

	// Demo acquisition: a simulated walk plus a simulated barometer.
	// Real deployments inject hardware-backed sources here.
	positioning := provider.NewSimulatedPositioning(46.0, 7.0, 3.0, time.Second)
	motion := provider.NewSimulatedMotion(2 * time.Second)

	coord := coordinator.New(coordinator.Config{
		Coordinator: cfg.Coordinator,
		Positioning: positioning,
		Motion:      motion,
		Processor:   location.NewProcessor(cfg.Location),
		Calculator:  pace.NewCalculator(cfg.Pace),
		Elevation:   elev,
		Classifier:  classifier,
		Orch:        orch,
		Saver:       saver,
	})

	hub := stream.NewHub()
	publisher := stream.NewPublisher(coord, hub, cfg.Coordinator.LoopInterval)
	server := api.NewServer(cfg.Server, coord, hub)

	tree := supervisor.NewTree(slog.Default(), supervisor.DefaultTreeConfig())
	tree.AddEngineService(coord)
	tree.AddEngineService(classifier)
	tree.AddEngineService(saver)
	tree.AddSurfaceService(hub)
	tree.AddSurfaceService(publisher)
	tree.AddSurfaceService(server)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := coord.Start(ctx); err != nil {
		logging.Fatal().Err(err).Msg("failed to start tracking session")
	}

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("ambulo started")
	if err := tree.Serve(ctx); err != nil && err != context.Canceled {
		logging.Error().Err(err).Msg("supervisor tree exited")
		os.Exit(1)
	}
	logging.Info().Msg("ambulo stopped")
}
