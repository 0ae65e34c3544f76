// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

// Package config loads and validates engine configuration using Koanf
// v2 with layered sources (highest priority wins):
//
//  1. Environment variables with the AMBULO_ prefix
//  2. Optional YAML config file (CONFIG_PATH or ./config.yaml)
//  3. Built-in defaults
//
// Every tunable threshold of the tracking engine lives here so that the
// components themselves stay free of magic numbers. Invalid
// configuration is rejected at load time, before a session can start.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the tracking engine.
type Config struct {
	Logging     LoggingConfig     `koanf:"logging"`
	Location    LocationConfig    `koanf:"location"`
	Pace        PaceConfig        `koanf:"pace"`
	Elevation   ElevationConfig   `koanf:"elevation"`
	Terrain     TerrainConfig     `koanf:"terrain"`
	Weather     WeatherConfig     `koanf:"weather"`
	Geocoder    GeocoderConfig    `koanf:"geocoder"`
	Coordinator CoordinatorConfig `koanf:"coordinator"`
	Persistence PersistenceConfig `koanf:"persistence"`
	Server      ServerConfig      `koanf:"server"`
}

// LoggingConfig mirrors internal/logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// LocationConfig holds the location processor's quality gates.
type LocationConfig struct {
	// MinHorizontalAccuracy is the worst acceptable horizontal
	// accuracy in meters; fixes above it are rejected.
	MinHorizontalAccuracy float64 `koanf:"min_horizontal_accuracy" validate:"gt=0"`

	// MinDistance is the noise floor in meters below which movement is
	// ignored.
	MinDistance float64 `koanf:"min_distance" validate:"gt=0"`

	// MaxSpeed is the maximum plausible speed in m/s; implied speeds
	// above it are treated as GPS jumps.
	MaxSpeed float64 `koanf:"max_speed" validate:"gt=0"`

	// MaxFixAge is how stale a fix may be before rejection.
	MaxFixAge time.Duration `koanf:"max_fix_age" validate:"gt=0"`

	// AutoPauseSpeedThreshold is the speed in m/s below which the
	// subject counts as stationary.
	AutoPauseSpeedThreshold float64 `koanf:"auto_pause_speed_threshold" validate:"gt=0"`

	// AutoPauseDwell is how long speed must stay below the threshold
	// before auto-pause engages.
	AutoPauseDwell time.Duration `koanf:"auto_pause_dwell" validate:"gt=0"`
}

// PaceConfig holds the metrics calculator's tunables.
type PaceConfig struct {
	// WindowSize is the rolling-window length in fixes.
	WindowSize int `koanf:"window_size" validate:"gt=0"`

	// MinWindowDistance is the meters of windowed travel required
	// before current pace is recomputed.
	MinWindowDistance float64 `koanf:"min_window_distance" validate:"gt=0"`

	// MinAverageDistance is the total meters required before average
	// pace is reported.
	MinAverageDistance float64 `koanf:"min_average_distance" validate:"gt=0"`
}

// ElevationConfig selects the fusion engine's accuracy tier.
type ElevationConfig struct {
	// Tier is one of precise, balanced, battery_saver.
	Tier string `koanf:"tier" validate:"oneof=precise balanced battery_saver"`
}

// TerrainConfig holds the terrain classifier's tunables.
type TerrainConfig struct {
	// CacheTTL is how long a cache entry stays valid.
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gt=0"`

	// CacheRadius is the proximity bound in meters for cache hits.
	CacheRadius float64 `koanf:"cache_radius" validate:"gt=0"`

	// SweepInterval is how often expired entries are swept.
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gt=0"`

	// GeocodeTimeout bounds each reverse-geocoding lookup.
	GeocodeTimeout time.Duration `koanf:"geocode_timeout" validate:"gt=0"`

	// MaxQueryAccuracy is the horizontal-accuracy quality gate in
	// meters; worse fixes skip classification entirely.
	MaxQueryAccuracy float64 `koanf:"max_query_accuracy" validate:"gt=0"`
}

// WeatherConfig holds the weather collaborator settings.
type WeatherConfig struct {
	// URL is the weather endpoint; empty disables weather fetches.
	URL string `koanf:"url" validate:"omitempty,url"`

	// FetchInterval is the minimum wall time between fetches.
	FetchInterval time.Duration `koanf:"fetch_interval" validate:"gt=0"`

	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// GeocoderConfig holds the reverse-geocoding collaborator settings.
type GeocoderConfig struct {
	// URL is the reverse-geocoding endpoint; empty disables the
	// semantic terrain estimator.
	URL string `koanf:"url" validate:"omitempty,url"`

	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// CoordinatorConfig holds the tracking-loop timings.
type CoordinatorConfig struct {
	// LoopInterval is the pacing delay between loop iterations.
	LoopInterval time.Duration `koanf:"loop_interval" validate:"gt=0"`

	// CheckpointEvery is the number of accepted fixes between
	// persistence checkpoints.
	CheckpointEvery int `koanf:"checkpoint_every" validate:"gt=0"`
}

// PersistenceConfig holds the checkpoint sink settings.
type PersistenceConfig struct {
	// Path is the Badger store directory. Empty selects an in-memory
	// store (tests, demo mode).
	Path string `koanf:"path"`

	// RetryInterval is the delay between retries of failed writes.
	RetryInterval time.Duration `koanf:"retry_interval" validate:"gt=0"`

	// QueueSize bounds the async checkpoint queue.
	QueueSize int `koanf:"queue_size" validate:"gt=0"`
}

// ServerConfig holds the observer API settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gt=0,lte=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// RateLimit is the per-client request ceiling per minute.
	RateLimit int `koanf:"rate_limit" validate:"gt=0"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate checks the configuration against struct tags plus the
// cross-field rules the tags cannot express. Fails before start() is
// reachable; a running session never sees invalid configuration.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Location.AutoPauseSpeedThreshold >= c.Location.MaxSpeed {
		return fmt.Errorf("invalid configuration: auto_pause_speed_threshold (%.2f) must be below max_speed (%.2f)",
			c.Location.AutoPauseSpeedThreshold, c.Location.MaxSpeed)
	}
	if c.Pace.MinWindowDistance > c.Pace.MinAverageDistance {
		return fmt.Errorf("invalid configuration: min_window_distance (%.0f) must not exceed min_average_distance (%.0f)",
			c.Pace.MinWindowDistance, c.Pace.MinAverageDistance)
	}
	if c.Terrain.SweepInterval > c.Terrain.CacheTTL {
		return fmt.Errorf("invalid configuration: sweep_interval (%s) must not exceed cache_ttl (%s)",
			c.Terrain.SweepInterval, c.Terrain.CacheTTL)
	}

	return nil
}
