// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ambulo/config.yaml",
	"/etc/ambulo/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix namespaces Ambulo's environment variables.
const envPrefix = "AMBULO_"

// Default returns a Config with every field set to its built-in default.
// The defaults describe a running/hiking session at balanced power use.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Location: LocationConfig{
			MinHorizontalAccuracy:   20,               // meters
			MinDistance:             1,                // meters
			MaxSpeed:                13.8,             // m/s, ~sprint ceiling for a human
			MaxFixAge:               5 * time.Second,  //
			AutoPauseSpeedThreshold: 0.5,              // m/s
			AutoPauseDwell:          30 * time.Second, //
		},
		Pace: PaceConfig{
			WindowSize:         5,
			MinWindowDistance:  10,
			MinAverageDistance: 100,
		},
		Elevation: ElevationConfig{
			Tier: "balanced",
		},
		Terrain: TerrainConfig{
			CacheTTL:         5 * time.Minute,
			CacheRadius:      25,
			SweepInterval:    time.Minute,
			GeocodeTimeout:   5 * time.Second,
			MaxQueryAccuracy: 100,
		},
		Weather: WeatherConfig{
			URL:           "",
			FetchInterval: 5 * time.Minute,
			Timeout:       10 * time.Second,
		},
		Geocoder: GeocoderConfig{
			URL:     "",
			Timeout: 5 * time.Second,
		},
		Coordinator: CoordinatorConfig{
			LoopInterval:    time.Second,
			CheckpointEvery: 10,
		},
		Persistence: PersistenceConfig{
			Path:          "",
			RetryInterval: 15 * time.Second,
			QueueSize:     64,
		},
		Server: ServerConfig{
			Host:      "127.0.0.1",
			Port:      3858,
			Timeout:   30 * time.Second,
			RateLimit: 300,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// and AMBULO_-prefixed environment variables, then validates it.
//
// Environment variable names map onto config paths:
//
//	AMBULO_LOCATION_MAX_SPEED        -> location.max_speed
//	AMBULO_TERRAIN_CACHE_TTL         -> terrain.cache_ttl
//	AMBULO_SERVER_PORT               -> server.port
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps AMBULO_SECTION_SOME_KEY to section.some_key.
// Only the first underscore separates the section; the rest of the key
// keeps its underscores.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		return key
	}
	return parts[0] + "." + parts[1]
}
