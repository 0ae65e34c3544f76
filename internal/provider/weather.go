// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/geo"
	"github.com/tomtom215/ambulo/internal/models"
)

// HTTPWeatherService fetches current conditions from an
// open-meteo-compatible endpoint. The orchestrator throttles calls to
// wall time and treats any failure as a skipped fetch, so no retries
// here either.
type HTTPWeatherService struct {
	baseURL string
	client  *http.Client
}

// NewHTTPWeatherService creates a weather client for cfg.URL. Returns
// nil when the URL is empty, which disables weather fetches entirely.
func NewHTTPWeatherService(cfg config.WeatherConfig) *HTTPWeatherService {
	if cfg.URL == "" {
		return nil
	}
	return &HTTPWeatherService{
		baseURL: cfg.URL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type weatherResponse struct {
	Current struct {
		TemperatureC float64 `json:"temperature_2m"`
		Humidity     float64 `json:"relative_humidity_2m"`
		WindSpeed    float64 `json:"wind_speed_10m"`
		WeatherCode  int     `json:"weather_code"`
	} `json:"current"`
}

// Fetch retrieves a weather snapshot for one coordinate.
func (w *HTTPWeatherService) Fetch(ctx context.Context, coord geo.Coordinate) (*models.WeatherSnapshot, error) {
	reqURL := fmt.Sprintf(
		"%s/forecast?latitude=%.4f&longitude=%.4f&current=temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code&wind_speed_unit=ms",
		w.baseURL, coord.Latitude, coord.Longitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, fmt.Errorf("weather request: unexpected status %d", resp.StatusCode)
	}

	var payload weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	return &models.WeatherSnapshot{
		TemperatureCelsius: payload.Current.TemperatureC,
		HumidityPercent:    payload.Current.Humidity,
		WindSpeedMS:        payload.Current.WindSpeed,
		Condition:          weatherCondition(payload.Current.WeatherCode),
		FetchedAt:          time.Now().UTC(),
	}, nil
}

// weatherCondition folds WMO weather codes into coarse buckets.
func weatherCondition(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 3:
		return "partly_cloudy"
	case code <= 48:
		return "fog"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "rain"
	case code <= 86:
		return "snow"
	default:
		return "thunderstorm"
	}
}
