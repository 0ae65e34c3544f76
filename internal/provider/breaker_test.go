// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/geo"
)

func TestBreakerGeocoderPassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"address":{"city":"Bern"}}`)) //nolint:errcheck
	}))
	defer server.Close()

	b := NewBreakerGeocoder(NewHTTPGeocoder(config.GeocoderConfig{URL: server.URL, Timeout: 2 * time.Second}))
	if b == nil {
		t.Fatal("expected a live wrapper for a configured geocoder")
	}

	place, err := b.Lookup(context.Background(), geo.Coordinate{})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if place.Locality != "Bern" {
		t.Errorf("locality = %q, want Bern", place.Locality)
	}
}

func TestBreakerGeocoderOpensOnSustainedFailure(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	b := NewBreakerGeocoder(NewHTTPGeocoder(config.GeocoderConfig{URL: server.URL, Timeout: 2 * time.Second}))

	for i := 0; i < 5; i++ {
		if _, err := b.Lookup(context.Background(), geo.Coordinate{}); err == nil {
			t.Fatalf("call %d should propagate the failure", i)
		}
	}

	// The window now holds five failures out of five requests; the
	// next call must be rejected without reaching the endpoint.
	_, err := b.Lookup(context.Background(), geo.Coordinate{})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want open-circuit rejection", err)
	}
	if got := hits.Load(); got != 5 {
		t.Errorf("endpoint hits = %d, want 5 (open circuit must fail fast)", got)
	}
}

// The wrappers must stay nil through the full construction chain used
// at startup: an unset URL makes the HTTP constructor return a nil
// pointer, and the breaker constructor takes that pointer as its
// concrete type so the nil survives instead of becoming a typed-nil
// interface.
func TestBreakerWrappersNilThroughConstructorChain(t *testing.T) {
	if b := NewBreakerGeocoder(NewHTTPGeocoder(config.GeocoderConfig{})); b != nil {
		t.Error("empty geocoder URL should yield a nil wrapper")
	}
	if b := NewBreakerWeather(NewHTTPWeatherService(config.WeatherConfig{})); b != nil {
		t.Error("empty weather URL should yield a nil wrapper")
	}
	if NewBreakerGeocoder(nil) != nil {
		t.Error("nil geocoder should yield a nil wrapper")
	}
	if NewBreakerWeather(nil) != nil {
		t.Error("nil weather service should yield a nil wrapper")
	}
}
