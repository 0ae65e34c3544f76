// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package provider

import (
	"math"
	"sync"
	"time"

	"github.com/tomtom215/ambulo/internal/models"
)

// SimulatedPositioning emits a synthetic walk north from a start
// coordinate at a fixed cadence. Used by demo mode and tests; it never
// fails to start and always reports authorized.
type SimulatedPositioning struct {
	interval time.Duration
	lat      float64
	lon      float64
	stepM    float64

	mu     sync.Mutex
	fixes  chan models.RawFix
	ticker *time.Ticker
	stop   chan struct{}
	step   int
}

// NewSimulatedPositioning creates a source stepping stepMeters every
// interval from the given origin.
func NewSimulatedPositioning(lat, lon, stepMeters float64, interval time.Duration) *SimulatedPositioning {
	return &SimulatedPositioning{
		interval: interval,
		lat:      lat,
		lon:      lon,
		stepM:    stepMeters,
		fixes:    make(chan models.RawFix, 64),
	}
}

// metersPerDegreeLat is close enough over simulated distances.
const metersPerDegreeLat = 111195.0

// StartUpdates begins emitting fixes. Idempotent.
func (s *SimulatedPositioning) StartUpdates() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker != nil {
		return nil
	}

	s.ticker = time.NewTicker(s.interval)
	s.stop = make(chan struct{})
	go s.emit(s.ticker, s.stop)
	return nil
}

func (s *SimulatedPositioning) emit(ticker *time.Ticker, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			s.step++
			fix := models.RawFix{
				Timestamp:          now,
				Latitude:           s.lat + float64(s.step)*s.stepM/metersPerDegreeLat,
				Longitude:          s.lon,
				Altitude:           400 + 5*math.Sin(float64(s.step)/20),
				HorizontalAccuracy: 5,
				VerticalAccuracy:   4,
				Speed:              s.stepM / s.interval.Seconds(),
			}
			s.mu.Unlock()

			select {
			case s.fixes <- fix:
			default:
				// Consumer stalled; drop rather than block the ticker.
			}
		}
	}
}

// StopUpdates pauses emission without closing the fix channel.
func (s *SimulatedPositioning) StopUpdates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.ticker = nil
	s.stop = nil
}

// RequestAuthorization always grants.
func (s *SimulatedPositioning) RequestAuthorization() models.AuthStatus {
	return models.AuthStatusAuthorized
}

// Fixes returns the fix channel.
func (s *SimulatedPositioning) Fixes() <-chan models.RawFix {
	return s.fixes
}

// SimulatedMotion emits a slow sinusoidal relative-altitude signal,
// standing in for a barometer.
type SimulatedMotion struct {
	interval time.Duration

	mu      sync.Mutex
	samples chan models.BarometricSample
	ticker  *time.Ticker
	stop    chan struct{}
	step    int
}

// NewSimulatedMotion creates a barometer source at the given cadence.
func NewSimulatedMotion(interval time.Duration) *SimulatedMotion {
	return &SimulatedMotion{
		interval: interval,
		samples:  make(chan models.BarometricSample, 64),
	}
}

// StartUpdates begins emitting samples. Idempotent.
func (m *SimulatedMotion) StartUpdates() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ticker != nil {
		return nil
	}

	m.ticker = time.NewTicker(m.interval)
	m.stop = make(chan struct{})
	go m.emit(m.ticker, m.stop)
	return nil
}

func (m *SimulatedMotion) emit(ticker *time.Ticker, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			m.step++
			sample := models.BarometricSample{
				RelativeAltitude: 5 * math.Sin(float64(m.step)/20),
				Timestamp:        now,
			}
			m.mu.Unlock()

			select {
			case m.samples <- sample:
			default:
			}
		}
	}
}

// StopUpdates pauses emission without closing the sample channel.
func (m *SimulatedMotion) StopUpdates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ticker == nil {
		return
	}
	m.ticker.Stop()
	close(m.stop)
	m.ticker = nil
	m.stop = nil
}

// Samples returns the sample channel.
func (m *SimulatedMotion) Samples() <-chan models.BarometricSample {
	return m.samples
}
