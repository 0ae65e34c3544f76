// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package elevation

import (
	"math"
	"testing"
	"time"
)

func f64(v float64) *float64 { return &v }

// Barometer available, anchor 100 m, relative readings 0, +2, +5,
// vertical accuracy 2 m: confidence 0.8 each, fused 100/102/105, gain
// accumulates 2 then 3.
func TestProcessBarometricFusion(t *testing.T) {
	e := NewEngine(TierPrecise)
	base := time.Now()

	inputs := []struct {
		offset     time.Duration
		relative   float64
		wantFused  float64
		wantGainTo float64
	}{
		{0, 0, 100, 0},
		{time.Second, 2, 102, 2},
		{2 * time.Second, 5, 105, 5},
	}

	for i, in := range inputs {
		s := e.Process(base.Add(in.offset), 100, 2, f64(in.relative), 3)
		if math.Abs(s.Fused-in.wantFused) > 1e-9 {
			t.Errorf("sample %d: fused = %.3f, want %.3f", i, s.Fused, in.wantFused)
		}
		if math.Abs(s.Confidence-0.8) > 1e-9 {
			t.Errorf("sample %d: confidence = %.3f, want 0.8", i, s.Confidence)
		}
		if got := e.Gain(); math.Abs(got-in.wantGainTo) > 1e-9 {
			t.Errorf("sample %d: gain = %.3f, want %.3f", i, got, in.wantGainTo)
		}
	}

	if e.Loss() != 0 {
		t.Errorf("loss = %.3f, want 0", e.Loss())
	}
}

func TestProcessPositionalOnly(t *testing.T) {
	e := NewEngine(TierPrecise)
	base := time.Now()

	s := e.Process(base, 250, 2, nil, 0)
	if math.Abs(s.Fused-250) > 1e-9 {
		t.Errorf("first positional sample should pass through, got %.3f", s.Fused)
	}
	if s.Confidence != 1.0 {
		t.Errorf("confidence = %.3f, want 1.0 for 2 m vertical accuracy", s.Confidence)
	}
}

func TestConfidenceBounds(t *testing.T) {
	base := time.Now()

	tests := []struct {
		name       string
		vAccuracy  float64
		barometric *float64
	}{
		{"perfect baro", 0.1, f64(0)},
		{"poor baro", 50, f64(0)},
		{"perfect positional", 0.1, nil},
		{"poor positional", 200, nil},
		{"unknown accuracy", 0, nil},
		{"negative accuracy", -3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(TierBalanced)
			if tt.barometric != nil {
				// Establish an anchor with a good reading first.
				e.Process(base, 100, 2, f64(0), 0)
			}
			s := e.Process(base.Add(time.Second), 100, tt.vAccuracy, tt.barometric, 0)
			if s.Confidence < 0 || s.Confidence > 1 {
				t.Errorf("confidence %.3f outside [0,1]", s.Confidence)
			}
		})
	}
}

func TestAnchorRequiresReliableAltitude(t *testing.T) {
	e := NewEngine(TierPrecise)
	base := time.Now()

	// 50 m vertical accuracy is not anchor-worthy; the engine falls
	// back to the positional path.
	s := e.Process(base, 100, 50, f64(0), 0)
	if s.Confidence > 0.5 {
		t.Errorf("confidence = %.3f, expected degraded positional confidence", s.Confidence)
	}

	// A reliable fix later establishes the anchor.
	s = e.Process(base.Add(time.Second), 100, 2, f64(0), 0)
	if math.Abs(s.Fused-100) > 1e-9 || s.Confidence < 0.7 {
		t.Errorf("expected anchored fusion, got fused=%.3f conf=%.3f", s.Fused, s.Confidence)
	}
}

func TestGainGatedByMinDelta(t *testing.T) {
	e := NewEngine(TierBatterySaver) // minDelta 2 m
	base := time.Now()

	e.Process(base, 100, 2, f64(0), 0)
	// +1 m is below the 2 m tier minimum: no accumulation.
	e.Process(base.Add(5*time.Second), 100, 2, f64(1), 0)
	if e.Gain() != 0 {
		t.Errorf("gain = %.3f, want 0 below tier minimum", e.Gain())
	}

	// Drift accumulates against the last counted elevation: +2.5 m
	// from the anchor point now exceeds the minimum.
	e.Process(base.Add(10*time.Second), 100, 2, f64(2.5), 0)
	if math.Abs(e.Gain()-2.5) > 1e-9 {
		t.Errorf("gain = %.3f, want 2.5", e.Gain())
	}
}

func TestGainGatedByConfidence(t *testing.T) {
	e := NewEngine(TierPrecise)
	base := time.Now()

	// Positional-only with 40 m vertical accuracy: confidence 0.25.
	e.Process(base, 100, 40, nil, 0)
	e.Process(base.Add(time.Second), 110, 40, nil, 0)
	if e.Gain() != 0 {
		t.Errorf("gain = %.3f, want 0 when confidence <= 0.5", e.Gain())
	}
}

func TestGainGatedBySampleInterval(t *testing.T) {
	e := NewEngine(TierBalanced) // 2 s interval
	base := time.Now()

	e.Process(base, 100, 2, f64(0), 0)
	// Only 500 ms later: delta large enough but too soon to count.
	e.Process(base.Add(500*time.Millisecond), 100, 2, f64(3), 0)
	if e.Gain() != 0 {
		t.Errorf("gain = %.3f, want 0 inside the sampling interval", e.Gain())
	}

	e.Process(base.Add(3*time.Second), 100, 2, f64(3), 0)
	if math.Abs(e.Gain()-3) > 1e-9 {
		t.Errorf("gain = %.3f, want 3 after the interval", e.Gain())
	}
}

func TestLossAccumulation(t *testing.T) {
	e := NewEngine(TierPrecise)
	base := time.Now()

	e.Process(base, 500, 2, f64(0), 0)
	e.Process(base.Add(time.Second), 500, 2, f64(-4), 0)
	e.Process(base.Add(2*time.Second), 500, 2, f64(-7), 0)

	if math.Abs(e.Loss()-7) > 1e-9 {
		t.Errorf("loss = %.3f, want 7", e.Loss())
	}
	if e.Gain() != 0 {
		t.Errorf("gain = %.3f, want 0 on descent", e.Gain())
	}
}

func TestGrade(t *testing.T) {
	e := NewEngine(TierPrecise)
	base := time.Now()

	e.Process(base, 100, 2, f64(0), 0)
	s := e.Process(base.Add(time.Second), 100, 2, f64(5), 100)

	if s.Grade == nil {
		t.Fatal("expected a grade with horizontal distance known")
	}
	if math.Abs(*s.Grade-5.0) > 1e-9 {
		t.Errorf("grade = %.3f%%, want 5%%", *s.Grade)
	}

	// No horizontal distance: grade omitted.
	s = e.Process(base.Add(2*time.Second), 100, 2, f64(6), 0)
	if s.Grade != nil {
		t.Error("grade should be omitted without horizontal distance")
	}
}

func TestReset(t *testing.T) {
	e := NewEngine(TierPrecise)
	base := time.Now()

	e.Process(base, 100, 2, f64(0), 0)
	e.Process(base.Add(time.Second), 100, 2, f64(5), 0)
	if e.Gain() == 0 {
		t.Fatal("expected gain before reset")
	}

	e.Reset()

	if e.Gain() != 0 || e.Loss() != 0 {
		t.Error("reset should clear accumulators")
	}

	// The anchor is gone: a fresh positional baseline applies.
	s := e.Process(base.Add(2*time.Second), 300, 2, nil, 0)
	if math.Abs(s.Fused-300) > 1e-9 {
		t.Errorf("expected fresh baseline after reset, got %.3f", s.Fused)
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		input string
		want  Tier
	}{
		{"precise", TierPrecise},
		{"balanced", TierBalanced},
		{"battery_saver", TierBatterySaver},
		{"", TierBalanced},
		{"ludicrous", TierBalanced},
	}

	for _, tt := range tests {
		if got := ParseTier(tt.input); got != tt.want {
			t.Errorf("ParseTier(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
