// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package location

import (
	"math"
	"testing"
	"time"

	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/models"
)

// threeMetersLat is the latitude delta corresponding to ~3 m of travel.
const threeMetersLat = 3.0 / 111195.0

func testConfig() config.LocationConfig {
	return config.Default().Location
}

// testClock drives a Processor's staleness clock from the fix stream
// itself, so synthetic timestamps far from wall time stay fresh.
type testClock struct {
	current time.Time
}

func newTestProcessor(base time.Time) (*Processor, *testClock) {
	p := NewProcessor(testConfig())
	clk := &testClock{current: base}
	p.now = func() time.Time { return clk.current }
	return p, clk
}

// feed advances the clock to the fix timestamp and processes it.
func feed(p *Processor, clk *testClock, fix models.RawFix) *models.ProcessedFix {
	clk.current = fix.Timestamp
	return p.Process(fix)
}

func fixAt(base time.Time, offset time.Duration, lat, lon, speed float64) models.RawFix {
	return models.RawFix{
		Timestamp:          base.Add(offset),
		Latitude:           lat,
		Longitude:          lon,
		Altitude:           120,
		HorizontalAccuracy: 5,
		VerticalAccuracy:   3,
		Speed:              speed,
	}
}

// Ten fixes, each 3 m further along a line, 1 s apart, 5 m accuracy,
// 3 m/s: all accepted, cumulative distance 27 m, never auto-paused.
func TestProcessSteadyRun(t *testing.T) {
	base := time.Now()
	p, clk := newTestProcessor(base)

	var total float64
	for i := 0; i < 10; i++ {
		fix := fixAt(base, time.Duration(i)*time.Second, 46.0+float64(i)*threeMetersLat, 7.0, 3.0)
		got := feed(p, clk, fix)
		if got == nil {
			t.Fatalf("fix %d unexpectedly rejected", i)
		}
		if got.IsAutoPaused {
			t.Errorf("fix %d: auto-pause should stay false", i)
		}
		if i == 0 && got.IncrementalDistance != 0 {
			t.Errorf("first fix should contribute zero distance, got %.3f", got.IncrementalDistance)
		}
		total += got.IncrementalDistance
	}

	if math.Abs(total-27.0) > 0.1 {
		t.Errorf("cumulative distance = %.3f m, want 27 m", total)
	}
}

// Speed 0 for 35 consecutive seconds against a 30 s dwell: auto-pause
// flips exactly once, on the fix crossing the 30 s mark.
func TestProcessAutoPauseDwell(t *testing.T) {
	base := time.Now()
	p, clk := newTestProcessor(base)

	transitions := 0
	var transitionOffset time.Duration
	for i := 0; i <= 35; i++ {
		offset := time.Duration(i) * time.Second
		got := feed(p, clk, fixAt(base, offset, 46.0, 7.0, 0))
		if got != nil && got.AutoPauseChanged {
			transitions++
			transitionOffset = offset
			if !got.IsAutoPaused {
				t.Error("transition fix should report paused state")
			}
		}
	}

	if transitions != 1 {
		t.Fatalf("expected exactly one auto-pause transition, got %d", transitions)
	}
	if transitionOffset != 30*time.Second {
		t.Errorf("transition at %s, want 30s", transitionOffset)
	}
	if !p.IsAutoPaused() {
		t.Error("processor should remain paused")
	}
}

func TestProcessAutoPauseClearsOnMovement(t *testing.T) {
	base := time.Now()
	p, clk := newTestProcessor(base)

	for i := 0; i <= 31; i++ {
		feed(p, clk, fixAt(base, time.Duration(i)*time.Second, 46.0, 7.0, 0))
	}
	if !p.IsAutoPaused() {
		t.Fatal("expected auto-pause after dwell")
	}

	// The very next fix at threshold speed clears the pause.
	got := feed(p, clk, fixAt(base, 32*time.Second, 46.0, 7.0, 1.5))
	if got == nil {
		t.Fatal("resume-transition fix should be accepted")
	}
	if got.IsAutoPaused || !got.AutoPauseChanged {
		t.Errorf("expected resume transition, got paused=%v changed=%v", got.IsAutoPaused, got.AutoPauseChanged)
	}
}

func TestProcessRejectsPoorAccuracy(t *testing.T) {
	base := time.Now()
	p, clk := newTestProcessor(base)

	fix := fixAt(base, 0, 46.0, 7.0, 3.0)
	fix.HorizontalAccuracy = 50

	if got := feed(p, clk, fix); got != nil {
		t.Fatal("fix above accuracy floor should be rejected")
	}

	// State must be untouched: the next good fix is a first fix.
	good := feed(p, clk, fixAt(base, time.Second, 46.0, 7.0, 3.0))
	if good == nil {
		t.Fatal("good fix should be accepted")
	}
	if good.IncrementalDistance != 0 {
		t.Errorf("rejected fix leaked into state: distance = %.3f", good.IncrementalDistance)
	}
}

func TestProcessRejectsStaleFix(t *testing.T) {
	base := time.Now()
	p, clk := newTestProcessor(base)

	// 10 s old against a 5 s ceiling.
	clk.current = base.Add(10 * time.Second)
	if got := p.Process(fixAt(base, 0, 46.0, 7.0, 3.0)); got != nil {
		t.Error("stale fix should be rejected")
	}
}

func TestProcessRejectsGPSJump(t *testing.T) {
	base := time.Now()
	p, clk := newTestProcessor(base)

	if got := feed(p, clk, fixAt(base, 0, 46.0, 7.0, 3.0)); got == nil {
		t.Fatal("first fix should be accepted")
	}

	// 1 km in one second.
	jump := fixAt(base, time.Second, 46.009, 7.0, 3.0)
	if got := feed(p, clk, jump); got != nil {
		t.Error("implausible jump should be rejected")
	}

	// A plausible follow-up is measured against the pre-jump fix.
	follow := feed(p, clk, fixAt(base, 2*time.Second, 46.0+2*threeMetersLat, 7.0, 3.0))
	if follow == nil {
		t.Fatal("plausible follow-up should be accepted")
	}
	if math.Abs(follow.IncrementalDistance-6.0) > 0.1 {
		t.Errorf("distance measured from wrong anchor: %.3f m, want ~6 m", follow.IncrementalDistance)
	}
}

func TestProcessRejectsNoiseFloor(t *testing.T) {
	base := time.Now()
	p, clk := newTestProcessor(base)

	if got := feed(p, clk, fixAt(base, 0, 46.0, 7.0, 3.0)); got == nil {
		t.Fatal("first fix should be accepted")
	}

	// ~0.3 m of drift against a 1 m floor, still moving fast enough to
	// stay out of auto-pause.
	drift := fixAt(base, time.Second, 46.0+threeMetersLat/10, 7.0, 3.0)
	if got := feed(p, clk, drift); got != nil {
		t.Error("sub-floor movement should be rejected")
	}
}

func TestProcessRejectsOutOfOrder(t *testing.T) {
	base := time.Now()
	p, clk := newTestProcessor(base)

	if got := feed(p, clk, fixAt(base, 2*time.Second, 46.0, 7.0, 3.0)); got == nil {
		t.Fatal("first fix should be accepted")
	}
	// Clock stays at the newer fix; an older fix arrives late.
	if got := p.Process(fixAt(base, time.Second, 46.0+threeMetersLat, 7.0, 3.0)); got != nil {
		t.Error("out-of-order fix should be rejected")
	}
}

func TestProcessDerivesSpeedWhenUnreported(t *testing.T) {
	base := time.Now()
	p, clk := newTestProcessor(base)

	feed(p, clk, fixAt(base, 0, 46.0, 7.0, -1))
	got := feed(p, clk, fixAt(base, time.Second, 46.0+threeMetersLat, 7.0, -1))
	if got == nil {
		t.Fatal("fix should be accepted")
	}
	if math.Abs(got.ComputedSpeed-3.0) > 0.1 {
		t.Errorf("derived speed = %.3f m/s, want ~3", got.ComputedSpeed)
	}
}

func TestReset(t *testing.T) {
	base := time.Now()
	p, clk := newTestProcessor(base)

	for i := 0; i <= 31; i++ {
		feed(p, clk, fixAt(base, time.Duration(i)*time.Second, 46.0, 7.0, 0))
	}
	if !p.IsAutoPaused() {
		t.Fatal("expected auto-pause before reset")
	}

	p.Reset()

	if p.IsAutoPaused() {
		t.Error("reset should clear auto-pause")
	}
	got := feed(p, clk, fixAt(base, 35*time.Second, 46.0, 7.0, 3.0))
	if got == nil {
		t.Fatal("fix after reset should be accepted")
	}
	if got.IncrementalDistance != 0 {
		t.Error("reset should clear the last-fix anchor")
	}
}

func TestDebugInfo(t *testing.T) {
	base := time.Now()
	p, clk := newTestProcessor(base)

	feed(p, clk, fixAt(base, 0, 46.0, 7.0, 3.0))
	bad := fixAt(base, time.Second, 46.0, 7.0, 3.0)
	bad.HorizontalAccuracy = 99
	feed(p, clk, bad)

	info := p.DebugInfo()
	if info == "" {
		t.Fatal("debug info should not be empty")
	}
}
