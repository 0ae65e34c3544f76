// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package terrain

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/geo"
	"github.com/tomtom215/ambulo/internal/models"
)

// fakeGeocoder serves canned place attributes and counts lookups.
type fakeGeocoder struct {
	place *models.PlaceAttributes
	err   error
	delay time.Duration
	calls atomic.Int64
}

func (f *fakeGeocoder) Lookup(ctx context.Context, _ geo.Coordinate) (*models.PlaceAttributes, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.place, nil
}

func testTerrainConfig() config.TerrainConfig {
	cfg := config.Default().Terrain
	cfg.GeocodeTimeout = 200 * time.Millisecond
	return cfg
}

func query(lat, lon float64, ts time.Time) Query {
	return Query{
		Latitude:           lat,
		Longitude:          lon,
		Altitude:           400,
		Speed:              2.8,
		HorizontalAccuracy: 8,
		Timestamp:          ts,
	}
}

func classification(cat models.TerrainCategory, conf float64) models.TerrainClassification {
	return models.TerrainClassification{Category: cat, Confidence: conf}
}

func TestFuseRules(t *testing.T) {
	tests := []struct {
		name      string
		semantic  models.TerrainClassification
		heuristic models.TerrainClassification
		wantCat   models.TerrainCategory
		wantConf  float64
	}{
		{
			name:      "strong semantic wins outright",
			semantic:  classification(models.TerrainTrail, 0.66),
			heuristic: classification(models.TerrainPavedRoad, 0.5),
			wantCat:   models.TerrainTrail,
			wantConf:  0.66,
		},
		{
			name:      "agreement reinforces",
			semantic:  classification(models.TerrainTrail, 0.5),
			heuristic: classification(models.TerrainTrail, 0.45),
			wantCat:   models.TerrainTrail,
			wantConf:  0.5*0.8 + 0.45*0.2 + 0.1,
		},
		{
			name:      "disagreement penalizes semantic",
			semantic:  classification(models.TerrainGravel, 0.5),
			heuristic: classification(models.TerrainPavedRoad, 0.5),
			wantCat:   models.TerrainGravel,
			wantConf:  0.4,
		},
		{
			name:      "weak estimates: higher confidence wins, heuristic",
			semantic:  classification(models.TerrainPavedRoad, 0.2),
			heuristic: classification(models.TerrainSnow, 0.4),
			wantCat:   models.TerrainSnow,
			wantConf:  0.4,
		},
		{
			name:      "weak estimates: higher confidence wins, semantic",
			semantic:  classification(models.TerrainSand, 0.25),
			heuristic: classification(models.TerrainGrass, 0.2),
			wantCat:   models.TerrainSand,
			wantConf:  0.25,
		},
		{
			name:      "agreement at the strong-semantic boundary",
			semantic:  classification(models.TerrainTrail, 0.6),
			heuristic: classification(models.TerrainTrail, 0.5),
			wantCat:   models.TerrainTrail,
			wantConf:  0.6*0.8 + 0.5*0.2 + 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fuse(tt.semantic, tt.heuristic)
			if got.Category != tt.wantCat {
				t.Errorf("category = %q, want %q", got.Category, tt.wantCat)
			}
			if math.Abs(got.Confidence-tt.wantConf) > 1e-9 {
				t.Errorf("confidence = %.4f, want %.4f", got.Confidence, tt.wantConf)
			}
			if got.Confidence < 0 || got.Confidence > 1 {
				t.Errorf("confidence %.4f outside [0,1]", got.Confidence)
			}
		})
	}
}

func TestClassifySemanticPath(t *testing.T) {
	gc := &fakeGeocoder{place: &models.PlaceAttributes{Thoroughfare: "Ridge Trail"}}
	c := NewClassifier(testTerrainConfig(), gc)

	got := c.Classify(context.Background(), query(46.0, 7.0, time.Now()))
	if got.Category != models.TerrainTrail {
		t.Errorf("category = %q, want trail", got.Category)
	}
	if got.Confidence <= 0.5 {
		t.Errorf("confidence = %.3f, want strong semantic result", got.Confidence)
	}
}

func TestClassifyCacheHitSkipsEstimators(t *testing.T) {
	gc := &fakeGeocoder{place: &models.PlaceAttributes{Thoroughfare: "Main Street"}}
	c := NewClassifier(testTerrainConfig(), gc)
	base := time.Now()

	first := c.Classify(context.Background(), query(46.0, 7.0, base))
	if gc.calls.Load() != 1 {
		t.Fatalf("expected one lookup, got %d", gc.calls.Load())
	}

	// ~3 m away, 30 s later: same quantized cell, inside the radius
	// and the TTL.
	second := c.Classify(context.Background(), query(46.00003, 7.0, base.Add(30*time.Second)))
	if gc.calls.Load() != 1 {
		t.Errorf("cache hit should not invoke the geocoder, calls = %d", gc.calls.Load())
	}
	if second.Category != first.Category || second.Confidence != first.Confidence {
		t.Errorf("cache returned different classification: %+v vs %+v", second, first)
	}
}

func TestClassifyCacheMissOnDistance(t *testing.T) {
	gc := &fakeGeocoder{place: &models.PlaceAttributes{Thoroughfare: "Main Street"}}
	c := NewClassifier(testTerrainConfig(), gc)
	base := time.Now()

	c.Classify(context.Background(), query(46.0, 7.0, base))
	// ~550 m away: outside the 25 m proximity radius.
	c.Classify(context.Background(), query(46.005, 7.0, base.Add(time.Second)))

	if gc.calls.Load() != 2 {
		t.Errorf("distant query should re-run fusion, calls = %d", gc.calls.Load())
	}
}

func TestClassifyCacheMissOnTTL(t *testing.T) {
	gc := &fakeGeocoder{place: &models.PlaceAttributes{Thoroughfare: "Main Street"}}
	c := NewClassifier(testTerrainConfig(), gc)
	base := time.Now()

	c.Classify(context.Background(), query(46.0, 7.0, base))
	// Same spot, six minutes later: past the 5 min TTL.
	c.Classify(context.Background(), query(46.0, 7.0, base.Add(6*time.Minute)))

	if gc.calls.Load() != 2 {
		t.Errorf("expired entry should re-run fusion, calls = %d", gc.calls.Load())
	}
}

func TestClassifyQualityGate(t *testing.T) {
	gc := &fakeGeocoder{place: &models.PlaceAttributes{Thoroughfare: "Main Street"}}
	c := NewClassifier(testTerrainConfig(), gc)

	q := query(46.0, 7.0, time.Now())
	q.HorizontalAccuracy = 150

	got := c.Classify(context.Background(), q)
	if gc.calls.Load() != 0 {
		t.Error("quality-gated query must not invoke the geocoder")
	}
	if got.Confidence != semanticFailedConfidence {
		t.Errorf("confidence = %.3f, want the fixed low default", got.Confidence)
	}
}

func TestClassifyGeocoderTimeout(t *testing.T) {
	gc := &fakeGeocoder{
		place: &models.PlaceAttributes{Thoroughfare: "Main Street"},
		delay: time.Second, // well past the 200 ms test timeout
	}
	c := NewClassifier(testTerrainConfig(), gc)

	start := time.Now()
	got := c.Classify(context.Background(), query(46.0, 7.0, time.Now()))
	if elapsed := time.Since(start); elapsed > 800*time.Millisecond {
		t.Errorf("classification blocked for %s, timeout not applied", elapsed)
	}

	// Semantic fell back to 0.2; heuristic (400 m, 2.8 m/s -> trail
	// 0.35) wins on confidence.
	if got.Category != models.TerrainTrail {
		t.Errorf("category = %q, want heuristic trail fallback", got.Category)
	}
	if got.Confidence != 0.35 {
		t.Errorf("confidence = %.3f, want 0.35", got.Confidence)
	}
}

func TestClassifyGeocoderError(t *testing.T) {
	gc := &fakeGeocoder{err: errors.New("upstream 502")}
	c := NewClassifier(testTerrainConfig(), gc)

	got := c.Classify(context.Background(), query(46.0, 7.0, time.Now()))
	if !got.Category.Valid() {
		t.Errorf("expected a valid fallback category, got %q", got.Category)
	}
	if got.Confidence > 0.5 {
		t.Errorf("confidence = %.3f, want degraded", got.Confidence)
	}
}

func TestClassifyNilGeocoder(t *testing.T) {
	c := NewClassifier(testTerrainConfig(), nil)

	got := c.Classify(context.Background(), query(46.0, 7.0, time.Now()))
	if !got.Category.Valid() {
		t.Errorf("expected a valid category without a geocoder, got %q", got.Category)
	}
}

func TestHeuristicBands(t *testing.T) {
	tests := []struct {
		name     string
		altitude float64
		latitude float64
		speed    float64
		want     models.TerrainCategory
	}{
		{"high alpine", 3500, 46, 1.0, models.TerrainSnow},
		{"mountain trail", 1800, 46, 1.5, models.TerrainTrail},
		{"polar", 200, 70, 1.0, models.TerrainSnow},
		{"fast urban run", 50, 48, 4.0, models.TerrainPavedRoad},
		{"steady jog", 50, 48, 2.5, models.TerrainTrail},
		{"amble", 50, 48, 1.0, models.TerrainGrass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, conf := heuristicBand(tt.altitude, tt.latitude, tt.speed)
			if cat != tt.want {
				t.Errorf("category = %q, want %q", cat, tt.want)
			}
			if conf < 0.3 || conf > 0.5 {
				t.Errorf("heuristic confidence %.3f outside design range [0.3,0.5]", conf)
			}
		})
	}
}

func TestClassifyPlaceKeywords(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		place models.PlaceAttributes
		want  models.TerrainCategory
	}{
		{"trail by name", models.PlaceAttributes{Thoroughfare: "Skyline Trail"}, models.TerrainTrail},
		{"gravel road", models.PlaceAttributes{Thoroughfare: "Old Gravel Road"}, models.TerrainGravel},
		{"city street", models.PlaceAttributes{Thoroughfare: "Baker Street"}, models.TerrainPavedRoad},
		{"stairs", models.PlaceAttributes{Thoroughfare: "Spanish Steps"}, models.TerrainStairs},
		{"beach", models.PlaceAttributes{AreaOfInterest: "Bondi Beach"}, models.TerrainSand},
		{"ski area", models.PlaceAttributes{AreaOfInterest: "Zermatt Ski Resort"}, models.TerrainSnow},
		{"wetland", models.PlaceAttributes{AreaOfInterest: "Great Marsh"}, models.TerrainMud},
		{"park", models.PlaceAttributes{AreaOfInterest: "Yosemite Wilderness"}, models.TerrainTrail},
		{"meadow", models.PlaceAttributes{AreaOfInterest: "South Meadow"}, models.TerrainGrass},
		{"ocean", models.PlaceAttributes{Ocean: "Pacific"}, models.TerrainSand},
		{"lake", models.PlaceAttributes{InlandWater: "Lake Geneva"}, models.TerrainMud},
		{"bare locality", models.PlaceAttributes{Locality: "Zurich"}, models.TerrainPavedRoad},
		{"nothing", models.PlaceAttributes{}, models.TerrainPavedRoad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyPlace(&tt.place, now)
			if got.Category != tt.want {
				t.Errorf("category = %q, want %q", got.Category, tt.want)
			}
			if got.Confidence < 0 || got.Confidence > 1 {
				t.Errorf("confidence %.3f outside [0,1]", got.Confidence)
			}
		})
	}
}

func TestWildernessModifierBoosts(t *testing.T) {
	got := classifyPlace(&models.PlaceAttributes{AreaOfInterest: "Denali Wilderness"}, time.Now())
	want := 0.6 * 1.1
	if math.Abs(got.Confidence-want) > 1e-9 {
		t.Errorf("confidence = %.4f, want %.4f", got.Confidence, want)
	}
}

func TestUrbanLocalityModifierReduces(t *testing.T) {
	got := classifyPlace(&models.PlaceAttributes{Locality: "Geneva"}, time.Now())
	want := 0.6 * 0.7
	if math.Abs(got.Confidence-want) > 1e-9 {
		t.Errorf("confidence = %.4f, want %.4f", got.Confidence, want)
	}
}

func TestCacheSweep(t *testing.T) {
	cfg := testTerrainConfig()
	c := NewClassifier(cfg, &fakeGeocoder{place: &models.PlaceAttributes{Locality: "Bern"}})
	base := time.Now()

	c.Classify(context.Background(), query(46.0, 7.0, base))
	c.Classify(context.Background(), query(47.0, 8.0, base))
	if c.CacheSize() != 2 {
		t.Fatalf("cache size = %d, want 2", c.CacheSize())
	}

	// Sweep before expiry keeps both; after expiry removes both.
	if removed := c.cache.sweep(base.Add(time.Minute)); removed != 0 {
		t.Errorf("early sweep removed %d entries", removed)
	}
	if removed := c.cache.sweep(base.Add(6 * time.Minute)); removed != 2 {
		t.Errorf("sweep removed %d entries, want 2", removed)
	}
	if c.CacheSize() != 0 {
		t.Errorf("cache size = %d after sweep, want 0", c.CacheSize())
	}
}

func TestServeSweepsUntilCanceled(t *testing.T) {
	cfg := testTerrainConfig()
	cfg.SweepInterval = 10 * time.Millisecond
	c := NewClassifier(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := c.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve returned %v, want context deadline", err)
	}
}
