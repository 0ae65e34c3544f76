// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package coordinator

import (
	"context"
	"time"

	"github.com/tomtom215/ambulo/internal/logging"
	"github.com/tomtom215/ambulo/internal/models"
)

// run is the tracking loop. One iteration drains every available fix in
// arrival order, routes each through the pipeline, then sleeps the
// pacing interval. Cancellation is checked at the top of the iteration
// and again before the sleep.
func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.cfg.LoopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.drainBarometer()
		c.drainFixes(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// drainBarometer keeps only the most recent relative-altitude sample;
// the fan-out reads it once per accepted fix.
func (c *Coordinator) drainBarometer() {
	if c.motion == nil {
		return
	}
	for {
		select {
		case sample := <-c.motion.Samples():
			c.mu.Lock()
			v := sample.RelativeAltitude
			c.lastBaro = &v
			c.mu.Unlock()
		default:
			return
		}
	}
}

// drainFixes processes every queued fix before returning. Strict
// arrival order within a session: one fix fully completes its
// validate, update, and fan-out before the next begins.
func (c *Coordinator) drainFixes(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fix := <-c.positioning.Fixes():
			c.processFix(ctx, fix)
		default:
			return
		}
	}
}

// processFix runs the per-fix pipeline: validation, metrics, fan-out,
// aggregate merge, and the checkpoint cadence.
func (c *Coordinator) processFix(ctx context.Context, raw models.RawFix) {
	accepted := c.processor.Process(raw)
	if accepted == nil {
		return
	}

	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return
	}
	c.session.Metrics = c.calculator.Update(*accepted)
	c.session.Fixes = append(c.session.Fixes, *accepted)
	fixIndex := len(c.session.Fixes) - 1
	baro := c.lastBaro
	c.mu.Unlock()

	tick := c.orch.ProcessFix(ctx, *accepted, baro)

	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return
	}
	c.lastTick = tick
	c.session.ElevationGain = c.elevEngine.Gain()
	c.session.ElevationLoss = c.elevEngine.Loss()
	if tick.Weather != nil {
		c.session.Weather = tick.Weather
	}
	if tick.Terrain != nil {
		c.mergeTerrainLocked(*tick.Terrain, fixIndex, accepted.Timestamp)
	}

	c.sinceCheckpoint++
	var checkpoint *models.TrackingSession
	if c.sinceCheckpoint >= c.cfg.CheckpointEvery {
		c.sinceCheckpoint = 0
		checkpoint = cloneSession(c.session)
	}
	c.mu.Unlock()

	if checkpoint != nil && c.saver != nil {
		c.saver.Enqueue(checkpoint)
	}
}

// mergeTerrainLocked extends the open terrain segment when the category
// holds, or closes it and opens a new one when it changes.
func (c *Coordinator) mergeTerrainLocked(cls models.TerrainClassification, fixIndex int, at time.Time) {
	segments := c.session.TerrainSegments
	if n := len(segments); n > 0 && segments[n-1].Category == cls.Category && segments[n-1].EndTime.IsZero() {
		open := &segments[n-1]
		open.EndIndex = fixIndex
		if cls.Confidence > open.Confidence {
			open.Confidence = cls.Confidence
		}
		return
	}

	c.closeOpenSegmentLocked()
	c.session.TerrainSegments = append(c.session.TerrainSegments, models.TerrainSegment{
		Category:   cls.Category,
		Confidence: cls.Confidence,
		StartIndex: fixIndex,
		EndIndex:   fixIndex,
		StartTime:  at,
	})
}

// closeOpenSegmentLocked stamps the end time on a still-open trailing
// segment using its last fix's timestamp.
func (c *Coordinator) closeOpenSegmentLocked() {
	segments := c.session.TerrainSegments
	n := len(segments)
	if n == 0 || !segments[n-1].EndTime.IsZero() {
		return
	}
	open := &segments[n-1]
	if open.EndIndex < len(c.session.Fixes) {
		open.EndTime = c.session.Fixes[open.EndIndex].Timestamp
	} else {
		open.EndTime = nowUTC()
	}
	logging.Debug().
		Str("category", string(open.Category)).
		Int("fixes", open.EndIndex-open.StartIndex+1).
		Msg("terrain segment closed")
}

func nowUTC() time.Time { return time.Now().UTC() }
