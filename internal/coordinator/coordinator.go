// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/elevation"
	"github.com/tomtom215/ambulo/internal/location"
	"github.com/tomtom215/ambulo/internal/logging"
	"github.com/tomtom215/ambulo/internal/metrics"
	"github.com/tomtom215/ambulo/internal/models"
	"github.com/tomtom215/ambulo/internal/orchestrator"
	"github.com/tomtom215/ambulo/internal/pace"
	"github.com/tomtom215/ambulo/internal/terrain"
)

// PositioningSource is the positioning collaborator contract. Fixes
// delivers raw readings in arrival order on a channel owned by the
// source; StopUpdates pauses delivery without closing the channel.
type PositioningSource interface {
	StartUpdates() error
	StopUpdates()
	RequestAuthorization() models.AuthStatus
	Fixes() <-chan models.RawFix
}

// MotionSource is the motion/barometer collaborator contract.
type MotionSource interface {
	StartUpdates() error
	StopUpdates()
	Samples() <-chan models.BarometricSample
}

// PersistenceSink stores session checkpoints. Save may block; the
// coordinator never calls it inline with fix processing.
type PersistenceSink interface {
	Save(ctx context.Context, session *models.TrackingSession) error
}

// Snapshot is the read-only observer view published at tick cadence.
type Snapshot struct {
	State         models.TrackingState          `json:"state"`
	SessionID     string                        `json:"session_id,omitempty"`
	Metrics       models.SessionMetrics         `json:"metrics"`
	ElevationGain float64                       `json:"elevation_gain"`
	ElevationLoss float64                       `json:"elevation_loss"`
	Elevation     *models.ElevationSample       `json:"elevation,omitempty"`
	Terrain       *models.TerrainClassification `json:"terrain,omitempty"`
	Weather       *models.WeatherSnapshot       `json:"weather,omitempty"`
	Motion        *models.MotionState           `json:"motion,omitempty"`
}

// Coordinator drives one session at a time. All lifecycle calls and
// the tracking loop synchronize on mu; the loop holds it only briefly
// per fix so control calls never starve.
type Coordinator struct {
	cfg         config.CoordinatorConfig
	positioning PositioningSource
	motion      MotionSource

	processor  *location.Processor
	calculator *pace.Calculator
	elevEngine *elevation.Engine
	classifier *terrain.Classifier
	orch       *orchestrator.Orchestrator
	saver      *Saver

	mu       sync.Mutex
	state    models.TrackingState
	session  *models.TrackingSession
	lastBaro *float64
	lastTick orchestrator.TickResult

	sinceCheckpoint int
	cancel          context.CancelFunc
	done            chan struct{}
}

// Config bundles the coordinator's collaborators and subsystems.
type Config struct {
	Coordinator config.CoordinatorConfig
	Positioning PositioningSource
	Motion      MotionSource

	Processor  *location.Processor
	Calculator *pace.Calculator
	Elevation  *elevation.Engine
	Classifier *terrain.Classifier
	Orch       *orchestrator.Orchestrator
	Saver      *Saver
}

// New creates a stopped coordinator.
func New(cfg Config) *Coordinator {
	metrics.SetTrackingState(string(models.StateStopped))
	return &Coordinator{
		state:       models.StateStopped,
		cfg:         cfg.Coordinator,
		positioning: cfg.Positioning,
		motion:      cfg.Motion,
		processor:   cfg.Processor,
		calculator:  cfg.Calculator,
		elevEngine:  cfg.Elevation,
		classifier:  cfg.Classifier,
		orch:        cfg.Orch,
		saver:       cfg.Saver,
	}
}

// Start resets the processing subsystems, starts the acquisition
// collaborators, and launches the tracking loop. It fails only when
// positioning cannot start; a motion-source failure degrades to
// positional-only elevation and is logged, not returned.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != models.StateStopped {
		c.invalidTransition("start")
		return nil
	}

	if status := c.positioning.RequestAuthorization(); status == models.AuthStatusDenied {
		return fmt.Errorf("start session: positioning authorization %s", status)
	}
	if err := c.positioning.StartUpdates(); err != nil {
		return fmt.Errorf("start session: positioning: %w", err)
	}
	if c.motion != nil {
		if err := c.motion.StartUpdates(); err != nil {
			logging.Warn().Err(err).Msg("motion source unavailable, continuing without barometer")
			c.motion = nil
		}
	}

	c.processor.Reset()
	c.calculator.StartSession()
	c.elevEngine.Reset()
	if c.saver != nil {
		c.saver.Reset()
	}

	c.session = models.NewTrackingSession()
	c.lastBaro = nil
	c.lastTick = orchestrator.TickResult{}
	c.sinceCheckpoint = 0

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	loopCtx = logging.ContextWithSessionID(loopCtx, c.session.ID.String())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(loopCtx)

	c.setState(models.StateTracking)
	logging.Info().Str("session_id", c.session.ID.String()).Msg("session started")
	return nil
}

// Pause suspends metrics accumulation and positioning updates without
// tearing down the loop.
func (c *Coordinator) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != models.StateTracking {
		c.invalidTransition("pause")
		return
	}

	c.calculator.Pause()
	c.positioning.StopUpdates()
	c.setState(models.StatePaused)
	logging.Info().Msg("session paused")
}

// Resume restarts positioning updates and metrics accumulation.
func (c *Coordinator) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != models.StatePaused {
		c.invalidTransition("resume")
		return
	}

	if err := c.positioning.StartUpdates(); err != nil {
		logging.Error().Err(err).Msg("positioning restart failed, staying paused")
		return
	}
	c.calculator.Resume()
	c.setState(models.StateTracking)
	logging.Info().Msg("session resumed")
}

// Stop cancels the tracking loop, waits for it to terminate, finalizes
// the session aggregate, and issues the final persistence write. The
// wait is what keeps a late-arriving fix from racing finalization.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state == models.StateStopped {
		c.invalidTransition("stop")
		c.mu.Unlock()
		return nil
	}

	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("stop session: %w", ctx.Err())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.positioning.StopUpdates()
	if c.motion != nil {
		c.motion.StopUpdates()
	}

	session := c.finalizeLocked()
	c.session = nil
	c.cancel = nil
	c.done = nil
	c.setState(models.StateStopped)

	if c.saver != nil && session != nil {
		if err := c.saver.SaveNow(ctx, session); err != nil {
			logging.Error().Err(err).Msg("final session write failed")
		}
	}
	logging.Info().Msg("session stopped")
	return nil
}

// finalizeLocked stamps the end time and the last metrics snapshot onto
// the session and returns a detached copy for the final write.
func (c *Coordinator) finalizeLocked() *models.TrackingSession {
	if c.session == nil {
		return nil
	}
	now := nowUTC()
	c.session.EndTime = &now
	c.session.Metrics = c.calculator.Snapshot()
	c.session.ElevationGain = c.elevEngine.Gain()
	c.session.ElevationLoss = c.elevEngine.Loss()
	c.closeOpenSegmentLocked()
	return cloneSession(c.session)
}

// State returns the current lifecycle state.
func (c *Coordinator) State() models.TrackingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PossibleDataLoss reports whether any checkpoint since the last start
// was dropped or failed.
func (c *Coordinator) PossibleDataLoss() bool {
	if c.saver == nil {
		return false
	}
	return c.saver.PossibleDataLoss()
}

// Snapshot returns the current observer view.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:         c.state,
		Metrics:       c.calculator.Snapshot(),
		ElevationGain: c.elevEngine.Gain(),
		ElevationLoss: c.elevEngine.Loss(),
		Elevation:     c.lastTick.Elevation,
		Terrain:       c.lastTick.Terrain,
		Weather:       c.lastTick.Weather,
		Motion:        c.lastTick.Motion,
	}
	if c.session != nil {
		snap.SessionID = c.session.ID.String()
	}
	return snap
}

// DebugInfo aggregates the per-subsystem diagnostic lines.
func (c *Coordinator) DebugInfo() string {
	c.mu.Lock()
	state := c.state
	since := c.sinceCheckpoint
	c.mu.Unlock()

	lines := []string{
		fmt.Sprintf("coordinator: state=%s since_checkpoint=%d data_loss=%t",
			state, since, c.PossibleDataLoss()),
		c.processor.DebugInfo(),
		c.calculator.DebugInfo(),
		c.elevEngine.DebugInfo(),
		c.classifier.DebugInfo(),
		c.orch.DebugInfo(),
	}
	return strings.Join(lines, "\n")
}

// Serve blocks until the supervisor cancels, then shuts down any
// in-flight session. It satisfies suture.Service.
func (c *Coordinator) Serve(ctx context.Context) error {
	<-ctx.Done()
	if c.State() != models.StateStopped {
		if err := c.Stop(context.Background()); err != nil {
			logging.Error().Err(err).Msg("shutdown stop failed")
		}
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (c *Coordinator) String() string { return "session-coordinator" }

func (c *Coordinator) setState(s models.TrackingState) {
	c.state = s
	metrics.SetTrackingState(string(s))
}

func (c *Coordinator) invalidTransition(op string) {
	metrics.InvalidTransitions.WithLabelValues(op).Inc()
	logging.Warn().
		Str("operation", op).
		Str("state", string(c.state)).
		Msg("lifecycle call from invalid state ignored")
}

// cloneSession detaches a session for a persistence write so the loop
// can keep appending while the write is in flight.
func cloneSession(s *models.TrackingSession) *models.TrackingSession {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Fixes = append([]models.ProcessedFix(nil), s.Fixes...)
	clone.TerrainSegments = append([]models.TerrainSegment(nil), s.TerrainSegments...)
	if s.Weather != nil {
		w := *s.Weather
		clone.Weather = &w
	}
	return &clone
}
