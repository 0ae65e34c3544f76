// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package coordinator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/logging"
	"github.com/tomtom215/ambulo/internal/metrics"
	"github.com/tomtom215/ambulo/internal/models"
)

// Saver drains the async checkpoint queue into the persistence sink.
// Enqueue never blocks: a full queue drops the checkpoint and raises
// the possible-data-loss flag, because the tracking loop matters more
// than any single write. Failed writes are retried once after the
// retry interval, then dropped with the flag raised.
type Saver struct {
	sink  PersistenceSink
	queue chan *models.TrackingSession
	retry time.Duration

	dataLoss atomic.Bool
}

// NewSaver wraps a sink with the non-blocking checkpoint queue.
func NewSaver(cfg config.PersistenceConfig, sink PersistenceSink) *Saver {
	return &Saver{
		sink:  sink,
		queue: make(chan *models.TrackingSession, cfg.QueueSize),
		retry: cfg.RetryInterval,
	}
}

// Enqueue queues a detached session copy for writing.
func (s *Saver) Enqueue(session *models.TrackingSession) {
	select {
	case s.queue <- session:
	default:
		s.dataLoss.Store(true)
		metrics.CheckpointWrites.WithLabelValues("error").Inc()
		logging.Warn().
			Str("session_id", session.ID.String()).
			Msg("checkpoint queue full, dropping checkpoint")
	}
}

// SaveNow writes synchronously, bypassing the queue. Used for the
// final write on stop, where blocking is acceptable.
func (s *Saver) SaveNow(ctx context.Context, session *models.TrackingSession) error {
	if err := s.sink.Save(ctx, session); err != nil {
		s.dataLoss.Store(true)
		metrics.CheckpointWrites.WithLabelValues("error").Inc()
		return err
	}
	metrics.CheckpointWrites.WithLabelValues("ok").Inc()
	return nil
}

// PossibleDataLoss reports whether any checkpoint was dropped or failed
// since the last Reset.
func (s *Saver) PossibleDataLoss() bool { return s.dataLoss.Load() }

// Reset clears the data-loss flag at session start.
func (s *Saver) Reset() { s.dataLoss.Store(false) }

// Serve drains the queue until canceled. It satisfies suture.Service.
func (s *Saver) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case session := <-s.queue:
			s.write(ctx, session)
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *Saver) String() string { return "checkpoint-saver" }

// write attempts the checkpoint with one delayed retry.
func (s *Saver) write(ctx context.Context, session *models.TrackingSession) {
	err := s.sink.Save(ctx, session)
	if err == nil {
		metrics.CheckpointWrites.WithLabelValues("ok").Inc()
		return
	}
	logging.Warn().Err(err).
		Str("session_id", session.ID.String()).
		Msg("checkpoint write failed, retrying")

	select {
	case <-ctx.Done():
		s.dataLoss.Store(true)
		return
	case <-time.After(s.retry):
	}

	metrics.CheckpointWrites.WithLabelValues("retried").Inc()
	if err := s.sink.Save(ctx, session); err != nil {
		s.dataLoss.Store(true)
		metrics.CheckpointWrites.WithLabelValues("error").Inc()
		logging.Error().Err(err).
			Str("session_id", session.ID.String()).
			Msg("checkpoint retry failed, possible data loss")
		return
	}
	metrics.CheckpointWrites.WithLabelValues("ok").Inc()
}
