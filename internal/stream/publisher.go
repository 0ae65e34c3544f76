// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package stream

import (
	"context"
	"time"

	"github.com/tomtom215/ambulo/internal/coordinator"
	"github.com/tomtom215/ambulo/internal/models"
)

// Publisher polls the coordinator at tick cadence and broadcasts the
// snapshot. State transitions additionally get their own message so
// observers can react without diffing snapshots.
type Publisher struct {
	coord    *coordinator.Coordinator
	hub      *Hub
	interval time.Duration

	lastState models.TrackingState
}

// NewPublisher creates a publisher at the given cadence.
func NewPublisher(coord *coordinator.Coordinator, hub *Hub, interval time.Duration) *Publisher {
	return &Publisher{
		coord:     coord,
		hub:       hub,
		interval:  interval,
		lastState: models.StateStopped,
	}
}

// Serve broadcasts until canceled. It satisfies suture.Service.
func (p *Publisher) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.publish()
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (p *Publisher) String() string { return "snapshot-publisher" }

func (p *Publisher) publish() {
	if p.hub.ClientCount() == 0 {
		// Still track state so the first observer sees transitions
		// from their connect time only.
		p.lastState = p.coord.State()
		return
	}

	snap := p.coord.Snapshot()
	p.hub.BroadcastJSON(MessageTypeSnapshot, snap)

	if snap.State != p.lastState {
		p.hub.BroadcastJSON(MessageTypeStateChange, map[string]string{
			"from": string(p.lastState),
			"to":   string(snap.State),
		})
		p.lastState = snap.State
	}
}
