// Ambulo - Real-Time Outdoor Activity Tracking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ambulo

package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/ambulo/internal/config"
	"github.com/tomtom215/ambulo/internal/models"
)

// BadgerSink stores session checkpoints in BadgerDB. Each Save writes
// two keys: a monotonically numbered checkpoint and a "latest" alias,
// so recovery reads one key and history stays inspectable.
type BadgerSink struct {
	db *badger.DB

	mu   sync.Mutex
	seqs map[uuid.UUID]uint64
}

// NewBadgerSink opens the store at cfg.Path. An empty path opens an
// in-memory store for demo mode and tests.
func NewBadgerSink(cfg config.PersistenceConfig) (*BadgerSink, error) {
	var opts badger.Options
	if cfg.Path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint store: %w", err)
	}
	return &BadgerSink{db: db, seqs: make(map[uuid.UUID]uint64)}, nil
}

func checkpointKey(id uuid.UUID, seq uint64) []byte {
	return []byte(fmt.Sprintf("session/%s/%08d", id, seq))
}

func latestKey(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("session/%s/latest", id))
}

// Save writes one checkpoint.
func (s *BadgerSink) Save(ctx context.Context, session *models.TrackingSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}

	s.mu.Lock()
	s.seqs[session.ID]++
	seq := s.seqs[session.ID]
	s.mu.Unlock()

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(checkpointKey(session.ID, seq), data); err != nil {
			return err
		}
		return txn.Set(latestKey(session.ID), data)
	})
	if err != nil {
		return fmt.Errorf("write checkpoint %s/%d: %w", session.ID, seq, err)
	}
	return nil
}

// Load returns the latest checkpoint for a session, or nil when none
// exists.
func (s *BadgerSink) Load(_ context.Context, id uuid.UUID) (*models.TrackingSession, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(latestKey(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", id, err)
	}

	var session models.TrackingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", id, err)
	}
	return &session, nil
}

// Close releases the store.
func (s *BadgerSink) Close() error {
	return s.db.Close()
}
