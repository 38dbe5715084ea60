// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

// Package store provides BadgerDB-backed persistence for interaction
// events, preference profiles, recommendation logs, and processed-event
// dedup markers. Retention is enforced with per-entry TTLs; Badger's
// value-log garbage collection reclaims the space.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/config"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/logging"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

// Key prefixes per record kind.
const (
	prefixEvent   = "event:"
	prefixProfile = "profile:"
	prefixRecLog  = "reclog:"
	prefixDedup   = "dedup:"
)

// Store wraps a single Badger database shared by all record kinds.
type Store struct {
	db  *badger.DB
	cfg config.StoreConfig
}

// Open opens (or creates) the Badger database at the configured path.
func Open(cfg config.StoreConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Badger's own logger is too chatty for production use.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	return &Store{db: db, cfg: cfg}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for stores built on top of this one.
func (s *Store) DB() *badger.DB {
	return s.db
}

// RunGC runs value-log garbage collection until the context is cancelled.
// Intended to run as a supervised background service.
func (s *Store) RunGC(ctx context.Context) error {
	if s.cfg.InMemory {
		<-ctx.Done()
		return ctx.Err()
	}

	log := logging.Component("store-gc")
	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// RunValueLogGC returns ErrNoRewrite when there is nothing to
			// collect; loop while it keeps finding work.
			for {
				err := s.db.RunValueLogGC(s.cfg.GCDiscardRatio)
				if err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						log.Warn().Err(err).Msg("value log GC failed")
					}
					break
				}
			}
		}
	}
}

// get unmarshals the value at key into out via fn, mapping Badger's
// not-found error to ErrNotFound.
func (s *Store) get(key []byte, fn func(val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(fn)
	})
}

// set writes key with an optional TTL. Zero ttl means no expiry.
func (s *Store) set(key, data []byte, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}
