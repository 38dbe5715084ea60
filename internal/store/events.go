// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/metrics"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// EventStore persists interaction events with a physical retention window.
// Keys are ordered by user then timestamp, so per-user scans walk events in
// chronological order.
type EventStore struct {
	store *Store
	ttl   time.Duration
}

// NewEventStore returns an event store retaining records for ttl.
func NewEventStore(store *Store, ttl time.Duration) *EventStore {
	return &EventStore{store: store, ttl: ttl}
}

// eventKey is event:<userID>:<unixNano>:<eventID>. The id suffix keeps keys
// unique when two events share a timestamp.
func eventKey(e *models.Event) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", prefixEvent, e.UserID, e.Timestamp.UnixNano(), e.ID))
}

// Put stores an event with the retention TTL.
func (s *EventStore) Put(ctx context.Context, e *models.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = s.store.set(eventKey(e), data, s.ttl)
	metrics.RecordStoreOp("events", "put", err)
	return err
}

// ListByUser returns the user's events with Timestamp >= since, oldest
// first, capped at limit (0 = unlimited).
func (s *EventStore) ListByUser(ctx context.Context, userID string, since time.Time, limit int) ([]*models.Event, error) {
	var events []*models.Event

	err := s.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixEvent + userID + ":")
		seek := prefix
		if !since.IsZero() {
			seek = []byte(fmt.Sprintf("%s%s:%020d:", prefixEvent, userID, since.UnixNano()))
		}

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(events) >= limit {
				break
			}
			var e models.Event
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil {
				return fmt.Errorf("unmarshal event: %w", err)
			}
			events = append(events, &e)
		}
		return nil
	})

	metrics.RecordStoreOp("events", "list", err)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// CountByUserSince counts the user's events with Timestamp >= since without
// loading values. Used for engagement scoring.
func (s *EventStore) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	count := 0

	err := s.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixEvent + userID + ":")
		seek := []byte(fmt.Sprintf("%s%s:%020d:", prefixEvent, userID, since.UnixNano()))

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	metrics.RecordStoreOp("events", "count", err)
	if err != nil {
		return 0, err
	}
	return count, nil
}
