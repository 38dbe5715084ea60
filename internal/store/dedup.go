// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/metrics"
)

// DedupStore remembers processed event ids so at-least-once task delivery
// never double-counts an incremental profile update. Markers share the
// event retention window.
type DedupStore struct {
	store *Store
	ttl   time.Duration
}

// NewDedupStore returns a dedup store retaining markers for ttl.
func NewDedupStore(store *Store, ttl time.Duration) *DedupStore {
	return &DedupStore{store: store, ttl: ttl}
}

func dedupKey(eventID string) []byte {
	return []byte(prefixDedup + eventID)
}

// MarkProcessed records the event id and reports whether it had already
// been processed. The check and the write share one transaction, so
// concurrent deliveries of the same id conflict instead of both passing.
func (s *DedupStore) MarkProcessed(ctx context.Context, eventID string) (seen bool, err error) {
	err = s.store.db.Update(func(txn *badger.Txn) error {
		_, getErr := txn.Get(dedupKey(eventID))
		if getErr == nil {
			seen = true
			return nil
		}
		if !errors.Is(getErr, badger.ErrKeyNotFound) {
			return fmt.Errorf("get dedup marker: %w", getErr)
		}

		entry := badger.NewEntry(dedupKey(eventID), []byte{1}).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})

	metrics.RecordStoreOp("dedup", "mark", err)
	if err != nil {
		return false, err
	}
	return seen, nil
}

// Unmark releases a marker after a failed handler so the redelivered task
// is not mistaken for a duplicate.
func (s *DedupStore) Unmark(ctx context.Context, eventID string) error {
	err := s.store.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(dedupKey(eventID))
	})
	metrics.RecordStoreOp("dedup", "unmark", err)
	return err
}
