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
	"github.com/goccy/go-json"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/metrics"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// Outcome names accepted by MarkOutcome.
const (
	OutcomeShown     = "shown"
	OutcomeClicked   = "clicked"
	OutcomeConverted = "converted"
	OutcomeDismissed = "dismissed"
)

// RecLogStore persists recommendation logs keyed by (user, generation,
// book) so outcome events can address a record without a secondary index.
type RecLogStore struct {
	store *Store
	ttl   time.Duration
}

// NewRecLogStore returns a log store retaining records for ttl.
func NewRecLogStore(store *Store, ttl time.Duration) *RecLogStore {
	return &RecLogStore{store: store, ttl: ttl}
}

func recLogKey(userID, generationID, bookID string) []byte {
	return []byte(prefixRecLog + userID + ":" + generationID + ":" + bookID)
}

// PutBatch appends one log per recommended item in a single transaction.
// Outcome flags start false.
func (s *RecLogStore) PutBatch(ctx context.Context, logs []*models.RecommendationLog) error {
	err := s.store.db.Update(func(txn *badger.Txn) error {
		for _, l := range logs {
			data, err := json.Marshal(l)
			if err != nil {
				return fmt.Errorf("marshal rec log: %w", err)
			}
			entry := badger.NewEntry(recLogKey(l.UserID, l.GenerationID, l.BookID), data).WithTTL(s.ttl)
			if err := txn.SetEntry(entry); err != nil {
				return fmt.Errorf("set rec log: %w", err)
			}
		}
		return nil
	})

	metrics.RecordStoreOp("reclogs", "put_batch", err)
	return err
}

// Get returns one log record or ErrNotFound.
func (s *RecLogStore) Get(ctx context.Context, userID, generationID, bookID string) (*models.RecommendationLog, error) {
	var l models.RecommendationLog

	err := s.store.get(recLogKey(userID, generationID, bookID), func(val []byte) error {
		return json.Unmarshal(val, &l)
	})

	metrics.RecordStoreOp("reclogs", "get", err)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// MarkOutcome flips one outcome flag in place and stamps its time. Updating
// an already-set flag is a no-op, so outcome events are idempotent. Missing
// records (already expired or never logged) return ErrNotFound.
func (s *RecLogStore) MarkOutcome(ctx context.Context, userID, generationID, bookID, outcome string, at time.Time) error {
	key := recLogKey(userID, generationID, bookID)

	err := s.store.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get rec log: %w", err)
		}

		var l models.RecommendationLog
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &l)
		}); err != nil {
			return fmt.Errorf("unmarshal rec log: %w", err)
		}

		switch outcome {
		case OutcomeShown:
			if l.Shown {
				return nil
			}
			l.Shown = true
			l.ShownAt = &at
		case OutcomeClicked:
			if l.Clicked {
				return nil
			}
			l.Clicked = true
			l.ClickedAt = &at
		case OutcomeConverted:
			if l.Converted {
				return nil
			}
			l.Converted = true
			l.ConvertedAt = &at
		case OutcomeDismissed:
			if l.Dismissed {
				return nil
			}
			l.Dismissed = true
			l.DismissedAt = &at
		default:
			return fmt.Errorf("unknown outcome %q", outcome)
		}

		data, err := json.Marshal(&l)
		if err != nil {
			return fmt.Errorf("marshal rec log: %w", err)
		}
		// Preserve the remaining retention window rather than restarting it.
		remaining := s.ttl
		if expiresAt := item.ExpiresAt(); expiresAt > 0 {
			remaining = time.Until(time.Unix(int64(expiresAt), 0))
			if remaining <= 0 {
				return ErrNotFound
			}
		}
		return txn.SetEntry(badger.NewEntry(key, data).WithTTL(remaining))
	})

	metrics.RecordStoreOp("reclogs", "mark_outcome", err)
	return err
}

// ListByUser returns all retained logs for a user, most recent generation
// ordering not guaranteed.
func (s *RecLogStore) ListByUser(ctx context.Context, userID string) ([]*models.RecommendationLog, error) {
	var logs []*models.RecommendationLog

	err := s.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixRecLog + userID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var l models.RecommendationLog
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &l)
			})
			if err != nil {
				return fmt.Errorf("unmarshal rec log: %w", err)
			}
			logs = append(logs, &l)
		}
		return nil
	})

	metrics.RecordStoreOp("reclogs", "list", err)
	if err != nil {
		return nil, err
	}
	return logs, nil
}
