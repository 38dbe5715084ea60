// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package profile

import (
	"context"
	"fmt"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/metrics"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// IncrementalUpdate applies a single event's weight delta to the stored
// profile without a full recompute. Callers must deduplicate event ids
// first; replaying the same event would double-count its delta. Removal
// events subtract, and the weight map clamps at zero.
func (b *Builder) IncrementalUpdate(ctx context.Context, e *models.Event) error {
	p, err := b.profiles.GetOrCreate(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("load profile %s: %w", e.UserID, err)
	}

	changed := false

	switch e.Type {
	case models.EventBookView:
		p.RecordView(e.Metadata.BookID, e.Timestamp)
		changed = true
	case models.EventBookSearch:
		p.RecordSearch(e.Metadata.Query, e.Timestamp)
		changed = true
	case models.EventRatingUpdated:
		// The previous rating's delta is unknown, so an in-place update
		// cannot be expressed additively. Re-derive from collections.
		_, err := b.Build(ctx, e.UserID)
		return err
	default:
		delta, ok := b.signalDelta(e)
		if !ok {
			return nil
		}
		book, err := b.lookupBook(ctx, e.Metadata.BookID)
		if err != nil {
			return err
		}
		if book == nil {
			b.log.Warn().
				Str("book_id", e.Metadata.BookID).
				Str("event_id", e.ID).
				Msg("signal for unknown book dropped")
			return nil
		}
		b.addBookWeight(p, book, delta)
		changed = true
	}

	if !changed {
		return nil
	}

	p.DiversityScore = diversityScore(p.GenreWeights)

	if err := b.profiles.Put(ctx, p); err != nil {
		metrics.ProfileBuilds.WithLabelValues("incremental", "error").Inc()
		return fmt.Errorf("store profile %s: %w", e.UserID, err)
	}
	metrics.ProfileBuilds.WithLabelValues("incremental", "ok").Inc()
	return nil
}

// signalDelta maps an event to its weight delta. The second return is false
// for events that carry no preference signal.
func (b *Builder) signalDelta(e *models.Event) (float64, bool) {
	s := b.cfg.Signals
	switch e.Type {
	case models.EventRatingGiven:
		return s.Shelf * b.cfg.RatingMultiplier(e.Metadata.Rating), true
	case models.EventBookLiked:
		return s.Liked, true
	case models.EventBookUnliked:
		return -s.Liked, true
	case models.EventShelfAdd:
		return s.Shelf, true
	case models.EventShelfRemove:
		return -s.Shelf, true
	case models.EventTBRAdd:
		return s.ToBeRead, true
	case models.EventTBRRemove:
		return -s.ToBeRead, true
	case models.EventFavoriteAdd:
		return s.Favorite, true
	case models.EventFavoriteRemove:
		return -s.Favorite, true
	case models.EventTopPickAdd:
		return s.TopPick, true
	case models.EventTopPickRemove:
		return -s.TopPick, true
	case models.EventCurrentlyReadingAdd:
		return s.CurrentlyReading, true
	default:
		return 0, false
	}
}

func (b *Builder) lookupBook(ctx context.Context, bookID string) (*models.Book, error) {
	if bookID == "" {
		return nil, nil
	}
	books, err := b.catalog.BooksByIDs(ctx, []string{bookID})
	if err != nil {
		return nil, fmt.Errorf("lookup book %s: %w", bookID, err)
	}
	if len(books) == 0 {
		return nil, nil
	}
	return books[0], nil
}
