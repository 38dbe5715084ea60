// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package tracker

import (
	"context"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// Typed entry points for the common interaction kinds. Each builds the
// event and hands it to Track, so callers never assemble metadata by hand.

func (t *Tracker) TrackBookView(ctx context.Context, userID, bookID, page string) {
	t.Track(ctx, models.NewEvent(models.EventBookView, userID, models.EventMetadata{
		BookID: bookID,
		Page:   page,
	}))
}

func (t *Tracker) TrackSearch(ctx context.Context, userID, query string) {
	t.Track(ctx, models.NewEvent(models.EventBookSearch, userID, models.EventMetadata{
		Query: query,
	}))
}

// TrackRating records a new rating, or an update when the user had rated
// the book before.
func (t *Tracker) TrackRating(ctx context.Context, userID, bookID string, rating int, updated bool) {
	typ := models.EventRatingGiven
	if updated {
		typ = models.EventRatingUpdated
	}
	t.Track(ctx, models.NewEvent(typ, userID, models.EventMetadata{
		BookID: bookID,
		Rating: rating,
	}))
}

func (t *Tracker) TrackLike(ctx context.Context, userID, bookID string, liked bool) {
	typ := models.EventBookLiked
	if !liked {
		typ = models.EventBookUnliked
	}
	t.Track(ctx, models.NewEvent(typ, userID, models.EventMetadata{BookID: bookID}))
}

func (t *Tracker) TrackShelf(ctx context.Context, userID, bookID string, added bool) {
	typ := models.EventShelfAdd
	if !added {
		typ = models.EventShelfRemove
	}
	t.Track(ctx, models.NewEvent(typ, userID, models.EventMetadata{BookID: bookID}))
}

func (t *Tracker) TrackTBR(ctx context.Context, userID, bookID string, added bool) {
	typ := models.EventTBRAdd
	if !added {
		typ = models.EventTBRRemove
	}
	t.Track(ctx, models.NewEvent(typ, userID, models.EventMetadata{BookID: bookID}))
}

func (t *Tracker) TrackFavorite(ctx context.Context, userID, bookID string, added bool) {
	typ := models.EventFavoriteAdd
	if !added {
		typ = models.EventFavoriteRemove
	}
	t.Track(ctx, models.NewEvent(typ, userID, models.EventMetadata{BookID: bookID}))
}

func (t *Tracker) TrackFollow(ctx context.Context, userID, targetUserID string, followed bool) {
	typ := models.EventUserFollowed
	if !followed {
		typ = models.EventUserUnfollowed
	}
	t.Track(ctx, models.NewEvent(typ, userID, models.EventMetadata{
		TargetUserID: targetUserID,
	}))
}

func (t *Tracker) TrackOnboardingCompleted(ctx context.Context, userID string) {
	t.Track(ctx, models.NewEvent(models.EventOnboardingCompleted, userID, models.EventMetadata{}))
}

// Recommendation outcome events. These also flip the matching flag on the
// stored recommendation log via Track's outcome handling.

func (t *Tracker) TrackRecImpression(ctx context.Context, userID, bookID, generationID string, position int) {
	t.Track(ctx, models.NewEvent(models.EventRecImpression, userID, models.EventMetadata{
		BookID:       bookID,
		GenerationID: generationID,
		Position:     position,
	}))
}

func (t *Tracker) TrackRecClick(ctx context.Context, userID, bookID, generationID string, position int) {
	t.Track(ctx, models.NewEvent(models.EventRecClick, userID, models.EventMetadata{
		BookID:       bookID,
		GenerationID: generationID,
		Position:     position,
	}))
}

func (t *Tracker) TrackRecConverted(ctx context.Context, userID, bookID, generationID string) {
	t.Track(ctx, models.NewEvent(models.EventRecConverted, userID, models.EventMetadata{
		BookID:       bookID,
		GenerationID: generationID,
	}))
}

func (t *Tracker) TrackRecDismissed(ctx context.Context, userID, bookID, generationID string) {
	t.Track(ctx, models.NewEvent(models.EventRecDismissed, userID, models.EventMetadata{
		BookID:       bookID,
		GenerationID: generationID,
	}))
}
