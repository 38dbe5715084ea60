// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

// Package catalog defines the read-side dependencies of the recommendation
// pipeline: the book catalog and the social graph. Both are interfaces so
// the backing service can change without touching the scoring code.
package catalog

import (
	"context"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// QueryFilter narrows catalog queries to recommendable books.
type QueryFilter struct {
	// MinRating excludes poorly rated books. Zero disables the filter.
	MinRating float64
	// MinPageCount excludes pamphlet-length entries. Zero disables.
	MinPageCount int
	// Limit caps the result set. Zero means backend default.
	Limit int
}

// Catalog is the book metadata source. Implementations rank multi-match
// queries by quality (rating weighted by read count) descending.
type Catalog interface {
	// BooksByGenres returns books matching any of the normalized genres.
	BooksByGenres(ctx context.Context, genres []string, f QueryFilter) ([]*models.Book, error)

	// BooksByAuthors returns books by any of the sanitized author names.
	BooksByAuthors(ctx context.Context, authors []string, f QueryFilter) ([]*models.Book, error)

	// BooksByIDs batch-hydrates book records. Unknown ids are skipped, not
	// errors; the result order follows ids.
	BooksByIDs(ctx context.Context, ids []string) ([]*models.Book, error)

	// Trending returns globally popular books by read and like volume.
	Trending(ctx context.Context, limit int) ([]*models.Book, error)
}

// SocialGraph is the user and follow-edge source.
type SocialGraph interface {
	// User returns one user with collections populated.
	User(ctx context.Context, id string) (*models.User, error)

	// Users batch-hydrates user records. Unknown ids are skipped.
	Users(ctx context.Context, ids []string) ([]*models.User, error)
}
