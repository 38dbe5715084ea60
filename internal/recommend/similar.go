// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/catalog"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// SimilarBooks returns books resembling the given one by shared genres and
// authors, ranked by quality. Different editions of the same work are
// collapsed by (title, primary author) so the list never shows duplicates.
func (s *Service) SimilarBooks(ctx context.Context, bookID string, limit int) ([]models.RecommendedItem, error) {
	seeds, err := s.catalog.BooksByIDs(ctx, []string{bookID})
	if err != nil {
		return nil, fmt.Errorf("load seed book %s: %w", bookID, err)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("load seed book %s: %w", bookID, catalog.ErrBookNotFound)
	}
	seed := seeds[0]

	filter := catalog.QueryFilter{
		MinRating:    s.cfg.Candidates.MinQualityRating,
		MinPageCount: s.cfg.Candidates.MinPageCount,
		Limit:        s.cfg.Candidates.PerSourceLimit,
	}

	byGenre, err := s.catalog.BooksByGenres(ctx, seed.NormalizedGenres(), filter)
	if err != nil {
		return nil, fmt.Errorf("similar by genre: %w", err)
	}
	byAuthor, err := s.catalog.BooksByAuthors(ctx, seed.Authors, filter)
	if err != nil {
		return nil, fmt.Errorf("similar by author: %w", err)
	}

	// Author and genre matches compete on quality alone; the source only
	// decides the explanation.
	type match struct {
		book   *models.Book
		reason string
	}
	seen := map[string]struct{}{bookID: {}}
	var matches []match
	collect := func(books []*models.Book, reason string) {
		for _, book := range books {
			if _, dup := seen[book.ID]; dup {
				continue
			}
			seen[book.ID] = struct{}{}
			matches = append(matches, match{book, reason})
		}
	}
	collect(byAuthor, fmt.Sprintf("More from %s", seed.PrimaryAuthor()))
	collect(byGenre, fmt.Sprintf("Similar to %s", seed.Title))

	sort.SliceStable(matches, func(i, j int) bool {
		qi, qj := s.qualityFactor(matches[i].book), s.qualityFactor(matches[j].book)
		if qi != qj {
			return qi > qj
		}
		return matches[i].book.ID < matches[j].book.ID
	})

	// Ranking before edition dedup keeps the better-rated printing.
	editions := map[string]struct{}{editionKey(seed): {}}
	var items []models.RecommendedItem
	for _, m := range matches {
		if _, dup := editions[editionKey(m.book)]; dup {
			continue
		}
		editions[editionKey(m.book)] = struct{}{}

		items = append(items, models.RecommendedItem{
			BookID:    m.book.ID,
			Score:     s.qualityFactor(m.book),
			Reason:    m.reason,
			Algorithm: AlgorithmSimilar,
			Position:  len(items),
		})
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items, nil
}

// editionKey collapses reprints: same title and primary author mean the
// same work.
func editionKey(b *models.Book) string {
	return strings.ToLower(strings.TrimSpace(b.Title)) + "|" + models.SanitizeAuthor(b.PrimaryAuthor())
}
