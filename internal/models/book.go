// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package models

import "time"

// Book is a read-only catalog record. The catalog itself is an external
// collaborator; the recommendation subsystem only consumes these fields.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Genres      []string  `json:"genres"`
	Authors     []string  `json:"authors"`
	PageCount   int       `json:"page_count"`
	PublishDate time.Time `json:"publish_date,omitzero"`

	// Quality signals maintained by the catalog pipeline.
	InternalRating      float64 `json:"internal_rating"`
	InternalRatingCount int     `json:"internal_rating_count"`
	ExternalRating      float64 `json:"external_rating"`
	ExternalRatingCount int     `json:"external_rating_count"`

	// Popularity counters.
	ReadCount int `json:"read_count"`
	LikeCount int `json:"like_count"`
	TBRCount  int `json:"tbr_count"`
}

// BestRating returns the internal rating when the catalog has one, falling
// back to the external rating. Both are on a 0-5 scale.
func (b *Book) BestRating() (rating float64, count int) {
	if b.InternalRatingCount > 0 {
		return b.InternalRating, b.InternalRatingCount
	}
	return b.ExternalRating, b.ExternalRatingCount
}

// NormalizedGenres returns the book's genres after normalization, with
// duplicates removed.
func (b *Book) NormalizedGenres() []string {
	seen := make(map[string]struct{}, len(b.Genres))
	out := make([]string, 0, len(b.Genres))
	for _, g := range b.Genres {
		n := NormalizeGenre(g)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// PrimaryAuthor returns the first author, or the empty string.
func (b *Book) PrimaryAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}
