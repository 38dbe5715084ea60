// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package profile

import (
	"math"
	"time"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// hoursPerMonth approximates a month for velocity spans.
const hoursPerMonth = 30.44 * 24

// diversityScore is the normalized Shannon entropy of the genre-weight
// distribution: -Σ p_i·log2(p_i) / log2(k). A single genre (or none) scores
// 0; a uniform spread over many genres approaches 1.
func diversityScore(weights models.WeightMap) float64 {
	k := len(weights)
	if k < 2 {
		return 0
	}

	total := weights.Total()
	if total <= 0 {
		return 0
	}

	entropy := 0.0
	for _, w := range weights {
		if w <= 0 {
			continue
		}
		p := w / total
		entropy -= p * math.Log2(p)
	}

	score := entropy / math.Log2(float64(k))
	return math.Min(1, math.Max(0, score))
}

// readingVelocity is finished books per month over the span between the
// earliest and latest finish dates. Spans under half a month fall back to
// the raw finished count so one productive weekend does not report an
// absurd rate.
func readingVelocity(shelf []models.ShelfEntry) float64 {
	var (
		finished int
		earliest time.Time
		latest   time.Time
	)

	for _, entry := range shelf {
		if entry.FinishedAt == nil {
			continue
		}
		finished++
		at := *entry.FinishedAt
		if earliest.IsZero() || at.Before(earliest) {
			earliest = at
		}
		if latest.IsZero() || at.After(latest) {
			latest = at
		}
	}

	if finished == 0 {
		return 0
	}

	months := latest.Sub(earliest).Hours() / hoursPerMonth
	if months < 0.5 {
		return float64(finished)
	}
	return float64(finished) / months
}

// avgPageLength is the mean page count across shelf and favorites, or the
// configured default when no book carries page data.
func avgPageLength(user *models.User, books map[string]*models.Book, fallback float64) float64 {
	var (
		total float64
		count int
	)

	add := func(bookID string) {
		if book := books[bookID]; book != nil && book.PageCount > 0 {
			total += float64(book.PageCount)
			count++
		}
	}

	for _, entry := range user.Shelf {
		add(entry.BookID)
	}
	for _, ref := range user.Favorites {
		add(ref.BookID)
	}

	if count == 0 {
		return fallback
	}
	return total / float64(count)
}
