// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package recommend

import (
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// Algorithm names recorded on items and logs.
const (
	AlgorithmPersonalized = "personalized"
	AlgorithmTrending     = "trending"
	AlgorithmFriends      = "friends"
	AlgorithmSimilar      = "similar"
)

// Candidate source names.
const (
	SourceGenre    = "genre"
	SourceAuthor   = "author"
	SourceSimilar  = "similar"
	SourceTrending = "trending"
)

// Candidate is a book under consideration with its provenance.
type Candidate struct {
	Book    *models.Book
	Sources []string
}

// ScoredItem is a candidate with its combined score and per-factor
// breakdown.
type ScoredItem struct {
	Book      *models.Book
	Score     float64
	Breakdown map[string]float64
	Reason    string
	Algorithm string
}

// Options tunes a single recommendation request.
type Options struct {
	// AllowStale serves an existing stale or logically expired document
	// instead of regenerating inline. A background rebuild is requested
	// when a hook is installed.
	AllowStale bool
	// Page and SessionID are recorded on recommendation logs.
	Page      string
	SessionID string
}
