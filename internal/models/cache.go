// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package models

import "time"

// Score factor names used in breakdowns, explanations, and configuration.
const (
	FactorGenre     = "genre"
	FactorAuthor    = "author"
	FactorQuality   = "quality"
	FactorFriends   = "friends"
	FactorTrending  = "trending"
	FactorRecency   = "recency"
	FactorDiversity = "diversity"
)

// RecommendedItem is one ranked entry of a recommendation list. Book
// records are hydrated from the catalog by the caller; only the id is
// persisted.
type RecommendedItem struct {
	BookID    string             `json:"book_id"`
	Score     float64            `json:"score"`
	Reason    string             `json:"reason,omitempty"`
	Algorithm string             `json:"algorithm"`
	Position  int                `json:"position"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

// Cache list slot names.
const (
	CacheSlotHome    = "home"
	CacheSlotFriends = "friends"
)

// RecommendationCache is a per-user cached ranked list pair with an
// explicit staleness flag independent of time-based expiry.
type RecommendationCache struct {
	UserID      string            `json:"user_id"`
	Home        []RecommendedItem `json:"home"`
	Friends     []RecommendedItem `json:"friends"`
	GeneratedAt time.Time         `json:"generated_at"`
	ExpiresAt   time.Time         `json:"expires_at"`
	IsStale     bool              `json:"is_stale"`
}

// Fresh implements the freshness contract: an entry is fresh iff it has not
// been explicitly marked stale and its logical TTL has not elapsed. A stale
// entry is terminal until the next write, regardless of ExpiresAt.
func (c *RecommendationCache) Fresh(now time.Time) bool {
	if c == nil || c.IsStale {
		return false
	}
	return c.ExpiresAt.After(now)
}
