// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package models

import "time"

// Rolling interaction window bounds.
const (
	MaxRecentViews    = 100
	MaxRecentSearches = 50
)

// ViewRecord is one entry of the rolling recent-views window.
type ViewRecord struct {
	BookID   string    `json:"book_id"`
	ViewedAt time.Time `json:"viewed_at"`
}

// SearchRecord is one entry of the rolling recent-searches window.
type SearchRecord struct {
	Query      string    `json:"query"`
	SearchedAt time.Time `json:"searched_at"`
}

// OnboardingPreferences is the one-time questionnaire result that seeds
// initial weights before any organic signal exists.
type OnboardingPreferences struct {
	Genres      map[string]float64 `json:"genres"`
	Authors     []string           `json:"authors"`
	CompletedAt time.Time          `json:"completed_at"`
}

// UserPreferenceProfile holds a user's computed preference signals. One
// profile exists per user, upsert-created on first need, recomputed in
// place, and never deleted.
type UserPreferenceProfile struct {
	UserID string `json:"user_id"`

	// GenreWeights and AuthorWeights accumulate affinity by normalized
	// genre name and sanitized author name. Always non-negative.
	GenreWeights  WeightMap `json:"genre_weights"`
	AuthorWeights WeightMap `json:"author_weights"`

	// AvgPageLength is the mean page count across shelf and favorites.
	AvgPageLength float64 `json:"avg_page_length"`

	// DiversityScore is the normalized Shannon entropy of the genre-weight
	// distribution, in [0,1].
	DiversityScore float64 `json:"diversity_score"`

	// ReadingVelocity is finished books per month.
	ReadingVelocity float64 `json:"reading_velocity"`

	LastComputed time.Time `json:"last_computed"`

	Onboarding *OnboardingPreferences `json:"onboarding,omitempty"`

	// Bounded rolling windows of recent activity for auxiliary signals.
	RecentViews    []ViewRecord   `json:"recent_views,omitempty"`
	RecentSearches []SearchRecord `json:"recent_searches,omitempty"`
}

// NewUserPreferenceProfile returns an empty profile for the user.
func NewUserPreferenceProfile(userID string) *UserPreferenceProfile {
	return &UserPreferenceProfile{
		UserID:        userID,
		GenreWeights:  make(WeightMap),
		AuthorWeights: make(WeightMap),
	}
}

// StaleAfter reports whether the profile is older than maxAge and should be
// fully recomputed before use.
func (p *UserPreferenceProfile) StaleAfter(maxAge time.Duration, now time.Time) bool {
	return p.LastComputed.IsZero() || now.Sub(p.LastComputed) > maxAge
}

// Empty reports whether the profile carries no preference signal at all.
func (p *UserPreferenceProfile) Empty() bool {
	return len(p.GenreWeights) == 0 && len(p.AuthorWeights) == 0
}

// RecordView appends to the rolling views window, evicting the oldest entry
// once the window is full.
func (p *UserPreferenceProfile) RecordView(bookID string, at time.Time) {
	p.RecentViews = append(p.RecentViews, ViewRecord{BookID: bookID, ViewedAt: at})
	if len(p.RecentViews) > MaxRecentViews {
		p.RecentViews = p.RecentViews[len(p.RecentViews)-MaxRecentViews:]
	}
}

// RecordSearch appends to the rolling searches window, evicting the oldest
// entry once the window is full.
func (p *UserPreferenceProfile) RecordSearch(query string, at time.Time) {
	p.RecentSearches = append(p.RecentSearches, SearchRecord{Query: query, SearchedAt: at})
	if len(p.RecentSearches) > MaxRecentSearches {
		p.RecentSearches = p.RecentSearches[len(p.RecentSearches)-MaxRecentSearches:]
	}
}
