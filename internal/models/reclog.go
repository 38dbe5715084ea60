// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package models

import "time"

// RecommendationLog is one per-(user, book, generation) analytics record.
// It is appended when a recommendation list is generated and updated in
// place as outcome events arrive. The ranking algorithm never reads it.
type RecommendationLog struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	BookID       string             `json:"book_id"`
	GenerationID string             `json:"generation_id"`
	Algorithm    string             `json:"algorithm"`
	Page         string             `json:"page,omitempty"`
	SessionID    string             `json:"session_id,omitempty"`
	Score        float64            `json:"score"`
	Breakdown    map[string]float64 `json:"breakdown,omitempty"`
	Position     int                `json:"position"`

	// Outcome flags, updated in place after creation.
	Shown     bool `json:"shown"`
	Clicked   bool `json:"clicked"`
	Converted bool `json:"converted"`
	Dismissed bool `json:"dismissed"`

	CreatedAt   time.Time  `json:"created_at"`
	ShownAt     *time.Time `json:"shown_at,omitempty"`
	ClickedAt   *time.Time `json:"clicked_at,omitempty"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`
	DismissedAt *time.Time `json:"dismissed_at,omitempty"`
}
