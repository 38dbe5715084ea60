// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

// Package recommend generates personalized book recommendations.
//
// The pipeline runs in five stages:
//
//  1. Profile: ensure the user's preference profile is fresh (rebuilt when
//     older than the configured age, coalesced under concurrent requests).
//  2. Candidates: three concurrent sources (top genres, top authors,
//     similar-to-recently-loved) merged and deduplicated, with a trending
//     fallback when the profile yields nothing.
//  3. Scoring: a weighted sum of seven factors, each normalized to [0,1],
//     clamped to [0,1], with per-factor breakdowns kept for explanations
//     and outcome analysis.
//  4. Context: feature-flagged multiplicative adjustments from time of
//     day, recent activity, and reading velocity.
//  5. Diversity: a two-phase re-rank that keeps the best-scored slots
//     untouched and fills the rest greedily, trading score against genre
//     overlap with already-selected items.
//
// Generated lists are written to the recommendation cache and logged for
// outcome tracking. All ranking is deterministic for a fixed configuration
// and input state.
package recommend
