// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package tracker

import (
	"context"
	"time"
)

// Engagement windows and the event volume treated as full engagement.
const (
	activeWindow      = 24 * time.Hour
	engagementWindow  = 7 * 24 * time.Hour
	engagementCeiling = 50
)

// IsActiveUser reports any interaction within the last day. Lookup errors
// count as inactive.
func (t *Tracker) IsActiveUser(ctx context.Context, userID string) bool {
	n, err := t.events.CountByUserSince(ctx, userID, time.Now().Add(-activeWindow))
	if err != nil {
		t.log.Warn().Err(err).Str("user_id", userID).Msg("activity lookup failed")
		return false
	}
	return n > 0
}

// EngagementScore returns weekly interaction volume normalized to [0,1].
// The bulk refresher uses it to refresh engaged users' caches first.
func (t *Tracker) EngagementScore(ctx context.Context, userID string) (float64, error) {
	n, err := t.events.CountByUserSince(ctx, userID, time.Now().Add(-engagementWindow))
	if err != nil {
		return 0, err
	}
	score := float64(n) / engagementCeiling
	if score > 1 {
		score = 1
	}
	return score, nil
}
