// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package social

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// FriendSignal aggregates how a user's friends feel about one book.
type FriendSignal struct {
	BookID          string
	FriendsWhoLoved []string // usernames, strongest first
	TotalStrength   float64
	HighestRating   int
	Score           float64
	Attribution     string
}

// FriendRecommendations collects books loved by followed users, weighted by
// friendship strength, excluding books the requesting user already owns.
// Results are sorted by score descending, capped at limit.
func (s *Service) FriendRecommendations(ctx context.Context, userID string, limit int) ([]*FriendSignal, error) {
	user, err := s.graph.User(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	if len(user.Following) == 0 {
		return nil, nil
	}

	friends, err := s.graph.Users(ctx, user.Following)
	if err != nil {
		return nil, fmt.Errorf("load friends of %s: %w", userID, err)
	}

	owned := user.OwnedBookIDs()
	aggregate := make(map[string]*FriendSignal)

	type contribution struct {
		username string
		strength float64
	}
	contributors := make(map[string][]contribution)

	for _, friend := range friends {
		strength, err := s.FriendshipStrength(ctx, userID, friend.ID)
		if err != nil {
			return nil, err
		}

		for bookID, rating := range friend.LovedBookRatings(s.cfg.MinLovedRating) {
			if _, own := owned[bookID]; own {
				continue
			}
			sig, ok := aggregate[bookID]
			if !ok {
				sig = &FriendSignal{BookID: bookID}
				aggregate[bookID] = sig
			}
			sig.TotalStrength += strength
			if rating > sig.HighestRating {
				sig.HighestRating = rating
			}
			contributors[bookID] = append(contributors[bookID], contribution{friend.Username, strength})
		}
	}

	signals := make([]*FriendSignal, 0, len(aggregate))
	for bookID, sig := range aggregate {
		contribs := contributors[bookID]
		sort.SliceStable(contribs, func(i, j int) bool {
			return contribs[i].strength > contribs[j].strength
		})
		for _, c := range contribs {
			sig.FriendsWhoLoved = append(sig.FriendsWhoLoved, c.username)
		}

		sig.Score = 0.5*math.Min(1, sig.TotalStrength/s.cfg.StrengthNorm) +
			0.3*math.Min(1, float64(len(contribs))/s.cfg.CountNorm) +
			0.2*(float64(sig.HighestRating)/5)
		sig.Attribution = attribution(sig.FriendsWhoLoved)
		signals = append(signals, sig)
	}

	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Score != signals[j].Score {
			return signals[i].Score > signals[j].Score
		}
		return signals[i].BookID < signals[j].BookID
	})

	if limit > 0 && len(signals) > limit {
		signals = signals[:limit]
	}
	return signals, nil
}

// attribution writes a natural-language reason naming up to two strongest
// contributors.
func attribution(usernames []string) string {
	switch len(usernames) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("%s loved this", usernames[0])
	case 2:
		return fmt.Sprintf("%s and %s loved this", usernames[0], usernames[1])
	default:
		return fmt.Sprintf("%s, %s and %d others loved this", usernames[0], usernames[1], len(usernames)-2)
	}
}
