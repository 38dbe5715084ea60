// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

// Package social scores friendship strength and produces friend-based
// book recommendations from the follow graph.
package social

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/catalog"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/config"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/logging"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/store"
)

// Service computes social signals for the recommendation pipeline.
type Service struct {
	cfg      config.FriendsConfig
	graph    catalog.SocialGraph
	profiles *store.ProfileStore
	log      zerolog.Logger
}

// NewService wires a social scoring service.
func NewService(cfg config.FriendsConfig, graph catalog.SocialGraph, profiles *store.ProfileStore) *Service {
	return &Service{
		cfg:      cfg,
		graph:    graph,
		profiles: profiles,
		log:      logging.Component("social"),
	}
}

// FriendshipStrength scores a follow edge in [0,1]: a base constant, a
// mutual-follow bonus, a capped mutual-friend bonus, and a taste-similarity
// bonus from the two users' genre-weight vectors.
func (s *Service) FriendshipStrength(ctx context.Context, userID, friendID string) (float64, error) {
	user, err := s.graph.User(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load user %s: %w", userID, err)
	}
	friend, err := s.graph.User(ctx, friendID)
	if err != nil {
		return 0, fmt.Errorf("load friend %s: %w", friendID, err)
	}

	strength := s.cfg.BaseStrength

	if user.Follows(friendID) && friend.Follows(userID) {
		strength += s.cfg.MutualBonus
	}

	mutuals := countMutualFriends(user, friend)
	strength += math.Min(float64(mutuals)*s.cfg.MutualFriendBonus, s.cfg.MutualFriendCap)

	similarity, err := s.tasteSimilarity(ctx, userID, friendID)
	if err != nil {
		return 0, err
	}
	strength += similarity * s.cfg.TasteSimilarityWeight

	return math.Min(1, strength), nil
}

// tasteSimilarity is the cosine similarity of two users' genre-weight
// vectors, 0 when either profile is missing or empty.
func (s *Service) tasteSimilarity(ctx context.Context, userID, friendID string) (float64, error) {
	a, err := s.loadWeights(ctx, userID)
	if err != nil {
		return 0, err
	}
	b, err := s.loadWeights(ctx, friendID)
	if err != nil {
		return 0, err
	}
	return CosineSimilarity(a, b), nil
}

func (s *Service) loadWeights(ctx context.Context, userID string) (models.WeightMap, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	return p.GenreWeights, nil
}

// CosineSimilarity is the dot product over the union of keys divided by the
// product of magnitudes. Identical vectors score exactly 1; a zero vector
// on either side scores 0.
func CosineSimilarity(a, b models.WeightMap) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for k, av := range a {
		magA += av * av
		if bv, ok := b[k]; ok {
			dot += av * bv
		}
	}
	for _, bv := range b {
		magB += bv * bv
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func countMutualFriends(a, b *models.User) int {
	following := make(map[string]struct{}, len(a.Following))
	for _, id := range a.Following {
		following[id] = struct{}{}
	}

	count := 0
	for _, id := range b.Following {
		if _, ok := following[id]; ok {
			count++
		}
	}
	return count
}
