// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/catalog"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/config"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/logging"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/metrics"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/profile"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/reccache"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/social"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/store"
)

// activityWindow bounds the recent-activity context lookup.
const activityWindow = 24 * time.Hour

// Service orchestrates the recommendation pipeline.
type Service struct {
	cfg     *config.Config
	builder *profile.Builder
	social  *social.Service
	catalog catalog.Catalog
	graph   catalog.SocialGraph
	cache   *reccache.Store
	recLogs *store.RecLogStore
	events  *store.EventStore
	group   singleflight.Group
	rebuild func(userID string)
	log     zerolog.Logger
}

// NewService wires the recommendation service.
func NewService(
	cfg *config.Config,
	builder *profile.Builder,
	socialSvc *social.Service,
	cat catalog.Catalog,
	graph catalog.SocialGraph,
	cache *reccache.Store,
	recLogs *store.RecLogStore,
	events *store.EventStore,
) *Service {
	return &Service{
		cfg:     cfg,
		builder: builder,
		social:  socialSvc,
		catalog: cat,
		graph:   graph,
		cache:   cache,
		recLogs: recLogs,
		events:  events,
		log:     logging.Component("recommend"),
	}
}

// SetRebuildHook installs the background-rebuild request used by stale
// serving. Without a hook, stale reads simply return the old document.
func (s *Service) SetRebuildHook(fn func(userID string)) {
	s.rebuild = fn
}

// Recommendations returns the user's home and friends lists, serving from
// cache when fresh and regenerating otherwise. With AllowStale, an
// existing stale document is returned immediately and a background rebuild
// is requested instead of blocking the caller.
func (s *Service) Recommendations(ctx context.Context, userID string, opts Options) (*models.RecommendationCache, error) {
	doc, err := s.cache.Get(ctx, userID)
	switch {
	case err == nil && doc.Fresh(time.Now()):
		metrics.CacheHits.Inc()
		return doc, nil
	case err == nil && opts.AllowStale:
		metrics.CacheStaleReads.Inc()
		if s.rebuild != nil {
			s.rebuild(userID)
		}
		return doc, nil
	case err != nil && !errors.Is(err, reccache.ErrNotCached):
		// Degraded cache backend: generate without it rather than failing.
		s.log.Warn().Err(err).Str("user_id", userID).Msg("cache read failed, generating inline")
	default:
		metrics.CacheMisses.Inc()
	}

	return s.Generate(ctx, userID, opts)
}

// Home returns just the ranked home slot, truncated to limit when limit is
// positive. Convenience wrapper for callers that do not want the whole
// document.
func (s *Service) Home(ctx context.Context, userID string, limit int, opts Options) ([]models.RecommendedItem, error) {
	doc, err := s.Recommendations(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	items := doc.Home
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// FriendRecommendations computes the friends slot directly, bypassing the
// cache. Unlike the cached slot, errors propagate so callers can tell an
// empty result from a failed one.
func (s *Service) FriendRecommendations(ctx context.Context, userID string, limit int) ([]models.RecommendedItem, error) {
	if limit <= 0 {
		limit = s.cfg.Cache.FriendsLimit
	}
	signals, err := s.social.FriendRecommendations(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("friend recommendations %s: %w", userID, err)
	}

	items := make([]models.RecommendedItem, len(signals))
	for i, sig := range signals {
		items[i] = models.RecommendedItem{
			BookID:    sig.BookID,
			Score:     sig.Score,
			Reason:    sig.Attribution,
			Algorithm: AlgorithmFriends,
			Position:  i,
			Breakdown: map[string]float64{models.FactorFriends: sig.Score},
		}
	}
	return items, nil
}

// Generate runs the full pipeline and replaces the user's cache document.
// Concurrent generations for the same user coalesce.
func (s *Service) Generate(ctx context.Context, userID string, opts Options) (*models.RecommendationCache, error) {
	v, err, _ := s.group.Do(userID, func() (interface{}, error) {
		return s.generate(ctx, userID, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.RecommendationCache), nil
}

func (s *Service) generate(ctx context.Context, userID string, opts Options) (*models.RecommendationCache, error) {
	start := time.Now()

	user, err := s.graph.User(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}

	p, err := s.builder.EnsureFresh(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure profile %s: %w", userID, err)
	}

	home, err := s.homeItems(ctx, user, p, start)
	if err != nil {
		return nil, err
	}
	friends := s.friendItems(ctx, userID)

	doc, err := s.cache.Put(ctx, userID, home, friends)
	if err != nil {
		// The generated lists are still good; serve them and let the next
		// request retry the cache write.
		s.log.Warn().Err(err).Str("user_id", userID).Msg("cache write failed")
		now := time.Now().UTC()
		doc = &models.RecommendationCache{
			UserID: userID, Home: home, Friends: friends,
			GeneratedAt: now, ExpiresAt: now.Add(s.cfg.Cache.TTL),
		}
	}

	s.logGeneration(doc, opts)

	metrics.RecordRecommendation(models.CacheSlotHome, time.Since(start))
	s.log.Debug().
		Str("user_id", userID).
		Int("home", len(home)).
		Int("friends", len(friends)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendations generated")

	return doc, nil
}

// homeItems produces the ranked home list.
func (s *Service) homeItems(ctx context.Context, user *models.User, p *models.UserPreferenceProfile, now time.Time) ([]models.RecommendedItem, error) {
	rc := requestContext{now: now, activeUser: s.isActive(ctx, user.ID, now)}

	var scored []*ScoredItem
	if !p.Empty() {
		candidates, err := s.gatherCandidates(ctx, p, user)
		if err != nil {
			return nil, err
		}

		scored = make([]*ScoredItem, 0, len(candidates))
		for _, c := range candidates {
			scored = append(scored, s.scoreCandidate(c, p, rc))
		}
	}

	fallback := len(scored) == 0
	if fallback {
		metrics.TrendingFallbacks.Inc()
		var err error
		scored, err = s.trendingItems(ctx, user)
		if err != nil {
			return nil, err
		}
	}

	sortByScore(scored)
	var top []*ScoredItem
	if fallback {
		// Trending is popularity-ordered by construction; there is no
		// personal signal for the diversity pass to trade off against.
		top = scored
		if len(top) > s.cfg.Cache.HomeLimit {
			top = top[:s.cfg.Cache.HomeLimit]
		}
	} else {
		top = s.rerankDiverse(scored, s.cfg.Cache.HomeLimit)
	}

	items := make([]models.RecommendedItem, len(top))
	for i, item := range top {
		items[i] = models.RecommendedItem{
			BookID:    item.Book.ID,
			Score:     item.Score,
			Reason:    item.Reason,
			Algorithm: item.Algorithm,
			Position:  i,
			Breakdown: item.Breakdown,
		}
	}
	return items, nil
}

// trendingItems is the cold-start ranking: catalog popularity ordered by
// quality-weighted volume, with a unit trending breakdown so outcome
// analysis can tell fallback items apart.
func (s *Service) trendingItems(ctx context.Context, user *models.User) ([]*ScoredItem, error) {
	candidates, err := s.trendingCandidates(ctx, user)
	if err != nil {
		return nil, err
	}

	items := make([]*ScoredItem, len(candidates))
	for i, c := range candidates {
		rating, _ := c.Book.BestRating()
		reads := float64(c.Book.ReadCount) / float64(s.cfg.Scoring.TrendingReadCeiling)
		items[i] = &ScoredItem{
			Book:      c.Book,
			Score:     clamp01(rating / 5 * minf(1, reads)),
			Breakdown: map[string]float64{models.FactorTrending: 1},
			Reason:    "Trending on PaperBoxd",
			Algorithm: AlgorithmTrending,
		}
	}
	return items, nil
}

// friendItems produces the friends slot. Social failures yield an empty
// slot, not an error: the home list is still worth serving.
func (s *Service) friendItems(ctx context.Context, userID string) []models.RecommendedItem {
	start := time.Now()
	signals, err := s.social.FriendRecommendations(ctx, userID, s.cfg.Cache.FriendsLimit)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("friend recommendations unavailable")
		return nil
	}

	items := make([]models.RecommendedItem, len(signals))
	for i, sig := range signals {
		items[i] = models.RecommendedItem{
			BookID:    sig.BookID,
			Score:     sig.Score,
			Reason:    sig.Attribution,
			Algorithm: AlgorithmFriends,
			Position:  i,
			Breakdown: map[string]float64{models.FactorFriends: sig.Score},
		}
	}
	metrics.RecordRecommendation(models.CacheSlotFriends, time.Since(start))
	return items
}

// isActive reports recent interaction activity for the context multiplier.
func (s *Service) isActive(ctx context.Context, userID string, now time.Time) bool {
	count, err := s.events.CountByUserSince(ctx, userID, now.Add(-activityWindow))
	if err != nil {
		return false
	}
	return count > 0
}

// logGeneration appends outcome-tracking logs for both slots without
// blocking the response. Log failures are dropped; the ranking never
// depends on them.
func (s *Service) logGeneration(doc *models.RecommendationCache, opts Options) {
	generationID := uuid.NewString()
	now := time.Now().UTC()

	var logs []*models.RecommendationLog
	appendSlot := func(items []models.RecommendedItem, page string) {
		for _, item := range items {
			logs = append(logs, &models.RecommendationLog{
				ID:           uuid.NewString(),
				UserID:       doc.UserID,
				BookID:       item.BookID,
				GenerationID: generationID,
				Algorithm:    item.Algorithm,
				Page:         page,
				SessionID:    opts.SessionID,
				Score:        item.Score,
				Breakdown:    item.Breakdown,
				Position:     item.Position,
				CreatedAt:    now,
			})
		}
	}
	page := opts.Page
	if page == "" {
		page = models.CacheSlotHome
	}
	appendSlot(doc.Home, page)
	appendSlot(doc.Friends, models.CacheSlotFriends)

	if len(logs) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.recLogs.PutBatch(ctx, logs); err != nil {
			s.log.Warn().Err(err).Str("user_id", doc.UserID).Msg("recommendation log write failed")
		}
	}()
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
