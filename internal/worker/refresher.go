// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package worker

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/config"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/logging"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/reccache"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/recommend"
)

// EngagementScorer ranks users by recent interaction volume so the sweep
// refreshes the most engaged users first.
type EngagementScorer interface {
	EngagementScore(ctx context.Context, userID string) (float64, error)
}

// Refresher periodically sweeps the recommendation cache and regenerates
// documents that have gone stale or past their logical TTL, so most users
// hit a warm cache instead of paying generation latency on request.
// Rebuild throughput is rate limited to keep sweeps from starving
// interactive traffic.
type Refresher struct {
	cache    *reccache.Store
	recs     *recommend.Service
	scorer   EngagementScorer
	interval time.Duration
	limiter  *rate.Limiter
	log      zerolog.Logger
}

// NewRefresher builds a sweep service from the worker configuration. A nil
// scorer disables prioritization; stale entries refresh in scan order.
func NewRefresher(cfg config.WorkerConfig, cache *reccache.Store, recs *recommend.Service, scorer EngagementScorer) *Refresher {
	return &Refresher{
		cache:    cache,
		recs:     recs,
		scorer:   scorer,
		interval: cfg.RefreshInterval,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RefreshRatePerSec), 1),
		log:      logging.Component("refresher"),
	}
}

// Serve sweeps on the configured interval until the context is cancelled.
// Intended to run under the supervision tree.
func (r *Refresher) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// sweep regenerates every cached document that is no longer fresh. Errors
// on individual users are logged and skipped; the sweep keeps going.
func (r *Refresher) sweep(ctx context.Context) {
	start := time.Now()

	ids, err := r.cache.CachedUserIDs(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("cache scan failed, skipping sweep")
		return
	}

	now := time.Now()
	var stale []string
	for _, userID := range ids {
		doc, err := r.cache.Get(ctx, userID)
		if err != nil {
			// Evicted between scan and read; nothing to refresh.
			continue
		}
		if !doc.Fresh(now) {
			stale = append(stale, userID)
		}
	}
	r.prioritize(ctx, stale)

	refreshed := 0
	for _, userID := range stale {
		if err := r.limiter.Wait(ctx); err != nil {
			return
		}
		if _, err := r.recs.Generate(ctx, userID, recommend.Options{}); err != nil {
			r.log.Warn().Err(err).Str("user_id", userID).Msg("background refresh failed")
			continue
		}
		refreshed++
	}

	r.log.Info().
		Int("scanned", len(ids)).
		Int("refreshed", refreshed).
		Dur("elapsed", time.Since(start)).
		Msg("cache sweep complete")
}

// prioritize orders stale users by descending engagement so the rate
// budget goes to users most likely to see the result.
func (r *Refresher) prioritize(ctx context.Context, userIDs []string) {
	if r.scorer == nil || len(userIDs) < 2 {
		return
	}

	scores := make(map[string]float64, len(userIDs))
	for _, id := range userIDs {
		score, err := r.scorer.EngagementScore(ctx, id)
		if err != nil {
			continue
		}
		scores[id] = score
	}

	sort.SliceStable(userIDs, func(i, j int) bool {
		return scores[userIDs[i]] > scores[userIDs[j]]
	})
}
