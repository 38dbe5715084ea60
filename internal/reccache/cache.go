// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

// Package reccache stores generated recommendation lists in Redis with the
// staleness-aware freshness protocol: a logical TTL plus an explicit stale
// flag inside the document, and a longer physical expiry on the key so
// stale entries remain readable for degraded serving until Redis evicts
// them.
package reccache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/config"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/logging"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/metrics"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// ErrNotCached is returned when a user has no cache document at all.
var ErrNotCached = errors.New("reccache: no cached recommendations")

const keyPrefix = "reccache:"

// commands is the slice of the Redis API this package uses. Narrow on
// purpose so tests can substitute an in-memory fake.
type commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Store reads and writes per-user recommendation cache documents.
type Store struct {
	rdb       commands
	ttl       time.Duration // logical freshness window
	retention time.Duration // physical key expiry
}

// NewClient dials Redis with the configured options.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		PoolSize:    cfg.PoolSize,
	})
}

// NewStore wraps a Redis client. ttl is the logical freshness window;
// retention is how long documents stay readable past it.
func NewStore(rdb commands, ttl, retention time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl, retention: retention}
}

func key(userID string) string {
	return keyPrefix + userID
}

// Put replaces the user's cache document with freshly generated lists. Both
// slots are written together; the stale flag resets and the logical TTL
// restarts.
func (s *Store) Put(ctx context.Context, userID string, home, friends []models.RecommendedItem) (*models.RecommendationCache, error) {
	now := time.Now().UTC()
	doc := &models.RecommendationCache{
		UserID:      userID,
		Home:        home,
		Friends:     friends,
		GeneratedAt: now,
		ExpiresAt:   now.Add(s.ttl),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal cache doc: %w", err)
	}

	if err := s.rdb.Set(ctx, key(userID), data, s.retention).Err(); err != nil {
		return nil, fmt.Errorf("set cache doc: %w", err)
	}
	return doc, nil
}

// Get returns the cache document regardless of freshness, or ErrNotCached.
// Callers decide between Fresh, stale serving, and regeneration.
func (s *Store) Get(ctx context.Context, userID string) (*models.RecommendationCache, error) {
	val, err := s.rdb.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("get cache doc: %w", err)
	}

	var doc models.RecommendationCache
	if err := json.Unmarshal(val, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal cache doc: %w", err)
	}
	return &doc, nil
}

// MarkStale flips the stale flag without touching the lists, so readers can
// keep serving the old ranking while a rebuild runs. Missing documents are
// a no-op: there is nothing to invalidate.
func (s *Store) MarkStale(ctx context.Context, userID string) error {
	doc, err := s.Get(ctx, userID)
	if errors.Is(err, ErrNotCached) {
		return nil
	}
	if err != nil {
		return err
	}
	if doc.IsStale {
		return nil
	}

	doc.IsStale = true
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal cache doc: %w", err)
	}

	// redis.KeepTTL preserves the remaining physical expiry.
	if err := s.rdb.Set(ctx, key(userID), data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("mark stale: %w", err)
	}
	metrics.CacheInvalidations.Inc()
	return nil
}

// CachedUserIDs scans all cache keys and returns their user ids. The bulk
// refresher uses this to find entries needing regeneration.
func (s *Store) CachedUserIDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)

	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan cache keys: %w", err)
		}
		for _, k := range keys {
			ids = append(ids, k[len(keyPrefix):])
		}
		if next == 0 {
			return ids, nil
		}
		cursor = next
	}
}

// Ping verifies the Redis connection for health checks.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		log := logging.Component("reccache")
		log.Warn().Err(err).Msg("redis ping failed")
		return err
	}
	return nil
}
