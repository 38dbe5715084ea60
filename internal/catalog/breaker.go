// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package catalog

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/logging"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/metrics"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// BreakerCatalog wraps a Catalog with a circuit breaker so a degraded
// catalog backend fails fast instead of stalling every recommendation
// request. Callers fall back to cached or trending results on open-circuit
// errors.
type BreakerCatalog struct {
	inner Catalog
	cb    *gobreaker.CircuitBreaker[[]*models.Book]
}

// NewBreakerCatalog wraps inner. The breaker opens after a 60% failure
// rate over at least 10 requests and probes again after 30 seconds.
func NewBreakerCatalog(inner Catalog) *BreakerCatalog {
	log := logging.Component("catalog-breaker")

	cb := gobreaker.NewCircuitBreaker[[]*models.Book](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("catalog circuit state transition")
			if to == gobreaker.StateOpen {
				metrics.CatalogBreakerState.Set(1)
			} else {
				metrics.CatalogBreakerState.Set(0)
			}
		},
	})

	return &BreakerCatalog{inner: inner, cb: cb}
}

func (c *BreakerCatalog) BooksByGenres(ctx context.Context, genres []string, f QueryFilter) ([]*models.Book, error) {
	return c.cb.Execute(func() ([]*models.Book, error) {
		return c.inner.BooksByGenres(ctx, genres, f)
	})
}

func (c *BreakerCatalog) BooksByAuthors(ctx context.Context, authors []string, f QueryFilter) ([]*models.Book, error) {
	return c.cb.Execute(func() ([]*models.Book, error) {
		return c.inner.BooksByAuthors(ctx, authors, f)
	})
}

func (c *BreakerCatalog) BooksByIDs(ctx context.Context, ids []string) ([]*models.Book, error) {
	return c.cb.Execute(func() ([]*models.Book, error) {
		return c.inner.BooksByIDs(ctx, ids)
	})
}

func (c *BreakerCatalog) Trending(ctx context.Context, limit int) ([]*models.Book, error) {
	return c.cb.Execute(func() ([]*models.Book, error) {
		return c.inner.Trending(ctx, limit)
	})
}
