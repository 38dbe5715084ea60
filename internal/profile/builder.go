// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

// Package profile computes user preference profiles from reading
// collections and interaction signals.
//
// A full build re-derives every weight from the user's collections, so it
// is safe to repeat. Incremental updates apply a single signal's delta and
// rely on the caller deduplicating event ids before invoking them.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/catalog"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/config"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/logging"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/metrics"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/store"
)

// Builder computes and persists preference profiles.
type Builder struct {
	cfg      config.ProfileConfig
	profiles *store.ProfileStore
	graph    catalog.SocialGraph
	catalog  catalog.Catalog
	group    singleflight.Group
	log      zerolog.Logger
}

// NewBuilder wires a profile builder.
func NewBuilder(cfg config.ProfileConfig, profiles *store.ProfileStore, graph catalog.SocialGraph, cat catalog.Catalog) *Builder {
	return &Builder{
		cfg:      cfg,
		profiles: profiles,
		graph:    graph,
		catalog:  cat,
		log:      logging.Component("profile-builder"),
	}
}

// Build runs a full recompute for the user and persists the result.
// Concurrent builds for the same user coalesce into a single computation;
// every caller receives the same profile.
func (b *Builder) Build(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	v, err, shared := b.group.Do(userID, func() (interface{}, error) {
		return b.build(ctx, userID)
	})
	if shared {
		metrics.ProfileBuildsDeduplicated.Inc()
	}
	if err != nil {
		metrics.ProfileBuilds.WithLabelValues("full", "error").Inc()
		return nil, err
	}
	metrics.ProfileBuilds.WithLabelValues("full", "ok").Inc()
	return v.(*models.UserPreferenceProfile), nil
}

func (b *Builder) build(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	start := time.Now()

	user, err := b.graph.User(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}

	prev, err := b.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}

	books, err := b.hydrateBooks(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("hydrate books for %s: %w", userID, err)
	}

	p := models.NewUserPreferenceProfile(userID)
	// Rolling windows and onboarding survive recomputes; weights do not.
	p.Onboarding = prev.Onboarding
	p.RecentViews = prev.RecentViews
	p.RecentSearches = prev.RecentSearches

	b.accumulateCollections(p, user, books)
	b.applyOnboarding(p)

	p.DiversityScore = diversityScore(p.GenreWeights)
	p.ReadingVelocity = readingVelocity(user.Shelf)
	p.AvgPageLength = avgPageLength(user, books, b.cfg.DefaultPageLength)
	p.LastComputed = time.Now().UTC()

	if err := b.profiles.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("store profile %s: %w", userID, err)
	}

	metrics.ProfileBuildDuration.Observe(time.Since(start).Seconds())
	b.log.Debug().
		Str("user_id", userID).
		Int("genres", len(p.GenreWeights)).
		Int("authors", len(p.AuthorWeights)).
		Float64("diversity", p.DiversityScore).
		Msg("profile rebuilt")

	return p, nil
}

// hydrateBooks batch-fetches every book referenced by the user's
// collections in one catalog call and indexes them by id.
func (b *Builder) hydrateBooks(ctx context.Context, user *models.User) (map[string]*models.Book, error) {
	owned := user.OwnedBookIDs()
	ids := make([]string, 0, len(owned))
	for id := range owned {
		ids = append(ids, id)
	}

	books, err := b.catalog.BooksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Book, len(books))
	for _, book := range books {
		byID[book.ID] = book
	}
	return byID, nil
}

// accumulateCollections adds each collection's base weight, amplified by
// the per-star multiplier for rated shelf entries.
func (b *Builder) accumulateCollections(p *models.UserPreferenceProfile, user *models.User, books map[string]*models.Book) {
	for _, entry := range user.Shelf {
		weight := b.cfg.Signals.Shelf
		if entry.Rating > 0 {
			weight *= b.cfg.RatingMultiplier(entry.Rating)
		}
		b.addBookWeight(p, books[entry.BookID], weight)
	}
	for _, ref := range user.Liked {
		b.addBookWeight(p, books[ref.BookID], b.cfg.Signals.Liked)
	}
	for _, ref := range user.ToBeRead {
		b.addBookWeight(p, books[ref.BookID], b.cfg.Signals.ToBeRead)
	}
	for _, ref := range user.CurrentlyReading {
		b.addBookWeight(p, books[ref.BookID], b.cfg.Signals.CurrentlyReading)
	}
	for _, ref := range user.Favorites {
		b.addBookWeight(p, books[ref.BookID], b.cfg.Signals.Favorite)
	}
	for _, ref := range user.TopPicks {
		b.addBookWeight(p, books[ref.BookID], b.cfg.Signals.TopPick)
	}
}

func (b *Builder) addBookWeight(p *models.UserPreferenceProfile, book *models.Book, weight float64) {
	if book == nil || weight == 0 {
		return
	}
	for _, genre := range book.NormalizedGenres() {
		p.GenreWeights.Add(genre, weight)
	}
	for _, author := range book.Authors {
		p.AuthorWeights.Add(models.SanitizeAuthor(author), weight)
	}
}

// applyOnboarding seeds questionnaire preferences so cold-start users get
// non-empty recommendations. Genre weights are amplified; authors get a
// flat strong weight.
func (b *Builder) applyOnboarding(p *models.UserPreferenceProfile) {
	if p.Onboarding == nil {
		return
	}
	for genre, weight := range p.Onboarding.Genres {
		p.GenreWeights.Add(models.NormalizeGenre(genre), weight*b.cfg.OnboardingGenreMultiplier)
	}
	for _, author := range p.Onboarding.Authors {
		p.AuthorWeights.Add(models.SanitizeAuthor(author), b.cfg.OnboardingAuthorWeight)
	}
}

// MergeOnboarding records questionnaire results and rebuilds the profile so
// the seeds take effect immediately.
func (b *Builder) MergeOnboarding(ctx context.Context, userID string, genres map[string]float64, authors []string) (*models.UserPreferenceProfile, error) {
	p, err := b.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.Onboarding = &models.OnboardingPreferences{
		Genres:      genres,
		Authors:     authors,
		CompletedAt: time.Now().UTC(),
	}
	if err := b.profiles.Put(ctx, p); err != nil {
		metrics.ProfileBuilds.WithLabelValues("onboarding", "error").Inc()
		return nil, fmt.Errorf("store onboarding for %s: %w", userID, err)
	}
	metrics.ProfileBuilds.WithLabelValues("onboarding", "ok").Inc()

	return b.Build(ctx, userID)
}

// EnsureFresh returns the stored profile, rebuilding it first when it is
// missing, empty, or older than the configured rebuild age.
func (b *Builder) EnsureFresh(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	p, err := b.profiles.Get(ctx, userID)
	if err == nil && !p.Empty() && !p.StaleAfter(b.cfg.RebuildMaxAge, time.Now()) {
		return p, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return b.Build(ctx, userID)
}
