// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package recommend

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/catalog"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/metrics"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// gatherCandidates runs the three candidate sources concurrently and merges
// their results, excluding books the user already owns. An empty result is
// not an error; the caller falls back to trending.
func (s *Service) gatherCandidates(ctx context.Context, p *models.UserPreferenceProfile, user *models.User) ([]*Candidate, error) {
	owned := user.OwnedBookIDs()
	filter := catalog.QueryFilter{
		MinRating:    s.cfg.Candidates.MinQualityRating,
		MinPageCount: s.cfg.Candidates.MinPageCount,
		Limit:        s.cfg.Candidates.PerSourceLimit,
	}

	var (
		mu         sync.Mutex
		candidates = make(map[string]*Candidate)
	)
	add := func(books []*models.Book, source string) {
		mu.Lock()
		defer mu.Unlock()
		metrics.CandidatesFetched.WithLabelValues(source).Add(float64(len(books)))
		for _, book := range books {
			if _, own := owned[book.ID]; own {
				continue
			}
			c, ok := candidates[book.ID]
			if !ok {
				c = &Candidate{Book: book}
				candidates[book.ID] = c
			}
			c.Sources = append(c.Sources, source)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		top := p.GenreWeights.Top(s.cfg.Candidates.TopGenres)
		if len(top) == 0 {
			return nil
		}
		genres := make([]string, len(top))
		for i, w := range top {
			genres[i] = w.Key
		}
		books, err := s.catalog.BooksByGenres(gctx, genres, filter)
		if err != nil {
			return fmt.Errorf("genre candidates: %w", err)
		}
		add(books, SourceGenre)
		return nil
	})

	g.Go(func() error {
		top := p.AuthorWeights.Top(s.cfg.Candidates.TopAuthors)
		if len(top) == 0 {
			return nil
		}
		authors := make([]string, len(top))
		for i, w := range top {
			authors[i] = w.Key
		}
		books, err := s.catalog.BooksByAuthors(gctx, authors, filter)
		if err != nil {
			return fmt.Errorf("author candidates: %w", err)
		}
		add(books, SourceAuthor)
		return nil
	})

	g.Go(func() error {
		books, err := s.similarToLoved(gctx, user, filter)
		if err != nil {
			return fmt.Errorf("similar candidates: %w", err)
		}
		add(books, SourceSimilar)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c)
	}
	return out, nil
}

// similarToLoved seeds on the user's most recently loved books and queries
// the catalog for more by the same genres and the same authors.
func (s *Service) similarToLoved(ctx context.Context, user *models.User, filter catalog.QueryFilter) ([]*models.Book, error) {
	seedIDs := recentLovedIDs(user, s.cfg.Candidates.SimilarSeeds)
	if len(seedIDs) == 0 {
		return nil, nil
	}

	seeds, err := s.catalog.BooksByIDs(ctx, seedIDs)
	if err != nil {
		return nil, err
	}

	genreSet := make(map[string]struct{})
	authorSet := make(map[string]struct{})
	for _, seed := range seeds {
		for _, g := range seed.NormalizedGenres() {
			genreSet[g] = struct{}{}
		}
		for _, a := range seed.Authors {
			authorSet[models.SanitizeAuthor(a)] = struct{}{}
		}
	}

	var books []*models.Book
	if len(genreSet) > 0 {
		genres := make([]string, 0, len(genreSet))
		for g := range genreSet {
			genres = append(genres, g)
		}
		byGenre, err := s.catalog.BooksByGenres(ctx, genres, filter)
		if err != nil {
			return nil, err
		}
		books = byGenre
	}
	if len(authorSet) > 0 {
		authors := make([]string, 0, len(authorSet))
		for a := range authorSet {
			authors = append(authors, a)
		}
		byAuthor, err := s.catalog.BooksByAuthors(ctx, authors, filter)
		if err != nil {
			return nil, err
		}
		books = append(books, byAuthor...)
	}

	seen := make(map[string]struct{}, len(books))
	out := books[:0]
	for _, book := range books {
		if _, dup := seen[book.ID]; dup {
			continue
		}
		seen[book.ID] = struct{}{}
		out = append(out, book)
	}
	return out, nil
}

// recentLovedIDs returns the newest n book ids the user rated highly or
// favorited, newest additions first.
func recentLovedIDs(user *models.User, n int) []string {
	type loved struct {
		id      string
		addedAt int64
	}

	var all []loved
	for _, e := range user.Shelf {
		if e.Rating >= 4 {
			all = append(all, loved{e.BookID, e.AddedAt.UnixNano()})
		}
	}
	for _, r := range user.Favorites {
		all = append(all, loved{r.BookID, r.AddedAt.UnixNano()})
	}

	// Insertion sort is fine at collection sizes; newest first.
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].addedAt > all[j-1].addedAt; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, l := range all {
		if _, dup := seen[l.id]; dup {
			continue
		}
		seen[l.id] = struct{}{}
		ids = append(ids, l.id)
		if len(ids) == n {
			break
		}
	}
	return ids
}

// trendingCandidates is the cold-start and empty-result fallback.
func (s *Service) trendingCandidates(ctx context.Context, user *models.User) ([]*Candidate, error) {
	books, err := s.catalog.Trending(ctx, s.cfg.Candidates.TrendingLimit)
	if err != nil {
		return nil, fmt.Errorf("trending candidates: %w", err)
	}
	metrics.CandidatesFetched.WithLabelValues(SourceTrending).Add(float64(len(books)))

	owned := user.OwnedBookIDs()
	out := make([]*Candidate, 0, len(books))
	for _, book := range books {
		if _, own := owned[book.ID]; own {
			continue
		}
		out = append(out, &Candidate{Book: book, Sources: []string{SourceTrending}})
	}
	return out, nil
}
