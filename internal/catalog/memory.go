// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// MemoryCatalog is an in-process Catalog used in tests and single-node
// deployments where the book index fits in memory.
type MemoryCatalog struct {
	mu    sync.RWMutex
	books map[string]*models.Book
}

// NewMemoryCatalog returns an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{books: make(map[string]*models.Book)}
}

// AddBook upserts a book into the index.
func (c *MemoryCatalog) AddBook(b *models.Book) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.books[b.ID] = b
}

func (c *MemoryCatalog) BooksByGenres(ctx context.Context, genres []string, f QueryFilter) ([]*models.Book, error) {
	wanted := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		wanted[models.NormalizeGenre(g)] = struct{}{}
	}

	return c.query(func(b *models.Book) bool {
		for _, g := range b.NormalizedGenres() {
			if _, ok := wanted[g]; ok {
				return true
			}
		}
		return false
	}, f), nil
}

func (c *MemoryCatalog) BooksByAuthors(ctx context.Context, authors []string, f QueryFilter) ([]*models.Book, error) {
	wanted := make(map[string]struct{}, len(authors))
	for _, a := range authors {
		wanted[models.SanitizeAuthor(a)] = struct{}{}
	}

	return c.query(func(b *models.Book) bool {
		for _, a := range b.Authors {
			if _, ok := wanted[models.SanitizeAuthor(a)]; ok {
				return true
			}
		}
		return false
	}, f), nil
}

func (c *MemoryCatalog) BooksByIDs(ctx context.Context, ids []string) ([]*models.Book, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	books := make([]*models.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := c.books[id]; ok {
			books = append(books, b)
		}
	}
	return books, nil
}

func (c *MemoryCatalog) Trending(ctx context.Context, limit int) ([]*models.Book, error) {
	return c.query(func(b *models.Book) bool { return true }, QueryFilter{Limit: limit}), nil
}

// query filters and ranks by rating weighted by read volume, descending,
// with id as a deterministic tie-break.
func (c *MemoryCatalog) query(match func(*models.Book) bool, f QueryFilter) []*models.Book {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*models.Book
	for _, b := range c.books {
		if !match(b) {
			continue
		}
		if f.MinPageCount > 0 && b.PageCount < f.MinPageCount {
			continue
		}
		if f.MinRating > 0 {
			if rating, _ := b.BestRating(); rating < f.MinRating {
				continue
			}
		}
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		ri, _ := out[i].BestRating()
		rj, _ := out[j].BestRating()
		si := ri * float64(1+out[i].ReadCount)
		sj := rj * float64(1+out[j].ReadCount)
		if si != sj {
			return si > sj
		}
		return out[i].ID < out[j].ID
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// MemorySocialGraph is an in-process SocialGraph for tests and single-node
// deployments.
type MemorySocialGraph struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewMemorySocialGraph returns an empty in-memory graph.
func NewMemorySocialGraph() *MemorySocialGraph {
	return &MemorySocialGraph{users: make(map[string]*models.User)}
}

// AddUser upserts a user record.
func (g *MemorySocialGraph) AddUser(u *models.User) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.users[u.ID] = u
}

func (g *MemorySocialGraph) User(ctx context.Context, id string) (*models.User, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	u, ok := g.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (g *MemorySocialGraph) Users(ctx context.Context, ids []string) ([]*models.User, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := g.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}
