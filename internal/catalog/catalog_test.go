// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

func seededCatalog() *MemoryCatalog {
	c := NewMemoryCatalog()
	c.AddBook(&models.Book{
		ID: "b1", Title: "The Long Dark", Genres: []string{"Mystery"}, Authors: []string{"A. Writer"},
		PageCount: 320, InternalRating: 4.5, InternalRatingCount: 80, ReadCount: 400,
	})
	c.AddBook(&models.Book{
		ID: "b2", Title: "Starfall", Genres: []string{"Sci-Fi"}, Authors: []string{"B. Author"},
		PageCount: 280, InternalRating: 4.0, InternalRatingCount: 50, ReadCount: 900,
	})
	c.AddBook(&models.Book{
		ID: "b3", Title: "Pamphlet", Genres: []string{"Mystery"}, Authors: []string{"A. Writer"},
		PageCount: 30, InternalRating: 4.8, InternalRatingCount: 5, ReadCount: 10,
	})
	c.AddBook(&models.Book{
		ID: "b4", Title: "Mediocre", Genres: []string{"Mystery"}, Authors: []string{"C. Scribe"},
		PageCount: 300, InternalRating: 2.1, InternalRatingCount: 40, ReadCount: 60,
	})
	return c
}

func TestBooksByGenresFiltersAndRanks(t *testing.T) {
	ctx := context.Background()
	c := seededCatalog()

	books, err := c.BooksByGenres(ctx, []string{"mystery"}, QueryFilter{MinRating: 3.5, MinPageCount: 50})
	if err != nil {
		t.Fatalf("BooksByGenres() = %v", err)
	}
	if len(books) != 1 || books[0].ID != "b1" {
		t.Errorf("got %d books, want only b1 (short and low-rated filtered)", len(books))
	}

	// Synonym folding: "Sci-Fi" stored, "science fiction" queried.
	books, err = c.BooksByGenres(ctx, []string{"science fiction"}, QueryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 || books[0].ID != "b2" {
		t.Errorf("synonym query returned %v", books)
	}
}

func TestBooksByAuthorsSanitizes(t *testing.T) {
	c := seededCatalog()

	books, err := c.BooksByAuthors(context.Background(), []string{"a writer"}, QueryFilter{MinPageCount: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 || books[0].ID != "b1" {
		t.Errorf("got %v, want b1", books)
	}
}

func TestBooksByIDsSkipsUnknown(t *testing.T) {
	c := seededCatalog()

	books, err := c.BooksByIDs(context.Background(), []string{"b2", "missing", "b1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 2 || books[0].ID != "b2" || books[1].ID != "b1" {
		t.Errorf("BooksByIDs() = %v, want [b2 b1] in request order", books)
	}
}

func TestTrendingRanksByVolume(t *testing.T) {
	c := seededCatalog()

	books, err := c.Trending(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 2 {
		t.Fatalf("len = %d, want 2", len(books))
	}
	// b2: 4.0 * 901 > b1: 4.5 * 401.
	if books[0].ID != "b2" || books[1].ID != "b1" {
		t.Errorf("trending order = %s, %s", books[0].ID, books[1].ID)
	}
}

func TestSocialGraph(t *testing.T) {
	ctx := context.Background()
	g := NewMemorySocialGraph()
	g.AddUser(&models.User{ID: "u1", Username: "reader1", Following: []string{"u2"}})
	g.AddUser(&models.User{ID: "u2", Username: "reader2"})

	u, err := g.User(ctx, "u1")
	if err != nil {
		t.Fatalf("User() = %v", err)
	}
	if !u.Follows("u2") {
		t.Error("Follows(u2) = false")
	}

	if _, err := g.User(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("User(ghost) = %v, want ErrUserNotFound", err)
	}

	users, err := g.Users(ctx, []string{"u2", "ghost", "u1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 {
		t.Errorf("Users() len = %d, want 2 (unknown skipped)", len(users))
	}
}

func TestBreakerCatalogPassesThrough(t *testing.T) {
	c := NewBreakerCatalog(seededCatalog())

	books, err := c.Trending(context.Background(), 1)
	if err != nil {
		t.Fatalf("Trending() = %v", err)
	}
	if len(books) != 1 {
		t.Errorf("len = %d, want 1", len(books))
	}
}
