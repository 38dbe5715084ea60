// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package models

import "time"

// BookRef references a catalog book from one of a user's collections.
type BookRef struct {
	BookID  string    `json:"book_id"`
	AddedAt time.Time `json:"added_at,omitzero"`
}

// ShelfEntry is a shelf (finished-books) record with an optional star
// rating and finish date.
type ShelfEntry struct {
	BookID     string     `json:"book_id"`
	Rating     int        `json:"rating,omitempty"` // 1-5, 0 = unrated
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	AddedAt    time.Time  `json:"added_at,omitzero"`
}

// User is the social-graph view of a user consumed by the recommendation
// subsystem: following lists and the typed book collections. The full user
// record (auth, profile page, avatars) lives outside this subsystem.
type User struct {
	ID        string   `json:"id"`
	Username  string   `json:"username,omitempty"`
	Following []string `json:"following"`
	Followers []string `json:"followers"`

	Shelf            []ShelfEntry `json:"shelf"`
	Liked            []BookRef    `json:"liked"`
	ToBeRead         []BookRef    `json:"to_be_read"`
	CurrentlyReading []BookRef    `json:"currently_reading"`
	Favorites        []BookRef    `json:"favorites"`
	TopPicks         []BookRef    `json:"top_picks"`
}

// OwnedBookIDs returns the set of book ids present in any of the user's
// collections. Candidate generation excludes every one of these.
func (u *User) OwnedBookIDs() map[string]struct{} {
	owned := make(map[string]struct{},
		len(u.Shelf)+len(u.Liked)+len(u.ToBeRead)+len(u.CurrentlyReading)+len(u.Favorites)+len(u.TopPicks))
	for _, e := range u.Shelf {
		owned[e.BookID] = struct{}{}
	}
	for _, collections := range [][]BookRef{u.Liked, u.ToBeRead, u.CurrentlyReading, u.Favorites, u.TopPicks} {
		for _, r := range collections {
			owned[r.BookID] = struct{}{}
		}
	}
	return owned
}

// Follows reports whether the user follows the given user id.
func (u *User) Follows(userID string) bool {
	for _, id := range u.Following {
		if id == userID {
			return true
		}
	}
	return false
}

// LovedBookRatings maps book id to the user's effective rating for every
// book they demonstrably love: shelf entries rated at or above minRating,
// plus favorites and top picks, which count as five-star endorsements.
func (u *User) LovedBookRatings(minRating int) map[string]int {
	loved := make(map[string]int)
	for _, e := range u.Shelf {
		if e.Rating >= minRating {
			loved[e.BookID] = e.Rating
		}
	}
	for _, collections := range [][]BookRef{u.Favorites, u.TopPicks} {
		for _, r := range collections {
			loved[r.BookID] = 5
		}
	}
	return loved
}
