// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package models

import "strings"

// genreSynonyms folds common variant spellings onto a canonical genre name
// so weight accumulation merges them. Keys and values are lowercase.
var genreSynonyms = map[string]string{
	"sci-fi":          "science fiction",
	"scifi":           "science fiction",
	"sf":              "science fiction",
	"ya":              "young adult",
	"y.a.":            "young adult",
	"non-fiction":     "nonfiction",
	"non fiction":     "nonfiction",
	"bio":             "biography",
	"biographies":     "biography",
	"autobiography":   "biography",
	"memoirs":         "memoir",
	"thrillers":       "thriller",
	"mysteries":       "mystery",
	"crime fiction":   "crime",
	"historic fiction": "historical fiction",
	"graphic novels":  "graphic novel",
	"comics":          "graphic novel",
	"self help":       "self-help",
	"selfhelp":        "self-help",
}

// NormalizeGenre lowercases, trims, and synonym-folds a genre name so that
// variant spellings accumulate weight under one key.
func NormalizeGenre(genre string) string {
	g := strings.ToLower(strings.TrimSpace(genre))
	if canonical, ok := genreSynonyms[g]; ok {
		return canonical
	}
	return g
}

// SanitizeAuthor produces a stable, storable key for an author name. The
// original document store rejected '.' and '$' in map keys, so those are
// stripped along with surrounding whitespace; the name is lowercased so
// "Ursula K. Le Guin" and "ursula k le guin" share one key.
func SanitizeAuthor(author string) string {
	a := strings.ToLower(strings.TrimSpace(author))
	a = strings.Map(func(r rune) rune {
		switch r {
		case '.', '$':
			return -1
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, a)
	return strings.Join(strings.Fields(a), " ")
}
