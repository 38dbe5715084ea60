// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package recommend

import (
	"math"
	"sort"
)

// rerankDiverse selects k items in two phases. Phase one fills
// ceil(k·pureQualityRatio) slots strictly by score, so the strongest
// matches always surface. Phase two fills the rest greedily, discounting
// each remaining item's score by its average genre overlap with everything
// already selected.
//
// Input must be sorted by score descending; output preserves that contract
// within phase one and orders phase two by selection.
func (s *Service) rerankDiverse(items []*ScoredItem, k int) []*ScoredItem {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	if k > len(items) {
		k = len(items)
	}
	if !s.cfg.Features.Diversity {
		return items[:k]
	}

	pure := int(math.Ceil(float64(k) * s.cfg.Diversity.PureQualityRatio))
	if pure > k {
		pure = k
	}

	selected := make([]*ScoredItem, 0, k)
	selected = append(selected, items[:pure]...)
	remaining := items[pure:]

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestAdjusted := math.Inf(-1)

		for i, item := range remaining {
			adjusted := item.Score * (1 - avgGenreOverlap(item, selected))
			if adjusted > bestAdjusted {
				bestAdjusted = adjusted
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

// avgGenreOverlap is the mean Jaccard similarity between the item's genres
// and each already-selected item's genres.
func avgGenreOverlap(item *ScoredItem, selected []*ScoredItem) float64 {
	if len(selected) == 0 {
		return 0
	}

	total := 0.0
	for _, other := range selected {
		total += genreJaccard(item.Book.NormalizedGenres(), other.Book.NormalizedGenres())
	}
	return total / float64(len(selected))
}

// genreJaccard is |intersection| / |union| over normalized genre sets.
func genreJaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, g := range a {
		setA[g] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, g := range b {
		setB[g] = struct{}{}
	}

	intersection := 0
	for g := range setA {
		if _, ok := setB[g]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// sortByScore orders items by score descending with book id as a
// deterministic tie-break.
func sortByScore(items []*ScoredItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Book.ID < items[j].Book.ID
	})
}
