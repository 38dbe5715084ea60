// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package models

import "sort"

// WeightMap accumulates real-valued affinity weights keyed by genre or
// author name. Weights are guaranteed non-negative: the invariant is
// enforced at the mutation boundary, so a negative delta can reduce a weight
// to zero but never below it.
type WeightMap map[string]float64

// Add accumulates delta onto key, clamping the result at zero. Adding to an
// unknown key with a non-positive delta is a no-op rather than creating a
// zero entry.
func (m WeightMap) Add(key string, delta float64) {
	if key == "" {
		return
	}
	next := m[key] + delta
	if next <= 0 {
		delete(m, key)
		return
	}
	m[key] = next
}

// Get returns the weight for key, zero if absent.
func (m WeightMap) Get(key string) float64 {
	return m[key]
}

// Total returns the sum of all weights.
func (m WeightMap) Total() float64 {
	var sum float64
	for _, w := range m {
		sum += w
	}
	return sum
}

// WeightedKey pairs a key with its accumulated weight.
type WeightedKey struct {
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
}

// Top returns the n highest-weighted keys in descending weight order.
// Ties break lexicographically so the ordering is deterministic.
func (m WeightMap) Top(n int) []WeightedKey {
	if n <= 0 || len(m) == 0 {
		return nil
	}
	keys := make([]WeightedKey, 0, len(m))
	for k, w := range m {
		keys = append(keys, WeightedKey{Key: k, Weight: w})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Weight != keys[j].Weight {
			return keys[i].Weight > keys[j].Weight
		}
		return keys[i].Key < keys[j].Key
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// Clone returns a copy of the map.
func (m WeightMap) Clone() WeightMap {
	out := make(WeightMap, len(m))
	for k, w := range m {
		out[k] = w
	}
	return out
}
