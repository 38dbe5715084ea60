// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/metrics"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// ProfileStore persists user preference profiles. Profiles are recomputed in
// place and never expire.
type ProfileStore struct {
	store *Store
}

// NewProfileStore returns a profile store on the shared database.
func NewProfileStore(store *Store) *ProfileStore {
	return &ProfileStore{store: store}
}

func profileKey(userID string) []byte {
	return []byte(prefixProfile + userID)
}

// Put upserts a profile.
func (s *ProfileStore) Put(ctx context.Context, p *models.UserPreferenceProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	err = s.store.set(profileKey(p.UserID), data, 0)
	metrics.RecordStoreOp("profiles", "put", err)
	return err
}

// Get returns the user's profile or ErrNotFound.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	var p models.UserPreferenceProfile

	err := s.store.get(profileKey(userID), func(val []byte) error {
		return json.Unmarshal(val, &p)
	})

	metrics.RecordStoreOp("profiles", "get", err)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrCreate returns the stored profile, or a fresh empty one when none
// exists yet. The fresh profile is not persisted until the caller writes it.
func (s *ProfileStore) GetOrCreate(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	p, err := s.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, ErrNotFound) {
		return models.NewUserPreferenceProfile(userID), nil
	}
	return nil, err
}
