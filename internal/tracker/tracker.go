// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

// Package tracker records user interaction events and fans them out to the
// background task queue. Tracking is strictly fire-and-forget: a storage or
// queue failure is logged and counted, never surfaced to the user flow that
// triggered it.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/logging"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/metrics"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/store"
)

// Task topics consumed by the background worker.
const (
	TopicProfileUpdate   = "profile.update"
	TopicCacheInvalidate = "cache.invalidate"
)

// Tracker ingests interaction events.
type Tracker struct {
	events    *store.EventStore
	recLogs   *store.RecLogStore
	publisher message.Publisher
	log       zerolog.Logger
}

// New wires an event tracker.
func New(events *store.EventStore, recLogs *store.RecLogStore, publisher message.Publisher) *Tracker {
	return &Tracker{
		events:    events,
		recLogs:   recLogs,
		publisher: publisher,
		log:       logging.Component("tracker"),
	}
}

// Track validates, stores, and fans out one event. Failures are absorbed:
// recommendation bookkeeping must never break the user action it rides on.
func (t *Tracker) Track(ctx context.Context, e *models.Event) {
	if err := e.Validate(); err != nil {
		metrics.EventTrackFailures.WithLabelValues(string(e.Type), "validate").Inc()
		t.log.Warn().Err(err).Str("type", string(e.Type)).Msg("invalid event dropped")
		return
	}

	if err := t.events.Put(ctx, e); err != nil {
		metrics.EventTrackFailures.WithLabelValues(string(e.Type), "store").Inc()
		t.log.Error().Err(err).Str("event_id", e.ID).Msg("event store write failed")
		return
	}
	metrics.EventsTracked.WithLabelValues(string(e.Type)).Inc()

	t.applyOutcome(ctx, e)
	t.fanOut(e)
}

// fanOut publishes background tasks: a profile update for every
// signal-bearing event, and a cache invalidation for significant actions
// that could change previously computed rankings.
func (t *Tracker) fanOut(e *models.Event) {
	if e.Type.SignalBearing() {
		t.publish(TopicProfileUpdate, e)
	}
	if e.Type.Significant() {
		t.publish(TopicCacheInvalidate, e)
	}
}

func (t *Tracker) publish(topic string, e *models.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		metrics.EventTrackFailures.WithLabelValues(string(e.Type), "publish").Inc()
		t.log.Error().Err(err).Str("event_id", e.ID).Msg("event marshal failed")
		return
	}

	// The message id is the event id, so handlers can deduplicate
	// redelivered tasks.
	msg := message.NewMessage(e.ID, data)
	if err := t.publisher.Publish(topic, msg); err != nil {
		metrics.EventTrackFailures.WithLabelValues(string(e.Type), "publish").Inc()
		t.log.Error().Err(err).Str("event_id", e.ID).Str("topic", topic).Msg("task publish failed")
	}
}

// applyOutcome updates recommendation logs for outcome events inline; the
// log record is addressed directly by (user, generation, book).
func (t *Tracker) applyOutcome(ctx context.Context, e *models.Event) {
	var outcome string
	switch e.Type {
	case models.EventRecImpression:
		outcome = store.OutcomeShown
	case models.EventRecClick:
		outcome = store.OutcomeClicked
	case models.EventRecConverted:
		outcome = store.OutcomeConverted
	case models.EventRecDismissed:
		outcome = store.OutcomeDismissed
	default:
		return
	}

	err := t.recLogs.MarkOutcome(ctx, e.UserID, e.Metadata.GenerationID, e.Metadata.BookID, outcome, e.Timestamp)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		t.log.Warn().Err(err).Str("event_id", e.ID).Msg("outcome update failed")
	}
}

// RecentActivityCount returns the number of events in the window ending
// now.
func (t *Tracker) RecentActivityCount(ctx context.Context, userID string, window time.Duration) (int, error) {
	return t.events.CountByUserSince(ctx, userID, time.Now().Add(-window))
}
