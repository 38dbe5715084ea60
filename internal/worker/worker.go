// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

// Package worker runs the in-process background task queue. The tracker
// publishes profile-update and cache-invalidate tasks; handlers here apply
// them with retry, dedup by event id, and a rate-limited bulk refresher
// that regenerates stale recommendation caches.
package worker

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/config"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/logging"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/metrics"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/profile"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/reccache"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/recommend"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/store"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/tracker"
)

// TopicRebuild carries background regeneration requests from stale cache
// reads. The payload is the bare user id.
const TopicRebuild = "rec.rebuild"

// Worker owns the bounded in-process queue and its handlers.
type Worker struct {
	cfg     config.WorkerConfig
	pubsub  *gochannel.GoChannel
	router  *message.Router
	builder *profile.Builder
	recs    *recommend.Service
	cache   *reccache.Store
	dedup   *store.DedupStore
	log     zerolog.Logger
}

// New builds the queue and registers all task handlers. Call Run to start
// processing.
func New(
	cfg config.WorkerConfig,
	builder *profile.Builder,
	recs *recommend.Service,
	cache *reccache.Store,
	dedup *store.DedupStore,
) (*Worker, error) {
	log := logging.Component("worker")
	wmLog := wmLogger{log: log}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(cfg.QueueBuffer),
	}, wmLog)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 30 * time.Second,
	}, wmLog)
	if err != nil {
		return nil, err
	}

	// Panics become errors, errors retry with backoff, and whatever still
	// fails is dropped after the last attempt.
	router.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: cfg.RetryInterval,
		MaxInterval:     time.Minute,
		Multiplier:      2.0,
		Logger:          wmLog,
	}
	router.AddMiddleware(retry.Middleware)

	w := &Worker{
		cfg:     cfg,
		pubsub:  pubsub,
		router:  router,
		builder: builder,
		recs:    recs,
		cache:   cache,
		dedup:   dedup,
		log:     log,
	}

	router.AddConsumerHandler("profile-update", tracker.TopicProfileUpdate, pubsub, w.handleProfileUpdate)
	router.AddConsumerHandler("cache-invalidate", tracker.TopicCacheInvalidate, pubsub, w.handleCacheInvalidate)
	router.AddConsumerHandler("rebuild", TopicRebuild, pubsub, w.handleRebuild)

	return w, nil
}

// Publisher exposes the queue's publishing side for the tracker.
func (w *Worker) Publisher() message.Publisher {
	return w.pubsub
}

// RequestRebuild enqueues a background regeneration for one user. Intended
// as the recommendation service's stale-read hook; a full queue drops the
// request, the next stale read will ask again.
func (w *Worker) RequestRebuild(userID string) {
	msg := message.NewMessage(watermill.NewUUID(), []byte(userID))
	if err := w.pubsub.Publish(TopicRebuild, msg); err != nil {
		w.log.Warn().Err(err).Str("user_id", userID).Msg("rebuild request dropped")
	}
}

// Run starts the router and blocks until the context is cancelled. Suitable
// as a supervised service.
func (w *Worker) Run(ctx context.Context) error {
	return w.router.Run(ctx)
}

// Running closes when all handlers are subscribed and processing.
func (w *Worker) Running() <-chan struct{} {
	return w.router.Running()
}

// Close stops the router and the queue.
func (w *Worker) Close() error {
	if err := w.router.Close(); err != nil {
		return err
	}
	return w.pubsub.Close()
}

// handleProfileUpdate applies one event's delta to the user's profile.
// Delivery is at-least-once, so the event id is marked processed first;
// a failed update releases the marker before the retry.
func (w *Worker) handleProfileUpdate(msg *message.Message) error {
	start := time.Now()
	ctx := msg.Context()

	var e models.Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		// Malformed payloads never get better on retry.
		w.log.Error().Err(err).Str("msg_id", msg.UUID).Msg("undecodable profile task dropped")
		metrics.RecordTask(tracker.TopicProfileUpdate, "error", time.Since(start))
		return nil
	}

	seen, err := w.dedup.MarkProcessed(ctx, e.ID)
	if err != nil {
		metrics.RecordTask(tracker.TopicProfileUpdate, "error", time.Since(start))
		return err
	}
	if seen {
		metrics.RecordTask(tracker.TopicProfileUpdate, "duplicate", time.Since(start))
		return nil
	}

	if err := w.builder.IncrementalUpdate(ctx, &e); err != nil {
		if unmarkErr := w.dedup.Unmark(ctx, e.ID); unmarkErr != nil {
			w.log.Error().Err(unmarkErr).Str("event_id", e.ID).Msg("dedup unmark failed, event will not be retried")
		}
		metrics.RecordTask(tracker.TopicProfileUpdate, "error", time.Since(start))
		return err
	}

	metrics.RecordTask(tracker.TopicProfileUpdate, "ok", time.Since(start))
	return nil
}

// handleCacheInvalidate flags the user's cached recommendations stale.
// MarkStale is idempotent, so redelivery needs no dedup.
func (w *Worker) handleCacheInvalidate(msg *message.Message) error {
	start := time.Now()

	var e models.Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		w.log.Error().Err(err).Str("msg_id", msg.UUID).Msg("undecodable invalidation task dropped")
		metrics.RecordTask(tracker.TopicCacheInvalidate, "error", time.Since(start))
		return nil
	}

	if err := w.cache.MarkStale(msg.Context(), e.UserID); err != nil {
		metrics.RecordTask(tracker.TopicCacheInvalidate, "error", time.Since(start))
		return err
	}

	metrics.RecordTask(tracker.TopicCacheInvalidate, "ok", time.Since(start))
	return nil
}

// handleRebuild regenerates one user's recommendation document. Generate
// coalesces concurrent runs per user, so duplicate requests are cheap.
func (w *Worker) handleRebuild(msg *message.Message) error {
	start := time.Now()
	userID := string(msg.Payload)

	if _, err := w.recs.Generate(msg.Context(), userID, recommend.Options{}); err != nil {
		metrics.RecordTask(TopicRebuild, "error", time.Since(start))
		return err
	}

	metrics.RecordTask(TopicRebuild, "ok", time.Since(start))
	return nil
}
