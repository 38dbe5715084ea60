// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

// Package metrics exposes Prometheus instrumentation for the
// recommendation pipeline: event ingestion, profile builds, candidate
// generation, cache efficiency, and background task processing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event Tracker metrics
	EventsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperboxd_events_tracked_total",
			Help: "Total number of interaction events recorded",
		},
		[]string{"type"},
	)

	EventTrackFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperboxd_event_track_failures_total",
			Help: "Total number of events dropped due to storage or publish errors",
		},
		[]string{"type", "stage"}, // stage: "validate", "store", "publish"
	)

	// Profile Builder metrics
	ProfileBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperboxd_profile_builds_total",
			Help: "Total number of preference profile computations",
		},
		[]string{"mode", "result"}, // mode: "full", "incremental", "onboarding"
	)

	ProfileBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "paperboxd_profile_build_duration_seconds",
			Help:    "Duration of full profile recomputes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ProfileBuildsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paperboxd_profile_builds_deduplicated_total",
			Help: "Concurrent profile rebuilds coalesced into a single in-flight build",
		},
	)

	// Recommendation Service metrics
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paperboxd_recommendation_duration_seconds",
			Help:    "End-to-end recommendation generation latency in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"slot"}, // "home", "friends"
	)

	CandidatesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperboxd_candidates_fetched_total",
			Help: "Total candidates fetched per generation source",
		},
		[]string{"source"}, // "genre", "author", "similar", "trending"
	)

	TrendingFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paperboxd_trending_fallbacks_total",
			Help: "Recommendation runs that fell back to the trending list",
		},
	)

	// Recommendation cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paperboxd_rec_cache_hits_total",
			Help: "Recommendation cache reads served fresh",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paperboxd_rec_cache_misses_total",
			Help: "Recommendation cache reads with no usable entry",
		},
	)

	CacheStaleReads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paperboxd_rec_cache_stale_reads_total",
			Help: "Recommendation cache reads served stale while a rebuild runs",
		},
	)

	CacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paperboxd_rec_cache_invalidations_total",
			Help: "Cache entries flagged stale by significant user actions",
		},
	)

	// Background worker metrics
	TasksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperboxd_worker_tasks_total",
			Help: "Background tasks processed by topic and result",
		},
		[]string{"topic", "result"}, // result: "ok", "error", "duplicate"
	)

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paperboxd_worker_task_duration_seconds",
			Help:    "Background task handler duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	// Storage metrics
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperboxd_store_operations_total",
			Help: "Document store operations by kind and result",
		},
		[]string{"store", "operation", "result"},
	)

	CatalogBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "paperboxd_catalog_breaker_open",
			Help: "1 when the catalog circuit breaker is open, 0 otherwise",
		},
	)
)

// RecordRecommendation observes one end-to-end generation.
func RecordRecommendation(slot string, duration time.Duration) {
	RecommendationDuration.WithLabelValues(slot).Observe(duration.Seconds())
}

// RecordTask observes one background task execution.
func RecordTask(topic, result string, duration time.Duration) {
	TasksProcessed.WithLabelValues(topic, result).Inc()
	TaskDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

// RecordStoreOp records a document store operation outcome.
func RecordStoreOp(store, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreOperations.WithLabelValues(store, operation, result).Inc()
}
