// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

// Package main is the entry point for the PaperBoxd recommendation server.
//
// The process hosts the full recommendation subsystem: event tracking,
// preference profiles, recommendation generation and caching, and the
// background task queue, all under one supervision tree.
//
// Components initialize in order:
//
//  1. Configuration: koanf layering of defaults, optional YAML file, and
//     PAPERBOXD_-prefixed environment variables
//  2. Logging: zerolog, json or console format
//  3. Document store: Badger, with a supervised value-log GC loop
//  4. Recommendation cache: Redis
//  5. Services: profile builder, social scoring, recommendation service
//  6. Task queue: watermill router with profile-update, cache-invalidate,
//     and rebuild handlers, plus the rate-limited bulk cache refresher
//  7. Operational HTTP: /healthz and /metrics
//
// Shutdown is graceful on SIGINT and SIGTERM: the HTTP listener drains, the
// queue router finishes in-flight tasks, and the store closes last.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/catalog"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/config"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/logging"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/profile"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/reccache"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/recommend"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/social"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/store"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/supervisor"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/tracker"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("store_path", cfg.Store.Path).
		Str("redis_addr", cfg.Redis.Addr).
		Msg("Starting PaperBoxd recommendation server")

	db, err := store.Open(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing document store")
		}
	}()

	events := store.NewEventStore(db, cfg.Retention.Events)
	profiles := store.NewProfileStore(db)
	recLogs := store.NewRecLogStore(db, cfg.Retention.RecommendationLogs)
	dedup := store.NewDedupStore(db, cfg.Retention.DedupIDs)

	rdb := reccache.NewClient(cfg.Redis)
	defer func() {
		if err := rdb.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing redis client")
		}
	}()
	cache := reccache.NewStore(rdb, cfg.Cache.TTL, cfg.Retention.Cache)
	if err := cache.Ping(context.Background()); err != nil {
		// The cache degrades gracefully; start anyway and let it recover.
		logging.Warn().Err(err).Msg("Redis unreachable at startup")
	}

	// Catalog and social graph are external collaborators. The in-memory
	// implementations serve until the product backend registers its own;
	// catalog calls still pass through the circuit breaker.
	books := catalog.NewMemoryCatalog()
	graph := catalog.NewMemorySocialGraph()
	cat := catalog.NewBreakerCatalog(books)

	builder := profile.NewBuilder(cfg.Profile, profiles, graph, cat)
	socialSvc := social.NewService(cfg.Friends, graph, profiles)
	recs := recommend.NewService(cfg, builder, socialSvc, cat, graph, cache, recLogs, events)

	wrk, err := worker.New(cfg.Worker, builder, recs, cache, dedup)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build task queue")
	}
	defer func() {
		if err := wrk.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing task queue")
		}
	}()
	recs.SetRebuildHook(wrk.RequestRebuild)

	trk := tracker.New(events, recLogs, wrk.Publisher())
	refresher := worker.NewRefresher(cfg.Worker, cache, recs, trk)

	tree, err := supervisor.NewTree(supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddStorageService(supervisor.Func{Name: "store-gc", Run: db.RunGC})
	tree.AddPipelineService(supervisor.Func{Name: "task-queue", Run: wrk.Run})
	tree.AddPipelineService(refresher)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      operationalRouter(cache),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	tree.AddAPIService(supervisor.NewHTTPService(srv, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", srv.Addr).Msg("Supervisor tree starting")
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Fatal().Err(err).Msg("Supervisor tree failed")
	}
	logging.Info().Msg("Shutdown complete")
}

// operationalRouter serves health and metrics only; the product API lives
// in the main application.
func operationalRouter(cache *reccache.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := cache.Ping(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "degraded: cache unreachable")
			return
		}
		fmt.Fprintln(w, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
