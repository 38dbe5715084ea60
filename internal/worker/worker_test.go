// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package worker

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/catalog"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/config"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/profile"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/reccache"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/recommend"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/social"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/store"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/tracker"
)

// fakeRedis is a map-backed stand-in for the narrow Redis surface the
// cache store uses.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Scan(ctx context.Context, _ uint64, match string, _ int64) *redis.ScanCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimSuffix(match, "*")
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return redis.NewScanCmdResult(keys, 0, nil)
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

type workerFixture struct {
	worker   *Worker
	cfg      *config.Config
	profiles *store.ProfileStore
	cache    *reccache.Store
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Store.InMemory = true
	cfg.Worker.RetryInterval = 10 * time.Millisecond

	s, err := store.Open(cfg.Store)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	events := store.NewEventStore(s, cfg.Retention.Events)
	profiles := store.NewProfileStore(s)
	recLogs := store.NewRecLogStore(s, cfg.Retention.RecommendationLogs)
	dedup := store.NewDedupStore(s, cfg.Retention.DedupIDs)

	cat := catalog.NewMemoryCatalog()
	cat.AddBook(&models.Book{
		ID:      "b1",
		Title:   "The Long Rain",
		Authors: []string{"A. Writer"},
		Genres:  []string{"Mystery"},
	})
	cat.AddBook(&models.Book{
		ID:             "b2",
		Title:          "Quiet Streets",
		Authors:        []string{"B. Writer"},
		Genres:         []string{"Mystery"},
		InternalRating: 4.5, InternalRatingCount: 100,
		ReadCount: 500,
	})

	graph := catalog.NewMemorySocialGraph()
	graph.AddUser(&models.User{ID: "u1"})

	builder := profile.NewBuilder(cfg.Profile, profiles, graph, cat)
	socialSvc := social.NewService(cfg.Friends, graph, profiles)
	cache := reccache.NewStore(newFakeRedis(), cfg.Cache.TTL, cfg.Retention.Cache)
	recs := recommend.NewService(cfg, builder, socialSvc, cat, graph, cache, recLogs, events)

	w, err := New(cfg.Worker, builder, recs, cache, dedup)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	return &workerFixture{worker: w, cfg: cfg, profiles: profiles, cache: cache}
}

func taskMessage(t *testing.T, e *models.Event) *message.Message {
	t.Helper()
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return message.NewMessage(e.ID, data)
}

func TestProfileUpdateHandlerAppliesDelta(t *testing.T) {
	f := newWorkerFixture(t)
	e := models.NewEvent(models.EventShelfAdd, "u1", models.EventMetadata{BookID: "b1"})

	if err := f.worker.handleProfileUpdate(taskMessage(t, e)); err != nil {
		t.Fatalf("handleProfileUpdate() = %v", err)
	}

	p, err := f.profiles.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get profile = %v", err)
	}
	want := f.cfg.Profile.Signals.Shelf
	if got := p.GenreWeights.Get("mystery"); got != want {
		t.Errorf("mystery weight = %f, want %f", got, want)
	}
}

func TestProfileUpdateHandlerDedupsByEventID(t *testing.T) {
	f := newWorkerFixture(t)
	e := models.NewEvent(models.EventShelfAdd, "u1", models.EventMetadata{BookID: "b1"})

	// Redelivery of the same event id must not double the delta.
	for i := 0; i < 2; i++ {
		if err := f.worker.handleProfileUpdate(taskMessage(t, e)); err != nil {
			t.Fatalf("handleProfileUpdate() attempt %d = %v", i, err)
		}
	}

	p, err := f.profiles.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get profile = %v", err)
	}
	want := f.cfg.Profile.Signals.Shelf
	if got := p.GenreWeights.Get("mystery"); got != want {
		t.Errorf("mystery weight after redelivery = %f, want %f", got, want)
	}
}

func TestProfileUpdateHandlerDropsMalformedPayload(t *testing.T) {
	f := newWorkerFixture(t)

	msg := message.NewMessage("m1", []byte("{not json"))
	if err := f.worker.handleProfileUpdate(msg); err != nil {
		t.Errorf("malformed payload returned %v, want nil (no retry)", err)
	}
}

func TestCacheInvalidateHandlerMarksStale(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	if _, err := f.cache.Put(ctx, "u1", []models.RecommendedItem{{BookID: "b2"}}, nil); err != nil {
		t.Fatalf("Put() = %v", err)
	}

	e := models.NewEvent(models.EventBookLiked, "u1", models.EventMetadata{BookID: "b1"})
	if err := f.worker.handleCacheInvalidate(taskMessage(t, e)); err != nil {
		t.Fatalf("handleCacheInvalidate() = %v", err)
	}

	doc, err := f.cache.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}
	if !doc.IsStale {
		t.Error("document not marked stale")
	}
	if len(doc.Home) != 1 {
		t.Error("invalidation dropped the cached list")
	}
}

func TestRebuildHandlerRegeneratesCache(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	msg := message.NewMessage("m1", []byte("u1"))
	if err := f.worker.handleRebuild(msg); err != nil {
		t.Fatalf("handleRebuild() = %v", err)
	}

	doc, err := f.cache.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}
	// u1 has no signals yet, so the home slot is the trending fallback.
	if len(doc.Home) == 0 {
		t.Error("rebuild produced an empty home slot")
	}
}

func TestWorkerProcessesPublishedTasks(t *testing.T) {
	f := newWorkerFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = f.worker.Run(ctx)
	}()

	select {
	case <-f.worker.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	e := models.NewEvent(models.EventShelfAdd, "u1", models.EventMetadata{BookID: "b1"})
	if err := f.worker.Publisher().Publish(tracker.TopicProfileUpdate, taskMessage(t, e)); err != nil {
		t.Fatalf("Publish() = %v", err)
	}

	want := f.cfg.Profile.Signals.Shelf
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		p, err := f.profiles.Get(context.Background(), "u1")
		if err == nil && p.GenreWeights.Get("mystery") == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("published task never applied to the profile")
}

func TestRefresherSweepRegeneratesStaleDocs(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	if _, err := f.cache.Put(ctx, "u1", []models.RecommendedItem{{BookID: "b2"}}, nil); err != nil {
		t.Fatalf("Put() = %v", err)
	}
	if err := f.cache.MarkStale(ctx, "u1"); err != nil {
		t.Fatalf("MarkStale() = %v", err)
	}

	r := NewRefresher(f.cfg.Worker, f.cache, f.worker.recs, nil)
	r.sweep(ctx)

	doc, err := f.cache.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}
	if doc.IsStale {
		t.Error("sweep left the document stale")
	}
	if !doc.Fresh(time.Now()) {
		t.Error("regenerated document not fresh")
	}
}
