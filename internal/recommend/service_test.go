// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package recommend

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/catalog"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/config"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/profile"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/reccache"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/social"
	"github.com/hridyeshh/PaperBoxd-sub000/internal/store"
)

// fakeRedis implements the minimal Redis surface the cache store needs.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = v
	case string:
		f.data[key] = []byte(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
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

type fixture struct {
	svc     *Service
	cat     *catalog.MemoryCatalog
	graph   *catalog.MemorySocialGraph
	cache   *reccache.Store
	recLogs *store.RecLogStore
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Store.InMemory = true
	if mutate != nil {
		mutate(cfg)
	}

	s, err := store.Open(cfg.Store)
	if err != nil {
		t.Fatalf("store.Open() = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	profiles := store.NewProfileStore(s)
	events := store.NewEventStore(s, cfg.Retention.Events)
	recLogs := store.NewRecLogStore(s, cfg.Retention.RecommendationLogs)

	cat := catalog.NewMemoryCatalog()
	graph := catalog.NewMemorySocialGraph()
	builder := profile.NewBuilder(cfg.Profile, profiles, graph, cat)
	socialSvc := social.NewService(cfg.Friends, graph, profiles)
	cache := reccache.NewStore(newFakeRedis(), cfg.Cache.TTL, cfg.Retention.Cache)

	return &fixture{
		svc:     NewService(cfg, builder, socialSvc, cat, graph, cache, recLogs, events),
		cat:     cat,
		graph:   graph,
		cache:   cache,
		recLogs: recLogs,
	}
}

func seedMysteryWorld(f *fixture) {
	for _, b := range []*models.Book{
		{ID: "owned", Title: "Owned", Genres: []string{"Mystery"}, Authors: []string{"A. Writer"}, PageCount: 300, InternalRating: 4.5, InternalRatingCount: 100, ReadCount: 500},
		{ID: "m1", Title: "Case One", Genres: []string{"Mystery"}, Authors: []string{"A. Writer"}, PageCount: 310, InternalRating: 4.4, InternalRatingCount: 90, ReadCount: 450},
		{ID: "m2", Title: "Case Two", Genres: []string{"Mystery"}, Authors: []string{"B. Author"}, PageCount: 290, InternalRating: 4.2, InternalRatingCount: 70, ReadCount: 300},
		{ID: "r1", Title: "Hearts", Genres: []string{"Romance"}, Authors: []string{"C. Scribe"}, PageCount: 280, InternalRating: 4.0, InternalRatingCount: 60, ReadCount: 700},
	} {
		f.cat.AddBook(b)
	}
	f.graph.AddUser(&models.User{
		ID: "u1", Username: "me",
		Shelf: []models.ShelfEntry{{BookID: "owned", Rating: 5, AddedAt: time.Now()}},
	})
}

func TestGenerateProducesRankedHomeList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedMysteryWorld(f)

	doc, err := f.svc.Generate(ctx, "u1", Options{})
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}

	if len(doc.Home) == 0 {
		t.Fatal("empty home list")
	}
	if !doc.Fresh(time.Now()) {
		t.Error("generated document not fresh")
	}

	for i, item := range doc.Home {
		if item.BookID == "owned" {
			t.Error("owned book recommended")
		}
		if item.Position != i {
			t.Errorf("position %d recorded as %d", i, item.Position)
		}
		if item.Score < 0 || item.Score > 1 {
			t.Errorf("score %f out of range", item.Score)
		}
		if item.Reason == "" {
			t.Error("missing explanation")
		}
	}

	// Scores are non-increasing through the pure-quality prefix.
	pure := (len(doc.Home) + 1) / 2
	for i := 1; i < pure; i++ {
		if doc.Home[i].Score > doc.Home[i-1].Score {
			t.Errorf("pure-quality prefix out of order at %d", i)
		}
	}
}

func TestGenerateWritesRecommendationLogs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedMysteryWorld(f)

	if _, err := f.svc.Generate(ctx, "u1", Options{SessionID: "s1"}); err != nil {
		t.Fatal(err)
	}

	// The log batch is written asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	var logs []*models.RecommendationLog
	for time.Now().Before(deadline) {
		var err error
		logs, err = f.recLogs.ListByUser(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if len(logs) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(logs) == 0 {
		t.Fatal("no recommendation logs written")
	}
	for _, l := range logs {
		if l.GenerationID == "" || l.ID == "" {
			t.Error("log missing identity")
		}
		if l.SessionID != "s1" {
			t.Errorf("SessionID = %q, want s1", l.SessionID)
		}
		if l.Shown || l.Clicked {
			t.Error("outcome flags not zero at creation")
		}
	}
}

func TestRecommendationsServesFreshCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedMysteryWorld(f)

	first, err := f.svc.Recommendations(ctx, "u1", Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.svc.Recommendations(ctx, "u1", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Error("fresh cache not served; document regenerated")
	}
}

func TestRecommendationsStaleServing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedMysteryWorld(f)

	first, err := f.svc.Recommendations(ctx, "u1", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.cache.MarkStale(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	rebuilds := make(chan string, 1)
	f.svc.SetRebuildHook(func(userID string) { rebuilds <- userID })

	doc, err := f.svc.Recommendations(ctx, "u1", Options{AllowStale: true})
	if err != nil {
		t.Fatal(err)
	}
	if !doc.GeneratedAt.Equal(first.GeneratedAt) {
		t.Error("stale read regenerated inline instead of serving old document")
	}
	select {
	case userID := <-rebuilds:
		if userID != "u1" {
			t.Errorf("rebuild requested for %s", userID)
		}
	default:
		t.Error("no background rebuild requested")
	}

	// Without AllowStale, a stale document forces inline regeneration.
	doc, err = f.svc.Recommendations(ctx, "u1", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if doc.IsStale {
		t.Error("regenerated document still stale")
	}
	if doc.GeneratedAt.Equal(first.GeneratedAt) {
		t.Error("stale document served without AllowStale")
	}
}

func TestTrendingFallbackKeepsPopularityOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	// All read counts saturate the ceiling, so score reduces to rating/5
	// and ranks ta > tb > td > tc. td shares a genre with the two books
	// above it; a diversity pass would promote tc past it.
	for _, b := range []*models.Book{
		{ID: "ta", Title: "Alpha", Genres: []string{"Mystery"}, Authors: []string{"A"}, InternalRating: 4.8, InternalRatingCount: 100, ReadCount: 1000},
		{ID: "tb", Title: "Beta", Genres: []string{"Mystery"}, Authors: []string{"B"}, InternalRating: 4.6, InternalRatingCount: 100, ReadCount: 1000},
		{ID: "tc", Title: "Gamma", Genres: []string{"Romance"}, Authors: []string{"C"}, InternalRating: 4.0, InternalRatingCount: 100, ReadCount: 1000},
		{ID: "td", Title: "Delta", Genres: []string{"Mystery"}, Authors: []string{"D"}, InternalRating: 4.4, InternalRatingCount: 100, ReadCount: 1000},
	} {
		f.cat.AddBook(b)
	}
	f.graph.AddUser(&models.User{ID: "newbie", Username: "newbie"})

	doc, err := f.svc.Generate(ctx, "newbie", Options{})
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}

	want := []string{"ta", "tb", "td", "tc"}
	if len(doc.Home) != len(want) {
		t.Fatalf("len(home) = %d, want %d", len(doc.Home), len(want))
	}
	for i, id := range want {
		if doc.Home[i].BookID != id {
			t.Errorf("home[%d] = %s, want %s", i, doc.Home[i].BookID, id)
		}
	}
	for i := 1; i < len(doc.Home); i++ {
		if doc.Home[i].Score > doc.Home[i-1].Score {
			t.Errorf("trending list out of score order at %d", i)
		}
	}
}

func TestColdStartFallsBackToTrending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedMysteryWorld(f)
	f.graph.AddUser(&models.User{ID: "newbie", Username: "newbie"})

	doc, err := f.svc.Generate(ctx, "newbie", Options{})
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}
	if len(doc.Home) == 0 {
		t.Fatal("cold-start user got no recommendations")
	}
	for _, item := range doc.Home {
		if item.Algorithm != AlgorithmTrending {
			t.Errorf("algorithm = %s, want trending fallback", item.Algorithm)
		}
		if item.Breakdown[models.FactorTrending] != 1 {
			t.Errorf("breakdown.trending = %f, want 1", item.Breakdown[models.FactorTrending])
		}
	}
}

func TestFriendsSlotPopulated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedMysteryWorld(f)

	f.graph.AddUser(&models.User{
		ID: "u2", Username: "alice",
		Shelf: []models.ShelfEntry{{BookID: "r1", Rating: 5}},
	})
	me, _ := f.graph.User(ctx, "u1")
	me.Following = []string{"u2"}
	f.graph.AddUser(me)

	doc, err := f.svc.Generate(ctx, "u1", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Friends) != 1 || doc.Friends[0].BookID != "r1" {
		t.Fatalf("friends slot = %v, want [r1]", doc.Friends)
	}
	if doc.Friends[0].Reason != "alice loved this" {
		t.Errorf("attribution = %q", doc.Friends[0].Reason)
	}
	if doc.Friends[0].Algorithm != AlgorithmFriends {
		t.Errorf("algorithm = %s", doc.Friends[0].Algorithm)
	}
}

func TestHomeScoringIgnoresFriendSignals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedMysteryWorld(f)

	// alice loves m2, a live home candidate for u1.
	f.graph.AddUser(&models.User{
		ID: "u2", Username: "alice",
		Shelf: []models.ShelfEntry{{BookID: "m2", Rating: 5}},
	})
	me, _ := f.graph.User(ctx, "u1")
	me.Following = []string{"u2"}
	f.graph.AddUser(me)

	doc, err := f.svc.Generate(ctx, "u1", Options{})
	if err != nil {
		t.Fatalf("Generate() = %v", err)
	}

	// The endorsement belongs to the friends slot, not the home ranking.
	for _, item := range doc.Home {
		if got := item.Breakdown[models.FactorFriends]; got != 0 {
			t.Errorf("home breakdown.friends for %s = %f, want 0", item.BookID, got)
		}
	}
	if len(doc.Friends) != 1 || doc.Friends[0].BookID != "m2" {
		t.Fatalf("friends slot = %v, want [m2]", doc.Friends)
	}
}

func TestSimilarToLovedIncludesAuthorMatches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.cat.AddBook(&models.Book{ID: "seed", Title: "Root", Genres: []string{"Mystery"}, Authors: []string{"A. Writer"}, PageCount: 300, InternalRating: 4.5, InternalRatingCount: 100})
	// Same author, disjoint genre: reachable only through the author seed.
	f.cat.AddBook(&models.Book{ID: "cross", Title: "Starfall", Genres: []string{"Sci-Fi"}, Authors: []string{"A. Writer"}, PageCount: 320, InternalRating: 4.2, InternalRatingCount: 80})

	user := &models.User{
		ID: "u1", Username: "me",
		Shelf: []models.ShelfEntry{{BookID: "seed", Rating: 5, AddedAt: time.Now()}},
	}

	books, err := f.svc.similarToLoved(ctx, user, catalog.QueryFilter{})
	if err != nil {
		t.Fatalf("similarToLoved() = %v", err)
	}

	found := make(map[string]int)
	for _, b := range books {
		found[b.ID]++
	}
	if found["cross"] == 0 {
		t.Error("author-only match missing from similar candidates")
	}
	for id, n := range found {
		if n > 1 {
			t.Errorf("book %s returned %d times", id, n)
		}
	}
}

func TestHomeTruncatesToLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedMysteryWorld(f)

	items, err := f.svc.Home(ctx, "u1", 1, Options{})
	if err != nil {
		t.Fatalf("Home() = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}

	// A zero limit means the full slot.
	full, err := f.svc.Home(ctx, "u1", 0, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(full) < len(items) {
		t.Errorf("unlimited call returned %d items, truncated returned %d", len(full), len(items))
	}
	if items[0].BookID != full[0].BookID {
		t.Error("truncation changed the top item")
	}
}

func TestFriendRecommendationsStandalone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seedMysteryWorld(f)

	f.graph.AddUser(&models.User{
		ID: "u2", Username: "alice",
		Shelf: []models.ShelfEntry{{BookID: "r1", Rating: 5}},
	})
	me, _ := f.graph.User(ctx, "u1")
	me.Following = []string{"u2"}
	f.graph.AddUser(me)

	items, err := f.svc.FriendRecommendations(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("FriendRecommendations() = %v", err)
	}
	if len(items) != 1 || items[0].BookID != "r1" {
		t.Fatalf("items = %v, want [r1]", items)
	}
	if items[0].Reason != "alice loved this" {
		t.Errorf("attribution = %q", items[0].Reason)
	}
	if items[0].Breakdown[models.FactorFriends] != items[0].Score {
		t.Error("breakdown does not carry the friend score")
	}

	if _, err := f.svc.FriendRecommendations(ctx, "ghost", 10); err == nil {
		t.Error("unknown user did not return an error")
	}
}

func TestSimilarBooksDedupesEditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.cat.AddBook(&models.Book{ID: "seed", Title: "Original", Genres: []string{"Fantasy"}, Authors: []string{"D. Bard"}, PageCount: 400, InternalRating: 4.5, InternalRatingCount: 100})
	f.cat.AddBook(&models.Book{ID: "e1", Title: "Sequel", Genres: []string{"Fantasy"}, Authors: []string{"D. Bard"}, PageCount: 420, InternalRating: 4.4, InternalRatingCount: 90})
	// Reprint of the sequel under another id.
	f.cat.AddBook(&models.Book{ID: "e2", Title: "Sequel", Genres: []string{"Fantasy"}, Authors: []string{"D. Bard"}, PageCount: 418, InternalRating: 4.3, InternalRatingCount: 40})
	f.cat.AddBook(&models.Book{ID: "other", Title: "Elsewhere", Genres: []string{"Fantasy"}, Authors: []string{"E. Poet"}, PageCount: 350, InternalRating: 4.1, InternalRatingCount: 60})

	items, err := f.svc.SimilarBooks(ctx, "seed", 10)
	if err != nil {
		t.Fatalf("SimilarBooks() = %v", err)
	}

	seen := make(map[string]bool)
	for _, item := range items {
		if item.BookID == "seed" {
			t.Error("seed book recommended as similar to itself")
		}
		seen[item.BookID] = true
	}
	if seen["e1"] && seen["e2"] {
		t.Error("both editions of the same work recommended")
	}
	if !seen["other"] {
		t.Error("genre-similar book missing")
	}
}

func TestSimilarBooksRanksByQuality(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.cat.AddBook(&models.Book{ID: "seed", Title: "Original", Genres: []string{"Fantasy"}, Authors: []string{"D. Bard"}, PageCount: 400, InternalRating: 4.5, InternalRatingCount: 100})
	// Same author but weakly rated; the genre match outscores it.
	f.cat.AddBook(&models.Book{ID: "weak", Title: "Minor Work", Genres: []string{"Fantasy"}, Authors: []string{"D. Bard"}, PageCount: 380, InternalRating: 3.6, InternalRatingCount: 40})
	f.cat.AddBook(&models.Book{ID: "strong", Title: "Elsewhere", Genres: []string{"Fantasy"}, Authors: []string{"E. Poet"}, PageCount: 350, InternalRating: 4.8, InternalRatingCount: 100})

	items, err := f.svc.SimilarBooks(ctx, "seed", 10)
	if err != nil {
		t.Fatalf("SimilarBooks() = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].BookID != "strong" || items[1].BookID != "weak" {
		t.Errorf("order = [%s %s], want [strong weak]", items[0].BookID, items[1].BookID)
	}
	for i := 1; i < len(items); i++ {
		if items[i].Score > items[i-1].Score {
			t.Errorf("similar list out of score order at %d", i)
		}
	}
}
