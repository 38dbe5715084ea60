// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package config

import "time"

// Config holds all application configuration, loaded from defaults, an
// optional YAML file, and PAPERBOXD_-prefixed environment variables.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Server     ServerConfig     `koanf:"server"`
	Store      StoreConfig      `koanf:"store"`
	Redis      RedisConfig      `koanf:"redis"`
	Retention  RetentionConfig  `koanf:"retention"`
	Profile    ProfileConfig    `koanf:"profile"`
	Candidates CandidateConfig  `koanf:"candidates"`
	Scoring    ScoringConfig    `koanf:"scoring"`
	Context    ContextConfig    `koanf:"context"`
	Diversity  DiversityConfig  `koanf:"diversity"`
	Friends    FriendsConfig    `koanf:"friends"`
	Cache      CacheConfig      `koanf:"cache"`
	Worker     WorkerConfig     `koanf:"worker"`
	Features   FeatureConfig    `koanf:"features"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	// Level is the minimum level to emit. Default: "info"
	Level string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	// Format selects "json" or "console" output. Default: "json"
	Format string `koanf:"format" validate:"oneof=json console"`
	// Caller adds file:line to each entry. Default: false
	Caller bool `koanf:"caller"`
}

// ServerConfig configures the operational HTTP listener (health, metrics).
type ServerConfig struct {
	// Host to bind. Default: "0.0.0.0"
	Host string `koanf:"host" validate:"required"`
	// Port to listen on. Default: 8080
	Port int `koanf:"port" validate:"gte=1,lte=65535"`
	// ReadTimeout for incoming requests. Default: 15s
	ReadTimeout time.Duration `koanf:"read_timeout" validate:"gt=0"`
	// WriteTimeout for responses. Default: 15s
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// StoreConfig configures the embedded Badger document store.
type StoreConfig struct {
	// Path is the Badger data directory. Default: "./data/paperboxd"
	Path string `koanf:"path" validate:"required"`
	// InMemory runs Badger without disk persistence, for tests. Default: false
	InMemory bool `koanf:"in_memory"`
	// GCInterval is how often value-log garbage collection runs. Default: 10m
	GCInterval time.Duration `koanf:"gc_interval" validate:"gt=0"`
	// GCDiscardRatio is the Badger discard ratio for GC. Default: 0.5
	GCDiscardRatio float64 `koanf:"gc_discard_ratio" validate:"gt=0,lt=1"`
}

// RedisConfig configures the recommendation cache backend.
type RedisConfig struct {
	// Addr is the Redis host:port. Default: "localhost:6379"
	Addr string `koanf:"addr" validate:"required,hostname_port"`
	// Password for AUTH, empty to disable. Default: ""
	Password string `koanf:"password"`
	// DB index. Default: 0
	DB int `koanf:"db" validate:"gte=0"`
	// DialTimeout for establishing connections. Default: 5s
	DialTimeout time.Duration `koanf:"dial_timeout" validate:"gt=0"`
	// PoolSize is the maximum number of socket connections. Default: 10
	PoolSize int `koanf:"pool_size" validate:"gte=1"`
}

// RetentionConfig sets physical retention windows per record kind. Logical
// cache freshness (the 1h TTL) lives in CacheConfig; these govern deletion.
type RetentionConfig struct {
	// Events is how long raw interaction events are kept. Default: 90 days
	Events time.Duration `koanf:"events" validate:"gt=0"`
	// RecommendationLogs is how long outcome logs are kept. Default: 180 days
	RecommendationLogs time.Duration `koanf:"recommendation_logs" validate:"gt=0"`
	// Cache is how long cache documents survive physically even when
	// logically stale or expired. Default: 168h (7 days)
	Cache time.Duration `koanf:"cache" validate:"gt=0"`
	// DedupIDs is how long processed event ids are remembered for
	// at-least-once delivery dedup. Default: 90 days
	DedupIDs time.Duration `koanf:"dedup_ids" validate:"gt=0"`
}

// SignalWeights are the base preference weights per collection type. A shelf
// entry's base weight is further multiplied by the per-star rating
// multiplier when a rating is present.
type SignalWeights struct {
	// Shelf base weight for a finished/shelved book. Default: 3.0
	Shelf float64 `koanf:"shelf" validate:"gt=0"`
	// Liked base weight. Default: 4.0
	Liked float64 `koanf:"liked" validate:"gt=0"`
	// ToBeRead base weight. Default: 2.0
	ToBeRead float64 `koanf:"to_be_read" validate:"gt=0"`
	// CurrentlyReading base weight. Default: 3.0
	CurrentlyReading float64 `koanf:"currently_reading" validate:"gt=0"`
	// Favorite base weight. Default: 5.0
	Favorite float64 `koanf:"favorite" validate:"gt=0"`
	// TopPick base weight. Default: 5.0
	TopPick float64 `koanf:"top_pick" validate:"gt=0"`
}

// ProfileConfig tunes preference-profile computation.
type ProfileConfig struct {
	Signals SignalWeights `koanf:"signals"`

	// RatingMultipliers maps a 1-5 star rating to a base-weight multiplier.
	// Must be monotonically non-decreasing in stars; high stars amplify a
	// signal, low stars dampen it.
	// Default: [0.25, 0.5, 1.0, 1.5, 2.0]
	RatingMultipliers []float64 `koanf:"rating_multipliers" validate:"len=5,dive,gt=0"`

	// RebuildMaxAge is the profile age beyond which a full recompute is
	// triggered before serving recommendations. Default: 24h
	RebuildMaxAge time.Duration `koanf:"rebuild_max_age" validate:"gt=0"`

	// OnboardingGenreMultiplier amplifies questionnaire genre weights so
	// cold-start users get non-empty recommendations. Default: 3.0
	OnboardingGenreMultiplier float64 `koanf:"onboarding_genre_multiplier" validate:"gt=0"`

	// OnboardingAuthorWeight is the flat initial weight for each
	// questionnaire author. Default: 5.0
	OnboardingAuthorWeight float64 `koanf:"onboarding_author_weight" validate:"gt=0"`

	// DefaultPageLength is assumed when a user has no page data. Default: 350
	DefaultPageLength float64 `koanf:"default_page_length" validate:"gt=0"`
}

// CandidateConfig tunes candidate generation.
type CandidateConfig struct {
	// TopGenres is how many top-weighted genres seed the genre source. Default: 5
	TopGenres int `koanf:"top_genres" validate:"gte=1"`
	// TopAuthors is how many top-weighted authors seed the author source. Default: 5
	TopAuthors int `koanf:"top_authors" validate:"gte=1"`
	// PerSourceLimit caps each candidate source's fetch. Default: 60
	PerSourceLimit int `koanf:"per_source_limit" validate:"gte=1"`
	// SimilarSeeds is how many recent highly-rated books seed the
	// similar-to-liked source. Default: 5
	SimilarSeeds int `koanf:"similar_seeds" validate:"gte=1"`
	// MinQualityRating filters catalog queries. Default: 3.5
	MinQualityRating float64 `koanf:"min_quality_rating" validate:"gte=0,lte=5"`
	// MinPageCount filters catalog queries. Default: 50
	MinPageCount int `koanf:"min_page_count" validate:"gte=0"`
	// TrendingLimit caps the trending fallback fetch. Default: 40
	TrendingLimit int `koanf:"trending_limit" validate:"gte=1"`
}

// ScoringConfig holds the seven factor weights of the weighted-sum score
// plus the normalization ceilings each factor divides by. Factor weights
// need not sum to 1; the combined score is clamped to [0,1].
type ScoringConfig struct {
	// GenreWeight scales the genre-match factor. Default: 0.25
	GenreWeight float64 `koanf:"genre_weight" validate:"gte=0,lte=1"`
	// AuthorWeight scales the author-match factor. Default: 0.20
	AuthorWeight float64 `koanf:"author_weight" validate:"gte=0,lte=1"`
	// QualityWeight scales the rating-quality factor. Default: 0.20
	QualityWeight float64 `koanf:"quality_weight" validate:"gte=0,lte=1"`
	// FriendsWeight scales the friend-signal factor. Default: 0.15
	FriendsWeight float64 `koanf:"friends_weight" validate:"gte=0,lte=1"`
	// TrendingWeight scales the popularity factor. Default: 0.10
	TrendingWeight float64 `koanf:"trending_weight" validate:"gte=0,lte=1"`
	// RecencyWeight scales the publish-recency factor. Default: 0.05
	RecencyWeight float64 `koanf:"recency_weight" validate:"gte=0,lte=1"`
	// DiversityWeight scales the exploration factor. Default: 0.05
	DiversityWeight float64 `koanf:"diversity_weight" validate:"gte=0,lte=1"`

	// GenreWeightCeiling normalizes the max matched genre weight. Default: 20
	GenreWeightCeiling float64 `koanf:"genre_weight_ceiling" validate:"gt=0"`
	// MultiGenreBonus is added when two or more genres match. Default: 0.2
	MultiGenreBonus float64 `koanf:"multi_genre_bonus" validate:"gte=0,lte=1"`
	// AuthorWeightCeiling normalizes the max matched author weight. Default: 10
	AuthorWeightCeiling float64 `koanf:"author_weight_ceiling" validate:"gt=0"`
	// RatingCountCeiling is the rating count at which quality confidence
	// saturates. Default: 100
	RatingCountCeiling int `koanf:"rating_count_ceiling" validate:"gte=1"`
	// RecencyHorizonMonths is the age at which the recency factor decays to
	// zero. Default: 24
	RecencyHorizonMonths int `koanf:"recency_horizon_months" validate:"gte=1"`
	// TrendingReadCeiling saturates the read-count component. Default: 1000
	TrendingReadCeiling int `koanf:"trending_read_ceiling" validate:"gte=1"`
}

// ContextConfig tunes the feature-flagged context adjustments applied after
// factor scoring.
type ContextConfig struct {
	// MorningBoost multiplies short-book scores during morning hours. Default: 1.10
	MorningBoost float64 `koanf:"morning_boost" validate:"gt=0"`
	// MorningStartHour and MorningEndHour bound the morning window (local
	// hour, end exclusive). Defaults: 5, 12
	MorningStartHour int `koanf:"morning_start_hour" validate:"gte=0,lte=23"`
	MorningEndHour   int `koanf:"morning_end_hour" validate:"gte=0,lte=24"`
	// ShortPageThreshold defines a short book. Default: 250
	ShortPageThreshold int `koanf:"short_page_threshold" validate:"gt=0"`
	// LongPageThreshold defines a long book. Default: 500
	LongPageThreshold int `koanf:"long_page_threshold" validate:"gt=0"`
	// SlowReaderVelocity is the books-per-month rate below which a user is
	// considered a slow reader. Default: 1.0
	SlowReaderVelocity float64 `koanf:"slow_reader_velocity" validate:"gt=0"`
	// LongBookPenalty multiplies long-book scores for slow readers. Default: 0.70
	LongBookPenalty float64 `koanf:"long_book_penalty" validate:"gt=0,lte=1"`
	// ActiveUserMultiplier applies when the user has recent session
	// activity. Default: 1.05
	ActiveUserMultiplier float64 `koanf:"active_user_multiplier" validate:"gt=0"`
}

// DiversityConfig tunes the two-phase re-ranking pass.
type DiversityConfig struct {
	// PureQualityRatio is the fraction of final slots filled strictly by
	// score before the greedy genre-diversity phase. Default: 0.5
	PureQualityRatio float64 `koanf:"pure_quality_ratio" validate:"gte=0,lte=1"`
	// TopGenresExempt is how many of the user's top genres do not count as
	// "exploration" for the diversity factor. Default: 3
	TopGenresExempt int `koanf:"top_genres_exempt" validate:"gte=0"`
}

// FriendsConfig tunes friendship strength and friend-recommendation scoring.
type FriendsConfig struct {
	// BaseStrength is the floor strength of any follow edge. Default: 0.3
	BaseStrength float64 `koanf:"base_strength" validate:"gte=0,lte=1"`
	// MutualBonus is added when both users follow each other. Default: 0.2
	MutualBonus float64 `koanf:"mutual_bonus" validate:"gte=0,lte=1"`
	// MutualFriendBonus is added per mutual friend. Default: 0.02
	MutualFriendBonus float64 `koanf:"mutual_friend_bonus" validate:"gte=0"`
	// MutualFriendCap bounds the total mutual-friend bonus. Default: 0.1
	MutualFriendCap float64 `koanf:"mutual_friend_cap" validate:"gte=0,lte=1"`
	// TasteSimilarityWeight scales the cosine-similarity bonus. Default: 0.2
	TasteSimilarityWeight float64 `koanf:"taste_similarity_weight" validate:"gte=0,lte=1"`
	// StrengthNorm normalizes aggregated friend strength in candidate
	// scoring. Default: 3.0
	StrengthNorm float64 `koanf:"strength_norm" validate:"gt=0"`
	// CountNorm normalizes the loving-friend count. Default: 5
	CountNorm float64 `koanf:"count_norm" validate:"gt=0"`
	// MinLovedRating is the shelf rating at which a friend's book counts as
	// loved. Default: 4
	MinLovedRating int `koanf:"min_loved_rating" validate:"gte=1,lte=5"`
}

// CacheConfig tunes the recommendation cache freshness protocol.
type CacheConfig struct {
	// TTL is the logical freshness window of a generated list. Default: 1h
	TTL time.Duration `koanf:"ttl" validate:"gt=0"`
	// HomeLimit is the ranked home-list length. Default: 20
	HomeLimit int `koanf:"home_limit" validate:"gte=1"`
	// FriendsLimit is the ranked friends-list length. Default: 10
	FriendsLimit int `koanf:"friends_limit" validate:"gte=1"`
}

// WorkerConfig tunes the background task queue and the bulk refresher.
type WorkerConfig struct {
	// QueueBuffer is the bounded in-process queue depth. Default: 256
	QueueBuffer int `koanf:"queue_buffer" validate:"gte=1"`
	// MaxRetries for failed task handlers. Default: 3
	MaxRetries int `koanf:"max_retries" validate:"gte=0"`
	// RetryInterval is the initial backoff between retries. Default: 2s
	RetryInterval time.Duration `koanf:"retry_interval" validate:"gt=0"`
	// RefreshInterval is how often the bulk refresher scans for stale
	// caches. Default: 30m
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"gt=0"`
	// RefreshRatePerSec limits rebuilds issued by the bulk refresher. Default: 5
	RefreshRatePerSec float64 `koanf:"refresh_rate_per_sec" validate:"gt=0"`
}

// FeatureConfig toggles optional scoring behavior.
type FeatureConfig struct {
	// Trending enables the popularity factor. Default: true
	Trending bool `koanf:"trending"`
	// Recency enables the publish-recency factor. Default: true
	Recency bool `koanf:"recency"`
	// Diversity enables the exploration factor and two-phase re-ranking. Default: true
	Diversity bool `koanf:"diversity"`
	// ContextFilters enables time-of-day and velocity adjustments. Default: true
	ContextFilters bool `koanf:"context_filters"`
}

// DefaultConfig returns the built-in defaults. Every layered load starts
// from this.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Path:           "./data/paperboxd",
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			DialTimeout: 5 * time.Second,
			PoolSize:    10,
		},
		Retention: RetentionConfig{
			Events:             90 * 24 * time.Hour,
			RecommendationLogs: 180 * 24 * time.Hour,
			Cache:              7 * 24 * time.Hour,
			DedupIDs:           90 * 24 * time.Hour,
		},
		Profile: ProfileConfig{
			Signals: SignalWeights{
				Shelf:            3.0,
				Liked:            4.0,
				ToBeRead:         2.0,
				CurrentlyReading: 3.0,
				Favorite:         5.0,
				TopPick:          5.0,
			},
			RatingMultipliers:         []float64{0.25, 0.5, 1.0, 1.5, 2.0},
			RebuildMaxAge:             24 * time.Hour,
			OnboardingGenreMultiplier: 3.0,
			OnboardingAuthorWeight:    5.0,
			DefaultPageLength:         350,
		},
		Candidates: CandidateConfig{
			TopGenres:        5,
			TopAuthors:       5,
			PerSourceLimit:   60,
			SimilarSeeds:     5,
			MinQualityRating: 3.5,
			MinPageCount:     50,
			TrendingLimit:    40,
		},
		Scoring: ScoringConfig{
			GenreWeight:          0.25,
			AuthorWeight:         0.20,
			QualityWeight:        0.20,
			FriendsWeight:        0.15,
			TrendingWeight:       0.10,
			RecencyWeight:        0.05,
			DiversityWeight:      0.05,
			GenreWeightCeiling:   20,
			MultiGenreBonus:      0.2,
			AuthorWeightCeiling:  10,
			RatingCountCeiling:   100,
			RecencyHorizonMonths: 24,
			TrendingReadCeiling:  1000,
		},
		Context: ContextConfig{
			MorningBoost:         1.10,
			MorningStartHour:     5,
			MorningEndHour:       12,
			ShortPageThreshold:   250,
			LongPageThreshold:    500,
			SlowReaderVelocity:   1.0,
			LongBookPenalty:      0.70,
			ActiveUserMultiplier: 1.05,
		},
		Diversity: DiversityConfig{
			PureQualityRatio: 0.5,
			TopGenresExempt:  3,
		},
		Friends: FriendsConfig{
			BaseStrength:          0.3,
			MutualBonus:           0.2,
			MutualFriendBonus:     0.02,
			MutualFriendCap:       0.1,
			TasteSimilarityWeight: 0.2,
			StrengthNorm:          3.0,
			CountNorm:             5,
			MinLovedRating:        4,
		},
		Cache: CacheConfig{
			TTL:          time.Hour,
			HomeLimit:    20,
			FriendsLimit: 10,
		},
		Worker: WorkerConfig{
			QueueBuffer:       256,
			MaxRetries:        3,
			RetryInterval:     2 * time.Second,
			RefreshInterval:   30 * time.Minute,
			RefreshRatePerSec: 5,
		},
		Features: FeatureConfig{
			Trending:       true,
			Recency:        true,
			Diversity:      true,
			ContextFilters: true,
		},
	}
}

// RatingMultiplier returns the configured multiplier for a 1-5 star rating,
// or 1.0 for out-of-range input.
func (p *ProfileConfig) RatingMultiplier(stars int) float64 {
	if stars < 1 || stars > len(p.RatingMultipliers) {
		return 1.0
	}
	return p.RatingMultipliers[stars-1]
}
