// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package recommend

import (
	"fmt"
	"math"
	"time"

	"github.com/hridyeshh/PaperBoxd-sub000/internal/models"
)

// requestContext carries the situational inputs for context adjustments.
type requestContext struct {
	now        time.Time
	activeUser bool
}

// scoreCandidate combines the seven factors into one [0,1] score with a
// per-factor breakdown.
func (s *Service) scoreCandidate(c *Candidate, p *models.UserPreferenceProfile, rc requestContext) *ScoredItem {
	sc := s.cfg.Scoring
	breakdown := make(map[string]float64, 7)

	breakdown[models.FactorGenre] = s.genreFactor(c.Book, p)
	breakdown[models.FactorAuthor] = s.authorFactor(c.Book, p)
	breakdown[models.FactorQuality] = s.qualityFactor(c.Book)
	// Friend endorsements surface through the dedicated friends slot; the
	// factor stays zero in this pipeline, recorded for the wire contract.
	breakdown[models.FactorFriends] = 0
	if s.cfg.Features.Trending {
		breakdown[models.FactorTrending] = s.trendingFactor(c.Book)
	}
	if s.cfg.Features.Recency {
		breakdown[models.FactorRecency] = s.recencyFactor(c.Book, rc.now)
	}
	if s.cfg.Features.Diversity {
		breakdown[models.FactorDiversity] = s.diversityFactor(c.Book, p)
	}

	score := sc.GenreWeight*breakdown[models.FactorGenre] +
		sc.AuthorWeight*breakdown[models.FactorAuthor] +
		sc.QualityWeight*breakdown[models.FactorQuality] +
		sc.FriendsWeight*breakdown[models.FactorFriends] +
		sc.TrendingWeight*breakdown[models.FactorTrending] +
		sc.RecencyWeight*breakdown[models.FactorRecency] +
		sc.DiversityWeight*breakdown[models.FactorDiversity]

	if s.cfg.Features.ContextFilters {
		score *= s.contextMultiplier(c.Book, p, rc)
	}

	item := &ScoredItem{
		Book:      c.Book,
		Score:     clamp01(score),
		Breakdown: breakdown,
		Algorithm: AlgorithmPersonalized,
	}
	item.Reason = s.explain(item, c)
	return item
}

// genreFactor is the strongest matched genre weight against the configured
// ceiling, with a bonus when multiple genres match.
func (s *Service) genreFactor(book *models.Book, p *models.UserPreferenceProfile) float64 {
	var (
		maxWeight float64
		matches   int
	)
	for _, genre := range book.NormalizedGenres() {
		if w := p.GenreWeights.Get(genre); w > 0 {
			matches++
			if w > maxWeight {
				maxWeight = w
			}
		}
	}

	factor := maxWeight / s.cfg.Scoring.GenreWeightCeiling
	if matches >= 2 {
		factor += s.cfg.Scoring.MultiGenreBonus
	}
	return clamp01(factor)
}

// authorFactor is the strongest matched author weight against its ceiling.
func (s *Service) authorFactor(book *models.Book, p *models.UserPreferenceProfile) float64 {
	var maxWeight float64
	for _, author := range book.Authors {
		if w := p.AuthorWeights.Get(models.SanitizeAuthor(author)); w > maxWeight {
			maxWeight = w
		}
	}
	return clamp01(maxWeight / s.cfg.Scoring.AuthorWeightCeiling)
}

// qualityFactor is the normalized rating discounted by rating-count
// confidence, which saturates at the configured ceiling.
func (s *Service) qualityFactor(book *models.Book) float64 {
	rating, count := book.BestRating()
	if rating <= 0 {
		return 0
	}
	confidence := math.Min(1, float64(count)/float64(s.cfg.Scoring.RatingCountCeiling))
	return clamp01(rating / 5 * confidence)
}

// trendingFactor combines read, like, and TBR volume at 2:1.5:1, each
// saturating at the configured read ceiling.
func (s *Service) trendingFactor(book *models.Book) float64 {
	ceiling := float64(s.cfg.Scoring.TrendingReadCeiling)
	reads := math.Min(1, float64(book.ReadCount)/ceiling)
	likes := math.Min(1, float64(book.LikeCount)/ceiling)
	tbrs := math.Min(1, float64(book.TBRCount)/ceiling)
	return clamp01((2*reads + 1.5*likes + 1*tbrs) / 4.5)
}

// recencyFactor decays linearly from 1 at publication to 0 at the horizon.
// Books without a publish date, or dated in the future, score zero.
func (s *Service) recencyFactor(book *models.Book, now time.Time) float64 {
	if book.PublishDate.IsZero() || book.PublishDate.After(now) {
		return 0
	}
	ageMonths := now.Sub(book.PublishDate).Hours() / (30.44 * 24)
	return clamp01(1 - ageMonths/float64(s.cfg.Scoring.RecencyHorizonMonths))
}

// diversityFactor rewards books outside the user's dominant genres in
// proportion to how broad a reader they already are. Books inside the top
// genres score zero; the factor is exploration, not affinity.
func (s *Service) diversityFactor(book *models.Book, p *models.UserPreferenceProfile) float64 {
	top := p.GenreWeights.Top(s.cfg.Diversity.TopGenresExempt)
	dominant := make(map[string]struct{}, len(top))
	for _, w := range top {
		dominant[w.Key] = struct{}{}
	}

	for _, genre := range book.NormalizedGenres() {
		if _, ok := dominant[genre]; ok {
			return 0
		}
	}
	return clamp01(p.DiversityScore)
}

// contextMultiplier applies the situational adjustments.
func (s *Service) contextMultiplier(book *models.Book, p *models.UserPreferenceProfile, rc requestContext) float64 {
	cc := s.cfg.Context
	mult := 1.0

	hour := rc.now.Hour()
	if hour >= cc.MorningStartHour && hour < cc.MorningEndHour && book.PageCount > 0 && book.PageCount < cc.ShortPageThreshold {
		mult *= cc.MorningBoost
	}
	if rc.activeUser {
		mult *= cc.ActiveUserMultiplier
	}
	if p.ReadingVelocity > 0 && p.ReadingVelocity < cc.SlowReaderVelocity && book.PageCount > cc.LongPageThreshold {
		mult *= cc.LongBookPenalty
	}
	return mult
}

// explain names the strongest weighted factor in reader-facing language.
func (s *Service) explain(item *ScoredItem, c *Candidate) string {
	sc := s.cfg.Scoring
	weights := map[string]float64{
		models.FactorGenre:     sc.GenreWeight,
		models.FactorAuthor:    sc.AuthorWeight,
		models.FactorQuality:   sc.QualityWeight,
		models.FactorTrending:  sc.TrendingWeight,
		models.FactorRecency:   sc.RecencyWeight,
		models.FactorDiversity: sc.DiversityWeight,
	}

	best := ""
	bestContribution := 0.0
	// Deterministic factor order so score ties explain consistently.
	for _, factor := range []string{
		models.FactorGenre, models.FactorAuthor, models.FactorQuality,
		models.FactorTrending, models.FactorRecency,
		models.FactorDiversity,
	} {
		if contribution := weights[factor] * item.Breakdown[factor]; contribution > bestContribution {
			bestContribution = contribution
			best = factor
		}
	}

	switch best {
	case models.FactorGenre:
		return "Matches the genres you read most"
	case models.FactorAuthor:
		return fmt.Sprintf("More from %s", c.Book.PrimaryAuthor())
	case models.FactorQuality:
		return "Highly rated by readers"
	case models.FactorTrending:
		return "Trending on PaperBoxd"
	case models.FactorRecency:
		return "A recent release"
	case models.FactorDiversity:
		return "Something new to explore"
	default:
		return "Popular with readers like you"
	}
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
