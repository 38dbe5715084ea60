// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is shared across calls; the validator instance caches struct
// metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags first, then the cross-field rules the tag
// language cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			ve := verrs[0]
			return fmt.Errorf("invalid value for %s: failed %q constraint", ve.Namespace(), ve.Tag())
		}
		return err
	}

	checks := []func() error{
		c.validateRatingMultipliers,
		c.validateContextWindows,
		c.validateFactorWeights,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// validateRatingMultipliers enforces monotonicity: a higher star rating must
// never carry a smaller multiplier than a lower one.
func (c *Config) validateRatingMultipliers() error {
	m := c.Profile.RatingMultipliers
	for i := 1; i < len(m); i++ {
		if m[i] < m[i-1] {
			return fmt.Errorf("profile.rating_multipliers must be non-decreasing: %v", m)
		}
	}
	return nil
}

func (c *Config) validateContextWindows() error {
	if c.Context.MorningStartHour >= c.Context.MorningEndHour {
		return fmt.Errorf("context.morning_start_hour (%d) must precede morning_end_hour (%d)",
			c.Context.MorningStartHour, c.Context.MorningEndHour)
	}
	if c.Context.ShortPageThreshold >= c.Context.LongPageThreshold {
		return fmt.Errorf("context.short_page_threshold (%d) must be below long_page_threshold (%d)",
			c.Context.ShortPageThreshold, c.Context.LongPageThreshold)
	}
	return nil
}

// validateFactorWeights requires at least one positive factor weight; an
// all-zero configuration would rank every candidate identically.
func (c *Config) validateFactorWeights() error {
	s := c.Scoring
	total := s.GenreWeight + s.AuthorWeight + s.QualityWeight + s.FriendsWeight +
		s.TrendingWeight + s.RecencyWeight + s.DiversityWeight
	if total <= 0 {
		return fmt.Errorf("scoring: at least one factor weight must be positive")
	}
	return nil
}
