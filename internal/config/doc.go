// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

// Package config loads and validates application configuration.
//
// Configuration is layered with Koanf v2:
//  1. Built-in defaults (DefaultConfig)
//  2. Optional YAML config file (CONFIG_PATH or ./config.yaml)
//  3. Environment variables prefixed PAPERBOXD_ (PAPERBOXD_REDIS_ADDR,
//     PAPERBOXD_SCORING_GENRE_WEIGHT, ...)
//
// Every load path ends in Validate, so downstream packages can assume a
// structurally sound configuration: factor weights in range, signal base
// weights positive, rating multipliers monotonic in star count.
package config
