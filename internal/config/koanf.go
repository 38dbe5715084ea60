// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces all environment overrides.
const envPrefix = "PAPERBOXD_"

// DefaultConfigPaths lists where config files are searched, in priority
// order. CONFIG_PATH overrides the search entirely.
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"/etc/paperboxd/config.yaml",
}

// Load builds the configuration from three layers: struct defaults, an
// optional YAML file, and PAPERBOXD_-prefixed environment variables. The
// result is validated before being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: built-in defaults.
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file.
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority).
	// PAPERBOXD_REDIS_ADDR -> redis.addr
	// PAPERBOXD_SERVER_READ_TIMEOUT -> server.read_timeout
	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, preferring
// CONFIG_PATH when set. Empty string means no file layer.
func findConfigFile() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings resolves environment names whose koanf path cannot be derived
// by splitting at the first underscore (nested sections, multi-word keys).
var envMappings = map[string]string{
	"profile_signals_shelf":             "profile.signals.shelf",
	"profile_signals_liked":             "profile.signals.liked",
	"profile_signals_to_be_read":        "profile.signals.to_be_read",
	"profile_signals_currently_reading": "profile.signals.currently_reading",
	"profile_signals_favorite":          "profile.signals.favorite",
	"profile_signals_top_pick":          "profile.signals.top_pick",
}

// envTransformFunc maps a PAPERBOXD_-prefixed environment variable to its
// koanf config path. Unknown variables fall back to section.key by splitting
// at the first underscore, which covers every flat section.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	return section + "." + rest
}

// processSliceFields converts comma-separated env strings into typed slices
// before unmarshaling. Only rating multipliers are slice-valued.
func processSliceFields(k *koanf.Koanf) error {
	const path = "profile.rating_multipliers"

	raw, ok := k.Get(path).(string)
	if !ok {
		return nil
	}

	parts := strings.Split(raw, ",")
	multipliers := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("invalid rating multiplier %q: %w", part, err)
		}
		multipliers = append(multipliers, v)
	}

	return k.Set(path, multipliers)
}
