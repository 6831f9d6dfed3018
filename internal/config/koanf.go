// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/moodmuse/config.yaml",
	"/etc/moodmuse/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			Timeout:           30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Spotify: SpotifyConfig{
			Enabled:           true,
			BaseURL:           "https://api.spotify.com/v1",
			TokenURL:          "https://accounts.spotify.com/api/token",
			SearchLimit:       20,
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Met: MetConfig{
			Enabled:    true,
			BaseURL:    "https://collectionapi.metmuseum.org/public/collection/v1",
			Timeout:    10 * time.Second,
			MaxObjects: 40,
		},
		Moderation: ModerationConfig{
			Endpoint:          "https://api.openai.com/v1",
			Model:             "omni-moderation-latest",
			Timeout:           5 * time.Second,
			CacheTTL:          30 * time.Minute,
			CacheMaxEntries:   5000,
			MaxConcurrent:     8,
			RetryAttempts:     3,
			RetryInitialDelay: 1 * time.Second,
			RetryMaxDelay:     10 * time.Second,
			Thresholds: ThresholdsConfig{
				Sexual:                0.001,
				SexualMinors:          0.0001,
				HarassmentThreatening: 0.001,
				Violence:              0.85,
			},
			Vision: VisionConfig{
				Enabled:  true,
				Endpoint: "https://vision.googleapis.com",
			},
			SafeBrowsing: SafeBrowsingConfig{
				Enabled:  false,
				Endpoint: "https://safebrowsing.googleapis.com",
			},
			Placeholder: "/static/images/censored-image.png",
		},
		Recommend: RecommendConfig{
			DefaultLimit: 12,
			MaxLimit:     50,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if present)
//  3. Environment variables: override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
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

// findConfigFile searches for a config file in the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as
// comma-separated slices when they arrive via env vars.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings but the config expects
// slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Only listed variables are accepted; anything else is ignored so random
// environment variables cannot pollute the config.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - SPOTIFY_CLIENT_ID -> spotify.client_id
//   - OPENAI_API_KEY -> moderation.api_key
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":           "server.host",
		"http_port":           "server.port",
		"http_timeout":        "server.timeout",
		"cors_origins":        "server.cors_origins",
		"rate_limit_requests": "server.rate_limit_reqs",
		"rate_limit_window":   "server.rate_limit_window",
		"disable_rate_limit":  "server.rate_limit_disabled",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Spotify mappings
		"spotify_enabled":       "spotify.enabled",
		"spotify_client_id":     "spotify.client_id",
		"spotify_client_secret": "spotify.client_secret",
		"spotify_base_url":      "spotify.base_url",
		"spotify_token_url":     "spotify.token_url",
		"spotify_search_limit":  "spotify.search_limit",
		"spotify_timeout":       "spotify.timeout",
		"spotify_rate_limit":    "spotify.requests_per_second",
		"spotify_burst":         "spotify.burst",

		// Met collection mappings
		"met_enabled":     "met.enabled",
		"met_base_url":    "met.base_url",
		"met_timeout":     "met.timeout",
		"met_max_objects": "met.max_objects",

		// Moderation mappings
		"openai_endpoint":             "moderation.endpoint",
		"openai_api_key":              "moderation.api_key",
		"openai_moderation_model":     "moderation.model",
		"moderation_timeout":          "moderation.timeout",
		"moderation_cache_ttl":        "moderation.cache_ttl",
		"moderation_cache_max":        "moderation.cache_max_entries",
		"moderation_max_concurrent":   "moderation.max_concurrent",
		"moderation_retry_attempts":   "moderation.retry_attempts",
		"moderation_retry_delay":      "moderation.retry_initial_delay",
		"moderation_retry_max_delay":  "moderation.retry_max_delay",
		"censored_image_path":         "moderation.placeholder",
		"threshold_sexual":            "moderation.thresholds.sexual",
		"threshold_sexual_minors":     "moderation.thresholds.sexual_minors",
		"threshold_harassment_threat": "moderation.thresholds.harassment_threatening",
		"threshold_violence":          "moderation.thresholds.violence",

		// Vision safe-search mappings
		"vision_enabled":  "moderation.vision.enabled",
		"vision_endpoint": "moderation.vision.endpoint",
		"vision_api_key":  "moderation.vision.api_key",

		// Safe Browsing mappings
		"safebrowsing_enabled":  "moderation.safebrowsing.enabled",
		"safebrowsing_endpoint": "moderation.safebrowsing.endpoint",
		"safebrowsing_api_key":  "moderation.safebrowsing.api_key",

		// Recommendation mappings
		"recommend_default_limit": "recommend.default_limit",
		"recommend_max_limit":     "recommend.max_limit",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped
	return ""
}
