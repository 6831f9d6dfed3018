// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package config

import "time"

// Config is the complete application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Spotify    SpotifyConfig    `koanf:"spotify"`
	Met        MetConfig        `koanf:"met"`
	Moderation ModerationConfig `koanf:"moderation"`
	Recommend  RecommendConfig  `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Timeout           time.Duration `koanf:"timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SpotifyConfig holds the Spotify Web API integration settings.
// Client credentials are exchanged for an app token; no user auth.
type SpotifyConfig struct {
	Enabled           bool          `koanf:"enabled"`
	ClientID          string        `koanf:"client_id"`
	ClientSecret      string        `koanf:"client_secret"`
	BaseURL           string        `koanf:"base_url"`
	TokenURL          string        `koanf:"token_url"`
	SearchLimit       int           `koanf:"search_limit"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// MetConfig holds the Metropolitan Museum of Art collection API settings.
// The Met API is public and needs no credentials.
type MetConfig struct {
	Enabled    bool          `koanf:"enabled"`
	BaseURL    string        `koanf:"base_url"`
	Timeout    time.Duration `koanf:"timeout"`
	MaxObjects int           `koanf:"max_objects"`
}

// ModerationConfig holds the content safety pipeline settings.
type ModerationConfig struct {
	// Endpoint and APIKey configure the OpenAI-compatible moderation API
	// used for both text and image checks.
	Endpoint string `koanf:"endpoint"`
	APIKey   string `koanf:"api_key"`
	Model    string `koanf:"model"`

	Timeout         time.Duration `koanf:"timeout"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`
	MaxConcurrent   int           `koanf:"max_concurrent"`

	RetryAttempts     int           `koanf:"retry_attempts"`
	RetryInitialDelay time.Duration `koanf:"retry_initial_delay"`
	RetryMaxDelay     time.Duration `koanf:"retry_max_delay"`

	Thresholds ThresholdsConfig `koanf:"thresholds"`

	Vision       VisionConfig       `koanf:"vision"`
	SafeBrowsing SafeBrowsingConfig `koanf:"safebrowsing"`

	// Placeholder is served in place of any blocked or absent image.
	Placeholder string `koanf:"placeholder"`
}

// ThresholdsConfig holds per-category moderation score limits.
// A zero threshold disables the category check.
type ThresholdsConfig struct {
	Sexual                float64 `koanf:"sexual"`
	SexualMinors          float64 `koanf:"sexual_minors"`
	HarassmentThreatening float64 `koanf:"harassment_threatening"`
	Violence              float64 `koanf:"violence"`
}

// VisionConfig holds the Google Cloud Vision safe-search settings.
type VisionConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Endpoint string `koanf:"endpoint"`
	APIKey   string `koanf:"api_key"`
}

// SafeBrowsingConfig holds the optional Safe Browsing URL pre-check
// settings.
type SafeBrowsingConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Endpoint string `koanf:"endpoint"`
	APIKey   string `koanf:"api_key"`
}

// RecommendConfig holds recommendation service settings.
type RecommendConfig struct {
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`
}
