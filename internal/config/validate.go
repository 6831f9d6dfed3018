// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package config

import (
	"fmt"
	"net/url"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateSpotify(); err != nil {
		return err
	}

	if err := c.validateMet(); err != nil {
		return err
	}

	if err := c.validateModeration(); err != nil {
		return err
	}

	return c.validateRecommend()
}

// validateServer validates the HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

// validateLogging validates the logging configuration
func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal; got %q", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateSpotify validates the Spotify configuration (only if enabled)
func (c *Config) validateSpotify() error {
	if !c.Spotify.Enabled {
		return nil
	}

	if c.Spotify.ClientID == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID is required when SPOTIFY_ENABLED=true")
	}
	if c.Spotify.ClientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_SECRET is required when SPOTIFY_ENABLED=true")
	}
	if err := validateHTTPURL(c.Spotify.BaseURL, "SPOTIFY_BASE_URL"); err != nil {
		return err
	}
	if err := validateHTTPURL(c.Spotify.TokenURL, "SPOTIFY_TOKEN_URL"); err != nil {
		return err
	}
	if c.Spotify.SearchLimit < 1 || c.Spotify.SearchLimit > 50 {
		return fmt.Errorf("SPOTIFY_SEARCH_LIMIT must be between 1 and 50, got %d", c.Spotify.SearchLimit)
	}
	if c.Spotify.RequestsPerSecond <= 0 {
		return fmt.Errorf("SPOTIFY_RATE_LIMIT must be positive")
	}
	return nil
}

// validateMet validates the Met collection configuration (only if enabled)
func (c *Config) validateMet() error {
	if !c.Met.Enabled {
		return nil
	}

	if err := validateHTTPURL(c.Met.BaseURL, "MET_BASE_URL"); err != nil {
		return err
	}
	if c.Met.MaxObjects < 1 {
		return fmt.Errorf("MET_MAX_OBJECTS must be at least 1")
	}
	return nil
}

// validateModeration validates the content safety configuration
func (c *Config) validateModeration() error {
	m := &c.Moderation

	if m.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if err := validateHTTPURL(m.Endpoint, "OPENAI_ENDPOINT"); err != nil {
		return err
	}
	if m.Timeout <= 0 {
		return fmt.Errorf("MODERATION_TIMEOUT must be positive")
	}
	if m.CacheTTL <= 0 {
		return fmt.Errorf("MODERATION_CACHE_TTL must be positive")
	}
	if m.MaxConcurrent < 1 {
		return fmt.Errorf("MODERATION_MAX_CONCURRENT must be at least 1")
	}
	if m.RetryAttempts < 1 || m.RetryAttempts > 10 {
		return fmt.Errorf("MODERATION_RETRY_ATTEMPTS must be between 1 and 10, got %d", m.RetryAttempts)
	}
	if m.Placeholder == "" {
		return fmt.Errorf("CENSORED_IMAGE_PATH must not be empty")
	}

	if err := validateThreshold("THRESHOLD_SEXUAL", m.Thresholds.Sexual); err != nil {
		return err
	}
	if err := validateThreshold("THRESHOLD_SEXUAL_MINORS", m.Thresholds.SexualMinors); err != nil {
		return err
	}
	if err := validateThreshold("THRESHOLD_HARASSMENT_THREAT", m.Thresholds.HarassmentThreatening); err != nil {
		return err
	}
	if err := validateThreshold("THRESHOLD_VIOLENCE", m.Thresholds.Violence); err != nil {
		return err
	}

	if m.Vision.Enabled {
		if m.Vision.APIKey == "" {
			return fmt.Errorf("VISION_API_KEY is required when VISION_ENABLED=true")
		}
		if err := validateHTTPURL(m.Vision.Endpoint, "VISION_ENDPOINT"); err != nil {
			return err
		}
	}

	if m.SafeBrowsing.Enabled {
		if m.SafeBrowsing.APIKey == "" {
			return fmt.Errorf("SAFEBROWSING_API_KEY is required when SAFEBROWSING_ENABLED=true")
		}
		if err := validateHTTPURL(m.SafeBrowsing.Endpoint, "SAFEBROWSING_ENDPOINT"); err != nil {
			return err
		}
	}

	return nil
}

// validateRecommend validates the recommendation service configuration
func (c *Config) validateRecommend() error {
	if c.Recommend.DefaultLimit < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT must be at least 1")
	}
	if c.Recommend.MaxLimit < c.Recommend.DefaultLimit {
		return fmt.Errorf("RECOMMEND_MAX_LIMIT must be >= RECOMMEND_DEFAULT_LIMIT")
	}
	return nil
}

// validateThreshold checks a moderation score threshold is within [0, 1].
// Zero disables the category, so it is allowed.
func validateThreshold(fieldName string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %g", fieldName, v)
	}
	return nil
}

// validateHTTPURL validates that a URL is properly formatted for
// HTTP/HTTPS services: scheme, host present, no query params.
func validateHTTPURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}
