// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

/*
text.go - Remote Text Moderation Client

Wraps an OpenAI-compatible /moderations endpoint. Only text the keyword
pre-filter could not decide reaches this client. Verdicts are cached by
normalized text; transport failures fail open.

API Reference: https://platform.openai.com/docs/api-reference/moderations
*/

package moderation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moodmuse/internal/cache"
	"github.com/tomtom215/moodmuse/internal/logging"
	"github.com/tomtom215/moodmuse/internal/metrics"
)

// Thresholds are per-category score limits above which text is treated as
// flagged, regardless of the provider's own flagged boolean. Categories
// where false negatives are unacceptable (sexual content, anything
// involving minors, threats) run near zero; violence may be more
// permissive since music and art vocabulary trips it constantly.
type Thresholds struct {
	Sexual                float64 `koanf:"sexual"`
	SexualMinors          float64 `koanf:"sexual_minors"`
	HarassmentThreatening float64 `koanf:"harassment_threatening"`
	Violence              float64 `koanf:"violence"`
}

// DefaultThresholds matches the reference deployment.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Sexual:                0.001,
		SexualMinors:          0.0001,
		HarassmentThreatening: 0.001,
		Violence:              0.85,
	}
}

// TextConfig configures the remote text moderation client.
type TextConfig struct {
	Endpoint   string // Base URL, e.g. https://api.openai.com/v1
	APIKey     string
	Model      string // Default: omni-moderation-latest
	Thresholds Thresholds
	Retry      RetryConfig
}

// TextChecker is the orchestrator's view of remote text moderation.
type TextChecker interface {
	// Check reports whether text is safe to display.
	Check(ctx context.Context, text string) bool
}

// Ensure TextClient implements TextChecker
var _ TextChecker = (*TextClient)(nil)

// TextClient calls the remote moderation endpoint with caching, retry and
// circuit breaking. Failure policy: FAIL OPEN. A transport failure or
// malformed response never hides valid content; the deny-list already
// caught the worst cases locally.
type TextClient struct {
	cfg        TextConfig
	httpClient *http.Client
	cache      *cache.Cache
	breaker    *Breaker
}

// NewTextClient creates a remote text moderation client.
// httpClient is the shared pooled client; verdicts go into c with the
// standard TTL.
func NewTextClient(cfg TextConfig, httpClient *http.Client, c *cache.Cache) *TextClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "omni-moderation-latest"
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	return &TextClient{
		cfg:        cfg,
		httpClient: httpClient,
		cache:      c,
		breaker:    NewBreaker("openai-text"),
	}
}

// moderationRequest is the wire format of a /moderations call.
type moderationRequest struct {
	Model string `json:"model,omitempty"`
	Input any    `json:"input"`
}

type moderationInput struct {
	Type     string              `json:"type"`
	Text     string              `json:"text,omitempty"`
	ImageURL *moderationImageURL `json:"image_url,omitempty"`
}

type moderationImageURL struct {
	URL string `json:"url"`
}

// moderationResponse is the wire format of a /moderations result.
type moderationResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Results []struct {
		Flagged        bool               `json:"flagged"`
		Categories     map[string]bool    `json:"categories"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
}

// Check reports whether text is safe. The verdict is cached by normalized
// text for the standard TTL; a present cache entry short-circuits the
// remote call entirely.
func (c *TextClient) Check(ctx context.Context, text string) bool {
	normalized := Normalize(text)
	if normalized == "" {
		return true
	}

	if cached, ok := c.cache.Get(normalized); ok {
		if safe, ok := cached.(bool); ok {
			return safe
		}
	}

	safe, err := c.breaker.Execute(func() (bool, error) {
		var result bool
		err := Retry(ctx, "text-moderation", c.cfg.Retry, func() error {
			var callErr error
			result, callErr = c.moderateOnce(ctx, normalized)
			return callErr
		})
		return result, err
	})
	if err != nil {
		// Fail open: availability over blocking valid content on
		// transient errors.
		logging.Ctx(ctx).Warn().Err(err).Msg("Text moderation unavailable, failing open")
		metrics.ModerationRemoteFailures.WithLabelValues("openai-text", "fail_open").Inc()
		return true
	}

	metrics.ModerationChecks.WithLabelValues("text_remote", verdictLabel(safe)).Inc()
	c.cache.Set(normalized, safe)
	return safe
}

// moderateOnce issues a single remote moderation call.
func (c *TextClient) moderateOnce(ctx context.Context, text string) (bool, error) {
	start := time.Now()

	body := moderationRequest{
		Model: c.cfg.Model,
		Input: []moderationInput{{Type: "text", Text: text}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("failed to encode moderation request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.Endpoint, "/") + "/moderations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to create moderation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("text moderation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.ModerationRemoteDuration.WithLabelValues("openai-text").Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, &StatusError{Service: "text moderation", Code: resp.StatusCode, Body: string(errBody)}
	}

	var mResp moderationResponse
	if err := json.NewDecoder(resp.Body).Decode(&mResp); err != nil {
		return false, fmt.Errorf("failed to decode moderation response: %w", err)
	}

	return !c.flagged(&mResp), nil
}

// flagged applies both the provider's flagged boolean and the local
// per-category thresholds to a moderation response.
func (c *TextClient) flagged(resp *moderationResponse) bool {
	for _, result := range resp.Results {
		if result.Flagged {
			return true
		}
		if exceeds(result.CategoryScores, "sexual", c.cfg.Thresholds.Sexual) ||
			exceeds(result.CategoryScores, "sexual/minors", c.cfg.Thresholds.SexualMinors) ||
			exceeds(result.CategoryScores, "harassment/threatening", c.cfg.Thresholds.HarassmentThreatening) ||
			exceeds(result.CategoryScores, "violence", c.cfg.Thresholds.Violence) {
			return true
		}
	}
	return false
}

// exceeds reports whether a category score crosses its threshold.
// A zero threshold disables the category check.
func exceeds(scores map[string]float64, category string, threshold float64) bool {
	if threshold <= 0 {
		return false
	}
	return scores[category] >= threshold
}

func verdictLabel(safe bool) string {
	if safe {
		return "safe"
	}
	return "unsafe"
}
