// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

/*
image.go - Remote Image Safety Clients

Resolves an untrusted image URL to a displayable URL: the original when
both classifiers clear it, the censored placeholder otherwise. Two
independent classifiers run concurrently (parallel-AND):

  - A safe-search classifier (Google Cloud Vision images:annotate style)
    returning ordinal likelihoods per category
  - A moderation-model image classifier (OpenAI /moderations style)
    returning a binary flagged verdict

Either classifier flagging, failing, or timing out censors the image.
Images are the higher-risk, harder-to-retract surface, so unlike text
this path FAILS CLOSED.
*/

package moderation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moodmuse/internal/cache"
	"github.com/tomtom215/moodmuse/internal/logging"
	"github.com/tomtom215/moodmuse/internal/metrics"
)

// DefaultPlaceholder is the static asset substituted for any blocked or
// absent image.
const DefaultPlaceholder = "/static/images/censored-image.png"

// Likelihood is the ordinal scale reported by the safe-search classifier.
type Likelihood int

const (
	LikelihoodUnknown Likelihood = iota
	LikelihoodVeryUnlikely
	LikelihoodUnlikely
	LikelihoodPossible
	LikelihoodLikely
	LikelihoodVeryLikely
)

// ParseLikelihood maps the wire-format name to its ordinal value.
// Unrecognized names map to Unknown.
func ParseLikelihood(s string) Likelihood {
	switch s {
	case "VERY_UNLIKELY":
		return LikelihoodVeryUnlikely
	case "UNLIKELY":
		return LikelihoodUnlikely
	case "POSSIBLE":
		return LikelihoodPossible
	case "LIKELY":
		return LikelihoodLikely
	case "VERY_LIKELY":
		return LikelihoodVeryLikely
	default:
		return LikelihoodUnknown
	}
}

// URLChecker is an optional pre-check that rejects image URLs matching
// known-malicious threat lists before any classifier spends quota on them.
type URLChecker interface {
	// IsThreat reports whether the URL matches a known threat.
	IsThreat(ctx context.Context, url string) (bool, error)
}

// ImageConfig configures the image safety clients.
type ImageConfig struct {
	// VisionEndpoint is the base URL of the safe-search classifier,
	// e.g. https://vision.googleapis.com
	VisionEndpoint string
	VisionAPIKey   string

	// VisionDisabled skips the safe-search classifier, leaving the
	// moderation model as the sole image check.
	VisionDisabled bool

	// ModerationEndpoint is the base URL of the moderation-model image
	// classifier, e.g. https://api.openai.com/v1
	ModerationEndpoint string
	ModerationAPIKey   string
	ModerationModel    string

	// Placeholder replaces blocked or absent images.
	Placeholder string

	Retry RetryConfig
}

// ImageResolver is the orchestrator's view of image safety.
type ImageResolver interface {
	// Resolve maps an image URL to a displayable URL: the original or
	// the placeholder. Never returns an error; unresolvable is unsafe.
	Resolve(ctx context.Context, imageURL string) string
}

// Ensure ImageClient implements ImageResolver
var _ ImageResolver = (*ImageClient)(nil)

// ImageClient runs both remote classifiers with caching, retry and
// per-provider circuit breaking.
type ImageClient struct {
	cfg               ImageConfig
	httpClient        *http.Client
	cache             *cache.Cache
	urlChecker        URLChecker // optional, nil when unconfigured
	visionBreaker     *Breaker
	moderationBreaker *Breaker
}

// NewImageClient creates the image safety client. urlChecker may be nil.
func NewImageClient(cfg ImageConfig, httpClient *http.Client, c *cache.Cache, urlChecker URLChecker) *ImageClient {
	if cfg.VisionEndpoint == "" {
		cfg.VisionEndpoint = "https://vision.googleapis.com"
	}
	if cfg.ModerationEndpoint == "" {
		cfg.ModerationEndpoint = "https://api.openai.com/v1"
	}
	if cfg.ModerationModel == "" {
		cfg.ModerationModel = "omni-moderation-latest"
	}
	if cfg.Placeholder == "" {
		cfg.Placeholder = DefaultPlaceholder
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	return &ImageClient{
		cfg:               cfg,
		httpClient:        httpClient,
		cache:             c,
		urlChecker:        urlChecker,
		visionBreaker:     NewBreaker("vision-safesearch"),
		moderationBreaker: NewBreaker("openai-image"),
	}
}

// Placeholder returns the configured censored-image path.
func (c *ImageClient) Placeholder() string {
	return c.cfg.Placeholder
}

// Resolve maps an image URL to a displayable URL.
//
// An absent URL resolves to the placeholder immediately, with no remote
// call and no cache entry. Otherwise the cache is consulted by raw URL;
// the cached value is the final resolved display URL, so repeat items
// across batches within the TTL window cost zero remote calls.
func (c *ImageClient) Resolve(ctx context.Context, imageURL string) string {
	if imageURL == "" {
		return c.cfg.Placeholder
	}

	if cached, ok := c.cache.Get(imageURL); ok {
		if display, ok := cached.(string); ok {
			return display
		}
	}

	display := c.cfg.Placeholder
	if c.classify(ctx, imageURL) {
		display = imageURL
	}

	c.cache.Set(imageURL, display)
	return display
}

// classify reports whether the image is safe to display. Both classifiers
// run concurrently and both must clear the image (parallel-AND).
func (c *ImageClient) classify(ctx context.Context, imageURL string) bool {
	if c.urlChecker != nil {
		threat, err := c.urlChecker.IsThreat(ctx, imageURL)
		if err != nil {
			// The threat list is advisory; the classifiers still run.
			logging.Ctx(ctx).Debug().Err(err).Msg("URL threat check unavailable")
		} else if threat {
			logging.Ctx(ctx).Warn().Str("url", imageURL).Msg("Image URL matches threat list")
			metrics.ModerationChecks.WithLabelValues("image_urlcheck", "unsafe").Inc()
			return false
		}
	}

	if c.cfg.VisionDisabled {
		return c.moderationCheck(ctx, imageURL)
	}

	var visionSafe, moderationSafe bool

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		visionSafe = c.visionCheck(ctx, imageURL)
	}()
	go func() {
		defer wg.Done()
		moderationSafe = c.moderationCheck(ctx, imageURL)
	}()
	wg.Wait()

	return visionSafe && moderationSafe
}

// visionCheck runs the safe-search classifier. Fail closed.
func (c *ImageClient) visionCheck(ctx context.Context, imageURL string) bool {
	safe, err := c.visionBreaker.Execute(func() (bool, error) {
		var result bool
		err := Retry(ctx, "vision-safesearch", c.cfg.Retry, func() error {
			var callErr error
			result, callErr = c.visionOnce(ctx, imageURL)
			return callErr
		})
		return result, err
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("url", imageURL).Msg("Safe-search check unavailable, failing closed")
		metrics.ModerationRemoteFailures.WithLabelValues("vision-safesearch", "fail_closed").Inc()
		return false
	}

	metrics.ModerationChecks.WithLabelValues("image_vision", verdictLabel(safe)).Inc()
	return safe
}

// visionAnnotateRequest is the wire format of an images:annotate call.
type visionAnnotateRequest struct {
	Requests []visionRequest `json:"requests"`
}

type visionRequest struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImage struct {
	Source visionImageSource `json:"source"`
}

type visionImageSource struct {
	ImageURI string `json:"imageUri"`
}

type visionFeature struct {
	Type string `json:"type"`
}

// visionAnnotateResponse is the wire format of an images:annotate result.
type visionAnnotateResponse struct {
	Responses []struct {
		SafeSearchAnnotation *struct {
			Adult    string `json:"adult"`
			Spoof    string `json:"spoof"`
			Medical  string `json:"medical"`
			Violence string `json:"violence"`
			Racy     string `json:"racy"`
		} `json:"safeSearchAnnotation"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// visionOnce issues a single safe-search detection call.
// The image is unsafe at POSSIBLE or higher for adult, violence, or racy.
func (c *ImageClient) visionOnce(ctx context.Context, imageURL string) (bool, error) {
	start := time.Now()

	body := visionAnnotateRequest{
		Requests: []visionRequest{{
			Image:    visionImage{Source: visionImageSource{ImageURI: imageURL}},
			Features: []visionFeature{{Type: "SAFE_SEARCH_DETECTION"}},
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("failed to encode safe-search request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.VisionEndpoint, "/") + "/v1/images:annotate?key=" + c.cfg.VisionAPIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to create safe-search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("safe-search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.ModerationRemoteDuration.WithLabelValues("vision-safesearch").Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, &StatusError{Service: "safe-search", Code: resp.StatusCode, Body: string(errBody)}
	}

	var vResp visionAnnotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&vResp); err != nil {
		return false, fmt.Errorf("failed to decode safe-search response: %w", err)
	}
	if len(vResp.Responses) == 0 {
		return false, fmt.Errorf("safe-search response carried no annotations")
	}
	if respErr := vResp.Responses[0].Error; respErr != nil {
		return false, fmt.Errorf("safe-search annotation error %d: %s", respErr.Code, respErr.Message)
	}
	annotation := vResp.Responses[0].SafeSearchAnnotation
	if annotation == nil {
		return false, fmt.Errorf("safe-search response carried no annotations")
	}

	unsafe := ParseLikelihood(annotation.Adult) >= LikelihoodPossible ||
		ParseLikelihood(annotation.Violence) >= LikelihoodPossible ||
		ParseLikelihood(annotation.Racy) >= LikelihoodPossible

	return !unsafe, nil
}

// moderationCheck runs the moderation-model image classifier. Fail closed.
func (c *ImageClient) moderationCheck(ctx context.Context, imageURL string) bool {
	safe, err := c.moderationBreaker.Execute(func() (bool, error) {
		var result bool
		err := Retry(ctx, "image-moderation", c.cfg.Retry, func() error {
			var callErr error
			result, callErr = c.moderationOnce(ctx, imageURL)
			return callErr
		})
		return result, err
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("url", imageURL).Msg("Image moderation unavailable, failing closed")
		metrics.ModerationRemoteFailures.WithLabelValues("openai-image", "fail_closed").Inc()
		return false
	}

	metrics.ModerationChecks.WithLabelValues("image_moderation", verdictLabel(safe)).Inc()
	return safe
}

// moderationOnce issues a single image moderation call.
func (c *ImageClient) moderationOnce(ctx context.Context, imageURL string) (bool, error) {
	start := time.Now()

	body := moderationRequest{
		Model: c.cfg.ModerationModel,
		Input: []moderationInput{{Type: "image_url", ImageURL: &moderationImageURL{URL: imageURL}}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("failed to encode image moderation request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.ModerationEndpoint, "/") + "/moderations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to create image moderation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.ModerationAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("image moderation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.ModerationRemoteDuration.WithLabelValues("openai-image").Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, &StatusError{Service: "image moderation", Code: resp.StatusCode, Body: string(errBody)}
	}

	var mResp moderationResponse
	if err := json.NewDecoder(resp.Body).Decode(&mResp); err != nil {
		return false, fmt.Errorf("failed to decode image moderation response: %w", err)
	}

	for _, result := range mResp.Results {
		if result.Flagged {
			return false, nil
		}
	}
	return true, nil
}
