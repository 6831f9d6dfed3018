// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

/*
client.go - Spotify Web API Client

Client-credentials integration with the Spotify search API. The app
token is cached until shortly before expiry and refreshed under a
mutex so concurrent searches never stampede the token endpoint.

Resilience:
  - Process-wide rate limiter (token bucket, golang.org/x/time/rate)
  - Retry with randomized backoff on 429 and 5xx
  - One forced token refresh on 401 before giving up
*/

package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/moodmuse/internal/config"
	"github.com/tomtom215/moodmuse/internal/logging"
	"github.com/tomtom215/moodmuse/internal/metrics"
	"github.com/tomtom215/moodmuse/internal/moderation"
)

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics.
const maxErrorBodySize = 4 * 1024

// tokenExpiryMargin refreshes the app token this long before Spotify's
// reported expiry instead of racing it.
const tokenExpiryMargin = 30 * time.Second

// Searcher is the recommendation layer's view of the Spotify client.
type Searcher interface {
	// Search runs a catalog search and returns the raw records of the
	// requested kind.
	Search(ctx context.Context, query string, kind moderation.Kind, limit int) ([]moderation.Raw, error)
}

// Ensure Client implements Searcher
var _ Searcher = (*Client)(nil)

// Client handles communication with the Spotify Web API.
// Safe for concurrent use.
type Client struct {
	cfg        config.SpotifyConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      moderation.RetryConfig

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	now         func() time.Time
}

// New creates a Spotify client from configuration. httpClient may be nil,
// in which case a client with the configured timeout is used.
func New(cfg config.SpotifyConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		retry:      moderation.DefaultRetryConfig(),
		now:        time.Now,
	}
}

// tokenResponse is the wire format of the client-credentials grant.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a valid app token, fetching a new one when the
// cached token is absent or near expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry.Add(-tokenExpiryMargin)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("spotify", "error").Inc()
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveUpstreamRequest("spotify", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return "", &moderation.StatusError{Service: "spotify token", Code: resp.StatusCode, Body: string(body)}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token response carried no access token")
	}

	expiresIn := tok.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	c.token = tok.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(expiresIn) * time.Second)
	logging.Ctx(ctx).Debug().Int("expires_in", expiresIn).Msg("Refreshed Spotify app token")

	return c.token, nil
}

// invalidateToken drops the cached token so the next call fetches a
// fresh one. Called after a 401.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// searchKinds maps record kinds to Spotify search types.
var searchKinds = map[moderation.Kind]string{
	moderation.KindPlaylist: "playlist",
	moderation.KindAlbum:    "album",
	moderation.KindTrack:    "track",
	moderation.KindArtist:   "artist",
}

// Search runs a catalog search and returns raw records of the requested
// kind. Paging continues until limit records are collected or Spotify
// runs out of results; null entries (deleted catalog items) are dropped.
func (c *Client) Search(ctx context.Context, query string, kind moderation.Kind, limit int) ([]moderation.Raw, error) {
	searchType, ok := searchKinds[kind]
	if !ok {
		return nil, fmt.Errorf("kind %q is not searchable on Spotify", kind)
	}
	if limit < 1 {
		limit = c.cfg.SearchLimit
	}

	// Spotify caps page size at 50.
	pageSize := 50
	if limit < pageSize {
		pageSize = limit
	}

	results := make([]moderation.Raw, 0, limit)
	offset := 0

	for len(results) < limit {
		page, err := c.searchPage(ctx, query, searchType, pageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, item := range page {
			if item == nil {
				continue
			}
			results = append(results, item)
		}

		offset += pageSize
		if len(page) < pageSize {
			break
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}

	logging.Ctx(ctx).Debug().
		Str("type", searchType).
		Str("query", query).
		Int("results", len(results)).
		Msg("Spotify search complete")

	return results, nil
}

// searchPage fetches one page of search results with rate limiting,
// retry, and a single token refresh on 401.
func (c *Client) searchPage(ctx context.Context, query, searchType string, limit, offset int) ([]moderation.Raw, error) {
	var items []moderation.Raw

	refreshed := false
	err := moderation.Retry(ctx, "spotify-search", c.retry, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		pageItems, err := c.searchOnce(ctx, query, searchType, limit, offset)

		var statusErr *moderation.StatusError
		if err != nil && !refreshed && errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
			// Token expired mid-flight; refresh once and retry inline.
			refreshed = true
			c.invalidateToken()
			pageItems, err = c.searchOnce(ctx, query, searchType, limit, offset)
		}
		if err != nil {
			return err
		}

		items = pageItems
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("spotify search failed: %w", err)
	}

	return items, nil
}

// searchResponse is the wire format of a /search result. Spotify keys
// the payload by the plural of the search type.
type searchResponse map[string]struct {
	Items []moderation.Raw `json:"items"`
	Total int              `json:"total"`
}

// searchOnce issues a single search request.
func (c *Client) searchOnce(ctx context.Context, query, searchType string, limit, offset int) ([]moderation.Raw, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", searchType)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("spotify", "error").Inc()
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveUpstreamRequest("spotify", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &moderation.StatusError{Service: "spotify search", Code: resp.StatusCode, Body: string(body)}
	}

	var sResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	section, ok := sResp[searchType+"s"]
	if !ok {
		return nil, fmt.Errorf("search response missing %q section", searchType+"s")
	}

	return section.Items, nil
}
