// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

/*
client.go - Google Safe Browsing URL Check Client

Queries the Safe Browsing v4 threatMatches API so that image URLs
pointing at known malware or social-engineering hosts can be blocked
before any image content is fetched or classified.

This check is advisory. Lookup failures are reported to the caller,
which treats them as "no signal" rather than a verdict.

API Reference: https://developers.google.com/safe-browsing/v4
*/

package safebrowsing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moodmuse/internal/config"
	"github.com/tomtom215/moodmuse/internal/metrics"
	"github.com/tomtom215/moodmuse/internal/moderation"
)

const maxErrorBodySize = 4 * 1024

// DefaultEndpoint is the production Safe Browsing API host.
const DefaultEndpoint = "https://safebrowsing.googleapis.com"

// clientID identifies this application in lookup requests, as the API
// terms require.
const (
	clientID      = "moodmuse"
	clientVersion = "1.0.0"
)

// Client checks URLs against the Safe Browsing threat lists.
// It implements moderation.URLChecker. Safe for concurrent use.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	retry      moderation.RetryConfig
}

var _ moderation.URLChecker = (*Client)(nil)

// New creates a Safe Browsing client. httpClient may be nil.
func New(cfg config.SafeBrowsingConfig, httpClient *http.Client) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = moderation.NewSharedHTTPClient(moderation.DefaultRemoteTimeout)
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		retry:      moderation.DefaultRetryConfig(),
	}
}

type threatEntry struct {
	URL string `json:"url"`
}

type threatInfo struct {
	ThreatTypes      []string      `json:"threatTypes"`
	PlatformTypes    []string      `json:"platformTypes"`
	ThreatEntryTypes []string      `json:"threatEntryTypes"`
	ThreatEntries    []threatEntry `json:"threatEntries"`
}

type findRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo threatInfo `json:"threatInfo"`
}

type findResponse struct {
	Matches []struct {
		ThreatType string `json:"threatType"`
	} `json:"matches"`
}

// IsThreat reports whether the URL appears on a Safe Browsing threat
// list. An empty response body means no matches, which the API returns
// for clean URLs.
func (c *Client) IsThreat(ctx context.Context, rawURL string) (bool, error) {
	var fResp findResponse
	err := moderation.Retry(ctx, "safebrowsing-lookup", c.retry, func() error {
		return c.findOnce(ctx, rawURL, &fResp)
	})
	if err != nil {
		return false, fmt.Errorf("safe browsing lookup failed: %w", err)
	}
	return len(fResp.Matches) > 0, nil
}

func (c *Client) findOnce(ctx context.Context, rawURL string, result *findResponse) error {
	reqBody := findRequest{
		ThreatInfo: threatInfo{
			ThreatTypes:      []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"},
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    []threatEntry{{URL: rawURL}},
		},
	}
	reqBody.Client.ClientID = clientID
	reqBody.Client.ClientVersion = clientVersion

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := c.endpoint + "/v4/threatMatches:find?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("safebrowsing", "error").Inc()
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveUpstreamRequest("safebrowsing", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &moderation.StatusError{Service: "safe browsing", Code: resp.StatusCode, Body: string(body)}
	}

	// Clean URLs produce "{}" with no matches array.
	*result = findResponse{}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
