// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

/*
client.go - Metropolitan Museum of Art Collection Client

Wraps the Met's public collection API (no credentials). Artwork lookup
is two-phase: a keyword search returns object IDs, then each object is
fetched individually. Only public-domain objects with a small primary
image are usable; everything else is skipped.

API Reference: https://metmuseum.github.io/
*/

package met

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moodmuse/internal/config"
	"github.com/tomtom215/moodmuse/internal/logging"
	"github.com/tomtom215/moodmuse/internal/metrics"
	"github.com/tomtom215/moodmuse/internal/moderation"
)

const maxErrorBodySize = 4 * 1024

// objectFetchConcurrency bounds parallel object lookups per search.
const objectFetchConcurrency = 4

// Searcher is the recommendation layer's view of the Met client.
type Searcher interface {
	// SearchArtworks returns up to limit displayable artwork records
	// matching the keyword.
	SearchArtworks(ctx context.Context, keyword string, limit int) ([]moderation.Raw, error)
}

// Ensure Client implements Searcher
var _ Searcher = (*Client)(nil)

// Client handles communication with the Met collection API.
// Safe for concurrent use.
type Client struct {
	cfg        config.MetConfig
	httpClient *http.Client
	retry      moderation.RetryConfig

	// shuffle randomizes candidate object order so repeat queries
	// surface different artworks. Replaced in tests.
	shuffle func(n int, swap func(i, j int))
}

// New creates a Met collection client. httpClient may be nil.
func New(cfg config.MetConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		retry:      moderation.DefaultRetryConfig(),
		shuffle:    rand.Shuffle,
	}
}

// searchResponse is the wire format of a /search result.
type searchResponse struct {
	Total     int   `json:"total"`
	ObjectIDs []int `json:"objectIDs"`
}

// SearchArtworks returns up to limit displayable artwork records for a
// keyword. Candidate objects are shuffled, then fetched concurrently and
// kept only when public domain with a primary image.
func (c *Client) SearchArtworks(ctx context.Context, keyword string, limit int) ([]moderation.Raw, error) {
	if limit < 1 {
		limit = 1
	}

	ids, err := c.searchObjectIDs(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []moderation.Raw{}, nil
	}

	c.shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	// Fetch more candidates than needed; many objects are not public
	// domain or carry no image.
	candidates := c.cfg.MaxObjects
	if candidates < limit {
		candidates = limit
	}
	if len(ids) > candidates {
		ids = ids[:candidates]
	}

	objects := c.fetchObjects(ctx, ids)

	results := make([]moderation.Raw, 0, limit)
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		if !displayable(obj) {
			continue
		}
		results = append(results, obj)
		if len(results) >= limit {
			break
		}
	}

	logging.Ctx(ctx).Debug().
		Str("keyword", keyword).
		Int("candidates", len(ids)).
		Int("results", len(results)).
		Msg("Met artwork search complete")

	return results, nil
}

// displayable reports whether an object can be shown: public domain with
// a small primary image.
func displayable(obj moderation.Raw) bool {
	public, _ := obj["isPublicDomain"].(bool)
	image, _ := obj["primaryImageSmall"].(string)
	return public && image != ""
}

// searchObjectIDs runs the keyword search phase.
func (c *Client) searchObjectIDs(ctx context.Context, keyword string) ([]int, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("hasImages", "true")

	var sResp searchResponse
	err := moderation.Retry(ctx, "met-search", c.retry, func() error {
		return c.getJSON(ctx, "/search?"+params.Encode(), &sResp)
	})
	if err != nil {
		return nil, fmt.Errorf("met search failed: %w", err)
	}

	return sResp.ObjectIDs, nil
}

// fetchObjects fetches objects concurrently, preserving candidate order.
// Individual failures yield nil slots rather than failing the batch.
func (c *Client) fetchObjects(ctx context.Context, ids []int) []moderation.Raw {
	objects := make([]moderation.Raw, len(ids))

	sem := make(chan struct{}, objectFetchConcurrency)
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(i, id int) {
			defer wg.Done()
			defer func() { <-sem }()

			obj, err := c.getObject(ctx, id)
			if err != nil {
				logging.Ctx(ctx).Debug().Err(err).Int("object_id", id).Msg("Skipping Met object")
				return
			}
			objects[i] = obj
		}(i, id)
	}

	wg.Wait()
	return objects
}

// getObject fetches a single object record.
func (c *Client) getObject(ctx context.Context, id int) (moderation.Raw, error) {
	var obj moderation.Raw
	err := moderation.Retry(ctx, "met-object", c.retry, func() error {
		return c.getJSON(ctx, fmt.Sprintf("/objects/%d", id), &obj)
	})
	if err != nil {
		return nil, fmt.Errorf("met object %d fetch failed: %w", id, err)
	}
	return obj, nil
}

// getJSON issues one GET against the collection API and decodes the
// response.
func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("met", "error").Inc()
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveUpstreamRequest("met", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &moderation.StatusError{Service: "met collection", Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
