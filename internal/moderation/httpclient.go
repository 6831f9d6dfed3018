// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package moderation

import (
	"net/http"
	"time"
)

// DefaultRemoteTimeout bounds every remote moderation call. A slow
// classifier delays only its own item's sub-result, and after the timeout
// the per-client failure policy resolves the verdict.
const DefaultRemoteTimeout = 5 * time.Second

// NewSharedHTTPClient builds the process-wide pooled HTTP client shared by
// all remote moderation calls. Constructed once in main and injected into
// both the text and image clients, so concurrent fan-out across a batch
// reuses a single connection pool instead of opening sockets per check.
func NewSharedHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
