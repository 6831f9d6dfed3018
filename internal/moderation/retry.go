// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package moderation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/tomtom215/moodmuse/internal/logging"
	"github.com/tomtom215/moodmuse/internal/metrics"
)

// RetryConfig controls the bounded retry-with-backoff used by every remote
// moderation and upstream call.
type RetryConfig struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// InitialDelay is the wait before the second attempt.
	InitialDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration
}

// DefaultRetryConfig matches the reference behavior: 3 attempts with
// randomized exponential backoff starting at one second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:     3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     10 * time.Second,
	}
}

// StatusError reports a non-2xx response from a remote API. Keeping the
// code lets the retry predicate distinguish retryable (429, 5xx) from
// terminal (other 4xx) failures.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Code, e.Body)
}

// Retryable reports whether an error is worth retrying.
//
// Transport failures (timeouts, connection resets, DNS) are retryable.
// Status errors are retryable only for 429 and 5xx; any other 4xx is
// terminal, since the request itself is wrong and retrying cannot fix it.
// Context cancellation is always terminal.
//
// An http.Client request timeout unwraps to context.DeadlineExceeded,
// so deadline errors count as timeouts and stay retryable here. Retry
// separately checks the caller's own context and stops once it ends,
// which is the only case where a deadline error should be terminal.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	// Anything else is a transport-level failure.
	return true
}

// Retry runs fn up to cfg.Attempts times, sleeping a randomized
// exponential delay between attempts. The delay multiplier is drawn from
// [1.5, 2.5) so concurrent callers hitting the same rate limit don't
// retry in lockstep.
//
// Retry returns nil on the first success, the last error once attempts
// are exhausted or a terminal error is seen, and ctx.Err() if the context
// ends while waiting.
func Retry(ctx context.Context, operation string, cfg RetryConfig, fn func() error) error {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if attempt > 1 {
			metrics.RetryAttempts.WithLabelValues(operation).Inc()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}

			delay = time.Duration(float64(delay) * (1.5 + rand.Float64())) //nolint:gosec // jitter, not crypto
			if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		// When the caller's context has ended, the failure is the
		// caller giving up, not the remote acting up.
		if ctx.Err() != nil {
			return lastErr
		}
		if !Retryable(lastErr) {
			return lastErr
		}

		if attempt < cfg.Attempts {
			logging.Warn().
				Err(lastErr).
				Str("operation", operation).
				Int("attempt", attempt).
				Int("max_attempts", cfg.Attempts).
				Msg("Remote call failed, will retry")
		}
	}

	return lastErr
}
