// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package moderation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		Attempts:     attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"request timeout", context.DeadlineExceeded, true},
		{"wrapped timeout", fmt.Errorf("request failed: %w", context.DeadlineExceeded), true},
		{"wrapped cancellation", fmt.Errorf("request failed: %w", context.Canceled), false},
		{"transport error", errors.New("connection reset"), true},
		{"rate limited", &StatusError{Service: "api", Code: http.StatusTooManyRequests}, true},
		{"server error", &StatusError{Service: "api", Code: http.StatusBadGateway}, true},
		{"bad request", &StatusError{Service: "api", Code: http.StatusBadRequest}, false},
		{"unauthorized", &StatusError{Service: "api", Code: http.StatusUnauthorized}, false},
		{"wrapped status error", fmt.Errorf("check: %w", &StatusError{Service: "api", Code: 503}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "test", fastRetryConfig(3), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryRecoversAfterTransientFailure(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "test", fastRetryConfig(3), func() error {
		calls++
		if calls < 3 {
			return &StatusError{Service: "api", Code: http.StatusServiceUnavailable}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	wantErr := &StatusError{Service: "api", Code: http.StatusInternalServerError}
	err := Retry(context.Background(), "test", fastRetryConfig(3), func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Retry() error = %v, want last attempt's error", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnTerminalError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "test", fastRetryConfig(3), func() error {
		calls++
		return &StatusError{Service: "api", Code: http.StatusUnauthorized}
	})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("Retry() error = %v, want terminal status error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (terminal errors must not retry)", calls)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	cfg := RetryConfig{Attempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour}
	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, "test", cfg, func() error {
			calls++
			return errors.New("transient")
		})
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Retry() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Retry() did not return after context cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryRequestTimeoutIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			time.Sleep(300 * time.Millisecond)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	err := Retry(context.Background(), "test", fastRetryConfig(3), func() error {
		resp, err := client.Get(srv.URL)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v, want recovery after timeout", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("remote calls = %d, want 2 (timed-out attempt plus retry)", got)
	}
}

func TestRetryStopsWhenCallerDeadlinePasses(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	cfg := RetryConfig{Attempts: 5, InitialDelay: 10 * time.Millisecond, MaxDelay: 20 * time.Millisecond}
	err := Retry(ctx, "test", cfg, func() error {
		calls++
		<-ctx.Done()
		return fmt.Errorf("fetch: %w", ctx.Err())
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Retry() error = %v, want the caller's deadline error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries once the caller's context ends)", calls)
	}
}

func TestRetryZeroAttemptsStillRunsOnce(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "test", RetryConfig{}, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Service: "moderation", Code: 503, Body: "overloaded"}
	want := "moderation returned status 503: overloaded"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
