// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package moderation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moodmuse/internal/cache"
)

func TestParseLikelihood(t *testing.T) {
	tests := []struct {
		in   string
		want Likelihood
	}{
		{"VERY_UNLIKELY", LikelihoodVeryUnlikely},
		{"UNLIKELY", LikelihoodUnlikely},
		{"POSSIBLE", LikelihoodPossible},
		{"LIKELY", LikelihoodLikely},
		{"VERY_LIKELY", LikelihoodVeryLikely},
		{"UNKNOWN", LikelihoodUnknown},
		{"", LikelihoodUnknown},
		{"garbage", LikelihoodUnknown},
	}

	for _, tt := range tests {
		if got := ParseLikelihood(tt.in); got != tt.want {
			t.Errorf("ParseLikelihood(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}

	if !(LikelihoodPossible > LikelihoodUnlikely && LikelihoodLikely > LikelihoodPossible) {
		t.Error("likelihood ordinals are not ordered")
	}
}

// visionHandler fakes an images:annotate endpoint with fixed likelihoods.
func visionHandler(calls *atomic.Int64, adult, violence, racy string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		resp := map[string]any{
			"responses": []map[string]any{{
				"safeSearchAnnotation": map[string]any{
					"adult":    adult,
					"spoof":    "VERY_UNLIKELY",
					"medical":  "VERY_UNLIKELY",
					"violence": violence,
					"racy":     racy,
				},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func newTestImageClient(t *testing.T, visionFn, moderationFn http.HandlerFunc) *ImageClient {
	t.Helper()

	visionSrv := httptest.NewServer(visionFn)
	t.Cleanup(visionSrv.Close)

	moderationSrv := httptest.NewServer(moderationFn)
	t.Cleanup(moderationSrv.Close)

	cfg := ImageConfig{
		VisionEndpoint:     visionSrv.URL,
		VisionAPIKey:       "vision-key",
		ModerationEndpoint: moderationSrv.URL,
		ModerationAPIKey:   "test-key",
		Retry:              fastRetryConfig(2),
	}
	return NewImageClient(cfg, &http.Client{Timeout: time.Second}, cache.New("image-test-"+t.Name(), time.Minute, 100), nil)
}

func TestImageClientVisionDisabled(t *testing.T) {
	var visionCalls, moderationCalls atomic.Int64
	client := newTestImageClient(t,
		visionHandler(&visionCalls, "VERY_LIKELY", "VERY_LIKELY", "VERY_LIKELY"),
		moderationHandler(t, &moderationCalls, false, nil),
	)
	client.cfg.VisionDisabled = true

	const url = "https://img.example.com/cover.jpg"
	if got := client.Resolve(context.Background(), url); got != url {
		t.Errorf("Resolve() = %q, want original URL from moderation model alone", got)
	}
	if visionCalls.Load() != 0 {
		t.Errorf("vision calls = %d, want none when disabled", visionCalls.Load())
	}
	if moderationCalls.Load() != 1 {
		t.Errorf("moderation calls = %d, want 1", moderationCalls.Load())
	}
}

func TestImageClientBothSafe(t *testing.T) {
	client := newTestImageClient(t,
		visionHandler(&atomic.Int64{}, "VERY_UNLIKELY", "UNLIKELY", "VERY_UNLIKELY"),
		moderationHandler(t, &atomic.Int64{}, false, nil),
	)

	const url = "https://img.example.com/cover.jpg"
	if got := client.Resolve(context.Background(), url); got != url {
		t.Errorf("Resolve() = %q, want original URL when both classifiers pass", got)
	}
}

func TestImageClientVisionFlagsPossible(t *testing.T) {
	tests := []struct {
		name                  string
		adult, violence, racy string
	}{
		{"adult possible", "POSSIBLE", "VERY_UNLIKELY", "VERY_UNLIKELY"},
		{"violence likely", "VERY_UNLIKELY", "LIKELY", "VERY_UNLIKELY"},
		{"racy very likely", "VERY_UNLIKELY", "VERY_UNLIKELY", "VERY_LIKELY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestImageClient(t,
				visionHandler(&atomic.Int64{}, tt.adult, tt.violence, tt.racy),
				moderationHandler(t, &atomic.Int64{}, false, nil),
			)

			got := client.Resolve(context.Background(), "https://img.example.com/x.jpg")
			if got != DefaultPlaceholder {
				t.Errorf("Resolve() = %q, want placeholder", got)
			}
		})
	}
}

func TestImageClientVisionUnlikelyIsSafe(t *testing.T) {
	client := newTestImageClient(t,
		visionHandler(&atomic.Int64{}, "UNLIKELY", "UNLIKELY", "UNLIKELY"),
		moderationHandler(t, &atomic.Int64{}, false, nil),
	)

	const url = "https://img.example.com/fine.jpg"
	if got := client.Resolve(context.Background(), url); got != url {
		t.Errorf("Resolve() = %q, want original URL at UNLIKELY", got)
	}
}

func TestImageClientModerationFlags(t *testing.T) {
	client := newTestImageClient(t,
		visionHandler(&atomic.Int64{}, "VERY_UNLIKELY", "VERY_UNLIKELY", "VERY_UNLIKELY"),
		moderationHandler(t, &atomic.Int64{}, true, nil),
	)

	got := client.Resolve(context.Background(), "https://img.example.com/flagged.jpg")
	if got != DefaultPlaceholder {
		t.Errorf("Resolve() = %q, want placeholder when moderation flags", got)
	}
}

func TestImageClientFailsClosedOnVisionError(t *testing.T) {
	client := newTestImageClient(t,
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusInternalServerError)
		},
		moderationHandler(t, &atomic.Int64{}, false, nil),
	)

	got := client.Resolve(context.Background(), "https://img.example.com/y.jpg")
	if got != DefaultPlaceholder {
		t.Errorf("Resolve() = %q, want placeholder on classifier failure (fail closed)", got)
	}
}

func TestImageClientFailsClosedOnTimeout(t *testing.T) {
	slow := func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}
	client := newTestImageClient(t, slow, slow)
	client.httpClient = &http.Client{Timeout: 20 * time.Millisecond}
	client.cfg.Retry = fastRetryConfig(1)

	got := client.Resolve(context.Background(), "https://img.example.com/slow.jpg")
	if got != DefaultPlaceholder {
		t.Errorf("Resolve() = %q, want placeholder on timeout (fail closed)", got)
	}
}

func TestImageClientEmptyURLSkipsRemote(t *testing.T) {
	var visionCalls, moderationCalls atomic.Int64
	client := newTestImageClient(t,
		visionHandler(&visionCalls, "VERY_UNLIKELY", "VERY_UNLIKELY", "VERY_UNLIKELY"),
		moderationHandler(t, &moderationCalls, false, nil),
	)

	if got := client.Resolve(context.Background(), ""); got != DefaultPlaceholder {
		t.Errorf("Resolve(\"\") = %q, want placeholder", got)
	}
	if visionCalls.Load() != 0 || moderationCalls.Load() != 0 {
		t.Errorf("remote calls = %d/%d, want none for empty URL", visionCalls.Load(), moderationCalls.Load())
	}
}

func TestImageClientCachesResolution(t *testing.T) {
	var visionCalls, moderationCalls atomic.Int64
	client := newTestImageClient(t,
		visionHandler(&visionCalls, "VERY_UNLIKELY", "VERY_UNLIKELY", "VERY_UNLIKELY"),
		moderationHandler(t, &moderationCalls, false, nil),
	)

	const url = "https://img.example.com/repeat.jpg"
	ctx := context.Background()

	first := client.Resolve(ctx, url)
	second := client.Resolve(ctx, url)

	if first != url || second != url {
		t.Errorf("Resolve() = %q then %q, want original URL both times", first, second)
	}
	if visionCalls.Load() != 1 || moderationCalls.Load() != 1 {
		t.Errorf("remote calls = %d/%d, want 1/1 (second resolve must hit the cache)",
			visionCalls.Load(), moderationCalls.Load())
	}
}

type fakeURLChecker struct {
	threats map[string]bool
	calls   atomic.Int64
}

func (f *fakeURLChecker) IsThreat(_ context.Context, url string) (bool, error) {
	f.calls.Add(1)
	return f.threats[url], nil
}

func TestImageClientThreatListBlocks(t *testing.T) {
	var visionCalls, moderationCalls atomic.Int64
	client := newTestImageClient(t,
		visionHandler(&visionCalls, "VERY_UNLIKELY", "VERY_UNLIKELY", "VERY_UNLIKELY"),
		moderationHandler(t, &moderationCalls, false, nil),
	)

	const url = "https://evil.example.com/payload.jpg"
	client.urlChecker = &fakeURLChecker{threats: map[string]bool{url: true}}

	if got := client.Resolve(context.Background(), url); got != DefaultPlaceholder {
		t.Errorf("Resolve() = %q, want placeholder for threat-listed URL", got)
	}
	if visionCalls.Load() != 0 || moderationCalls.Load() != 0 {
		t.Errorf("remote calls = %d/%d, want none after threat-list rejection",
			visionCalls.Load(), moderationCalls.Load())
	}
}
