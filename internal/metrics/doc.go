// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

// Package metrics provides Prometheus instrumentation for Moodmuse.
//
// All collectors are registered at package load time via promauto and
// referenced directly by other packages:
//
//	metrics.ModerationChecks.WithLabelValues("prefilter", "safe").Inc()
//	metrics.CacheHits.WithLabelValues("image").Inc()
//
// The /metrics endpoint is exposed by the API router using promhttp.
package metrics
