// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

// Package middleware provides HTTP middleware for the API server:
// request ID propagation, Prometheus instrumentation, and response
// compression. All middleware uses the standard func(http.Handler)
// http.Handler shape so it composes with chi.
package middleware
