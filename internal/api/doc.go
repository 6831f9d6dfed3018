// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

// Package api provides the HTTP surface of the recommendation service:
// Chi routing, request validation, standardized JSON responses, and the
// recommendation endpoints themselves. Every response that carries
// catalog content has already passed through the content safety filter
// before it reaches this package.
package api
