// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

// Package moderation implements the content-safety pipeline applied to every
// untrusted third-party record before it is shown to users.
//
// The pipeline is two-stage and multi-modal:
//
//   - Text: a local keyword pre-filter (allow-list and deny-list, substring
//     matched via an Aho-Corasick automaton) disposes of the obvious cases
//     for free; only undecided text goes to the remote moderation API.
//   - Images: two remote classifiers (safe-search likelihood detection and a
//     moderation-model image check) run concurrently; either flagging the
//     image replaces it with the censored placeholder.
//
// Failure policy is asymmetric and deliberate: text checks fail open
// (transient API failure never hides valid content), image checks fail
// closed (an unverifiable image is never displayed). Remote verdicts are
// cached by exact input with a fixed TTL, remote calls are retried with
// randomized exponential backoff, and each remote provider sits behind a
// circuit breaker.
//
// The only entry point consumed by the HTTP layer is Filter.FilterBatch,
// which fans out per-record and per-field checks concurrently under a
// semaphore bound and always returns a (possibly empty) slice, never an
// error.
package moderation
