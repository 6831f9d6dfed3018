// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package moderation

import (
	"html"
	"strings"

	"github.com/tomtom215/moodmuse/internal/metrics"
)

// PreFilter is the local, deterministic first pass of text moderation.
//
// Remote moderation calls cost latency and quota; the pre-filter disposes
// of the obvious majority of cases for free, and guarantees known-good
// content (allow-listed genres, artists) is never blocked by an
// overzealous remote model. It degrades gracefully: anything it cannot
// decide is handed to the remote check as Undecided.
type PreFilter struct {
	allow *termMatcher
	deny  *termMatcher
}

// NewPreFilter builds a pre-filter over the package wordlists.
func NewPreFilter() *PreFilter {
	allow := make([]string, 0, len(allowTerms)+len(allowArtists))
	allow = append(allow, allowTerms...)
	allow = append(allow, allowArtists...)

	deny := make([]string, 0, len(denyTerms)+len(denyPhrases))
	deny = append(deny, denyTerms...)
	deny = append(deny, denyPhrases...)

	return NewPreFilterWithLists(allow, deny)
}

// NewPreFilterWithLists builds a pre-filter over explicit lists.
// Exposed for tests and for deployments that ship their own lists.
func NewPreFilterWithLists(allow, deny []string) *PreFilter {
	return &PreFilter{
		allow: newTermMatcher(allow),
		deny:  newTermMatcher(deny),
	}
}

// Normalize prepares text for matching and for use as a cache key:
// HTML entities unescaped, surrounding whitespace trimmed, lowercased.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(html.UnescapeString(text)))
}

// Classify returns the pre-filter verdict for a text.
//
//   - Empty text is Safe: there is nothing to display, hence nothing to block.
//   - Any allow-listed term or artist present forces Safe. The allow-list
//     always wins, even when a deny-listed substring is also present.
//   - Otherwise any deny-listed term or phrase forces Unsafe.
//   - Otherwise Undecided: defer to the remote moderation API.
func (p *PreFilter) Classify(text string) Verdict {
	normalized := Normalize(text)
	if normalized == "" {
		metrics.ModerationChecks.WithLabelValues("prefilter", "safe").Inc()
		return VerdictSafe
	}

	verdict := p.classifyNormalized(normalized)
	metrics.ModerationChecks.WithLabelValues("prefilter", verdict.String()).Inc()
	return verdict
}

func (p *PreFilter) classifyNormalized(normalized string) Verdict {
	if p.allow.Contains(normalized) {
		return VerdictSafe
	}
	if p.deny.Contains(normalized) {
		return VerdictUnsafe
	}
	return VerdictUndecided
}
