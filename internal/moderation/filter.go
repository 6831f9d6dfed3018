// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

/*
filter.go - Moderation Pipeline Orchestrator

FilterBatch is the single entry point the recommendation layer calls.
It extracts typed records from raw upstream payloads, runs the per-item
safety checks concurrently under a bounded worker pool, and returns only
the items whose name and description both cleared moderation. Image
resolution never blocks an item; it only decides which URL is shown.
*/

package moderation

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/moodmuse/internal/logging"
	"github.com/tomtom215/moodmuse/internal/metrics"
)

// DefaultMaxConcurrent bounds the number of records checked in parallel.
const DefaultMaxConcurrent = 8

// Filter runs the full moderation pipeline over batches of upstream
// records.
type Filter struct {
	pre           *PreFilter
	text          TextChecker
	images        ImageResolver
	maxConcurrent int
}

// NewFilter creates the pipeline orchestrator. maxConcurrent <= 0 selects
// the default worker bound.
func NewFilter(pre *PreFilter, text TextChecker, images ImageResolver, maxConcurrent int) *Filter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Filter{
		pre:           pre,
		text:          text,
		images:        images,
		maxConcurrent: maxConcurrent,
	}
}

// FilterBatch moderates a batch of raw upstream records of one kind and
// returns the retained items in their original order. Records without a
// name are dropped, records of an unsupported kind yield an empty batch,
// and an item is retained only when both its name and its description
// clear the text pipeline.
func (f *Filter) FilterBatch(ctx context.Context, records []Raw, kind Kind) []Item {
	start := time.Now()
	log := logging.Ctx(ctx)

	if _, ok := ParseKind(string(kind)); !ok {
		log.Warn().Str("kind", string(kind)).Msg("Skipping batch of unsupported kind")
		metrics.FilterItems.WithLabelValues(string(kind), "skipped_kind").Add(float64(len(records)))
		return []Item{}
	}

	type slot struct {
		item Item
		keep bool
	}
	slots := make([]slot, len(records))

	sem := make(chan struct{}, f.maxConcurrent)
	var wg sync.WaitGroup

	for i, raw := range records {
		if raw == nil {
			metrics.FilterItems.WithLabelValues(string(kind), "dropped_invalid").Inc()
			continue
		}

		rec, err := ExtractRecord(raw, kind)
		if err != nil {
			log.Debug().Err(err).Str("kind", string(kind)).Msg("Dropping malformed record")
			metrics.FilterItems.WithLabelValues(string(kind), "dropped_invalid").Inc()
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, rec Record) {
			defer wg.Done()
			defer func() { <-sem }()

			item, keep := f.checkRecord(ctx, rec)
			slots[i] = slot{item: item, keep: keep}
		}(i, rec)
	}

	wg.Wait()

	items := make([]Item, 0, len(records))
	for _, s := range slots {
		if s.keep {
			items = append(items, s.item)
			metrics.FilterItems.WithLabelValues(string(kind), "retained").Inc()
		}
	}

	blocked := 0
	for _, s := range slots {
		if !s.keep && s.item.Name != "" {
			blocked++
		}
	}
	metrics.FilterItems.WithLabelValues(string(kind), "blocked").Add(float64(blocked))
	metrics.FilterBatchDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	log.Debug().
		Str("kind", string(kind)).
		Int("received", len(records)).
		Int("retained", len(items)).
		Dur("elapsed", time.Since(start)).
		Msg("Filtered batch")

	return items
}

// checkRecord runs the name check, the description check, and the image
// resolution for one record concurrently. The text verdicts gate the item;
// the image verdict only substitutes the display URL.
func (f *Filter) checkRecord(ctx context.Context, rec Record) (Item, bool) {
	var (
		nameSafe bool
		descSafe bool
		display  string
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		nameSafe = f.textSafe(ctx, rec.Name)
	}()
	go func() {
		defer wg.Done()
		descSafe = f.textSafe(ctx, rec.Description)
	}()
	go func() {
		defer wg.Done()
		display = f.images.Resolve(ctx, rec.ImageURL)
	}()
	wg.Wait()

	if !nameSafe || !descSafe {
		logging.Ctx(ctx).Debug().
			Str("kind", string(rec.Kind)).
			Bool("name_safe", nameSafe).
			Bool("description_safe", descSafe).
			Msg("Blocked item")
		return Item{Name: rec.Name}, false
	}

	return Item{
		Name:        rec.Name,
		URL:         rec.URL,
		Image:       display,
		Type:        rec.Kind,
		Creator:     rec.Creator,
		TrackCount:  rec.TrackCount,
		Description: rec.Description,
		Popularity:  rec.Popularity,
	}, true
}

// textSafe layers the local prefilter over the remote checker. A decisive
// local verdict never reaches the remote service.
func (f *Filter) textSafe(ctx context.Context, text string) bool {
	switch f.pre.Classify(text) {
	case VerdictSafe:
		return true
	case VerdictUnsafe:
		return false
	default:
		return f.text.Check(ctx, text)
	}
}
