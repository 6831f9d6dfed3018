// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

/*
service.go - Recommendation Service

Coordinates the two recommendation pipelines:

Music: moods are translated to genre search queries, a candidate pool
is fetched from Spotify, every candidate passes through the content
safety filter, and the final set is sampled from the survivors. The
filter always runs before sampling so a blocked candidate can never
crowd out a safe one.

Art: moods, art styles, and an optional subject each contribute a small
quota of Met artworks. Duplicates are removed, the set is padded with
random artworks toward the requested size, and the combined set passes
through the safety filter.
*/

package recommend

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/moodmuse/internal/config"
	"github.com/tomtom215/moodmuse/internal/logging"
	"github.com/tomtom215/moodmuse/internal/moderation"
	"github.com/tomtom215/moodmuse/internal/upstream/met"
	"github.com/tomtom215/moodmuse/internal/upstream/spotify"
)

// ErrNoCriteria is returned when a request carries neither recognized
// moods nor a free-text query.
var ErrNoCriteria = errors.New("no recognized moods or query provided")

const (
	// maxQueryLength is Spotify's documented search query limit.
	maxQueryLength = 250

	// maxQueryTerms caps an over-long genre query at its first terms.
	maxQueryTerms = 5

	// openGenreCount is how many random genres the wildcard mood mixes.
	openGenreCount = 5

	// musicPoolSize is how many candidates are fetched before
	// filtering and sampling.
	musicPoolSize = 50

	// quotas per art request category.
	artMoodQuota    = 3
	artStyleQuota   = 3
	artSubjectQuota = 1

	// surprise requests pick this many random moods and styles.
	surprisePickCount = 3
)

// openKinds are the kinds the wildcard mood chooses between.
var openKinds = []moderation.Kind{
	moderation.KindPlaylist,
	moderation.KindAlbum,
	moderation.KindArtist,
	moderation.KindTrack,
}

// Filter screens raw upstream records and returns only presentable
// items. Implemented by moderation.Filter.
type Filter interface {
	FilterBatch(ctx context.Context, raws []moderation.Raw, kind moderation.Kind) []moderation.Item
}

// Service builds moderated recommendations from the upstream catalogs.
// Safe for concurrent use.
type Service struct {
	music  spotify.Searcher
	art    met.Searcher
	filter Filter
	cfg    config.RecommendConfig

	randMu sync.Mutex
	rng    *rand.Rand
}

// New creates a recommendation service. Either catalog client may be
// nil when its upstream is disabled; the matching pipeline then returns
// ErrNoCriteria.
func New(music spotify.Searcher, art met.Searcher, filter Filter, cfg config.RecommendConfig) *Service {
	return &Service{
		music:  music,
		art:    art,
		filter: filter,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Music returns moderated music recommendations. The kind actually
// searched is returned alongside the items because the wildcard mood
// picks one at random.
func (s *Service) Music(ctx context.Context, moods []string, query string, kind moderation.Kind, limit int) ([]moderation.Item, moderation.Kind, error) {
	if s.music == nil {
		return nil, kind, errors.New("music recommendations are disabled")
	}
	limit = s.clampLimit(limit)

	if query == "" {
		if containsOpenMood(moods) {
			kind = openKinds[s.intn(len(openKinds))]
			query = s.openQuery()
		} else {
			query = buildGenreQuery(moods)
		}
	}
	if query == "" {
		return nil, kind, ErrNoCriteria
	}

	poolSize := musicPoolSize
	if poolSize < limit {
		poolSize = limit
	}

	raws, err := s.music.Search(ctx, query, kind, poolSize)
	if err != nil {
		return nil, kind, err
	}

	items := s.filter.FilterBatch(ctx, raws, kind)
	items = s.sample(items, limit)

	logging.Ctx(ctx).Debug().
		Str("query", query).
		Str("kind", string(kind)).
		Int("candidates", len(raws)).
		Int("results", len(items)).
		Msg("Music recommendations assembled")

	return items, kind, nil
}

// Art returns moderated artwork recommendations drawn from the
// requested moods, styles, and subject.
func (s *Service) Art(ctx context.Context, moods, styles []string, subject string, limit int) ([]moderation.Item, error) {
	if s.art == nil {
		return nil, errors.New("art recommendations are disabled")
	}
	limit = s.clampLimit(limit)

	seen := make(map[artworkKey]struct{})
	var raws []moderation.Raw

	raws = s.collectArtworks(ctx, raws, seen, artMoodKeywords, moods, artMoodQuota)
	raws = s.collectArtworks(ctx, raws, seen, artStyleKeywords, styles, artStyleQuota)
	if subject != "" {
		raws = s.collectArtworks(ctx, raws, seen, artSubjectKeywords, []string{subject}, artSubjectQuota)
	}

	raws = s.padArtworks(ctx, raws, seen, limit)

	items := s.filter.FilterBatch(ctx, raws, moderation.KindArtwork)
	if len(items) > limit {
		items = items[:limit]
	}

	logging.Ctx(ctx).Debug().
		Strs("moods", moods).
		Strs("styles", styles).
		Str("subject", subject).
		Int("candidates", len(raws)).
		Int("results", len(items)).
		Msg("Art recommendations assembled")

	return items, nil
}

// SurpriseArt returns artworks for randomly chosen moods, styles, and
// subject.
func (s *Service) SurpriseArt(ctx context.Context, limit int) ([]moderation.Item, error) {
	moods := s.pickRandom(keys(artMoodKeywords), surprisePickCount)
	styles := s.pickRandom(keys(artStyleKeywords), surprisePickCount)

	subjects := keys(artSubjectKeywords)
	subject := subjects[s.intn(len(subjects))]

	return s.Art(ctx, moods, styles, subject, limit)
}

// artworkKey identifies an artwork for deduplication. Object IDs are
// not enough: the collection carries near-identical records under
// different IDs.
type artworkKey struct {
	title  string
	artist string
	date   string
}

func keyFor(raw moderation.Raw) artworkKey {
	title, _ := raw["title"].(string)
	artist, _ := raw["artistDisplayName"].(string)
	date, _ := raw["objectDate"].(string)
	return artworkKey{title: title, artist: artist, date: date}
}

// collectArtworks fetches up to quota unseen artworks for the selected
// category values. Keyword order is shuffled so repeat requests vary.
// Lookup failures skip the keyword rather than failing the request.
func (s *Service) collectArtworks(ctx context.Context, raws []moderation.Raw, seen map[artworkKey]struct{}, table map[string][]string, selected []string, quota int) []moderation.Raw {
	added := 0
	for _, value := range selected {
		keywords := append([]string(nil), table[value]...)
		s.shuffleStrings(keywords)

		for _, keyword := range keywords {
			if added >= quota {
				return raws
			}
			found, err := s.art.SearchArtworks(ctx, keyword, quota-added)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("keyword", keyword).Msg("Artwork keyword lookup failed")
				continue
			}
			for _, raw := range found {
				key := keyFor(raw)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				raws = append(raws, raw)
				added++
				if added >= quota {
					break
				}
			}
		}
		if added >= quota {
			return raws
		}
	}
	return raws
}

// padArtworks tops the set up toward limit with random artworks. Gives
// up when a fetch yields nothing new.
func (s *Service) padArtworks(ctx context.Context, raws []moderation.Raw, seen map[artworkKey]struct{}, limit int) []moderation.Raw {
	for len(raws) < limit {
		found, err := s.art.SearchArtworks(ctx, "art", limit-len(raws))
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Random artwork padding failed")
			return raws
		}
		addedAny := false
		for _, raw := range found {
			key := keyFor(raw)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			raws = append(raws, raw)
			addedAny = true
			if len(raws) >= limit {
				break
			}
		}
		if !addedAny {
			return raws
		}
	}
	return raws
}

// buildGenreQuery joins the genres of every recognized mood into one
// "a OR b OR c" search query, trimmed to fit Spotify's query limit.
func buildGenreQuery(moods []string) string {
	seen := make(map[string]struct{})
	var terms []string
	for _, mood := range moods {
		for _, genre := range moodGenres[mood] {
			if _, dup := seen[genre]; dup {
				continue
			}
			seen[genre] = struct{}{}
			terms = append(terms, genre)
		}
	}
	if len(terms) == 0 {
		return ""
	}

	query := strings.Join(terms, " OR ")
	if len(query) > maxQueryLength && len(terms) > maxQueryTerms {
		query = strings.Join(terms[:maxQueryTerms], " OR ")
	}
	return query
}

// openQuery builds a query from random genres for the wildcard mood.
func (s *Service) openQuery() string {
	genres := s.pickRandom(allGenres, openGenreCount)
	return strings.Join(genres, " OR ")
}

func containsOpenMood(moods []string) bool {
	for _, m := range moods {
		if m == OpenMood {
			return true
		}
	}
	return false
}

func (s *Service) clampLimit(limit int) int {
	if limit < 1 {
		limit = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

// sample returns a uniform random subset of size limit, or all items
// when fewer survive filtering.
func (s *Service) sample(items []moderation.Item, limit int) []moderation.Item {
	if len(items) <= limit {
		return items
	}
	out := append([]moderation.Item(nil), items...)
	s.randMu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.randMu.Unlock()
	return out[:limit]
}

func (s *Service) pickRandom(pool []string, n int) []string {
	out := append([]string(nil), pool...)
	s.shuffleStrings(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (s *Service) shuffleStrings(values []string) {
	s.randMu.Lock()
	s.rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	s.randMu.Unlock()
}

func (s *Service) intn(n int) int {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rng.Intn(n)
}

func keys(table map[string][]string) []string {
	out := make([]string, 0, len(table))
	for k := range table {
		if k == "Open" {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
