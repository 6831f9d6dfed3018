// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/tomtom215/moodmuse/internal/config"
	"github.com/tomtom215/moodmuse/internal/moderation"
	"github.com/tomtom215/moodmuse/internal/upstream/met"
	"github.com/tomtom215/moodmuse/internal/upstream/spotify"
)

// fakeMusic records the last search and serves a canned candidate pool.
type fakeMusic struct {
	lastQuery string
	lastKind  moderation.Kind
	lastLimit int
	raws      []moderation.Raw
	err       error
}

func (f *fakeMusic) Search(_ context.Context, query string, kind moderation.Kind, limit int) ([]moderation.Raw, error) {
	f.lastQuery = query
	f.lastKind = kind
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.raws, nil
}

// fakeArt generates globally unique artworks per call unless fixed is
// set, in which case every call returns the same records.
type fakeArt struct {
	keywords   []string
	perKeyword int
	counter    int
	fail       map[string]bool
	fixed      []moderation.Raw
}

func (f *fakeArt) SearchArtworks(_ context.Context, keyword string, limit int) ([]moderation.Raw, error) {
	f.keywords = append(f.keywords, keyword)
	if f.fail[keyword] {
		return nil, errors.New("met unavailable")
	}
	if f.fixed != nil {
		return f.fixed, nil
	}
	n := f.perKeyword
	if n > limit {
		n = limit
	}
	out := make([]moderation.Raw, 0, n)
	for i := 0; i < n; i++ {
		f.counter++
		out = append(out, moderation.Raw{
			"title":             fmt.Sprintf("Artwork %d", f.counter),
			"artistDisplayName": "Anonymous",
			"objectDate":        "1900",
			"primaryImageSmall": fmt.Sprintf("https://images.metmuseum.org/%d.jpg", f.counter),
			"isPublicDomain":    true,
		})
	}
	return out, nil
}

// fakeFilter passes records through, dropping any whose name appears in
// blocked.
type fakeFilter struct {
	blocked map[string]bool
	kinds   []moderation.Kind
}

func (f *fakeFilter) FilterBatch(_ context.Context, raws []moderation.Raw, kind moderation.Kind) []moderation.Item {
	f.kinds = append(f.kinds, kind)
	items := make([]moderation.Item, 0, len(raws))
	for _, raw := range raws {
		name, _ := raw["name"].(string)
		if name == "" {
			name, _ = raw["title"].(string)
		}
		if f.blocked[name] {
			continue
		}
		items = append(items, moderation.Item{Name: name, Type: kind})
	}
	return items
}

func testConfig() config.RecommendConfig {
	return config.RecommendConfig{DefaultLimit: 9, MaxLimit: 50}
}

func newTestService(music *fakeMusic, art *fakeArt, filter *fakeFilter) *Service {
	var m spotify.Searcher
	if music != nil {
		m = music
	}
	var a met.Searcher
	if art != nil {
		a = art
	}
	s := New(m, a, filter, testConfig())
	s.rng = rand.New(rand.NewSource(1))
	return s
}

func trackRaws(names ...string) []moderation.Raw {
	out := make([]moderation.Raw, 0, len(names))
	for _, n := range names {
		out = append(out, moderation.Raw{"name": n})
	}
	return out
}

func TestMusicBuildsGenreQueryFromMood(t *testing.T) {
	music := &fakeMusic{raws: trackRaws("Deep Calm", "Still Waters")}
	s := newTestService(music, nil, &fakeFilter{})

	items, kind, err := s.Music(context.Background(), []string{"Calm"}, "", moderation.KindPlaylist, 9)
	if err != nil {
		t.Fatalf("Music failed: %v", err)
	}
	if kind != moderation.KindPlaylist {
		t.Errorf("expected kind playlist, got %q", kind)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if !strings.Contains(music.lastQuery, "Ambient") || !strings.Contains(music.lastQuery, " OR ") {
		t.Errorf("expected genre query for Calm, got %q", music.lastQuery)
	}
}

func TestMusicDeduplicatesSharedGenres(t *testing.T) {
	music := &fakeMusic{raws: trackRaws("A")}
	s := newTestService(music, nil, &fakeFilter{})

	// Creative and Romantic both carry Jazz.
	if _, _, err := s.Music(context.Background(), []string{"Creative", "Romantic"}, "", moderation.KindAlbum, 9); err != nil {
		t.Fatalf("Music failed: %v", err)
	}
	if strings.Count(music.lastQuery, "Jazz OR") > 1 {
		t.Errorf("expected Jazz to appear once, got query %q", music.lastQuery)
	}
}

func TestMusicTrimsOverlongQuery(t *testing.T) {
	music := &fakeMusic{raws: trackRaws("A")}
	s := newTestService(music, nil, &fakeFilter{})

	if _, _, err := s.Music(context.Background(), []string{"Calm", "Energetic", "Adventurous"}, "", moderation.KindPlaylist, 9); err != nil {
		t.Fatalf("Music failed: %v", err)
	}
	want := "Ambient OR New Age OR Chillout OR Bossa Nova OR Soft Piano"
	if music.lastQuery != want {
		t.Errorf("expected trimmed query %q, got %q", want, music.lastQuery)
	}
	if len(music.lastQuery) > maxQueryLength {
		t.Errorf("query exceeds %d chars: %d", maxQueryLength, len(music.lastQuery))
	}
}

func TestMusicFreeTextQueryPassesThrough(t *testing.T) {
	music := &fakeMusic{raws: trackRaws("A")}
	s := newTestService(music, nil, &fakeFilter{})

	if _, _, err := s.Music(context.Background(), []string{"Calm"}, "rainy window jazz", moderation.KindTrack, 9); err != nil {
		t.Fatalf("Music failed: %v", err)
	}
	if music.lastQuery != "rainy window jazz" {
		t.Errorf("expected free-text query to pass through, got %q", music.lastQuery)
	}
}

func TestMusicNoCriteria(t *testing.T) {
	s := newTestService(&fakeMusic{}, nil, &fakeFilter{})

	_, _, err := s.Music(context.Background(), []string{"Bogus Mood"}, "", moderation.KindPlaylist, 9)
	if !errors.Is(err, ErrNoCriteria) {
		t.Fatalf("expected ErrNoCriteria, got %v", err)
	}
}

func TestMusicOpenMoodPicksKindAndGenres(t *testing.T) {
	music := &fakeMusic{raws: trackRaws("A")}
	s := newTestService(music, nil, &fakeFilter{})

	_, kind, err := s.Music(context.Background(), []string{OpenMood}, "", moderation.KindPlaylist, 9)
	if err != nil {
		t.Fatalf("Music failed: %v", err)
	}
	if kind != music.lastKind {
		t.Errorf("returned kind %q does not match searched kind %q", kind, music.lastKind)
	}
	found := false
	for _, k := range openKinds {
		if kind == k {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a searchable kind, got %q", kind)
	}
	if got := strings.Count(music.lastQuery, " OR ") + 1; got != openGenreCount {
		t.Errorf("expected %d genres in open query, got %d (%q)", openGenreCount, got, music.lastQuery)
	}
}

func TestMusicFiltersBeforeSampling(t *testing.T) {
	names := make([]string, 0, 20)
	blocked := make(map[string]bool)
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("Mix %d", i)
		names = append(names, name)
		if i%2 == 0 {
			blocked[name] = true
		}
	}
	music := &fakeMusic{raws: trackRaws(names...)}
	s := newTestService(music, nil, &fakeFilter{blocked: blocked})

	items, _, err := s.Music(context.Background(), []string{"Calm"}, "", moderation.KindPlaylist, 5)
	if err != nil {
		t.Fatalf("Music failed: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
	for _, item := range items {
		if blocked[item.Name] {
			t.Errorf("blocked item %q reached the results", item.Name)
		}
	}
	if music.lastLimit < 20 {
		t.Errorf("expected candidate pool larger than limit, searched %d", music.lastLimit)
	}
}

func TestMusicLimitClamping(t *testing.T) {
	music := &fakeMusic{raws: trackRaws("A")}
	s := newTestService(music, nil, &fakeFilter{})
	s.cfg.MaxLimit = 10

	if _, _, err := s.Music(context.Background(), []string{"Calm"}, "", moderation.KindPlaylist, 500); err != nil {
		t.Fatalf("Music failed: %v", err)
	}
	if music.lastLimit != musicPoolSize {
		t.Errorf("expected pool of %d after clamping, searched %d", musicPoolSize, music.lastLimit)
	}
}

func TestMusicUpstreamError(t *testing.T) {
	music := &fakeMusic{err: errors.New("spotify down")}
	s := newTestService(music, nil, &fakeFilter{})

	if _, _, err := s.Music(context.Background(), []string{"Calm"}, "", moderation.KindPlaylist, 9); err == nil {
		t.Fatal("expected upstream error to propagate")
	}
}

func TestArtCombinesCategoriesAndPads(t *testing.T) {
	art := &fakeArt{perKeyword: 2}
	filter := &fakeFilter{}
	s := newTestService(nil, art, filter)

	items, err := s.Art(context.Background(), []string{"Calm"}, []string{"Baroque"}, "Human Stories", 9)
	if err != nil {
		t.Fatalf("Art failed: %v", err)
	}
	if len(items) != 9 {
		t.Fatalf("expected 9 artworks, got %d", len(items))
	}
	padded := false
	for _, kw := range art.keywords {
		if kw == "art" {
			padded = true
		}
	}
	if !padded {
		t.Error("expected random padding searches")
	}
	if len(filter.kinds) != 1 || filter.kinds[0] != moderation.KindArtwork {
		t.Errorf("expected one artwork filter batch, got %v", filter.kinds)
	}
}

func TestArtDeduplicatesRecords(t *testing.T) {
	art := &fakeArt{fixed: []moderation.Raw{{
		"title":             "Wheat Field with Cypresses",
		"artistDisplayName": "Vincent van Gogh",
		"objectDate":        "1889",
	}}}
	s := newTestService(nil, art, &fakeFilter{})

	items, err := s.Art(context.Background(), []string{"Calm", "Happy"}, nil, "", 9)
	if err != nil {
		t.Fatalf("Art failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 unique artwork, got %d", len(items))
	}
}

func TestArtToleratesKeywordFailures(t *testing.T) {
	art := &fakeArt{
		perKeyword: 1,
		fail:       map[string]bool{"serene": true, "peaceful": true, "tranquil": true},
	}
	s := newTestService(nil, art, &fakeFilter{})

	items, err := s.Art(context.Background(), []string{"Calm"}, nil, "", 3)
	if err != nil {
		t.Fatalf("Art failed: %v", err)
	}
	// Every Calm keyword fails; padding still fills the set.
	if len(items) != 3 {
		t.Fatalf("expected 3 artworks from padding, got %d", len(items))
	}
}

func TestArtRespectsCategoryQuotas(t *testing.T) {
	art := &fakeArt{perKeyword: 10}
	s := newTestService(nil, art, &fakeFilter{})

	items, err := s.Art(context.Background(), []string{"Calm", "Dark"}, []string{"Cubism", "Abstract"}, "Human Stories", 20)
	if err != nil {
		t.Fatalf("Art failed: %v", err)
	}
	// Quotas cap category contributions at 3+3+1; padding fills the rest.
	if len(items) != 20 {
		t.Fatalf("expected 20 artworks, got %d", len(items))
	}
}

func TestSurpriseArt(t *testing.T) {
	art := &fakeArt{perKeyword: 3}
	s := newTestService(nil, art, &fakeFilter{})

	items, err := s.SurpriseArt(context.Background(), 9)
	if err != nil {
		t.Fatalf("SurpriseArt failed: %v", err)
	}
	if len(items) != 9 {
		t.Fatalf("expected 9 artworks, got %d", len(items))
	}
}

func TestArtDisabled(t *testing.T) {
	s := newTestService(&fakeMusic{}, nil, &fakeFilter{})
	if _, err := s.Art(context.Background(), []string{"Calm"}, nil, "", 9); err == nil {
		t.Fatal("expected error when art catalog is disabled")
	}
}

func TestMusicDisabled(t *testing.T) {
	s := newTestService(nil, &fakeArt{}, &fakeFilter{})
	s.music = nil
	if _, _, err := s.Music(context.Background(), []string{"Calm"}, "", moderation.KindPlaylist, 9); err == nil {
		t.Fatal("expected error when music catalog is disabled")
	}
}

func TestCatalogListsAreSortedAndStable(t *testing.T) {
	lists := map[string][]string{
		"moods":    Moods(),
		"styles":   ArtStyles(),
		"subjects": ArtSubjects(),
	}
	for name, list := range lists {
		if len(list) == 0 {
			t.Errorf("%s is empty", name)
		}
		if !sort.StringsAreSorted(list) {
			t.Errorf("%s not in alphabetical order: %v", name, list)
		}
		for _, entry := range list {
			if entry == "Open" || entry == OpenMood {
				t.Errorf("%s includes the wildcard entry %q", name, entry)
			}
		}
	}
	if got := len(Moods()); got != len(moodGenres) {
		t.Errorf("Moods() returned %d entries, want %d", got, len(moodGenres))
	}
}
