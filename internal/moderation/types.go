// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package moderation

import (
	"errors"
	"html"
	"strings"
)

// Verdict is the tri-state result of a text classification.
type Verdict int

const (
	// VerdictUndecided means the local pre-filter cannot decide and the
	// remote moderation API must be consulted. Never cached.
	VerdictUndecided Verdict = iota

	// VerdictSafe means the text may be displayed.
	VerdictSafe

	// VerdictUnsafe means the record carrying this text must be dropped.
	VerdictUnsafe
)

// String returns the verdict name for logging and metrics labels.
func (v Verdict) String() string {
	switch v {
	case VerdictSafe:
		return "safe"
	case VerdictUnsafe:
		return "unsafe"
	default:
		return "undecided"
	}
}

// Kind is the category tag determining which fields are extracted from a
// raw third-party record.
type Kind string

const (
	KindPlaylist Kind = "playlist"
	KindAlbum    Kind = "album"
	KindTrack    Kind = "track"
	KindArtist   Kind = "artist"
	KindArtwork  Kind = "artwork"
)

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPlaylist:
		return KindPlaylist, true
	case KindAlbum:
		return KindAlbum, true
	case KindTrack:
		return KindTrack, true
	case KindArtist:
		return KindArtist, true
	case KindArtwork:
		return KindArtwork, true
	default:
		return "", false
	}
}

// Raw is an untyped record as returned by an upstream API.
type Raw = map[string]any

// Record is the typed extraction of the display-relevant fields of a Raw
// for one Kind. Nothing downstream of extraction touches the raw map.
type Record struct {
	Kind        Kind
	Name        string
	Description string
	ImageURL    string
	URL         string
	Creator     string
	TrackCount  int
	Popularity  int
}

// Item is a record that passed moderation, ready for display.
// Image is always a concrete displayable URL: the original if it passed
// both image classifiers, the censored placeholder otherwise.
type Item struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	Type        Kind   `json:"type"`
	Creator     string `json:"creator,omitempty"`
	TrackCount  int    `json:"track_count,omitempty"`
	Description string `json:"description,omitempty"`
	Popularity  int    `json:"popularity,omitempty"`
}

// Extraction errors. Both cause the record to be skipped, never the batch.
var (
	ErrMissingName     = errors.New("record has no name")
	ErrUnsupportedKind = errors.New("unsupported record kind")
)

// ExtractRecord maps a raw upstream record to a typed Record for the given
// kind. Records without a name are invalid and rejected here, before any
// moderation work is spent on them.
func ExtractRecord(raw Raw, kind Kind) (Record, error) {
	name := rawString(raw, "name")
	if kind == KindArtwork {
		name = rawString(raw, "title")
	}
	if strings.TrimSpace(name) == "" {
		return Record{}, ErrMissingName
	}

	rec := Record{
		Kind:       kind,
		Name:       name,
		Popularity: rawInt(raw, "popularity"),
	}

	switch kind {
	case KindPlaylist:
		rec.Creator = nestedString(raw, "owner", "display_name")
		rec.Description = html.UnescapeString(rawString(raw, "description"))
		rec.TrackCount = nestedInt(raw, "tracks", "total")
		rec.URL = nestedString(raw, "external_urls", "spotify")
		rec.ImageURL = firstImageURL(raw)

	case KindAlbum:
		rec.Creator = joinArtistNames(raw)
		rec.Description = rawString(raw, "release_date")
		rec.TrackCount = rawInt(raw, "total_tracks")
		rec.URL = nestedString(raw, "external_urls", "spotify")
		rec.ImageURL = firstImageURL(raw)

	case KindTrack:
		rec.Creator = joinArtistNames(raw)
		rec.Description = nestedString(raw, "album", "name")
		rec.URL = nestedString(raw, "external_urls", "spotify")
		// Track art lives on the album object.
		if album, ok := raw["album"].(map[string]any); ok {
			rec.ImageURL = firstImageURL(album)
		}

	case KindArtist:
		rec.Description = joinStrings(raw, "genres")
		rec.URL = nestedString(raw, "external_urls", "spotify")
		rec.ImageURL = firstImageURL(raw)

	case KindArtwork:
		rec.Creator = rawString(raw, "artistDisplayName")
		rec.Description = rawString(raw, "objectDate")
		rec.URL = rawString(raw, "objectURL")
		rec.ImageURL = rawString(raw, "primaryImageSmall")

	default:
		return Record{}, ErrUnsupportedKind
	}

	return rec, nil
}

// rawString returns raw[key] as a string, or "" when absent or not a string.
func rawString(raw Raw, key string) string {
	s, _ := raw[key].(string)
	return s
}

// rawInt returns raw[key] as an int. Upstream JSON numbers decode as
// float64, so both are accepted.
func rawInt(raw Raw, key string) int {
	switch v := raw[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func nestedString(raw Raw, outer, inner string) string {
	m, ok := raw[outer].(map[string]any)
	if !ok {
		return ""
	}
	return rawString(m, inner)
}

func nestedInt(raw Raw, outer, inner string) int {
	m, ok := raw[outer].(map[string]any)
	if !ok {
		return 0
	}
	return rawInt(m, inner)
}

// firstImageURL returns the URL of the first entry of the record's images
// array, or "" when the record carries no image.
func firstImageURL(raw Raw) string {
	images, ok := raw["images"].([]any)
	if !ok || len(images) == 0 {
		return ""
	}
	img, ok := images[0].(map[string]any)
	if !ok {
		return ""
	}
	return rawString(img, "url")
}

// joinArtistNames joins the names of the record's artists array.
func joinArtistNames(raw Raw) string {
	artists, ok := raw["artists"].([]any)
	if !ok {
		return ""
	}
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if m, ok := a.(map[string]any); ok {
			if name := rawString(m, "name"); name != "" {
				names = append(names, name)
			}
		}
	}
	return strings.Join(names, ", ")
}

// joinStrings joins a raw string array field ("genres").
func joinStrings(raw Raw, key string) string {
	values, ok := raw[key].([]any)
	if !ok {
		return ""
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}
