// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/moodmuse/internal/logging"
	"github.com/tomtom215/moodmuse/internal/moderation"
	"github.com/tomtom215/moodmuse/internal/recommend"
)

// Recommender produces moderated recommendations. Implemented by
// recommend.Service.
type Recommender interface {
	Music(ctx context.Context, moods []string, query string, kind moderation.Kind, limit int) ([]moderation.Item, moderation.Kind, error)
	Art(ctx context.Context, moods, styles []string, subject string, limit int) ([]moderation.Item, error)
	SurpriseArt(ctx context.Context, limit int) ([]moderation.Item, error)
}

// Handler holds the HTTP handlers for all API endpoints.
type Handler struct {
	recommender Recommender
	validate    *validator.Validate
	startTime   time.Time

	musicEnabled bool
	artEnabled   bool
}

// NewHandler creates an API handler backed by the recommendation
// service.
func NewHandler(recommender Recommender, musicEnabled, artEnabled bool) *Handler {
	return &Handler{
		recommender:  recommender,
		validate:     validator.New(),
		startTime:    time.Now(),
		musicEnabled: musicEnabled,
		artEnabled:   artEnabled,
	}
}

// musicResponse is the payload of a music recommendation response.
type musicResponse struct {
	Kind  moderation.Kind   `json:"kind"`
	Items []moderation.Item `json:"items"`
}

// MusicRecommendations handles GET /api/v1/recommendations/music.
func (h *Handler) MusicRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if !h.musicEnabled {
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "music recommendations are not configured")
		return
	}

	req, err := parseMusicRequest(r, h.validate)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	kind, _ := moderation.ParseKind(req.Type)

	items, searchedKind, err := h.recommender.Music(r.Context(), req.Moods, req.Query, kind, req.Limit)
	if err != nil {
		if errors.Is(err, recommend.ErrNoCriteria) {
			rw.BadRequest(err.Error())
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Music recommendation failed")
		rw.UpstreamFailed("music catalog is unavailable")
		return
	}

	rw.SuccessWithMeta(musicResponse{Kind: searchedKind, Items: items}, &APIMeta{Count: len(items)})
}

// ArtRecommendations handles GET /api/v1/recommendations/art.
func (h *Handler) ArtRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if !h.artEnabled {
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "art recommendations are not configured")
		return
	}

	req, err := parseArtRequest(r, h.validate)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if len(req.Moods) == 0 && len(req.Styles) == 0 && req.Subject == "" {
		rw.BadRequest("at least one of moods, styles, or subject is required")
		return
	}

	items, err := h.recommender.Art(r.Context(), req.Moods, req.Styles, req.Subject, req.Limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Art recommendation failed")
		rw.UpstreamFailed("art catalog is unavailable")
		return
	}

	rw.SuccessWithMeta(items, &APIMeta{Count: len(items)})
}

// SurpriseArt handles GET /api/v1/recommendations/art/surprise. The
// service picks random moods, styles, and a subject.
func (h *Handler) SurpriseArt(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if !h.artEnabled {
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "art recommendations are not configured")
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	items, err := h.recommender.SurpriseArt(r.Context(), limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Surprise art recommendation failed")
		rw.UpstreamFailed("art catalog is unavailable")
		return
	}

	rw.SuccessWithMeta(items, &APIMeta{Count: len(items)})
}

// catalogResponse lists the selectable moods, styles, and subjects for
// clients building pickers.
type catalogResponse struct {
	Moods    []string `json:"moods"`
	Styles   []string `json:"styles"`
	Subjects []string `json:"subjects"`
	OpenMood string   `json:"open_mood"`
}

// Catalog handles GET /api/v1/catalog.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(catalogResponse{
		Moods:    recommend.Moods(),
		Styles:   recommend.ArtStyles(),
		Subjects: recommend.ArtSubjects(),
		OpenMood: recommend.OpenMood,
	})
}

// healthResponse is the payload of the health endpoint.
type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	MusicEnabled  bool   `json:"music_enabled"`
	ArtEnabled    bool   `json:"art_enabled"`
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		MusicEnabled:  h.musicEnabled,
		ArtEnabled:    h.artEnabled,
	})
}
