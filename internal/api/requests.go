// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// musicRequest carries the query parameters of a music recommendation
// request.
type musicRequest struct {
	Moods []string `validate:"omitempty,max=5,dive,min=1,max=64"`
	Query string   `validate:"omitempty,max=250"`
	Type  string   `validate:"omitempty,oneof=playlist album track artist"`
	Limit int      `validate:"omitempty,min=1,max=50"`
}

// artRequest carries the query parameters of an art recommendation
// request.
type artRequest struct {
	Moods   []string `validate:"omitempty,max=5,dive,min=1,max=64"`
	Styles  []string `validate:"omitempty,max=5,dive,min=1,max=64"`
	Subject string   `validate:"omitempty,max=64"`
	Limit   int      `validate:"omitempty,min=1,max=50"`
}

// parseMusicRequest extracts and validates a music request. The type
// parameter defaults to playlist.
func parseMusicRequest(r *http.Request, v *validator.Validate) (musicRequest, error) {
	q := r.URL.Query()

	req := musicRequest{
		Moods: splitList(q.Get("moods")),
		Query: strings.TrimSpace(q.Get("query")),
		Type:  strings.ToLower(strings.TrimSpace(q.Get("type"))),
	}
	if req.Type == "" {
		req.Type = "playlist"
	}

	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		return req, err
	}
	req.Limit = limit

	if err := v.Struct(req); err != nil {
		return req, validationError(err)
	}
	return req, nil
}

// parseArtRequest extracts and validates an art request.
func parseArtRequest(r *http.Request, v *validator.Validate) (artRequest, error) {
	q := r.URL.Query()

	req := artRequest{
		Moods:   splitList(q.Get("moods")),
		Styles:  splitList(q.Get("styles")),
		Subject: strings.TrimSpace(q.Get("subject")),
	}

	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		return req, err
	}
	req.Limit = limit

	if err := v.Struct(req); err != nil {
		return req, validationError(err)
	}
	return req, nil
}

// splitList parses a comma-separated query parameter into trimmed,
// non-empty values.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit must be an integer")
	}
	return limit, nil
}

// validationError converts validator failures into a client-facing
// error listing the offending fields.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return fmt.Errorf("invalid parameters: %s", strings.Join(fields, ", "))
}
