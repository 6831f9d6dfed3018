// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package met

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moodmuse/internal/config"
	"github.com/tomtom215/moodmuse/internal/moderation"
)

// fakeMet serves the two-phase collection API from an in-memory object
// table.
type fakeMet struct {
	srv         *httptest.Server
	searchCalls atomic.Int64
	objectCalls atomic.Int64

	objectIDs []int
	objects   map[int]map[string]any
	failIDs   map[int]bool
}

func newFakeMet(t *testing.T) *fakeMet {
	t.Helper()
	f := &fakeMet{
		objects: make(map[int]map[string]any),
		failIDs: make(map[int]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		f.searchCalls.Add(1)
		if r.URL.Query().Get("hasImages") != "true" {
			t.Errorf("search missing hasImages=true, got query %q", r.URL.RawQuery)
		}
		resp := map[string]any{"total": len(f.objectIDs), "objectIDs": f.objectIDs}
		if f.objectIDs == nil {
			resp["objectIDs"] = nil
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/objects/", func(w http.ResponseWriter, r *http.Request) {
		f.objectCalls.Add(1)
		idStr := strings.TrimPrefix(r.URL.Path, "/objects/")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			t.Errorf("bad object path %q", r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if f.failIDs[id] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		obj, ok := f.objects[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(obj)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeMet) addObject(id int, publicDomain bool, image string) {
	f.objectIDs = append(f.objectIDs, id)
	f.objects[id] = map[string]any{
		"objectID":          id,
		"title":             fmt.Sprintf("Artwork %d", id),
		"artistDisplayName": "Vincent van Gogh",
		"objectDate":        "1889",
		"isPublicDomain":    publicDomain,
		"primaryImageSmall": image,
		"objectURL":         fmt.Sprintf("https://www.metmuseum.org/art/collection/search/%d", id),
	}
}

func (f *fakeMet) client() *Client {
	c := New(config.MetConfig{
		Enabled:    true,
		BaseURL:    f.srv.URL,
		Timeout:    5 * time.Second,
		MaxObjects: 20,
	}, f.srv.Client())
	c.retry = moderation.RetryConfig{Attempts: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	// Identity shuffle keeps candidate order deterministic.
	c.shuffle = func(n int, swap func(i, j int)) {}
	return c
}

func TestSearchArtworksReturnsDisplayableObjects(t *testing.T) {
	f := newFakeMet(t)
	f.addObject(101, true, "https://images.metmuseum.org/101-small.jpg")
	f.addObject(102, true, "https://images.metmuseum.org/102-small.jpg")
	f.addObject(103, true, "https://images.metmuseum.org/103-small.jpg")

	got, err := f.client().SearchArtworks(context.Background(), "sunflowers", 9)
	if err != nil {
		t.Fatalf("SearchArtworks failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 artworks, got %d", len(got))
	}
	if title, _ := got[0]["title"].(string); title != "Artwork 101" {
		t.Errorf("expected first artwork title %q, got %q", "Artwork 101", title)
	}
	if f.searchCalls.Load() != 1 {
		t.Errorf("expected 1 search call, got %d", f.searchCalls.Load())
	}
}

func TestSearchArtworksSkipsNonPublicDomain(t *testing.T) {
	f := newFakeMet(t)
	f.addObject(201, false, "https://images.metmuseum.org/201-small.jpg")
	f.addObject(202, true, "https://images.metmuseum.org/202-small.jpg")

	got, err := f.client().SearchArtworks(context.Background(), "portrait", 9)
	if err != nil {
		t.Fatalf("SearchArtworks failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 artwork, got %d", len(got))
	}
	if id, _ := got[0]["objectID"].(float64); int(id) != 202 {
		t.Errorf("expected object 202, got %v", got[0]["objectID"])
	}
}

func TestSearchArtworksSkipsMissingImage(t *testing.T) {
	f := newFakeMet(t)
	f.addObject(301, true, "")
	f.addObject(302, true, "https://images.metmuseum.org/302-small.jpg")

	got, err := f.client().SearchArtworks(context.Background(), "landscape", 9)
	if err != nil {
		t.Fatalf("SearchArtworks failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 artwork, got %d", len(got))
	}
}

func TestSearchArtworksHonorsLimit(t *testing.T) {
	f := newFakeMet(t)
	for i := 0; i < 8; i++ {
		f.addObject(400+i, true, fmt.Sprintf("https://images.metmuseum.org/%d-small.jpg", 400+i))
	}

	got, err := f.client().SearchArtworks(context.Background(), "garden", 3)
	if err != nil {
		t.Fatalf("SearchArtworks failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 artworks, got %d", len(got))
	}
}

func TestSearchArtworksCapsCandidatesAtMaxObjects(t *testing.T) {
	f := newFakeMet(t)
	for i := 0; i < 40; i++ {
		f.addObject(500+i, true, fmt.Sprintf("https://images.metmuseum.org/%d-small.jpg", 500+i))
	}

	client := f.client()
	if _, err := client.SearchArtworks(context.Background(), "flowers", 9); err != nil {
		t.Fatalf("SearchArtworks failed: %v", err)
	}
	if calls := f.objectCalls.Load(); calls > int64(client.cfg.MaxObjects) {
		t.Errorf("expected at most %d object fetches, got %d", client.cfg.MaxObjects, calls)
	}
}

func TestSearchArtworksEmptyResults(t *testing.T) {
	f := newFakeMet(t)

	got, err := f.client().SearchArtworks(context.Background(), "nothing", 9)
	if err != nil {
		t.Fatalf("SearchArtworks failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no artworks, got %d", len(got))
	}
	if f.objectCalls.Load() != 0 {
		t.Errorf("expected no object fetches, got %d", f.objectCalls.Load())
	}
}

func TestSearchArtworksToleratesObjectFailures(t *testing.T) {
	f := newFakeMet(t)
	f.addObject(601, true, "https://images.metmuseum.org/601-small.jpg")
	f.addObject(602, true, "https://images.metmuseum.org/602-small.jpg")
	f.failIDs[601] = true

	got, err := f.client().SearchArtworks(context.Background(), "myth", 9)
	if err != nil {
		t.Fatalf("SearchArtworks failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 artwork after failure, got %d", len(got))
	}
	if id, _ := got[0]["objectID"].(float64); int(id) != 602 {
		t.Errorf("expected object 602, got %v", got[0]["objectID"])
	}
}

func TestSearchArtworksSearchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(config.MetConfig{BaseURL: srv.URL, Timeout: 5 * time.Second, MaxObjects: 20}, srv.Client())
	c.retry = moderation.RetryConfig{Attempts: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	if _, err := c.SearchArtworks(context.Background(), "storm", 9); err == nil {
		t.Fatal("expected error from failing search endpoint")
	}
}
