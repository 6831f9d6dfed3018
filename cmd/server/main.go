// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

// Package main is the entry point for the Moodmuse server.
//
// Moodmuse recommends music and visual art matching a mood. Music comes
// from the Spotify catalog, artworks from the Metropolitan Museum of
// Art open-access collection. Every candidate passes through a content
// safety pipeline before it ever reaches a client: a local keyword
// pre-filter, a remote text moderation model, and a dual image
// classifier (safe-search plus a moderation model) that replaces
// anything questionable with a neutral placeholder.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layered sources (defaults, config.yaml,
//     environment variables)
//  2. Logging: zerolog, JSON by default
//  3. Moderation pipeline: verdict caches, text and image clients,
//     optional Safe Browsing URL pre-check
//  4. Upstream catalogs: Spotify and Met clients, each independently
//     switchable
//  5. HTTP server under a suture supervisor tree
//
// # Signal handling
//
// SIGINT and SIGTERM trigger a graceful shutdown: in-flight requests
// get the server timeout to finish, then the supervisor tree stops.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/moodmuse/internal/api"
	"github.com/tomtom215/moodmuse/internal/cache"
	"github.com/tomtom215/moodmuse/internal/config"
	"github.com/tomtom215/moodmuse/internal/logging"
	"github.com/tomtom215/moodmuse/internal/moderation"
	"github.com/tomtom215/moodmuse/internal/recommend"
	"github.com/tomtom215/moodmuse/internal/supervisor"
	"github.com/tomtom215/moodmuse/internal/upstream/met"
	"github.com/tomtom215/moodmuse/internal/upstream/safebrowsing"
	"github.com/tomtom215/moodmuse/internal/upstream/spotify"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Bool("spotify_enabled", cfg.Spotify.Enabled).
		Bool("met_enabled", cfg.Met.Enabled).
		Bool("vision_enabled", cfg.Moderation.Vision.Enabled).
		Bool("safebrowsing_enabled", cfg.Moderation.SafeBrowsing.Enabled).
		Msg("Starting Moodmuse")

	filter := buildModerationPipeline(cfg)
	service := buildRecommendationService(cfg, filter)

	handler := api.NewHandler(service, cfg.Spotify.Enabled, cfg.Met.Enabled)
	router := api.NewRouter(handler, cfg.Server)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * time.Minute,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.AddAPIService(supervisor.NewHTTPServerService(server, treeCfg.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Fatal().Err(err).Msg("Supervisor tree failed")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	logging.Info().Msg("Moodmuse stopped")
}

// buildModerationPipeline assembles the content safety filter from
// configuration: pre-filter, text client, image client, and the shared
// verdict caches.
func buildModerationPipeline(cfg *config.Config) *moderation.Filter {
	httpClient := moderation.NewSharedHTTPClient(cfg.Moderation.Timeout)

	retry := moderation.RetryConfig{
		Attempts:     cfg.Moderation.RetryAttempts,
		InitialDelay: cfg.Moderation.RetryInitialDelay,
		MaxDelay:     cfg.Moderation.RetryMaxDelay,
	}

	textCache := cache.New("text-verdicts", cfg.Moderation.CacheTTL, cfg.Moderation.CacheMaxEntries)
	imageCache := cache.New("image-verdicts", cfg.Moderation.CacheTTL, cfg.Moderation.CacheMaxEntries)

	text := moderation.NewTextClient(moderation.TextConfig{
		Endpoint: cfg.Moderation.Endpoint,
		APIKey:   cfg.Moderation.APIKey,
		Model:    cfg.Moderation.Model,
		Thresholds: moderation.Thresholds{
			Sexual:                cfg.Moderation.Thresholds.Sexual,
			SexualMinors:          cfg.Moderation.Thresholds.SexualMinors,
			HarassmentThreatening: cfg.Moderation.Thresholds.HarassmentThreatening,
			Violence:              cfg.Moderation.Thresholds.Violence,
		},
		Retry: retry,
	}, httpClient, textCache)

	var urlChecker moderation.URLChecker
	if cfg.Moderation.SafeBrowsing.Enabled {
		urlChecker = safebrowsing.New(cfg.Moderation.SafeBrowsing, httpClient)
	}

	images := moderation.NewImageClient(moderation.ImageConfig{
		VisionEndpoint:     cfg.Moderation.Vision.Endpoint,
		VisionAPIKey:       cfg.Moderation.Vision.APIKey,
		VisionDisabled:     !cfg.Moderation.Vision.Enabled,
		ModerationEndpoint: cfg.Moderation.Endpoint,
		ModerationAPIKey:   cfg.Moderation.APIKey,
		ModerationModel:    cfg.Moderation.Model,
		Placeholder:        cfg.Moderation.Placeholder,
		Retry:              retry,
	}, httpClient, imageCache, urlChecker)

	return moderation.NewFilter(moderation.NewPreFilter(), text, images, cfg.Moderation.MaxConcurrent)
}

// buildRecommendationService wires the enabled upstream catalogs into
// the recommendation service.
func buildRecommendationService(cfg *config.Config, filter *moderation.Filter) *recommend.Service {
	var music spotify.Searcher
	if cfg.Spotify.Enabled {
		music = spotify.New(cfg.Spotify, nil)
	}

	var art met.Searcher
	if cfg.Met.Enabled {
		art = met.New(cfg.Met, nil)
	}

	return recommend.New(music, art, filter, cfg.Recommend)
}
