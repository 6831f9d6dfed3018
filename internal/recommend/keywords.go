// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package recommend

// Keyword tables for the Met collection. Each mood, subject, or style
// maps to the search terms that tend to surface matching artworks. The
// "Open" entry in each table searches across the whole category.

var artMoodKeywords = map[string][]string{
	"Inspired":    {"inspiration", "creativity", "genius"},
	"Creative":    {"creativity", "innovation", "imagination"},
	"Calm":        {"serene", "peaceful", "tranquil"},
	"Energetic":   {"dynamic", "vibrant", "lively"},
	"Adventurous": {"exploration", "adventure", "journey"},
	"Happy":       {"joy", "happiness", "bliss"},
	"Sad":         {"melancholy", "sadness", "sorrow"},
	"Romantic":    {"romance", "love", "passion"},
	"Focused":     {"concentration", "focus", "meditation"},
	"Upbeat":      {"cheerful", "optimistic", "positive"},
	"Rebellious":  {"rebellion", "protest", "revolt"},
	"Dark":        {"darkness", "mystery", "gothic"},
	"Nostalgic":   {"nostalgia", "memory", "reminiscence"},
	"Trippy":      {"psychedelic", "abstract", "surreal"},
	"Party":       {"celebration", "festivity", "party"},
	"Epic":        {"heroic", "epic", "legend"},
	"Quirky":      {"quirky", "eccentric", "whimsical"},
	"Emotional":   {"emotion", "feeling", "expression"},
	"Open":        {"inspired", "creative", "calm", "energetic", "adventurous", "happy", "sad", "romantic", "focused", "upbeat", "rebellious", "dark", "nostalgic", "trippy", "party", "epic", "quirky", "emotional"},
}

var artSubjectKeywords = map[string][]string{
	"Human Stories":            {"portrait", "daily life", "figure", "people"},
	"Nature & Landscapes":      {"landscape", "scenery", "garden"},
	"Religious & Mythological": {"religion", "mythology", "spiritual"},
	"Historical Events":        {"history", "event", "historical", "war"},
	"Abstract & Decorative":    {"abstract", "decorative", "pattern"},
	"Open":                     {"human stories", "nature & landscapes", "religious & mythological", "historical events", "abstract & decorative"},
}

// ArtSubjects returns the supported artwork subjects, excluding the
// wildcard.
func ArtSubjects() []string {
	return keys(artSubjectKeywords)
}

// ArtStyles returns the supported art styles, excluding the wildcard.
func ArtStyles() []string {
	return keys(artStyleKeywords)
}

var artStyleKeywords = map[string][]string{
	"Cubism":         {"cubist", "Picasso", "Braque"},
	"Abstract":       {"abstract", "Kandinsky", "color field"},
	"Impressionism":  {"impressionist", "Renoir", "brushstrokes"},
	"Baroque":        {"baroque", "Rubens", "dramatic"},
	"Romanticism":    {"romantic", "Delacroix", "emotion"},
	"Pre-Raphaelite": {"pre-raphaelite", "Rossetti", "detailed"},
	"Op Art":         {"op art", "Riley", "illusion"},
	"Futurism":       {"futurist", "Boccioni", "movement"},
	"Tonalism":       {"tonalist", "Whistler", "Inness", "mood"},
	"Open":           {"cubism", "abstract", "impressionism", "baroque", "romanticism", "pre-raphaelite", "op art", "futurism", "tonalism"},
}
