// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package moderation

// Process-wide term lists for the keyword pre-filter. Read-only after
// package initialization; no synchronization required.
//
// The allow-list exists to rescue legitimate music and art vocabulary that
// overlaps superficially with deny-listed words (genre tags, band names,
// anime titles). It always wins over the deny-list.

// allowTerms are phrases that force a Safe verdict.
var allowTerms = []string{
	"best", "anime", "edit", "dark", "phonk", "bass drop", "remix", "remixes",
	"shoujo", "shonen", "seinen", "josei", "hardstyle", "hardcore", "dubstep",
	"trap", "trance", "edm", "electronic", "electro", "house", "techno",
	"rave", "christmas", "weekly updates", "top anime song", "ost", "opening",
	"ending", "bgm", "soundtrack", "soundtracks", "music", "songs", "song",
	"playlist", "playlists", "gym", "workout", "study", "chill", "relax",
	"lofi", "vibes", "vibe", "nostalgia", "nostalgic", "nostalgiacore",
	"whimsigothic", "classic rock", "progressive rock", "punk rock",
	"new wave", "post-punk", "alternative rock", "indie rock", "emo",
	"glam rock", "album rock", "hard rock", "y2k", "birthday",
	"rage", "grindcore", "cybergrind", "boss battle", "main character",
	"epic", "orchestra", "orchestral", "classics", "sleep",
	"one piece", "demon slayer", "naruto", "chainsaw man", "jojo",
	"tokyo ghoul", "attack on titan", "my hero academia", "jjk", "mha",
	"dbz", "hxh", "snk",
}

// allowArtists are artist names that force a Safe verdict. Kept separate
// from allowTerms so the list can be extended from artist metadata without
// touching the phrase list.
var allowArtists = []string{
	"Drake", "Eminem", "Kanye West", "Beyoncé", "Aimer", "Yoasobi",
	"Ariana Grande", "Fleetwood Mac", "Taylor Swift", "The Weeknd",
	"Bruno Mars", "Billie Eilish", "Doja Cat", "Kenshi Yonezu", "Lisa",
	"Radwimps", "King Gnu", "Vaundy", "Eagles", "Queen", "The Beatles",
	"Led Zeppelin", "Pink Floyd", "The Rolling Stones", "The Who",
	"The Doors", "Jimi Hendrix", "Bob Dylan", "David Bowie", "Elton John",
	"Prince", "Michael Jackson", "Madonna", "Whitney Houston",
	"Mariah Carey", "Stevie Wonder", "Bob Marley", "James Brown",
	"Aretha Franklin", "Marvin Gaye", "The Beach Boys", "The Supremes",
	"The Temptations", "The Velvet Underground", "The Grateful Dead",
}

// denyTerms are exact substrings that force an Unsafe verdict.
// English, Japanese, and romaji variants, plus suggestive emoji.
var denyTerms = []string{
	"nude", "nudes", "adult", "18+", "hentai", "porn", "naked", "lewd",
	"nsfw", "slut", "sex", "sexting", "boob", "boobies", "tits", "tittie",
	"titties", "nipple", "nipples", "milf", "thot", "horny", "hoes",
	"busty", "cleavage", "camel toe", "genital", "crotch", "bulge",
	"thong", "lingerie", "fetish", "kink", "erotic", "risque", "sultry",
	"provocative", "suggestive", "twerk", "pawg", "incelcore",
	"fuck", "motherfucker", "bitch", "bitches", "cock", "dick", "pussy",
	"vagina", "mofo", "smoking",
	"エロ", "裏ビデオ", "無修正", "エッチ", "アダルト", "変態", "h動画",
	"ロリコン", "ブルセラ", "乱交",
	"shota", "doujinshi", "oppai", "ero", "ecchi", "h-manga", "h-doujin",
	"🥵", "🍑", "🍒", "🍆", "🖕",
}

// denyPhrases are multi-word traps whose individual words are too common
// to deny-list on their own.
var denyPhrases = []string{
	"nude rap", "sexy twerk", "thirst trap", "nude dance", "nude model",
	"twerk session", "twerking", "nude rap freestyle", "just sit on my face",
	"suck on toes", "licking toes", "licking feet", "rapping children",
}
