// Package scope narrows retrieval to notes matching an inferred intent topic.
// Matching is a best-effort heuristic: tier and source hints first, keyword
// containment second.
package scope

import (
	"strings"

	"github.com/stoatworks/memorank/pkg/note"
	"github.com/stoatworks/memorank/pkg/sanitize"
)

// Named scopes understood by the filter.
const (
	Identity = "identity"
	Style    = "style"
	Media    = "media"
	Ops      = "ops"
)

// Known reports whether s names a defined scope.
func Known(s string) bool {
	switch s {
	case Identity, Style, Media, Ops:
		return true
	}
	return false
}

// Normalize lower-cases and trims a raw scope label. Unknown labels collapse
// to "" (match everything) so a bad inference never hides notes.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if !Known(s) {
		return ""
	}
	return s
}

// Source labels that imply a scope regardless of text content.
var sourceHints = map[string]string{
	"profile_sync":     Identity,
	"identity":         Identity,
	"user_profile":     Identity,
	"style_feedback":   Style,
	"feedback":         Style,
	"media_preference": Media,
	"plex":             Media,
	"operator":         Ops,
	"ops":              Ops,
}

var scopeKeywords = map[string][]string{
	Identity: {
		"name", "age", "pronoun", "birthday", "timezone", "location",
		"live", "hometown", "language", "family", "job", "work",
	},
	Style: {
		"prefer", "style", "tone", "format", "length", "answer", "reply",
		"verbose", "concise", "short", "detailed", "emoji",
	},
	Media: {
		"movie", "film", "show", "series", "music", "song", "album",
		"book", "podcast", "watch", "listen", "genre", "artist",
	},
	Ops: {
		"server", "deploy", "alert", "backup", "webhook", "schedule",
		"cron", "reminder", "notification", "task", "automation",
	},
}

// Matches reports whether a note belongs to the given scope. The empty scope
// matches everything. Tier and source hints are checked before keywords.
func Matches(n note.Note, s string) bool {
	if s == "" {
		return true
	}

	// Tier hints: profile facts are identity material, preference facts
	// style material.
	switch s {
	case Identity:
		if n.Tier == note.TierProfile {
			return true
		}
	case Style:
		if n.Tier == note.TierPreference {
			return true
		}
	}

	if sourceHints[n.Source] == s {
		return true
	}

	norm := sanitize.NormalizeText(n.Text)
	for _, kw := range scopeKeywords[s] {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return false
}
