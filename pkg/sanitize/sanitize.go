// Package sanitize provides pure text and field normalization for memory notes.
// All functions are side-effect free and safe for concurrent use.
package sanitize

import (
	"math"
	"regexp"
	"strings"
)

// DefaultMaxTextLen is the default character budget for a sanitized note.
const DefaultMaxTextLen = 600

// RedactionMarker replaces credential-shaped material in sanitized text.
const RedactionMarker = "[redacted]"

var (
	// Credential-shaped: a long digit run followed by ":" and a token,
	// e.g. bot tokens of the form 123456789:AAxxxxxxxx.
	credentialTokenRe = regexp.MustCompile(`\b\d{6,}:[A-Za-z0-9_-]{8,}`)

	// API-key shaped: "sk-" prefix followed by a long alphanumeric run.
	apiKeyRe = regexp.MustCompile(`\bsk-[A-Za-z0-9]{16,}`)

	sourceInvalidRe = regexp.MustCompile(`[^a-z0-9:_-]+`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// Sanitize cleans raw note text: collapses whitespace, redacts
// credential-shaped tokens, and truncates to maxLen characters.
// A maxLen <= 0 applies DefaultMaxTextLen.
func Sanitize(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxTextLen
	}

	s := whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	s = credentialTokenRe.ReplaceAllString(s, RedactionMarker)
	s = apiKeyRe.ReplaceAllString(s, RedactionMarker)

	// Truncate on rune boundaries so multi-byte text stays valid.
	runes := []rune(s)
	if len(runes) > maxLen {
		s = strings.TrimSpace(string(runes[:maxLen]))
	}

	return s
}

// ContainsCredential reports whether text still carries a credential-shaped
// token or a prior redaction marker.
func ContainsCredential(text string) bool {
	return credentialTokenRe.MatchString(text) ||
		apiKeyRe.MatchString(text) ||
		strings.Contains(text, RedactionMarker)
}

// NormalizeSource lower-cases a source label, replaces runs of characters
// outside [a-z0-9:_-] with "_", and trims leading/trailing underscores.
// Returns fallback when the result is empty.
func NormalizeSource(raw, fallback string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = sourceInvalidRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return fallback
	}
	return s
}

// Source labels that imply a tier when the caller did not name one.
var (
	preferenceLikeSources = map[string]bool{
		"preference":       true,
		"user_preference":  true,
		"feedback":         true,
		"style_feedback":   true,
		"media_preference": true,
	}
	profileLikeSources = map[string]bool{
		"profile":      true,
		"profile_sync": true,
		"identity":     true,
		"user_profile": true,
	}
)

// NormalizeTier maps a raw tier label to one of profile, preference or
// session. Unknown or empty tiers fall back to a default inferred from the
// source label: preference-like sources map to preference, profile-like
// sources to profile, anything else to session.
func NormalizeTier(raw, source string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "profile":
		return "profile"
	case "preference":
		return "preference"
	case "session":
		return "session"
	}

	src := NormalizeSource(source, "")
	switch {
	case preferenceLikeSources[src]:
		return "preference"
	case profileLikeSources[src]:
		return "profile"
	default:
		return "session"
	}
}

// ClampConfidence clamps a confidence value to [0, 1] rounded to 3 decimals.
// NaN and infinities take the (clamped) fallback.
func ClampConfidence(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = fallback
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return math.Round(v*1000) / 1000
}

// NormalizeText lowers and whitespace-collapses text for comparison.
// Trailing sentence punctuation is stripped so "I prefer tea." and
// "i prefer tea" compare equal.
func NormalizeText(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimRight(s, ".!? ")
}

// Tokens splits normalized text into whitespace-separated tokens.
func Tokens(text string) []string {
	return strings.Fields(NormalizeText(text))
}
