// Package synth collapses near-duplicate notes before a summary is built, so
// the emitted context never repeats the same fact twice.
package synth

import (
	"strings"

	"github.com/stoatworks/memorank/pkg/conflict"
	"github.com/stoatworks/memorank/pkg/note"
	"github.com/stoatworks/memorank/pkg/rank"
	"github.com/stoatworks/memorank/pkg/sanitize"
)

// DefaultLimit caps how many notes a summary may contain.
const DefaultLimit = 12

// Collapse walks ranked notes in order, drops exact duplicates and notes that
// restate an already-kept fact (same canonical key), and stops once limit
// notes are collected. The highest-ranked note per key survives.
func Collapse(ranked []rank.Ranked, limit int) []rank.Ranked {
	if limit <= 0 {
		limit = DefaultLimit
	}

	seenText := make(map[string]bool, len(ranked))
	seenKey := make(map[string]bool, len(ranked))
	out := make([]rank.Ranked, 0, limit)

	for _, r := range ranked {
		norm := sanitize.NormalizeText(r.Note.Text)
		if norm == "" || seenText[norm] {
			continue
		}

		key := canonicalKey(r.Note)
		if seenKey[key] {
			continue
		}

		seenText[norm] = true
		seenKey[key] = true
		out = append(out, r)

		if len(out) >= limit {
			break
		}
	}

	return out
}

// canonicalKey reduces a note to the fact it states. Notes matching the claim
// grammar key on tier:subject; free-form notes key on their leading tokens,
// with a longer prefix for session context since it is chattier.
func canonicalKey(n note.Note) string {
	claim := conflict.ExtractClaim(n.Text)
	if claim.Subject != "" {
		return string(n.Tier) + ":" + claim.Subject
	}

	width := 6
	if n.Tier == note.TierSession {
		width = 8
	}
	tokens := sanitize.Tokens(n.Text)
	if len(tokens) > width {
		tokens = tokens[:width]
	}
	return string(n.Tier) + ":" + strings.Join(tokens, " ")
}
