// Package note defines the memory data model: notes, per-user entries and the
// feedback model. Field validation and defaulting happen here so that
// malformed persisted state degrades to usable values instead of errors.
package note

import (
	"time"

	"github.com/stoatworks/memorank/pkg/sanitize"
)

// Tier is the coarse memory category. It controls decay half-life and write
// strictness: profile holds durable identity facts, preference durable
// style/preference facts, session short-lived context.
type Tier string

const (
	TierProfile    Tier = "profile"
	TierPreference Tier = "preference"
	TierSession    Tier = "session"
)

// Priority orders tiers for ranking tie-breaks: profile before preference
// before session.
func (t Tier) Priority() int {
	switch t {
	case TierProfile:
		return 0
	case TierPreference:
		return 1
	default:
		return 2
	}
}

// Valid reports whether t is one of the three known tiers.
func (t Tier) Valid() bool {
	return t == TierProfile || t == TierPreference || t == TierSession
}

// Durable reports whether t is subject to conflict detection and the
// explicit-intent write policy.
func (t Tier) Durable() bool {
	return t == TierProfile || t == TierPreference
}

// Provenance records where a note came from. The key set is closed; unknown
// keys from older documents are dropped on load.
type Provenance struct {
	Channel   string `json:"channel,omitempty"`    // e.g. "telegram", "discord"
	ChatID    string `json:"chat_id,omitempty"`    // conversation identifier
	MessageID int64  `json:"message_id,omitempty"` // platform message id
	Origin    string `json:"origin,omitempty"`     // free-form origin label
	RequestID string `json:"request_id,omitempty"` // upstream request correlation
}

// IsZero reports whether no provenance field is set.
func (p Provenance) IsZero() bool {
	return p == Provenance{}
}

// Note is one stored memory item. Notes are created only through the write
// gate and mutated only by conflict linking/resolution and pruning.
type Note struct {
	Text       string      `json:"text"`
	TS         int64       `json:"ts"` // creation time, unix seconds
	Source     string      `json:"source"`
	Tier       Tier        `json:"tier"`
	Confidence float64     `json:"confidence"`
	Provenance *Provenance `json:"provenance,omitempty"`

	ConflictCandidate  bool   `json:"conflict_candidate,omitempty"`
	ConflictGroup      string `json:"conflict_group,omitempty"`
	ConflictDetectedTS int64  `json:"conflict_detected_ts,omitempty"`
	ConflictHint       string `json:"conflict_hint,omitempty"`

	// WriteGate is the reason code recorded when the note was admitted.
	WriteGate string `json:"write_gate,omitempty"`
}

// Age returns the note's age relative to now. Never negative.
func (n *Note) Age(now time.Time) time.Duration {
	age := now.Sub(time.Unix(n.TS, 0))
	if age < 0 {
		return 0
	}
	return age
}

// Normalize clamps and defaults the note's fields in place and reports
// whether the note is usable at all. Notes with empty text or a non-positive
// timestamp are malformed and get dropped by pruning.
func (n *Note) Normalize(now time.Time) bool {
	n.Text = sanitize.Sanitize(n.Text, 0)
	if n.Text == "" {
		return false
	}
	if n.TS <= 0 {
		return false
	}

	n.Source = sanitize.NormalizeSource(n.Source, "unknown")
	n.Tier = Tier(sanitize.NormalizeTier(string(n.Tier), n.Source))
	n.Confidence = sanitize.ClampConfidence(n.Confidence, 0.5)

	if n.Provenance != nil && n.Provenance.IsZero() {
		n.Provenance = nil
	}

	// A conflict flag without a group is stale state from a one-sided
	// resolution; clear it.
	if n.ConflictCandidate && n.ConflictGroup == "" {
		n.ClearConflict()
	}

	return true
}

// ClearConflict removes all conflict markers from the note.
func (n *Note) ClearConflict() {
	n.ConflictCandidate = false
	n.ConflictGroup = ""
	n.ConflictDetectedTS = 0
	n.ConflictHint = ""
}
