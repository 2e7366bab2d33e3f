// Package rank scores memory notes by recency decay, source trust and tier
// boost, and orders them for summary building.
package rank

import (
	"math"
	"sort"
	"time"

	"github.com/stoatworks/memorank/pkg/feedback"
	"github.com/stoatworks/memorank/pkg/note"
)

// Default half-lives per tier. Profile facts decay slowest, session context
// fastest.
const (
	DefaultProfileHalfLife    = 14 * 24 * time.Hour
	DefaultPreferenceHalfLife = 7 * 24 * time.Hour
	DefaultSessionHalfLife    = 2 * 24 * time.Hour
)

// DefaultUnknownTrust applies to sources absent from the trust table.
const DefaultUnknownTrust = 0.75

// Config controls the scoring formula.
type Config struct {
	HalfLives    map[note.Tier]time.Duration
	SourceTrust  map[string]float64
	UnknownTrust float64
}

// DefaultConfig returns the standard half-lives and trust table.
func DefaultConfig() Config {
	return Config{
		HalfLives: map[note.Tier]time.Duration{
			note.TierProfile:    DefaultProfileHalfLife,
			note.TierPreference: DefaultPreferenceHalfLife,
			note.TierSession:    DefaultSessionHalfLife,
		},
		SourceTrust: map[string]float64{
			"user_note":           1.0,
			"user_command":        1.0,
			"operator":            0.95,
			"profile_sync":        0.9,
			"assistant_inference": 0.7,
		},
		UnknownTrust: DefaultUnknownTrust,
	}
}

// Scorer computes ranking scores. Safe for concurrent use.
type Scorer struct {
	cfg Config
}

// New creates a scorer, filling in defaults for unset config fields.
func New(cfg Config) *Scorer {
	def := DefaultConfig()
	if cfg.HalfLives == nil {
		cfg.HalfLives = def.HalfLives
	}
	if cfg.SourceTrust == nil {
		cfg.SourceTrust = def.SourceTrust
	}
	if cfg.UnknownTrust <= 0 {
		cfg.UnknownTrust = def.UnknownTrust
	}
	return &Scorer{cfg: cfg}
}

// tierBoost nudges durable tiers above session context at equal recency.
func tierBoost(t note.Tier) float64 {
	switch t {
	case note.TierProfile:
		return 1.15
	case note.TierPreference:
		return 1.05
	default:
		return 1.0
	}
}

// halfLife returns the configured half-life for a tier.
func (s *Scorer) halfLife(t note.Tier) time.Duration {
	if hl, ok := s.cfg.HalfLives[t]; ok && hl > 0 {
		return hl
	}
	return DefaultSessionHalfLife
}

// trust returns the source trust factor, falling back for unknown sources.
func (s *Scorer) trust(source string) float64 {
	if v, ok := s.cfg.SourceTrust[source]; ok && v > 0 {
		return v
	}
	return s.cfg.UnknownTrust
}

// Score computes the base ranking score for a note at the given time:
//
//	confidence × 0.5^(age/halfLife(tier)) × trust(source) × boost(tier)
//
// rounded to 6 decimals. Strictly decreasing in age, all else fixed.
func (s *Scorer) Score(n *note.Note, now time.Time) float64 {
	age := n.Age(now)
	decay := decayMultiplier(age, s.halfLife(n.Tier))
	raw := n.Confidence * decay * s.trust(n.Source) * tierBoost(n.Tier)
	return math.Round(raw*1e6) / 1e6
}

// decayMultiplier computes 0.5^(age/halfLife). Defensive about non-positive
// half-lives and negative ages.
func decayMultiplier(age, halfLife time.Duration) float64 {
	if age <= 0 {
		return 1.0
	}
	if halfLife <= 0 {
		return 1.0
	}
	return math.Pow(0.5, age.Seconds()/halfLife.Seconds())
}

// Ranked pairs a note with its scoring breakdown. Index refers back to the
// note's position in the source snapshot.
type Ranked struct {
	Note       note.Note
	Index      int
	Score      float64
	Multiplier float64
	Final      float64
}

// Rank scores every note, applies the feedback multiplier and sorts by
// (-final score, tier priority, -timestamp). The snapshot is not modified.
func (s *Scorer) Rank(snapshot []note.Note, model *note.FeedbackModel, now time.Time) []Ranked {
	ranked := make([]Ranked, 0, len(snapshot))
	for i := range snapshot {
		n := snapshot[i]
		score := s.Score(&n, now)
		mult := feedback.Multiplier(model, &n)
		ranked = append(ranked, Ranked{
			Note:       n,
			Index:      i,
			Score:      score,
			Multiplier: mult,
			Final:      math.Round(score*mult*1e6) / 1e6,
		})
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		ra, rb := ranked[a], ranked[b]
		if ra.Final != rb.Final {
			return ra.Final > rb.Final
		}
		pa, pb := ra.Note.Tier.Priority(), rb.Note.Tier.Priority()
		if pa != pb {
			return pa < pb
		}
		return ra.Note.TS > rb.Note.TS
	})

	return ranked
}
