// Package feedback adjusts per-user ranking weights from explicit signals.
// Every adjustment is clamped so the model stays monotone-bounded: no signal
// sequence can push a weight outside [note.WeightMin, note.WeightMax].
package feedback

import (
	"time"

	"github.com/stoatworks/memorank/pkg/note"
)

// Known feedback signals.
const (
	SignalConflictKeep = "conflict_keep"
	SignalConflictDrop = "conflict_drop"
	SignalTooVague     = "feedback_too_vague"
	SignalTooShort     = "feedback_too_short"
	SignalTooLong      = "feedback_too_long"
	SignalGood         = "feedback_good"
)

// Known reports whether signal is one the model reacts to.
func Known(signal string) bool {
	switch signal {
	case SignalConflictKeep, SignalConflictDrop, SignalTooVague,
		SignalTooShort, SignalTooLong, SignalGood:
		return true
	}
	return false
}

// Apply records a signal on the model. Source and tier identify the note the
// signal is about; they matter only for the conflict signals. Returns false
// for unknown signals, which leave the model untouched.
func Apply(m *note.FeedbackModel, signal, source string, tier note.Tier, now time.Time) bool {
	if m == nil || !Known(signal) {
		return false
	}
	m.Normalize()

	switch signal {
	case SignalConflictKeep:
		if source != "" {
			bumpSource(m, source, 0.06)
		}
		if tier.Valid() {
			bumpTier(m, tier, 0.04)
		}
	case SignalConflictDrop:
		if source != "" {
			bumpSource(m, source, -0.08)
		}
		if tier.Valid() {
			bumpTier(m, tier, -0.05)
		}
	case SignalTooVague:
		bumpTier(m, note.TierPreference, 0.03)
		bumpTier(m, note.TierProfile, 0.02)
	case SignalTooShort:
		bumpTier(m, note.TierSession, 0.02)
		bumpTier(m, note.TierPreference, 0.01)
	case SignalTooLong:
		bumpTier(m, note.TierSession, -0.03)
	case SignalGood:
		m.GlobalWeight = note.ClampWeight(m.GlobalWeight + 0.01)
	}

	m.SignalCounts[signal]++
	m.LastSignal = signal
	m.UpdatedAt = now.Unix()
	return true
}

// Multiplier returns the ranking multiplier for a note:
// global × source weight × tier weight, each independently clamped.
func Multiplier(m *note.FeedbackModel, n *note.Note) float64 {
	if m == nil {
		return note.WeightNeutral
	}
	return note.ClampWeight(m.GlobalWeight) *
		m.SourceWeight(n.Source) *
		m.TierWeight(n.Tier)
}

func bumpSource(m *note.FeedbackModel, source string, delta float64) {
	cur, ok := m.SourceWeights[source]
	if !ok || cur == 0 {
		cur = note.WeightNeutral
	}
	m.SourceWeights[source] = note.ClampWeight(cur + delta)
}

func bumpTier(m *note.FeedbackModel, tier note.Tier, delta float64) {
	cur, ok := m.TierWeights[tier]
	if !ok || cur == 0 {
		cur = note.WeightNeutral
	}
	m.TierWeights[tier] = note.ClampWeight(cur + delta)
}
