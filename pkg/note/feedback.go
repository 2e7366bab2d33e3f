package note

// Feedback weights are bounded so that no sequence of signals can push
// ranking adjustments outside a narrow band around neutral.
const (
	WeightMin     = 0.8
	WeightMax     = 1.25
	WeightNeutral = 1.0
)

// FeedbackModel holds per-user ranking weight adjustments driven by explicit
// signals. Every weight stays within [WeightMin, WeightMax].
type FeedbackModel struct {
	GlobalWeight  float64            `json:"global_weight"`
	TierWeights   map[Tier]float64   `json:"tier_weights"`
	SourceWeights map[string]float64 `json:"source_weights"`
	SignalCounts  map[string]int     `json:"signal_counts"`
	UpdatedAt     int64              `json:"updated_at"`
	LastSignal    string             `json:"last_signal,omitempty"`
}

// NewFeedbackModel returns a model with all weights neutral.
func NewFeedbackModel() *FeedbackModel {
	return &FeedbackModel{
		GlobalWeight: WeightNeutral,
		TierWeights: map[Tier]float64{
			TierProfile:    WeightNeutral,
			TierPreference: WeightNeutral,
			TierSession:    WeightNeutral,
		},
		SourceWeights: map[string]float64{},
		SignalCounts:  map[string]int{},
	}
}

// ClampWeight bounds a single weight to [WeightMin, WeightMax].
func ClampWeight(w float64) float64 {
	if w != w { // NaN
		return WeightNeutral
	}
	if w < WeightMin {
		return WeightMin
	}
	if w > WeightMax {
		return WeightMax
	}
	return w
}

// Normalize repairs a model loaded from persistence: missing maps are
// created, missing tiers filled in, and every weight clamped.
func (m *FeedbackModel) Normalize() {
	if m.GlobalWeight == 0 {
		m.GlobalWeight = WeightNeutral
	}
	m.GlobalWeight = ClampWeight(m.GlobalWeight)

	if m.TierWeights == nil {
		m.TierWeights = map[Tier]float64{}
	}
	for _, tier := range []Tier{TierProfile, TierPreference, TierSession} {
		w, ok := m.TierWeights[tier]
		if !ok || w == 0 {
			w = WeightNeutral
		}
		m.TierWeights[tier] = ClampWeight(w)
	}
	// Drop unknown tier keys from older documents.
	for tier := range m.TierWeights {
		if !tier.Valid() {
			delete(m.TierWeights, tier)
		}
	}

	if m.SourceWeights == nil {
		m.SourceWeights = map[string]float64{}
	}
	for src, w := range m.SourceWeights {
		if w == 0 {
			w = WeightNeutral
		}
		m.SourceWeights[src] = ClampWeight(w)
	}

	if m.SignalCounts == nil {
		m.SignalCounts = map[string]int{}
	}
}

// TierWeight returns the clamped weight for a tier, neutral when unset.
func (m *FeedbackModel) TierWeight(tier Tier) float64 {
	if w, ok := m.TierWeights[tier]; ok && w != 0 {
		return ClampWeight(w)
	}
	return WeightNeutral
}

// SourceWeight returns the clamped weight for a source, neutral when unset.
func (m *FeedbackModel) SourceWeight(source string) float64 {
	if w, ok := m.SourceWeights[source]; ok && w != 0 {
		return ClampWeight(w)
	}
	return WeightNeutral
}
