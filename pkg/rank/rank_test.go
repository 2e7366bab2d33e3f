package rank

import (
	"math"
	"testing"
	"time"

	"github.com/stoatworks/memorank/pkg/note"
)

func newNote(tier note.Tier, source string, conf float64, age time.Duration, now time.Time) note.Note {
	return note.Note{
		Text:       "n",
		TS:         now.Add(-age).Unix(),
		Source:     source,
		Tier:       tier,
		Confidence: conf,
	}
}

// TestScore_HalfLife tests that a note at exactly one half-life scores half
// its fresh value (modulo trust and boost).
func TestScore_HalfLife(t *testing.T) {
	s := New(Config{})
	now := time.Now()

	fresh := newNote(note.TierSession, "user_note", 1.0, 0, now)
	aged := newNote(note.TierSession, "user_note", 1.0, DefaultSessionHalfLife, now)

	f := s.Score(&fresh, now)
	a := s.Score(&aged, now)

	if math.Abs(f-1.0) > 0.001 {
		t.Errorf("fresh session note from user_note: got %v, want ~1.0", f)
	}
	if math.Abs(a-f/2) > 0.001 {
		t.Errorf("half-life score: got %v, want ~%v", a, f/2)
	}
}

// TestScore_StrictlyDecreasingWithAge tests the monotone decay property.
func TestScore_StrictlyDecreasingWithAge(t *testing.T) {
	s := New(Config{})
	now := time.Now()

	prev := math.Inf(1)
	for _, age := range []time.Duration{0, time.Hour, 12 * time.Hour, 24 * time.Hour, 7 * 24 * time.Hour, 60 * 24 * time.Hour} {
		n := newNote(note.TierPreference, "user_note", 0.9, age, now)
		score := s.Score(&n, now)
		if score >= prev {
			t.Errorf("score at age %v not strictly lower: %v >= %v", age, score, prev)
		}
		prev = score
	}
}

func TestScore_TierBoost(t *testing.T) {
	s := New(Config{})
	now := time.Now()

	profile := newNote(note.TierProfile, "user_note", 1.0, 0, now)
	pref := newNote(note.TierPreference, "user_note", 1.0, 0, now)
	sess := newNote(note.TierSession, "user_note", 1.0, 0, now)

	if got := s.Score(&profile, now); got != 1.15 {
		t.Errorf("profile boost: got %v, want 1.15", got)
	}
	if got := s.Score(&pref, now); got != 1.05 {
		t.Errorf("preference boost: got %v, want 1.05", got)
	}
	if got := s.Score(&sess, now); got != 1.0 {
		t.Errorf("session boost: got %v, want 1.0", got)
	}
}

func TestScore_UnknownSourceTrust(t *testing.T) {
	s := New(Config{})
	now := time.Now()

	n := newNote(note.TierSession, "random_source", 1.0, 0, now)
	if got := s.Score(&n, now); got != DefaultUnknownTrust {
		t.Errorf("unknown source trust: got %v, want %v", got, DefaultUnknownTrust)
	}
}

func TestRank_Order(t *testing.T) {
	s := New(Config{})
	now := time.Now()

	notes := []note.Note{
		newNote(note.TierSession, "user_note", 0.5, 30*24*time.Hour, now), // old, low
		newNote(note.TierProfile, "user_note", 0.95, time.Hour, now),      // fresh, boosted
		newNote(note.TierSession, "user_note", 0.9, time.Hour, now),
	}

	ranked := s.Rank(notes, note.NewFeedbackModel(), now)
	if len(ranked) != 3 {
		t.Fatalf("ranked length: got %d, want 3", len(ranked))
	}
	if ranked[0].Index != 1 {
		t.Errorf("top note index: got %d, want 1", ranked[0].Index)
	}
	if ranked[2].Index != 0 {
		t.Errorf("bottom note index: got %d, want 0", ranked[2].Index)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Final > ranked[i-1].Final {
			t.Errorf("ranking not descending at %d", i)
		}
	}
}

// TestRank_TieBreaks tests that equal scores break toward the higher tier,
// then the more recent timestamp.
func TestRank_TieBreaks(t *testing.T) {
	now := time.Now()
	// Equal trust for all sources and no decay difference: same score.
	s := New(Config{
		SourceTrust: map[string]float64{"a": 1.0},
	})

	profile := newNote(note.TierProfile, "a", 1.0, 0, now)
	session := newNote(note.TierSession, "a", 1.15, 0, now) // 1.15×1.0 == 1.0×1.15

	ranked := s.Rank([]note.Note{session, profile}, nil, now)
	if ranked[0].Note.Tier != note.TierProfile {
		t.Errorf("tie must break toward profile, got %s first", ranked[0].Note.Tier)
	}

	// Same tier and score: age clamps at zero for both, so only the raw
	// timestamp distinguishes them.
	older := newNote(note.TierSession, "a", 1.0, 0, now)
	older.TS = now.Add(time.Second).Unix()
	older.Text = "older"
	newer := newNote(note.TierSession, "a", 1.0, 0, now)
	newer.TS = now.Add(2 * time.Second).Unix()
	newer.Text = "newer"

	ranked = s.Rank([]note.Note{older, newer}, nil, now)
	if ranked[0].Note.Text != "newer" {
		t.Errorf("tie must break toward more recent, got %q first", ranked[0].Note.Text)
	}
}

func TestRank_FeedbackMultiplier(t *testing.T) {
	s := New(Config{})
	now := time.Now()

	model := note.NewFeedbackModel()
	model.SourceWeights["boosted"] = 1.25

	plain := newNote(note.TierSession, "plain", 0.8, 0, now)
	boosted := newNote(note.TierSession, "boosted", 0.8, 0, now)

	ranked := s.Rank([]note.Note{plain, boosted}, model, now)
	if ranked[0].Note.Source != "boosted" {
		t.Errorf("feedback-boosted note must rank first, got %q", ranked[0].Note.Source)
	}
	if ranked[0].Multiplier != 1.25 {
		t.Errorf("multiplier: got %v, want 1.25", ranked[0].Multiplier)
	}
}
