package synth

import (
	"testing"
	"time"

	"github.com/stoatworks/memorank/pkg/note"
	"github.com/stoatworks/memorank/pkg/rank"
)

func rankedFrom(now time.Time, notes ...note.Note) []rank.Ranked {
	s := rank.New(rank.Config{})
	return s.Rank(notes, note.NewFeedbackModel(), now)
}

func mk(text string, tier note.Tier, age time.Duration, now time.Time) note.Note {
	return note.Note{
		Text:       text,
		TS:         now.Add(-age).Unix(),
		Source:     "user_note",
		Tier:       tier,
		Confidence: 0.9,
	}
}

// TestCollapse_ExactDuplicate tests that a fact added twice yields one line.
func TestCollapse_ExactDuplicate(t *testing.T) {
	now := time.Now()
	ranked := rankedFrom(now,
		mk("my favorite color is blue", note.TierPreference, time.Hour, now),
		mk("My favorite color is BLUE.", note.TierPreference, 2*time.Hour, now),
	)

	out := Collapse(ranked, 0)
	if len(out) != 1 {
		t.Fatalf("collapsed length: got %d, want 1", len(out))
	}
}

// TestCollapse_SameSubjectKeepsHighestRanked tests subject-keyed dedup.
func TestCollapse_SameSubjectKeepsHighestRanked(t *testing.T) {
	now := time.Now()
	ranked := rankedFrom(now,
		mk("my favorite color is blue", note.TierPreference, 30*24*time.Hour, now),
		mk("my favorite color is green", note.TierPreference, time.Hour, now),
	)

	out := Collapse(ranked, 0)
	if len(out) != 1 {
		t.Fatalf("collapsed length: got %d, want 1", len(out))
	}
	if out[0].Note.Text != "my favorite color is green" {
		t.Errorf("survivor: got %q, want the fresher note", out[0].Note.Text)
	}
}

// TestCollapse_DifferentTiersNotMerged tests that the key includes the tier.
func TestCollapse_DifferentTiersNotMerged(t *testing.T) {
	now := time.Now()
	ranked := rankedFrom(now,
		mk("my timezone is cet", note.TierProfile, time.Hour, now),
		mk("my timezone is utc", note.TierSession, time.Hour, now),
	)

	out := Collapse(ranked, 0)
	if len(out) != 2 {
		t.Fatalf("collapsed length: got %d, want 2", len(out))
	}
}

// TestCollapse_FreeFormPrefixKey tests leading-token keying for unparsed text.
func TestCollapse_FreeFormPrefixKey(t *testing.T) {
	now := time.Now()
	ranked := rankedFrom(now,
		mk("call the dentist on monday about the crown appointment", note.TierSession, time.Hour, now),
		mk("call the dentist on monday about the crown appointment follow-up from last week", note.TierSession, 2*time.Hour, now),
		mk("buy oat milk on the way home", note.TierSession, time.Hour, now),
	)

	out := Collapse(ranked, 0)
	if len(out) != 2 {
		t.Fatalf("collapsed length: got %d, want 2", len(out))
	}
}

func TestCollapse_Limit(t *testing.T) {
	now := time.Now()
	var notes []note.Note
	texts := []string{
		"my favorite color is blue",
		"my hometown is bergen",
		"i prefer short answers",
		"buy oat milk tomorrow",
		"call the dentist on monday",
	}
	for i, text := range texts {
		notes = append(notes, mk(text, note.TierPreference, time.Duration(i)*time.Hour, now))
	}

	out := Collapse(rankedFrom(now, notes...), 3)
	if len(out) != 3 {
		t.Fatalf("limited length: got %d, want 3", len(out))
	}
}

func TestCollapse_Empty(t *testing.T) {
	if out := Collapse(nil, 0); len(out) != 0 {
		t.Errorf("Collapse(nil): got %d items, want 0", len(out))
	}
}
