package note

import (
	"testing"
	"time"
)

func ts(now time.Time, age time.Duration) int64 {
	return now.Add(-age).Unix()
}

// TestEntry_Prune_TTL tests that expired notes are removed lazily
func TestEntry_Prune_TTL(t *testing.T) {
	now := time.Now()
	e := NewEntry()
	e.Append(Note{Text: "fresh", TS: ts(now, time.Hour), Source: "user_note", Tier: TierSession, Confidence: 0.9})
	e.Append(Note{Text: "stale", TS: ts(now, 50*24*time.Hour), Source: "user_note", Tier: TierSession, Confidence: 0.9})

	changed := e.Prune(now, 45*24*time.Hour, 60)
	if !changed {
		t.Error("Prune should report a change")
	}
	if len(e.Notes) != 1 {
		t.Fatalf("notes after prune: got %d, want 1", len(e.Notes))
	}
	if e.Notes[0].Text != "fresh" {
		t.Errorf("surviving note: got %q, want %q", e.Notes[0].Text, "fresh")
	}
}

// TestEntry_Prune_MaxItems tests trimming from the front (oldest first)
func TestEntry_Prune_MaxItems(t *testing.T) {
	now := time.Now()
	e := NewEntry()
	for i := 0; i < 10; i++ {
		e.Append(Note{
			Text:       "note",
			TS:         ts(now, time.Duration(10-i)*time.Minute),
			Source:     "user_note",
			Tier:       TierSession,
			Confidence: 0.9,
		})
	}

	e.Prune(now, 45*24*time.Hour, 4)
	if len(e.Notes) != 4 {
		t.Fatalf("notes after cap: got %d, want 4", len(e.Notes))
	}
	// Kept notes must be the most recent ones.
	for i := 1; i < len(e.Notes); i++ {
		if e.Notes[i].TS < e.Notes[i-1].TS {
			t.Errorf("kept notes out of order at %d", i)
		}
	}
}

// TestEntry_Prune_DropsMalformed tests removal of unusable notes
func TestEntry_Prune_DropsMalformed(t *testing.T) {
	now := time.Now()
	e := NewEntry()
	e.Append(Note{Text: "   ", TS: now.Unix()})
	e.Append(Note{Text: "no timestamp", TS: 0})
	e.Append(Note{Text: "ok", TS: now.Unix(), Source: "user_note", Tier: TierSession, Confidence: 0.5})

	e.Prune(now, 0, 0)
	if len(e.Notes) != 1 {
		t.Fatalf("notes after prune: got %d, want 1", len(e.Notes))
	}
}

// TestEntry_Prune_NoChange tests the changed=false path
func TestEntry_Prune_NoChange(t *testing.T) {
	now := time.Now()
	e := NewEntry()
	e.Append(Note{Text: "ok", TS: now.Unix(), Source: "user_note", Tier: TierSession, Confidence: 0.5})

	if e.Prune(now, 45*24*time.Hour, 60) {
		t.Error("Prune on a clean entry should report no change")
	}
}

// TestEntry_RemoveAt_ClearsOrphanedConflict tests the symmetric pair invariant
func TestEntry_RemoveAt_ClearsOrphanedConflict(t *testing.T) {
	now := time.Now()
	e := NewEntry()
	e.Append(Note{Text: "a", TS: ts(now, time.Hour), Source: "user_note", Tier: TierPreference, Confidence: 0.9,
		ConflictCandidate: true, ConflictGroup: "g1", ConflictDetectedTS: now.Unix()})
	e.Append(Note{Text: "b", TS: now.Unix(), Source: "user_note", Tier: TierPreference, Confidence: 0.9,
		ConflictCandidate: true, ConflictGroup: "g1", ConflictDetectedTS: now.Unix()})

	if !e.RemoveAt(0) {
		t.Fatal("RemoveAt(0) failed")
	}
	if len(e.Notes) != 1 {
		t.Fatalf("notes: got %d, want 1", len(e.Notes))
	}
	if e.Notes[0].ConflictCandidate || e.Notes[0].ConflictGroup != "" {
		t.Error("survivor of one-sided removal must not stay conflict-flagged")
	}
}

func TestEntry_RemoveAt_OutOfRange(t *testing.T) {
	e := NewEntry()
	if e.RemoveAt(0) {
		t.Error("RemoveAt on empty entry should fail")
	}
	if e.RemoveAt(-1) {
		t.Error("RemoveAt(-1) should fail")
	}
}

func TestEntry_RemoveWhere(t *testing.T) {
	now := time.Now()
	e := NewEntry()
	e.Append(Note{Text: "a", TS: now.Unix(), Source: "chat", Tier: TierSession, Confidence: 0.5})
	e.Append(Note{Text: "b", TS: now.Unix(), Source: "user_note", Tier: TierSession, Confidence: 0.5})
	e.Append(Note{Text: "c", TS: now.Unix(), Source: "chat", Tier: TierSession, Confidence: 0.5})

	removed := e.RemoveWhere(func(n Note) bool { return n.Source == "chat" })
	if removed != 2 {
		t.Errorf("removed: got %d, want 2", removed)
	}
	if len(e.Notes) != 1 || e.Notes[0].Text != "b" {
		t.Errorf("unexpected survivors: %+v", e.Notes)
	}
}

func TestEntry_ConflictPartner(t *testing.T) {
	now := time.Now()
	e := NewEntry()
	e.Append(Note{Text: "a", TS: now.Unix(), Source: "s", Tier: TierPreference, Confidence: 0.9, ConflictGroup: "g"})
	e.Append(Note{Text: "mid", TS: now.Unix(), Source: "s", Tier: TierSession, Confidence: 0.9})
	e.Append(Note{Text: "b", TS: now.Unix(), Source: "s", Tier: TierPreference, Confidence: 0.9, ConflictGroup: "g"})

	if got := e.ConflictPartner(0); got != 2 {
		t.Errorf("ConflictPartner(0): got %d, want 2", got)
	}
	if got := e.ConflictPartner(1); got != -1 {
		t.Errorf("ConflictPartner(1): got %d, want -1", got)
	}
	if got := e.ConflictPartner(9); got != -1 {
		t.Errorf("ConflictPartner(9): got %d, want -1", got)
	}
}

// TestEntry_Normalize_RepairsLoadedState tests defaulting of malformed documents
func TestEntry_Normalize_RepairsLoadedState(t *testing.T) {
	now := time.Now()
	e := &Entry{
		Notes: []Note{
			{Text: "valid", TS: now.Unix(), Source: "User Note!!", Tier: "bogus", Confidence: 7},
			{Text: "", TS: now.Unix()},
			{Text: "lonely conflict", TS: now.Unix(), Source: "s", Tier: TierPreference,
				Confidence: 0.5, ConflictCandidate: true, ConflictGroup: "gX"},
		},
	}

	e.Normalize(now)

	if len(e.Notes) != 2 {
		t.Fatalf("notes after normalize: got %d, want 2", len(e.Notes))
	}
	if e.Notes[0].Source != "user_note" {
		t.Errorf("source: got %q, want user_note", e.Notes[0].Source)
	}
	if e.Notes[0].Tier != TierSession {
		t.Errorf("tier: got %q, want session", e.Notes[0].Tier)
	}
	if e.Notes[0].Confidence != 1.0 {
		t.Errorf("confidence: got %v, want 1.0", e.Notes[0].Confidence)
	}
	if e.Notes[1].ConflictCandidate || e.Notes[1].ConflictGroup != "" {
		t.Error("orphaned conflict marker must be cleared on normalize")
	}
	if e.Feedback == nil {
		t.Fatal("feedback model must be created")
	}
	if e.Feedback.GlobalWeight != WeightNeutral {
		t.Errorf("global weight: got %v, want neutral", e.Feedback.GlobalWeight)
	}
}
