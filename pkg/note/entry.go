package note

import (
	"time"
)

// Entry is the full per-user memory document. The owning store serializes all
// access to it; components never mutate a persisted Entry directly.
type Entry struct {
	Enabled   bool           `json:"enabled"`
	Notes     []Note         `json:"notes"`
	Feedback  *FeedbackModel `json:"feedback_model,omitempty"`
	UpdatedAt int64          `json:"updated_at"`
}

// NewEntry returns an empty, enabled entry with a neutral feedback model.
func NewEntry() *Entry {
	return &Entry{
		Enabled:  true,
		Notes:    []Note{},
		Feedback: NewFeedbackModel(),
	}
}

// Normalize repairs an entry loaded from persistence. Malformed notes are
// dropped, the feedback model is rebuilt if missing, and orphaned conflict
// markers are cleared.
func (e *Entry) Normalize(now time.Time) {
	if e.Notes == nil {
		e.Notes = []Note{}
	}
	kept := e.Notes[:0]
	for i := range e.Notes {
		n := e.Notes[i]
		if n.Normalize(now) {
			kept = append(kept, n)
		}
	}
	e.Notes = kept

	if e.Feedback == nil {
		e.Feedback = NewFeedbackModel()
	}
	e.Feedback.Normalize()

	e.clearOrphanConflicts()
}

// Append adds a note to the end of the list (insertion order is significant
// for recency tie-breaks).
func (e *Entry) Append(n Note) {
	e.Notes = append(e.Notes, n)
}

// Prune removes notes older than ttl and malformed notes, then trims the
// list to maxItems from the front (oldest first). Surviving notes are
// re-normalized. Reports whether anything changed.
func (e *Entry) Prune(now time.Time, ttl time.Duration, maxItems int) bool {
	before := len(e.Notes)

	kept := make([]Note, 0, len(e.Notes))
	for i := range e.Notes {
		n := e.Notes[i]
		if !n.Normalize(now) {
			continue
		}
		if ttl > 0 && n.Age(now) > ttl {
			continue
		}
		kept = append(kept, n)
	}

	if maxItems > 0 && len(kept) > maxItems {
		kept = kept[len(kept)-maxItems:]
	}

	e.Notes = kept
	changed := len(e.Notes) != before
	if e.clearOrphanConflicts() > 0 {
		changed = true
	}
	return changed
}

// RemoveAt deletes the note at idx. Reports false for an out-of-range index.
func (e *Entry) RemoveAt(idx int) bool {
	if idx < 0 || idx >= len(e.Notes) {
		return false
	}
	e.Notes = append(e.Notes[:idx], e.Notes[idx+1:]...)
	e.clearOrphanConflicts()
	return true
}

// RemoveWhere deletes every note matching pred and returns how many were
// removed.
func (e *Entry) RemoveWhere(pred func(Note) bool) int {
	kept := e.Notes[:0]
	removed := 0
	for i := range e.Notes {
		if pred(e.Notes[i]) {
			removed++
			continue
		}
		kept = append(kept, e.Notes[i])
	}
	e.Notes = kept
	if removed > 0 {
		e.clearOrphanConflicts()
	}
	return removed
}

// ConflictPartner returns the index of the other note sharing a conflict
// group, or -1 when the group has no partner.
func (e *Entry) ConflictPartner(idx int) int {
	if idx < 0 || idx >= len(e.Notes) {
		return -1
	}
	group := e.Notes[idx].ConflictGroup
	if group == "" {
		return -1
	}
	for i := range e.Notes {
		if i != idx && e.Notes[i].ConflictGroup == group {
			return i
		}
	}
	return -1
}

// clearOrphanConflicts clears conflict markers on notes whose group no
// longer has exactly one partner. A conflict pair is symmetric; after a
// one-sided removal the survivor must not stay flagged.
func (e *Entry) clearOrphanConflicts() int {
	groupSize := map[string]int{}
	for i := range e.Notes {
		if g := e.Notes[i].ConflictGroup; g != "" {
			groupSize[g]++
		}
	}

	cleared := 0
	for i := range e.Notes {
		g := e.Notes[i].ConflictGroup
		if g != "" && groupSize[g] != 2 {
			e.Notes[i].ClearConflict()
			cleared++
		}
	}
	return cleared
}
