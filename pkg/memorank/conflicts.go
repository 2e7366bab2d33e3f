package memorank

import (
	"context"

	"github.com/stoatworks/memorank/pkg/feedback"
)

// ConflictView describes one side of an unresolved conflict pair.
type ConflictView struct {
	Index        int    `json:"index"`
	PartnerIndex int    `json:"partner_index"`
	Group        string `json:"group"`
	Text         string `json:"text"`
	Source       string `json:"source"`
	Tier         string `json:"tier"`
	TS           int64  `json:"ts"`
	DetectedTS   int64  `json:"detected_ts"`
	Hint         string `json:"hint"`

	// NeedsReminder marks conflicts that have sat unresolved longer than the
	// configured reminder age.
	NeedsReminder bool `json:"needs_reminder"`
}

// ListConflicts returns every note currently flagged as part of a conflict
// pair, in storage order. Both sides of a pair are listed.
func (e *Engine) ListConflicts(ctx context.Context, userID string) ([]ConflictView, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	start := e.now()
	var opErr error
	defer func() { e.finish(ctx, "list_conflicts", start, opErr) }()

	unlock := e.lockUser(userID)
	defer unlock()

	now := e.now()
	entry, err := e.loadEntry(ctx, userID, now)
	if err != nil {
		opErr = err
		return nil, err
	}

	var views []ConflictView
	for i := range entry.Notes {
		n := entry.Notes[i]
		if !n.ConflictCandidate || n.ConflictGroup == "" {
			continue
		}
		age := now.Unix() - n.ConflictDetectedTS
		views = append(views, ConflictView{
			Index:         i,
			PartnerIndex:  entry.ConflictPartner(i),
			Group:         n.ConflictGroup,
			Text:          n.Text,
			Source:        n.Source,
			Tier:          string(n.Tier),
			TS:            n.TS,
			DetectedTS:    n.ConflictDetectedTS,
			Hint:          n.ConflictHint,
			NeedsReminder: age > int64(e.cfg.ConflictReminderAge.Seconds()),
		})
	}
	return views, nil
}

// Resolution actions.
const (
	ResolveKeep = "keep"
	ResolveDrop = "drop"
)

// Resolution outcome codes.
const (
	ResolveCodeResolved      = "resolved"
	ResolveCodeOutOfRange    = "index_out_of_range"
	ResolveCodeNotAConflict  = "not_a_conflict"
	ResolveCodeNoPartner     = "missing_partner"
	ResolveCodeInvalidAction = "invalid_action"
)

// ResolveResult is the outcome of a resolution attempt. A failed attempt is a
// result with OK false and a code, never an error: bad indices from stale
// client state are expected input.
type ResolveResult struct {
	OK        bool   `json:"ok"`
	Code      string `json:"code"`
	Kept      string `json:"kept,omitempty"`
	Removed   string `json:"removed,omitempty"`
	Remaining int    `json:"remaining"`
}

// ResolveConflict settles the conflict pair containing the note at index.
// Action "keep" keeps that note and removes its partner; "drop" removes that
// note and keeps the partner. The survivor's conflict markers are cleared and
// the feedback model records a keep signal for the survivor and a drop signal
// for the loser.
func (e *Engine) ResolveConflict(ctx context.Context, userID string, index int, action string) (ResolveResult, error) {
	if userID == "" {
		return ResolveResult{}, ErrEmptyUserID
	}
	if action != ResolveKeep && action != ResolveDrop {
		return ResolveResult{Code: ResolveCodeInvalidAction}, nil
	}

	start := e.now()
	var events []event
	var opErr error
	defer func() { e.finish(ctx, "resolve_conflict", start, opErr) }()

	unlock := e.lockUser(userID)
	res, err := e.resolveLocked(ctx, userID, index, action, &events)
	unlock()

	e.flush(userID, events)
	opErr = err
	return res, err
}

func (e *Engine) resolveLocked(ctx context.Context, userID string, index int, action string, events *[]event) (ResolveResult, error) {
	now := e.now()

	entry, err := e.loadEntry(ctx, userID, now)
	if err != nil {
		return ResolveResult{}, err
	}

	if index < 0 || index >= len(entry.Notes) {
		return ResolveResult{Code: ResolveCodeOutOfRange, Remaining: len(entry.Notes)}, nil
	}
	if !entry.Notes[index].ConflictCandidate {
		return ResolveResult{Code: ResolveCodeNotAConflict, Remaining: len(entry.Notes)}, nil
	}
	partner := entry.ConflictPartner(index)
	if partner < 0 {
		return ResolveResult{Code: ResolveCodeNoPartner, Remaining: len(entry.Notes)}, nil
	}

	keepIdx, dropIdx := index, partner
	if action == ResolveDrop {
		keepIdx, dropIdx = partner, index
	}
	kept := entry.Notes[keepIdx]
	dropped := entry.Notes[dropIdx]
	group := kept.ConflictGroup

	feedback.Apply(entry.Feedback, feedback.SignalConflictKeep, kept.Source, kept.Tier, now)
	feedback.Apply(entry.Feedback, feedback.SignalConflictDrop, dropped.Source, dropped.Tier, now)

	// RemoveAt clears the survivor's now-orphaned conflict markers.
	entry.RemoveAt(dropIdx)

	if err := e.saveEntry(ctx, userID, entry, now); err != nil {
		return ResolveResult{}, err
	}
	e.updateStoredGauges(ctx, entry)
	e.collector.RecordConflict(ctx, action)

	*events = append(*events, event{"memory_conflict_resolved", map[string]any{
		"group":          group,
		"action":         action,
		"kept_source":    kept.Source,
		"kept_tier":      string(kept.Tier),
		"dropped_source": dropped.Source,
		"dropped_tier":   string(dropped.Tier),
	}})
	if e.logger != nil {
		e.logger.Debug("conflict resolved", "user", userID, "group", group, "action", action)
	}

	return ResolveResult{
		OK:        true,
		Code:      ResolveCodeResolved,
		Kept:      kept.Text,
		Removed:   dropped.Text,
		Remaining: len(entry.Notes),
	}, nil
}
