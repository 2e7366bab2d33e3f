package memorank

import (
	"context"

	"github.com/stoatworks/memorank/pkg/conflict"
	"github.com/stoatworks/memorank/pkg/note"
	"github.com/stoatworks/memorank/pkg/sanitize"
)

// WriteRequest is one candidate note.
type WriteRequest struct {
	Text       string
	Source     string
	Tier       string
	Confidence float64
	Provenance *note.Provenance

	// Explicit marks the write as a direct memory command from the user,
	// which satisfies the explicit-intent policy for durable tiers.
	Explicit bool
}

// WriteResult is the outcome of a write attempt.
type WriteResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason"`

	// Conflict reports whether the new note was linked to a prior one.
	Conflict      bool   `json:"conflict"`
	ConflictGroup string `json:"conflict_group,omitempty"`

	TotalNotes int `json:"total_notes"`
}

// WriteNote runs a candidate note through sanitization, the write gate and
// conflict detection, then persists the updated document. A rejected note
// leaves the stored notes unchanged; the gate decision is still recorded.
func (e *Engine) WriteNote(ctx context.Context, userID string, req WriteRequest) (WriteResult, error) {
	if userID == "" {
		return WriteResult{}, ErrEmptyUserID
	}

	start := e.now()
	var events []event
	var opErr error
	defer func() { e.finish(ctx, "write_note", start, opErr) }()

	text := sanitize.Sanitize(req.Text, 0)
	source := sanitize.NormalizeSource(req.Source, "unknown")
	tier := note.Tier(sanitize.NormalizeTier(req.Tier, source))
	confidence := sanitize.ClampConfidence(req.Confidence, 0.5)

	decision := e.gate.Admit(text, source, tier, confidence, req.Explicit)
	e.collector.RecordGateDecision(ctx, decision.Reason, decision.Accepted)
	events = append(events, event{"memory_write_gate", map[string]any{
		"source":     source,
		"tier":       string(tier),
		"confidence": confidence,
		"accepted":   decision.Accepted,
		"reason":     decision.Reason,
	}})

	unlock := e.lockUser(userID)
	res, err := e.writeLocked(ctx, userID, decision.Accepted, decision.Reason, note.Note{
		Text:       text,
		TS:         start.Unix(),
		Source:     source,
		Tier:       tier,
		Confidence: confidence,
		Provenance: req.Provenance,
		WriteGate:  decision.Reason,
	}, &events)
	unlock()

	e.flush(userID, events)
	opErr = err
	return res, err
}

// writeLocked is the under-lock portion of WriteNote.
func (e *Engine) writeLocked(ctx context.Context, userID string, accepted bool, reason string, n note.Note, events *[]event) (WriteResult, error) {
	now := e.now()

	entry, err := e.loadEntry(ctx, userID, now)
	if err != nil {
		return WriteResult{}, err
	}

	// A rejected write still counts as an access: lazy pruning applies.
	if !accepted {
		before := len(entry.Notes)
		if entry.Prune(now, e.cfg.TTL, e.cfg.MaxItems) {
			if err := e.saveEntry(ctx, userID, entry, now); err != nil {
				return WriteResult{}, err
			}
			e.notePruned(events, before-len(entry.Notes), len(entry.Notes))
		}
		return WriteResult{Reason: reason, TotalNotes: len(entry.Notes)}, nil
	}

	before := len(entry.Notes)
	entry.Prune(now, e.cfg.TTL, e.cfg.MaxItems)
	pruned := before - len(entry.Notes)

	hint := conflict.Detect(entry.Notes, n.Text, n.Source, n.Tier, n.TS, e.cfg.MaxItems)
	if hint != nil {
		n = conflict.Mark(entry, hint, n)
		e.collector.RecordConflict(ctx, "detected")
		*events = append(*events, event{"memory_conflict", map[string]any{
			"group":       hint.Group,
			"subject":     hint.Subject,
			"prior_value": hint.PriorValue,
			"new_value":   hint.NewValue,
			"summary":     hint.Summary,
		}})
		if e.logger != nil {
			e.logger.Debug("conflict detected",
				"user", userID, "group", hint.Group, "subject", hint.Subject)
		}
	}

	entry.Append(n)
	preCap := len(entry.Notes)
	entry.Prune(now, e.cfg.TTL, e.cfg.MaxItems)
	pruned += preCap - len(entry.Notes)

	if err := e.saveEntry(ctx, userID, entry, now); err != nil {
		return WriteResult{}, err
	}
	e.updateStoredGauges(ctx, entry)
	e.notePruned(events, pruned, len(entry.Notes))

	*events = append(*events, event{"memory_write", map[string]any{
		"source":      n.Source,
		"tier":        string(n.Tier),
		"confidence":  n.Confidence,
		"conflict":    hint != nil,
		"total_notes": len(entry.Notes),
	}})

	res := WriteResult{
		Accepted:   true,
		Reason:     reason,
		Conflict:   hint != nil,
		TotalNotes: len(entry.Notes),
	}
	if hint != nil {
		res.ConflictGroup = hint.Group
	}
	return res, nil
}
