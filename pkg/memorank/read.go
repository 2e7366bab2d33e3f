package memorank

import (
	"context"
	"fmt"
	"strings"

	"github.com/stoatworks/memorank/pkg/note"
	"github.com/stoatworks/memorank/pkg/rank"
	"github.com/stoatworks/memorank/pkg/scope"
	"github.com/stoatworks/memorank/pkg/synth"
)

// ProvenanceRef ties one summary line back to the note behind it.
type ProvenanceRef struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Tier   string  `json:"tier"`
	TS     int64   `json:"ts"`
	Score  float64 `json:"score"`
}

// ReadResult is a ranked context summary.
type ReadResult struct {
	// Enabled is false when the user has memory switched off; Summary and
	// Provenance are then empty.
	Enabled    bool            `json:"enabled"`
	Summary    string          `json:"summary"`
	Provenance []ProvenanceRef `json:"provenance,omitempty"`
}

// ReadContext builds the context summary for a user: lazy pruning, the
// confidence/conflict filter, decay ranking, intent scoping and duplicate
// collapse. scopeLabel may be empty or unknown; both mean no scoping.
// Scoping and conflict gating apply only to users in the canary cohort.
func (e *Engine) ReadContext(ctx context.Context, userID, scopeLabel string) (ReadResult, error) {
	if userID == "" {
		return ReadResult{}, ErrEmptyUserID
	}

	start := e.now()
	var events []event
	var opErr error
	defer func() { e.finish(ctx, "read_context", start, opErr) }()

	unlock := e.lockUser(userID)
	res, err := e.readLocked(ctx, userID, scopeLabel, &events)
	unlock()

	e.flush(userID, events)
	opErr = err
	return res, err
}

func (e *Engine) readLocked(ctx context.Context, userID, scopeLabel string, events *[]event) (ReadResult, error) {
	now := e.now()

	entry, err := e.loadEntry(ctx, userID, now)
	if err != nil {
		return ReadResult{}, err
	}

	if !entry.Enabled {
		*events = append(*events, event{"memory_read", map[string]any{
			"enabled": false,
		}})
		return ReadResult{}, nil
	}

	before := len(entry.Notes)
	if entry.Prune(now, e.cfg.TTL, e.cfg.MaxItems) {
		if err := e.saveEntry(ctx, userID, entry, now); err != nil {
			return ReadResult{}, err
		}
		e.updateStoredGauges(ctx, entry)
		e.notePruned(events, before-len(entry.Notes), len(entry.Notes))
	}

	inCohort := e.canary.InCohort(userID)

	// Confidence floor always applies; unresolved conflict pairs are held
	// back only for cohort users (conflict gating is a canary behavior).
	candidates := make([]note.Note, 0, len(entry.Notes))
	for i := range entry.Notes {
		n := entry.Notes[i]
		if n.Confidence < e.cfg.MinReadConfidence {
			continue
		}
		if inCohort && n.ConflictCandidate {
			continue
		}
		candidates = append(candidates, n)
	}

	ranked := e.scorer.Rank(candidates, entry.Feedback, now)

	s := scope.Normalize(scopeLabel)
	scoped := ranked
	if inCohort && s != "" {
		filtered := make([]rank.Ranked, 0, len(ranked))
		for _, r := range ranked {
			if scope.Matches(r.Note, s) {
				filtered = append(filtered, r)
			}
		}
		// Scoping narrows, never empties: an over-eager filter falls back
		// to the full ranked list.
		if len(filtered) > 0 {
			scoped = filtered
		} else {
			s = ""
		}
	}

	collapsed := synth.Collapse(scoped, e.cfg.SummaryLimit)

	var lines []string
	refs := make([]ProvenanceRef, 0, len(collapsed))
	for _, r := range collapsed {
		lines = append(lines, "- "+r.Note.Text)
		refs = append(refs, ProvenanceRef{
			Text:   r.Note.Text,
			Source: r.Note.Source,
			Tier:   string(r.Note.Tier),
			TS:     r.Note.TS,
			Score:  r.Final,
		})
	}

	*events = append(*events, event{"memory_read", map[string]any{
		"enabled":    true,
		"scope":      s,
		"in_cohort":  inCohort,
		"candidates": len(candidates),
		"returned":   len(collapsed),
	}})

	return ReadResult{
		Enabled:    true,
		Summary:    strings.Join(lines, "\n"),
		Provenance: refs,
	}, nil
}

// Explain renders the full ranking breakdown for a user as text, one line per
// note in rank order. limit <= 0 applies the configured default.
func (e *Engine) Explain(ctx context.Context, userID string, limit int) (string, error) {
	if userID == "" {
		return "", ErrEmptyUserID
	}
	if limit <= 0 {
		limit = e.cfg.ExplainLimit
	}

	start := e.now()
	var opErr error
	defer func() { e.finish(ctx, "explain", start, opErr) }()

	unlock := e.lockUser(userID)
	defer unlock()

	now := e.now()
	entry, err := e.loadEntry(ctx, userID, now)
	if err != nil {
		opErr = err
		return "", err
	}

	ranked := e.scorer.Rank(entry.Notes, entry.Feedback, now)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "memory ranking for %s (%d notes, showing %d)\n", userID, len(entry.Notes), len(ranked))
	for i, r := range ranked {
		fmt.Fprintf(&b, "%2d. [%s/%s] score=%.6f mult=%.3f final=%.6f %q",
			i+1, r.Note.Tier, r.Note.Source, r.Score, r.Multiplier, r.Final, r.Note.Text)
		if r.Note.ConflictCandidate {
			fmt.Fprintf(&b, " conflict=%s", r.Note.ConflictGroup)
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
