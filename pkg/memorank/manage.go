package memorank

import (
	"context"

	"github.com/stoatworks/memorank/pkg/feedback"
	"github.com/stoatworks/memorank/pkg/note"
	"github.com/stoatworks/memorank/pkg/sanitize"
)

// Forget modes.
const (
	ForgetModeIndex  = "index"
	ForgetModeSource = "source"
	ForgetModeAll    = "all"
)

// ForgetRequest selects which notes to remove. Index wins over Source; with
// neither set, every note is removed.
type ForgetRequest struct {
	Index  *int
	Source string
}

// ForgetResult reports what a forget operation removed.
type ForgetResult struct {
	OK        bool   `json:"ok"`
	Mode      string `json:"mode"`
	Removed   int    `json:"removed"`
	Remaining int    `json:"remaining"`
}

// Forget removes notes by index, by source, or wholesale. An out-of-range
// index yields OK false with nothing removed.
func (e *Engine) Forget(ctx context.Context, userID string, req ForgetRequest) (ForgetResult, error) {
	if userID == "" {
		return ForgetResult{}, ErrEmptyUserID
	}

	start := e.now()
	var events []event
	var opErr error
	defer func() { e.finish(ctx, "forget", start, opErr) }()

	unlock := e.lockUser(userID)
	res, err := e.forgetLocked(ctx, userID, req, &events)
	unlock()

	e.flush(userID, events)
	opErr = err
	return res, err
}

func (e *Engine) forgetLocked(ctx context.Context, userID string, req ForgetRequest, events *[]event) (ForgetResult, error) {
	now := e.now()

	entry, err := e.loadEntry(ctx, userID, now)
	if err != nil {
		return ForgetResult{}, err
	}

	var mode string
	removed := 0
	switch {
	case req.Index != nil:
		mode = ForgetModeIndex
		if !entry.RemoveAt(*req.Index) {
			return ForgetResult{Mode: mode, Remaining: len(entry.Notes)}, nil
		}
		removed = 1
	case req.Source != "":
		mode = ForgetModeSource
		source := sanitize.NormalizeSource(req.Source, "unknown")
		removed = entry.RemoveWhere(func(n note.Note) bool { return n.Source == source })
	default:
		mode = ForgetModeAll
		removed = len(entry.Notes)
		entry.Notes = []note.Note{}
	}

	if removed > 0 {
		if err := e.saveEntry(ctx, userID, entry, now); err != nil {
			return ForgetResult{}, err
		}
		e.updateStoredGauges(ctx, entry)
	}

	*events = append(*events, event{"memory_forget", map[string]any{
		"mode":      mode,
		"removed":   removed,
		"remaining": len(entry.Notes),
	}})

	return ForgetResult{OK: true, Mode: mode, Removed: removed, Remaining: len(entry.Notes)}, nil
}

// ExportDocument is a user's full memory state in a portable shape.
type ExportDocument struct {
	UserID        string              `json:"user_id"`
	Enabled       bool                `json:"enabled"`
	UpdatedAt     int64               `json:"updated_at"`
	TotalNotes    int                 `json:"total_notes"`
	FeedbackModel *note.FeedbackModel `json:"feedback_model"`
	Notes         []note.Note         `json:"notes"`
}

// Export returns everything stored for a user, including conflict markers and
// the feedback model. The returned document does not alias engine state.
func (e *Engine) Export(ctx context.Context, userID string) (ExportDocument, error) {
	if userID == "" {
		return ExportDocument{}, ErrEmptyUserID
	}

	start := e.now()
	var opErr error
	defer func() { e.finish(ctx, "export", start, opErr) }()

	unlock := e.lockUser(userID)
	defer unlock()

	now := e.now()
	entry, err := e.loadEntry(ctx, userID, now)
	if err != nil {
		opErr = err
		return ExportDocument{}, err
	}

	notes := make([]note.Note, len(entry.Notes))
	copy(notes, entry.Notes)

	model := *entry.Feedback

	return ExportDocument{
		UserID:        userID,
		Enabled:       entry.Enabled,
		UpdatedAt:     entry.UpdatedAt,
		TotalNotes:    len(notes),
		FeedbackModel: &model,
		Notes:         notes,
	}, nil
}

// RecordSignal applies a feedback signal to the user's weight model. Unknown
// signals return false and leave the model untouched. Source and tier name
// the note the signal is about and matter only for the conflict signals.
func (e *Engine) RecordSignal(ctx context.Context, userID, signal, source, tier string) (bool, error) {
	if userID == "" {
		return false, ErrEmptyUserID
	}

	start := e.now()
	var events []event
	var opErr error
	defer func() { e.finish(ctx, "record_signal", start, opErr) }()

	unlock := e.lockUser(userID)
	applied, err := func() (bool, error) {
		now := e.now()
		entry, err := e.loadEntry(ctx, userID, now)
		if err != nil {
			return false, err
		}

		src := sanitize.NormalizeSource(source, "")
		t := note.Tier(sanitize.NormalizeTier(tier, src))
		if !feedback.Apply(entry.Feedback, signal, src, t, now) {
			return false, nil
		}

		if err := e.saveEntry(ctx, userID, entry, now); err != nil {
			return false, err
		}
		events = append(events, event{"memory_feedback", map[string]any{
			"signal": signal,
			"source": src,
			"tier":   string(t),
		}})
		return true, nil
	}()
	unlock()

	e.flush(userID, events)
	opErr = err
	return applied, err
}

// SetEnabled toggles a user's memory on or off. Disabled users keep their
// stored notes but ReadContext returns nothing for them.
func (e *Engine) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	start := e.now()
	var opErr error
	defer func() { e.finish(ctx, "set_enabled", start, opErr) }()

	unlock := e.lockUser(userID)
	defer unlock()

	now := e.now()
	entry, err := e.loadEntry(ctx, userID, now)
	if err != nil {
		opErr = err
		return err
	}
	if entry.Enabled == enabled {
		return nil
	}
	entry.Enabled = enabled
	opErr = e.saveEntry(ctx, userID, entry, now)
	return opErr
}

// Reset discards a user's notes and feedback model. The enabled flag is
// preserved: resetting memory is not the same as switching it off.
func (e *Engine) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	start := e.now()
	var events []event
	var opErr error
	defer func() { e.finish(ctx, "reset", start, opErr) }()

	unlock := e.lockUser(userID)
	err := func() error {
		now := e.now()
		entry, err := e.loadEntry(ctx, userID, now)
		if err != nil {
			return err
		}

		removed := len(entry.Notes)
		fresh := note.NewEntry()
		fresh.Enabled = entry.Enabled
		if err := e.saveEntry(ctx, userID, fresh, now); err != nil {
			return err
		}
		e.updateStoredGauges(ctx, fresh)

		events = append(events, event{"memory_forget", map[string]any{
			"mode":      "reset",
			"removed":   removed,
			"remaining": 0,
		}})
		return nil
	}()
	unlock()

	e.flush(userID, events)
	opErr = err
	return err
}
