package conflict

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/stoatworks/memorank/pkg/note"
	"github.com/stoatworks/memorank/pkg/sanitize"
)

// DefaultMaxScan bounds how many recent prior notes are considered.
const DefaultMaxScan = 60

// Hint describes a detected conflict between a new note and one prior note.
// Both sides receive the same group id and mirrored metadata.
type Hint struct {
	PriorIndex int    // index of the conflicting note in the snapshot
	Group      string // shared conflict group id
	DetectedTS int64  // detection time, unix seconds
	Summary    string // short human-readable description
	Subject    string // extracted subject, empty for the fallback rule
	PriorValue string
	NewValue   string
}

// Detect scans a snapshot of a user's notes for a contradiction with newText.
// Only durable tiers are checked. At most the maxScan most recent prior notes
// of the same tier and source are considered, most recent first, and at most
// one prior note is linked per new write. Returns nil when nothing conflicts.
func Detect(snapshot []note.Note, newText, source string, tier note.Tier, newTS int64, maxScan int) *Hint {
	if !tier.Durable() {
		return nil
	}
	if maxScan <= 0 {
		maxScan = DefaultMaxScan
	}

	newNorm := sanitize.NormalizeText(newText)
	if newNorm == "" {
		return nil
	}
	newClaim := ExtractClaim(newText)

	scanned := 0
	for i := len(snapshot) - 1; i >= 0 && scanned < maxScan; i-- {
		prior := snapshot[i]
		scanned++

		if prior.Tier != tier || prior.Source != source {
			continue
		}
		// A note already in a conflict pair cannot join a second pair
		// without breaking pair symmetry.
		if prior.ConflictCandidate {
			continue
		}

		priorNorm := sanitize.NormalizeText(prior.Text)
		if priorNorm == "" {
			continue
		}

		// Restatement, not conflict.
		if strings.Contains(newNorm, priorNorm) || strings.Contains(priorNorm, newNorm) {
			continue
		}

		priorClaim := ExtractClaim(prior.Text)

		if newClaim.Subject != "" && priorClaim.Subject != "" {
			if newClaim.Subject != priorClaim.Subject {
				continue
			}
			if newClaim.Value == priorClaim.Value {
				continue
			}
			return &Hint{
				PriorIndex: i,
				Group:      GroupID(source, tier, prior.TS, newTS),
				DetectedTS: newTS,
				Summary:    fmt.Sprintf("conflicting values for %s", newClaim.Subject),
				Subject:    newClaim.Subject,
				PriorValue: priorClaim.Value,
				NewValue:   newClaim.Value,
			}
		}

		// Fallback rule: without subjects, any two same-tier same-source
		// notes that are not restatements of each other conflict.
		return &Hint{
			PriorIndex: i,
			Group:      GroupID(source, tier, prior.TS, newTS),
			DetectedTS: newTS,
			Summary:    "overlapping notes disagree",
			PriorValue: priorNorm,
			NewValue:   newNorm,
		}
	}

	return nil
}

// GroupID derives the deterministic conflict group id shared by a pair.
func GroupID(source string, tier note.Tier, tsA, tsB int64) string {
	lo, hi := tsA, tsB
	if lo > hi {
		lo, hi = hi, lo
	}
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%d|%d", source, tier, lo, hi))
	return hex.EncodeToString(sum[:8])
}

// Mark applies a hint symmetrically: the prior note at hint.PriorIndex and
// the new note both receive the group id, flag, detection time and summary.
// The new note is returned by value so the caller can append it unchanged.
func Mark(entry *note.Entry, hint *Hint, newNote note.Note) note.Note {
	if hint == nil {
		return newNote
	}
	if hint.PriorIndex >= 0 && hint.PriorIndex < len(entry.Notes) {
		prior := &entry.Notes[hint.PriorIndex]
		prior.ConflictCandidate = true
		prior.ConflictGroup = hint.Group
		prior.ConflictDetectedTS = hint.DetectedTS
		prior.ConflictHint = hint.Summary
	}

	newNote.ConflictCandidate = true
	newNote.ConflictGroup = hint.Group
	newNote.ConflictDetectedTS = hint.DetectedTS
	newNote.ConflictHint = hint.Summary
	return newNote
}
