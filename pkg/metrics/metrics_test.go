package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordOperation(t *testing.T) {
	c := NewCollector()
	ctx := context.Background()

	c.RecordOperation(ctx, "write_note", "success", 3)
	c.RecordOperation(ctx, "write_note", "success", 5)
	c.RecordOperation(ctx, "read_context", "error", 1)

	if got := testutil.ToFloat64(c.operationsTotal.WithLabelValues("write_note", "success")); got != 2 {
		t.Errorf("write_note success count: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.operationsTotal.WithLabelValues("read_context", "error")); got != 1 {
		t.Errorf("read_context error count: got %v, want 1", got)
	}
}

func TestCollector_GateAndConflict(t *testing.T) {
	c := NewCollector()
	ctx := context.Background()

	c.RecordGateDecision(ctx, "pass", true)
	c.RecordGateDecision(ctx, "low_confidence", false)
	c.RecordConflict(ctx, "detected")
	c.RecordConflict(ctx, "keep")

	if got := testutil.ToFloat64(c.gateDecisions.WithLabelValues("pass", "true")); got != 1 {
		t.Errorf("gate pass count: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.conflictsTotal.WithLabelValues("detected")); got != 1 {
		t.Errorf("conflicts detected count: got %v, want 1", got)
	}
}

func TestCollector_NotesStoredGauge(t *testing.T) {
	c := NewCollector()
	ctx := context.Background()

	c.SetNotesStored(ctx, "profile", 4)
	c.SetNotesStored(ctx, "profile", 2)

	if got := testutil.ToFloat64(c.notesStored.WithLabelValues("profile")); got != 2 {
		t.Errorf("notes stored gauge: got %v, want 2", got)
	}
}

func TestNoopCollector_ImplementsInterface(t *testing.T) {
	var c Collector = NewNoopCollector()
	ctx := context.Background()

	c.RecordOperation(ctx, "write_note", "success", 1)
	c.RecordGateDecision(ctx, "pass", true)
	c.RecordConflict(ctx, "drop")
	c.RecordError(ctx, "write_note", "database")
	c.SetNotesStored(ctx, "session", 1)
}
