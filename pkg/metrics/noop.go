package metrics

import "context"

// NoopCollector is a no-op implementation used when metrics are not wired up.
type NoopCollector struct{}

// NewNoopCollector creates a no-op collector.
func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

// RecordOperation does nothing.
func (n *NoopCollector) RecordOperation(ctx context.Context, operation string, status string, durationMs int64) {
}

// RecordGateDecision does nothing.
func (n *NoopCollector) RecordGateDecision(ctx context.Context, reason string, accepted bool) {}

// RecordConflict does nothing.
func (n *NoopCollector) RecordConflict(ctx context.Context, action string) {}

// RecordError does nothing.
func (n *NoopCollector) RecordError(ctx context.Context, operation string, errorType string) {}

// SetNotesStored does nothing.
func (n *NoopCollector) SetNotesStored(ctx context.Context, tier string, count int64) {}
