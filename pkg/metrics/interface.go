package metrics

import "context"

// Collector is the interface for metrics collection. Implementations include
// the Prometheus-backed collector and the no-op collector used when metrics
// are not wired up.
type Collector interface {
	RecordOperation(ctx context.Context, operation string, status string, durationMs int64)
	RecordGateDecision(ctx context.Context, reason string, accepted bool)
	RecordConflict(ctx context.Context, action string)
	RecordError(ctx context.Context, operation string, errorType string)
	SetNotesStored(ctx context.Context, tier string, count int64)
}
