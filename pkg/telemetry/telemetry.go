// Package telemetry records structured events for every gate, score and
// conflict decision. Emission is best-effort: a telemetry failure must never
// affect the caller's result or block the read/write path.
package telemetry

import (
	"fmt"
	"math"
	"time"
)

// MaxFieldLen caps string field values in emitted events.
const MaxFieldLen = 160

// Emitter is the interface for event emission. Implementations must be safe
// for concurrent use and must swallow their own I/O failures.
type Emitter interface {
	// Emit records one event. userID may be empty for process-level events.
	Emit(event, userID string, fields map[string]any)

	// Close flushes buffered events and releases resources.
	Close() error
}

// Event is one emitted record, one JSON object per line.
type Event struct {
	TS        int64          `json:"ts"`
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	EventID   string         `json:"event_id"`
	UserID    string         `json:"user_id,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// NormalizeFields sanitizes a field map for emission: strings are truncated
// to MaxFieldLen, floats rounded to 6 decimals, and other values rendered as
// truncated strings. Nil-safe.
func NormalizeFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[truncate(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return truncate(val)
	case bool, int, int32, int64:
		return val
	case float32:
		return roundFloat(float64(val))
	case float64:
		return roundFloat(val)
	default:
		return truncate(fmt.Sprint(val))
	}
}

func roundFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return math.Round(f*1e6) / 1e6
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxFieldLen {
		return s
	}
	return string(runes[:MaxFieldLen])
}

func newEvent(event, userID string, fields map[string]any, now time.Time, id string) Event {
	return Event{
		TS:        now.Unix(),
		Timestamp: now.UTC().Format(time.RFC3339),
		Event:     event,
		EventID:   id,
		UserID:    userID,
		Fields:    NormalizeFields(fields),
	}
}
