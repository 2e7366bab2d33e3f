package telemetry

// NopEmitter discards every event. Used when telemetry is not configured.
type NopEmitter struct{}

// NewNopEmitter creates a no-op emitter.
func NewNopEmitter() *NopEmitter {
	return &NopEmitter{}
}

// Emit does nothing.
func (n *NopEmitter) Emit(event, userID string, fields map[string]any) {}

// Close does nothing.
func (n *NopEmitter) Close() error { return nil }
