// Package gate implements admission control for candidate memory notes.
// Admit is pure: it returns a decision and reason code; persistence is the
// caller's responsibility.
package gate

import (
	"strings"

	"github.com/stoatworks/memorank/pkg/note"
	"github.com/stoatworks/memorank/pkg/sanitize"
)

// Reason codes recorded on every gate decision.
const (
	ReasonEmpty           = "empty"
	ReasonLowConfidence   = "low_confidence"
	ReasonSensitiveData   = "sensitive_data"
	ReasonTrustedSource   = "trusted_source"
	ReasonExplicitMissing = "explicit_intent_required"
	ReasonPass            = "pass"
)

// DefaultMinWriteConfidence is the floor below which untrusted writes are
// rejected.
const DefaultMinWriteConfidence = 0.4

// DefaultTrustedSources are sources whose writes bypass the confidence floor
// and the explicit-intent policy.
func DefaultTrustedSources() map[string]bool {
	return map[string]bool{
		"user_note":    true,
		"user_command": true,
		"operator":     true,
		"profile_sync": true,
	}
}

// Marker phrases that signal an explicit request to remember something.
var explicitMarkers = []string{
	"remember",
	"save this",
	"note that",
	"for future",
	"i prefer",
	"my preference",
	"default for me",
}

// Keywords whose presence marks text as sensitive regardless of source.
var sensitiveKeywords = []string{
	"password",
	"passwd",
	"api key",
	"api-key",
	"apikey",
	"access token",
	"auth token",
	"secret key",
	"client secret",
	"private key",
	"credential",
}

// Gate decides whether candidate notes are admitted to the store.
type Gate struct {
	MinWriteConfidence float64
	TrustedSources     map[string]bool

	// RequireExplicitIntent gates durable-tier writes on an explicit user
	// command or a marker phrase in the text.
	RequireExplicitIntent bool
}

// New returns a gate with the default policy.
func New() *Gate {
	return &Gate{
		MinWriteConfidence:    DefaultMinWriteConfidence,
		TrustedSources:        DefaultTrustedSources(),
		RequireExplicitIntent: true,
	}
}

// Decision is the outcome of one admission check.
type Decision struct {
	Accepted bool
	Reason   string
}

// Admit evaluates a candidate note. Rules apply in order, first match wins:
// empty text, low confidence from an untrusted source, sensitive data,
// trusted source, explicit-intent policy for durable tiers, then pass.
// The text is expected to be already sanitized; source and tier normalized.
func (g *Gate) Admit(text, source string, tier note.Tier, confidence float64, explicit bool) Decision {
	if strings.TrimSpace(text) == "" {
		return Decision{Reason: ReasonEmpty}
	}

	trusted := g.TrustedSources[source]

	if confidence < g.MinWriteConfidence && !trusted {
		return Decision{Reason: ReasonLowConfidence}
	}

	// Sensitive data is rejected unconditionally, even for trusted sources.
	if isSensitive(text) {
		return Decision{Reason: ReasonSensitiveData}
	}

	if trusted {
		return Decision{Accepted: true, Reason: ReasonTrustedSource}
	}

	if g.RequireExplicitIntent && tier.Durable() {
		if explicit || hasExplicitMarker(text) {
			return Decision{Accepted: true, Reason: ReasonPass}
		}
		return Decision{Reason: ReasonExplicitMissing}
	}

	return Decision{Accepted: true, Reason: ReasonPass}
}

func isSensitive(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return sanitize.ContainsCredential(text)
}

func hasExplicitMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range explicitMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
