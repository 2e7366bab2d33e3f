package memorank

import (
	"time"

	"github.com/stoatworks/memorank/pkg/canary"
	"github.com/stoatworks/memorank/pkg/gate"
	"github.com/stoatworks/memorank/pkg/rank"
)

// Defaults applied by New for zero-valued config fields.
const (
	DefaultMaxItems            = 60
	DefaultTTL                 = 45 * 24 * time.Hour
	DefaultSummaryLimit        = 12
	DefaultExplainLimit        = 10
	DefaultMinReadConfidence   = 0.3
	DefaultConflictReminderAge = 24 * time.Hour
)

// Config holds configuration for the memory engine.
type Config struct {
	// MaxItems caps the number of notes kept per user (default: 60).
	MaxItems int

	// TTL is the maximum note age before lazy pruning (default: 45 days).
	TTL time.Duration

	// SummaryLimit caps the number of notes in a context summary (default: 12).
	SummaryLimit int

	// ExplainLimit caps the number of ranked notes in Explain output (default: 10).
	ExplainLimit int

	// MinReadConfidence filters low-confidence notes out of summaries (default: 0.3).
	MinReadConfidence float64

	// ConflictReminderAge marks unresolved conflicts as needing a reminder
	// once they are older than this (default: 24h).
	ConflictReminderAge time.Duration

	// Gate overrides the default write gate policy.
	Gate *gate.Gate

	// Ranking overrides decay half-lives and the source trust table.
	Ranking rank.Config

	// Canary controls staged rollout of intent scoping and conflict gating.
	// Nil means the canary is off and the behaviors are active for everyone.
	Canary *canary.Controller
}

// withDefaults fills in zero-valued fields.
func (c Config) withDefaults() Config {
	if c.MaxItems == 0 {
		c.MaxItems = DefaultMaxItems
	}
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	if c.SummaryLimit == 0 {
		c.SummaryLimit = DefaultSummaryLimit
	}
	if c.ExplainLimit == 0 {
		c.ExplainLimit = DefaultExplainLimit
	}
	if c.MinReadConfidence == 0 {
		c.MinReadConfidence = DefaultMinReadConfidence
	}
	if c.ConflictReminderAge == 0 {
		c.ConflictReminderAge = DefaultConflictReminderAge
	}
	if c.Gate == nil {
		c.Gate = gate.New()
	}
	if c.Canary == nil {
		c.Canary = &canary.Controller{}
	}
	return c
}
