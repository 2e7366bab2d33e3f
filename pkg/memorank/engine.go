// Package memorank is a per-user memory ranking and conflict-resolution
// engine. It stores short natural-language notes behind a write gate, links
// contradicting durable notes into conflict pairs, and builds ranked context
// summaries with recency decay, source trust and feedback-adjusted weights.
package memorank

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stoatworks/memorank/pkg/canary"
	"github.com/stoatworks/memorank/pkg/gate"
	"github.com/stoatworks/memorank/pkg/metrics"
	"github.com/stoatworks/memorank/pkg/note"
	"github.com/stoatworks/memorank/pkg/rank"
	"github.com/stoatworks/memorank/pkg/store"
	"github.com/stoatworks/memorank/pkg/telemetry"
)

// Engine is the main entry point. All operations on the same user are
// serialized by a per-user mutex; operations on different users run
// concurrently. Telemetry and metrics are optional and default to no-ops.
type Engine struct {
	cfg       Config
	store     store.EntryStore
	gate      *gate.Gate
	scorer    *rank.Scorer
	canary    *canary.Controller
	emitter   telemetry.Emitter
	collector metrics.Collector
	logger    *slog.Logger

	// now is swappable for tests.
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an engine on the given store. Zero-valued config fields get
// defaults.
func New(st store.EntryStore, cfg Config) (*Engine, error) {
	if st == nil {
		return nil, ErrNilStore
	}
	cfg = cfg.withDefaults()

	return &Engine{
		cfg:       cfg,
		store:     st,
		gate:      cfg.Gate,
		scorer:    rank.New(cfg.Ranking),
		canary:    cfg.Canary,
		emitter:   telemetry.NewNopEmitter(),
		collector: metrics.NewNoopCollector(),
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

// WithLogger sets the logger for debug output. A nil logger disables logging.
func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	e.logger = logger
	return e
}

// WithTelemetry sets the event emitter. The engine does not close it.
func (e *Engine) WithTelemetry(em telemetry.Emitter) *Engine {
	if em != nil {
		e.emitter = em
	}
	return e
}

// WithMetrics sets the metrics collector.
func (e *Engine) WithMetrics(c metrics.Collector) *Engine {
	if c != nil {
		e.collector = c
	}
	return e
}

// lockUser acquires the per-user mutex and returns its unlock func.
func (e *Engine) lockUser(userID string) func() {
	e.mu.Lock()
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// loadEntry loads and repairs a user's entry.
func (e *Engine) loadEntry(ctx context.Context, userID string, now time.Time) (*note.Entry, error) {
	entry, err := e.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	entry.Normalize(now)
	return entry, nil
}

// saveEntry stamps and persists a user's entry.
func (e *Engine) saveEntry(ctx context.Context, userID string, entry *note.Entry, now time.Time) error {
	entry.UpdatedAt = now.Unix()
	return e.store.Save(ctx, userID, entry)
}

// event is a telemetry record queued while the per-user lock is held and
// flushed after release, so emitter I/O never extends the critical section.
type event struct {
	name   string
	fields map[string]any
}

// flush emits queued events for a user.
func (e *Engine) flush(userID string, events []event) {
	for _, ev := range events {
		e.emitter.Emit(ev.name, userID, ev.fields)
	}
}

// notePruned queues a pruning event when lazy pruning removed anything.
func (e *Engine) notePruned(events *[]event, removed, remaining int) {
	if removed <= 0 {
		return
	}
	*events = append(*events, event{"memory_pruned", map[string]any{
		"removed":   removed,
		"remaining": remaining,
	}})
}

// finish records operation metrics and, on failure, the error class.
func (e *Engine) finish(ctx context.Context, op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		e.collector.RecordError(ctx, op, ClassifyError(err))
		if e.logger != nil {
			e.logger.Error("operation failed", "operation", op, "error", err)
		}
	}
	e.collector.RecordOperation(ctx, op, status, time.Since(start).Milliseconds())
}

// updateStoredGauges refreshes the per-tier note count gauges.
func (e *Engine) updateStoredGauges(ctx context.Context, entry *note.Entry) {
	counts := map[note.Tier]int64{
		note.TierProfile:    0,
		note.TierPreference: 0,
		note.TierSession:    0,
	}
	for i := range entry.Notes {
		counts[entry.Notes[i].Tier]++
	}
	for tier, count := range counts {
		e.collector.SetNotesStored(ctx, string(tier), count)
	}
}
