// Package ledger tracks which notification dedup keys have already fired.
// An in-memory set is the fast path; a persisted store survives restarts.
// When the store is unavailable the ledger degrades to per-process
// deduplication instead of failing closed.
package ledger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Retention is how long a fired key keeps suppressing re-sends. The date
// component of dedup keys makes the next day a fresh key anyway.
const Retention = 24 * time.Hour

// PurgeBatch bounds how many persisted records a single PurgeExpired call
// removes.
const PurgeBatch = 100

// Store is the persisted side of the ledger, typically a database table
// keyed by dedup key.
type Store interface {
	GetSent(ctx context.Context, key string) (time.Time, bool, error)
	PutSent(ctx context.Context, key string, sentAt time.Time) error
	DeleteSent(ctx context.Context, key string) error
	ListSentOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

// Ledger owns deduplication state. Safe for concurrent use.
type Ledger struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	store Store
	log   *zap.Logger

	degradedWarned bool // store failure already logged this pass
}

// New creates a Ledger backed by the given store. store may be nil for a
// purely in-memory ledger (used in tests).
func New(store Store, log *zap.Logger) *Ledger {
	return &Ledger{
		seen:  make(map[string]time.Time),
		store: store,
		log:   log,
	}
}

// BeginPass resets per-pass state. Call once at the start of each evaluation
// pass so store-failure warnings appear once per pass, not once per key.
func (l *Ledger) BeginPass() {
	l.mu.Lock()
	l.degradedWarned = false
	l.mu.Unlock()
}

// HasFired reports whether the key already fired within the retention
// window. The in-memory set is consulted first; on a miss the persisted
// store is checked and a fresh hit is backfilled into memory. An expired
// persisted record is deleted and reported as not fired.
func (l *Ledger) HasFired(ctx context.Context, key string, now time.Time) bool {
	l.mu.Lock()
	if sentAt, ok := l.seen[key]; ok {
		if now.Sub(sentAt) <= Retention {
			l.mu.Unlock()
			return true
		}
		delete(l.seen, key)
	}
	l.mu.Unlock()

	if l.store == nil {
		return false
	}
	sentAt, ok, err := l.store.GetSent(ctx, key)
	if err != nil {
		l.warnDegraded(err)
		return false
	}
	if !ok {
		return false
	}
	if now.Sub(sentAt) > Retention {
		if err := l.store.DeleteSent(ctx, key); err != nil {
			l.warnDegraded(err)
		}
		return false
	}
	l.mu.Lock()
	l.seen[key] = sentAt
	l.mu.Unlock()
	return true
}

// MarkFired records a successful delivery. The in-memory write happens
// unconditionally: delivery already happened, so losing the durable copy is
// acceptable degradation while losing the fast path is not.
func (l *Ledger) MarkFired(ctx context.Context, key string, sentAt time.Time) {
	l.mu.Lock()
	l.seen[key] = sentAt
	l.mu.Unlock()

	if l.store == nil {
		return
	}
	if err := l.store.PutSent(ctx, key, sentAt); err != nil {
		l.warnDegraded(err)
	}
}

// PurgeExpired drops in-memory entries past retention and removes up to
// PurgeBatch expired persisted records.
func (l *Ledger) PurgeExpired(ctx context.Context, now time.Time) {
	cutoff := now.Add(-Retention)

	l.mu.Lock()
	removed := 0
	for key, sentAt := range l.seen {
		if sentAt.Before(cutoff) {
			delete(l.seen, key)
			removed++
		}
	}
	l.mu.Unlock()
	if removed > 0 && l.log != nil {
		l.log.Debug("purged in-memory dedup entries", zap.Int("count", removed))
	}

	if l.store == nil {
		return
	}
	keys, err := l.store.ListSentOlderThan(ctx, cutoff, PurgeBatch)
	if err != nil {
		l.warnDegraded(err)
		return
	}
	for _, key := range keys {
		if err := l.store.DeleteSent(ctx, key); err != nil {
			l.warnDegraded(err)
			return
		}
	}
	if len(keys) > 0 && l.log != nil {
		l.log.Debug("purged persisted dedup entries", zap.Int("count", len(keys)))
	}
}

// warnDegraded logs a store failure at most once per pass.
func (l *Ledger) warnDegraded(err error) {
	l.mu.Lock()
	warned := l.degradedWarned
	l.degradedWarned = true
	l.mu.Unlock()
	if !warned && l.log != nil {
		l.log.Warn("ledger store unavailable, in-memory dedup only", zap.Error(err))
	}
}
