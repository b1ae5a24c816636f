package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/ripple/internal/badge"
	"github.com/roach88/ripple/internal/domain"
	"github.com/roach88/ripple/internal/policy"
)

// Observer receives an operation's events in seq order, after the
// transaction that appended them has committed. It runs on the caller's
// goroutine.
type Observer func(domain.Event)

// Ledger is the entry point for every ledger operation.
// It is safe for concurrent use.
type Ledger struct {
	store    Store
	policy   policy.Policy
	badges   *badge.Engine
	logger   *slog.Logger
	now      func() time.Time
	observer Observer

	locks *keyLocks
	ids   *idSource
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPolicy overrides policy.Default().
func WithPolicy(p policy.Policy) Option {
	return func(l *Ledger) { l.policy = p }
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithClock sets the wall-clock source used for deadlines and timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithObserver registers a callback for committed events.
func WithObserver(o Observer) Option {
	return func(l *Ledger) { l.observer = o }
}

// New creates a Ledger over store.
//
// Event seqs are assigned by the store inside each write transaction, so
// several ledgers, in one process or many, can share a database.
func New(ctx context.Context, store Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:  store,
		policy: policy.Default(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		locks:  newKeyLocks(),
		ids:    newIDSource(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.badges = badge.New(l.policy)

	var last int64
	err := store.View(ctx, func(tx Tx) error {
		var err error
		last, err = tx.LastEventSeq(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read last event seq: %w", err)
	}
	l.logger.Debug("ledger opened", "last_seq", last)

	return l, nil
}

// Policy returns the policy the ledger enforces.
func (l *Ledger) Policy() policy.Policy {
	return l.policy
}

// clockNow returns the current wall time in UTC without a monotonic reading,
// so it round-trips through storage unchanged.
func (l *Ledger) clockNow() time.Time {
	return l.now().Round(0).UTC()
}

// op carries the state of one mutating operation's transaction.
type op struct {
	ctx    context.Context
	l      *Ledger
	tx     Tx
	now    time.Time
	events []domain.Event
}

// emit stamps e and appends it to the store's event log within the
// current transaction. The store assigns the seq.
func (o *op) emit(e domain.Event) error {
	e.At = o.now
	e.ID = o.l.ids.New(o.now)
	seq, err := o.tx.AppendEvent(o.ctx, e)
	if err != nil {
		return fmt.Errorf("append %s event: %w", e.Kind, err)
	}
	e.Seq = seq
	o.events = append(o.events, e)
	return nil
}

// run locks keys, executes fn in one store transaction and, after commit,
// notifies the observer.
func (l *Ledger) run(ctx context.Context, now time.Time, keys []string, fn func(o *op) error) error {
	unlock := l.locks.Lock(keys...)
	defer unlock()

	var committed []domain.Event
	err := l.store.Update(ctx, func(tx Tx) error {
		o := &op{ctx: ctx, l: l, tx: tx, now: now}
		if err := fn(o); err != nil {
			return err
		}
		committed = o.events
		return nil
	})
	if err != nil {
		return err
	}

	if l.observer != nil {
		for _, e := range committed {
			l.observer(e)
		}
	}
	return nil
}

// view runs fn in a read-only transaction.
func (l *Ledger) view(ctx context.Context, fn func(tx Tx) error) error {
	return l.store.View(ctx, fn)
}
