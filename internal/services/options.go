// Package services owns the in-memory collections, persists a snapshot after
// every mutation and announces changes to an optional notifier.
package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Collection names carried by change events.
const (
	CollectionTransactions = "transactions"
	CollectionBudgets      = "budgets"
	CollectionGoals        = "savings_goals"
	CollectionSettings     = "settings"
)

// Change operations carried by change events.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// ChangeNotifier receives one call per successful mutation.
type ChangeNotifier interface {
	PublishChange(ctx context.Context, collection, op, id string) error
}

type nopNotifier struct{}

func (nopNotifier) PublishChange(context.Context, string, string, string) error { return nil }

// Options carries the collaborators shared by every service.
type Options struct {
	Now      func() time.Time
	NewID    func() string
	Notifier ChangeNotifier
	Logger   *log.Logger
}

func DefaultOptions() Options {
	return Options{
		Now:      time.Now,
		NewID:    uuid.NewString,
		Notifier: nopNotifier{},
		Logger:   log.Default(log.ComponentServices),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Now == nil {
		o.Now = d.Now
	}
	if o.NewID == nil {
		o.NewID = d.NewID
	}
	if o.Notifier == nil {
		o.Notifier = d.Notifier
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	return o
}

// persister writes one collection's snapshot under a fixed key. Failures are
// logged and remembered, never returned to the mutating caller.
type persister struct {
	store      storage.Store
	key        string
	collection string
	opts       Options
	revision   atomic.Uint64

	mu      sync.Mutex
	lastErr error
}

func newPersister(store storage.Store, key, collection string, opts Options) *persister {
	return &persister{store: store, key: key, collection: collection, opts: opts}
}

// load decodes the snapshot into dst and reports whether it did. A corrupt
// snapshot is logged and treated as missing; only read failures of the store
// itself are returned.
func (p *persister) load(ctx context.Context, dst any) (bool, error) {
	found, err := storage.LoadJSON(ctx, p.store, p.key, dst)
	if err != nil && !found {
		return false, err
	}
	if err != nil {
		p.opts.Logger.WarnContext(ctx, "Discarding unreadable snapshot",
			log.FieldKey, p.key, log.FieldError, err)
		return false, nil
	}
	return found, nil
}

func (p *persister) save(ctx context.Context, snapshot any) {
	p.revision.Add(1)
	err := storage.SaveJSON(ctx, p.store, p.key, snapshot)

	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()

	if err != nil {
		p.opts.Logger.ErrorContext(ctx, "Failed to persist snapshot",
			log.FieldKey, p.key, log.FieldOperation, log.OpPersist, log.FieldError, err)
	}
}

func (p *persister) notify(ctx context.Context, op, id string) {
	if err := p.opts.Notifier.PublishChange(ctx, p.collection, op, id); err != nil {
		p.opts.Logger.WarnContext(ctx, "Failed to publish change event",
			log.FieldCollection, p.collection, log.FieldRecordID, id, log.FieldError, err)
	}
}

func (p *persister) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}
