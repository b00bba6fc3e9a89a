package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// TransactionService holds the transaction list, newest first.
type TransactionService struct {
	mu      sync.RWMutex
	items   []core.Transaction
	persist *persister
	opts    Options
}

func NewTransactionService(store storage.Store, opts Options) *TransactionService {
	opts = opts.withDefaults()
	return &TransactionService{
		persist: newPersister(store, storage.KeyTransactions, CollectionTransactions, opts),
		opts:    opts,
	}
}

// Load replaces the in-memory list with the stored snapshot.
func (s *TransactionService) Load(ctx context.Context) error {
	var items []core.Transaction
	ok, err := s.persist.load(ctx, &items)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	if !ok {
		items = nil
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.opts.Logger.InfoContext(ctx, "Transactions loaded", log.FieldCount, len(items))
	return nil
}

// Add validates in, stamps id and timestamps and puts the record first.
func (s *TransactionService) Add(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	t, err := core.BuildTransaction(in)
	if err != nil {
		return core.Transaction{}, err
	}
	now := s.opts.Now().UTC()
	t.ID = s.opts.NewID()
	t.CreatedAt = now
	t.UpdatedAt = now

	s.mu.Lock()
	s.items = append([]core.Transaction{t}, s.items...)
	s.persist.save(ctx, s.items)
	s.mu.Unlock()

	s.persist.notify(ctx, OpCreated, t.ID)
	return t, nil
}

// Update replaces the editable fields of record id. Validation runs first;
// an unknown id is then a no-op reported as found == false.
func (s *TransactionService) Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, bool, error) {
	next, err := core.BuildTransaction(in)
	if err != nil {
		return core.Transaction{}, false, err
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return core.Transaction{}, false, nil
	}
	cur := s.items[i]
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = s.opts.Now().UTC()

	updated := append([]core.Transaction(nil), s.items...)
	updated[i] = next
	s.items = updated
	s.persist.save(ctx, s.items)
	s.mu.Unlock()

	s.persist.notify(ctx, OpUpdated, id)
	return next, true, nil
}

// Delete removes record id and reports whether it existed.
func (s *TransactionService) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	remaining := make([]core.Transaction, 0, len(s.items)-1)
	remaining = append(remaining, s.items[:i]...)
	remaining = append(remaining, s.items[i+1:]...)
	s.items = remaining
	s.persist.save(ctx, s.items)
	s.mu.Unlock()

	s.persist.notify(ctx, OpDeleted, id)
	return true
}

func (s *TransactionService) Get(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return core.Transaction{}, false
}

// List returns a copy in storage order.
func (s *TransactionService) List() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction{}, s.items...)
}

func (s *TransactionService) View(q core.ViewQuery) core.Page[core.Transaction] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.DeriveView(s.items, q)
}

func (s *TransactionService) Summary(now time.Time) core.SummaryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Summary(s.items, now)
}

// Revision increases with every mutation.
func (s *TransactionService) Revision() uint64 {
	return s.persist.revision.Load()
}

// LastPersistError is the outcome of the most recent save.
func (s *TransactionService) LastPersistError() error {
	return s.persist.err()
}

func (s *TransactionService) indexOf(id string) int {
	for i, t := range s.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}
