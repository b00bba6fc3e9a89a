package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// BudgetService keeps at most one budget per category.
type BudgetService struct {
	mu      sync.RWMutex
	items   []core.Budget
	persist *persister
	opts    Options
}

func NewBudgetService(store storage.Store, opts Options) *BudgetService {
	opts = opts.withDefaults()
	return &BudgetService{
		persist: newPersister(store, storage.KeyBudgets, CollectionBudgets, opts),
		opts:    opts,
	}
}

func (s *BudgetService) Load(ctx context.Context) error {
	var items []core.Budget
	ok, err := s.persist.load(ctx, &items)
	if err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}
	if !ok {
		items = nil
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.opts.Logger.InfoContext(ctx, "Budgets loaded", log.FieldCount, len(items))
	return nil
}

// Set creates the budget for category or updates its amount in place.
func (s *BudgetService) Set(ctx context.Context, category string, amount decimal.Decimal) (core.Budget, error) {
	if err := core.ValidateBudget(category, amount); err != nil {
		return core.Budget{}, err
	}
	category = strings.TrimSpace(category)
	now := s.opts.Now().UTC()

	s.mu.Lock()
	items := append([]core.Budget(nil), s.items...)
	op := OpUpdated
	var b core.Budget
	if i := s.indexOf(category); i >= 0 {
		items[i].Amount = amount
		items[i].UpdatedAt = now
		b = items[i]
	} else {
		op = OpCreated
		b = core.Budget{ID: s.opts.NewID(), Category: category, Amount: amount, UpdatedAt: now}
		items = append(items, b)
	}
	s.items = items
	s.persist.save(ctx, s.items)
	s.mu.Unlock()

	s.persist.notify(ctx, op, b.ID)
	return b, nil
}

// Remove deletes the budget for category, reporting whether one existed.
func (s *BudgetService) Remove(ctx context.Context, category string) bool {
	s.mu.Lock()
	i := s.indexOf(category)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	id := s.items[i].ID
	remaining := make([]core.Budget, 0, len(s.items)-1)
	remaining = append(remaining, s.items[:i]...)
	remaining = append(remaining, s.items[i+1:]...)
	s.items = remaining
	s.persist.save(ctx, s.items)
	s.mu.Unlock()

	s.persist.notify(ctx, OpDeleted, id)
	return true
}

func (s *BudgetService) Get(category string) (core.Budget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(category); i >= 0 {
		return s.items[i], true
	}
	return core.Budget{}, false
}

func (s *BudgetService) List() []core.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Budget{}, s.items...)
}

func (s *BudgetService) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.TotalBudget(s.items)
}

// Report evaluates every budget against this month's expenses in txns.
func (s *BudgetService) Report(txns []core.Transaction, now time.Time) []core.BudgetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.BudgetReport(s.items, txns, now)
}

func (s *BudgetService) Revision() uint64 {
	return s.persist.revision.Load()
}

func (s *BudgetService) LastPersistError() error {
	return s.persist.err()
}

func (s *BudgetService) indexOf(category string) int {
	for i, b := range s.items {
		if b.Category == category {
			return i
		}
	}
	return -1
}
