package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// GoalService holds savings goals in creation order.
type GoalService struct {
	mu      sync.RWMutex
	items   []core.SavingsGoal
	persist *persister
	opts    Options
}

func NewGoalService(store storage.Store, opts Options) *GoalService {
	opts = opts.withDefaults()
	return &GoalService{
		persist: newPersister(store, storage.KeyGoals, CollectionGoals, opts),
		opts:    opts,
	}
}

func (s *GoalService) Load(ctx context.Context) error {
	var items []core.SavingsGoal
	ok, err := s.persist.load(ctx, &items)
	if err != nil {
		return fmt.Errorf("load savings goals: %w", err)
	}
	if !ok {
		items = nil
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.opts.Logger.InfoContext(ctx, "Savings goals loaded", log.FieldCount, len(items))
	return nil
}

func (s *GoalService) Add(ctx context.Context, in core.GoalInput) (core.SavingsGoal, error) {
	if err := in.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	now := s.opts.Now().UTC()
	g := core.SavingsGoal{
		ID:            s.opts.NewID(),
		Name:          strings.TrimSpace(in.Name),
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Deadline:      in.Deadline,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	s.items = append(append([]core.SavingsGoal(nil), s.items...), g)
	s.persist.save(ctx, s.items)
	s.mu.Unlock()

	s.persist.notify(ctx, OpCreated, g.ID)
	return g, nil
}

// Update applies patch to goal id. An unknown id is a no-op.
func (s *GoalService) Update(ctx context.Context, id string, patch core.GoalPatch) (core.SavingsGoal, bool, error) {
	return s.modify(ctx, id, func(g core.SavingsGoal) (core.SavingsGoal, error) {
		return patch.Apply(g)
	})
}

// AddAmount contributes amount to goal id and re-derives Completed from the
// new balance. amount must be positive.
func (s *GoalService) AddAmount(ctx context.Context, id string, amount decimal.Decimal) (core.SavingsGoal, bool, error) {
	if !amount.IsPositive() {
		return core.SavingsGoal{}, false, core.ErrInvalidAmount
	}
	return s.modify(ctx, id, func(g core.SavingsGoal) (core.SavingsGoal, error) {
		g.CurrentAmount = g.CurrentAmount.Add(amount)
		g.Completed = g.IsReached()
		return g, nil
	})
}

func (s *GoalService) modify(ctx context.Context, id string, fn func(core.SavingsGoal) (core.SavingsGoal, error)) (core.SavingsGoal, bool, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return core.SavingsGoal{}, false, nil
	}
	g, err := fn(s.items[i])
	if err != nil {
		s.mu.Unlock()
		return core.SavingsGoal{}, true, err
	}
	g.UpdatedAt = s.opts.Now().UTC()

	items := append([]core.SavingsGoal(nil), s.items...)
	items[i] = g
	s.items = items
	s.persist.save(ctx, s.items)
	s.mu.Unlock()

	s.persist.notify(ctx, OpUpdated, id)
	return g, true, nil
}

func (s *GoalService) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	remaining := make([]core.SavingsGoal, 0, len(s.items)-1)
	remaining = append(remaining, s.items[:i]...)
	remaining = append(remaining, s.items[i+1:]...)
	s.items = remaining
	s.persist.save(ctx, s.items)
	s.mu.Unlock()

	s.persist.notify(ctx, OpDeleted, id)
	return true
}

func (s *GoalService) Get(id string) (core.SavingsGoal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return core.SavingsGoal{}, false
}

func (s *GoalService) List() []core.SavingsGoal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.SavingsGoal{}, s.items...)
}

func (s *GoalService) TotalTarget() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.TotalSavingsTarget(s.items)
}

func (s *GoalService) TotalCurrent() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.TotalCurrentSavings(s.items)
}

func (s *GoalService) Revision() uint64 {
	return s.persist.revision.Load()
}

func (s *GoalService) LastPersistError() error {
	return s.persist.err()
}

func (s *GoalService) indexOf(id string) int {
	for i, g := range s.items {
		if g.ID == id {
			return i
		}
	}
	return -1
}
