package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Ledger bundles the four services over one store.
type Ledger struct {
	Transactions *TransactionService
	Budgets      *BudgetService
	Goals        *GoalService
	Settings     *SettingsService

	opts Options
}

func NewLedger(store storage.Store, opts Options) *Ledger {
	opts = opts.withDefaults()
	return &Ledger{
		Transactions: NewTransactionService(store, opts),
		Budgets:      NewBudgetService(store, opts),
		Goals:        NewGoalService(store, opts),
		Settings:     NewSettingsService(store, opts),
		opts:         opts,
	}
}

// Load reads every collection concurrently. The first failure cancels the
// rest and is returned.
func (l *Ledger) Load(ctx context.Context) error {
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.Transactions.Load(ctx) })
	g.Go(func() error { return l.Budgets.Load(ctx) })
	g.Go(func() error { return l.Goals.Load(ctx) })
	g.Go(func() error { return l.Settings.Load(ctx) })
	if err := g.Wait(); err != nil {
		return err
	}
	l.opts.Logger.InfoContext(ctx, "Ledger loaded",
		log.FieldOperation, log.OpLoad, log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// Now is the ledger's clock.
func (l *Ledger) Now() time.Time {
	return l.opts.Now()
}

// Revision changes whenever any collection changes.
func (l *Ledger) Revision() uint64 {
	return l.Transactions.Revision() + l.Budgets.Revision() + l.Goals.Revision() + l.Settings.Revision()
}

// LastPersistError joins the latest save failure of each collection.
func (l *Ledger) LastPersistError() error {
	return errors.Join(
		l.Transactions.LastPersistError(),
		l.Budgets.LastPersistError(),
		l.Goals.LastPersistError(),
		l.Settings.LastPersistError(),
	)
}

// BudgetReport evaluates budgets against the current month's transactions.
func (l *Ledger) BudgetReport() []core.BudgetStatus {
	return l.Budgets.Report(l.Transactions.List(), l.Now())
}

// GoalProgress pairs a goal with its derived progress.
type GoalProgress struct {
	core.SavingsGoal
	Progress core.GoalProgress `json:"progress"`
}

func (l *Ledger) GoalsWithProgress() []GoalProgress {
	now := l.Now()
	goals := l.Goals.List()
	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, GoalProgress{SavingsGoal: g, Progress: core.ProgressOf(g, now)})
	}
	return out
}
