package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetLevel classifies how much of a budget has been spent.
type BudgetLevel string

const (
	BudgetOK      BudgetLevel = "ok"
	BudgetWarning BudgetLevel = "warning"
	BudgetDanger  BudgetLevel = "danger"
)

// Alert thresholds as fractions of the budget. Both are inclusive lower bounds.
var (
	WarningThreshold = decimal.RequireFromString("0.8")
	DangerThreshold  = decimal.NewFromInt(1)
)

// BudgetStatus is the evaluation of one budget against its spending.
type BudgetStatus struct {
	Category   string          `json:"category"`
	Budget     decimal.Decimal `json:"budget"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
	Level      BudgetLevel     `json:"level"`
}

// EvaluateBudget classifies spent against budget: ok below 80%, warning from
// 80% up to 100%, danger at 100% and above. Remaining may be negative. A zero
// budget always reports 0% and ok.
func EvaluateBudget(budget, spent decimal.Decimal) BudgetStatus {
	st := BudgetStatus{
		Budget:     budget,
		Spent:      spent,
		Remaining:  budget.Sub(spent),
		Percentage: Percent(spent, budget),
		Level:      BudgetOK,
	}
	if !budget.IsPositive() {
		return st
	}
	switch {
	case spent.GreaterThanOrEqual(budget.Mul(DangerThreshold)):
		st.Level = BudgetDanger
	case spent.GreaterThanOrEqual(budget.Mul(WarningThreshold)):
		st.Level = BudgetWarning
	}
	return st
}

// BudgetReport evaluates every budget against the current month's expenses,
// in budget order.
func BudgetReport(budgets []Budget, txns []Transaction, now time.Time) []BudgetStatus {
	month := CurrentMonthTransactions(txns, now)
	spent := make(map[string]decimal.Decimal)
	for _, t := range month {
		if t.Type != Expense {
			continue
		}
		spent[t.Category] = spent[t.Category].Add(t.Amount)
	}

	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		st := EvaluateBudget(b.Amount, spent[b.Category])
		st.Category = b.Category
		out = append(out, st)
	}
	return out
}

// TotalBudget sums all budget amounts.
func TotalBudget(budgets []Budget) decimal.Decimal {
	total := decimal.Zero
	for _, b := range budgets {
		total = total.Add(b.Amount)
	}
	return total
}
