package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the sum and count of transactions sharing a category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// MonthTrend is the income/expense rollup of one calendar month.
type MonthTrend struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"` // 1-12
	Label    string          `json:"label"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// SummaryStats is the dashboard headline block.
type SummaryStats struct {
	TotalBalance        decimal.Decimal `json:"totalBalance"`
	MonthlyIncome       decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpenses     decimal.Decimal `json:"monthlyExpenses"`
	MonthlyBalance      decimal.Decimal `json:"monthlyBalance"`
	SavingsRate         float64         `json:"savingsRate"`
	AllTimeIncome       decimal.Decimal `json:"allTimeIncome"`
	AllTimeExpenses     decimal.Decimal `json:"allTimeExpenses"`
	TotalTransactions   int             `json:"totalTransactions"`
	MonthlyTransactions int             `json:"monthlyTransactions"`
}

// MonthComparison compares the current month with the previous one.
type MonthComparison struct {
	Income            decimal.Decimal `json:"income"`
	Expenses          decimal.Decimal `json:"expenses"`
	PreviousIncome    decimal.Decimal `json:"previousIncome"`
	PreviousExpenses  decimal.Decimal `json:"previousExpenses"`
	IncomeTrend       float64         `json:"incomeTrend"`
	ExpenseTrend      float64         `json:"expenseTrend"`
	CategoryCount     int             `json:"categoryCount"`
	AverageAmount     decimal.Decimal `json:"averageAmount"`
	TransactionsCount int             `json:"transactionsCount"`
}

// MonthWindow is the closed interval [first day, last day] of a calendar month.
type MonthWindow struct {
	Start Date
	End   Date
}

// MonthWindowOf returns the window of the month containing t, in t's location.
func MonthWindowOf(t time.Time) MonthWindow {
	y, m, _ := t.Date()
	start := NewDate(y, int(m), 1)
	end := Date{Time: start.AddDate(0, 1, -1)}
	return MonthWindow{Start: start, End: end}
}

// Contains is inclusive on both ends. Zero dates are never contained.
func (w MonthWindow) Contains(d Date) bool {
	if d.IsZero() {
		return false
	}
	return !d.Before(w.Start.Time) && !d.After(w.End.Time)
}

func sumByType(txns []Transaction, typ TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if t.Type == typ {
			total = total.Add(t.Amount)
		}
	}
	return total
}

func TotalIncome(txns []Transaction) decimal.Decimal {
	return sumByType(txns, Income)
}

func TotalExpenses(txns []Transaction) decimal.Decimal {
	return sumByType(txns, Expense)
}

func Balance(txns []Transaction) decimal.Decimal {
	return TotalIncome(txns).Sub(TotalExpenses(txns))
}

// SavingsRate is (income - expenses) / income * 100, and 0 when there is no
// income.
func SavingsRate(txns []Transaction) float64 {
	income := TotalIncome(txns)
	if income.IsZero() {
		return 0
	}
	savings := income.Sub(TotalExpenses(txns))
	return savings.Div(income).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// InWindow returns the transactions dated inside w, preserving order.
func InWindow(txns []Transaction, w MonthWindow) []Transaction {
	out := make([]Transaction, 0)
	for _, t := range txns {
		if w.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// CurrentMonthTransactions filters to the calendar month containing now.
func CurrentMonthTransactions(txns []Transaction, now time.Time) []Transaction {
	return InWindow(txns, MonthWindowOf(now))
}

// CategoryTotals groups by category in order of first occurrence.
func CategoryTotals(txns []Transaction) []CategoryTotal {
	index := make(map[string]int)
	out := make([]CategoryTotal, 0)
	for _, t := range txns {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryTotal{Category: t.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
		out[i].Count++
	}
	return out
}

// ExpenseBreakdown is the category split of the current month's expenses.
func ExpenseBreakdown(txns []Transaction, now time.Time) []CategoryTotal {
	var expenses []Transaction
	for _, t := range CurrentMonthTransactions(txns, now) {
		if t.Type == Expense {
			expenses = append(expenses, t)
		}
	}
	return CategoryTotals(expenses)
}

// MonthlyTrend reports the trailing monthsBack calendar months, oldest first,
// ending with the month containing now. Each month is an independent scan over
// txns and months without transactions report zeros. A non-positive
// monthsBack falls back to DefaultTrendMonths.
func MonthlyTrend(txns []Transaction, monthsBack int, now time.Time) []MonthTrend {
	if monthsBack <= 0 {
		monthsBack = DefaultTrendMonths
	}
	y, m, _ := now.Date()
	out := make([]MonthTrend, 0, monthsBack)
	for i := monthsBack - 1; i >= 0; i-- {
		first := time.Date(y, m-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		month := InWindow(txns, MonthWindowOf(first))
		income := TotalIncome(month)
		expenses := TotalExpenses(month)
		out = append(out, MonthTrend{
			Year:     first.Year(),
			Month:    int(first.Month()),
			Label:    first.Format("Jan 2006"),
			Income:   income,
			Expenses: expenses,
			Balance:  income.Sub(expenses),
		})
	}
	return out
}

// Summary computes the dashboard headline numbers. The savings rate is that
// of the current month.
func Summary(txns []Transaction, now time.Time) SummaryStats {
	month := CurrentMonthTransactions(txns, now)
	monthlyIncome := TotalIncome(month)
	monthlyExpenses := TotalExpenses(month)
	return SummaryStats{
		TotalBalance:        Balance(txns),
		MonthlyIncome:       monthlyIncome,
		MonthlyExpenses:     monthlyExpenses,
		MonthlyBalance:      monthlyIncome.Sub(monthlyExpenses),
		SavingsRate:         SavingsRate(month),
		AllTimeIncome:       TotalIncome(txns),
		AllTimeExpenses:     TotalExpenses(txns),
		TotalTransactions:   len(txns),
		MonthlyTransactions: len(month),
	}
}

// CompareMonths contrasts the month containing now with the month before it.
func CompareMonths(txns []Transaction, now time.Time) MonthComparison {
	current := CurrentMonthTransactions(txns, now)
	y, m, _ := now.Date()
	previous := InWindow(txns, MonthWindowOf(time.Date(y, m-1, 1, 0, 0, 0, 0, time.UTC)))

	cmp := MonthComparison{
		Income:            TotalIncome(current),
		Expenses:          TotalExpenses(current),
		PreviousIncome:    TotalIncome(previous),
		PreviousExpenses:  TotalExpenses(previous),
		AverageAmount:     decimal.Zero,
		TransactionsCount: len(current),
	}
	cmp.IncomeTrend = change(cmp.Income, cmp.PreviousIncome)
	cmp.ExpenseTrend = change(cmp.Expenses, cmp.PreviousExpenses)

	categories := make(map[string]struct{})
	sum := decimal.Zero
	for _, t := range current {
		categories[t.Category] = struct{}{}
		sum = sum.Add(t.Amount)
	}
	cmp.CategoryCount = len(categories)
	if len(current) > 0 {
		cmp.AverageAmount = sum.Div(decimal.NewFromInt(int64(len(current))))
	}
	return cmp
}

func change(cur, prev decimal.Decimal) float64 {
	if !prev.IsPositive() {
		return 0
	}
	return cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// ProgressPercentage is current/target*100 capped at 100; a non-positive
// target yields 0.
func ProgressPercentage(current, target decimal.Decimal) float64 {
	if !target.IsPositive() {
		return 0
	}
	pct := current.Div(target).Mul(decimal.NewFromInt(100)).InexactFloat64()
	if pct > 100 {
		return 100
	}
	return pct
}

// MonthsBetween counts calendar month boundaries from a to b using only the
// year and month components.
func MonthsBetween(a, b time.Time) int {
	years := b.Year() - a.Year()
	months := int(b.Month()) - int(a.Month())
	return years*12 + months
}
