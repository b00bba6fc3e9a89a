package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GoalInput is the data needed to open a savings goal.
type GoalInput struct {
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Deadline      Date            `json:"deadline"`
}

// Validate mirrors the rules applied when a goal is created.
func (in GoalInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" || in.TargetAmount.IsZero() || in.Deadline.IsZero() {
		return ErrInvalidGoal
	}
	if !in.TargetAmount.IsPositive() {
		return ErrInvalidGoalTarget
	}
	if in.CurrentAmount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// GoalPatch is a partial edit; nil fields are left untouched.
type GoalPatch struct {
	Name          *string          `json:"name,omitempty"`
	TargetAmount  *decimal.Decimal `json:"targetAmount,omitempty"`
	CurrentAmount *decimal.Decimal `json:"currentAmount,omitempty"`
	Deadline      *Date            `json:"deadline,omitempty"`
}

// Apply returns g with the patch applied. Completed is set once the goal is
// funded and never cleared by a patch.
func (p GoalPatch) Apply(g SavingsGoal) (SavingsGoal, error) {
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return g, ErrInvalidGoal
		}
		g.Name = *p.Name
	}
	if p.TargetAmount != nil {
		if !p.TargetAmount.IsPositive() {
			return g, ErrInvalidGoalTarget
		}
		g.TargetAmount = *p.TargetAmount
	}
	if p.CurrentAmount != nil {
		if p.CurrentAmount.IsNegative() {
			return g, ErrInvalidAmount
		}
		g.CurrentAmount = *p.CurrentAmount
	}
	if p.Deadline != nil {
		if p.Deadline.IsZero() {
			return g, ErrInvalidGoal
		}
		g.Deadline = *p.Deadline
	}
	if g.IsReached() {
		g.Completed = true
	}
	return g, nil
}

// GoalProgress is the derived view of a goal at a point in time.
type GoalProgress struct {
	Percentage      float64         `json:"percentage"`
	Remaining       decimal.Decimal `json:"remaining"`
	MonthsRemaining int             `json:"monthsRemaining"`
	MonthlyTarget   decimal.Decimal `json:"monthlyTarget"`
}

// ProgressOf computes how far g is and how much must be saved per month to
// meet the deadline.
func ProgressOf(g SavingsGoal, now time.Time) GoalProgress {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	months := MonthsBetween(now, g.Deadline.Time)
	monthly := decimal.Zero
	if remaining.IsPositive() && months > 0 {
		monthly = remaining.Div(decimal.NewFromInt(int64(months)))
	}
	return GoalProgress{
		Percentage:      ProgressPercentage(g.CurrentAmount, g.TargetAmount),
		Remaining:       remaining,
		MonthsRemaining: months,
		MonthlyTarget:   monthly,
	}
}

func TotalSavingsTarget(goals []SavingsGoal) decimal.Decimal {
	total := decimal.Zero
	for _, g := range goals {
		total = total.Add(g.TargetAmount)
	}
	return total
}

func TotalCurrentSavings(goals []SavingsGoal) decimal.Decimal {
	total := decimal.Zero
	for _, g := range goals {
		total = total.Add(g.CurrentAmount)
	}
	return total
}
