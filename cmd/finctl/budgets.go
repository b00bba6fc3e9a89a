package main

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type budgetCmd struct {
	Set budgetSetCmd `cmd help:"Create or replace the budget of a category."`
	Rm  budgetRmCmd  `cmd help:"Remove the budget of a category."`
	Ls  budgetLsCmd  `cmd help:"Show budgets against this month's spending."`
}

type budgetSetCmd struct {
	Category string `arg help:"Category."`
	Amount   string `arg help:"Monthly amount."`
}

func (c *budgetSetCmd) Run(s *session) error {
	amount, err := decimal.NewFromString(c.Amount)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", core.ErrInvalidBudget, c.Amount)
	}
	b, err := s.ledger.Budgets.Set(s.ctx, c.Category, amount)
	if err != nil {
		return err
	}
	if err := s.persisted(); err != nil {
		return err
	}
	s.printf("Budget for %s set to %s\n", b.Category, s.money(b.Amount))
	return nil
}

type budgetRmCmd struct {
	Category string `arg help:"Category."`
}

func (c *budgetRmCmd) Run(s *session) error {
	if !s.ledger.Budgets.Remove(s.ctx, c.Category) {
		s.printf("No budget for %s\n", c.Category)
		return nil
	}
	if err := s.persisted(); err != nil {
		return err
	}
	s.printf("Removed budget for %s\n", c.Category)
	return nil
}

type budgetLsCmd struct{}

func (c *budgetLsCmd) Run(s *session) error {
	table := newTable(s.out, "Category", "Budget", "Spent", "Remaining", "Used", "Level")
	for _, st := range s.ledger.BudgetReport() {
		table.Append([]string{
			st.Category,
			s.money(st.Budget),
			s.money(st.Spent),
			s.money(st.Remaining),
			percent(st.Percentage),
			string(st.Level),
		})
	}
	table.SetFooter([]string{"", s.money(s.ledger.Budgets.Total()), "", "", "", ""})
	table.Render()
	return nil
}
