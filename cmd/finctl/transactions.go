package main

import (
	"fmt"

	"fintrack/internal/core"
)

type addCmd struct {
	Type        string `arg help:"income or expense."`
	Amount      string `arg help:"Amount, e.g. 12.50."`
	Description string `arg help:"Short description (at most 100 characters)."`
	Category    string `short:"c" required help:"Category."`
	Date        string `short:"d" help:"Date as YYYY-MM-DD (default today)."`
}

func (c *addCmd) Run(s *session) error {
	date := c.Date
	if date == "" {
		date = core.DateOf(s.ledger.Now()).String()
	}
	tx, err := s.ledger.Transactions.Add(s.ctx, core.TransactionInput{
		Type:        c.Type,
		Amount:      c.Amount,
		Description: c.Description,
		Category:    c.Category,
		Date:        date,
	})
	if err != nil {
		return err
	}
	if err := s.persisted(); err != nil {
		return err
	}
	s.printf("Added %s %s %s on %s (%s)\n", tx.Type, s.money(tx.Amount), tx.Description, tx.Date, tx.ID)
	return nil
}

type listCmd struct {
	Type     string `short:"t" help:"Only income or expense."`
	Category string `short:"c" help:"Only this category."`
	Start    string `help:"Earliest date, YYYY-MM-DD."`
	End      string `help:"Latest date, YYYY-MM-DD."`
	Search   string `short:"s" help:"Case-insensitive text in the description."`
	Sort     string `default:"date" help:"Sort field: date, amount, description, category or type."`
	Dir      string `default:"desc" help:"Sort direction: asc or desc."`
	Page     int    `short:"p" default:"1" help:"Page number, from 1."`
	Size     int    `help:"Items per page (default from settings)."`
}

func (c *listCmd) query(defaultSize int) (core.ViewQuery, error) {
	q := core.ViewQuery{
		Filter: core.Filter{
			Type:     core.TransactionType(c.Type),
			Category: c.Category,
			Search:   c.Search,
		},
		SortField:     c.Sort,
		SortDirection: core.SortDirection(c.Dir),
		Page:          c.Page,
		PageSize:      c.Size,
	}
	if q.PageSize == 0 {
		q.PageSize = defaultSize
	}
	if q.SortDirection != core.Asc && q.SortDirection != core.Desc {
		return q, fmt.Errorf("invalid sort direction %q", c.Dir)
	}
	var err error
	if c.Start != "" {
		if q.Filter.StartDate, err = core.ParseDate(c.Start); err != nil {
			return q, fmt.Errorf("start: %w", err)
		}
	}
	if c.End != "" {
		if q.Filter.EndDate, err = core.ParseDate(c.End); err != nil {
			return q, fmt.Errorf("end: %w", err)
		}
	}
	return q, nil
}

func (c *listCmd) Run(s *session) error {
	q, err := c.query(s.ledger.Settings.Get().ItemsPerPage)
	if err != nil {
		return err
	}
	page := s.ledger.Transactions.View(q)

	table := newTable(s.out, "ID", "Date", "Type", "Category", "Description", "Amount")
	for _, t := range page.Items {
		table.Append([]string{t.ID, t.Date.String(), string(t.Type), t.Category, t.Description, s.money(t.Amount)})
	}
	table.Render()
	s.printf("Page %d of %d, %d transactions\n", page.CurrentPage, page.TotalPages, page.TotalItems)
	return nil
}

type deleteCmd struct {
	ID string `arg help:"Transaction id."`
}

func (c *deleteCmd) Run(s *session) error {
	if !s.ledger.Transactions.Delete(s.ctx, c.ID) {
		s.printf("No transaction with id %s\n", c.ID)
		return nil
	}
	if err := s.persisted(); err != nil {
		return err
	}
	s.printf("Deleted %s\n", c.ID)
	return nil
}

type summaryCmd struct{}

func (c *summaryCmd) Run(s *session) error {
	now := s.ledger.Now()
	txns := s.ledger.Transactions.List()
	stats := core.Summary(txns, now)
	cmp := core.CompareMonths(txns, now)

	table := newTable(s.out, "Metric", "Value")
	table.Append([]string{"Total balance", s.money(stats.TotalBalance)})
	table.Append([]string{"Income this month", s.money(stats.MonthlyIncome)})
	table.Append([]string{"Expenses this month", s.money(stats.MonthlyExpenses)})
	table.Append([]string{"Balance this month", s.money(stats.MonthlyBalance)})
	table.Append([]string{"Savings rate", percent(stats.SavingsRate)})
	table.Append([]string{"Income vs last month", percent(cmp.IncomeTrend)})
	table.Append([]string{"Expenses vs last month", percent(cmp.ExpenseTrend)})
	table.Append([]string{"Average transaction", s.money(cmp.AverageAmount)})
	table.Append([]string{"Transactions this month", fmt.Sprint(stats.MonthlyTransactions)})
	table.Append([]string{"Transactions overall", fmt.Sprint(stats.TotalTransactions)})
	table.Render()

	if breakdown := core.ExpenseBreakdown(txns, now); len(breakdown) > 0 {
		table := newTable(s.out, "Category", "Spent", "Count")
		for _, b := range breakdown {
			table.Append([]string{b.Category, s.money(b.Amount), fmt.Sprint(b.Count)})
		}
		table.Render()
	}
	return nil
}

type trendCmd struct {
	Months int `short:"m" help:"Number of months (default from settings)."`
}

func (c *trendCmd) Run(s *session) error {
	months := c.Months
	if months <= 0 {
		months = s.ledger.Settings.Get().TrendMonths
	}
	table := newTable(s.out, "Month", "Income", "Expenses", "Balance")
	for _, m := range core.MonthlyTrend(s.ledger.Transactions.List(), months, s.ledger.Now()) {
		table.Append([]string{m.Label, s.money(m.Income), s.money(m.Expenses), s.money(m.Balance)})
	}
	table.Render()
	return nil
}
