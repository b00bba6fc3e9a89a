package main

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type goalCmd struct {
	Add        goalAddCmd        `cmd help:"Open a savings goal."`
	Ls         goalLsCmd         `cmd help:"Show goals and their progress."`
	Contribute goalContributeCmd `cmd help:"Add money to a goal."`
	Rm         goalRmCmd         `cmd help:"Delete a goal."`
}

type goalAddCmd struct {
	Name     string `arg help:"Goal name."`
	Target   string `arg help:"Target amount."`
	Deadline string `arg help:"Deadline as YYYY-MM-DD."`
	Current  string `default:"0" help:"Amount already saved."`
}

func (c *goalAddCmd) Run(s *session) error {
	in := core.GoalInput{Name: c.Name}
	var err error
	if in.TargetAmount, err = core.ParseAmount(c.Target); err != nil {
		return fmt.Errorf("%w: target %q", core.ErrInvalidGoalTarget, c.Target)
	}
	if in.CurrentAmount, err = decimal.NewFromString(c.Current); err != nil {
		return fmt.Errorf("%w: current %q is not a number", core.ErrInvalidAmount, c.Current)
	}
	if in.Deadline, err = core.ParseDate(c.Deadline); err != nil {
		return fmt.Errorf("deadline: %w", err)
	}

	g, err := s.ledger.Goals.Add(s.ctx, in)
	if err != nil {
		return err
	}
	if err := s.persisted(); err != nil {
		return err
	}
	s.printf("Added goal %s (%s)\n", g.Name, g.ID)
	return nil
}

type goalLsCmd struct{}

func (c *goalLsCmd) Run(s *session) error {
	table := newTable(s.out, "ID", "Name", "Saved", "Target", "Progress", "Deadline", "Per month", "Done")
	for _, g := range s.ledger.GoalsWithProgress() {
		done := ""
		if g.Completed {
			done = "yes"
		}
		table.Append([]string{
			g.ID,
			g.Name,
			s.money(g.CurrentAmount),
			s.money(g.TargetAmount),
			percent(g.Progress.Percentage),
			g.Deadline.String(),
			s.money(g.Progress.MonthlyTarget),
			done,
		})
	}
	table.SetFooter([]string{"", "", s.money(s.ledger.Goals.TotalCurrent()), s.money(s.ledger.Goals.TotalTarget()), "", "", "", ""})
	table.Render()
	return nil
}

type goalContributeCmd struct {
	ID     string `arg help:"Goal id."`
	Amount string `arg help:"Amount to add."`
}

func (c *goalContributeCmd) Run(s *session) error {
	amount, err := core.ParseAmount(c.Amount)
	if err != nil {
		return fmt.Errorf("%w: %q", err, c.Amount)
	}
	g, found, err := s.ledger.Goals.AddAmount(s.ctx, c.ID, amount)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("goal %s: %w", c.ID, core.ErrNotFound)
	}
	if err := s.persisted(); err != nil {
		return err
	}
	s.printf("%s: %s of %s saved\n", g.Name, s.money(g.CurrentAmount), s.money(g.TargetAmount))
	if g.Completed {
		s.printf("Goal reached!\n")
	}
	return nil
}

type goalRmCmd struct {
	ID string `arg help:"Goal id."`
}

func (c *goalRmCmd) Run(s *session) error {
	if !s.ledger.Goals.Delete(s.ctx, c.ID) {
		s.printf("No goal with id %s\n", c.ID)
		return nil
	}
	if err := s.persisted(); err != nil {
		return err
	}
	s.printf("Deleted goal %s\n", c.ID)
	return nil
}
