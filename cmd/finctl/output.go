package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	return table
}

func (s *session) money(d decimal.Decimal) string {
	return core.FormatCurrency(d, s.ledger.Settings.Get().Currency)
}

func percent(v float64) string {
	return core.FormatPercentage(v, 1)
}

// persisted surfaces a failed save. The services only log it, but a one-shot
// command must not report success for a change that was not written.
func (s *session) persisted() error {
	if err := s.ledger.LastPersistError(); err != nil {
		return fmt.Errorf("change applied in memory but not saved: %w", err)
	}
	return nil
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
