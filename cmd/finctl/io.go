package main

import (
	"fmt"
	"os"

	"fintrack/internal/csvio"
	"fintrack/internal/log"
)

type importCmd struct {
	File string `arg help:"CSV file with a header row."`
}

func (c *importCmd) Run(s *session) error {
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	im := csvio.Importer{Target: s.ledger.Transactions, Logger: log.Default(log.ComponentCLI)}
	report, err := im.Import(s.ctx, f)
	if err != nil {
		return fmt.Errorf("import %s: %w", c.File, err)
	}
	if err := s.persisted(); err != nil {
		return err
	}

	s.printf("Imported %d transactions, %d rows failed\n", len(report.Imported), len(report.Failed))
	if len(report.Failed) > 0 {
		table := newTable(s.out, "Line", "Error")
		for _, rf := range report.Failed {
			table.Append([]string{fmt.Sprint(rf.Line), rf.Err.Error()})
		}
		table.Render()
	}
	return nil
}

type exportCmd struct {
	File string `arg optional help:"Output file; standard output when omitted or '-'."`
}

func (c *exportCmd) Run(s *session) error {
	txns := s.ledger.Transactions.List()
	if c.File == "" || c.File == "-" {
		return csvio.Export(s.out, txns)
	}

	f, err := os.Create(c.File)
	if err != nil {
		return err
	}
	if err := csvio.Export(f, txns); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.printf("Exported %d transactions to %s\n", len(txns), c.File)
	return nil
}
