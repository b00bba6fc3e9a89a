// Package csvio reads and writes transactions as comma-separated text.
package csvio

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Adder is the mutation each imported row goes through.
type Adder interface {
	Add(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
}

// RowError is the failure of one data line. Line counts from 1 and includes
// the header.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

func (e RowError) MarshalJSON() ([]byte, error) {
	out := struct {
		Line   int               `json:"line"`
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields,omitempty"`
	}{Line: e.Line, Error: e.Err.Error()}
	var verr *core.ValidationError
	if errors.As(e.Err, &verr) {
		out.Fields = verr.Fields
	}
	return json.Marshal(out)
}

// ImportReport lists what happened to every row.
type ImportReport struct {
	Imported []core.Transaction `json:"imported"`
	Failed   []RowError         `json:"failed"`
}

// Err joins the row failures, or nil when every row was imported.
func (r ImportReport) Err() error {
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

type Importer struct {
	Target Adder
	Logger *log.Logger
}

// Import adds one transaction per data row. Rows are independent: a row
// that fails is recorded in the report and the rest are still attempted.
// The returned error is only set when the input cannot be read at all.
func (im Importer) Import(ctx context.Context, r io.Reader) (ImportReport, error) {
	logger := im.Logger
	if logger == nil {
		logger = log.Default(log.ComponentCSV)
	}
	report := ImportReport{Imported: []core.Transaction{}, Failed: []RowError{}}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("read header: %w", err)
	}
	columns := mapHeader(header)

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				report.Failed = append(report.Failed, RowError{Line: perr.Line, Err: perr.Err})
				continue
			}
			return report, fmt.Errorf("read row: %w", err)
		}
		if blank(record) {
			continue
		}
		line, _ := cr.FieldPos(0)

		tx, err := im.Target.Add(ctx, rowInput(columns, record))
		if err != nil {
			report.Failed = append(report.Failed, RowError{Line: line, Err: err})
			continue
		}
		report.Imported = append(report.Imported, tx)
	}

	logger.InfoContext(ctx, "CSV import finished",
		log.FieldOperation, log.OpImport,
		log.FieldCount, len(report.Imported),
		"failed", len(report.Failed))
	return report, nil
}

// mapHeader maps a lower-cased field name to its column index. Unknown
// columns are ignored.
func mapHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(unquote(h)))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func rowInput(cols map[string]int, record []string) core.TransactionInput {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(unquote(record[i]))
	}
	return core.TransactionInput{
		Type:        get(core.FieldType),
		Amount:      get(core.FieldAmount),
		Description: get(core.FieldDescription),
		Category:    get(core.FieldCategory),
		Date:        get(core.FieldDate),
	}
}

// unquote strips one pair of stray double quotes that lazy parsing leaves
// in place, e.g. on `a, "b"`.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
