package csvio

import (
	"bufio"
	"io"
	"strings"
	"time"

	"fintrack/internal/core"
)

// ExportColumns is the header written by Export.
var ExportColumns = []string{"id", "type", "amount", "description", "category", "date", "createdAt", "updatedAt"}

// Export writes txns in the given order with every value double-quoted.
// An empty list produces no output at all.
func Export(w io.Writer, txns []core.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	bw := bufio.NewWriter(w)
	writeRow(bw, ExportColumns)
	for _, t := range txns {
		writeRow(bw, []string{
			t.ID,
			string(t.Type),
			t.Amount.String(),
			t.Description,
			t.Category,
			t.Date.String(),
			timestamp(t.CreatedAt),
			timestamp(t.UpdatedAt),
		})
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, values []string) {
	for i, v := range values {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(v, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
