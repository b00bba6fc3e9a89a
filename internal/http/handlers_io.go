package http

import (
	"bytes"
	"net/http"

	"fintrack/internal/csvio"
	"fintrack/internal/log"
)

// handleImport reads a CSV body and answers with the per-row report. Rows
// that fail do not stop the import.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	im := csvio.Importer{
		Target: s.ledger.Transactions,
		Logger: log.FromContext(r.Context()).WithComponent(log.ComponentCSV),
	}
	report, err := im.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := csvio.Export(&buf, s.ledger.Transactions.List()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
