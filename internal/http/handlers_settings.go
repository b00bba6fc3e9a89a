package http

import (
	"net/http"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Settings.Get())
}

// handleUpdateSettings merges the body over the current settings, so a
// client may send only the fields it changes.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	next := s.ledger.Settings.Get()
	if err := decodeJSON(w, r, &next); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.ledger.Settings.Update(r.Context(), next)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
