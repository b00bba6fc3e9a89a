package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type budgetRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

type budgetListResponse struct {
	Budgets []core.Budget   `json:"budgets"`
	Total   decimal.Decimal `json:"total"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, budgetListResponse{
		Budgets: s.ledger.Budgets.List(),
		Total:   s.ledger.Budgets.Total(),
	})
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	s.cachedJSON(w, r, "budgets/status", "", func() any {
		return s.ledger.BudgetReport()
	})
}

// handleSetBudget creates or replaces the budget of the category in the path.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Amount == nil {
		writeServiceError(w, r, core.ErrInvalidBudget)
		return
	}
	b, err := s.ledger.Budgets.Set(r.Context(), r.PathValue("category"), *req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleRemoveBudget(w http.ResponseWriter, r *http.Request) {
	s.ledger.Budgets.Remove(r.Context(), r.PathValue("category"))
	w.WriteHeader(http.StatusNoContent)
}
