package http

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type goalListResponse struct {
	Goals        []services.GoalProgress `json:"goals"`
	TotalTarget  decimal.Decimal         `json:"totalTarget"`
	TotalCurrent decimal.Decimal         `json:"totalCurrent"`
}

type contributionRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, goalListResponse{
		Goals:        s.ledger.GoalsWithProgress(),
		TotalTarget:  s.ledger.Goals.TotalTarget(),
		TotalCurrent: s.ledger.Goals.TotalCurrent(),
	})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var in core.GoalInput
	if !s.decodeDomainJSON(w, r, &in) {
		return
	}
	g, err := s.ledger.Goals.Add(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.withProgress(g))
}

// handleUpdateGoal applies a partial edit; absent fields are unchanged.
func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var patch core.GoalPatch
	if !s.decodeDomainJSON(w, r, &patch) {
		return
	}
	g, found, err := s.ledger.Goals.Update(r.Context(), r.PathValue("id"), patch)
	s.writeGoalResult(w, r, g, found, err)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req contributionRequest
	if !s.decodeDomainJSON(w, r, &req) {
		return
	}
	g, found, err := s.ledger.Goals.AddAmount(r.Context(), r.PathValue("id"), req.Amount)
	s.writeGoalResult(w, r, g, found, err)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	s.ledger.Goals.Delete(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeGoalResult(w http.ResponseWriter, r *http.Request, g core.SavingsGoal, found bool, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	writeJSON(w, http.StatusOK, s.withProgress(g))
}

func (s *Server) withProgress(g core.SavingsGoal) services.GoalProgress {
	return services.GoalProgress{SavingsGoal: g, Progress: core.ProgressOf(g, s.ledger.Now())}
}

// decodeDomainJSON decodes the body, answering 422 for an unparseable date
// and 400 for anything else that is not valid JSON.
func (s *Server) decodeDomainJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := decodeJSON(w, r, dst)
	switch {
	case err == nil:
		return true
	case errors.Is(err, core.ErrInvalidDate):
		writeServiceError(w, r, core.ErrInvalidDate)
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
	return false
}
