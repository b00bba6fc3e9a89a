package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"fintrack/internal/core"
)

type summaryResponse struct {
	core.SummaryStats
	Currency  string            `json:"currency"`
	Formatted map[string]string `json:"formatted"`
}

type analyticsResponse struct {
	Comparison core.MonthComparison `json:"comparison"`
	Breakdown  []core.CategoryTotal `json:"breakdown"`
}

type categoriesResponse struct {
	Expense []string `json:"expense"`
	Income  []string `json:"income"`
}

// cachedJSON serves the encoded result of compute, memoised per ledger
// revision and calendar month so any mutation or month change misses.
func (s *Server) cachedJSON(w http.ResponseWriter, r *http.Request, name, params string, compute func() any) {
	key := fmt.Sprintf("%s|%d|%s|%s", name, s.ledger.Revision(), s.ledger.Now().Format("2006-01"), params)
	body, err := s.views.GetOrCompute(key, func() ([]byte, error) {
		return json.Marshal(compute())
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONBytes(w, http.StatusOK, body)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.cachedJSON(w, r, "summary", "", func() any {
		stats := s.ledger.Transactions.Summary(s.ledger.Now())
		currency := s.ledger.Settings.Get().Currency
		return summaryResponse{
			SummaryStats: stats,
			Currency:     currency,
			Formatted: map[string]string{
				"totalBalance":    core.FormatCurrency(stats.TotalBalance, currency),
				"monthlyIncome":   core.FormatCurrency(stats.MonthlyIncome, currency),
				"monthlyExpenses": core.FormatCurrency(stats.MonthlyExpenses, currency),
				"monthlyBalance":  core.FormatCurrency(stats.MonthlyBalance, currency),
				"savingsRate":     core.FormatPercentage(stats.SavingsRate, 1),
			},
		}
	})
}

// handleTrend reports ?months=N trailing months, defaulting to the
// trendMonths setting.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	months := intParam(r.URL.Query(), "months", s.ledger.Settings.Get().TrendMonths)
	if months > 120 {
		writeError(w, http.StatusBadRequest, "months must be at most 120")
		return
	}
	s.cachedJSON(w, r, "trend", strconv.Itoa(months), func() any {
		return core.MonthlyTrend(s.ledger.Transactions.List(), months, s.ledger.Now())
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	s.cachedJSON(w, r, "analytics", "", func() any {
		txns := s.ledger.Transactions.List()
		now := s.ledger.Now()
		return analyticsResponse{
			Comparison: core.CompareMonths(txns, now),
			Breakdown:  core.ExpenseBreakdown(txns, now),
		}
	})
}

// handleCategories lists the suggested categories of each type followed by
// any other category already in use.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.cachedJSON(w, r, "categories", "", func() any {
		out := categoriesResponse{
			Expense: slices.Clone(core.DefaultCategories[core.Expense]),
			Income:  slices.Clone(core.DefaultCategories[core.Income]),
		}
		for _, t := range s.ledger.Transactions.List() {
			switch t.Type {
			case core.Expense:
				if !slices.Contains(out.Expense, t.Category) {
					out.Expense = append(out.Expense, t.Category)
				}
			case core.Income:
				if !slices.Contains(out.Income, t.Category) {
					out.Income = append(out.Income, t.Category)
				}
			}
		}
		return out
	})
}
