package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage/memory"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// failingStore accepts reads and rejects every write once broken is set.
type failingStore struct {
	*memory.Store
	mu     sync.Mutex
	broken bool
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	broken := f.broken
	f.mu.Unlock()
	if broken {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func newTestServer(t *testing.T) (*Server, *failingStore) {
	t.Helper()
	store := &failingStore{Store: memory.New()}
	n := 0
	ledger := services.NewLedger(store, services.Options{
		Now:    func() time.Time { return testNow },
		NewID:  func() string { n++; return fmt.Sprintf("id-%d", n) },
		Logger: log.Discard(),
	})
	if err := ledger.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	srv := NewServer(":0", ledger, Options{Logger: log.Discard()})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, store
}

func do(t *testing.T, srv *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func createTx(t *testing.T, srv *Server, typ, amount, desc, category, date string) map[string]any {
	t.Helper()
	body := fmt.Sprintf(`{"type":%q,"amount":%q,"description":%q,"category":%q,"date":%q}`, typ, amount, desc, category, date)
	rr := do(t, srv, http.MethodPost, "/api/transactions", "application/json", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	return decode[map[string]any](t, rr)
}

func TestHealthAndReady(t *testing.T) {
	srv, store := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	store.mu.Lock()
	store.broken = true
	store.mu.Unlock()
	createTx(t, srv, "expense", "5", "Coffee", "Food & Dining", "2024-03-10")

	rr := do(t, srv, http.MethodGet, "/readyz", "", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 after failed save, got %d", rr.Code)
	}
	if got := decode[map[string]any](t, rr)["status"]; got != "not_ready" {
		t.Fatalf("status=%v", got)
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-ID"); got != "abc123" {
		t.Fatalf("request id not echoed: %q", got)
	}
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}

	rr = do(t, srv, http.MethodGet, "/healthz", "", "")
	if !strings.HasPrefix(rr.Header().Get("X-Request-ID"), "req_") {
		t.Fatalf("expected generated request id, got %q", rr.Header().Get("X-Request-ID"))
	}
}

func TestCreateTransaction(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantFields  []string
	}{
		{
			name:        "json",
			contentType: "application/json",
			body:        `{"type":"expense","amount":12.5,"description":"Lunch","category":"Food & Dining","date":"2024-03-10"}`,
			wantStatus:  http.StatusCreated,
		},
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"type": {"income"}, "amount": {"1000"}, "description": {"Pay"}, "category": {"Salary"}, "date": {"2024-03-01"}}.Encode(),
			wantStatus:  http.StatusCreated,
		},
		{
			name:        "every field missing",
			contentType: "application/json",
			body:        `{}`,
			wantStatus:  http.StatusUnprocessableEntity,
			wantFields:  []string{"amount", "description", "category", "type", "date"},
		},
		{
			name:        "zero amount",
			contentType: "application/json",
			body:        `{"type":"expense","amount":"0","description":"x","category":"y","date":"2024-03-10"}`,
			wantStatus:  http.StatusUnprocessableEntity,
			wantFields:  []string{"amount"},
		},
		{
			name:        "malformed date",
			contentType: "application/json",
			body:        `{"type":"expense","amount":"3","description":"x","category":"y","date":"10/03/2024"}`,
			wantStatus:  http.StatusUnprocessableEntity,
			wantFields:  []string{"date"},
		},
		{
			name:        "broken json",
			contentType: "application/json",
			body:        `{"type":`,
			wantStatus:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t)
			rr := do(t, srv, http.MethodPost, "/api/transactions", tt.contentType, tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if len(tt.wantFields) == 0 {
				return
			}
			resp := decode[errorResponse](t, rr)
			if len(resp.Fields) != len(tt.wantFields) {
				t.Fatalf("fields=%v want %v", resp.Fields, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if resp.Fields[f] == "" {
					t.Errorf("missing message for %s", f)
				}
			}
		})
	}
}

func TestTransactionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createTx(t, srv, "expense", "20", "Taxi", "Transportation", "2024-03-11")
	id := created["id"].(string)

	rr := do(t, srv, http.MethodGet, "/api/transactions/"+id, "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodPut, "/api/transactions/"+id, "application/json",
		`{"type":"expense","amount":"25","description":"Taxi home","category":"Transportation","date":"2024-03-11"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := decode[map[string]any](t, rr)["description"]; got != "Taxi home" {
		t.Fatalf("description=%v", got)
	}

	rr = do(t, srv, http.MethodPut, "/api/transactions/missing", "application/json",
		`{"type":"expense","amount":"25","description":"x","category":"y","date":"2024-03-11"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("update unknown status=%d", rr.Code)
	}

	for _, target := range []string{"/api/transactions/" + id, "/api/transactions/missing"} {
		rr = do(t, srv, http.MethodDelete, target, "", "")
		if rr.Code != http.StatusNoContent {
			t.Fatalf("delete %s status=%d", target, rr.Code)
		}
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions/"+id, "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status=%d", rr.Code)
	}
}

func TestListTransactions(t *testing.T) {
	srv, _ := newTestServer(t)
	createTx(t, srv, "expense", "10", "Groceries", "Food & Dining", "2024-03-01")
	createTx(t, srv, "expense", "30", "Dinner out", "Food & Dining", "2024-03-05")
	createTx(t, srv, "income", "500", "Salary", "Salary", "2024-03-02")
	createTx(t, srv, "expense", "7", "Bus", "Transportation", "2024-02-20")

	tests := []struct {
		name      string
		query     string
		wantTotal int
		wantFirst string
		wantCode  int
	}{
		{name: "default newest first", query: "", wantTotal: 4, wantFirst: "Dinner out", wantCode: http.StatusOK},
		{name: "type filter", query: "?type=income", wantTotal: 1, wantFirst: "Salary", wantCode: http.StatusOK},
		{name: "conjunction", query: "?type=expense&category=Food+%26+Dining&search=din", wantTotal: 1, wantFirst: "Dinner out", wantCode: http.StatusOK},
		{name: "date range", query: "?start=2024-03-01&end=2024-03-31&sort=amount&dir=asc", wantTotal: 3, wantFirst: "Groceries", wantCode: http.StatusOK},
		{name: "bad date", query: "?start=yesterday", wantCode: http.StatusBadRequest},
		{name: "bad direction", query: "?dir=up", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodGet, "/api/transactions"+tt.query, "", "")
			if rr.Code != tt.wantCode {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			page := decode[struct {
				Items []struct {
					Description string `json:"description"`
				} `json:"items"`
				TotalItems int `json:"totalItems"`
			}](t, rr)
			if page.TotalItems != tt.wantTotal {
				t.Fatalf("total=%d want %d", page.TotalItems, tt.wantTotal)
			}
			if page.Items[0].Description != tt.wantFirst {
				t.Fatalf("first=%q want %q", page.Items[0].Description, tt.wantFirst)
			}
		})
	}

	rr := do(t, srv, http.MethodGet, "/api/transactions?size=3&page=2", "", "")
	page := decode[map[string]any](t, rr)
	if page["totalPages"].(float64) != 2 || page["hasNextPage"].(bool) || !page["hasPrevPage"].(bool) {
		t.Fatalf("unexpected page metadata: %v", page)
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions?page=9223372036854775807&size=9223372036854775807", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("huge page: status=%d body=%s", rr.Code, rr.Body.String())
	}
	page = decode[map[string]any](t, rr)
	if items := page["items"].([]any); len(items) != 0 || page["totalPages"].(float64) != 1 {
		t.Fatalf("huge page should be empty: %v", page)
	}
}

func TestSummaryCacheFollowsMutations(t *testing.T) {
	srv, _ := newTestServer(t)
	createTx(t, srv, "income", "1000", "Pay", "Salary", "2024-03-01")

	first := decode[map[string]any](t, do(t, srv, http.MethodGet, "/api/summary", "", ""))
	if first["monthlyIncome"] != "1000" {
		t.Fatalf("monthlyIncome=%v", first["monthlyIncome"])
	}
	again := decode[map[string]any](t, do(t, srv, http.MethodGet, "/api/summary", "", ""))
	if again["monthlyIncome"] != "1000" {
		t.Fatalf("cached monthlyIncome=%v", again["monthlyIncome"])
	}
	if stats := srv.views.Stats(); stats.Hits != 1 {
		t.Fatalf("expected one cache hit, got %+v", stats)
	}

	createTx(t, srv, "expense", "250", "Rent share", "Bills & Utilities", "2024-03-03")
	after := decode[map[string]any](t, do(t, srv, http.MethodGet, "/api/summary", "", ""))
	if after["monthlyExpenses"] != "250" || after["savingsRate"].(float64) != 75 {
		t.Fatalf("stale summary: %v", after)
	}
	formatted := after["formatted"].(map[string]any)
	if formatted["totalBalance"] != "$750.00" {
		t.Fatalf("formatted balance=%v", formatted["totalBalance"])
	}
}

func TestTrendAndAnalytics(t *testing.T) {
	srv, _ := newTestServer(t)
	createTx(t, srv, "expense", "100", "Rent", "Bills & Utilities", "2024-02-01")
	createTx(t, srv, "expense", "150", "Rent", "Bills & Utilities", "2024-03-01")

	trend := decode[[]map[string]any](t, do(t, srv, http.MethodGet, "/api/trend?months=3", "", ""))
	if len(trend) != 3 || trend[2]["label"] != "Mar 2024" || trend[0]["label"] != "Jan 2024" {
		t.Fatalf("unexpected trend: %v", trend)
	}
	defaultTrend := decode[[]map[string]any](t, do(t, srv, http.MethodGet, "/api/trend", "", ""))
	if len(defaultTrend) != 6 {
		t.Fatalf("default trend months=%d", len(defaultTrend))
	}

	analytics := decode[map[string]any](t, do(t, srv, http.MethodGet, "/api/analytics", "", ""))
	cmp := analytics["comparison"].(map[string]any)
	if cmp["expenseTrend"].(float64) != 50 {
		t.Fatalf("expenseTrend=%v", cmp["expenseTrend"])
	}

	cats := decode[categoriesResponse](t, do(t, srv, http.MethodGet, "/api/categories", "", ""))
	if len(cats.Expense) != 8 || len(cats.Income) != 6 {
		t.Fatalf("unexpected categories: %+v", cats)
	}
}

func TestBudgets(t *testing.T) {
	srv, _ := newTestServer(t)
	createTx(t, srv, "expense", "85", "Groceries", "Food & Dining", "2024-03-10")

	rr := do(t, srv, http.MethodPut, "/api/budgets/Food%20%26%20Dining", "application/json", `{"amount":"100"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodPut, "/api/budgets/Travel", "application/json", `{"amount":-5}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("negative budget status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodPut, "/api/budgets/Travel", "application/json", `{}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing amount status=%d", rr.Code)
	}

	status := decode[[]map[string]any](t, do(t, srv, http.MethodGet, "/api/budgets/status", "", ""))
	if len(status) != 1 || status[0]["level"] != "warning" || status[0]["category"] != "Food & Dining" {
		t.Fatalf("unexpected status: %v", status)
	}

	rr = do(t, srv, http.MethodDelete, "/api/budgets/Food%20%26%20Dining", "", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("remove status=%d", rr.Code)
	}
	list := decode[budgetListResponse](t, do(t, srv, http.MethodGet, "/api/budgets", "", ""))
	if len(list.Budgets) != 0 || !list.Total.IsZero() {
		t.Fatalf("expected no budgets, got %+v", list)
	}
}

func TestGoals(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/goals", "application/json",
		`{"name":"Bike","targetAmount":"600","currentAmount":"0","deadline":"2024-09-30"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	goal := decode[map[string]any](t, rr)
	id := goal["id"].(string)
	progress := goal["progress"].(map[string]any)
	if progress["monthsRemaining"].(float64) != 6 || progress["monthlyTarget"] != "100" {
		t.Fatalf("unexpected progress: %v", progress)
	}

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{name: "missing deadline", method: http.MethodPost, target: "/api/goals", body: `{"name":"x","targetAmount":"10"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "bad deadline", method: http.MethodPost, target: "/api/goals", body: `{"name":"x","targetAmount":"10","deadline":"soon"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "zero contribution", method: http.MethodPost, target: "/api/goals/" + id + "/contributions", body: `{"amount":0}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown goal", method: http.MethodPut, target: "/api/goals/nope", body: `{"name":"y"}`, wantStatus: http.StatusNotFound},
		{name: "contribution", method: http.MethodPost, target: "/api/goals/" + id + "/contributions", body: `{"amount":"600"}`, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.target, "application/json", tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}

	list := decode[map[string]any](t, do(t, srv, http.MethodGet, "/api/goals", "", ""))
	goals := list["goals"].([]any)
	if len(goals) != 1 || !goals[0].(map[string]any)["completed"].(bool) {
		t.Fatalf("expected completed goal, got %v", goals)
	}
	if list["totalCurrent"] != "600" {
		t.Fatalf("totalCurrent=%v", list["totalCurrent"])
	}

	if rr := do(t, srv, http.MethodDelete, "/api/goals/"+id, "", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
}

func TestSettings(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPut, "/api/settings", "application/json", `{"currency":"eur"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	got := decode[map[string]any](t, do(t, srv, http.MethodGet, "/api/settings", "", ""))
	if got["currency"] != "EUR" || got["itemsPerPage"].(float64) != 10 {
		t.Fatalf("unexpected settings: %v", got)
	}

	rr = do(t, srv, http.MethodPut, "/api/settings", "application/json", `{"itemsPerPage":0}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid settings status=%d", rr.Code)
	}
}

func TestImportExport(t *testing.T) {
	srv, _ := newTestServer(t)

	csv := "Type,Amount,Description,Category,Date\n" +
		"expense,12.50,Lunch,Food & Dining,2024-03-10\n" +
		"expense,0,Broken,Food & Dining,2024-03-10\n" +
		"income,100,Gift,Gift,2024-03-12\n"
	rr := do(t, srv, http.MethodPost, "/api/import", "text/csv", csv)
	if rr.Code != http.StatusOK {
		t.Fatalf("import status=%d body=%s", rr.Code, rr.Body.String())
	}
	report := decode[struct {
		Imported []map[string]any `json:"imported"`
		Failed   []struct {
			Line   int               `json:"line"`
			Fields map[string]string `json:"fields"`
		} `json:"failed"`
	}](t, rr)
	if len(report.Imported) != 2 || len(report.Failed) != 1 {
		t.Fatalf("imported=%d failed=%d", len(report.Imported), len(report.Failed))
	}
	if report.Failed[0].Line != 3 || report.Failed[0].Fields["amount"] == "" {
		t.Fatalf("unexpected failure: %+v", report.Failed[0])
	}

	rr = do(t, srv, http.MethodGet, "/api/export", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type=%q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], `"id","type","amount"`) {
		t.Fatalf("unexpected export:\n%s", rr.Body.String())
	}
}

func TestWriteRateLimit(t *testing.T) {
	rl := &rateLimiter{limit: 2, now: func() time.Time { return testNow }, clients: map[string]*clientWindow{}, stopCleanup: make(chan struct{})}
	stats := &requestStats{}

	for i, want := range []bool{true, true, false} {
		if got := rl.allow("10.0.0.1", stats); got != want {
			t.Fatalf("request %d: allow=%v want %v", i+1, got, want)
		}
	}
	if !rl.allow("10.0.0.2", stats) {
		t.Fatalf("other client should be allowed")
	}
	if got := stats.snapshot().ThrottledWrites; got != 1 {
		t.Fatalf("throttled=%d", got)
	}

	rl.now = func() time.Time { return testNow.Add(rateWindow) }
	if !rl.allow("10.0.0.1", stats) {
		t.Fatalf("new window should reset the count")
	}

	rl.now = func() time.Time { return testNow.Add(time.Hour) }
	if removed := rl.cleanupStaleEntries(); removed != 2 {
		t.Fatalf("removed=%d", removed)
	}
}
