package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hisab/internal/core"
	"hisab/internal/reports"
	"hisab/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	s := NewServer(":0", repo, reports.NewGenerator(repo, nil))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s
}

func do(t *testing.T, s *Server, method, target, owner, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if owner != "" {
		req.Header.Set("X-User-ID", owner)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMissingOwnerIdentity(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/categories"},
		{http.MethodPost, "/api/transactions"},
		{http.MethodGet, "/api/reports/dashboard"},
		{http.MethodDelete, "/api/transactions/1"},
	} {
		rec := do(t, s, target.method, target.path, "", "{}")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without identity: status = %d, want 401", target.method, target.path, rec.Code)
		}
	}
}

func TestCategoryLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/categories", "u1", `{"name":"Groceries","code":"GROC","type":"debit"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[categoryJSON](t, rec)
	if created.ID == 0 || created.Name != "Groceries" || created.Type != "debit" {
		t.Fatalf("unexpected category: %+v", created)
	}

	// Same code again for the same owner is rejected.
	rec = do(t, s, http.MethodPost, "/api/categories", "u1", `{"name":"Other","code":"GROC","type":"debit"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate code: status = %d, want 400", rec.Code)
	}

	// A different owner can reuse the code.
	rec = do(t, s, http.MethodPost, "/api/categories", "u2", `{"name":"Other","code":"GROC","type":"debit"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("cross-owner code reuse: status = %d, want 201", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/categories", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	list := decode[[]categoryJSON](t, rec)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %+v, want only u1's category", list)
	}
}

func TestListCategoriesSearch(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{"name":"Salary","code":"SAL","type":"credit"}`,
		`{"name":"Groceries","code":"GROC","type":"debit"}`,
		`{"name":"Rent","type":"debit"}`,
	} {
		if rec := do(t, s, http.MethodPost, "/api/categories", "u1", body); rec.Code != http.StatusCreated {
			t.Fatalf("fixture create: status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	rec := do(t, s, http.MethodGet, "/api/categories?q=sal", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("search: status = %d", rec.Code)
	}
	list := decode[[]categoryJSON](t, rec)
	if len(list) != 1 || list[0].Name != "Salary" {
		t.Fatalf("search result = %+v, want only Salary", list)
	}

	// Code substrings match too.
	rec = do(t, s, http.MethodGet, "/api/categories?q=roc", "u1", "")
	list = decode[[]categoryJSON](t, rec)
	if len(list) != 1 || list[0].Name != "Groceries" {
		t.Fatalf("code search result = %+v, want only Groceries", list)
	}
}

func TestCreateCategoryValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad type", `{"name":"X","type":"transfer"}`, "type"},
		{"empty name", `{"name":"","type":"debit"}`, "name"},
		{"malformed json", `{"name":`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/categories", "u1", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			body := decode[errorBody](t, rec)
			if body.Field != tt.field {
				t.Errorf("field = %q, want %q", body.Field, tt.field)
			}
		})
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/transactions", "u1",
		`{"amount":"156.75","type":"debit","notes":"dinner","date":"2025-03-02"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[transactionJSON](t, rec)
	if created.Amount != "156.75" {
		t.Errorf("amount = %q, want exactly 156.75", created.Amount)
	}
	if created.Serial != 1 {
		t.Errorf("serial = %d, want 1", created.Serial)
	}
	if created.Date != "2025-03-02" {
		t.Errorf("date = %q, want 2025-03-02", created.Date)
	}

	rec = do(t, s, http.MethodGet, fmt.Sprintf("/api/transactions/%d", created.ID), "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	got := decode[transactionJSON](t, rec)
	if got.Amount != "156.75" {
		t.Errorf("read-back amount = %q, want exactly 156.75", got.Amount)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"non numeric amount", `{"amount":"12.3.4","type":"debit"}`, "amount"},
		{"negative amount", `{"amount":"-5.00","type":"debit"}`, "amount"},
		{"too many decimals", `{"amount":"1.999","type":"debit"}`, "amount"},
		{"bad type", `{"amount":"1.00","type":"transfer"}`, "type"},
		{"bad date", `{"amount":"1.00","type":"debit","date":"03/02/2025"}`, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/transactions", "u1", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
			}
			body := decode[errorBody](t, rec)
			if body.Field != tt.field {
				t.Errorf("field = %q, want %q", body.Field, tt.field)
			}
		})
	}
}

func TestListTransactionsBadFilter(t *testing.T) {
	s := newTestServer(t)

	for query, field := range map[string]string{
		"?type=transfer":       "type",
		"?categoryId=abc":      "categoryId",
		"?startDate=yesterday": "startDate",
		"?endDate=2025-13-99":  "endDate",
	} {
		rec := do(t, s, http.MethodGet, "/api/transactions"+query, "u1", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", query, rec.Code)
			continue
		}
		body := decode[errorBody](t, rec)
		if body.Field != field {
			t.Errorf("%s: field = %q, want %q", query, body.Field, field)
		}
	}
}

func TestUpdateTransaction(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/transactions", "u1",
		`{"amount":"50.00","type":"debit","notes":"original","date":"2025-03-02"}`)
	created := decode[transactionJSON](t, rec)

	rec = do(t, s, http.MethodPut, fmt.Sprintf("/api/transactions/%d", created.ID), "u1",
		`{"amount":"75.25"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decode[transactionJSON](t, rec)
	if updated.Amount != "75.25" {
		t.Errorf("amount = %q, want 75.25", updated.Amount)
	}
	if updated.Notes != "original" {
		t.Errorf("notes = %q, untouched field must keep its value", updated.Notes)
	}
	if updated.Serial != created.Serial {
		t.Errorf("serial changed on update: %d -> %d", created.Serial, updated.Serial)
	}
}

func TestUpdateTransactionDateMove(t *testing.T) {
	s := newTestServer(t)

	// Both days occupied, so both rows hold serial 1.
	rec := do(t, s, http.MethodPost, "/api/transactions", "u1",
		`{"amount":"10.00","type":"debit","date":"2025-03-09"}`)
	moved := decode[transactionJSON](t, rec)
	do(t, s, http.MethodPost, "/api/transactions", "u1",
		`{"amount":"20.00","type":"debit","date":"2025-03-10"}`)

	rec = do(t, s, http.MethodPut, fmt.Sprintf("/api/transactions/%d", moved.ID), "u1",
		`{"date":"2025-03-10"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("date-moving update: status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decode[transactionJSON](t, rec)
	if updated.Date != "2025-03-10" {
		t.Errorf("date = %q, want 2025-03-10", updated.Date)
	}
	if updated.Serial != 2 {
		t.Errorf("serial on target day = %d, want 2", updated.Serial)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/transactions", "u1",
		`{"amount":"10.00","type":"credit","date":"2025-03-02"}`)
	created := decode[transactionJSON](t, rec)
	path := fmt.Sprintf("/api/transactions/%d", created.ID)

	if rec = do(t, s, http.MethodPut, path, "u2", `{"amount":"1.00"}`); rec.Code != http.StatusNotFound {
		t.Errorf("cross-owner update: status = %d, want 404", rec.Code)
	}
	if rec = do(t, s, http.MethodDelete, path, "u2", ""); rec.Code != http.StatusNotFound {
		t.Errorf("cross-owner delete: status = %d, want 404", rec.Code)
	}
	if rec = do(t, s, http.MethodGet, "/api/transactions", "u2", ""); rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	if list := decode[[]transactionJSON](t, rec); len(list) != 0 {
		t.Errorf("u2 sees %d of u1's transactions", len(list))
	}

	// The row is still intact for its owner.
	if rec = do(t, s, http.MethodGet, path, "u1", ""); rec.Code != http.StatusOK {
		t.Errorf("owner read after cross-owner attempts: status = %d", rec.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/transactions", "u1",
		`{"amount":"10.00","type":"debit","date":"2025-03-02"}`)
	created := decode[transactionJSON](t, rec)
	path := fmt.Sprintf("/api/transactions/%d", created.ID)

	if rec = do(t, s, http.MethodDelete, path, "u1", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d, want 204", rec.Code)
	}
	if rec = do(t, s, http.MethodDelete, path, "u1", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: status = %d, want 404", rec.Code)
	}
}

func dashboardFixture(t *testing.T, s *Server, owner string) {
	t.Helper()
	today := core.Day(time.Now())
	mk := func(typ, amount string, day time.Time) {
		body := fmt.Sprintf(`{"amount":%q,"type":%q,"date":%q}`, amount, typ, day.Format(core.DateLayout))
		rec := do(t, s, http.MethodPost, "/api/transactions", owner, body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("fixture create: status = %d, body %s", rec.Code, rec.Body.String())
		}
	}
	mk("credit", "5000.00", today.AddDate(0, 0, -7))
	mk("credit", "800.00", today.AddDate(0, 0, -1))
	mk("debit", "1200.00", today.AddDate(0, 0, -7))
	mk("debit", "156.75", today.AddDate(0, 0, -1))
	mk("debit", "89.50", today)
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	dashboardFixture(t, s, "u1")

	rec := do(t, s, http.MethodGet, "/api/reports/dashboard", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status = %d", rec.Code)
	}
	dash := decode[dashboardJSON](t, rec)

	if dash.TotalCredit != "5800.00" {
		t.Errorf("totalCredit = %q, want 5800.00", dash.TotalCredit)
	}
	if dash.TotalDebit != "1446.25" {
		t.Errorf("totalDebit = %q, want 1446.25", dash.TotalDebit)
	}
	if dash.OutstandingBalance != "4353.75" {
		t.Errorf("outstandingBalance = %q, want 4353.75", dash.OutstandingBalance)
	}
	if dash.TodaySummary.Credit != "0.00" || dash.TodaySummary.Debit != "89.50" {
		t.Errorf("todaySummary = %+v, want credit 0.00 debit 89.50", dash.TodaySummary)
	}
	if len(dash.Days) != 3 {
		t.Errorf("days = %d rows, want 3", len(dash.Days))
	}
}

func TestDashboardCacheInvalidatedByMutation(t *testing.T) {
	s := newTestServer(t)
	dashboardFixture(t, s, "u1")

	// Prime the cache.
	do(t, s, http.MethodGet, "/api/reports/dashboard", "u1", "")

	// Delete the D-1 debit of 156.75 and expect fresh numbers immediately.
	rec := do(t, s, http.MethodGet, "/api/transactions?type=debit", "u1", "")
	list := decode[[]transactionJSON](t, rec)
	var target int64
	for _, tx := range list {
		if tx.Amount == "156.75" {
			target = tx.ID
		}
	}
	if target == 0 {
		t.Fatalf("fixture debit not found in %+v", list)
	}
	if rec = do(t, s, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", target), "u1", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/reports/dashboard", "u1", "")
	dash := decode[dashboardJSON](t, rec)
	if dash.TotalDebit != "1289.50" {
		t.Errorf("totalDebit after delete = %q, want 1289.50", dash.TotalDebit)
	}
	if dash.OutstandingBalance != "4510.50" {
		t.Errorf("outstandingBalance after delete = %q, want 4510.50", dash.OutstandingBalance)
	}
}

func TestGenerateAndListReports(t *testing.T) {
	s := newTestServer(t)

	do(t, s, http.MethodPost, "/api/transactions", "u1",
		`{"amount":"800.00","type":"credit","date":"2025-03-02"}`)
	do(t, s, http.MethodPost, "/api/transactions", "u1",
		`{"amount":"246.25","type":"debit","date":"2025-03-02"}`)

	rec := do(t, s, http.MethodPost, "/api/reports/generate", "u1", `{"date":"2025-03-02"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate: status = %d, body %s", rec.Code, rec.Body.String())
	}
	rep := decode[dailyReportJSON](t, rec)
	if rep.TotalCredit != "800.00" || rep.TotalDebit != "246.25" || rep.NetChange != "553.75" {
		t.Fatalf("unexpected report: %+v", rep)
	}

	// Idempotent: regenerating yields identical totals and no extra row.
	rec = do(t, s, http.MethodPost, "/api/reports/generate", "u1", `{"date":"2025-03-02"}`)
	again := decode[dailyReportJSON](t, rec)
	if again.TotalCredit != rep.TotalCredit || again.TotalDebit != rep.TotalDebit || again.NetChange != rep.NetChange {
		t.Fatalf("regenerated report differs: %+v vs %+v", again, rep)
	}

	rec = do(t, s, http.MethodGet, "/api/reports/daily", "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list reports: status = %d", rec.Code)
	}
	list := decode[[]dailyReportJSON](t, rec)
	if len(list) != 1 {
		t.Fatalf("reports = %d, want 1 (upsert, not append)", len(list))
	}

	// Another owner sees nothing.
	rec = do(t, s, http.MethodGet, "/api/reports/daily", "u2", "")
	if list := decode[[]dailyReportJSON](t, rec); len(list) != 0 {
		t.Errorf("u2 sees %d of u1's reports", len(list))
	}
}

func TestInvalidPathID(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/transactions/abc", "/api/transactions/0", "/api/transactions/-3"} {
		rec := do(t, s, http.MethodDelete, path, "u1", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
	}
}
