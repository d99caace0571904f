package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	service := payroll.NewService(payroll.Deps{
		Records:      store,
		Revenue:      store,
		Expenses:     store,
		Movements:    store,
		Handovers:    store,
		PeerReceipts: store,
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(NewHandler(service, store, logger), logger)
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return v
}

func seedEmployee(t *testing.T, router chi.Router, id, name string) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/employees",
		CreateEmployeeRequest{ID: id, Name: name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed employee: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPayrollLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	seedEmployee(t, router, "emp-1", "Ada")

	// GIVEN a month of ledger activity
	appends := []struct {
		path string
		body any
	}{
		{"/api/trips/settlements", SettlementRequest{
			EmployeeID: "emp-1", SettledOn: "2026-03-10", Amount: "1000", CashCollected: "400",
		}},
		{"/api/expenses", ExpenseRequest{
			EmployeeID: "emp-1", IncurredOn: "2026-03-12", Amount: "50", Description: "fuel",
		}},
		{"/api/cash/movements", MovementRequest{
			EmployeeID: "emp-1", MovedOn: "2026-03-15", Kind: "withdrawal", Amount: "200",
		}},
		{"/api/cash/handovers", HandoverRequest{
			EmployeeID: "emp-1", Month: 3, Year: 2026, Amount: "300",
		}},
	}
	for _, a := range appends {
		rec := doJSON(t, router, http.MethodPost, a.path, a.body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("%s: status %d, body %s", a.path, rec.Code, rec.Body.String())
		}
	}

	// WHEN recomputing the month
	rec := doJSON(t, router, http.MethodPost, "/api/payroll/recompute",
		RecomputeRequest{EmployeeID: "emp-1", Month: 3, Year: 2026})
	if rec.Code != http.StatusOK {
		t.Fatalf("recompute: status %d, body %s", rec.Code, rec.Body.String())
	}
	record := decode[RecordResponse](t, rec)

	// THEN the draft carries the reconciled totals
	if record.State != "draft" {
		t.Errorf("expected draft, got %s", record.State)
	}
	if record.Totals.GrossInflow != "1050" || record.Totals.GrossOutflow != "500" {
		t.Errorf("unexpected totals %+v", record.Totals)
	}
	if record.Totals.Net != "550" {
		t.Errorf("expected net 550, got %s", record.Totals.Net)
	}

	// WHEN confirming and paying
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/payroll/records/%s/confirm", record.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: status %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/payroll/records/%s/pay", record.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pay: status %d, body %s", rec.Code, rec.Body.String())
	}
	paid := decode[RecordResponse](t, rec)
	if paid.State != "paid" || paid.PaidAt == nil {
		t.Errorf("expected paid record, got %+v", paid)
	}

	// THEN further recomputes are conflicts
	rec = doJSON(t, router, http.MethodPost, "/api/payroll/recompute",
		RecomputeRequest{EmployeeID: "emp-1", Month: 3, Year: 2026})
	if rec.Code != http.StatusConflict {
		t.Fatalf("recompute after pay: expected 409, got %d", rec.Code)
	}
	errResp := decode[ErrorResponse](t, rec)
	if errResp.Code != "invalid_state_transition" {
		t.Errorf("unexpected error code %q", errResp.Code)
	}
}

func TestRecomputeUnknownEmployee(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/payroll/recompute",
		RecomputeRequest{EmployeeID: "ghost", Month: 3, Year: 2026})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (body %s)", rec.Code, rec.Body.String())
	}
}

func TestRecomputeInvalidPeriod(t *testing.T) {
	router := newTestRouter(t)
	seedEmployee(t, router, "emp-1", "Ada")
	rec := doJSON(t, router, http.MethodPost, "/api/payroll/recompute",
		RecomputeRequest{EmployeeID: "emp-1", Month: 13, Year: 2026})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestConfirmUnknownRecord(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/payroll/records/no-such-id/confirm", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestFindRecordByPair(t *testing.T) {
	router := newTestRouter(t)
	seedEmployee(t, router, "emp-1", "Ada")

	rec := doJSON(t, router, http.MethodPost, "/api/payroll/recompute",
		RecomputeRequest{EmployeeID: "emp-1", Month: 4, Year: 2026})
	if rec.Code != http.StatusOK {
		t.Fatalf("recompute: %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet,
		"/api/payroll/record?employee_id=emp-1&month=4&year=2026", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("find: status %d, body %s", rec.Code, rec.Body.String())
	}
	found := decode[RecordResponse](t, rec)
	if found.EmployeeID != "emp-1" || found.Month != 4 {
		t.Errorf("unexpected record %+v", found)
	}

	rec = doJSON(t, router, http.MethodGet,
		"/api/payroll/record?employee_id=emp-1&month=5&year=2026", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for uncomputed month, got %d", rec.Code)
	}
}

func TestPeriodListing(t *testing.T) {
	router := newTestRouter(t)
	seedEmployee(t, router, "emp-1", "Ada")
	seedEmployee(t, router, "emp-2", "Bob")

	for _, emp := range []string{"emp-1", "emp-2"} {
		rec := doJSON(t, router, http.MethodPost, "/api/payroll/recompute",
			RecomputeRequest{EmployeeID: emp, Month: 4, Year: 2026})
		if rec.Code != http.StatusOK {
			t.Fatalf("recompute %s: %d", emp, rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/api/payroll/period?month=4&year=2026", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("period: status %d", rec.Code)
	}
	records := decode[[]RecordResponse](t, rec)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestStatementPreview(t *testing.T) {
	router := newTestRouter(t)
	seedEmployee(t, router, "emp-1", "Ada")

	rec := doJSON(t, router, http.MethodPost, "/api/trips/settlements", SettlementRequest{
		EmployeeID: "emp-1", SettledOn: "2026-05-03", Amount: "320",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("settlement: %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/employees/emp-1/statement?month=5&year=2026", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("statement: status %d, body %s", rec.Code, rec.Body.String())
	}
	statement := decode[StatementResponse](t, rec)
	if statement.Breakdown.GrossRevenue != "320" {
		t.Errorf("expected gross revenue 320, got %s", statement.Breakdown.GrossRevenue)
	}
	if statement.Record != nil {
		t.Error("preview must not create a record")
	}

	// The preview persisted nothing.
	rec = doJSON(t, router, http.MethodGet,
		"/api/payroll/record?employee_id=emp-1&month=5&year=2026", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected no record after preview, got %d", rec.Code)
	}
}

func TestLedgerInputValidation(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name string
		path string
		body any
	}{
		{"bad amount", "/api/expenses", ExpenseRequest{
			EmployeeID: "emp-1", IncurredOn: "2026-03-01", Amount: "abc",
		}},
		{"negative amount", "/api/expenses", ExpenseRequest{
			EmployeeID: "emp-1", IncurredOn: "2026-03-01", Amount: "-5",
		}},
		{"bad date", "/api/expenses", ExpenseRequest{
			EmployeeID: "emp-1", IncurredOn: "01/03/2026", Amount: "5",
		}},
		{"bad movement kind", "/api/cash/movements", MovementRequest{
			EmployeeID: "emp-1", MovedOn: "2026-03-01", Kind: "loan", Amount: "5",
		}},
		{"self receipt", "/api/cash/peer-receipts", PeerReceiptRequest{
			ReceiverID: "emp-1", PayerID: "emp-1", ReceivedOn: "2026-03-01", Amount: "5",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, tc.path, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestEmployeeEndpoints(t *testing.T) {
	router := newTestRouter(t)
	seedEmployee(t, router, "emp-1", "Ada")

	rec := doJSON(t, router, http.MethodGet, "/api/employees/emp-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	emp := decode[EmployeeResponse](t, rec)
	if emp.Name != "Ada" {
		t.Errorf("unexpected employee %+v", emp)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/employees/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/employees", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	list := decode[[]EmployeeResponse](t, rec)
	if len(list) != 1 {
		t.Fatalf("expected 1 employee, got %d", len(list))
	}

	rec = doJSON(t, router, http.MethodPost, "/api/employees",
		CreateEmployeeRequest{ID: "", Name: ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty employee, got %d", rec.Code)
	}
}
