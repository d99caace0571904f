/*
Package api provides the HTTP layer for the payroll reconciliation engine.

PURPOSE:
  Exposes the payroll service and ledger streams over REST. Handlers
  translate HTTP to service calls and service errors to status codes;
  all reconciliation logic lives in the payroll package.

ENDPOINTS:
  Payroll lifecycle:
    POST /api/payroll/recompute            Recompute a (employee, period) draft
    POST /api/payroll/records/{id}/confirm Freeze a computed draft
    POST /api/payroll/records/{id}/pay     Mark a confirmed record paid
    GET  /api/payroll/records/{id}         Fetch a record by id
    GET  /api/payroll/record               Fetch by employee_id + month + year
    GET  /api/payroll/period               All records of a period

  Employees:
    POST /api/employees
    GET  /api/employees
    GET  /api/employees/{id}
    GET  /api/employees/{id}/statement     Non-persisting breakdown preview

  Ledger streams (append only):
    POST /api/trips/settlements
    POST /api/expenses
    POST /api/cash/movements
    POST /api/cash/handovers
    POST /api/cash/peer-receipts

MONEY IN TRANSIT:
  Amounts cross the wire as strings ("120.50"), parsed with
  shopspring/decimal. JSON numbers decode through float64 and would
  corrupt the values before they ever reach the engine.

SEE ALSO:
  - handlers.go: Endpoint implementations and error mapping
  - server.go: Router and middleware wiring
*/
package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// REQUESTS
// =============================================================================

// PeriodRequest identifies a payroll period in request bodies.
type PeriodRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// RecomputeRequest asks for a fresh draft computation.
type RecomputeRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

// CreateEmployeeRequest registers an employee.
type CreateEmployeeRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SettlementRequest appends a settled trip to the revenue stream.
type SettlementRequest struct {
	EmployeeID    string `json:"employee_id"`
	SettledOn     string `json:"settled_on"` // YYYY-MM-DD
	Amount        string `json:"amount"`
	CashCollected string `json:"cash_collected,omitempty"`
	Hours         string `json:"hours,omitempty"`
	DistanceKm    string `json:"distance_km,omitempty"`
}

// ExpenseRequest appends an approved expense claim.
type ExpenseRequest struct {
	EmployeeID  string `json:"employee_id"`
	IncurredOn  string `json:"incurred_on"` // YYYY-MM-DD
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

// MovementRequest appends a cash withdrawal or deposit.
type MovementRequest struct {
	EmployeeID string `json:"employee_id"`
	MovedOn    string `json:"moved_on"` // YYYY-MM-DD
	Kind       string `json:"kind"`     // "withdrawal" or "deposit"
	Amount     string `json:"amount"`
	Note       string `json:"note,omitempty"`
}

// HandoverRequest appends an outstanding remittance obligation.
type HandoverRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	Amount     string `json:"amount"`
	Note       string `json:"note,omitempty"`
}

// PeerReceiptRequest appends cash passed between employees.
type PeerReceiptRequest struct {
	ReceiverID string `json:"receiver_id"`
	PayerID    string `json:"payer_id"`
	ReceivedOn string `json:"received_on"` // YYYY-MM-DD
	Amount     string `json:"amount"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// TotalsResponse is the reconciled outcome of a period.
type TotalsResponse struct {
	GrossInflow  string `json:"gross_inflow"`
	GrossOutflow string `json:"gross_outflow"`
	Net          string `json:"net"`
}

// RecordResponse is a payroll record on the wire.
type RecordResponse struct {
	ID          string         `json:"id"`
	EmployeeID  string         `json:"employee_id"`
	Month       int            `json:"month"`
	Year        int            `json:"year"`
	State       string         `json:"state"`
	Totals      TotalsResponse `json:"totals"`
	Version     int            `json:"version"`
	ComputedAt  *time.Time     `json:"computed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	ConfirmedAt *time.Time     `json:"confirmed_at,omitempty"`
	PaidAt      *time.Time     `json:"paid_at,omitempty"`
}

// BreakdownResponse itemizes the inputs behind a record's totals.
type BreakdownResponse struct {
	GrossRevenue       string `json:"gross_revenue"`
	PersonalExpenses   string `json:"personal_expenses"`
	Withdrawals        string `json:"withdrawals"`
	Deposits           string `json:"deposits"`
	CashOwed           string `json:"cash_owed"`
	PeerReceipts       string `json:"peer_receipts"`
	CarryoverIncome    string `json:"carryover_income"`
	CarryoverLiability string `json:"carryover_liability"`
}

// StatementResponse is the non-persisting preview of a period.
type StatementResponse struct {
	EmployeeID string            `json:"employee_id"`
	Month      int               `json:"month"`
	Year       int               `json:"year"`
	Breakdown  BreakdownResponse `json:"breakdown"`
	Totals     TotalsResponse    `json:"totals"`
	Record     *RecordResponse   `json:"record,omitempty"`
}

// EmployeeResponse is a register entry on the wire.
type EmployeeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatedResponse acknowledges an append to a ledger stream.
type CreatedResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toTotalsResponse(t payroll.Totals) TotalsResponse {
	return TotalsResponse{
		GrossInflow:  t.GrossInflow.String(),
		GrossOutflow: t.GrossOutflow.String(),
		Net:          t.Net.String(),
	}
}

func toRecordResponse(r *payroll.PayrollRecord) RecordResponse {
	return RecordResponse{
		ID:          string(r.ID),
		EmployeeID:  string(r.EmployeeID),
		Month:       int(r.Period.Month),
		Year:        r.Period.Year,
		State:       string(r.State),
		Totals:      toTotalsResponse(r.Totals),
		Version:     r.Version,
		ComputedAt:  r.ComputedAt,
		CreatedAt:   r.CreatedAt,
		ConfirmedAt: r.ConfirmedAt,
		PaidAt:      r.PaidAt,
	}
}

func toBreakdownResponse(b payroll.Breakdown) BreakdownResponse {
	return BreakdownResponse{
		GrossRevenue:       b.GrossRevenue.String(),
		PersonalExpenses:   b.PersonalExpenses.String(),
		Withdrawals:        b.Withdrawals.String(),
		Deposits:           b.Deposits.String(),
		CashOwed:           b.CashOwed.String(),
		PeerReceipts:       b.PeerReceipts.String(),
		CarryoverIncome:    b.CarryoverIncome.String(),
		CarryoverLiability: b.CarryoverLiability.String(),
	}
}

func toStatementResponse(s *payroll.Statement) StatementResponse {
	resp := StatementResponse{
		EmployeeID: string(s.EmployeeID),
		Month:      int(s.Period.Month),
		Year:       s.Period.Year,
		Breakdown:  toBreakdownResponse(s.Breakdown),
		Totals:     toTotalsResponse(s.Totals),
	}
	if s.Record != nil {
		r := toRecordResponse(s.Record)
		resp.Record = &r
	}
	return resp
}

func toEmployeeResponse(e sqlite.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        string(e.ID),
		Name:      e.Name,
		CreatedAt: e.CreatedAt,
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseAmount(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%s is required", field)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s is not a valid amount: %q", field, raw)
	}
	return d, nil
}

func parseOptionalAmount(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return parseAmount(field, raw)
}

func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s is not a valid date (want YYYY-MM-DD): %q", field, raw)
	}
	return t.UTC(), nil
}
