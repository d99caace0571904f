package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// Handler holds the payroll service and the backing store. The store is
// needed directly for the ledger append endpoints and the employee
// register, which bypass the reconciliation service.
type Handler struct {
	service *payroll.Service
	store   *sqlite.Store
	logger  *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(service *payroll.Service, store *sqlite.Store, logger *slog.Logger) *Handler {
	return &Handler{service: service, store: store, logger: logger}
}

// =============================================================================
// PAYROLL LIFECYCLE
// =============================================================================

// Recompute handles POST /api/payroll/recompute.
func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	var req RecomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		h.writeError(w, r, http.StatusBadRequest, "employee_id is required", nil)
		return
	}
	period, err := payroll.NewPeriod(req.Month, req.Year)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid period", err)
		return
	}
	if _, err := h.store.GetEmployee(r.Context(), payroll.EmployeeID(req.EmployeeID)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	record, err := h.service.Recompute(r.Context(), payroll.EmployeeID(req.EmployeeID), period)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toRecordResponse(record))
}

// Confirm handles POST /api/payroll/records/{id}/confirm.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id := payroll.RecordID(chi.URLParam(r, "id"))
	record, err := h.service.Confirm(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toRecordResponse(record))
}

// MarkPaid handles POST /api/payroll/records/{id}/pay.
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id := payroll.RecordID(chi.URLParam(r, "id"))
	record, err := h.service.MarkPaid(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toRecordResponse(record))
}

// GetRecord handles GET /api/payroll/records/{id}.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := payroll.RecordID(chi.URLParam(r, "id"))
	record, err := h.service.RecordByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toRecordResponse(record))
}

// FindRecord handles GET /api/payroll/record?employee_id=&month=&year=.
func (h *Handler) FindRecord(w http.ResponseWriter, r *http.Request) {
	employee := r.URL.Query().Get("employee_id")
	if employee == "" {
		h.writeError(w, r, http.StatusBadRequest, "employee_id is required", nil)
		return
	}
	period, ok := h.periodFromQuery(w, r)
	if !ok {
		return
	}

	record, err := h.service.Record(r.Context(), payroll.EmployeeID(employee), period)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toRecordResponse(record))
}

// PeriodRecords handles GET /api/payroll/period?month=&year=.
func (h *Handler) PeriodRecords(w http.ResponseWriter, r *http.Request) {
	period, ok := h.periodFromQuery(w, r)
	if !ok {
		return
	}

	records, err := h.service.RecordsForPeriod(r.Context(), period)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	out := make([]RecordResponse, 0, len(records))
	for i := range records {
		out = append(out, toRecordResponse(&records[i]))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// CreateEmployee handles POST /api/employees.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		h.writeError(w, r, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	emp := sqlite.Employee{ID: payroll.EmployeeID(req.ID), Name: req.Name}
	if err := h.store.SaveEmployee(r.Context(), emp); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	saved, err := h.store.GetEmployee(r.Context(), emp.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toEmployeeResponse(*saved))
}

// ListEmployees handles GET /api/employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.ListEmployees(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	out := make([]EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeResponse(e))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// GetEmployee handles GET /api/employees/{id}.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))
	emp, err := h.store.GetEmployee(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toEmployeeResponse(*emp))
}

// Statement handles GET /api/employees/{id}/statement?month=&year=.
// Read-only preview: nothing is written, state is not checked.
func (h *Handler) Statement(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))
	period, ok := h.periodFromQuery(w, r)
	if !ok {
		return
	}
	if _, err := h.store.GetEmployee(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	statement, err := h.service.Statement(r.Context(), id, period)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toStatementResponse(statement))
}

// =============================================================================
// LEDGER STREAMS
// =============================================================================

// AddSettlement handles POST /api/trips/settlements.
func (h *Handler) AddSettlement(w http.ResponseWriter, r *http.Request) {
	var req SettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	settledOn, err := parseDate("settled_on", req.SettledOn)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	cash, err := parseOptionalAmount("cash_collected", req.CashCollected)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	hours, err := parseOptionalAmount("hours", req.Hours)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	distance, err := parseOptionalAmount("distance_km", req.DistanceKm)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	settlement := sqlite.TripSettlement{
		ID:            string(payroll.NewRecordID()),
		EmployeeID:    payroll.EmployeeID(req.EmployeeID),
		SettledOn:     settledOn,
		Amount:        amount,
		CashCollected: cash,
		Hours:         hours,
		DistanceKm:    distance,
	}
	if err := h.store.SaveSettlement(r.Context(), settlement); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, CreatedResponse{ID: settlement.ID})
}

// AddExpense handles POST /api/expenses.
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	incurredOn, err := parseDate("incurred_on", req.IncurredOn)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if amount.IsNegative() {
		h.writeError(w, r, http.StatusBadRequest, "amount must not be negative", nil)
		return
	}

	claim := payroll.ExpenseClaim{
		ID:          string(payroll.NewRecordID()),
		EmployeeID:  payroll.EmployeeID(req.EmployeeID),
		IncurredOn:  incurredOn,
		Amount:      amount,
		Description: req.Description,
	}
	if err := h.store.SaveExpenseClaim(r.Context(), claim); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, CreatedResponse{ID: claim.ID})
}

// AddMovement handles POST /api/cash/movements.
func (h *Handler) AddMovement(w http.ResponseWriter, r *http.Request) {
	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	kind := payroll.MovementKind(req.Kind)
	if kind != payroll.MovementWithdrawal && kind != payroll.MovementDeposit {
		h.writeError(w, r, http.StatusBadRequest, "kind must be withdrawal or deposit", nil)
		return
	}
	movedOn, err := parseDate("moved_on", req.MovedOn)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if amount.IsNegative() {
		h.writeError(w, r, http.StatusBadRequest, "amount must not be negative", nil)
		return
	}

	movement := payroll.CashMovement{
		ID:         string(payroll.NewRecordID()),
		EmployeeID: payroll.EmployeeID(req.EmployeeID),
		MovedOn:    movedOn,
		Kind:       kind,
		Amount:     amount,
		Note:       req.Note,
	}
	if err := h.store.SaveCashMovement(r.Context(), movement); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, CreatedResponse{ID: movement.ID})
}

// AddHandover handles POST /api/cash/handovers.
func (h *Handler) AddHandover(w http.ResponseWriter, r *http.Request) {
	var req HandoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	period, err := payroll.NewPeriod(req.Month, req.Year)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid period", err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if amount.IsNegative() {
		h.writeError(w, r, http.StatusBadRequest, "amount must not be negative", nil)
		return
	}

	entry := sqlite.HandoverEntry{
		ID:         string(payroll.NewRecordID()),
		EmployeeID: payroll.EmployeeID(req.EmployeeID),
		Period:     period,
		Amount:     amount,
		Note:       req.Note,
	}
	if err := h.store.SaveHandover(r.Context(), entry); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, CreatedResponse{ID: entry.ID})
}

// AddPeerReceipt handles POST /api/cash/peer-receipts.
func (h *Handler) AddPeerReceipt(w http.ResponseWriter, r *http.Request) {
	var req PeerReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ReceiverID == "" || req.PayerID == "" {
		h.writeError(w, r, http.StatusBadRequest, "receiver_id and payer_id are required", nil)
		return
	}
	if req.ReceiverID == req.PayerID {
		h.writeError(w, r, http.StatusBadRequest, "receiver_id and payer_id must differ", nil)
		return
	}
	receivedOn, err := parseDate("received_on", req.ReceivedOn)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if amount.IsNegative() {
		h.writeError(w, r, http.StatusBadRequest, "amount must not be negative", nil)
		return
	}

	receipt := payroll.PeerReceipt{
		ID:         string(payroll.NewRecordID()),
		ReceiverID: payroll.EmployeeID(req.ReceiverID),
		PayerID:    payroll.EmployeeID(req.PayerID),
		ReceivedOn: receivedOn,
		Amount:     amount,
	}
	if err := h.store.SavePeerReceipt(r.Context(), receipt); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, CreatedResponse{ID: receipt.ID})
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

func (h *Handler) periodFromQuery(w http.ResponseWriter, r *http.Request) (payroll.Period, bool) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "month is required", err)
		return payroll.Period{}, false
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "year is required", err)
		return payroll.Period{}, false
	}
	period, err := payroll.NewPeriod(month, year)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid period", err)
		return payroll.Period{}, false
	}
	return period, true
}

// writeServiceError maps the payroll error taxonomy onto status codes:
// conflicts (state machine, optimistic check) are 409, unreachable
// inputs are 503 so callers know to retry, the rest follow convention.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var transitionErr *payroll.TransitionError
	var inputErr *payroll.InputError

	switch {
	case errors.As(err, &transitionErr):
		h.writeErrorCode(w, r, http.StatusConflict, "invalid_state_transition", err)
	case errors.Is(err, payroll.ErrConcurrentModification):
		h.writeErrorCode(w, r, http.StatusConflict, "concurrent_modification", err)
	case errors.As(err, &inputErr):
		h.writeErrorCode(w, r, http.StatusServiceUnavailable, "input_unavailable", err)
	case errors.Is(err, payroll.ErrNotFound), errors.Is(err, payroll.ErrEmployeeNotFound):
		h.writeErrorCode(w, r, http.StatusNotFound, "not_found", err)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		h.writeErrorCode(w, r, http.StatusBadRequest, "invalid_period", err)
	default:
		h.logger.Error("internal error", "path", r.URL.Path, "error", err)
		h.writeErrorCode(w, r, http.StatusInternalServerError, "internal", err)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	h.writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}
