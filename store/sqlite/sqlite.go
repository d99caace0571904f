/*
Package sqlite provides the SQLite-backed implementation of the payroll
storage interfaces.

PURPOSE:
  Implements the record store and all five ledger stream readers over one
  SQLite database. In production the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  payroll.RecordStore:       Payroll record persistence + optimistic check
  payroll.RevenueSource:     Aggregation over trip_settlements
  payroll.ExpenseSource:     Approved expense_claims of the period
  payroll.MovementSource:    cash_movements of the period
  payroll.HandoverSource:    Aggregation over cash_handovers of the period
  payroll.PeerReceiptSource: peer_cash_receipts of the period

KEY TABLES:
  payroll_records:    One row per (employee, period), version-checked writes
  trip_settlements:   Settled trip revenue (VAT fixed upstream)
  expense_claims:     Personal expenses paid on the company's behalf
  cash_movements:     Withdrawals from / deposits into company cash
  cash_handovers:     Outstanding customer-cash remittance obligations
  peer_cash_receipts: Cash passed between employees
  employees:          Minimal register for listing and input validation

OPTIMISTIC CONCURRENCY:
  Save runs UPDATE ... WHERE id = ? AND version = ?. Zero rows affected
  means another administrator changed the record between this caller's
  read and write; the store reports payroll.ErrConcurrentModification
  rather than merging. Single-writer-wins with explicit conflict
  signaling, never last-write-wins.

MONEY:
  All amounts are stored as TEXT and parsed with shopspring/decimal.
  REAL columns would reintroduce the floating-point drift the engine
  exists to avoid, so sums are done in Go rather than with SQL SUM.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers
  don't block, single writer at a time, better crash recovery.

SEE ALSO:
  - payroll/store.go: Interface contracts
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// Store implements all payroll storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Payroll records: one row per (employee, period)
	CREATE TABLE IF NOT EXISTS payroll_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		period_month INTEGER NOT NULL,
		period_year INTEGER NOT NULL,
		state TEXT NOT NULL DEFAULT 'draft',
		gross_inflow TEXT NOT NULL,
		gross_outflow TEXT NOT NULL,
		net_amount TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		computed_at TEXT,
		created_at TEXT NOT NULL,
		confirmed_at TEXT,
		paid_at TEXT
	);

	-- CRITICAL: recompute mutates the existing draft, never a duplicate
	CREATE UNIQUE INDEX IF NOT EXISTS idx_records_employee_period
		ON payroll_records(employee_id, period_month, period_year);
	CREATE INDEX IF NOT EXISTS idx_records_period
		ON payroll_records(period_year, period_month);
	CREATE INDEX IF NOT EXISTS idx_records_state
		ON payroll_records(state);

	-- Settled trips (revenue attribution source)
	CREATE TABLE IF NOT EXISTS trip_settlements (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		settled_on TEXT NOT NULL,
		amount TEXT NOT NULL,
		cash_collected TEXT NOT NULL DEFAULT '0',
		hours TEXT NOT NULL DEFAULT '0',
		distance_km TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_settlements_employee_date
		ON trip_settlements(employee_id, settled_on);

	-- Approved personal expenses
	CREATE TABLE IF NOT EXISTS expense_claims (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		incurred_on TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT,
		approved INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_employee_date
		ON expense_claims(employee_id, incurred_on);

	-- Company cash withdrawals/deposits
	CREATE TABLE IF NOT EXISTS cash_movements (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		moved_on TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_movements_employee_date
		ON cash_movements(employee_id, moved_on);

	-- Outstanding customer-cash remittance obligations, recorded per period
	CREATE TABLE IF NOT EXISTS cash_handovers (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		period_month INTEGER NOT NULL,
		period_year INTEGER NOT NULL,
		amount TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_handovers_employee_period
		ON cash_handovers(employee_id, period_year, period_month);

	-- Cash passed between employees
	CREATE TABLE IF NOT EXISTS peer_cash_receipts (
		id TEXT PRIMARY KEY,
		receiver_id TEXT NOT NULL,
		payer_id TEXT NOT NULL,
		received_on TEXT NOT NULL,
		amount TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_peer_receipts_receiver_date
		ON peer_cash_receipts(receiver_id, received_on);

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD STORE (payroll.RecordStore interface)
// =============================================================================

// GetOrCreate returns the record for (employee, period), inserting a
// zero-totals draft on first use. INSERT OR IGNORE plus the unique index
// keeps creation race-free: concurrent callers converge on the same row.
func (s *Store) GetOrCreate(ctx context.Context, employee payroll.EmployeeID, period payroll.Period) (*payroll.PayrollRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT OR IGNORE INTO payroll_records
		(id, employee_id, period_month, period_year, state, gross_inflow, gross_outflow, net_amount, version, created_at)
		VALUES (?, ?, ?, ?, 'draft', '0', '0', '0', 1, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.NewString(),
		string(employee),
		int(period.Month),
		period.Year,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return s.findLocked(ctx, employee, period)
}

// Get returns the record by id, or payroll.ErrNotFound.
func (s *Store) Get(ctx context.Context, id payroll.RecordID) (*payroll.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectRecord+" WHERE id = ?", string(id))
	return scanRecord(row)
}

// Find returns the record for (employee, period), or payroll.ErrNotFound.
func (s *Store) Find(ctx context.Context, employee payroll.EmployeeID, period payroll.Period) (*payroll.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findLocked(ctx, employee, period)
}

func (s *Store) findLocked(ctx context.Context, employee payroll.EmployeeID, period payroll.Period) (*payroll.PayrollRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectRecord+" WHERE employee_id = ? AND period_month = ? AND period_year = ?",
		string(employee), int(period.Month), period.Year)
	return scanRecord(row)
}

// FindByPeriod returns all records of the period, ordered by employee.
func (s *Store) FindByPeriod(ctx context.Context, period payroll.Period) ([]payroll.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		selectRecord+" WHERE period_month = ? AND period_year = ? ORDER BY employee_id",
		int(period.Month), period.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to query payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// Save persists the record with the optimistic version check. Totals are
// written whole in one statement, never patched piecemeal.
func (s *Store) Save(ctx context.Context, record *payroll.PayrollRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE payroll_records
		SET state = ?, gross_inflow = ?, gross_outflow = ?, net_amount = ?,
		    computed_at = ?, confirmed_at = ?, paid_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		string(record.State),
		record.Totals.GrossInflow.String(),
		record.Totals.GrossOutflow.String(),
		record.Totals.Net.String(),
		nullTime(record.ComputedAt),
		nullTime(record.ConfirmedAt),
		nullTime(record.PaidAt),
		string(record.ID),
		record.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save payroll record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the record never existed or someone else moved it on.
		var exists int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM payroll_records WHERE id = ?", string(record.ID),
		).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return payroll.ErrNotFound
		}
		return payroll.ErrConcurrentModification
	}

	record.Version++
	return nil
}

const selectRecord = `
	SELECT id, employee_id, period_month, period_year, state,
	       gross_inflow, gross_outflow, net_amount, version,
	       computed_at, created_at, confirmed_at, paid_at
	FROM payroll_records
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*payroll.PayrollRecord, error) {
	var (
		r                     payroll.PayrollRecord
		month, year           int
		inflow, outflow, net  string
		computedAt, confirmed sql.NullString
		paidAt                sql.NullString
		createdAt             string
	)

	err := row.Scan(
		&r.ID, &r.EmployeeID, &month, &year, &r.State,
		&inflow, &outflow, &net, &r.Version,
		&computedAt, &createdAt, &confirmed, &paidAt,
	)
	if err == sql.ErrNoRows {
		return nil, payroll.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan payroll record: %w", err)
	}

	r.Period = payroll.Period{Month: time.Month(month), Year: year}
	r.Totals = payroll.Totals{
		GrossInflow:  parseDecimal(inflow),
		GrossOutflow: parseDecimal(outflow),
		Net:          parseDecimal(net),
	}
	r.ComputedAt = parseNullTime(computedAt)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.ConfirmedAt = parseNullTime(confirmed)
	r.PaidAt = parseNullTime(paidAt)
	return &r, nil
}

// =============================================================================
// REVENUE SOURCE (payroll.RevenueSource interface)
// =============================================================================

// TripSettlement is one settled trip as recorded by the dispatch side.
type TripSettlement struct {
	ID            string
	EmployeeID    payroll.EmployeeID
	SettledOn     time.Time
	Amount        decimal.Decimal
	CashCollected decimal.Decimal
	Hours         decimal.Decimal
	DistanceKm    decimal.Decimal
}

// SaveSettlement records a settled trip.
func (s *Store) SaveSettlement(ctx context.Context, t TripSettlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	query := `
		INSERT INTO trip_settlements (id, employee_id, settled_on, amount, cash_collected, hours, distance_km, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.ID, string(t.EmployeeID),
		t.SettledOn.UTC().Format(time.RFC3339),
		t.Amount.String(), t.CashCollected.String(),
		t.Hours.String(), t.DistanceKm.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// RevenueFor aggregates the period's settled trips.
func (s *Store) RevenueFor(ctx context.Context, employee payroll.EmployeeID, period payroll.Period) (payroll.RevenueAttribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT amount, cash_collected, hours, distance_km
		FROM trip_settlements
		WHERE employee_id = ? AND settled_on >= ? AND settled_on < ?
	`
	rows, err := s.db.QueryContext(ctx, query, string(employee),
		period.Start().Format(time.RFC3339), period.End().Format(time.RFC3339))
	if err != nil {
		return payroll.RevenueAttribution{}, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	rev := payroll.ZeroRevenue()
	for rows.Next() {
		var amount, cash, hours, distance string
		if err := rows.Scan(&amount, &cash, &hours, &distance); err != nil {
			return payroll.RevenueAttribution{}, err
		}
		rev.GrossRevenue = rev.GrossRevenue.Add(parseDecimal(amount))
		rev.CashCollected = rev.CashCollected.Add(parseDecimal(cash))
		rev.HoursWorked = rev.HoursWorked.Add(parseDecimal(hours))
		rev.DistanceKm = rev.DistanceKm.Add(parseDecimal(distance))
	}
	return rev, rows.Err()
}

// =============================================================================
// EXPENSE SOURCE (payroll.ExpenseSource interface)
// =============================================================================

// SaveExpenseClaim records an approved personal expense.
func (s *Store) SaveExpenseClaim(ctx context.Context, c payroll.ExpenseClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
		INSERT INTO expense_claims (id, employee_id, incurred_on, amount, description, approved, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, string(c.EmployeeID),
		c.IncurredOn.UTC().Format(time.RFC3339),
		c.Amount.String(), c.Description,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ExpensesFor returns the approved claims of the period.
func (s *Store) ExpensesFor(ctx context.Context, employee payroll.EmployeeID, period payroll.Period) ([]payroll.ExpenseClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, incurred_on, amount, description
		FROM expense_claims
		WHERE employee_id = ? AND approved = 1 AND incurred_on >= ? AND incurred_on < ?
		ORDER BY incurred_on ASC
	`
	rows, err := s.db.QueryContext(ctx, query, string(employee),
		period.Start().Format(time.RFC3339), period.End().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query expense claims: %w", err)
	}
	defer rows.Close()

	var claims []payroll.ExpenseClaim
	for rows.Next() {
		var c payroll.ExpenseClaim
		var incurredOn, amount string
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.EmployeeID, &incurredOn, &amount, &description); err != nil {
			return nil, err
		}
		c.IncurredOn, _ = time.Parse(time.RFC3339, incurredOn)
		c.Amount = parseDecimal(amount)
		c.Description = description.String
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// =============================================================================
// MOVEMENT SOURCE (payroll.MovementSource interface)
// =============================================================================

// SaveCashMovement records a withdrawal or deposit.
func (s *Store) SaveCashMovement(ctx context.Context, m payroll.CashMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.Kind != payroll.MovementWithdrawal && m.Kind != payroll.MovementDeposit {
		return fmt.Errorf("unknown movement kind %q", m.Kind)
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	query := `
		INSERT INTO cash_movements (id, employee_id, moved_on, kind, amount, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		m.ID, string(m.EmployeeID),
		m.MovedOn.UTC().Format(time.RFC3339),
		string(m.Kind), m.Amount.String(), m.Note,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// MovementsFor returns the period's movements, both kinds.
func (s *Store) MovementsFor(ctx context.Context, employee payroll.EmployeeID, period payroll.Period) ([]payroll.CashMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, moved_on, kind, amount, note
		FROM cash_movements
		WHERE employee_id = ? AND moved_on >= ? AND moved_on < ?
		ORDER BY moved_on ASC
	`
	rows, err := s.db.QueryContext(ctx, query, string(employee),
		period.Start().Format(time.RFC3339), period.End().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query cash movements: %w", err)
	}
	defer rows.Close()

	var movements []payroll.CashMovement
	for rows.Next() {
		var m payroll.CashMovement
		var movedOn, amount string
		var note sql.NullString
		if err := rows.Scan(&m.ID, &m.EmployeeID, &movedOn, &m.Kind, &amount, &note); err != nil {
			return nil, err
		}
		m.MovedOn, _ = time.Parse(time.RFC3339, movedOn)
		m.Amount = parseDecimal(amount)
		m.Note = note.String
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// =============================================================================
// HANDOVER SOURCE (payroll.HandoverSource interface)
// =============================================================================

// HandoverEntry is one outstanding remittance obligation. The period's
// total due is the sum of its entries; partial remittances show up
// upstream as fewer or smaller entries, not as mutations here.
type HandoverEntry struct {
	ID         string
	EmployeeID payroll.EmployeeID
	Period     payroll.Period
	Amount     decimal.Decimal
	Note       string
}

// SaveHandover records an outstanding remittance obligation.
func (s *Store) SaveHandover(ctx context.Context, h HandoverEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	query := `
		INSERT INTO cash_handovers (id, employee_id, period_month, period_year, amount, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		h.ID, string(h.EmployeeID),
		int(h.Period.Month), h.Period.Year,
		h.Amount.String(), h.Note,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// HandoverFor returns the period's total outstanding obligation.
func (s *Store) HandoverFor(ctx context.Context, employee payroll.EmployeeID, period payroll.Period) (payroll.CashHandoverDue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT amount FROM cash_handovers
		WHERE employee_id = ? AND period_month = ? AND period_year = ?
	`
	rows, err := s.db.QueryContext(ctx, query, string(employee), int(period.Month), period.Year)
	if err != nil {
		return payroll.CashHandoverDue{}, fmt.Errorf("failed to query handovers: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return payroll.CashHandoverDue{}, err
		}
		total = total.Add(parseDecimal(amount))
	}
	return payroll.CashHandoverDue{Amount: total}, rows.Err()
}

// =============================================================================
// PEER RECEIPT SOURCE (payroll.PeerReceiptSource interface)
// =============================================================================

// SavePeerReceipt records cash passed between employees.
func (s *Store) SavePeerReceipt(ctx context.Context, r payroll.PeerReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	query := `
		INSERT INTO peer_cash_receipts (id, receiver_id, payer_id, received_on, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, string(r.ReceiverID), string(r.PayerID),
		r.ReceivedOn.UTC().Format(time.RFC3339),
		r.Amount.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// PeerReceiptsFor returns cash the employee received from peers during
// the period.
func (s *Store) PeerReceiptsFor(ctx context.Context, employee payroll.EmployeeID, period payroll.Period) ([]payroll.PeerReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, receiver_id, payer_id, received_on, amount
		FROM peer_cash_receipts
		WHERE receiver_id = ? AND received_on >= ? AND received_on < ?
		ORDER BY received_on ASC
	`
	rows, err := s.db.QueryContext(ctx, query, string(employee),
		period.Start().Format(time.RFC3339), period.End().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query peer receipts: %w", err)
	}
	defer rows.Close()

	var receipts []payroll.PeerReceipt
	for rows.Next() {
		var r payroll.PeerReceipt
		var receivedOn, amount string
		if err := rows.Scan(&r.ID, &r.ReceiverID, &r.PayerID, &receivedOn, &amount); err != nil {
			return nil, err
		}
		r.ReceivedOn, _ = time.Parse(time.RFC3339, receivedOn)
		r.Amount = parseDecimal(amount)
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

// =============================================================================
// EMPLOYEE REGISTER
// =============================================================================

// Employee is the minimal register entry used for listing and validation.
type Employee struct {
	ID        payroll.EmployeeID
	Name      string
	CreatedAt time.Time
}

// SaveEmployee upserts an employee.
func (s *Store) SaveEmployee(ctx context.Context, e Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`
	_, err := s.db.ExecContext(ctx, query,
		string(e.ID), e.Name, time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetEmployee returns an employee, or payroll.ErrEmployeeNotFound.
func (s *Store) GetEmployee(ctx context.Context, id payroll.EmployeeID) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e Employee
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM employees WHERE id = ?", string(id),
	).Scan(&e.ID, &e.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, payroll.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM employees ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Name, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
