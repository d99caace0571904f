/*
Package payroll provides the monthly payroll reconciliation engine.

PURPOSE:
  For each employee and calendar period, the engine aggregates independent
  financial streams (trip revenue, cash handed over, cash withdrawn,
  personal expense reimbursements, prior-period carryover) into a single
  net payable amount, and governs when that amount may be recomputed,
  frozen, and marked paid.

KEY CONCEPTS IN THIS FILE (record.go):
  - PayrollRecord: The aggregate root, one per (employee, period)
  - Totals: Frozen {grossInflow, grossOutflow, net} snapshot
  - State: draft -> confirmed -> paid, monotonic, paid is terminal

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift
  2. Lifecycle safety: Totals are mutable only while state = draft;
     confirmation freezes them, payment is terminal
  3. Audit: Records are never deleted; corrections after payment flow
     through the next period's carryover, not mutation of history
  4. Conflict signaling: Writes are version-checked; a conflicting write
     fails loudly instead of merging

SEE ALSO:
  - calculator.go: Pure computation of Totals from period inputs
  - service.go: Orchestrates recompute/confirm/markPaid
  - store.go: Persistence interface with the optimistic check
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type RecordID string

// =============================================================================
// LIFECYCLE - draft -> confirmed -> paid
// =============================================================================

type State string

const (
	StateDraft     State = "draft"
	StateConfirmed State = "confirmed"
	StatePaid      State = "paid"
)

// Valid reports whether s is one of the three lifecycle states.
func (s State) Valid() bool {
	return s == StateDraft || s == StateConfirmed || s == StatePaid
}

// Operation names a lifecycle transition, used in rejection errors.
type Operation string

const (
	OpRecompute Operation = "recompute"
	OpConfirm   Operation = "confirm"
	OpMarkPaid  Operation = "mark paid"
)

// =============================================================================
// TOTALS - Frozen snapshot of one computation
// =============================================================================

// Totals is the result of one reconciliation computation. The two partial
// sums are exposed separately because the UI and downstream audit must show
// "what the company owes" vs "what must be deducted", not just a net figure.
//
// Invariant: Net = GrossInflow - GrossOutflow, always. Totals are written
// whole, never patched field by field.
type Totals struct {
	GrossInflow  decimal.Decimal
	GrossOutflow decimal.Decimal
	Net          decimal.Decimal
}

// ZeroTotals returns all-zero totals. Absence of activity is a valid,
// displayable state, not an error.
func ZeroTotals() Totals {
	return Totals{
		GrossInflow:  decimal.Zero,
		GrossOutflow: decimal.Zero,
		Net:          decimal.Zero,
	}
}

// Consistent reports whether the stored net matches inflow minus outflow.
func (t Totals) Consistent() bool {
	return t.Net.Equal(t.GrossInflow.Sub(t.GrossOutflow))
}

// Negative reports whether the employee owes the company for this period.
// Downstream must flag this distinctly.
func (t Totals) Negative() bool {
	return t.Net.IsNegative()
}

// =============================================================================
// PAYROLL RECORD - Aggregate root, one per (employee, period)
// =============================================================================

// PayrollRecord is the only mutable shared resource in this subsystem.
// It is protected by the store's optimistic version check, not a global
// lock: reconciliation across different employees/periods is fully
// independent and proceeds in parallel.
type PayrollRecord struct {
	ID         RecordID
	EmployeeID EmployeeID
	Period     Period
	State      State
	Totals     Totals

	// ComputedAt is nil until the first successful computation. It guards
	// confirm: a never-computed record cannot be frozen.
	ComputedAt *time.Time

	// Version backs the optimistic check in the record store. Save rejects
	// the write unless the stored version still matches.
	Version int

	CreatedAt   time.Time
	ConfirmedAt *time.Time
	PaidAt      *time.Time
}

// Computed reports whether totals have been populated at least once.
func (r *PayrollRecord) Computed() bool {
	return r.ComputedAt != nil
}

// ApplyTotals overwrites the record's totals with a fresh computation.
// Allowed only in draft: recompute must never silently alter a confirmed
// figure.
func (r *PayrollRecord) ApplyTotals(t Totals, now time.Time) error {
	if r.State != StateDraft {
		return &TransitionError{RecordID: r.ID, State: r.State, Op: OpRecompute}
	}
	r.Totals = t
	at := now.UTC()
	r.ComputedAt = &at
	return nil
}

// Confirm freezes the record. Returns true if the state changed, false for
// the idempotent no-op on an already-confirmed record (retried client
// requests must not fail and must not touch ConfirmedAt).
func (r *PayrollRecord) Confirm(now time.Time) (bool, error) {
	switch r.State {
	case StateConfirmed:
		return false, nil
	case StateDraft:
		if !r.Computed() {
			return false, &TransitionError{
				RecordID: r.ID, State: r.State, Op: OpConfirm,
				Reason: "totals never computed",
			}
		}
		at := now.UTC()
		r.State = StateConfirmed
		r.ConfirmedAt = &at
		return true, nil
	default:
		return false, &TransitionError{RecordID: r.ID, State: r.State, Op: OpConfirm}
	}
}

// MarkPaid moves a confirmed record to the terminal paid state.
func (r *PayrollRecord) MarkPaid(now time.Time) error {
	if r.State != StateConfirmed {
		return &TransitionError{RecordID: r.ID, State: r.State, Op: OpMarkPaid}
	}
	at := now.UTC()
	r.State = StatePaid
	r.PaidAt = &at
	return nil
}

// Clone returns a deep copy. Stores hand out clones so callers can't mutate
// shared state behind the version check.
func (r *PayrollRecord) Clone() *PayrollRecord {
	cp := *r
	if r.ComputedAt != nil {
		at := *r.ComputedAt
		cp.ComputedAt = &at
	}
	if r.ConfirmedAt != nil {
		at := *r.ConfirmedAt
		cp.ConfirmedAt = &at
	}
	if r.PaidAt != nil {
		at := *r.PaidAt
		cp.PaidAt = &at
	}
	return &cp
}
