/*
errors.go - Centralized error types for the reconciliation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is/errors.As; no error in this package is
  ever swallowed - every rejected transition is returned to the caller,
  because payroll correctness depends on the caller noticing.

ERROR CATEGORIES:
  1. Lifecycle errors - rejected state transitions
  2. Input errors     - collaborator reads that failed or timed out
  3. Store errors     - missing records, optimistic-lock conflicts

USAGE:
  if errors.Is(err, payroll.ErrConcurrentModification) {
      // re-read the record and retry the intended action
  }

  var tr *payroll.TransitionError
  if errors.As(err, &tr) {
      // tr.State and tr.Op explain the rejection to the user
  }

SEE ALSO:
  - record.go: Produces TransitionError
  - service.go: Produces InputError, maps store conflicts
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced payroll record doesn't exist.
	ErrNotFound = errors.New("payroll record not found")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrInvalidTransition is returned for any state-machine violation:
	// recompute on confirmed/paid, confirm on a never-computed or paid
	// record, markPaid on anything but confirmed.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrConcurrentModification is returned when the optimistic check on save
	// detects that the stored record changed since it was read. The caller
	// should re-read and retry; the write is never merged silently.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrInputUnavailable is returned when a collaborator read failed or
	// timed out during recompute. No partial totals are persisted.
	ErrInputUnavailable = errors.New("reconciliation input unavailable")

	// ErrInvalidPeriod is returned when a period is malformed.
	ErrInvalidPeriod = errors.New("invalid payroll period")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TransitionError reports a rejected lifecycle transition with enough context
// for the caller to explain it to the user.
type TransitionError struct {
	RecordID RecordID
	State    State     // state the record was in
	Op       Operation // transition that was attempted
	Reason   string    // optional detail, e.g. "totals never computed"
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s record %s in state %q: %s", e.Op, e.RecordID, e.State, e.Reason)
	}
	return fmt.Sprintf("cannot %s record %s in state %q", e.Op, e.RecordID, e.State)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// InputError reports which collaborator read failed during recompute.
type InputError struct {
	Source string // "revenue", "expenses", "movements", "handover", "peer_receipts", "carryover"
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Source, e.Err)
}

func (e *InputError) Unwrap() error {
	return ErrInputUnavailable
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry. The service
// never retries on its own; retry-after-failure on financial writes is the
// caller's explicit decision.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification) ||
		errors.Is(err, ErrInputUnavailable)
}

// IsNotFound returns true if the error indicates a missing record or employee.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrEmployeeNotFound)
}

// IsClientError returns true if the error is due to invalid client input or
// a request that conflicts with the record's current state.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInvalidPeriod)
}
