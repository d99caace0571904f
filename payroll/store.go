/*
store.go - Persistence interface for payroll records

PURPOSE:
  Defines the interface between the reconciliation service and the
  database. Implementations must uphold two invariants:

  1. UNIQUENESS: exactly one record per (employee, period). GetOrCreate
     never produces a duplicate, even under concurrent calls.
  2. OPTIMISTIC CHECK: Save rejects the write with ErrConcurrentModification
     when the stored record changed since the caller read it. Conflicts
     fail loudly; last-write-wins is forbidden here.

  Records are never deleted. Corrections after payment flow through the
  next period's carryover.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite store
  - payroll/store/memory.go: In-memory store for testing

SEE ALSO:
  - service.go: The only writer
  - record.go: Version field backing the optimistic check
*/
package payroll

import "context"

// RecordStore persists payroll records.
type RecordStore interface {
	// GetOrCreate returns the record for (employee, period), creating it as
	// a zero-totals draft on first use. Creation is atomic with respect to
	// concurrent callers: both see the same record.
	GetOrCreate(ctx context.Context, employee EmployeeID, period Period) (*PayrollRecord, error)

	// Get returns the record by id, or ErrNotFound.
	Get(ctx context.Context, id RecordID) (*PayrollRecord, error)

	// Find returns the record for (employee, period), or ErrNotFound.
	Find(ctx context.Context, employee EmployeeID, period Period) (*PayrollRecord, error)

	// FindByPeriod returns all records of the period, ordered by employee.
	FindByPeriod(ctx context.Context, period Period) ([]PayrollRecord, error)

	// Save persists the record if the stored version still matches
	// record.Version, then increments record.Version in place. Returns
	// ErrConcurrentModification on a stale version and ErrNotFound when the
	// record was never created.
	Save(ctx context.Context, record *PayrollRecord) error
}
