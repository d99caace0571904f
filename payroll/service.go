/*
service.go - Reconciliation orchestration and state machine enforcement

PURPOSE:
  The single writer of payroll records. Each operation is one synchronous
  unit of work: the five collaborator reads (plus the prior-period
  carryover read) run in parallel under a bounded deadline, then the one
  version-checked write to the record store happens last.

OPERATIONS:
  Recompute  absent record or draft only; overwrites totals atomically
  Confirm    draft with computed totals only; idempotent on confirmed
  MarkPaid   confirmed only; terminal

FAILURE SEMANTICS:
  - Any collaborator failure or timeout aborts recompute before the write;
    partial totals are never persisted.
  - Rejected transitions surface as *TransitionError with the current
    state and attempted operation. Never silently ignored.
  - A conflicting save surfaces as ErrConcurrentModification. The service
    never auto-retries: retry on financial writes is the caller's
    explicit, visible decision.
  - Operations run to their natural end even if the caller disconnects;
    the record is never left in an undefined intermediate state.

SEE ALSO:
  - calculator.go: The pure computation
  - store.go: The optimistic-save contract
*/
package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultReadTimeout bounds the parallel collaborator reads of one
// recompute. No operation may suspend indefinitely.
const DefaultReadTimeout = 5 * time.Second

// =============================================================================
// SERVICE
// =============================================================================

// Service orchestrates recompute, confirm and markPaid over one record
// store and the five read-only input sources.
type Service struct {
	Records RecordStore

	Revenue      RevenueSource
	Expenses     ExpenseSource
	Movements    MovementSource
	Handovers    HandoverSource
	PeerReceipts PeerReceiptSource

	// ReadTimeout bounds the input fetch of one recompute.
	ReadTimeout time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// Deps bundles the service's collaborators.
type Deps struct {
	Records      RecordStore
	Revenue      RevenueSource
	Expenses     ExpenseSource
	Movements    MovementSource
	Handovers    HandoverSource
	PeerReceipts PeerReceiptSource
	ReadTimeout  time.Duration
}

// NewService wires a service from its collaborators.
func NewService(d Deps) *Service {
	timeout := d.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	return &Service{
		Records:      d.Records,
		Revenue:      d.Revenue,
		Expenses:     d.Expenses,
		Movements:    d.Movements,
		Handovers:    d.Handovers,
		PeerReceipts: d.PeerReceipts,
		ReadTimeout:  timeout,
		now:          time.Now,
	}
}

// =============================================================================
// INPUT FETCH - Parallel reads under one deadline
// =============================================================================

// periodInputs is everything one computation consumes.
type periodInputs struct {
	revenue      RevenueAttribution
	expenses     []ExpenseClaim
	movements    []CashMovement
	handover     CashHandoverDue
	peerReceipts []PeerReceipt
	carryover    decimal.Decimal
}

// fetchInputs reads all six inputs concurrently. A failure or timeout on
// any one fails the whole fetch; the caller persists nothing in that case.
func (s *Service) fetchInputs(ctx context.Context, employee EmployeeID, period Period) (*periodInputs, error) {
	ctx, cancel := context.WithTimeout(ctx, s.ReadTimeout)
	defer cancel()

	var in periodInputs
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rev, err := s.Revenue.RevenueFor(ctx, employee, period)
		if err != nil {
			return &InputError{Source: "revenue", Err: err}
		}
		in.revenue = rev
		return nil
	})
	g.Go(func() error {
		claims, err := s.Expenses.ExpensesFor(ctx, employee, period)
		if err != nil {
			return &InputError{Source: "expenses", Err: err}
		}
		in.expenses = claims
		return nil
	})
	g.Go(func() error {
		moves, err := s.Movements.MovementsFor(ctx, employee, period)
		if err != nil {
			return &InputError{Source: "movements", Err: err}
		}
		in.movements = moves
		return nil
	})
	g.Go(func() error {
		due, err := s.Handovers.HandoverFor(ctx, employee, period)
		if err != nil {
			return &InputError{Source: "handover", Err: err}
		}
		in.handover = due
		return nil
	})
	g.Go(func() error {
		receipts, err := s.PeerReceipts.PeerReceiptsFor(ctx, employee, period)
		if err != nil {
			return &InputError{Source: "peer_receipts", Err: err}
		}
		in.peerReceipts = receipts
		return nil
	})
	g.Go(func() error {
		carry, err := s.carryoverFor(ctx, employee, period)
		if err != nil {
			return &InputError{Source: "carryover", Err: err}
		}
		in.carryover = carry
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &in, nil
}

// carryoverFor reads the net of the immediately preceding period's record.
// A missing or never-computed prior record contributes zero.
func (s *Service) carryoverFor(ctx context.Context, employee EmployeeID, period Period) (decimal.Decimal, error) {
	prev, err := s.Records.Find(ctx, employee, period.Previous())
	if errors.Is(err, ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	if !prev.Computed() {
		return decimal.Zero, nil
	}
	return prev.Totals.Net, nil
}

// =============================================================================
// RECOMPUTE
// =============================================================================

// Recompute creates the (employee, period) record on first use, fetches all
// inputs, and overwrites the draft's totals atomically. Rejected with
// *TransitionError once the record is confirmed or paid.
func (s *Service) Recompute(ctx context.Context, employee EmployeeID, period Period) (*PayrollRecord, error) {
	record, err := s.Records.GetOrCreate(ctx, employee, period)
	if err != nil {
		return nil, err
	}
	if record.State != StateDraft {
		return nil, &TransitionError{RecordID: record.ID, State: record.State, Op: OpRecompute}
	}

	in, err := s.fetchInputs(ctx, employee, period)
	if err != nil {
		return nil, err
	}

	breakdown := Compute(in.revenue, in.expenses, in.movements, in.handover, in.peerReceipts, in.carryover)
	if err := record.ApplyTotals(breakdown.Totals(), s.now()); err != nil {
		return nil, err
	}

	if err := s.Records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// =============================================================================
// CONFIRM / MARK PAID
// =============================================================================

// Confirm freezes a computed draft. Confirming an already-confirmed record
// is a no-op success so retried client requests don't surface as errors.
func (s *Service) Confirm(ctx context.Context, id RecordID) (*PayrollRecord, error) {
	record, err := s.Records.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := record.Confirm(s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return record, nil
	}

	if err := s.Records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// MarkPaid moves a confirmed record to the terminal paid state. Audited,
// irreversible.
func (s *Service) MarkPaid(ctx context.Context, id RecordID) (*PayrollRecord, error) {
	record, err := s.Records.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := record.MarkPaid(s.now()); err != nil {
		return nil, err
	}

	if err := s.Records.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// =============================================================================
// READS
// =============================================================================

// Record returns the record for (employee, period), or ErrNotFound.
func (s *Service) Record(ctx context.Context, employee EmployeeID, period Period) (*PayrollRecord, error) {
	return s.Records.Find(ctx, employee, period)
}

// RecordByID returns the record by id, or ErrNotFound.
func (s *Service) RecordByID(ctx context.Context, id RecordID) (*PayrollRecord, error) {
	return s.Records.Get(ctx, id)
}

// RecordsForPeriod returns every record of the period.
func (s *Service) RecordsForPeriod(ctx context.Context, period Period) ([]PayrollRecord, error) {
	return s.Records.FindByPeriod(ctx, period)
}

// Statement is the period's raw input sums alongside the stored record,
// if any. What the UI shows while an administrator reviews a draft.
type Statement struct {
	EmployeeID EmployeeID
	Period     Period
	Breakdown  Breakdown
	Totals     Totals
	Record     *PayrollRecord // nil when no record exists yet
}

// Statement recomputes the period's breakdown without persisting anything.
func (s *Service) Statement(ctx context.Context, employee EmployeeID, period Period) (*Statement, error) {
	in, err := s.fetchInputs(ctx, employee, period)
	if err != nil {
		return nil, err
	}
	breakdown := Compute(in.revenue, in.expenses, in.movements, in.handover, in.peerReceipts, in.carryover)

	record, err := s.Records.Find(ctx, employee, period)
	if errors.Is(err, ErrNotFound) {
		record = nil
	} else if err != nil {
		return nil, err
	}

	return &Statement{
		EmployeeID: employee,
		Period:     period,
		Breakdown:  breakdown,
		Totals:     breakdown.Totals(),
		Record:     record,
	}, nil
}

// NewRecordID mints a record id. Exposed for stores.
func NewRecordID() RecordID {
	return RecordID(uuid.NewString())
}
