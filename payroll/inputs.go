/*
inputs.go - Financial streams consumed by the reconciliation calculator

PURPOSE:
  Defines the read-only inputs the engine aggregates per employee/period,
  and the source interfaces the service fetches them through. The sources
  are independent of each other and of the record store, so the service
  reads them in parallel.

  VAT apportionment happens upstream, at trip settlement time. GrossRevenue
  arrives here as fixed at settlement; the engine never re-derives VAT.

SEE ALSO:
  - calculator.go: Consumes these inputs
  - store/sqlite/sqlite.go: Production sources over the ledger tables
  - payroll/store/memory.go: In-memory sources for testing
*/
package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT TYPES
// =============================================================================

// RevenueAttribution is the per-employee, per-period figure supplied by the
// revenue aggregator: settled trip revenue plus activity metrics.
type RevenueAttribution struct {
	// GrossRevenue is the sum of trip amounts assigned to the employee,
	// VAT-inclusive as fixed at trip settlement time.
	GrossRevenue decimal.Decimal

	HoursWorked decimal.Decimal
	DistanceKm  decimal.Decimal

	// CashCollected is the subset of GrossRevenue actually received in cash
	// by the employee, pending handover. Informational here: the outstanding
	// remittance obligation comes from CashHandoverDue, which may differ
	// when partial remittances already occurred.
	CashCollected decimal.Decimal
}

// ZeroRevenue returns an all-zero attribution for periods with no activity.
func ZeroRevenue() RevenueAttribution {
	return RevenueAttribution{
		GrossRevenue:  decimal.Zero,
		HoursWorked:   decimal.Zero,
		DistanceKm:    decimal.Zero,
		CashCollected: decimal.Zero,
	}
}

// ExpenseClaim is an approved personal expense the employee paid on the
// company's behalf during the period. Reimbursed as inflow.
type ExpenseClaim struct {
	ID          string
	EmployeeID  EmployeeID
	IncurredOn  time.Time
	Amount      decimal.Decimal
	Description string
}

// MovementKind distinguishes the two directions of company-cash movements.
type MovementKind string

const (
	// MovementWithdrawal is money the employee took from company cash.
	// A liability for the employee, deducted at reconciliation.
	MovementWithdrawal MovementKind = "withdrawal"

	// MovementDeposit is money the employee paid into company funds.
	// An asset for the employee, credited at reconciliation.
	MovementDeposit MovementKind = "deposit"
)

// CashMovement is one withdrawal or deposit against company cash.
type CashMovement struct {
	ID         string
	EmployeeID EmployeeID
	MovedOn    time.Time
	Kind       MovementKind
	Amount     decimal.Decimal
	Note       string
}

// CashHandoverDue is the outstanding remittance obligation for the period:
// cash collected from customers that the employee still must hand over.
type CashHandoverDue struct {
	Amount decimal.Decimal
}

// PeerReceipt is cash one employee received from another, e.g. a manager
// collecting cash on behalf of a driver. An outflow for the receiving
// party, modeled independently of the handover obligation.
type PeerReceipt struct {
	ID         string
	ReceiverID EmployeeID
	PayerID    EmployeeID
	ReceivedOn time.Time
	Amount     decimal.Decimal
}

// =============================================================================
// SOURCES - Read-only collaborators, fetched in parallel
// =============================================================================

// RevenueSource is the revenue aggregator. A period with no settled trips
// yields ZeroRevenue, not an error.
type RevenueSource interface {
	RevenueFor(ctx context.Context, employee EmployeeID, period Period) (RevenueAttribution, error)
}

// ExpenseSource returns the approved expense claims of the period.
type ExpenseSource interface {
	ExpensesFor(ctx context.Context, employee EmployeeID, period Period) ([]ExpenseClaim, error)
}

// MovementSource returns the cash movements of the period, both kinds.
type MovementSource interface {
	MovementsFor(ctx context.Context, employee EmployeeID, period Period) ([]CashMovement, error)
}

// HandoverSource returns the outstanding handover obligation of the period.
type HandoverSource interface {
	HandoverFor(ctx context.Context, employee EmployeeID, period Period) (CashHandoverDue, error)
}

// PeerReceiptSource returns cash received from other employees during the
// period.
type PeerReceiptSource interface {
	PeerReceiptsFor(ctx context.Context, employee EmployeeID, period Period) ([]PeerReceipt, error)
}
