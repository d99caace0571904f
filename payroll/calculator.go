/*
calculator.go - Pure reconciliation arithmetic

PURPOSE:
  Combines the period's financial streams into the two unsigned partial
  sums (gross inflow, gross outflow) and their difference (net). Pure and
  side-effect-free: no I/O, trivially unit-testable.

THE GOVERNING RULE:
  inflow  = grossRevenue + personalExpenses + deposits + carryoverIncome
  outflow = withdrawals + peerReceipts + cashOwed + carryoverLiability
  net     = inflow - outflow

  A positive carryover (company owed the employee last period) counts as
  income this period; a negative carryover counts as a deduction by its
  absolute value. Exactly one of the two carryover components is non-zero.

SEE ALSO:
  - inputs.go: The stream types
  - service.go: Fetches inputs and persists the result
*/
package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// BREAKDOWN - All partial sums of one computation
// =============================================================================

// Breakdown carries every component of a reconciliation so the caller can
// display how the totals were reached, not just the end figures.
type Breakdown struct {
	GrossRevenue     decimal.Decimal
	PersonalExpenses decimal.Decimal
	Withdrawals      decimal.Decimal
	Deposits         decimal.Decimal
	CashOwed         decimal.Decimal
	PeerReceipts     decimal.Decimal

	CarryoverIncome    decimal.Decimal // carryover > 0
	CarryoverLiability decimal.Decimal // abs(carryover) when carryover < 0
}

// Totals folds the breakdown into the frozen snapshot stored on the record.
func (b Breakdown) Totals() Totals {
	inflow := b.GrossRevenue.
		Add(b.PersonalExpenses).
		Add(b.Deposits).
		Add(b.CarryoverIncome)
	outflow := b.Withdrawals.
		Add(b.PeerReceipts).
		Add(b.CashOwed).
		Add(b.CarryoverLiability)
	return Totals{
		GrossInflow:  inflow,
		GrossOutflow: outflow,
		Net:          inflow.Sub(outflow),
	}
}

// =============================================================================
// COMPUTE - The calculator contract
// =============================================================================

// Compute aggregates one employee-period. All-zero inputs produce all-zero
// sums: absence of activity is a valid result, not an error.
func Compute(
	revenue RevenueAttribution,
	expenses []ExpenseClaim,
	movements []CashMovement,
	handover CashHandoverDue,
	peerReceipts []PeerReceipt,
	carryover decimal.Decimal,
) Breakdown {
	b := Breakdown{
		GrossRevenue:       revenue.GrossRevenue,
		PersonalExpenses:   decimal.Zero,
		Withdrawals:        decimal.Zero,
		Deposits:           decimal.Zero,
		CashOwed:           handover.Amount,
		PeerReceipts:       decimal.Zero,
		CarryoverIncome:    decimal.Zero,
		CarryoverLiability: decimal.Zero,
	}

	for _, e := range expenses {
		b.PersonalExpenses = b.PersonalExpenses.Add(e.Amount)
	}

	for _, m := range movements {
		switch m.Kind {
		case MovementWithdrawal:
			b.Withdrawals = b.Withdrawals.Add(m.Amount)
		case MovementDeposit:
			b.Deposits = b.Deposits.Add(m.Amount)
		}
	}

	for _, r := range peerReceipts {
		b.PeerReceipts = b.PeerReceipts.Add(r.Amount)
	}

	if carryover.IsPositive() {
		b.CarryoverIncome = carryover
	} else if carryover.IsNegative() {
		b.CarryoverLiability = carryover.Abs()
	}

	return b
}
