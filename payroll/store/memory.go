// Package store provides in-memory implementations of the payroll
// persistence and source interfaces, for testing and development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - RecordStore plus all five input sources
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records map[recordKey]*payroll.PayrollRecord
	byID    map[payroll.RecordID]recordKey

	revenue      map[recordKey]payroll.RevenueAttribution
	expenses     map[recordKey][]payroll.ExpenseClaim
	movements    map[recordKey][]payroll.CashMovement
	handovers    map[recordKey]decimal.Decimal
	peerReceipts map[recordKey][]payroll.PeerReceipt
}

type recordKey struct {
	Employee payroll.EmployeeID
	Period   payroll.Period
}

func NewMemory() *Memory {
	return &Memory{
		records:      make(map[recordKey]*payroll.PayrollRecord),
		byID:         make(map[payroll.RecordID]recordKey),
		revenue:      make(map[recordKey]payroll.RevenueAttribution),
		expenses:     make(map[recordKey][]payroll.ExpenseClaim),
		movements:    make(map[recordKey][]payroll.CashMovement),
		handovers:    make(map[recordKey]decimal.Decimal),
		peerReceipts: make(map[recordKey][]payroll.PeerReceipt),
	}
}

// =============================================================================
// RECORD STORE (payroll.RecordStore interface)
// =============================================================================

func (m *Memory) GetOrCreate(_ context.Context, employee payroll.EmployeeID, period payroll.Period) (*payroll.PayrollRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := recordKey{Employee: employee, Period: period}
	if r, ok := m.records[k]; ok {
		return r.Clone(), nil
	}

	r := &payroll.PayrollRecord{
		ID:         payroll.NewRecordID(),
		EmployeeID: employee,
		Period:     period,
		State:      payroll.StateDraft,
		Totals:     payroll.ZeroTotals(),
		Version:    1,
		CreatedAt:  time.Now().UTC(),
	}
	m.records[k] = r
	m.byID[r.ID] = k
	return r.Clone(), nil
}

func (m *Memory) Get(_ context.Context, id payroll.RecordID) (*payroll.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k, ok := m.byID[id]
	if !ok {
		return nil, payroll.ErrNotFound
	}
	return m.records[k].Clone(), nil
}

func (m *Memory) Find(_ context.Context, employee payroll.EmployeeID, period payroll.Period) (*payroll.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[recordKey{Employee: employee, Period: period}]
	if !ok {
		return nil, payroll.ErrNotFound
	}
	return r.Clone(), nil
}

func (m *Memory) FindByPeriod(_ context.Context, period payroll.Period) ([]payroll.PayrollRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []payroll.PayrollRecord
	for k, r := range m.records {
		if k.Period == period {
			out = append(out, *r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

// Save applies the optimistic check: the stored version must still match
// the caller's copy, otherwise the write is rejected loudly.
func (m *Memory) Save(_ context.Context, record *payroll.PayrollRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, ok := m.byID[record.ID]
	if !ok {
		return payroll.ErrNotFound
	}
	stored := m.records[k]
	if stored.Version != record.Version {
		return payroll.ErrConcurrentModification
	}

	record.Version++
	m.records[k] = record.Clone()
	return nil
}

// =============================================================================
// INPUT SOURCES - Seed with the Add*/Set* helpers below
// =============================================================================

func (m *Memory) RevenueFor(_ context.Context, employee payroll.EmployeeID, period payroll.Period) (payroll.RevenueAttribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if rev, ok := m.revenue[recordKey{Employee: employee, Period: period}]; ok {
		return rev, nil
	}
	return payroll.ZeroRevenue(), nil
}

func (m *Memory) ExpensesFor(_ context.Context, employee payroll.EmployeeID, period payroll.Period) ([]payroll.ExpenseClaim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := recordKey{Employee: employee, Period: period}
	return append([]payroll.ExpenseClaim(nil), m.expenses[k]...), nil
}

func (m *Memory) MovementsFor(_ context.Context, employee payroll.EmployeeID, period payroll.Period) ([]payroll.CashMovement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := recordKey{Employee: employee, Period: period}
	return append([]payroll.CashMovement(nil), m.movements[k]...), nil
}

func (m *Memory) HandoverFor(_ context.Context, employee payroll.EmployeeID, period payroll.Period) (payroll.CashHandoverDue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := recordKey{Employee: employee, Period: period}
	if due, ok := m.handovers[k]; ok {
		return payroll.CashHandoverDue{Amount: due}, nil
	}
	return payroll.CashHandoverDue{Amount: decimal.Zero}, nil
}

func (m *Memory) PeerReceiptsFor(_ context.Context, employee payroll.EmployeeID, period payroll.Period) ([]payroll.PeerReceipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := recordKey{Employee: employee, Period: period}
	return append([]payroll.PeerReceipt(nil), m.peerReceipts[k]...), nil
}

// =============================================================================
// SEEDING HELPERS
// =============================================================================

func (m *Memory) SetRevenue(employee payroll.EmployeeID, period payroll.Period, rev payroll.RevenueAttribution) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revenue[recordKey{Employee: employee, Period: period}] = rev
}

func (m *Memory) AddExpense(period payroll.Period, claim payroll.ExpenseClaim) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := recordKey{Employee: claim.EmployeeID, Period: period}
	m.expenses[k] = append(m.expenses[k], claim)
}

func (m *Memory) AddMovement(period payroll.Period, movement payroll.CashMovement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := recordKey{Employee: movement.EmployeeID, Period: period}
	m.movements[k] = append(m.movements[k], movement)
}

// SetHandover records the period's outstanding remittance obligation.
func (m *Memory) SetHandover(employee payroll.EmployeeID, period payroll.Period, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handovers[recordKey{Employee: employee, Period: period}] = amount
}

func (m *Memory) AddPeerReceipt(period payroll.Period, receipt payroll.PeerReceipt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := recordKey{Employee: receipt.ReceiverID, Period: period}
	m.peerReceipts[k] = append(m.peerReceipts[k], receipt)
}
