package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return v
}

func mustPeriod(t *testing.T, month, year int) payroll.Period {
	t.Helper()
	p, err := payroll.NewPeriod(month, year)
	if err != nil {
		t.Fatalf("bad period %d/%d: %v", month, year, err)
	}
	return p
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	// GIVEN no record for the pair
	s := newTestStore(t)
	ctx := context.Background()
	period := mustPeriod(t, 3, 2026)

	// WHEN creating twice
	first, err := s.GetOrCreate(ctx, "emp-1", period)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := s.GetOrCreate(ctx, "emp-1", period)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}

	// THEN both calls converge on one row
	if first.ID != second.ID {
		t.Errorf("expected one record, got %s and %s", first.ID, second.ID)
	}
	if first.State != payroll.StateDraft || first.Version != 1 {
		t.Errorf("unexpected fresh record: state=%s version=%d", first.State, first.Version)
	}
	if !first.Totals.Net.IsZero() {
		t.Errorf("fresh record should have zero totals, got %s", first.Totals.Net)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	period := mustPeriod(t, 3, 2026)

	record, err := s.GetOrCreate(ctx, "emp-1", period)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := record.ApplyTotals(payroll.Totals{
		GrossInflow:  d(t, "1050"),
		GrossOutflow: d(t, "520"),
		Net:          d(t, "530"),
	}, time.Now()); err != nil {
		t.Fatalf("apply totals: %v", err)
	}
	if err := s.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}
	if record.Version != 2 {
		t.Errorf("save should bump version in place, got %d", record.Version)
	}

	loaded, err := s.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Totals.Net.Equal(d(t, "530")) {
		t.Errorf("expected net 530, got %s", loaded.Totals.Net)
	}
	if loaded.ComputedAt == nil {
		t.Error("computed_at should survive the round trip")
	}
	if loaded.Version != 2 {
		t.Errorf("expected version 2, got %d", loaded.Version)
	}
}

func TestSaveDetectsStaleVersion(t *testing.T) {
	// GIVEN two administrators holding the same version
	s := newTestStore(t)
	ctx := context.Background()
	period := mustPeriod(t, 3, 2026)

	record, err := s.GetOrCreate(ctx, "emp-1", period)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stale := record.Clone()

	// WHEN the first write lands and the second retries with the old version
	record.ApplyTotals(payroll.ZeroTotals(), time.Now())
	if err := s.Save(ctx, record); err != nil {
		t.Fatalf("first save: %v", err)
	}

	stale.ApplyTotals(payroll.ZeroTotals(), time.Now())
	err = s.Save(ctx, stale)

	// THEN the stale write is rejected, not merged
	if !errors.Is(err, payroll.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
}

func TestSaveUnknownRecord(t *testing.T) {
	s := newTestStore(t)
	ghost := &payroll.PayrollRecord{
		ID:      "never-created",
		State:   payroll.StateDraft,
		Totals:  payroll.ZeroTotals(),
		Version: 1,
	}
	if err := s.Save(context.Background(), ghost); !errors.Is(err, payroll.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByPeriod(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	period := mustPeriod(t, 4, 2026)

	for _, emp := range []payroll.EmployeeID{"emp-b", "emp-a"} {
		if _, err := s.GetOrCreate(ctx, emp, period); err != nil {
			t.Fatalf("create %s: %v", emp, err)
		}
	}
	// A neighboring period that must not leak in.
	if _, err := s.GetOrCreate(ctx, "emp-a", period.Next()); err != nil {
		t.Fatalf("create next period: %v", err)
	}

	records, err := s.FindByPeriod(ctx, period)
	if err != nil {
		t.Fatalf("find by period: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].EmployeeID != "emp-a" || records[1].EmployeeID != "emp-b" {
		t.Errorf("expected employee ordering, got %s, %s",
			records[0].EmployeeID, records[1].EmployeeID)
	}
}

func TestRevenueAggregationWindow(t *testing.T) {
	// GIVEN trips inside and just outside March
	s := newTestStore(t)
	ctx := context.Background()
	march := mustPeriod(t, 3, 2026)

	trips := []TripSettlement{
		{EmployeeID: "emp-1", SettledOn: date(2026, 3, 1), Amount: d(t, "400"), CashCollected: d(t, "100")},
		{EmployeeID: "emp-1", SettledOn: date(2026, 3, 31), Amount: d(t, "600"), CashCollected: d(t, "200")},
		{EmployeeID: "emp-1", SettledOn: date(2026, 2, 28), Amount: d(t, "999")},
		{EmployeeID: "emp-1", SettledOn: date(2026, 4, 1), Amount: d(t, "999")},
		{EmployeeID: "emp-2", SettledOn: date(2026, 3, 15), Amount: d(t, "999")},
	}
	for _, trip := range trips {
		if err := s.SaveSettlement(ctx, trip); err != nil {
			t.Fatalf("save settlement: %v", err)
		}
	}

	// WHEN aggregating the month
	rev, err := s.RevenueFor(ctx, "emp-1", march)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}

	// THEN only emp-1's March trips count
	if !rev.GrossRevenue.Equal(d(t, "1000")) {
		t.Errorf("expected 1000, got %s", rev.GrossRevenue)
	}
	if !rev.CashCollected.Equal(d(t, "300")) {
		t.Errorf("expected cash 300, got %s", rev.CashCollected)
	}
}

func TestRevenueEmptyMonth(t *testing.T) {
	s := newTestStore(t)
	rev, err := s.RevenueFor(context.Background(), "emp-1", mustPeriod(t, 3, 2026))
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if !rev.GrossRevenue.IsZero() {
		t.Errorf("expected zero, got %s", rev.GrossRevenue)
	}
}

func TestExpenseQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	march := mustPeriod(t, 3, 2026)

	claims := []payroll.ExpenseClaim{
		{EmployeeID: "emp-1", IncurredOn: date(2026, 3, 10), Amount: d(t, "30"), Description: "fuel"},
		{EmployeeID: "emp-1", IncurredOn: date(2026, 3, 20), Amount: d(t, "20"), Description: "parking"},
		{EmployeeID: "emp-1", IncurredOn: date(2026, 4, 2), Amount: d(t, "99")},
	}
	for _, c := range claims {
		if err := s.SaveExpenseClaim(ctx, c); err != nil {
			t.Fatalf("save claim: %v", err)
		}
	}

	got, err := s.ExpensesFor(ctx, "emp-1", march)
	if err != nil {
		t.Fatalf("expenses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(got))
	}
	if got[0].Description != "fuel" {
		t.Errorf("expected chronological order, got %q first", got[0].Description)
	}
}

func TestMovementKindValidation(t *testing.T) {
	s := newTestStore(t)
	err := s.SaveCashMovement(context.Background(), payroll.CashMovement{
		EmployeeID: "emp-1", MovedOn: date(2026, 3, 5),
		Kind: "loan", Amount: d(t, "10"),
	})
	if err == nil {
		t.Fatal("expected rejection of unknown movement kind")
	}
}

func TestMovementQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	march := mustPeriod(t, 3, 2026)

	movements := []payroll.CashMovement{
		{EmployeeID: "emp-1", MovedOn: date(2026, 3, 5), Kind: payroll.MovementWithdrawal, Amount: d(t, "200")},
		{EmployeeID: "emp-1", MovedOn: date(2026, 3, 12), Kind: payroll.MovementDeposit, Amount: d(t, "80")},
	}
	for _, m := range movements {
		if err := s.SaveCashMovement(ctx, m); err != nil {
			t.Fatalf("save movement: %v", err)
		}
	}

	got, err := s.MovementsFor(ctx, "emp-1", march)
	if err != nil {
		t.Fatalf("movements: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(got))
	}
	if got[0].Kind != payroll.MovementWithdrawal || !got[0].Amount.Equal(d(t, "200")) {
		t.Errorf("unexpected first movement: %+v", got[0])
	}
}

func TestHandoverSum(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	march := mustPeriod(t, 3, 2026)

	entries := []HandoverEntry{
		{EmployeeID: "emp-1", Period: march, Amount: d(t, "120")},
		{EmployeeID: "emp-1", Period: march, Amount: d(t, "180")},
		{EmployeeID: "emp-1", Period: march.Next(), Amount: d(t, "999")},
	}
	for _, h := range entries {
		if err := s.SaveHandover(ctx, h); err != nil {
			t.Fatalf("save handover: %v", err)
		}
	}

	due, err := s.HandoverFor(ctx, "emp-1", march)
	if err != nil {
		t.Fatalf("handover: %v", err)
	}
	if !due.Amount.Equal(d(t, "300")) {
		t.Errorf("expected 300, got %s", due.Amount)
	}
}

func TestPeerReceiptsByReceiver(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	march := mustPeriod(t, 3, 2026)

	receipts := []payroll.PeerReceipt{
		{ReceiverID: "emp-1", PayerID: "emp-2", ReceivedOn: date(2026, 3, 8), Amount: d(t, "45")},
		{ReceiverID: "emp-2", PayerID: "emp-1", ReceivedOn: date(2026, 3, 9), Amount: d(t, "999")},
	}
	for _, r := range receipts {
		if err := s.SavePeerReceipt(ctx, r); err != nil {
			t.Fatalf("save receipt: %v", err)
		}
	}

	got, err := s.PeerReceiptsFor(ctx, "emp-1", march)
	if err != nil {
		t.Fatalf("receipts: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 receipt, got %d", len(got))
	}
	if got[0].PayerID != "emp-2" {
		t.Errorf("unexpected payer %s", got[0].PayerID)
	}
}

func TestEmployeeRegister(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveEmployee(ctx, Employee{ID: "emp-1", Name: "Ada"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Upsert renames in place.
	if err := s.SaveEmployee(ctx, Employee{ID: "emp-1", Name: "Ada L."}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.SaveEmployee(ctx, Employee{ID: "emp-2", Name: "Bob"}); err != nil {
		t.Fatalf("save second: %v", err)
	}

	emp, err := s.GetEmployee(ctx, "emp-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if emp.Name != "Ada L." {
		t.Errorf("expected upserted name, got %q", emp.Name)
	}

	if _, err := s.GetEmployee(ctx, "emp-404"); !errors.Is(err, payroll.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	all, err := s.ListEmployees(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(all))
	}
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 12, 0, 0, 0, time.UTC)
}
