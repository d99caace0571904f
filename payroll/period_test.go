package payroll

import (
	"testing"
	"time"
)

func TestNewPeriodValidation(t *testing.T) {
	// GIVEN out-of-range month or year values
	cases := []struct {
		month, year int
		wantErr     bool
	}{
		{1, 2026, false},
		{12, 2026, false},
		{0, 2026, true},
		{13, 2026, true},
		{6, 1999, true},
		{6, 2201, true},
	}

	for _, tc := range cases {
		// WHEN constructing the period
		_, err := NewPeriod(tc.month, tc.year)

		// THEN only valid calendar months in the supported range pass
		if tc.wantErr && err == nil {
			t.Errorf("NewPeriod(%d, %d): expected error", tc.month, tc.year)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("NewPeriod(%d, %d): unexpected error %v", tc.month, tc.year, err)
		}
	}
}

func TestPeriodYearBoundary(t *testing.T) {
	// GIVEN January of a year
	jan, _ := NewPeriod(1, 2026)

	// WHEN stepping backward and forward
	prev := jan.Previous()
	next := jan.Next()

	// THEN the previous period is December of the prior year
	if prev.Month != time.December || prev.Year != 2025 {
		t.Errorf("expected 2025-12, got %s", prev)
	}
	if next.Month != time.February || next.Year != 2026 {
		t.Errorf("expected 2026-02, got %s", next)
	}

	dec, _ := NewPeriod(12, 2025)
	if dec.Next() != jan {
		t.Errorf("December.Next should be January, got %s", dec.Next())
	}
}

func TestPeriodBounds(t *testing.T) {
	// GIVEN February 2026
	feb, _ := NewPeriod(2, 2026)

	// THEN the window is [first-of-month, first-of-next-month)
	if got := feb.Start(); !got.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", got)
	}
	if got := feb.End(); !got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end %v", got)
	}

	lastInstant := time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)
	if !feb.Contains(lastInstant) {
		t.Error("end of February should be inside the period")
	}
	if feb.Contains(feb.End()) {
		t.Error("the end bound is exclusive")
	}
}

func TestPeriodString(t *testing.T) {
	p, _ := NewPeriod(3, 2026)
	if p.String() != "2026-03" {
		t.Errorf("expected 2026-03, got %s", p.String())
	}
}
