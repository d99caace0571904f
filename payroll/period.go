package payroll

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - The composite key component for payroll records
// =============================================================================

// Period identifies one calendar month. It is half of the composite key of a
// payroll record: exactly one record exists per (employee, period).
//
// Periods are immutable values. All date math is UTC; the surrounding
// application settles trips in UTC as well.
type Period struct {
	Month time.Month
	Year  int
}

// NewPeriod validates and builds a period. Month is 1..12.
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d out of range", ErrInvalidPeriod, month)
	}
	if year < 2000 || year > 2200 {
		return Period{}, fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, year)
	}
	return Period{Month: time.Month(month), Year: year}, nil
}

// Previous returns the immediately preceding calendar month.
// Carryover balances are read from the previous period's record.
func (p Period) Previous() Period {
	if p.Month == time.January {
		return Period{Month: time.December, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// Next returns the immediately following calendar month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Month: time.January, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}

// Start returns the first instant of the period (inclusive).
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the next period (exclusive upper bound).
// Ledger queries use [Start, End) so entries on the last day are never lost
// to an inclusive-bound off-by-one.
func (p Period) End() time.Time {
	return p.Next().Start()
}

// Contains reports whether t falls within the period.
func (p Period) Contains(t time.Time) bool {
	u := t.UTC()
	return !u.Before(p.Start()) && u.Before(p.End())
}

// IsZero reports whether the period is the zero value.
func (p Period) IsZero() bool {
	return p.Month == 0 && p.Year == 0
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
