package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amt(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := ParseAmount(s)
	if err != nil {
		t.Fatalf("parse amount %q: %v", s, err)
	}
	return d
}

func TestParseDay(t *testing.T) {
	cases := []struct {
		in  string
		out time.Time
		ok  bool
	}{
		{"2025-03-09", day(2025, 3, 9), true},
		{"2025-03-09T23:59:00Z", day(2025, 3, 9), true},
		// A late evening in a western zone is already the next UTC day.
		{"2025-03-09T23:30:00-05:00", day(2025, 3, 10), true},
		{"", time.Time{}, false},
		{"09/03/2025", time.Time{}, false},
		{"2025-13-01", time.Time{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDay(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.out) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		OwnerID: "u1",
		Amount:  amt(t, "156.75"),
		Less:    decimal.Zero,
		Type:    Debit,
		Date:    day(2025, 3, 9),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{OwnerID: "", Amount: amt(t, "1.00"), Type: Credit, Date: day(2025, 3, 9)},
		{OwnerID: "u1", Amount: amt(t, "1.00"), Type: "transfer", Date: day(2025, 3, 9)},
		{OwnerID: "u1", Amount: decimal.NewFromFloat(-1), Type: Credit, Date: day(2025, 3, 9)},
		{OwnerID: "u1", Amount: amt(t, "1.00"), Less: decimal.NewFromInt(-1), Type: Credit, Date: day(2025, 3, 9)},
		{OwnerID: "u1", Amount: amt(t, "1.00"), Type: Credit},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{OwnerID: "u1", Name: "Salary", Type: Credit}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Category{
		{OwnerID: "u1", Name: "", Type: Credit},
		{OwnerID: "u1", Name: "   ", Type: Debit},
		{OwnerID: "u1", Name: "Rent", Type: "expense"},
		{OwnerID: "", Name: "Rent", Type: Debit},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDailyReportValidate(t *testing.T) {
	r := DailyReport{
		OwnerID:     "u1",
		ReportDate:  day(2025, 3, 2),
		TotalCredit: amt(t, "5000.00"),
		TotalDebit:  amt(t, "1200.00"),
		NetChange:   amt(t, "3800.00"),
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	r.NetChange = amt(t, "3800.01")
	if err := r.Validate(); err == nil {
		t.Fatalf("expected error for inconsistent net change")
	}
}
