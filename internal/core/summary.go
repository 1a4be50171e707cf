package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Summary holds lifetime totals over a transaction set.
	// OutstandingBalance uses the credit-minus-debit convention: a positive
	// balance means the owner has received more than they have spent.
	Summary struct {
		TotalCredit        decimal.Decimal
		TotalDebit         decimal.Decimal
		OutstandingBalance decimal.Decimal
	}

	// DaySummary holds totals restricted to a single calendar day.
	DaySummary struct {
		Credit decimal.Decimal
		Debit  decimal.Decimal
	}

	// DayTotals is one row of a per-day grouping.
	DayTotals struct {
		Date        time.Time
		TotalCredit decimal.Decimal
		TotalDebit  decimal.Decimal
		NetChange   decimal.Decimal
	}
)

// Summarize computes lifetime totals over an already-fetched transaction set.
// Pure: no I/O, no side effects, so it is testable without a database.
//
// A transaction with a type outside {credit, debit} is a programming error
// in the caller (the repository re-validates on every write); Summarize
// panics rather than silently coercing a row to zero.
func Summarize(txs []Transaction) Summary {
	s := Summary{
		TotalCredit: decimal.Zero,
		TotalDebit:  decimal.Zero,
	}
	for _, tx := range txs {
		switch tx.Type {
		case Credit:
			s.TotalCredit = s.TotalCredit.Add(tx.Amount)
		case Debit:
			s.TotalDebit = s.TotalDebit.Add(tx.Amount)
		default:
			panic(fmt.Sprintf("core: transaction %d has type %q", tx.ID, tx.Type))
		}
	}
	s.OutstandingBalance = s.TotalCredit.Sub(s.TotalDebit)
	return s
}

// SummarizeDay computes totals restricted to the UTC calendar day of
// referenceDate.
func SummarizeDay(txs []Transaction, referenceDate time.Time) DaySummary {
	day := Day(referenceDate)
	s := DaySummary{Credit: decimal.Zero, Debit: decimal.Zero}
	for _, tx := range txs {
		if !Day(tx.Date).Equal(day) {
			continue
		}
		switch tx.Type {
		case Credit:
			s.Credit = s.Credit.Add(tx.Amount)
		case Debit:
			s.Debit = s.Debit.Add(tx.Amount)
		default:
			panic(fmt.Sprintf("core: transaction %d has type %q", tx.ID, tx.Type))
		}
	}
	return s
}

// GroupByDay partitions the transaction set by UTC calendar day and returns
// one totals row per distinct day, most recent first. Summing the rows
// always reproduces Summarize over the same set: the grouping is a
// partition, nothing is double counted or lost.
func GroupByDay(txs []Transaction) []DayTotals {
	byDay := make(map[time.Time]*DayTotals)
	for _, tx := range txs {
		day := Day(tx.Date)
		row, ok := byDay[day]
		if !ok {
			row = &DayTotals{
				Date:        day,
				TotalCredit: decimal.Zero,
				TotalDebit:  decimal.Zero,
			}
			byDay[day] = row
		}
		switch tx.Type {
		case Credit:
			row.TotalCredit = row.TotalCredit.Add(tx.Amount)
		case Debit:
			row.TotalDebit = row.TotalDebit.Add(tx.Amount)
		default:
			panic(fmt.Sprintf("core: transaction %d has type %q", tx.ID, tx.Type))
		}
	}

	out := make([]DayTotals, 0, len(byDay))
	for _, row := range byDay {
		row.NetChange = row.TotalCredit.Sub(row.TotalDebit)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
