package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

type (
	// TransactionType tags a monetary event. Credit increases the owner's
	// balance, debit decreases it.
	TransactionType string

	// Category is a bucket transactions belong to. Code is optional and,
	// when set, unique within the owner's scope.
	Category struct {
		ID        int64
		OwnerID   string
		Name      string
		Code      string
		Type      TransactionType
		CreatedAt time.Time
	}

	// Transaction is a single monetary event, exclusively owned by OwnerID.
	// The category reference is weak: deleting a category leaves the
	// transaction in place with a nil CategoryID.
	Transaction struct {
		ID         int64
		OwnerID    string
		Serial     int64
		CategoryID *int64
		Amount     decimal.Decimal
		Less       decimal.Decimal
		Type       TransactionType
		Detail     string
		Date       time.Time // UTC calendar day, zero time-of-day
		CreatedAt  time.Time
	}

	// DailyReport is a persisted snapshot of one day's aggregation.
	// NetChange is always TotalCredit - TotalDebit at generation time.
	DailyReport struct {
		ID          int64
		OwnerID     string
		ReportDate  time.Time
		TotalCredit decimal.Decimal
		TotalDebit  decimal.Decimal
		NetChange   decimal.Decimal
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyOwner    = errors.New("empty owner")
	ErrNotFound      = errors.New("not found")
	ErrDuplicateCode = errors.New("duplicate category code")
)

// DateLayout is the wire and storage form of calendar days.
const DateLayout = "2006-01-02"

func (t TransactionType) Validate() error {
	switch t {
	case Credit, Debit:
		return nil
	}
	return ErrInvalidType
}

// Day truncates t to its UTC calendar day. All day bucketing in this
// package uses UTC, never the process-local zone.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a calendar day, accepting YYYY-MM-DD or RFC 3339 input.
// Date-time input is truncated to its UTC day.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if d, err := time.ParseInLocation(DateLayout, s, time.UTC); err == nil {
		return d, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Day(t), nil
	}
	return time.Time{}, ErrInvalidDate
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	return c.Type.Validate()
}

func (tx Transaction) Validate() error {
	if strings.TrimSpace(tx.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if err := ValidateAmount(tx.Amount); err != nil {
		return err
	}
	if tx.Less.IsNegative() {
		return ErrInvalidAmount
	}
	if tx.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(tx.Detail) > 500 {
		return errors.New("detail too long (max 500 characters)")
	}
	return nil
}

func (r DailyReport) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if r.ReportDate.IsZero() {
		return ErrInvalidDate
	}
	if !r.NetChange.Equal(r.TotalCredit.Sub(r.TotalDebit)) {
		return errors.New("net change must equal total credit minus total debit")
	}
	return nil
}
