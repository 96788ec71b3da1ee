package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordKind separates income from expense. The sign of a record lives
// here; Amount is always positive.
type RecordKind string

// Record kinds.
const (
	KindIncome  RecordKind = "income"
	KindExpense RecordKind = "expense"
)

// AccountingRecord is a single income or expense entry owned by a user.
type AccountingRecord struct {
	OccurredAt time.Time
	CreatedAt  time.Time
	ID         string
	UserID     string
	Kind       RecordKind
	Category   string
	Note       string
	Currency   string
	Amount     decimal.Decimal
}

// Signed returns the amount with the income/expense sign applied.
func (r AccountingRecord) Signed() decimal.Decimal {
	if r.Kind == KindExpense {
		return r.Amount.Neg()
	}
	return r.Amount
}
