package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a row of the expenses table. Splits and Category hold the raw JSON
// documents exactly as stored.
type Expense struct {
	ExpenseID  string          `db:"id"`
	Title      string          `db:"title"`
	Amount     decimal.Decimal `db:"amount"`
	PaidBy     string          `db:"paid_by"`
	SplitType  string          `db:"split_type"`
	Splits     []byte          `db:"splits"`
	Category   []byte          `db:"category"`
	Date       time.Time       `db:"date"`
	GroupID    *string         `db:"group_id"`
	IsPersonal bool            `db:"is_personal"`
	Notes      *string         `db:"notes"`
	AuditFields
}
