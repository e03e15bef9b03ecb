package models

import "github.com/shopspring/decimal"

// Settlement is a row of the settlements table.
type Settlement struct {
	SettlementID string          `db:"id"`
	FromUser     string          `db:"from_user"`
	ToUser       string          `db:"to_user"`
	Amount       decimal.Decimal `db:"amount"`
	GroupID      string          `db:"group_id"`
	Status       string          `db:"status"`
	Notes        *string         `db:"notes"`
	AuditFields
}
