package domain

import (
	"github.com/shopspring/decimal"
)

// PlanEntry is one proposed transfer: PayerID (a debtor) pays PayeeID (a creditor).
type PlanEntry struct {
	PayerID string          `json:"payerID"`
	PayeeID string          `json:"payeeID"`
	Amount  decimal.Decimal `json:"amount"`
}

// SettlementPlan is the ordered list of transfers that zeroes a BalanceMap.
// Residual holds balances the planner could not match; it is empty for consistent input.
type SettlementPlan struct {
	GroupID  string      `json:"groupID"`
	Entries  []PlanEntry `json:"entries"`
	Residual BalanceMap  `json:"residual,omitempty"`
}

// Apply returns the balances after every entry in the plan is paid.
func (p SettlementPlan) Apply(balances BalanceMap) BalanceMap {
	out := balances.Clone()
	for _, e := range p.Entries {
		out.Add(e.PayerID, e.Amount)
		out.Add(e.PayeeID, e.Amount.Neg())
	}
	return out
}

// SettlementSuggestion is a plan entry enriched with display names.
type SettlementSuggestion struct {
	PlanEntry
	PayerName string `json:"payerName"`
	PayeeName string `json:"payeeName"`
}

// RecordEntry is a user-selected plan entry to be persisted as a completed settlement.
type RecordEntry struct {
	GroupID string          `validate:"required"`
	PayerID string          `validate:"required,nefield=PayeeID"`
	PayeeID string          `validate:"required"`
	Amount  decimal.Decimal `validate:"-"`
	Notes   string          `validate:"max=500"`
}

// RecordResult is the independent outcome of recording one RecordEntry.
// Exactly one of Settlement and Err is set.
type RecordResult struct {
	Index      int
	Entry      RecordEntry
	Settlement *Settlement
	Err        error
}

// Succeeded reports whether the entry was persisted.
func (r RecordResult) Succeeded() bool {
	return r.Err == nil && r.Settlement != nil
}
