package domain

import "time"

// LedgerEventType names a change that invalidates derived balances.
type LedgerEventType string

const (
	EventSettlementRecorded LedgerEventType = "settlement.recorded"
	EventSettlementStatus   LedgerEventType = "settlement.status_changed"
	EventExpenseChanged     LedgerEventType = "expense.changed"
	EventMembersChanged     LedgerEventType = "group.members_changed"
)

// LedgerEvent announces that a group's balances must be recomputed.
type LedgerEvent struct {
	Type         LedgerEventType `json:"type"`
	GroupID      string          `json:"groupId"`
	SettlementID string          `json:"settlementId,omitempty"`
	OccurredAt   time.Time       `json:"occurredAt"`
}
