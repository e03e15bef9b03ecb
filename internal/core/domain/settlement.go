package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/shopspring/decimal"
)

// SettlementStatus is the lifecycle state of a settlement.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementCompleted SettlementStatus = "completed"
	SettlementCancelled SettlementStatus = "cancelled"
)

// ParseSettlementStatus converts stored or user supplied text into a status.
func ParseSettlementStatus(s string) (SettlementStatus, error) {
	switch status := SettlementStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case SettlementPending, SettlementCompleted, SettlementCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown settlement status %q", apperrors.ErrValidation, s)
	}
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s SettlementStatus) IsTerminal() bool {
	return s == SettlementCompleted || s == SettlementCancelled
}

// CanTransitionTo reports whether the state machine allows s -> next.
// pending may become completed or cancelled; completed and cancelled are final.
func (s SettlementStatus) CanTransitionTo(next SettlementStatus) bool {
	return s == SettlementPending && (next == SettlementCompleted || next == SettlementCancelled)
}

// Settlement is a recorded transfer from a debtor (FromUser) to a creditor (ToUser).
// Everything except the status is immutable once created; the status only moves
// through Transition.
type Settlement struct {
	SettlementID string          `json:"settlementID"`
	FromUser     string          `json:"fromUser"`
	ToUser       string          `json:"toUser"`
	Amount       decimal.Decimal `json:"amount"`
	GroupID      string          `json:"groupID"`
	Notes        string          `json:"notes,omitempty"`
	status       SettlementStatus
	AuditFields
}

// NewSettlement creates a settlement in the given initial state. Only pending and
// completed are valid initial states.
func NewSettlement(id, groupID, fromUser, toUser string, amount decimal.Decimal, status SettlementStatus, createdBy string, now time.Time) (Settlement, error) {
	if status == "" {
		status = SettlementCompleted
	}
	if status != SettlementPending && status != SettlementCompleted {
		return Settlement{}, fmt.Errorf("%w: settlement cannot be created as %s", apperrors.ErrValidation, status)
	}
	s := Settlement{
		SettlementID: id,
		FromUser:     fromUser,
		ToUser:       toUser,
		Amount:       RoundMoney(amount),
		GroupID:      groupID,
		status:       status,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     createdBy,
			LastUpdatedAt: now,
			LastUpdatedBy: createdBy,
		},
	}
	if err := s.Validate(); err != nil {
		return Settlement{}, err
	}
	return s, nil
}

// RestoreSettlement rebuilds a settlement read back from storage.
func RestoreSettlement(s Settlement, status SettlementStatus) Settlement {
	s.status = status
	return s
}

// Status returns the current lifecycle state.
func (s Settlement) Status() SettlementStatus {
	return s.status
}

// IsCompleted reports whether the settlement affects balances.
func (s Settlement) IsCompleted() bool {
	return s.status == SettlementCompleted
}

// Transition moves the settlement to next, stamping the audit fields.
// Transitioning to the current state is a no-op and reports changed=false.
func (s *Settlement) Transition(next SettlementStatus, actor string, now time.Time) (changed bool, err error) {
	if next == s.status {
		return false, nil
	}
	if !s.status.CanTransitionTo(next) {
		return false, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, s.status, next)
	}
	s.status = next
	s.LastUpdatedAt = now
	s.LastUpdatedBy = actor
	return true, nil
}

// Validate checks the structural invariants of a settlement.
func (s Settlement) Validate() error {
	if s.GroupID == "" {
		return fmt.Errorf("%w: settlement group is required", apperrors.ErrValidation)
	}
	if s.FromUser == "" || s.ToUser == "" {
		return fmt.Errorf("%w: settlement payer and payee are required", apperrors.ErrValidation)
	}
	if s.FromUser == s.ToUser {
		return fmt.Errorf("%w: settlement payer and payee must differ", apperrors.ErrValidation)
	}
	if !s.Amount.IsPositive() {
		return fmt.Errorf("%w: settlement amount must be positive", apperrors.ErrValidation)
	}
	return nil
}

// SettlementDirection filters a user's settlements by their side of the transfer.
type SettlementDirection string

const (
	DirectionAll      SettlementDirection = ""
	DirectionPaid     SettlementDirection = "paid"
	DirectionReceived SettlementDirection = "received"
)

// ParseSettlementDirection accepts "", "all", "paid" or "received".
func ParseSettlementDirection(s string) (SettlementDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return DirectionAll, nil
	case "paid":
		return DirectionPaid, nil
	case "received":
		return DirectionReceived, nil
	default:
		return "", fmt.Errorf("%w: unknown settlement direction %q", apperrors.ErrValidation, s)
	}
}

// SettlementFilter selects settlements for listing. GroupID and UserID may be combined.
type SettlementFilter struct {
	GroupID   string
	UserID    string
	Direction SettlementDirection // only meaningful with UserID
	Status    *SettlementStatus
}

// SettlementPage is one page of a settlement listing.
type SettlementPage struct {
	Settlements []Settlement
	NextToken   *string
}
