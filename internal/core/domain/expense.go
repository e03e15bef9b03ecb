package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/shopspring/decimal"
)

// SplitType is the policy used to divide an expense among members.
type SplitType string

const (
	SplitEqual  SplitType = "equal"
	SplitCustom SplitType = "custom"
)

// IsValid reports whether the split type is one of the known policies.
func (s SplitType) IsValid() bool {
	return s == SplitEqual || s == SplitCustom
}

// Category is descriptive metadata attached to an expense; it never affects balances.
type Category struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Expense represents one shared (or personal) cost.
type Expense struct {
	ExpenseID  string                     `json:"expenseID"`
	Title      string                     `json:"title"`
	Amount     decimal.Decimal            `json:"amount"`
	PaidBy     string                     `json:"paidBy"`
	SplitType  SplitType                  `json:"splitType"`
	Splits     map[string]decimal.Decimal `json:"splits,omitempty"` // only for SplitCustom
	GroupID    *string                    `json:"groupID,omitempty"`
	IsPersonal bool                       `json:"isPersonal"`
	Category   *Category                  `json:"category,omitempty"`
	Date       time.Time                  `json:"date"`
	Notes      string                     `json:"notes,omitempty"`
	AuditFields
}

// BelongsTo reports whether the expense is a shared expense of groupID.
func (e Expense) BelongsTo(groupID string) bool {
	return !e.IsPersonal && e.GroupID != nil && *e.GroupID == groupID
}

// Validate checks the caller-side invariants of an expense: positive amount, a known
// split type, and custom splits that are non-negative and sum to the amount within Epsilon.
func (e Expense) Validate() error {
	if e.PaidBy == "" {
		return fmt.Errorf("%w: expense %s has no payer", apperrors.ErrValidation, e.ExpenseID)
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: expense %s amount must be positive", apperrors.ErrValidation, e.ExpenseID)
	}
	if !e.SplitType.IsValid() {
		return fmt.Errorf("%w: expense %s has unknown split type %q", apperrors.ErrValidation, e.ExpenseID, e.SplitType)
	}
	if e.SplitType != SplitCustom {
		return nil
	}
	if len(e.Splits) == 0 {
		return fmt.Errorf("%w: custom split expense %s has no splits", apperrors.ErrValidation, e.ExpenseID)
	}
	sum := decimal.Zero
	for member, share := range e.Splits {
		if share.IsNegative() {
			return fmt.Errorf("%w: expense %s has negative share for %s", apperrors.ErrValidation, e.ExpenseID, member)
		}
		sum = sum.Add(share)
	}
	if !IsNegligible(sum.Sub(e.Amount)) {
		return fmt.Errorf("%w: expense %s splits sum to %s, expected %s", apperrors.ErrValidation, e.ExpenseID, sum.StringFixed(MoneyPrecision), e.Amount.StringFixed(MoneyPrecision))
	}
	return nil
}
