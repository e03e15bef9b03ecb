// Package calculator holds the pure balance math: per-expense split deltas, group balance
// aggregation and greedy debt netting. Nothing here performs I/O.
package calculator

import (
	"fmt"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Strategy converts one expense into signed per-member deltas.
type Strategy interface {
	Type() domain.SplitType
	Deltas(expense domain.Expense, members []string) (domain.BalanceMap, error)
}

// EqualStrategy divides the amount evenly across every group member.
type EqualStrategy struct{}

// Type returns the split type identifier
func (EqualStrategy) Type() domain.SplitType {
	return domain.SplitEqual
}

// Deltas credits the payer with the full amount and debits every member one share,
// so the payer nets amount - share and everyone else -share.
func (EqualStrategy) Deltas(expense domain.Expense, members []string) (domain.BalanceMap, error) {
	members = domain.DedupeMembers(members)
	deltas := make(domain.BalanceMap, len(members)+1)
	if len(members) == 0 {
		return deltas, nil
	}
	for _, m := range members {
		deltas[m] = decimal.Zero
	}
	if expense.Amount.IsZero() {
		return deltas, nil
	}

	share := expense.Amount.Div(decimal.NewFromInt(int64(len(members))))
	deltas.Add(expense.PaidBy, expense.Amount)
	for _, m := range members {
		deltas.Add(m, share.Neg())
	}
	return deltas, nil
}

// CustomStrategy uses the explicit shares in Expense.Splits. Members absent from the
// splits do not participate in the expense.
type CustomStrategy struct{}

// Type returns the split type identifier
func (CustomStrategy) Type() domain.SplitType {
	return domain.SplitCustom
}

// Deltas debits each split key its share and credits the payer the amount covered
// by the splits.
func (CustomStrategy) Deltas(expense domain.Expense, _ []string) (domain.BalanceMap, error) {
	if expense.Splits == nil {
		return nil, fmt.Errorf("%w: custom split expense %s has no splits", apperrors.ErrValidation, expense.ExpenseID)
	}
	deltas := make(domain.BalanceMap, len(expense.Splits)+1)
	for member, share := range expense.Splits {
		if share.IsNegative() {
			return nil, fmt.Errorf("%w: expense %s has negative share for %s", apperrors.ErrValidation, expense.ExpenseID, member)
		}
	}

	for member, share := range expense.Splits {
		if member == "" {
			continue
		}
		// a zero-amount expense moves nothing, whatever its shares say
		if expense.Amount.IsZero() {
			deltas[member] = decimal.Zero
			continue
		}
		deltas.Add(member, share.Neg())
	}
	if len(deltas) > 0 && !expense.Amount.IsZero() {
		deltas.Add(expense.PaidBy, expense.Amount)
	}
	return deltas, nil
}

// SplitCalculator dispatches an expense to the strategy for its split type.
type SplitCalculator struct {
	strategies map[domain.SplitType]Strategy
}

// NewSplitCalculator registers the equal and custom strategies plus any extras.
// An extra strategy with an existing type replaces the built-in one.
func NewSplitCalculator(extra ...Strategy) *SplitCalculator {
	c := &SplitCalculator{strategies: make(map[domain.SplitType]Strategy)}
	for _, s := range append([]Strategy{EqualStrategy{}, CustomStrategy{}}, extra...) {
		c.strategies[s.Type()] = s
	}
	return c
}

// Deltas returns the signed contribution of every participant in expense.
func (c *SplitCalculator) Deltas(expense domain.Expense, members []string) (domain.BalanceMap, error) {
	if expense.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: expense %s has negative amount", apperrors.ErrValidation, expense.ExpenseID)
	}
	if expense.PaidBy == "" {
		return nil, fmt.Errorf("%w: expense %s has no payer", apperrors.ErrValidation, expense.ExpenseID)
	}
	strategy, ok := c.strategies[expense.SplitType]
	if !ok {
		return nil, fmt.Errorf("%w: expense %s has unknown split type %q", apperrors.ErrValidation, expense.ExpenseID, expense.SplitType)
	}
	return strategy.Deltas(expense, members)
}
