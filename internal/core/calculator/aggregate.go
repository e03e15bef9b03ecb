package calculator

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Aggregator folds a group's expenses and completed settlements into a BalanceMap.
type Aggregator struct {
	splitter         *SplitCalculator
	logger           *slog.Logger
	strictMembership bool
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the logger used for skipped records and stray members.
func WithLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithSplitCalculator overrides the split calculator.
func WithSplitCalculator(c *SplitCalculator) AggregatorOption {
	return func(a *Aggregator) {
		if c != nil {
			a.splitter = c
		}
	}
}

// WithStrictMembership makes a reference to a non-member fail the whole computation
// with ErrDependency instead of being logged and kept.
func WithStrictMembership(strict bool) AggregatorOption {
	return func(a *Aggregator) {
		a.strictMembership = strict
	}
}

// NewAggregator creates an Aggregator.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		splitter: NewSplitCalculator(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate returns one balance per group member (default zero). Expenses and settlements
// are applied in any order; records with a repeated ID are applied once. Only shared
// expenses of the group and completed settlements of the group count.
//
// Members referenced by a record but missing from the group (for example someone who
// left) keep their historical balance under their own key, so the map still sums to zero.
func (a *Aggregator) Aggregate(group domain.Group, expenses []domain.Expense, settlements []domain.Settlement) (domain.BalanceMap, error) {
	logger := a.logger.With(slog.String("group_id", group.GroupID))
	members := domain.DedupeMembers(group.Members)

	balances := make(domain.BalanceMap, len(members))
	memberSet := make(map[string]struct{}, len(members))
	for _, m := range members {
		balances[m] = decimal.Zero
		memberSet[m] = struct{}{}
	}
	admit := func(id, source, sourceID string) error {
		if _, ok := memberSet[id]; ok {
			return nil
		}
		if a.strictMembership {
			return fmt.Errorf("%w: %s %s references unknown member %s", apperrors.ErrDependency, source, sourceID, id)
		}
		logger.Warn("Balance record references a non-member",
			slog.String("member_id", id),
			slog.String("source", source),
			slog.String("source_id", sourceID))
		return nil
	}

	seenExpenses := make(map[string]struct{}, len(expenses))
	for _, expense := range expenses {
		if !expense.BelongsTo(group.GroupID) {
			logger.Debug("Skipping expense outside group", slog.String("expense_id", expense.ExpenseID))
			continue
		}
		if expense.ExpenseID != "" {
			if _, dup := seenExpenses[expense.ExpenseID]; dup {
				logger.Warn("Skipping duplicate expense", slog.String("expense_id", expense.ExpenseID))
				continue
			}
			seenExpenses[expense.ExpenseID] = struct{}{}
		}

		deltas, err := a.splitter.Deltas(expense, members)
		if err != nil {
			return nil, fmt.Errorf("expense %s: %w", expense.ExpenseID, err)
		}
		for memberID, delta := range deltas {
			if err := admit(memberID, "expense", expense.ExpenseID); err != nil {
				return nil, err
			}
			balances.Add(memberID, delta)
		}
	}

	seenSettlements := make(map[string]struct{}, len(settlements))
	for _, s := range settlements {
		if !s.IsCompleted() || s.GroupID != group.GroupID {
			continue
		}
		if s.SettlementID != "" {
			if _, dup := seenSettlements[s.SettlementID]; dup {
				logger.Warn("Skipping duplicate settlement", slog.String("settlement_id", s.SettlementID))
				continue
			}
			seenSettlements[s.SettlementID] = struct{}{}
		}
		if s.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: settlement %s has negative amount", apperrors.ErrDependency, s.SettlementID)
		}
		for _, id := range []string{s.FromUser, s.ToUser} {
			if err := admit(id, "settlement", s.SettlementID); err != nil {
				return nil, err
			}
		}
		balances.Add(s.FromUser, s.Amount)
		balances.Add(s.ToUser, s.Amount.Neg())
	}

	return balances, nil
}
