package services

import (
	"context"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// BalanceReaderSvc computes derived, never persisted, views of a group's ledger.
type BalanceReaderSvc interface {
	// GetGroupBalances returns every member's net balance rounded to cents.
	// Provider failures surface as apperrors.ErrDependency; no partial map is returned.
	GetGroupBalances(ctx context.Context, groupID string) (domain.BalanceMap, error)

	// GetSettlementPlan returns the greedy transfer plan for the group.
	GetSettlementPlan(ctx context.Context, groupID string) (*domain.SettlementPlan, error)

	// GetSettlementSuggestions returns the plan with payer and payee display names.
	GetSettlementSuggestions(ctx context.Context, groupID string) ([]domain.SettlementSuggestion, error)
}

// BalanceInvalidatorSvc drops derived data after the ledger changed.
type BalanceInvalidatorSvc interface {
	InvalidateGroup(ctx context.Context, groupID string)
}

// LedgerChangeNotifierSvc is the hook for changes that alter a group's balances without
// going through settlements. It invalidates locally and tells the other instances.
type LedgerChangeNotifierSvc interface {
	NotifyExpensesChanged(ctx context.Context, groupID string) error
	NotifyMembersChanged(ctx context.Context, groupID string) error
}

// BalanceSvcFacade combines all balance-related service interfaces
type BalanceSvcFacade interface {
	BalanceReaderSvc
	BalanceInvalidatorSvc
	LedgerChangeNotifierSvc
}
