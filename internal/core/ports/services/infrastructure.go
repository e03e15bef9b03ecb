package services

import (
	"context"
	"time"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// CachedLedger is the derived data kept per group between ledger changes.
type CachedLedger struct {
	Balances domain.BalanceMap
	Plan     *domain.SettlementPlan
}

// BalanceCache stores derived balances and plans. Every Invalidate bumps the group's
// generation; Store is ignored when the generation moved since the caller read it,
// so a computation that raced an invalidation never repopulates stale data.
type BalanceCache interface {
	Lookup(groupID string) (CachedLedger, bool)
	Generation(groupID string) uint64
	Store(groupID string, generation uint64, entry CachedLedger)
	Invalidate(groupID string)
}

// LedgerEventPublisher announces ledger changes to other instances.
type LedgerEventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}

// MetricsRecorder receives service level measurements.
type MetricsRecorder interface {
	ObserveBalanceComputation(outcome string, elapsed time.Duration)
	ObservePlan(entries int, hasResidual bool)
	ObserveSettlementRecorded(outcome string)
	ObserveCacheLookup(hit bool)
}
