package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/calculator"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// balanceService loads a group's ledger from the providers and runs the calculator on it.
type balanceService struct {
	BaseService
	groups      portsrepo.GroupProvider
	expenses    portsrepo.ExpenseProvider
	settlements portsrepo.SettlementProvider
	users       portsrepo.UserDirectory
	aggregator  *calculator.Aggregator
	planner     *calculator.Planner
	cache       portssvc.BalanceCache
	publisher   portssvc.LedgerEventPublisher
	metrics     portssvc.MetricsRecorder
	now         func() time.Time
}

// BalanceServiceOption is a function that configures a balanceService
type BalanceServiceOption func(*balanceService)

// WithBalanceCache enables caching of derived balances and plans.
func WithBalanceCache(cache portssvc.BalanceCache) BalanceServiceOption {
	return func(s *balanceService) {
		s.cache = cache
	}
}

// WithAggregator replaces the default aggregator.
func WithAggregator(a *calculator.Aggregator) BalanceServiceOption {
	return func(s *balanceService) {
		if a != nil {
			s.aggregator = a
		}
	}
}

// WithPlanner replaces the default planner.
func WithPlanner(p *calculator.Planner) BalanceServiceOption {
	return func(s *balanceService) {
		if p != nil {
			s.planner = p
		}
	}
}

// WithBalanceEvents sets the publisher used by NotifyExpensesChanged.
func WithBalanceEvents(p portssvc.LedgerEventPublisher) BalanceServiceOption {
	return func(s *balanceService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithBalanceMetrics sets the metrics recorder.
func WithBalanceMetrics(m portssvc.MetricsRecorder) BalanceServiceOption {
	return func(s *balanceService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewBalanceService creates a new balance service with the given providers.
func NewBalanceService(
	groups portsrepo.GroupProvider,
	expenses portsrepo.ExpenseProvider,
	settlements portsrepo.SettlementProvider,
	users portsrepo.UserDirectory,
	options ...BalanceServiceOption,
) portssvc.BalanceSvcFacade {
	s := &balanceService{
		groups:      groups,
		expenses:    expenses,
		settlements: settlements,
		users:       users,
		aggregator:  calculator.NewAggregator(),
		planner:     calculator.NewPlanner(nil),
		publisher:   nopPublisher{},
		metrics:     nopMetrics{},
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Ensure balanceService implements the portssvc.BalanceSvcFacade interface
var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// GetGroupBalances returns the rounded balance of every member.
func (s *balanceService) GetGroupBalances(ctx context.Context, groupID string) (domain.BalanceMap, error) {
	ledger, err := s.ledger(ctx, groupID, false)
	if err != nil {
		return nil, err
	}
	return ledger.Balances.Rounded(), nil
}

// GetSettlementPlan returns the transfers that settle the group.
func (s *balanceService) GetSettlementPlan(ctx context.Context, groupID string) (*domain.SettlementPlan, error) {
	ledger, err := s.ledger(ctx, groupID, true)
	if err != nil {
		return nil, err
	}
	plan := *ledger.Plan
	plan.Entries = append(make([]domain.PlanEntry, 0, len(ledger.Plan.Entries)), ledger.Plan.Entries...)
	plan.Residual = ledger.Plan.Residual.Clone()
	return &plan, nil
}

// GetSettlementSuggestions decorates the plan with directory names. A directory failure
// degrades to placeholder names instead of failing the request.
func (s *balanceService) GetSettlementSuggestions(ctx context.Context, groupID string) ([]domain.SettlementSuggestion, error) {
	plan, err := s.GetSettlementPlan(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(plan.Entries) == 0 {
		return []domain.SettlementSuggestion{}, nil
	}

	ids := make([]string, 0, len(plan.Entries)*2)
	for _, e := range plan.Entries {
		ids = append(ids, e.PayerID, e.PayeeID)
	}
	users := map[string]domain.User{}
	if s.users != nil {
		found, err := s.users.FindUsersByIDs(ctx, domain.DedupeMembers(ids))
		if err != nil {
			s.LogError(ctx, err, "Failed to resolve member names for suggestions", slog.String("group_id", groupID))
		} else {
			users = found
		}
	}

	suggestions := make([]domain.SettlementSuggestion, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		suggestions = append(suggestions, domain.SettlementSuggestion{
			PlanEntry: e,
			PayerName: displayName(users, e.PayerID),
			PayeeName: displayName(users, e.PayeeID),
		})
	}
	return suggestions, nil
}

func displayName(users map[string]domain.User, id string) string {
	if u, ok := users[id]; ok {
		return u.DisplayName()
	}
	return domain.UnknownUserName
}

// InvalidateGroup drops cached derived data for the group.
func (s *balanceService) InvalidateGroup(ctx context.Context, groupID string) {
	if s.cache == nil || groupID == "" {
		return
	}
	s.cache.Invalidate(groupID)
	s.LogDebug(ctx, "Invalidated cached balances", slog.String("group_id", groupID))
}

// NotifyExpensesChanged invalidates the group and publishes an expense.changed event.
// The local cache is dropped even when publishing fails.
func (s *balanceService) NotifyExpensesChanged(ctx context.Context, groupID string) error {
	return s.notify(ctx, domain.EventExpenseChanged, groupID)
}

// NotifyMembersChanged is NotifyExpensesChanged for membership edits, which move every
// equal split of the group.
func (s *balanceService) NotifyMembersChanged(ctx context.Context, groupID string) error {
	return s.notify(ctx, domain.EventMembersChanged, groupID)
}

func (s *balanceService) notify(ctx context.Context, eventType domain.LedgerEventType, groupID string) error {
	if groupID == "" {
		return fmt.Errorf("%w: group ID is required", apperrors.ErrValidation)
	}
	s.InvalidateGroup(ctx, groupID)

	event := domain.LedgerEvent{Type: eventType, GroupID: groupID, OccurredAt: s.now()}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to publish ledger change",
			slog.String("group_id", groupID),
			slog.String("event_type", string(eventType)))
		return dependencyError("publish "+string(eventType), err)
	}
	return nil
}

// ledger returns cached derived data or recomputes it. When withPlan is set the
// returned ledger always carries a plan.
func (s *balanceService) ledger(ctx context.Context, groupID string, withPlan bool) (portssvc.CachedLedger, error) {
	if groupID == "" {
		return portssvc.CachedLedger{}, fmt.Errorf("%w: group ID is required", apperrors.ErrValidation)
	}

	var generation uint64
	if s.cache != nil {
		generation = s.cache.Generation(groupID)
		if cached, ok := s.cache.Lookup(groupID); ok {
			s.metrics.ObserveCacheLookup(true)
			if !withPlan || cached.Plan != nil {
				return cached, nil
			}
			cached = s.attachPlan(ctx, groupID, cached)
			s.cache.Store(groupID, generation, cached)
			return cached, nil
		}
		s.metrics.ObserveCacheLookup(false)
	}

	start := time.Now()
	balances, err := s.computeBalances(ctx, groupID)
	if err != nil {
		s.metrics.ObserveBalanceComputation(outcomeFailure, time.Since(start))
		return portssvc.CachedLedger{}, err
	}
	s.metrics.ObserveBalanceComputation(outcomeSuccess, time.Since(start))

	ledger := portssvc.CachedLedger{Balances: balances}
	if withPlan {
		ledger = s.attachPlan(ctx, groupID, ledger)
	}
	if s.cache != nil {
		s.cache.Store(groupID, generation, ledger)
	}
	return ledger, nil
}

func (s *balanceService) attachPlan(ctx context.Context, groupID string, ledger portssvc.CachedLedger) portssvc.CachedLedger {
	plan := s.planner.Plan(ledger.Balances)
	plan.GroupID = groupID
	s.metrics.ObservePlan(len(plan.Entries), len(plan.Residual) > 0)
	if len(plan.Residual) > 0 {
		s.GetLogger(ctx).Warn("Group balances do not net to zero",
			slog.String("group_id", groupID),
			slog.String("sum", ledger.Balances.Sum().StringFixed(domain.MoneyPrecision)))
	}
	ledger.Plan = &plan
	return ledger
}

// computeBalances loads the group first, then its expenses and settlements concurrently.
// Any provider failure aborts the computation with ErrDependency.
func (s *balanceService) computeBalances(ctx context.Context, groupID string) (domain.BalanceMap, error) {
	logger := s.GetLogger(ctx).With(slog.String("group_id", groupID))

	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		logger.Error("Failed to load group", slog.String("error", err.Error()))
		return nil, dependencyError("load group "+groupID, err)
	}
	if group == nil {
		return nil, fmt.Errorf("%w: group provider returned no group for %s", apperrors.ErrDependency, groupID)
	}

	var (
		expenses    []domain.Expense
		settlements []domain.Settlement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.ListGroupExpenses(gctx, groupID)
		if err != nil {
			return dependencyError("load expenses", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settlements, err = s.settlements.ListGroupSettlements(gctx, groupID)
		if err != nil {
			return dependencyError("load settlements", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to load group ledger", slog.String("error", err.Error()))
		return nil, err
	}

	// Anything the aggregator rejects came from the providers' data.
	balances, err := s.aggregator.Aggregate(*group, expenses, settlements)
	if err != nil {
		logger.Error("Failed to aggregate balances", slog.String("error", err.Error()))
		return nil, dependencyError("aggregate balances", err)
	}

	logger.Debug("Computed group balances",
		slog.Int("expenses", len(expenses)),
		slog.Int("settlements", len(settlements)),
		slog.Int("members", len(balances)))
	return balances, nil
}

// dependencyError wraps a provider failure so that both ErrDependency and the
// provider's own sentinel (for example ErrNotFound) match with errors.Is.
func dependencyError(op string, err error) error {
	if errors.Is(err, apperrors.ErrDependency) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", apperrors.ErrDependency, op, err)
}
