package services

import (
	"log/slog"

	"github.com/SscSPs/splitsettle/internal/core/calculator"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
	"github.com/SscSPs/splitsettle/internal/platform/config"
)

// Infrastructure groups the optional collaborators shared by the services.
// Nil fields fall back to no-op implementations.
type Infrastructure struct {
	Cache     portssvc.BalanceCache
	Publisher portssvc.LedgerEventPublisher
	Metrics   portssvc.MetricsRecorder
	Logger    *slog.Logger
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, infra Infrastructure) *portssvc.ServiceContainer {
	logger := infra.Logger
	if logger == nil {
		logger = slog.Default()
	}

	container := &portssvc.ServiceContainer{}

	aggregator := calculator.NewAggregator(
		calculator.WithLogger(logger),
		calculator.WithStrictMembership(cfg.StrictMembership),
	)

	balanceOpts := []BalanceServiceOption{
		WithAggregator(aggregator),
		WithPlanner(calculator.NewPlanner(logger)),
		WithBalanceMetrics(infra.Metrics),
		WithBalanceEvents(infra.Publisher),
	}
	if infra.Cache != nil {
		balanceOpts = append(balanceOpts, WithBalanceCache(infra.Cache))
	}
	container.Balance = NewBalanceService(repos.GroupRepo, repos.ExpenseRepo, repos.SettlementRepo, repos.UserRepo, balanceOpts...)

	// The settlement service invalidates through the balance service so that both
	// share one cache.
	container.Settlement = NewSettlementService(
		repos.SettlementRepo,
		repos.GroupRepo,
		WithInvalidator(container.Balance),
		WithEventPublisher(infra.Publisher),
		WithSettlementMetrics(infra.Metrics),
		WithRecordConcurrency(cfg.RecordConcurrency),
		WithMembershipCheck(cfg.StrictMembership),
	)

	// Writers announce changes through the balance service, which drops cached
	// balances and publishes the ledger event.
	container.Expense = NewExpenseService(repos.ExpenseRepo, repos.GroupRepo, container.Balance)
	container.Group = NewGroupService(repos.GroupRepo, container.Balance)
	container.Profile = NewProfileService(repos.UserRepo)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.BalanceSvcFacade    = (*balanceService)(nil)
	_ portssvc.SettlementSvcFacade = (*settlementService)(nil)
	_ portssvc.GroupSvcFacade      = (*groupService)(nil)
	_ portssvc.ProfileSvcFacade    = (*profileService)(nil)
)
