package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Both the Postgres and the SQLite backends build one of these.
type RepositoryProvider struct {
	GroupRepo      GroupRepositoryFacade
	ExpenseRepo    ExpenseRepositoryFacade
	SettlementRepo SettlementRepositoryFacade
	UserRepo       UserRepositoryFacade
}
