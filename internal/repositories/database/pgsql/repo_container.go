package pgsql

import (
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		GroupRepo:      newPgxGroupRepository(dbPool),
		ExpenseRepo:    newPgxExpenseRepository(dbPool),
		SettlementRepo: newPgxSettlementRepository(dbPool),
		UserRepo:       newPgxProfileRepository(dbPool),
	}
}
