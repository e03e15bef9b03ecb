package sqlite

import (
	"database/sql"

	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
)

func NewRepositoryProvider(db *sql.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		GroupRepo:      newSQLiteGroupRepository(db),
		ExpenseRepo:    newSQLiteExpenseRepository(db),
		SettlementRepo: newSQLiteSettlementRepository(db),
		UserRepo:       newSQLiteProfileRepository(db),
	}
}
