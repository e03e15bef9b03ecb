package repositories

import (
	"context"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// ExpenseProvider returns the shared expenses of a group.
type ExpenseProvider interface {
	// ListGroupExpenses returns every non-personal expense of the group, with splits
	// already decoded into native maps.
	ListGroupExpenses(ctx context.Context, groupID string) ([]domain.Expense, error)
}

// ExpenseFinder loads single expenses.
type ExpenseFinder interface {
	// FindExpenseByID returns apperrors.ErrNotFound when the expense does not exist.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)
}

// ExpenseWriter stores expenses.
type ExpenseWriter interface {
	// SaveExpenses persists the expenses atomically, inserting or replacing by ID.
	SaveExpenses(ctx context.Context, expenses []domain.Expense) error

	// DeleteExpense returns apperrors.ErrNotFound when the expense does not exist.
	DeleteExpense(ctx context.Context, expenseID string) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseProvider
	ExpenseFinder
	ExpenseWriter
}
