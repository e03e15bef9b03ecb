package services

import (
	"context"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// ExpenseReaderSvc reads stored expenses.
type ExpenseReaderSvc interface {
	GetExpense(ctx context.Context, expenseID string) (*domain.Expense, error)
	ListGroupExpenses(ctx context.Context, groupID string) ([]domain.Expense, error)
}

// ExpenseWriterSvc creates, edits and deletes expenses. Every change to a shared expense
// invalidates the balances of the groups it touched.
type ExpenseWriterSvc interface {
	CreateExpense(ctx context.Context, actingUserID string, expense domain.Expense) (*domain.Expense, error)
	// UpdateExpense replaces the expense with the same ExpenseID. Only its creator or
	// payer may change it.
	UpdateExpense(ctx context.Context, actingUserID string, expense domain.Expense) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, actingUserID string, expenseID string) error
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}
