package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
)

// expenseService stores expenses and reports ledger changes to the balance service.
type expenseService struct {
	BaseService
	repo     portsrepo.ExpenseRepositoryFacade
	groups   portsrepo.GroupProvider
	notifier portssvc.LedgerChangeNotifierSvc
	now      func() time.Time
	newID    func() string
}

// ExpenseServiceOption is a function that configures an expenseService
type ExpenseServiceOption func(*expenseService)

// WithExpenseClock overrides time.Now, for tests.
func WithExpenseClock(now func() time.Time) ExpenseServiceOption {
	return func(s *expenseService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithExpenseIDGenerator overrides uuid.NewString, for tests.
func WithExpenseIDGenerator(newID func() string) ExpenseServiceOption {
	return func(s *expenseService) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewExpenseService creates a new expense service. notifier may be nil.
func NewExpenseService(repo portsrepo.ExpenseRepositoryFacade, groups portsrepo.GroupProvider, notifier portssvc.LedgerChangeNotifierSvc, options ...ExpenseServiceOption) portssvc.ExpenseSvcFacade {
	s := &expenseService{
		repo:     repo,
		groups:   groups,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

func (s *expenseService) GetExpense(ctx context.Context, expenseID string) (*domain.Expense, error) {
	if expenseID == "" {
		return nil, fmt.Errorf("%w: expense ID is required", apperrors.ErrValidation)
	}
	expense, err := s.repo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load expense", slog.String("expense_id", expenseID))
		}
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) ListGroupExpenses(ctx context.Context, groupID string) ([]domain.Expense, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group ID is required", apperrors.ErrValidation)
	}
	expenses, err := s.repo.ListGroupExpenses(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list expenses", slog.String("group_id", groupID))
		return nil, err
	}
	return expenses, nil
}

// CreateExpense validates and stores a new expense with a fresh ID.
func (s *expenseService) CreateExpense(ctx context.Context, actingUserID string, expense domain.Expense) (*domain.Expense, error) {
	if actingUserID == "" {
		return nil, fmt.Errorf("%w: acting user is required", apperrors.ErrValidation)
	}
	now := s.now()
	expense.ExpenseID = s.newID()
	if expense.Date.IsZero() {
		expense.Date = now
	}
	expense.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actingUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: actingUserID,
	}

	if err := s.check(ctx, &expense); err != nil {
		s.GetLogger(ctx).Warn("Rejected expense", slog.String("error", err.Error()))
		return nil, err
	}
	if err := s.save(ctx, expense); err != nil {
		return nil, err
	}

	s.changed(ctx, expense)
	s.LogInfo(ctx, "Expense created", slog.String("expense_id", expense.ExpenseID))
	return &expense, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, actingUserID string, expense domain.Expense) (*domain.Expense, error) {
	existing, err := s.modifiable(ctx, actingUserID, expense.ExpenseID)
	if err != nil {
		return nil, err
	}

	if expense.Date.IsZero() {
		expense.Date = existing.Date
	}
	expense.AuditFields = existing.AuditFields
	expense.LastUpdatedAt = s.now()
	expense.LastUpdatedBy = actingUserID

	if err := s.check(ctx, &expense); err != nil {
		s.GetLogger(ctx).Warn("Rejected expense update", slog.String("expense_id", expense.ExpenseID), slog.String("error", err.Error()))
		return nil, err
	}
	if err := s.save(ctx, expense); err != nil {
		return nil, err
	}

	// moving an expense between groups changes both ledgers
	s.changed(ctx, *existing, expense)
	s.LogInfo(ctx, "Expense updated", slog.String("expense_id", expense.ExpenseID))
	return &expense, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, actingUserID string, expenseID string) error {
	existing, err := s.modifiable(ctx, actingUserID, expenseID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteExpense(ctx, expenseID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete expense", slog.String("expense_id", expenseID))
		}
		return err
	}

	s.changed(ctx, *existing)
	s.LogInfo(ctx, "Expense deleted", slog.String("expense_id", expenseID))
	return nil
}

// modifiable loads the expense and checks that actingUserID created or paid it.
func (s *expenseService) modifiable(ctx context.Context, actingUserID, expenseID string) (*domain.Expense, error) {
	if actingUserID == "" {
		return nil, fmt.Errorf("%w: acting user is required", apperrors.ErrValidation)
	}
	existing, err := s.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if actingUserID != existing.CreatedBy && actingUserID != existing.PaidBy {
		return nil, fmt.Errorf("%w: only the creator or payer may change expense %s", apperrors.ErrForbidden, expenseID)
	}
	return existing, nil
}

// check normalizes expense and enforces the caller-side invariants: a valid amount and
// split, custom splits summing to the amount, and a shared expense whose payer and
// participants all belong to its group.
func (s *expenseService) check(ctx context.Context, expense *domain.Expense) error {
	if expense.SplitType != domain.SplitCustom {
		expense.Splits = nil
	}
	if expense.IsPersonal {
		return expense.Validate()
	}
	if expense.GroupID == nil || *expense.GroupID == "" {
		return fmt.Errorf("%w: a shared expense needs a group", apperrors.ErrValidation)
	}
	if err := expense.Validate(); err != nil {
		return err
	}

	group, err := s.groups.GetGroup(ctx, *expense.GroupID)
	if err != nil {
		return dependencyError("load group "+*expense.GroupID, err)
	}
	if !group.HasMember(expense.PaidBy) {
		return fmt.Errorf("%w: payer %s is not a member of group %s", apperrors.ErrValidation, expense.PaidBy, group.GroupID)
	}
	for member := range expense.Splits {
		if !group.HasMember(member) {
			return fmt.Errorf("%w: %s is not a member of group %s", apperrors.ErrValidation, member, group.GroupID)
		}
	}
	return nil
}

func (s *expenseService) save(ctx context.Context, expense domain.Expense) error {
	if err := s.repo.SaveExpenses(ctx, []domain.Expense{expense}); err != nil {
		s.LogError(ctx, err, "Failed to save expense", slog.String("expense_id", expense.ExpenseID))
		if errors.Is(err, apperrors.ErrPersistence) {
			return err
		}
		return fmt.Errorf("%w: save expense: %w", apperrors.ErrPersistence, err)
	}
	return nil
}

// changed notifies once per distinct group among the shared expenses given.
// The expense is already stored, so a failed notification is only logged.
func (s *expenseService) changed(ctx context.Context, expenses ...domain.Expense) {
	if s.notifier == nil {
		return
	}
	seen := make(map[string]struct{}, len(expenses))
	for _, e := range expenses {
		if e.IsPersonal || e.GroupID == nil || *e.GroupID == "" {
			continue
		}
		groupID := *e.GroupID
		if _, ok := seen[groupID]; ok {
			continue
		}
		seen[groupID] = struct{}{}
		if err := s.notifier.NotifyExpensesChanged(ctx, groupID); err != nil {
			s.LogError(ctx, err, "Failed to announce expense change", slog.String("group_id", groupID))
		}
	}
}
