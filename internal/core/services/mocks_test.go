package services_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

// --- Mock GroupProvider ---
type MockGroupProvider struct {
	mock.Mock
}

func (m *MockGroupProvider) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID)
	var group *domain.Group
	if args.Get(0) != nil {
		group = args.Get(0).(*domain.Group)
	}
	return group, args.Error(1)
}

func (m *MockGroupProvider) SaveGroup(ctx context.Context, group domain.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

// --- Mock ExpenseProvider ---
type MockExpenseProvider struct {
	mock.Mock
}

func (m *MockExpenseProvider) ListGroupExpenses(ctx context.Context, groupID string) ([]domain.Expense, error) {
	args := m.Called(ctx, groupID)
	var expenses []domain.Expense
	if args.Get(0) != nil {
		expenses = args.Get(0).([]domain.Expense)
	}
	return expenses, args.Error(1)
}

func (m *MockExpenseProvider) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	var expense *domain.Expense
	if args.Get(0) != nil {
		expense = args.Get(0).(*domain.Expense)
	}
	return expense, args.Error(1)
}

func (m *MockExpenseProvider) SaveExpenses(ctx context.Context, expenses []domain.Expense) error {
	args := m.Called(ctx, expenses)
	return args.Error(0)
}

func (m *MockExpenseProvider) DeleteExpense(ctx context.Context, expenseID string) error {
	args := m.Called(ctx, expenseID)
	return args.Error(0)
}

// --- Mock SettlementRepository ---
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) ListGroupSettlements(ctx context.Context, groupID string) ([]domain.Settlement, error) {
	args := m.Called(ctx, groupID)
	var settlements []domain.Settlement
	if args.Get(0) != nil {
		settlements = args.Get(0).([]domain.Settlement)
	}
	return settlements, args.Error(1)
}

func (m *MockSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	args := m.Called(ctx, settlementID)
	var settlement *domain.Settlement
	if args.Get(0) != nil {
		settlement = args.Get(0).(*domain.Settlement)
	}
	return settlement, args.Error(1)
}

func (m *MockSettlementRepository) ListSettlements(ctx context.Context, filter domain.SettlementFilter, limit int, nextToken *string) ([]domain.Settlement, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	var settlements []domain.Settlement
	if args.Get(0) != nil {
		settlements = args.Get(0).([]domain.Settlement)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return settlements, next, args.Error(2)
}

func (m *MockSettlementRepository) SaveSettlement(ctx context.Context, settlement domain.Settlement) (string, error) {
	args := m.Called(ctx, settlement)
	return args.String(0), args.Error(1)
}

func (m *MockSettlementRepository) UpdateSettlementStatus(ctx context.Context, settlement domain.Settlement, previous domain.SettlementStatus) error {
	args := m.Called(ctx, settlement, previous)
	return args.Error(0)
}

// --- Mock UserDirectory ---
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	args := m.Called(ctx, userIDs)
	var users map[string]domain.User
	if args.Get(0) != nil {
		users = args.Get(0).(map[string]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserDirectory) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// --- Mock LedgerChangeNotifier ---
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyExpensesChanged(ctx context.Context, groupID string) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *MockNotifier) NotifyMembersChanged(ctx context.Context, groupID string) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

// --- Mock BalanceInvalidator ---
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) InvalidateGroup(ctx context.Context, groupID string) {
	m.Called(ctx, groupID)
}

// --- Mock LedgerEventPublisher ---
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
