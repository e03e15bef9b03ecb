package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
	"github.com/SscSPs/splitsettle/internal/core/services"
)

type ExpenseServiceTestSuite struct {
	suite.Suite
	repo     *MockExpenseProvider
	groups   *MockGroupProvider
	notifier *MockNotifier
	svc      portssvc.ExpenseSvcFacade
	ctx      context.Context
}

func (s *ExpenseServiceTestSuite) SetupTest() {
	s.repo = new(MockExpenseProvider)
	s.groups = new(MockGroupProvider)
	s.notifier = new(MockNotifier)
	s.ctx = context.Background()
	s.svc = services.NewExpenseService(s.repo, s.groups, s.notifier,
		services.WithExpenseClock(func() time.Time { return fixedNow }),
		services.WithExpenseIDGenerator(func() string { return "exp-1" }),
	)
	s.groups.On("GetGroup", mock.Anything, "g1").Return(&domain.Group{GroupID: "g1", Members: []string{"alice", "bob", "carol"}}, nil).Maybe()
}

func (s *ExpenseServiceTestSuite) TearDownTest() {
	s.repo.AssertExpectations(s.T())
	s.notifier.AssertExpectations(s.T())
}

func TestExpenseServiceSuite(t *testing.T) {
	suite.Run(t, new(ExpenseServiceTestSuite))
}

func sharedExpense(groupID, payer, amount string) domain.Expense {
	return domain.Expense{
		Title:     "Dinner",
		Amount:    dec(amount),
		PaidBy:    payer,
		SplitType: domain.SplitEqual,
		GroupID:   strPtr(groupID),
	}
}

func (s *ExpenseServiceTestSuite) TestCreateExpense() {
	input := sharedExpense("g1", "alice", "90")
	input.Splits = map[string]decimal.Decimal{"bob": dec("90")}

	s.repo.On("SaveExpenses", mock.Anything, mock.MatchedBy(func(es []domain.Expense) bool {
		return len(es) == 1 && es[0].ExpenseID == "exp-1" && es[0].Splits == nil && es[0].CreatedBy == "alice"
	})).Return(nil).Once()
	s.notifier.On("NotifyExpensesChanged", mock.Anything, "g1").Return(nil).Once()

	got, err := s.svc.CreateExpense(s.ctx, "alice", input)
	s.Require().NoError(err)
	s.Equal("exp-1", got.ExpenseID)
	s.Equal(fixedNow, got.Date, "missing date defaults to now")
	s.Equal(fixedNow, got.CreatedAt)
	s.Equal("alice", got.LastUpdatedBy)
	s.Nil(got.Splits, "equal splits carry no shares")
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_Rejected() {
	customOff := sharedExpense("g1", "alice", "100")
	customOff.SplitType = domain.SplitCustom
	customOff.Splits = map[string]decimal.Decimal{"alice": dec("50"), "bob": dec("40")}

	outsider := sharedExpense("g1", "alice", "100")
	outsider.SplitType = domain.SplitCustom
	outsider.Splits = map[string]decimal.Decimal{"alice": dec("50"), "mallory": dec("50")}

	noGroup := sharedExpense("", "alice", "10")
	noGroup.GroupID = nil

	tests := []struct {
		name    string
		user    string
		expense domain.Expense
		want    error
	}{
		{"no acting user", "", sharedExpense("g1", "alice", "10"), apperrors.ErrValidation},
		{"zero amount", "alice", sharedExpense("g1", "alice", "0"), apperrors.ErrValidation},
		{"shares off by ten", "alice", customOff, apperrors.ErrValidation},
		{"shared without group", "alice", noGroup, apperrors.ErrValidation},
		{"payer outside group", "alice", sharedExpense("g1", "mallory", "10"), apperrors.ErrValidation},
		{"participant outside group", "alice", outsider, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.CreateExpense(s.ctx, tt.user, tt.expense)
			s.ErrorIs(err, tt.want)
		})
	}
	s.repo.AssertNotCalled(s.T(), "SaveExpenses", mock.Anything, mock.Anything)
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_UnknownGroup() {
	s.groups.On("GetGroup", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.svc.CreateExpense(s.ctx, "alice", sharedExpense("ghost", "alice", "10"))
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.ErrorIs(err, apperrors.ErrDependency)
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_PersonalSkipsGroupAndNotifier() {
	personal := sharedExpense("", "alice", "12.50")
	personal.GroupID = nil
	personal.IsPersonal = true
	s.repo.On("SaveExpenses", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := s.svc.CreateExpense(s.ctx, "alice", personal)
	s.Require().NoError(err)
	s.notifier.AssertNotCalled(s.T(), "NotifyExpensesChanged", mock.Anything, mock.Anything)
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_SaveFailure() {
	s.repo.On("SaveExpenses", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	_, err := s.svc.CreateExpense(s.ctx, "alice", sharedExpense("g1", "alice", "10"))
	s.ErrorIs(err, apperrors.ErrPersistence)
	s.notifier.AssertNotCalled(s.T(), "NotifyExpensesChanged", mock.Anything, mock.Anything)
}

func (s *ExpenseServiceTestSuite) TestCreateExpense_NotifyFailureStillSucceeds() {
	s.repo.On("SaveExpenses", mock.Anything, mock.Anything).Return(nil).Once()
	s.notifier.On("NotifyExpensesChanged", mock.Anything, "g1").Return(apperrors.ErrDependency).Once()

	got, err := s.svc.CreateExpense(s.ctx, "alice", sharedExpense("g1", "alice", "10"))
	s.Require().NoError(err)
	s.Equal("exp-1", got.ExpenseID)
}

func (s *ExpenseServiceTestSuite) stored(groupID string) *domain.Expense {
	e := sharedExpense(groupID, "bob", "30")
	e.ExpenseID = "exp-9"
	e.Date = fixedNow.Add(-48 * time.Hour)
	e.AuditFields = domain.AuditFields{CreatedAt: e.Date, CreatedBy: "carol", LastUpdatedAt: e.Date, LastUpdatedBy: "carol"}
	return &e
}

func (s *ExpenseServiceTestSuite) TestUpdateExpense_MovesBetweenGroups() {
	s.groups.On("GetGroup", mock.Anything, "g2").Return(&domain.Group{GroupID: "g2", Members: []string{"bob", "dave"}}, nil).Once()
	s.repo.On("FindExpenseByID", mock.Anything, "exp-9").Return(s.stored("g1"), nil).Once()
	s.repo.On("SaveExpenses", mock.Anything, mock.Anything).Return(nil).Once()
	s.notifier.On("NotifyExpensesChanged", mock.Anything, "g1").Return(nil).Once()
	s.notifier.On("NotifyExpensesChanged", mock.Anything, "g2").Return(nil).Once()

	update := sharedExpense("g2", "bob", "45")
	update.ExpenseID = "exp-9"
	got, err := s.svc.UpdateExpense(s.ctx, "bob", update)
	s.Require().NoError(err)
	s.Equal("carol", got.CreatedBy, "creation audit is kept")
	s.Equal("bob", got.LastUpdatedBy)
	s.Equal(fixedNow, got.LastUpdatedAt)
	s.Equal(fixedNow.Add(-48*time.Hour), got.Date, "missing date keeps the stored one")
}

func (s *ExpenseServiceTestSuite) TestUpdateExpense_SameGroupNotifiesOnce() {
	s.repo.On("FindExpenseByID", mock.Anything, "exp-9").Return(s.stored("g1"), nil).Once()
	s.repo.On("SaveExpenses", mock.Anything, mock.Anything).Return(nil).Once()
	s.notifier.On("NotifyExpensesChanged", mock.Anything, "g1").Return(nil).Once()

	update := sharedExpense("g1", "bob", "60")
	update.ExpenseID = "exp-9"
	_, err := s.svc.UpdateExpense(s.ctx, "carol", update)
	s.Require().NoError(err)
}

func (s *ExpenseServiceTestSuite) TestUpdateExpense_Forbidden() {
	s.repo.On("FindExpenseByID", mock.Anything, "exp-9").Return(s.stored("g1"), nil).Once()

	update := sharedExpense("g1", "alice", "60")
	update.ExpenseID = "exp-9"
	_, err := s.svc.UpdateExpense(s.ctx, "alice", update)
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.repo.AssertNotCalled(s.T(), "SaveExpenses", mock.Anything, mock.Anything)
}

func (s *ExpenseServiceTestSuite) TestUpdateExpense_NotFound() {
	s.repo.On("FindExpenseByID", mock.Anything, "nope").Return(nil, apperrors.ErrNotFound).Once()

	update := sharedExpense("g1", "alice", "60")
	update.ExpenseID = "nope"
	_, err := s.svc.UpdateExpense(s.ctx, "alice", update)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ExpenseServiceTestSuite) TestDeleteExpense() {
	s.repo.On("FindExpenseByID", mock.Anything, "exp-9").Return(s.stored("g1"), nil).Once()
	s.repo.On("DeleteExpense", mock.Anything, "exp-9").Return(nil).Once()
	s.notifier.On("NotifyExpensesChanged", mock.Anything, "g1").Return(nil).Once()

	s.Require().NoError(s.svc.DeleteExpense(s.ctx, "bob", "exp-9"))
}

func (s *ExpenseServiceTestSuite) TestDeleteExpense_Forbidden() {
	s.repo.On("FindExpenseByID", mock.Anything, "exp-9").Return(s.stored("g1"), nil).Once()

	err := s.svc.DeleteExpense(s.ctx, "alice", "exp-9")
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.repo.AssertNotCalled(s.T(), "DeleteExpense", mock.Anything, mock.Anything)
}

func (s *ExpenseServiceTestSuite) TestReads() {
	s.repo.On("ListGroupExpenses", mock.Anything, "g1").Return([]domain.Expense{*s.stored("g1")}, nil).Once()

	list, err := s.svc.ListGroupExpenses(s.ctx, "g1")
	s.Require().NoError(err)
	s.Len(list, 1)

	_, err = s.svc.ListGroupExpenses(s.ctx, "")
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.svc.GetExpense(s.ctx, "")
	s.ErrorIs(err, apperrors.ErrValidation)
}
