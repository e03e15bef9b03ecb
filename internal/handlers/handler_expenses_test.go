package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/SscSPs/splitsettle/internal/dto"
)

func storedExpense(id, groupID string) *domain.Expense {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Expense{
		ExpenseID:   id,
		Title:       "Dinner",
		Amount:      decimal.NewFromInt(90),
		PaidBy:      "alice",
		SplitType:   domain.SplitEqual,
		GroupID:     &groupID,
		Date:        at,
		AuditFields: domain.AuditFields{CreatedAt: at, CreatedBy: "alice", LastUpdatedAt: at, LastUpdatedBy: "alice"},
	}
}

// --- Expenses ---

func (suite *HandlerTestSuite) TestCreateExpense() {
	suite.mockExpense.On("CreateExpense", mock.Anything, "alice", mock.MatchedBy(func(e domain.Expense) bool {
		return e.ExpenseID == "" && e.GroupID != nil && *e.GroupID == "g1" &&
			e.SplitType == domain.SplitCustom && e.Splits["bob"].Equal(decimal.NewFromInt(60))
	})).Return(storedExpense("exp-1", "g1"), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/groups/g1/expenses", "alice", map[string]any{
		"title":     "Dinner",
		"amount":    "90",
		"paidBy":    "alice",
		"splitType": "custom",
		"splits":    map[string]string{"alice": "30", "bob": "60"},
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.ExpenseResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("exp-1", resp.ExpenseID)
}

func (suite *HandlerTestSuite) TestCreateExpense_BindingErrors() {
	bodies := []map[string]any{
		{"amount": "10", "paidBy": "alice", "splitType": "equal"},
		{"title": "x", "amount": "10", "paidBy": "alice", "splitType": "shares"},
		{"title": "x", "amount": "10", "paidBy": "alice", "splitType": "custom"},
	}
	for i, body := range bodies {
		suite.Run(fmt.Sprint(i), func() {
			w := suite.do(http.MethodPost, "/api/v1/groups/g1/expenses", "alice", body)
			suite.Equal(http.StatusBadRequest, w.Code)
		})
	}
	suite.mockExpense.AssertNotCalled(suite.T(), "CreateExpense", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCreateExpense_ServiceRejects() {
	suite.mockExpense.On("CreateExpense", mock.Anything, "alice", mock.Anything).
		Return(nil, fmt.Errorf("%w: splits sum to 80.00, expected 90.00", apperrors.ErrValidation)).Once()

	w := suite.do(http.MethodPost, "/api/v1/groups/g1/expenses", "alice", map[string]any{
		"title": "Dinner", "amount": "90", "paidBy": "alice", "splitType": "equal",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "splits sum")
}

func (suite *HandlerTestSuite) TestListExpenses() {
	suite.mockExpense.On("ListGroupExpenses", mock.Anything, "g1").
		Return([]domain.Expense{*storedExpense("exp-1", "g1")}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/groups/g1/expenses", "alice", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListExpensesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Expenses, 1)
	suite.True(resp.Expenses[0].Amount.Equal(decimal.NewFromInt(90)))
}

func (suite *HandlerTestSuite) TestGetExpense_NotFound() {
	suite.mockExpense.On("GetExpense", mock.Anything, "nope").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/expenses/nope", "alice", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestUpdateExpense() {
	suite.mockExpense.On("UpdateExpense", mock.Anything, "bob", mock.MatchedBy(func(e domain.Expense) bool {
		return e.ExpenseID == "exp-1" && *e.GroupID == "g2"
	})).Return(storedExpense("exp-1", "g2"), nil).Once()

	w := suite.do(http.MethodPut, "/api/v1/expenses/exp-1", "bob", map[string]any{
		"title": "Dinner", "amount": "90", "paidBy": "alice", "splitType": "equal", "groupID": "g2",
	})
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestUpdateExpense_Forbidden() {
	suite.mockExpense.On("UpdateExpense", mock.Anything, "mallory", mock.Anything).
		Return(nil, apperrors.ErrForbidden).Once()

	w := suite.do(http.MethodPut, "/api/v1/expenses/exp-1", "mallory", map[string]any{
		"title": "Dinner", "amount": "90", "paidBy": "alice", "splitType": "equal", "groupID": "g1",
	})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteExpense() {
	suite.mockExpense.On("DeleteExpense", mock.Anything, "alice", "exp-1").Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/expenses/exp-1", "alice", nil)
	suite.Equal(http.StatusNoContent, w.Code)
}

// --- Groups and profile ---

func (suite *HandlerTestSuite) TestGetGroup() {
	suite.mockGroup.On("GetGroup", mock.Anything, "g1").
		Return(&domain.Group{GroupID: "g1", Name: "Trip", Members: []string{"alice", "bob"}}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/groups/g1", "alice", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"groupID":"g1","name":"Trip","members":["alice","bob"]}`, w.Body.String())
}

func (suite *HandlerTestSuite) TestSaveGroup() {
	group := domain.Group{GroupID: "g1", Name: "Trip", Members: []string{"alice", "bob"}}
	suite.mockGroup.On("SaveGroup", mock.Anything, "alice", group).Return(&group, nil).Once()

	w := suite.do(http.MethodPut, "/api/v1/groups/g1", "alice", dto.SaveGroupRequest{Name: "Trip", Members: []string{"alice", "bob"}})
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPut, "/api/v1/groups/g1", "alice", dto.SaveGroupRequest{Name: "Trip"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestProfile() {
	user := domain.User{UserID: "alice", Name: "Alice", Email: "alice@example.com"}
	suite.mockProfile.On("GetProfile", mock.Anything, "alice").Return(&user, nil).Once()
	suite.mockProfile.On("UpdateProfile", mock.Anything, user).Return(&user, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/users/me", "alice", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"userID":"alice","name":"Alice","email":"alice@example.com"}`, w.Body.String())

	w = suite.do(http.MethodPut, "/api/v1/users/me", "alice", dto.UpdateProfileRequest{Name: "Alice", Email: "alice@example.com"})
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPut, "/api/v1/users/me", "alice", dto.UpdateProfileRequest{Name: "Alice", Email: "not-an-email"})
	suite.Equal(http.StatusBadRequest, w.Code)
}
