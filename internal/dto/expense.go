package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// CategoryRequest is optional descriptive metadata on an expense.
type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Icon string `json:"icon" binding:"max=50"`
}

// SaveExpenseRequest creates or replaces a shared expense of the group in the path.
// Amounts and shares are checked by the service, which knows the group's members.
type SaveExpenseRequest struct {
	Title     string                     `json:"title" binding:"required,max=200"`
	Amount    decimal.Decimal            `json:"amount"`
	PaidBy    string                     `json:"paidBy" binding:"required"`
	SplitType string                     `json:"splitType" binding:"required,oneof=equal custom"`
	Splits    map[string]decimal.Decimal `json:"splits" binding:"required_if=SplitType custom"`
	Category  *CategoryRequest           `json:"category"`
	Date      *time.Time                 `json:"date"`
	Notes     string                     `json:"notes" binding:"max=1000"`
}

// ToExpense converts the request into a group expense with the given ID.
func (r SaveExpenseRequest) ToExpense(expenseID, groupID string) domain.Expense {
	e := domain.Expense{
		ExpenseID: expenseID,
		Title:     r.Title,
		Amount:    r.Amount,
		PaidBy:    r.PaidBy,
		SplitType: domain.SplitType(r.SplitType),
		Splits:    r.Splits,
		GroupID:   &groupID,
		Notes:     r.Notes,
	}
	if r.Category != nil {
		e.Category = &domain.Category{Name: r.Category.Name, Icon: r.Category.Icon}
	}
	if r.Date != nil {
		e.Date = r.Date.UTC()
	}
	return e
}

// UpdateExpenseRequest replaces an expense. GroupID may move it to another group.
type UpdateExpenseRequest struct {
	SaveExpenseRequest
	GroupID string `json:"groupID" binding:"required"`
}

// ExpenseResponse defines the data returned for an expense.
type ExpenseResponse struct {
	ExpenseID     string                     `json:"expenseID"`
	GroupID       *string                    `json:"groupID,omitempty"`
	Title         string                     `json:"title"`
	Amount        decimal.Decimal            `json:"amount"`
	PaidBy        string                     `json:"paidBy"`
	SplitType     string                     `json:"splitType"`
	Splits        map[string]decimal.Decimal `json:"splits,omitempty"`
	IsPersonal    bool                       `json:"isPersonal"`
	Category      *domain.Category           `json:"category,omitempty"`
	Date          time.Time                  `json:"date"`
	Notes         string                     `json:"notes,omitempty"`
	CreatedAt     time.Time                  `json:"createdAt"`
	CreatedBy     string                     `json:"createdBy"`
	LastUpdatedAt time.Time                  `json:"lastUpdatedAt"`
	LastUpdatedBy string                     `json:"lastUpdatedBy"`
}

// ListExpensesResponse lists the shared expenses of a group.
type ListExpensesResponse struct {
	GroupID  string            `json:"groupID"`
	Expenses []ExpenseResponse `json:"expenses"`
}

// ToExpenseResponse converts a domain.Expense to ExpenseResponse DTO
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:     e.ExpenseID,
		GroupID:       e.GroupID,
		Title:         e.Title,
		Amount:        e.Amount,
		PaidBy:        e.PaidBy,
		SplitType:     string(e.SplitType),
		Splits:        e.Splits,
		IsPersonal:    e.IsPersonal,
		Category:      e.Category,
		Date:          e.Date,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
		LastUpdatedAt: e.LastUpdatedAt,
		LastUpdatedBy: e.LastUpdatedBy,
	}
}

// ToListExpensesResponse converts a group's expenses.
func ToListExpensesResponse(groupID string, expenses []domain.Expense) ListExpensesResponse {
	resp := ListExpensesResponse{GroupID: groupID, Expenses: make([]ExpenseResponse, len(expenses))}
	for i := range expenses {
		resp.Expenses[i] = ToExpenseResponse(&expenses[i])
	}
	return resp
}
