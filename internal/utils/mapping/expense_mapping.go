package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/SscSPs/splitsettle/internal/models"
)

// ToDomainExpense converts an expense row. Splits or a category that cannot be decoded
// are replaced by an empty map (custom splits) or nil (category) and the decode problem
// is returned for logging. Custom splits stored as NULL stay nil, so the calculator
// rejects the expense instead of dropping it.
func ToDomainExpense(m models.Expense) (domain.Expense, error) {
	e := domain.Expense{
		ExpenseID:   m.ExpenseID,
		Title:       m.Title,
		Amount:      m.Amount,
		PaidBy:      m.PaidBy,
		SplitType:   domain.SplitType(m.SplitType),
		GroupID:     m.GroupID,
		IsPersonal:  m.IsPersonal,
		Date:        m.Date,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if m.Notes != nil {
		e.Notes = *m.Notes
	}

	var problem error
	if e.SplitType == domain.SplitCustom {
		splits, err := DecodeSplits(m.Splits)
		if err != nil {
			problem = fmt.Errorf("expense %s splits: %w", m.ExpenseID, err)
			if splits == nil {
				splits = map[string]decimal.Decimal{}
			}
		}
		e.Splits = splits
	}

	category, err := DecodeCategory(m.Category)
	if err != nil && problem == nil {
		problem = fmt.Errorf("expense %s category: %w", m.ExpenseID, err)
	}
	e.Category = category

	return e, problem
}

// ToModelExpense converts a domain expense to a row, encoding splits and category as JSON.
func ToModelExpense(d domain.Expense) (models.Expense, error) {
	m := models.Expense{
		ExpenseID:   d.ExpenseID,
		Title:       d.Title,
		Amount:      d.Amount,
		PaidBy:      d.PaidBy,
		SplitType:   string(d.SplitType),
		Date:        d.Date,
		GroupID:     d.GroupID,
		IsPersonal:  d.IsPersonal,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	if d.Notes != "" {
		notes := d.Notes
		m.Notes = &notes
	}
	if d.Splits != nil {
		raw, err := json.Marshal(d.Splits)
		if err != nil {
			return models.Expense{}, fmt.Errorf("encode splits of expense %s: %w", d.ExpenseID, err)
		}
		m.Splits = raw
	}
	if d.Category != nil {
		raw, err := json.Marshal(d.Category)
		if err != nil {
			return models.Expense{}, fmt.Errorf("encode category of expense %s: %w", d.ExpenseID, err)
		}
		m.Category = raw
	}
	return m, nil
}

// DecodeSplits parses a stored member -> share document. Shares may be JSON numbers or
// numeric strings. NULL or empty input yields a nil map.
func DecodeSplits(raw []byte) (map[string]decimal.Decimal, error) {
	if isNullJSON(raw) {
		return nil, nil
	}
	var splits map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &splits); err != nil {
		return map[string]decimal.Decimal{}, err
	}
	return splits, nil
}

// DecodeCategory parses a stored category document.
func DecodeCategory(raw []byte) (*domain.Category, error) {
	if isNullJSON(raw) {
		return nil, nil
	}
	var c domain.Category
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func isNullJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
