package calculator_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

// assertBalances compares two balance maps after rounding to cents.
func assertBalances(t *testing.T, want map[string]string, got domain.BalanceMap) {
	t.Helper()
	assert.Len(t, got, len(want))
	for id, w := range want {
		g, ok := got[id]
		if !assert.True(t, ok, "missing member %s", id) {
			continue
		}
		assert.True(t, domain.RoundMoney(g).Equal(dec(w)), "member %s: want %s, got %s", id, w, g.String())
	}
}

func groupExpense(id, groupID, paidBy string, amount string, splitType domain.SplitType, splits map[string]string) domain.Expense {
	e := domain.Expense{
		ExpenseID: id,
		Amount:    dec(amount),
		PaidBy:    paidBy,
		SplitType: splitType,
		GroupID:   strPtr(groupID),
	}
	if splits != nil {
		e.Splits = make(map[string]decimal.Decimal, len(splits))
		for k, v := range splits {
			e.Splits[k] = dec(v)
		}
	}
	return e
}

func completedSettlement(id, groupID, from, to, amount string) domain.Settlement {
	return settlementWithStatus(id, groupID, from, to, amount, domain.SettlementCompleted)
}

func settlementWithStatus(id, groupID, from, to, amount string, status domain.SettlementStatus) domain.Settlement {
	return domain.RestoreSettlement(domain.Settlement{
		SettlementID: id,
		GroupID:      groupID,
		FromUser:     from,
		ToUser:       to,
		Amount:       dec(amount),
	}, status)
}
