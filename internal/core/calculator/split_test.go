package calculator_test

import (
	"errors"
	"testing"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/calculator"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCalculator_Deltas(t *testing.T) {
	members := []string{"A", "B", "C"}
	tests := []struct {
		name    string
		expense domain.Expense
		members []string
		want    map[string]string
	}{
		{
			name:    "equal split",
			expense: groupExpense("e1", "g", "A", "90", domain.SplitEqual, nil),
			members: members,
			want:    map[string]string{"A": "60", "B": "-30", "C": "-30"},
		},
		{
			name:    "equal split with repeating share",
			expense: groupExpense("e2", "g", "B", "100", domain.SplitEqual, nil),
			members: members,
			want:    map[string]string{"A": "-33.33", "B": "66.67", "C": "-33.33"},
		},
		{
			name:    "equal split zero amount",
			expense: groupExpense("e3", "g", "A", "0", domain.SplitEqual, nil),
			members: members,
			want:    map[string]string{"A": "0", "B": "0", "C": "0"},
		},
		{
			name:    "equal split without members",
			expense: groupExpense("e4", "g", "A", "50", domain.SplitEqual, nil),
			members: nil,
			want:    map[string]string{},
		},
		{
			name:    "equal split ignores duplicate members",
			expense: groupExpense("e5", "g", "A", "90", domain.SplitEqual, nil),
			members: []string{"A", "B", "C", "B"},
			want:    map[string]string{"A": "60", "B": "-30", "C": "-30"},
		},
		{
			name:    "custom split",
			expense: groupExpense("e6", "g", "A", "100", domain.SplitCustom, map[string]string{"A": "50", "B": "30", "C": "20"}),
			members: members,
			want:    map[string]string{"A": "50", "B": "-30", "C": "-20"},
		},
		{
			name:    "custom split not covering every member",
			expense: groupExpense("e7", "g", "A", "40", domain.SplitCustom, map[string]string{"A": "20", "B": "20"}),
			members: members,
			want:    map[string]string{"A": "20", "B": "-20"},
		},
		{
			name:    "custom split where payer does not participate",
			expense: groupExpense("e8", "g", "A", "100", domain.SplitCustom, map[string]string{"B": "50", "C": "50"}),
			members: members,
			want:    map[string]string{"A": "100", "B": "-50", "C": "-50"},
		},
		{
			name:    "custom split zero amount",
			expense: groupExpense("e10", "g", "A", "0", domain.SplitCustom, map[string]string{"A": "5", "B": "5"}),
			members: members,
			want:    map[string]string{"A": "0", "B": "0"},
		},
		{
			name:    "custom split with empty splits",
			expense: groupExpense("e9", "g", "A", "100", domain.SplitCustom, map[string]string{}),
			members: members,
			want:    map[string]string{},
		},
	}

	calc := calculator.NewSplitCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Deltas(tt.expense, tt.members)
			require.NoError(t, err)
			assertBalances(t, tt.want, got)
			assert.True(t, got.Sum().Abs().LessThan(domain.Epsilon), "deltas must sum to zero, got %s", got.Sum())
		})
	}
}

func TestSplitCalculator_Errors(t *testing.T) {
	calc := calculator.NewSplitCalculator()
	members := []string{"A", "B"}

	tests := []struct {
		name    string
		expense domain.Expense
	}{
		{"custom without splits", groupExpense("e1", "g", "A", "10", domain.SplitCustom, nil)},
		{"negative amount", groupExpense("e2", "g", "A", "-10", domain.SplitEqual, nil)},
		{"negative share", groupExpense("e3", "g", "A", "10", domain.SplitCustom, map[string]string{"A": "20", "B": "-10"})},
		{"negative share on zero amount", groupExpense("e6", "g", "A", "0", domain.SplitCustom, map[string]string{"A": "5", "B": "-5"})},
		{"unknown split type", groupExpense("e4", "g", "A", "10", "shares", nil)},
		{"missing payer", groupExpense("e5", "g", "", "10", domain.SplitEqual, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Deltas(tt.expense, members)
			assert.True(t, errors.Is(err, apperrors.ErrValidation), "expected validation error, got %v", err)
		})
	}
}

type payerTakesAllStrategy struct{}

func (payerTakesAllStrategy) Type() domain.SplitType { return "payer_only" }

func (payerTakesAllStrategy) Deltas(e domain.Expense, _ []string) (domain.BalanceMap, error) {
	return domain.BalanceMap{e.PaidBy: dec("0")}, nil
}

func TestSplitCalculator_ExtraStrategy(t *testing.T) {
	calc := calculator.NewSplitCalculator(payerTakesAllStrategy{})
	got, err := calc.Deltas(groupExpense("e1", "g", "A", "10", "payer_only", nil), []string{"A", "B"})
	require.NoError(t, err)
	assertBalances(t, map[string]string{"A": "0"}, got)
}
