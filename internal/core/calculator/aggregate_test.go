package calculator_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/calculator"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregator_Scenarios(t *testing.T) {
	group := domain.NewGroup("g1", "Trip", []string{"A", "B", "C"})
	dinner := groupExpense("e1", "g1", "A", "90", domain.SplitEqual, nil)
	agg := calculator.NewAggregator(calculator.WithLogger(discardLogger))

	t.Run("equal split expense", func(t *testing.T) {
		got, err := agg.Aggregate(group, []domain.Expense{dinner}, nil)
		require.NoError(t, err)
		assertBalances(t, map[string]string{"A": "60", "B": "-30", "C": "-30"}, got)
	})

	t.Run("completed settlement reduces debt", func(t *testing.T) {
		got, err := agg.Aggregate(group, []domain.Expense{dinner}, []domain.Settlement{
			completedSettlement("s1", "g1", "B", "A", "30"),
		})
		require.NoError(t, err)
		assertBalances(t, map[string]string{"A": "30", "B": "0", "C": "-30"}, got)
	})

	t.Run("members with no activity are present at zero", func(t *testing.T) {
		got, err := agg.Aggregate(domain.NewGroup("g1", "", []string{"A", "B", "C", "D"}), nil, nil)
		require.NoError(t, err)
		assertBalances(t, map[string]string{"A": "0", "B": "0", "C": "0", "D": "0"}, got)
	})
}

func TestAggregator_StatusFiltering(t *testing.T) {
	group := domain.NewGroup("g1", "", []string{"A", "B", "C"})
	expenses := []domain.Expense{groupExpense("e1", "g1", "A", "90", domain.SplitEqual, nil)}
	agg := calculator.NewAggregator(calculator.WithLogger(discardLogger))

	baseline, err := agg.Aggregate(group, expenses, nil)
	require.NoError(t, err)

	for _, status := range []domain.SettlementStatus{domain.SettlementPending, domain.SettlementCancelled} {
		t.Run(string(status), func(t *testing.T) {
			got, err := agg.Aggregate(group, expenses, []domain.Settlement{
				settlementWithStatus("s1", "g1", "B", "A", "30", status),
			})
			require.NoError(t, err)
			assert.Equal(t, baseline, got)
		})
	}
}

func TestAggregator_SkipsForeignAndDuplicateRecords(t *testing.T) {
	group := domain.NewGroup("g1", "", []string{"A", "B"})
	personal := groupExpense("e2", "g1", "A", "500", domain.SplitEqual, nil)
	personal.IsPersonal = true
	noGroup := groupExpense("e3", "g1", "A", "500", domain.SplitEqual, nil)
	noGroup.GroupID = nil

	expenses := []domain.Expense{
		groupExpense("e1", "g1", "A", "20", domain.SplitEqual, nil),
		groupExpense("e1", "g1", "A", "20", domain.SplitEqual, nil),
		groupExpense("e4", "other", "A", "80", domain.SplitEqual, nil),
		personal,
		noGroup,
	}
	settlements := []domain.Settlement{
		completedSettlement("s1", "g1", "B", "A", "5"),
		completedSettlement("s1", "g1", "B", "A", "5"),
		completedSettlement("s2", "other", "B", "A", "5"),
	}

	got, err := calculator.NewAggregator(calculator.WithLogger(discardLogger)).Aggregate(group, expenses, settlements)
	require.NoError(t, err)
	assertBalances(t, map[string]string{"A": "5", "B": "-5"}, got)
}

func TestAggregator_DepartedMemberKeepsHistory(t *testing.T) {
	// D paid for everyone while still in the group, then left.
	group := domain.NewGroup("g1", "", []string{"A", "B", "C"})
	expenses := []domain.Expense{
		groupExpense("e1", "g1", "D", "90", domain.SplitCustom, map[string]string{"A": "30", "B": "30", "C": "30"}),
	}

	t.Run("lenient keeps the departed balance", func(t *testing.T) {
		got, err := calculator.NewAggregator(calculator.WithLogger(discardLogger)).Aggregate(group, expenses, nil)
		require.NoError(t, err)
		assertBalances(t, map[string]string{"A": "-30", "B": "-30", "C": "-30", "D": "90"}, got)
		assert.True(t, got.Sum().IsZero())
	})

	t.Run("strict rejects unknown members", func(t *testing.T) {
		agg := calculator.NewAggregator(calculator.WithLogger(discardLogger), calculator.WithStrictMembership(true))
		_, err := agg.Aggregate(group, expenses, nil)
		assert.True(t, errors.Is(err, apperrors.ErrDependency))
	})
}

func TestAggregator_PropagatesValidationErrors(t *testing.T) {
	group := domain.NewGroup("g1", "", []string{"A", "B"})
	_, err := calculator.NewAggregator(calculator.WithLogger(discardLogger)).Aggregate(group, []domain.Expense{
		groupExpense("e1", "g1", "A", "10", domain.SplitCustom, nil),
	}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestAggregator_Conservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	members := []string{"ana", "ben", "cai", "dee", "eli"}
	group := domain.NewGroup("g1", "", members)
	agg := calculator.NewAggregator(calculator.WithLogger(discardLogger))

	for round := 0; round < 50; round++ {
		var expenses []domain.Expense
		for i := 0; i < 1+rng.Intn(12); i++ {
			payer := members[rng.Intn(len(members))]
			cents := int64(1 + rng.Intn(50000))
			e := domain.Expense{
				ExpenseID: fmt.Sprintf("r%d-e%d", round, i),
				Amount:    decimal.New(cents, -2),
				PaidBy:    payer,
				SplitType: domain.SplitEqual,
				GroupID:   strPtr("g1"),
			}
			if rng.Intn(2) == 0 {
				e.SplitType = domain.SplitCustom
				e.Splits = randomSplits(rng, members, cents)
			}
			require.NoError(t, e.Validate())
			expenses = append(expenses, e)
		}
		var settlements []domain.Settlement
		for i := 0; i < rng.Intn(5); i++ {
			from, to := members[rng.Intn(len(members))], members[rng.Intn(len(members))]
			status := []domain.SettlementStatus{domain.SettlementCompleted, domain.SettlementPending, domain.SettlementCancelled}[rng.Intn(3)]
			settlements = append(settlements, settlementWithStatus(fmt.Sprintf("r%d-s%d", round, i), "g1", from, to, decimal.New(int64(1+rng.Intn(10000)), -2).String(), status))
		}

		balances, err := agg.Aggregate(group, expenses, settlements)
		require.NoError(t, err)
		tolerance := domain.Epsilon.Mul(decimal.NewFromInt(int64(len(balances))))
		assert.True(t, balances.Sum().Abs().LessThanOrEqual(tolerance), "round %d: sum %s", round, balances.Sum())
	}
}

// randomSplits divides cents among a random non-empty subset of members.
func randomSplits(rng *rand.Rand, members []string, cents int64) map[string]decimal.Decimal {
	var chosen []string
	for _, m := range members {
		if rng.Intn(2) == 0 {
			chosen = append(chosen, m)
		}
	}
	if len(chosen) == 0 {
		chosen = members[:1]
	}
	splits := make(map[string]decimal.Decimal, len(chosen))
	remaining := cents
	for i, m := range chosen {
		part := remaining
		if i < len(chosen)-1 {
			part = rng.Int63n(remaining + 1)
		}
		splits[m] = decimal.New(part, -2)
		remaining -= part
	}
	return splits
}
