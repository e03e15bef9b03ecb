package calculator_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/SscSPs/splitsettle/internal/core/calculator"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(payer, payee, amount string) domain.PlanEntry {
	return domain.PlanEntry{PayerID: payer, PayeeID: payee, Amount: dec(amount)}
}

func assertEntries(t *testing.T, want []domain.PlanEntry, got []domain.PlanEntry) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].PayerID, got[i].PayerID, "entry %d payer", i)
		assert.Equal(t, want[i].PayeeID, got[i].PayeeID, "entry %d payee", i)
		assert.True(t, want[i].Amount.Equal(got[i].Amount), "entry %d: want %s, got %s", i, want[i].Amount, got[i].Amount)
	}
}

func TestPlanner_Scenarios(t *testing.T) {
	planner := calculator.NewPlanner(discardLogger)

	tests := []struct {
		name     string
		balances domain.BalanceMap
		want     []domain.PlanEntry
	}{
		{
			name:     "one creditor, tied debtors ordered by id",
			balances: domain.BalanceMap{"A": dec("60"), "C": dec("-30"), "B": dec("-30")},
			want:     []domain.PlanEntry{entry("B", "A", "30"), entry("C", "A", "30")},
		},
		{
			name:     "after one settlement is recorded",
			balances: domain.BalanceMap{"A": dec("30"), "B": dec("0"), "C": dec("-30")},
			want:     []domain.PlanEntry{entry("C", "A", "30")},
		},
		{
			name:     "largest debtor pays largest creditor first",
			balances: domain.BalanceMap{"A": dec("50"), "B": dec("30"), "C": dec("-60"), "D": dec("-20")},
			want:     []domain.PlanEntry{entry("C", "A", "50"), entry("D", "B", "20"), entry("C", "B", "10")},
		},
		{
			name:     "tied creditors ordered by id",
			balances: domain.BalanceMap{"y": dec("10"), "x": dec("10"), "z": dec("-20")},
			want:     []domain.PlanEntry{entry("z", "x", "10"), entry("z", "y", "10")},
		},
		{
			name:     "amounts rounded to cents",
			balances: domain.BalanceMap{"A": dec("66.6666666666666667"), "B": dec("-33.3333333333333333"), "C": dec("-33.3333333333333334")},
			want:     []domain.PlanEntry{entry("C", "A", "33.33"), entry("B", "A", "33.33")},
		},
		{
			name:     "already settled",
			balances: domain.BalanceMap{"A": dec("0"), "B": dec("0")},
			want:     []domain.PlanEntry{},
		},
		{
			name:     "sub-cent noise is ignored",
			balances: domain.BalanceMap{"A": dec("0.004"), "B": dec("-0.004")},
			want:     []domain.PlanEntry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := planner.Plan(tt.balances)
			assertEntries(t, tt.want, plan.Entries)
			assert.Empty(t, plan.Residual)
		})
	}
}

func TestPlanner_ResidualIsReportedNotFatal(t *testing.T) {
	plan := calculator.NewPlanner(discardLogger).Plan(domain.BalanceMap{"A": dec("50"), "B": dec("-20")})
	assertEntries(t, []domain.PlanEntry{entry("B", "A", "20")}, plan.Entries)
	require.Len(t, plan.Residual, 1)
	assert.True(t, plan.Residual["A"].Equal(dec("30")))
}

func TestPlanner_EmptyInput(t *testing.T) {
	plan := calculator.NewPlanner(nil).Plan(nil)
	assert.NotNil(t, plan.Entries)
	assert.Empty(t, plan.Entries)
}

func TestPlanner_PropertiesOnRandomGroups(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	planner := calculator.NewPlanner(discardLogger)

	for round := 0; round < 200; round++ {
		balances := randomBalanceMap(rng, 2+rng.Intn(9))

		first := planner.Plan(balances)
		second := planner.Plan(balances.Clone())
		assert.Equal(t, first, second, "round %d: plan must be deterministic", round)

		assert.LessOrEqual(t, len(first.Entries), len(balances)-1, "round %d", round)
		for _, e := range first.Entries {
			assert.True(t, e.Amount.IsPositive())
			assert.NotEqual(t, e.PayerID, e.PayeeID)
			assert.True(t, e.Amount.Equal(domain.RoundMoney(e.Amount)))
		}

		after := first.Apply(balances)
		for id, v := range after {
			assert.True(t, v.Abs().LessThanOrEqual(domain.Epsilon), "round %d: %s left with %s", round, id, v)
		}
	}
}

// randomBalanceMap builds a zero-sum map in whole cents.
func randomBalanceMap(rng *rand.Rand, n int) domain.BalanceMap {
	balances := make(domain.BalanceMap, n)
	total := int64(0)
	for i := 0; i < n-1; i++ {
		cents := rng.Int63n(20001) - 10000
		balances[fmt.Sprintf("m%02d", i)] = decimal.New(cents, -2)
		total += cents
	}
	balances[fmt.Sprintf("m%02d", n-1)] = decimal.New(-total, -2)
	return balances
}

func TestEndToEnd_PlanAfterRecordingPlanSettlesGroup(t *testing.T) {
	group := domain.NewGroup("g1", "", []string{"A", "B", "C", "D"})
	expenses := []domain.Expense{
		groupExpense("e1", "g1", "A", "120", domain.SplitEqual, nil),
		groupExpense("e2", "g1", "B", "45.50", domain.SplitCustom, map[string]string{"C": "20", "D": "25.50"}),
		groupExpense("e3", "g1", "D", "10", domain.SplitEqual, nil),
	}
	agg := calculator.NewAggregator(calculator.WithLogger(discardLogger))
	planner := calculator.NewPlanner(discardLogger)

	balances, err := agg.Aggregate(group, expenses, nil)
	require.NoError(t, err)
	plan := planner.Plan(balances)
	require.NotEmpty(t, plan.Entries)

	var settlements []domain.Settlement
	for i, e := range plan.Entries {
		settlements = append(settlements, completedSettlement(fmt.Sprintf("s%d", i), "g1", e.PayerID, e.PayeeID, e.Amount.String()))
	}
	after, err := agg.Aggregate(group, expenses, settlements)
	require.NoError(t, err)
	assert.True(t, after.IsSettled(), "balances after settling: %v", after)
	assert.Empty(t, planner.Plan(after).Entries)
}
