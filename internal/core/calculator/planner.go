package calculator

import (
	"log/slog"
	"sort"

	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/shopspring/decimal"
)

type party struct {
	id        string
	remaining decimal.Decimal
}

// before orders parties by remaining amount descending, then ID ascending.
func before(a, b party) bool {
	if c := a.remaining.Cmp(b.remaining); c != 0 {
		return c > 0
	}
	return a.id < b.id
}

// Planner turns a BalanceMap into transfers by greedy debt netting.
type Planner struct {
	logger *slog.Logger
}

// NewPlanner creates a Planner. A nil logger falls back to slog.Default().
func NewPlanner(logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{logger: logger}
}

// Plan repeatedly matches the largest creditor with the largest debtor. Amounts are
// rounded to cents and anyone left with less than a cent is considered settled, so
// the plan has at most len(balances)-1 entries. The output depends only on the input map.
func (p *Planner) Plan(balances domain.BalanceMap) domain.SettlementPlan {
	var creditors, debtors []party
	for _, id := range balances.MemberIDs() {
		switch v := balances[id]; v.Sign() {
		case 1:
			creditors = append(creditors, party{id: id, remaining: v})
		case -1:
			debtors = append(debtors, party{id: id, remaining: v.Neg()})
		}
	}
	sort.SliceStable(creditors, func(i, j int) bool { return before(creditors[i], creditors[j]) })
	sort.SliceStable(debtors, func(i, j int) bool { return before(debtors[i], debtors[j]) })

	plan := domain.SettlementPlan{Entries: []domain.PlanEntry{}}
	for len(creditors) > 0 && len(debtors) > 0 {
		amount := domain.RoundMoney(decimal.Min(creditors[0].remaining, debtors[0].remaining))
		if amount.IsPositive() {
			plan.Entries = append(plan.Entries, domain.PlanEntry{
				PayerID: debtors[0].id,
				PayeeID: creditors[0].id,
				Amount:  amount,
			})
		}
		creditors[0].remaining = creditors[0].remaining.Sub(amount)
		debtors[0].remaining = debtors[0].remaining.Sub(amount)
		creditors = settleFront(creditors)
		debtors = settleFront(debtors)
	}

	residual := make(domain.BalanceMap)
	for _, c := range creditors {
		if !domain.IsNegligible(c.remaining) {
			residual[c.id] = domain.RoundMoney(c.remaining)
		}
	}
	for _, d := range debtors {
		if !domain.IsNegligible(d.remaining) {
			residual[d.id] = domain.RoundMoney(d.remaining.Neg())
		}
	}
	if len(residual) > 0 {
		plan.Residual = residual
		p.logger.Warn("Settlement plan left unmatched balances",
			slog.Int("residual_members", len(residual)),
			slog.String("residual_total", residual.Sum().StringFixed(domain.MoneyPrecision)))
	}
	return plan
}

// settleFront drops the head when it has less than a cent left, otherwise moves it
// down to keep the slice sorted.
func settleFront(list []party) []party {
	if list[0].remaining.LessThan(domain.Epsilon) {
		return list[1:]
	}
	for i := 0; i+1 < len(list) && before(list[i+1], list[i]); i++ {
		list[i], list[i+1] = list[i+1], list[i]
	}
	return list
}
