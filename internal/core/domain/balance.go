package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BalanceMap maps a member ID to their net balance within a group.
// Positive means the member is owed money, negative means they owe.
type BalanceMap map[string]decimal.Decimal

// Add accumulates delta onto memberID's balance.
func (b BalanceMap) Add(memberID string, delta decimal.Decimal) {
	b[memberID] = b[memberID].Add(delta)
}

// Sum returns the total of all balances. It is ~0 for a consistent group.
func (b BalanceMap) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b {
		total = total.Add(v)
	}
	return total
}

// MemberIDs returns the keys in ascending order.
func (b BalanceMap) MemberIDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Rounded returns a copy with every balance rounded to MoneyPrecision.
func (b BalanceMap) Rounded() BalanceMap {
	out := make(BalanceMap, len(b))
	for id, v := range b {
		out[id] = RoundMoney(v)
	}
	return out
}

// Clone returns an independent copy.
func (b BalanceMap) Clone() BalanceMap {
	out := make(BalanceMap, len(b))
	for id, v := range b {
		out[id] = v
	}
	return out
}

// IsSettled reports whether every balance is negligible.
func (b BalanceMap) IsSettled() bool {
	for _, v := range b {
		if !IsNegligible(v) {
			return false
		}
	}
	return true
}
