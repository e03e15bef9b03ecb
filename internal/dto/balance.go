package dto

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// MemberBalance is one member's net position. Positive means the member is owed money.
type MemberBalance struct {
	UserID  string          `json:"userID"`
	Balance decimal.Decimal `json:"balance"`
}

// GroupBalancesResponse lists every member's balance, ordered by user ID.
type GroupBalancesResponse struct {
	GroupID  string          `json:"groupID"`
	Balances []MemberBalance `json:"balances"`
}

// PlanEntryResponse is one suggested transfer.
type PlanEntryResponse struct {
	PayerID   string          `json:"payerID"`
	PayeeID   string          `json:"payeeID"`
	Amount    decimal.Decimal `json:"amount"`
	PayerName string          `json:"payerName,omitempty"`
	PayeeName string          `json:"payeeName,omitempty"`
}

// SettlementPlanResponse is the transfer plan for a group.
type SettlementPlanResponse struct {
	GroupID  string              `json:"groupID"`
	Entries  []PlanEntryResponse `json:"entries"`
	Residual []MemberBalance     `json:"residual,omitempty"`
}

// SettlementSuggestionsResponse is the plan decorated with display names.
type SettlementSuggestionsResponse struct {
	GroupID     string              `json:"groupID"`
	Suggestions []PlanEntryResponse `json:"suggestions"`
}

func toMemberBalances(b domain.BalanceMap) []MemberBalance {
	out := make([]MemberBalance, 0, len(b))
	for id, v := range b {
		out = append(out, MemberBalance{UserID: id, Balance: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// ToGroupBalancesResponse converts a balance map.
func ToGroupBalancesResponse(groupID string, balances domain.BalanceMap) GroupBalancesResponse {
	return GroupBalancesResponse{GroupID: groupID, Balances: toMemberBalances(balances)}
}

// ToSettlementPlanResponse converts a plan.
func ToSettlementPlanResponse(plan *domain.SettlementPlan) SettlementPlanResponse {
	resp := SettlementPlanResponse{
		GroupID: plan.GroupID,
		Entries: make([]PlanEntryResponse, 0, len(plan.Entries)),
	}
	for _, e := range plan.Entries {
		resp.Entries = append(resp.Entries, PlanEntryResponse{PayerID: e.PayerID, PayeeID: e.PayeeID, Amount: e.Amount})
	}
	if len(plan.Residual) > 0 {
		resp.Residual = toMemberBalances(plan.Residual)
	}
	return resp
}

// ToSettlementSuggestionsResponse converts suggestions.
func ToSettlementSuggestionsResponse(groupID string, suggestions []domain.SettlementSuggestion) SettlementSuggestionsResponse {
	resp := SettlementSuggestionsResponse{
		GroupID:     groupID,
		Suggestions: make([]PlanEntryResponse, 0, len(suggestions)),
	}
	for _, s := range suggestions {
		resp.Suggestions = append(resp.Suggestions, PlanEntryResponse{
			PayerID:   s.PayerID,
			PayeeID:   s.PayeeID,
			Amount:    s.Amount,
			PayerName: s.PayerName,
			PayeeName: s.PayeeName,
		})
	}
	return resp
}
