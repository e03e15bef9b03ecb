package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// RecordEntryRequest is one plan entry the user chose to record.
type RecordEntryRequest struct {
	PayerID string          `json:"payerID" binding:"required"`
	PayeeID string          `json:"payeeID" binding:"required"`
	Amount  decimal.Decimal `json:"amount"`
	Notes   string          `json:"notes" binding:"max=500"`
}

// RecordSettlementsRequest records several plan entries of the group in the path.
type RecordSettlementsRequest struct {
	Entries []RecordEntryRequest `json:"entries" binding:"required,min=1,dive"`
}

// ToRecordEntries attaches the path group to every entry.
func (r RecordSettlementsRequest) ToRecordEntries(groupID string) []domain.RecordEntry {
	entries := make([]domain.RecordEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, domain.RecordEntry{
			GroupID: groupID,
			PayerID: e.PayerID,
			PayeeID: e.PayeeID,
			Amount:  e.Amount,
			Notes:   e.Notes,
		})
	}
	return entries
}

// RecordResultResponse reports the outcome of one entry, by its index in the request.
type RecordResultResponse struct {
	Index      int                 `json:"index"`
	Success    bool                `json:"success"`
	Settlement *SettlementResponse `json:"settlement,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// RecordSettlementsResponse is returned for a batch, whether it fully succeeded or not.
type RecordSettlementsResponse struct {
	Results   []RecordResultResponse `json:"results"`
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
}

// ToRecordSettlementsResponse converts recorder results.
func ToRecordSettlementsResponse(results []domain.RecordResult) RecordSettlementsResponse {
	resp := RecordSettlementsResponse{Results: make([]RecordResultResponse, 0, len(results))}
	for _, r := range results {
		item := RecordResultResponse{Index: r.Index, Success: r.Succeeded()}
		if item.Success {
			s := ToSettlementResponse(r.Settlement)
			item.Settlement = &s
			resp.Succeeded++
		} else {
			if r.Err != nil {
				item.Error = r.Err.Error()
			}
			resp.Failed++
		}
		resp.Results = append(resp.Results, item)
	}
	return resp
}

// CreateSettlementRequest creates a single settlement, optionally as a pending proposal.
type CreateSettlementRequest struct {
	GroupID  string          `json:"groupID" binding:"required"`
	FromUser string          `json:"fromUser" binding:"required"`
	ToUser   string          `json:"toUser" binding:"required,nefield=FromUser"`
	Amount   decimal.Decimal `json:"amount"`
	Status   string          `json:"status" binding:"omitempty,oneof=pending completed"`
	Notes    string          `json:"notes" binding:"max=500"`
}

// ToRecordEntry converts the request into a recorder entry.
func (r CreateSettlementRequest) ToRecordEntry() domain.RecordEntry {
	return domain.RecordEntry{
		GroupID: r.GroupID,
		PayerID: r.FromUser,
		PayeeID: r.ToUser,
		Amount:  r.Amount,
		Notes:   r.Notes,
	}
}

// UpdateSettlementStatusRequest moves a settlement to a new status.
type UpdateSettlementStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending completed cancelled"`
}

// ListSettlementsParams defines query parameters for listing settlements.
type ListSettlementsParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=200"`
	NextToken *string `form:"nextToken"`
	Status    string  `form:"status" binding:"omitempty,oneof=pending completed cancelled"`
	Direction string  `form:"direction" binding:"omitempty,oneof=all paid received"`
}

// SettlementResponse defines the data returned for a settlement.
type SettlementResponse struct {
	SettlementID  string          `json:"settlementID"`
	GroupID       string          `json:"groupID"`
	FromUser      string          `json:"fromUser"`
	ToUser        string          `json:"toUser"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy string          `json:"lastUpdatedBy"`
}

// ListSettlementsResponse is one page of settlements.
type ListSettlementsResponse struct {
	Settlements []SettlementResponse `json:"settlements"`
	NextToken   *string              `json:"nextToken,omitempty"`
}

// ToSettlementResponse converts a domain.Settlement to SettlementResponse DTO
func ToSettlementResponse(s *domain.Settlement) SettlementResponse {
	return SettlementResponse{
		SettlementID:  s.SettlementID,
		GroupID:       s.GroupID,
		FromUser:      s.FromUser,
		ToUser:        s.ToUser,
		Amount:        s.Amount,
		Status:        string(s.Status()),
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		CreatedBy:     s.CreatedBy,
		LastUpdatedAt: s.LastUpdatedAt,
		LastUpdatedBy: s.LastUpdatedBy,
	}
}

// ToListSettlementsResponse converts a page of settlements.
func ToListSettlementsResponse(page *domain.SettlementPage) ListSettlementsResponse {
	resp := ListSettlementsResponse{
		Settlements: make([]SettlementResponse, len(page.Settlements)),
		NextToken:   page.NextToken,
	}
	for i := range page.Settlements {
		resp.Settlements[i] = ToSettlementResponse(&page.Settlements[i])
	}
	return resp
}
