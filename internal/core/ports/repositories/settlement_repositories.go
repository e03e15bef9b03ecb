package repositories

import (
	"context"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// SettlementProvider returns settlement records.
type SettlementProvider interface {
	// ListGroupSettlements returns every settlement of the group regardless of status.
	ListGroupSettlements(ctx context.Context, groupID string) ([]domain.Settlement, error)

	// FindSettlementByID returns apperrors.ErrNotFound when the settlement does not exist.
	FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error)

	// ListSettlements returns one page of settlements matching filter, newest first,
	// and a token for the next page (nil when there are no more).
	ListSettlements(ctx context.Context, filter domain.SettlementFilter, limit int, nextToken *string) ([]domain.Settlement, *string, error)
}

// SettlementSink persists new settlement records.
type SettlementSink interface {
	// SaveSettlement inserts the settlement and returns its assigned identifier.
	SaveSettlement(ctx context.Context, settlement domain.Settlement) (string, error)
}

// SettlementStatusUpdater persists status transitions.
type SettlementStatusUpdater interface {
	// UpdateSettlementStatus writes the settlement's new status only if the stored status
	// still equals previous; otherwise it returns apperrors.ErrInvalidTransition.
	UpdateSettlementStatus(ctx context.Context, settlement domain.Settlement, previous domain.SettlementStatus) error
}

// SettlementRepositoryFacade combines all settlement-related repository interfaces
type SettlementRepositoryFacade interface {
	SettlementProvider
	SettlementSink
	SettlementStatusUpdater
}
