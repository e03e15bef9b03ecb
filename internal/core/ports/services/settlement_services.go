package services

import (
	"context"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// SettlementRecorderSvc turns user-selected plan entries into completed settlements.
type SettlementRecorderSvc interface {
	// RecordSettlements persists each entry independently and reports one result per
	// entry, in input order. Partial success is a normal outcome.
	RecordSettlements(ctx context.Context, actingUserID string, entries []domain.RecordEntry) []domain.RecordResult
}

// SettlementWriterSvc creates single settlements and moves them through their lifecycle.
type SettlementWriterSvc interface {
	CreateSettlement(ctx context.Context, actingUserID string, entry domain.RecordEntry, status domain.SettlementStatus) (*domain.Settlement, error)
	UpdateSettlementStatus(ctx context.Context, settlementID string, status domain.SettlementStatus, actingUserID string) (*domain.Settlement, error)
}

// SettlementReaderSvc reads settlement records.
type SettlementReaderSvc interface {
	GetSettlement(ctx context.Context, settlementID string) (*domain.Settlement, error)
	ListSettlements(ctx context.Context, filter domain.SettlementFilter, limit int, nextToken *string) (*domain.SettlementPage, error)
}

// SettlementSvcFacade combines all settlement-related service interfaces
type SettlementSvcFacade interface {
	SettlementRecorderSvc
	SettlementWriterSvc
	SettlementReaderSvc
}
