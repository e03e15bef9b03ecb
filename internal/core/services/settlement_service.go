package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
)

const (
	defaultRecordConcurrency = 4
	defaultListLimit         = 50
	maxListLimit             = 200
)

// settlementService records settlements and manages their status.
type settlementService struct {
	BaseService
	repo             portsrepo.SettlementRepositoryFacade
	groups           portsrepo.GroupProvider
	invalidator      portssvc.BalanceInvalidatorSvc
	publisher        portssvc.LedgerEventPublisher
	metrics          portssvc.MetricsRecorder
	validate         *validator.Validate
	concurrency      int
	strictMembership bool
	now              func() time.Time
	newID            func() string
}

// SettlementServiceOption is a function that configures a settlementService
type SettlementServiceOption func(*settlementService)

// WithInvalidator sets who is told to drop derived balances after a change.
func WithInvalidator(inv portssvc.BalanceInvalidatorSvc) SettlementServiceOption {
	return func(s *settlementService) {
		s.invalidator = inv
	}
}

// WithEventPublisher sets the publisher for ledger change events.
func WithEventPublisher(p portssvc.LedgerEventPublisher) SettlementServiceOption {
	return func(s *settlementService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithSettlementMetrics sets the metrics recorder.
func WithSettlementMetrics(m portssvc.MetricsRecorder) SettlementServiceOption {
	return func(s *settlementService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRecordConcurrency bounds how many entries of a batch are written at once.
func WithRecordConcurrency(n int) SettlementServiceOption {
	return func(s *settlementService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMembershipCheck requires payer and payee to be current members of the group.
func WithMembershipCheck(strict bool) SettlementServiceOption {
	return func(s *settlementService) {
		s.strictMembership = strict
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) SettlementServiceOption {
	return func(s *settlementService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides uuid.NewString, for tests.
func WithIDGenerator(newID func() string) SettlementServiceOption {
	return func(s *settlementService) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewSettlementService creates a new settlement service.
func NewSettlementService(repo portsrepo.SettlementRepositoryFacade, groups portsrepo.GroupProvider, options ...SettlementServiceOption) portssvc.SettlementSvcFacade {
	s := &settlementService{
		repo:        repo,
		groups:      groups,
		publisher:   nopPublisher{},
		metrics:     nopMetrics{},
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		concurrency: defaultRecordConcurrency,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Ensure settlementService implements the portssvc.SettlementSvcFacade interface
var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// RecordSettlements validates and persists every entry independently. One entry failing
// never prevents its siblings from being written, and nothing is rolled back.
func (s *settlementService) RecordSettlements(ctx context.Context, actingUserID string, entries []domain.RecordEntry) []domain.RecordResult {
	logger := s.GetLogger(ctx).With(slog.String("acting_user_id", actingUserID), slog.Int("entries", len(entries)))
	results := make([]domain.RecordResult, len(entries))
	for i, e := range entries {
		results[i] = domain.RecordResult{Index: i, Entry: e}
	}

	groups := s.loadGroupsFor(ctx, entries)

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range results {
		i := i
		g.Go(func() error {
			settlement, err := s.recordOne(ctx, actingUserID, results[i].Entry, groups)
			if err != nil {
				results[i].Err = err
				s.metrics.ObserveSettlementRecorded(outcomeFailure)
				logger.Warn("Failed to record settlement entry", slog.Int("index", i), slog.String("error", err.Error()))
				return nil
			}
			results[i].Settlement = settlement
			s.metrics.ObserveSettlementRecorded(outcomeSuccess)
			return nil
		})
	}
	_ = g.Wait()

	touched := make(map[string]string)
	succeeded := 0
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
			touched[r.Settlement.GroupID] = r.Settlement.SettlementID
		}
	}
	for groupID, settlementID := range touched {
		s.ledgerChanged(ctx, domain.EventSettlementRecorded, groupID, settlementID)
	}

	logger.Info("Recorded settlement batch", slog.Int("succeeded", succeeded), slog.Int("failed", len(entries)-succeeded))
	return results
}

// groupLookup is the outcome of loading one group for membership checks.
type groupLookup struct {
	group *domain.Group
	err   error
}

// loadGroupsFor loads each distinct group referenced by entries once. It does nothing
// unless membership checks are enabled.
func (s *settlementService) loadGroupsFor(ctx context.Context, entries []domain.RecordEntry) map[string]groupLookup {
	lookups := make(map[string]groupLookup)
	if !s.strictMembership || s.groups == nil {
		return lookups
	}
	for _, e := range entries {
		if e.GroupID == "" {
			continue
		}
		if _, done := lookups[e.GroupID]; done {
			continue
		}
		group, err := s.groups.GetGroup(ctx, e.GroupID)
		if err != nil {
			err = dependencyError("load group "+e.GroupID, err)
		}
		lookups[e.GroupID] = groupLookup{group: group, err: err}
	}
	return lookups
}

func (s *settlementService) recordOne(ctx context.Context, actingUserID string, entry domain.RecordEntry, groups map[string]groupLookup) (*domain.Settlement, error) {
	settlement, err := s.buildSettlement(actingUserID, entry, domain.SettlementCompleted, groups)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, settlement)
}

// buildSettlement validates entry and turns it into a new settlement.
func (s *settlementService) buildSettlement(actingUserID string, entry domain.RecordEntry, status domain.SettlementStatus, groups map[string]groupLookup) (domain.Settlement, error) {
	if actingUserID == "" {
		return domain.Settlement{}, fmt.Errorf("%w: acting user is required", apperrors.ErrValidation)
	}
	if err := s.validate.Struct(entry); err != nil {
		return domain.Settlement{}, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if lookup, ok := groups[entry.GroupID]; ok {
		if lookup.err != nil {
			return domain.Settlement{}, lookup.err
		}
		if lookup.group == nil || !lookup.group.HasMember(entry.PayerID) || !lookup.group.HasMember(entry.PayeeID) {
			return domain.Settlement{}, fmt.Errorf("%w: payer and payee must be members of group %s", apperrors.ErrValidation, entry.GroupID)
		}
	}

	settlement, err := domain.NewSettlement(s.newID(), entry.GroupID, entry.PayerID, entry.PayeeID, entry.Amount, status, actingUserID, s.now())
	if err != nil {
		return domain.Settlement{}, err
	}
	settlement.Notes = entry.Notes
	return settlement, nil
}

// persist writes a new settlement, classifying any failure as ErrPersistence.
func (s *settlementService) persist(ctx context.Context, settlement domain.Settlement) (*domain.Settlement, error) {
	id, err := s.repo.SaveSettlement(ctx, settlement)
	if err != nil {
		if errors.Is(err, apperrors.ErrPersistence) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: save settlement: %w", apperrors.ErrPersistence, err)
	}
	if id != "" {
		settlement.SettlementID = id
	}
	return &settlement, nil
}

// CreateSettlement records a single settlement. status defaults to completed; pending
// records a proposal that does not affect balances until completed.
func (s *settlementService) CreateSettlement(ctx context.Context, actingUserID string, entry domain.RecordEntry, status domain.SettlementStatus) (*domain.Settlement, error) {
	settlement, err := s.buildSettlement(actingUserID, entry, status, s.loadGroupsFor(ctx, []domain.RecordEntry{entry}))
	if err != nil {
		s.LogError(ctx, err, "Rejected settlement", slog.String("group_id", entry.GroupID))
		return nil, err
	}
	created, err := s.persist(ctx, settlement)
	if err != nil {
		s.metrics.ObserveSettlementRecorded(outcomeFailure)
		s.LogError(ctx, err, "Failed to create settlement", slog.String("group_id", entry.GroupID))
		return nil, err
	}
	s.metrics.ObserveSettlementRecorded(outcomeSuccess)

	if created.IsCompleted() {
		s.ledgerChanged(ctx, domain.EventSettlementRecorded, created.GroupID, created.SettlementID)
	}
	s.LogInfo(ctx, "Settlement created",
		slog.String("settlement_id", created.SettlementID),
		slog.String("status", string(created.Status())))
	return created, nil
}

// UpdateSettlementStatus moves a settlement through pending -> completed|cancelled.
// Only the payer, the payee or the creator may change it.
func (s *settlementService) UpdateSettlementStatus(ctx context.Context, settlementID string, status domain.SettlementStatus, actingUserID string) (*domain.Settlement, error) {
	logger := s.GetLogger(ctx).With(slog.String("settlement_id", settlementID), slog.String("target_status", string(status)))

	settlement, err := s.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if actingUserID != settlement.FromUser && actingUserID != settlement.ToUser && actingUserID != settlement.CreatedBy {
		logger.Warn("User is not a party to the settlement", slog.String("acting_user_id", actingUserID))
		return nil, fmt.Errorf("%w: only settlement participants may change its status", apperrors.ErrForbidden)
	}

	previous := settlement.Status()
	changed, err := settlement.Transition(status, actingUserID, s.now())
	if err != nil {
		logger.Warn("Rejected status transition", slog.String("from", string(previous)))
		return nil, err
	}
	if !changed {
		return settlement, nil
	}

	if err := s.repo.UpdateSettlementStatus(ctx, *settlement, previous); err != nil {
		if errors.Is(err, apperrors.ErrInvalidTransition) || errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		logger.Error("Failed to persist status change", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: update settlement status: %w", apperrors.ErrPersistence, err)
	}

	if settlement.IsCompleted() {
		s.ledgerChanged(ctx, domain.EventSettlementStatus, settlement.GroupID, settlement.SettlementID)
	}
	logger.Info("Settlement status updated", slog.String("from", string(previous)))
	return settlement, nil
}

// GetSettlement returns one settlement.
func (s *settlementService) GetSettlement(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	if settlementID == "" {
		return nil, fmt.Errorf("%w: settlement ID is required", apperrors.ErrValidation)
	}
	settlement, err := s.repo.FindSettlementByID(ctx, settlementID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load settlement", slog.String("settlement_id", settlementID))
		}
		return nil, err
	}
	return settlement, nil
}

// ListSettlements returns one page of settlements, newest first.
func (s *settlementService) ListSettlements(ctx context.Context, filter domain.SettlementFilter, limit int, nextToken *string) (*domain.SettlementPage, error) {
	if filter.GroupID == "" && filter.UserID == "" {
		return nil, fmt.Errorf("%w: a group or a user is required to list settlements", apperrors.ErrValidation)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	settlements, next, err := s.repo.ListSettlements(ctx, filter, limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list settlements",
			slog.String("group_id", filter.GroupID),
			slog.String("user_id", filter.UserID))
		return nil, err
	}
	if settlements == nil {
		settlements = []domain.Settlement{}
	}
	return &domain.SettlementPage{Settlements: settlements, NextToken: next}, nil
}

// ledgerChanged invalidates derived balances for the group and announces the change.
// Publishing is best effort; the local invalidation has already happened.
func (s *settlementService) ledgerChanged(ctx context.Context, eventType domain.LedgerEventType, groupID, settlementID string) {
	if s.invalidator != nil {
		s.invalidator.InvalidateGroup(ctx, groupID)
	}
	event := domain.LedgerEvent{
		Type:         eventType,
		GroupID:      groupID,
		SettlementID: settlementID,
		OccurredAt:   s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to publish ledger event",
			slog.String("group_id", groupID),
			slog.String("event_type", string(eventType)))
	}
}
