package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
)

type groupService struct {
	BaseService
	repo     portsrepo.GroupRepositoryFacade
	notifier portssvc.LedgerChangeNotifierSvc
}

// NewGroupService creates a new group service. notifier may be nil.
func NewGroupService(repo portsrepo.GroupRepositoryFacade, notifier portssvc.LedgerChangeNotifierSvc) portssvc.GroupSvcFacade {
	return &groupService{repo: repo, notifier: notifier}
}

func (s *groupService) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group ID is required", apperrors.ErrValidation)
	}
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load group", slog.String("group_id", groupID))
		}
		return nil, err
	}
	return group, nil
}

// SaveGroup creates the group or replaces its name and members. Only a member may
// change an existing group, and whoever creates one must be in it.
func (s *groupService) SaveGroup(ctx context.Context, actingUserID string, group domain.Group) (*domain.Group, error) {
	if actingUserID == "" {
		return nil, fmt.Errorf("%w: acting user is required", apperrors.ErrValidation)
	}
	group = domain.NewGroup(group.GroupID, group.Name, group.Members)
	switch {
	case group.GroupID == "":
		return nil, fmt.Errorf("%w: group ID is required", apperrors.ErrValidation)
	case group.Name == "":
		return nil, fmt.Errorf("%w: group name is required", apperrors.ErrValidation)
	case len(group.Members) == 0:
		return nil, fmt.Errorf("%w: group needs at least one member", apperrors.ErrValidation)
	}

	existing, err := s.repo.GetGroup(ctx, group.GroupID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		existing = nil
		if !group.HasMember(actingUserID) {
			return nil, fmt.Errorf("%w: the creator must be a member of group %s", apperrors.ErrValidation, group.GroupID)
		}
	case err != nil:
		s.LogError(ctx, err, "Failed to load group", slog.String("group_id", group.GroupID))
		return nil, err
	case !existing.HasMember(actingUserID):
		return nil, fmt.Errorf("%w: %s is not a member of group %s", apperrors.ErrForbidden, actingUserID, group.GroupID)
	}

	if err := s.repo.SaveGroup(ctx, group); err != nil {
		s.LogError(ctx, err, "Failed to save group", slog.String("group_id", group.GroupID))
		if errors.Is(err, apperrors.ErrPersistence) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: save group: %w", apperrors.ErrPersistence, err)
	}

	// Equal splits read the member list, so a membership change moves balances.
	if existing != nil && !slices.Equal(existing.Members, group.Members) && s.notifier != nil {
		if err := s.notifier.NotifyMembersChanged(ctx, group.GroupID); err != nil {
			s.LogError(ctx, err, "Failed to announce membership change", slog.String("group_id", group.GroupID))
		}
	}

	s.LogInfo(ctx, "Group saved", slog.String("group_id", group.GroupID), slog.Int("members", len(group.Members)))
	return &group, nil
}
