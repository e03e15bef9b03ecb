package services

import (
	"context"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// GroupSvcFacade reads and maintains groups and their member lists.
type GroupSvcFacade interface {
	GetGroup(ctx context.Context, groupID string) (*domain.Group, error)

	// SaveGroup creates the group or replaces its name and members. A new group must
	// include the acting user; an existing one may only be changed by a current member.
	SaveGroup(ctx context.Context, actingUserID string, group domain.Group) (*domain.Group, error)
}
