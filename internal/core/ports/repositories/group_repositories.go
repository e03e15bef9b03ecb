package repositories

import (
	"context"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// GroupProvider returns a group and its deduplicated member list.
type GroupProvider interface {
	// GetGroup returns apperrors.ErrNotFound when the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*domain.Group, error)
}

// GroupWriter stores groups, inserting or replacing by ID.
type GroupWriter interface {
	SaveGroup(ctx context.Context, group domain.Group) error
}

// GroupRepositoryFacade combines all group-related repository interfaces
type GroupRepositoryFacade interface {
	GroupProvider
	GroupWriter
}
