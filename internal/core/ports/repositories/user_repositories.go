package repositories

import (
	"context"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// UserDirectory resolves member IDs to directory entries.
type UserDirectory interface {
	// FindUsersByIDs returns the users found, keyed by ID. Missing IDs are simply absent.
	FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error)
}

// UserWriter stores directory entries.
type UserWriter interface {
	SaveUser(ctx context.Context, user domain.User) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserDirectory
	UserWriter
}
