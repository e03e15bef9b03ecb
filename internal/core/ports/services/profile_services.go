package services

import (
	"context"

	"github.com/SscSPs/splitsettle/internal/core/domain"
)

// ProfileSvcFacade maintains the user directory entries shown in suggestions.
type ProfileSvcFacade interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user domain.User) (*domain.User, error)
}
