package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/splitsettle/internal/core/ports/services"
)

type profileService struct {
	BaseService
	repo portsrepo.UserRepositoryFacade
}

// NewProfileService creates a service over the user directory.
func NewProfileService(repo portsrepo.UserRepositoryFacade) portssvc.ProfileSvcFacade {
	return &profileService{repo: repo}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}
	users, err := s.repo.FindUsersByIDs(ctx, []string{userID})
	if err != nil {
		s.LogError(ctx, err, "Failed to load profile", slog.String("user_id", userID))
		return nil, err
	}
	user, ok := users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	return &user, nil
}

// UpdateProfile creates or replaces the directory entry for user.UserID.
func (s *profileService) UpdateProfile(ctx context.Context, user domain.User) (*domain.User, error) {
	if user.UserID == "" {
		return nil, fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}
	if user.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if err := s.repo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "Failed to save profile", slog.String("user_id", user.UserID))
		return nil, fmt.Errorf("%w: save user: %w", apperrors.ErrPersistence, err)
	}
	s.LogDebug(ctx, "Profile saved", slog.String("user_id", user.UserID))
	return &user, nil
}
