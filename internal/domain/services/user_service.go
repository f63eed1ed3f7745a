package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hugscape/storefront/internal/domain/entities"
	"github.com/hugscape/storefront/internal/domain/repositories"
)

// ProfileUpdate carries the user-editable profile fields
type ProfileUpdate struct {
	Name       string `json:"name"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
}

// UserService provides business logic for account management
type UserService struct {
	userRepo repositories.UserRepository
	now      func() time.Time
	log      *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		now:      time.Now,
		log:      slog.Default().With(slog.String("service", "user")),
	}
}

// GetProfile returns an active account
func (s *UserService) GetProfile(ctx context.Context, userID string) (*entities.User, error) {
	user, found, err := s.userRepo.FindActiveByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile changes the display fields of an active account. Name is
// required; given and family names may be cleared.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*entities.User, error) {
	name := strings.TrimSpace(update.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.GivenName = strings.TrimSpace(update.GivenName)
	user.FamilyName = strings.TrimSpace(update.FamilyName)
	user.UpdatedAt = s.now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.log.Info("profile updated", slog.String("user_id", user.ID))
	return user, nil
}

// Deactivate marks an account inactive. Deactivating an already inactive
// account is a no-op.
func (s *UserService) Deactivate(ctx context.Context, userID string) error {
	user, found, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return repositories.ErrUserNotFound
	}
	if !user.Active() {
		return nil
	}

	if err := s.userRepo.SetActive(ctx, userID, false, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	s.log.Info("user deactivated", slog.String("user_id", userID))
	return nil
}
