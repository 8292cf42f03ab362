package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/core/port"
	"github.com/arklim/casting-platform-api/internal/repository"
)

// ProfileService manages a user's own account data.
type ProfileService struct {
	users port.UserRepository
}

// NewProfileService constructs a ProfileService instance.
func NewProfileService(users port.UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

// Get returns the caller's account.
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Update applies the non-nil fields of the patch to the caller's account.
func (s *ProfileService) Update(ctx context.Context, id string, patch port.ProfilePatch) (*domain.User, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if !nameRe.MatchString(name) {
			return nil, validationErr("name", "name must start with a letter and contain only letters, spaces, apostrophes or hyphens (2-50 characters)")
		}
		patch.Name = &name
	}

	user, err := s.users.UpdateProfile(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// SetAvatar stores the avatar object URL on the caller's account.
func (s *ProfileService) SetAvatar(ctx context.Context, id, avatarURL string) (*domain.User, error) {
	avatarURL = strings.TrimSpace(avatarURL)
	if avatarURL == "" {
		return nil, validationErr("avatar_url", "avatar_url is required")
	}

	user, err := s.users.UpdateProfile(ctx, id, port.ProfilePatch{AvatarURL: &avatarURL})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update avatar: %w", err)
	}
	return user, nil
}
