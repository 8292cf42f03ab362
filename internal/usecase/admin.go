package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/core/port"
	"github.com/arklim/casting-platform-api/internal/repository"
)

// PlatformMetrics is the admin dashboard summary.
type PlatformMetrics struct {
	ActiveModels int `json:"active_models"`
	OpenCastings int `json:"open_castings"`
	Applications int `json:"applications"`
}

// AdminService implements the admin-facing account and dashboard operations.
type AdminService struct {
	users        port.UserRepository
	castings     port.CastingRepository
	applications port.ApplicationRepository
}

// NewAdminService constructs an AdminService instance.
func NewAdminService(users port.UserRepository, castings port.CastingRepository, applications port.ApplicationRepository) *AdminService {
	return &AdminService{users: users, castings: castings, applications: applications}
}

// PrimaryAdmin returns the oldest admin account. Used by the public contact
// endpoint, so callers must sanitize before serializing.
func (s *AdminService) PrimaryAdmin(ctx context.Context) (*domain.User, error) {
	admin, err := s.users.FirstAdmin(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	return admin, nil
}

// GetUser returns any account by id.
func (s *AdminService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Metrics aggregates the dashboard counters.
func (s *AdminService) Metrics(ctx context.Context) (*PlatformMetrics, error) {
	active := domain.UserStatusActive
	models, err := s.users.CountByRole(ctx, domain.RoleModel, &active)
	if err != nil {
		return nil, fmt.Errorf("count models: %w", err)
	}

	castings, err := s.castings.CountByStatus(ctx, domain.CastingStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("count castings: %w", err)
	}

	applications, err := s.applications.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}

	return &PlatformMetrics{
		ActiveModels: models,
		OpenCastings: castings,
		Applications: applications,
	}, nil
}

// ListModels returns model accounts, optionally filtered by status.
func (s *AdminService) ListModels(ctx context.Context, rawStatus string) ([]domain.User, error) {
	var status *domain.UserStatus
	if rawStatus != "" {
		parsed := domain.UserStatus(rawStatus)
		if parsed != domain.UserStatusActive && parsed != domain.UserStatusDisabled {
			return nil, validationErr("status", "status must be active or disabled")
		}
		status = &parsed
	}

	models, err := s.users.ListByRole(ctx, domain.RoleModel, status)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}

// GetModel returns a single model account.
func (s *AdminService) GetModel(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get model: %w", err)
	}
	if user.Role != domain.RoleModel {
		return nil, ErrNotFound
	}
	return user, nil
}

// SetModelStatus enables or disables a model account. A disable takes effect
// on the account's next authenticated request.
func (s *AdminService) SetModelStatus(ctx context.Context, id, rawStatus string) (*domain.User, error) {
	status := domain.UserStatus(rawStatus)
	if status != domain.UserStatusActive && status != domain.UserStatusDisabled {
		return nil, validationErr("status", "status must be active or disabled")
	}

	if _, err := s.GetModel(ctx, id); err != nil {
		return nil, err
	}

	if err := s.users.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update model status: %w", err)
	}

	return s.GetModel(ctx, id)
}

// DeleteModel removes a model account. The role guard in the repository keeps
// this from ever touching an admin row.
func (s *AdminService) DeleteModel(ctx context.Context, id string) error {
	if err := s.users.DeleteByRole(ctx, id, domain.RoleModel); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete model: %w", err)
	}
	return nil
}
