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

const recentApplicationsLimit = 50

// ApplicationService manages casting applications.
type ApplicationService struct {
	applications port.ApplicationRepository
	castings     port.CastingRepository
}

// NewApplicationService constructs an ApplicationService instance.
func NewApplicationService(applications port.ApplicationRepository, castings port.CastingRepository) *ApplicationService {
	return &ApplicationService{applications: applications, castings: castings}
}

// Apply submits an application for an open casting. Re-applying to the same
// casting updates the note and resets the review state instead of failing.
func (s *ApplicationService) Apply(ctx context.Context, castingID, modelID, note string) (*domain.Application, error) {
	if strings.TrimSpace(castingID) == "" {
		return nil, validationErr("casting_id", "casting_id is required")
	}

	casting, err := s.castings.GetByID(ctx, castingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get casting: %w", err)
	}
	if !casting.AcceptsApplications() {
		return nil, ErrCastingClosed
	}

	app, err := s.applications.Upsert(ctx, castingID, modelID, strings.TrimSpace(note))
	if err != nil {
		return nil, fmt.Errorf("upsert application: %w", err)
	}
	return app, nil
}

// ListForModel returns a model's own applications, optionally filtered by status.
func (s *ApplicationService) ListForModel(ctx context.Context, modelID, rawStatus string) ([]domain.Application, error) {
	filter := port.ApplicationFilter{ModelID: &modelID}
	if err := applyStatusFilter(&filter, rawStatus); err != nil {
		return nil, err
	}

	apps, err := s.applications.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// ListAll returns every application, optionally filtered by status.
func (s *ApplicationService) ListAll(ctx context.Context, rawStatus string) ([]domain.Application, error) {
	var filter port.ApplicationFilter
	if err := applyStatusFilter(&filter, rawStatus); err != nil {
		return nil, err
	}

	apps, err := s.applications.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// Recent returns the newest applications for the admin dashboard.
func (s *ApplicationService) Recent(ctx context.Context) ([]domain.Application, error) {
	apps, err := s.applications.List(ctx, port.ApplicationFilter{Limit: recentApplicationsLimit})
	if err != nil {
		return nil, fmt.Errorf("list recent applications: %w", err)
	}
	return apps, nil
}

// Review moves an application into one of the admin review states.
func (s *ApplicationService) Review(ctx context.Context, id, rawStatus string) (*domain.Application, error) {
	status := domain.ApplicationStatus(rawStatus)
	allowed := false
	for _, candidate := range domain.ReviewStatuses {
		if status == candidate {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, validationErr("status", "status must be one of reviewed, shortlisted, accepted, rejected")
	}

	app, err := s.applications.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update application status: %w", err)
	}
	return app, nil
}

func applyStatusFilter(filter *port.ApplicationFilter, rawStatus string) error {
	if rawStatus == "" {
		return nil
	}
	status := domain.ApplicationStatus(rawStatus)
	switch status {
	case domain.ApplicationStatusPending,
		domain.ApplicationStatusReviewed,
		domain.ApplicationStatusShortlisted,
		domain.ApplicationStatusAccepted,
		domain.ApplicationStatusRejected:
		filter.Status = &status
		return nil
	}
	return validationErr("status", "unknown application status")
}
