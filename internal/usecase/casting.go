package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/core/port"
	"github.com/arklim/casting-platform-api/internal/repository"
)

// CastingInput carries the fields accepted when publishing a casting call.
type CastingInput struct {
	Title        string
	Description  string
	Location     string
	Pay          string
	Requirements string
	ClosesAt     *time.Time
}

// CastingService manages the casting call lifecycle.
type CastingService struct {
	castings port.CastingRepository
}

// NewCastingService constructs a CastingService instance.
func NewCastingService(castings port.CastingRepository) *CastingService {
	return &CastingService{castings: castings}
}

// Create publishes a new casting call in the open state.
func (s *CastingService) Create(ctx context.Context, createdBy string, input CastingInput) (*domain.Casting, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationErr("title", "title is required")
	}

	now := time.Now().UTC()
	casting := domain.Casting{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		Location:     strings.TrimSpace(input.Location),
		Pay:          strings.TrimSpace(input.Pay),
		Requirements: strings.TrimSpace(input.Requirements),
		ClosesAt:     input.ClosesAt,
		CreatedBy:    createdBy,
		Status:       domain.CastingStatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.castings.Create(ctx, casting)
	if err != nil {
		return nil, fmt.Errorf("create casting: %w", err)
	}
	return created, nil
}

// Get returns a single casting.
func (s *CastingService) Get(ctx context.Context, id string) (*domain.Casting, error) {
	casting, err := s.castings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get casting: %w", err)
	}
	return casting, nil
}

// List returns castings, optionally filtered by the raw status query value.
func (s *CastingService) List(ctx context.Context, rawStatus string) ([]domain.Casting, error) {
	var status *domain.CastingStatus
	if rawStatus != "" {
		parsed := domain.CastingStatus(rawStatus)
		if !parsed.Valid() {
			return nil, validationErr("status", "status must be one of open, archived, closed")
		}
		status = &parsed
	}

	castings, err := s.castings.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list castings: %w", err)
	}
	return castings, nil
}

// UpdateStatus transitions a casting between open, archived and closed.
func (s *CastingService) UpdateStatus(ctx context.Context, id, rawStatus string) (*domain.Casting, error) {
	status := domain.CastingStatus(rawStatus)
	if !status.Valid() {
		return nil, validationErr("status", "status must be one of open, archived, closed")
	}

	casting, err := s.castings.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update casting status: %w", err)
	}
	return casting, nil
}

// Delete removes a casting and all of its applications.
func (s *CastingService) Delete(ctx context.Context, id string) error {
	if err := s.castings.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete casting: %w", err)
	}
	return nil
}
