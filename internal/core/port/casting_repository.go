package port

import (
	"context"

	"github.com/arklim/casting-platform-api/internal/core/domain"
)

// CastingRepository exposes persistence behavior for casting calls.
type CastingRepository interface {
	Create(ctx context.Context, casting domain.Casting) (*domain.Casting, error)
	GetByID(ctx context.Context, id string) (*domain.Casting, error)
	List(ctx context.Context, status *domain.CastingStatus) ([]domain.Casting, error)
	UpdateStatus(ctx context.Context, id string, status domain.CastingStatus) (*domain.Casting, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status domain.CastingStatus) (int, error)
}
