package port

import (
	"context"

	"github.com/arklim/casting-platform-api/internal/core/domain"
)

// ApplicationFilter narrows application listings.
type ApplicationFilter struct {
	Status  *domain.ApplicationStatus
	ModelID *string
	Limit   int
}

// ApplicationRepository exposes persistence behavior for casting applications.
//
// Upsert enforces the one-application-per-(casting, model) rule: a repeat apply
// returns the existing row reset to pending rather than a duplicate.
type ApplicationRepository interface {
	Upsert(ctx context.Context, castingID, modelID, note string) (*domain.Application, error)
	List(ctx context.Context, filter ApplicationFilter) ([]domain.Application, error)
	UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error)
	Count(ctx context.Context) (int, error)
}
