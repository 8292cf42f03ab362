package port

import (
	"context"
	"time"

	"github.com/arklim/casting-platform-api/internal/core/domain"
)

// ProfilePatch carries the fields a user may change on their own account.
// Nil fields are left untouched.
type ProfilePatch struct {
	Name      *string
	Profile   *domain.Profile
	Progress  *domain.Progress
	AvatarURL *string
}

// UserRepository exposes persistence behavior for user accounts.
//
// IncrementLoginAttempts must be atomic with respect to the stored counter:
// the expired-lock reset, the increment and the conditional lock set happen in
// a single statement at the store, never as an in-process read-modify-write.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetAuthState(ctx context.Context, id string) (*domain.AuthState, error)
	IncrementLoginAttempts(ctx context.Context, id string, maxAttempts int, lockFor time.Duration) error
	ResetLoginAttempts(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role, status *domain.UserStatus) ([]domain.User, error)
	DeleteByRole(ctx context.Context, id string, role domain.Role) error
	FirstAdmin(ctx context.Context) (*domain.User, error)
	CountByRole(ctx context.Context, role domain.Role, status *domain.UserStatus) (int, error)
}
