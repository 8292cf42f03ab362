package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/core/port"
	"github.com/arklim/casting-platform-api/internal/infra/config"
	"github.com/arklim/casting-platform-api/internal/infra/security"
	"github.com/arklim/casting-platform-api/internal/repository"
)

type stubUserRepo struct {
	users map[string]*domain.User

	incrementErr error
	maxAttempts  int
	lockFor      time.Duration
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*domain.User{}}
}

func (r *stubUserRepo) Create(_ context.Context, user domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	copied := user
	r.users[user.ID] = &copied
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetAuthState(_ context.Context, id string) (*domain.AuthState, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.AuthState{ID: user.ID, Role: user.Role, Status: user.Status}, nil
}

func (r *stubUserRepo) IncrementLoginAttempts(_ context.Context, id string, maxAttempts int, lockFor time.Duration) error {
	if r.incrementErr != nil {
		return r.incrementErr
	}
	r.maxAttempts = maxAttempts
	r.lockFor = lockFor

	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}

	now := time.Now().UTC()
	if user.LockUntil != nil && !user.LockUntil.After(now) {
		user.LoginAttempts = 0
		user.LockUntil = nil
	}
	user.LoginAttempts++
	if user.LoginAttempts >= maxAttempts {
		until := now.Add(lockFor)
		user.LockUntil = &until
	}
	return nil
}

func (r *stubUserRepo) ResetLoginAttempts(_ context.Context, id string) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.LoginAttempts = 0
	user.LockUntil = nil
	return nil
}

func (r *stubUserRepo) UpdateStatus(_ context.Context, id string, status domain.UserStatus) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Status = status
	return nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, patch port.ProfilePatch) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Profile != nil {
		user.Profile = *patch.Profile
	}
	if patch.Progress != nil {
		user.Progress = *patch.Progress
	}
	if patch.AvatarURL != nil {
		user.AvatarURL = patch.AvatarURL
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) ListByRole(_ context.Context, role domain.Role, status *domain.UserStatus) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		if user.Role != role {
			continue
		}
		if status != nil && user.Status != *status {
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

func (r *stubUserRepo) DeleteByRole(_ context.Context, id string, role domain.Role) error {
	user, ok := r.users[id]
	if !ok || user.Role != role {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) FirstAdmin(_ context.Context) (*domain.User, error) {
	var admin *domain.User
	for _, user := range r.users {
		if user.Role != domain.RoleAdmin {
			continue
		}
		if admin == nil || user.CreatedAt.Before(admin.CreatedAt) {
			admin = user
		}
	}
	if admin == nil {
		return nil, repository.ErrNotFound
	}
	copied := *admin
	return &copied, nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, role domain.Role, status *domain.UserStatus) (int, error) {
	users, _ := r.ListByRole(context.Background(), role, status)
	return len(users), nil
}

var _ port.UserRepository = (*stubUserRepo)(nil)

func newTestAuthService(t *testing.T, repo *stubUserRepo) *AuthService {
	t.Helper()

	cfg := &config.AppConfig{}
	cfg.App.Env = "test"
	cfg.Lockout.MaxAttempts = 5
	cfg.Lockout.LockDuration = 10 * time.Minute

	issuer, err := security.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	return NewAuthService(cfg, repo, issuer, zap.NewNop())
}

func TestSignupClampsAdminRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	user, pair, err := svc.Signup(context.Background(), "Eva Green", "eva@example.com", "Aa1!aaaa", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.Role != domain.RoleClient {
		t.Fatalf("expected admin request clamped to client, got %s", user.Role)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("expected both tokens issued")
	}
}

func TestSignupKeepsModelRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	user, _, err := svc.Signup(context.Background(), "Mia Wallace", "mia@example.com", "Aa1!aaaa", domain.RoleModel)
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.Role != domain.RoleModel {
		t.Fatalf("expected model role kept, got %s", user.Role)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	if _, _, err := svc.Signup(context.Background(), "Eva Green", "eva@example.com", "Aa1!aaaa", domain.RoleClient); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	if _, _, err := svc.Signup(context.Background(), "Eva Two", "Eva@Example.com", "Aa1!aaaa", domain.RoleClient); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignupWeakPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	_, _, err := svc.Signup(context.Background(), "Eva Green", "eva@example.com", "aa1!aaaa", domain.RoleClient)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "password" {
		t.Fatalf("expected password field violation, got %v", err)
	}
}

func signupActiveUser(t *testing.T, svc *AuthService, email string) *domain.User {
	t.Helper()
	user, _, err := svc.Signup(context.Background(), "Test User", email, "Aa1!aaaa", domain.RoleClient)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	return user
}

func TestLoginSuccessResetsAttempts(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)
	user := signupActiveUser(t, svc, "eva@example.com")

	// Two failures then a success.
	for i := 0; i < 2; i++ {
		if _, _, err := svc.Login(context.Background(), "eva@example.com", "Wrong1!aa"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if repo.users[user.ID].LoginAttempts != 2 {
		t.Fatalf("expected 2 recorded attempts, got %d", repo.users[user.ID].LoginAttempts)
	}

	if _, _, err := svc.Login(context.Background(), "eva@example.com", "Aa1!aaaa"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if repo.users[user.ID].LoginAttempts != 0 {
		t.Fatalf("expected attempts reset, got %d", repo.users[user.ID].LoginAttempts)
	}
	if repo.users[user.ID].LockUntil != nil {
		t.Fatal("expected lock cleared after successful login")
	}
}

func TestLoginLockoutAfterFiveFailures(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)
	user := signupActiveUser(t, svc, "eva@example.com")

	for i := 0; i < 5; i++ {
		if _, _, err := svc.Login(context.Background(), "eva@example.com", "Wrong1!aa"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
	if repo.users[user.ID].LockUntil == nil {
		t.Fatal("expected account locked after five failures")
	}

	// Even the correct password is rejected while the lock holds.
	if _, _, err := svc.Login(context.Background(), "eva@example.com", "Aa1!aaaa"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
}

func TestLoginExpiredLockAdmitsAndResets(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)
	user := signupActiveUser(t, svc, "eva@example.com")

	past := time.Now().UTC().Add(-time.Minute)
	repo.users[user.ID].LoginAttempts = 5
	repo.users[user.ID].LockUntil = &past

	if _, _, err := svc.Login(context.Background(), "eva@example.com", "Aa1!aaaa"); err != nil {
		t.Fatalf("expected login after lock expiry, got %v", err)
	}
	if repo.users[user.ID].LoginAttempts != 0 {
		t.Fatal("expected attempts reset after expired-lock login")
	}
}

func TestLoginIncrementFailureDoesNotMaskRejection(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)
	signupActiveUser(t, svc, "eva@example.com")

	repo.incrementErr = errors.New("store down")

	if _, _, err := svc.Login(context.Background(), "eva@example.com", "Wrong1!aa"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials despite increment failure, got %v", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)
	user := signupActiveUser(t, svc, "eva@example.com")

	repo.users[user.ID].Status = domain.UserStatusDisabled

	if _, _, err := svc.Login(context.Background(), "eva@example.com", "Aa1!aaaa"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)

	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "Aa1!aaaa"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshRotationKeepsOldTokenValid(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)
	signupActiveUser(t, svc, "eva@example.com")

	_, pair, err := svc.Login(context.Background(), "eva@example.com", "Aa1!aaaa")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := svc.Refresh(context.Background(), pair.Refresh)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if rotated.Access == "" || rotated.Refresh == "" {
		t.Fatal("expected a fresh token pair")
	}

	// Rotation does not revoke the previous refresh token.
	if _, err := svc.Refresh(context.Background(), pair.Refresh); err != nil {
		t.Fatalf("expected old refresh token to stay valid, got %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)
	signupActiveUser(t, svc, "eva@example.com")

	_, pair, err := svc.Login(context.Background(), "eva@example.com", "Aa1!aaaa")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), pair.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for access token, got %v", err)
	}
}

func TestRefreshDisabledAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)
	user := signupActiveUser(t, svc, "eva@example.com")

	_, pair, err := svc.Login(context.Background(), "eva@example.com", "Aa1!aaaa")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	repo.users[user.ID].Status = domain.UserStatusDisabled

	if _, err := svc.Refresh(context.Background(), pair.Refresh); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestIdentifyDisableTakesEffectNextRequest(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)
	user := signupActiveUser(t, svc, "eva@example.com")

	_, pair, err := svc.Login(context.Background(), "eva@example.com", "Aa1!aaaa")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	identity, err := svc.Identify(context.Background(), pair.Access)
	if err != nil {
		t.Fatalf("Identify returned error: %v", err)
	}
	if identity.ID != user.ID {
		t.Fatalf("expected identity for %s, got %s", user.ID, identity.ID)
	}

	// Disabling the account invalidates the still-unexpired access token on
	// the very next request.
	repo.users[user.ID].Status = domain.UserStatusDisabled
	if _, err := svc.Identify(context.Background(), pair.Access); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}

	// A deleted account turns the same token into a 401-class failure.
	delete(repo.users, user.ID)
	if _, err := svc.Identify(context.Background(), pair.Access); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeedAdminIdempotent(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(t, repo)
	svc.cfg.Admin.Name = "Platform Admin"
	svc.cfg.Admin.Email = "admin@example.com"
	svc.cfg.Admin.Password = "Aa1!aaaa"

	if err := svc.SeedAdmin(context.Background()); err != nil {
		t.Fatalf("SeedAdmin returned error: %v", err)
	}
	if err := svc.SeedAdmin(context.Background()); err != nil {
		t.Fatalf("second SeedAdmin returned error: %v", err)
	}

	count, _ := repo.CountByRole(context.Background(), domain.RoleAdmin, nil)
	if count != 1 {
		t.Fatalf("expected exactly one admin, got %d", count)
	}
}
