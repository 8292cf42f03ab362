package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/core/port"
	"github.com/arklim/casting-platform-api/internal/infra/config"
	"github.com/arklim/casting-platform-api/internal/infra/logger"
	"github.com/arklim/casting-platform-api/internal/infra/security"
	"github.com/arklim/casting-platform-api/internal/repository"
)

var nameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z '\-]{1,49}$`)

// TokenPair bundles the two token classes issued on signup, login and refresh.
type TokenPair struct {
	Access  string
	Refresh string
}

// Identity is what the request authenticator attaches to the request context.
type Identity struct {
	ID   string
	Role domain.Role
}

// AuthService coordinates signup, login, token refresh and per-request
// authentication against the credential store.
type AuthService struct {
	cfg       *config.AppConfig
	users     port.UserRepository
	issuer    *security.TokenIssuer
	validator *security.PasswordValidator
	log       *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(cfg *config.AppConfig, users port.UserRepository, issuer *security.TokenIssuer, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		cfg:       cfg,
		users:     users,
		issuer:    issuer,
		validator: security.DefaultPasswordValidator(),
		log:       log,
	}
}

// Signup registers a new account. A requested admin role is silently clamped
// to client; only seeding creates admins.
func (s *AuthService) Signup(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, *TokenPair, error) {
	name = strings.TrimSpace(name)
	if !nameRe.MatchString(name) {
		return nil, nil, validationErr("name", "name must start with a letter and contain only letters, spaces, apostrophes or hyphens (2-50 characters)")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, validationErr("email", "invalid email address")
	}

	if err := s.validator.Validate(password); err != nil {
		var vErr *security.PasswordValidationError
		if errors.As(err, &vErr) {
			return nil, nil, validationErr("password", vErr.Message)
		}
		return nil, nil, fmt.Errorf("validate password: %w", err)
	}

	if role != domain.RoleModel {
		role = domain.RoleClient
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.issueTokens(user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
		zap.String("role", string(user.Role)),
	)

	return &user, pair, nil
}

// Login verifies credentials and issues a token pair. Failed attempts feed the
// lockout counter; a failure to record the attempt never hides the credential
// rejection from the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	now := time.Now().UTC()
	if user.IsLocked(now) {
		return nil, nil, ErrAccountLocked
	}
	if user.IsDisabled() {
		return nil, nil, ErrAccountDisabled
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		if incErr := s.users.IncrementLoginAttempts(ctx, user.ID, s.cfg.Lockout.MaxAttempts, s.cfg.Lockout.LockDuration); incErr != nil {
			s.log.Error("record failed login attempt",
				zap.String("user_id", user.ID),
				zap.Error(incErr),
			)
		}
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.users.ResetLoginAttempts(ctx, user.ID); err != nil {
		return nil, nil, fmt.Errorf("reset login attempts: %w", err)
	}

	pair, err := s.issueTokens(user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Refresh validates a refresh token, rechecks the account and issues a fresh
// pair. The old refresh token is not revoked; it simply ages out.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	claims, err := s.issuer.ParseRefresh(rawRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	subject := claims.SubjectID()
	if subject == "" {
		return nil, ErrInvalidToken
	}

	state, err := s.users.GetAuthState(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup auth state: %w", err)
	}

	if !statusActive(state.Status) {
		return nil, ErrAccountDisabled
	}

	return s.issueTokens(state.ID, state.Role)
}

// Identify resolves a bearer access token into a live identity. The account
// state is re-read from the store on every call so a disable or delete takes
// effect on the next request.
func (s *AuthService) Identify(ctx context.Context, rawAccess string) (*Identity, error) {
	claims, err := s.issuer.ParseAccess(rawAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}

	subject := claims.SubjectID()
	if subject == "" {
		return nil, ErrInvalidToken
	}

	state, err := s.users.GetAuthState(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup auth state: %w", err)
	}

	if !statusActive(state.Status) {
		return nil, ErrAccountDisabled
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		role = state.Role
	}

	return &Identity{ID: state.ID, Role: role}, nil
}

// CurrentUser loads the full account for /auth/me style endpoints.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// SeedAdmin creates the configured admin account when no admin exists yet.
func (s *AuthService) SeedAdmin(ctx context.Context) error {
	if s.cfg.Admin.Email == "" || s.cfg.Admin.Password == "" {
		s.log.Info("admin seeding skipped: no admin credentials configured")
		return nil
	}

	if _, err := s.users.FirstAdmin(ctx); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := security.HashPassword(s.cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := domain.User{
		ID:           uuid.NewString(),
		Name:         s.cfg.Admin.Name,
		Email:        strings.ToLower(strings.TrimSpace(s.cfg.Admin.Email)),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}

	s.log.Info("admin account seeded",
		zap.String("email", logger.MaskEmail(admin.Email)),
	)

	return nil
}

// RefreshTTL exposes the refresh token lifetime for cookie expiry.
func (s *AuthService) RefreshTTL() time.Duration {
	return s.issuer.RefreshTTL()
}

func (s *AuthService) issueTokens(userID string, role domain.Role) (*TokenPair, error) {
	access, err := s.issuer.IssueAccess(userID, role)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.issuer.IssueRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func statusActive(status domain.UserStatus) bool {
	return strings.EqualFold(string(status), string(domain.UserStatusActive))
}
