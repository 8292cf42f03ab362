package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/core/port"
	"github.com/arklim/casting-platform-api/internal/infra/config"
	"github.com/arklim/casting-platform-api/internal/infra/security"
	"github.com/arklim/casting-platform-api/internal/repository"
	httproutes "github.com/arklim/casting-platform-api/internal/transport/http/routes"
	"github.com/arklim/casting-platform-api/internal/usecase"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	cfg := &config.AppConfig{App: config.AppSettings{Env: "test"}}

	return httproutes.Register(httproutes.Dependencies{
		Config: cfg,
		Logger: logger,
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestEngine()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestReadinessWithoutCheckersSucceeds(t *testing.T) {
	r := newTestEngine()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/readyz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	r := newTestEngine()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/profile/me", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

// fixedStateRepo serves a single auth state so role gating can be exercised
// through the real middleware chain.
type fixedStateRepo struct {
	state *domain.AuthState
}

func (r *fixedStateRepo) Create(context.Context, domain.User) error { return nil }
func (r *fixedStateRepo) GetByID(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}
func (r *fixedStateRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}
func (r *fixedStateRepo) GetAuthState(_ context.Context, id string) (*domain.AuthState, error) {
	if r.state == nil || r.state.ID != id {
		return nil, repository.ErrNotFound
	}
	return r.state, nil
}
func (r *fixedStateRepo) IncrementLoginAttempts(context.Context, string, int, time.Duration) error {
	return nil
}
func (r *fixedStateRepo) ResetLoginAttempts(context.Context, string) error { return nil }
func (r *fixedStateRepo) UpdateStatus(context.Context, string, domain.UserStatus) error {
	return nil
}
func (r *fixedStateRepo) UpdateProfile(context.Context, string, port.ProfilePatch) (*domain.User, error) {
	return nil, repository.ErrNotFound
}
func (r *fixedStateRepo) ListByRole(context.Context, domain.Role, *domain.UserStatus) ([]domain.User, error) {
	return nil, nil
}
func (r *fixedStateRepo) DeleteByRole(context.Context, string, domain.Role) error {
	return repository.ErrNotFound
}
func (r *fixedStateRepo) FirstAdmin(context.Context) (*domain.User, error) {
	return nil, repository.ErrNotFound
}
func (r *fixedStateRepo) CountByRole(context.Context, domain.Role, *domain.UserStatus) (int, error) {
	return 0, nil
}

var _ port.UserRepository = (*fixedStateRepo)(nil)

func TestApplyRouteRejectsNonModelRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	issuer, err := security.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new token issuer: %v", err)
	}

	cfg := &config.AppConfig{
		App:    config.AppSettings{Env: "test"},
		Cookie: config.CookieSettings{Name: "refresh"},
	}

	for _, role := range []domain.Role{domain.RoleClient, domain.RoleAdmin} {
		repo := &fixedStateRepo{state: &domain.AuthState{
			ID:     "caller-1",
			Role:   role,
			Status: domain.UserStatusActive,
		}}
		auth := usecase.NewAuthService(cfg, repo, issuer, zap.NewNop())

		r := httproutes.Register(httproutes.Dependencies{
			Config:   cfg,
			Logger:   zap.NewNop(),
			Services: httproutes.ServiceSet{Auth: auth},
		})

		token, err := issuer.IssueAccess("caller-1", role)
		if err != nil {
			t.Fatalf("issue access token: %v", err)
		}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/applications", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("role %s: expected 403, got %d", role, w.Code)
		}
	}
}

func TestMetricsEndpointMounted(t *testing.T) {
	r := newTestEngine()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}
