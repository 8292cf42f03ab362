package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/core/port"
	"github.com/arklim/casting-platform-api/internal/infra/config"
	"github.com/arklim/casting-platform-api/internal/infra/security"
	"github.com/arklim/casting-platform-api/internal/repository"
	"github.com/arklim/casting-platform-api/internal/transport/http/handlers"
	"github.com/arklim/casting-platform-api/internal/transport/http/middleware"
	"github.com/arklim/casting-platform-api/internal/usecase"
)

// memUserRepo is an in-memory credential store mirroring the lockout
// semantics of the Postgres implementation.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	r.users[user.ID] = &user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetAuthState(_ context.Context, id string) (*domain.AuthState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.AuthState{ID: u.ID, Role: u.Role, Status: u.Status}, nil
}

func (r *memUserRepo) IncrementLoginAttempts(_ context.Context, id string, maxAttempts int, lockFor time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	if u.LockUntil != nil && !u.LockUntil.After(now) {
		u.LoginAttempts = 0
		u.LockUntil = nil
	}
	u.LoginAttempts++
	if u.LoginAttempts >= maxAttempts {
		until := now.Add(lockFor)
		u.LockUntil = &until
	}
	return nil
}

func (r *memUserRepo) ResetLoginAttempts(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LoginAttempts = 0
	u.LockUntil = nil
	return nil
}

func (r *memUserRepo) UpdateStatus(_ context.Context, id string, status domain.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = status
	return nil
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id string, patch port.ProfilePatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Profile != nil {
		u.Profile = *patch.Profile
	}
	if patch.Progress != nil {
		u.Progress = *patch.Progress
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = patch.AvatarURL
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) ListByRole(_ context.Context, role domain.Role, status *domain.UserStatus) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if u.Role != role {
			continue
		}
		if status != nil && u.Status != *status {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *memUserRepo) DeleteByRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Role != role {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) FirstAdmin(_ context.Context) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first *domain.User
	for _, u := range r.users {
		if u.Role != domain.RoleAdmin {
			continue
		}
		if first == nil || u.CreatedAt.Before(first.CreatedAt) {
			first = u
		}
	}
	if first == nil {
		return nil, repository.ErrNotFound
	}
	clone := *first
	return &clone, nil
}

func (r *memUserRepo) CountByRole(_ context.Context, role domain.Role, status *domain.UserStatus) (int, error) {
	list, _ := r.ListByRole(context.Background(), role, status)
	return len(list), nil
}

var _ port.UserRepository = (*memUserRepo)(nil)

type authTestEnv struct {
	router *gin.Engine
	repo   *memUserRepo
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{
		App:     config.AppSettings{Env: "test"},
		Cookie:  config.CookieSettings{Name: "refresh", Path: "/"},
		Lockout: config.LockoutSettings{MaxAttempts: 5, LockDuration: 10 * time.Minute},
	}

	issuer, err := security.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("new token issuer: %v", err)
	}

	repo := newMemUserRepo()
	auth := usecase.NewAuthService(cfg, repo, issuer, zap.NewNop())

	cookie := handlers.NewRefreshCookie(cfg)
	authHandler := handlers.NewAuthHandler(auth, cookie)
	requireAuth := middleware.RequireAuth(auth)

	r := gin.New()
	r.POST("/api/auth/signup", authHandler.Signup)
	r.POST("/api/auth/login", authHandler.Login)
	r.POST("/api/auth/refresh", authHandler.Refresh)
	r.POST("/api/auth/logout", authHandler.Logout)
	r.GET("/api/auth/me", requireAuth, authHandler.Me)
	r.GET("/api/admin/only", requireAuth, middleware.RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return &authTestEnv{router: r, repo: repo}
}

func (e *authTestEnv) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *authTestEnv) signup(t *testing.T, email string) (token string, refreshCookie *http.Cookie) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/signup", gin.H{
		"name":     "Test User",
		"email":    email,
		"password": "Aa1!aaaa",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("signup: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh" {
			refreshCookie = c
		}
	}
	if refreshCookie == nil {
		t.Fatal("signup did not set refresh cookie")
	}
	return resp.Token, refreshCookie
}

func TestSignupLoginMeFlow(t *testing.T) {
	env := newAuthTestEnv(t)
	token, _ := env.signup(t, "flow@example.com")

	w := env.do(t, http.MethodGet, "/api/auth/me", nil, http.Header{
		"Authorization": []string{"Bearer " + token},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("me response leaked credential fields: %s", w.Body.String())
	}

	w = env.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "FLOW@example.com",
		"password": "Aa1!aaaa",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login with mixed-case email: expected 200, got %d", w.Code)
	}
}

func TestSignupWeakPasswordReturns400(t *testing.T) {
	env := newAuthTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/auth/signup", gin.H{
		"name":     "Test User",
		"email":    "weak@example.com",
		"password": "short",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLoginLockoutReturns423(t *testing.T) {
	env := newAuthTestEnv(t)
	env.signup(t, "locked@example.com")

	for i := 0; i < 5; i++ {
		w := env.do(t, http.MethodPost, "/api/auth/login", gin.H{
			"email":    "locked@example.com",
			"password": fmt.Sprintf("Wrong1!pass%d", i),
		}, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, w.Code)
		}
	}

	w := env.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "locked@example.com",
		"password": "Aa1!aaaa",
	}, nil)
	if w.Code != http.StatusLocked {
		t.Fatalf("expected 423 for locked account, got %d", w.Code)
	}
}

func TestRefreshMissingCookieReturns401(t *testing.T) {
	env := newAuthTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/auth/refresh", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRefreshTamperedCookieReturns401(t *testing.T) {
	env := newAuthTestEnv(t)
	env.signup(t, "tamper@example.com")

	w := env.do(t, http.MethodPost, "/api/auth/refresh", nil, http.Header{
		"Cookie": []string{"refresh=not-a-real-token"},
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRefreshRotatesCookie(t *testing.T) {
	env := newAuthTestEnv(t)
	_, cookie := env.signup(t, "rotate@example.com")

	w := env.do(t, http.MethodPost, "/api/auth/refresh", nil, http.Header{
		"Cookie": []string{cookie.Name + "=" + cookie.Value},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode refresh response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("refresh returned empty access token")
	}

	var rotated bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh" && c.Value != "" {
			rotated = true
		}
	}
	if !rotated {
		t.Fatal("refresh did not set a new refresh cookie")
	}
}

func TestDisabledAccountRejectedOnNextRequest(t *testing.T) {
	env := newAuthTestEnv(t)
	token, _ := env.signup(t, "disabled@example.com")

	user, err := env.repo.GetByEmail(context.Background(), "disabled@example.com")
	if err != nil {
		t.Fatalf("lookup user: %v", err)
	}
	if err := env.repo.UpdateStatus(context.Background(), user.ID, domain.UserStatusDisabled); err != nil {
		t.Fatalf("disable user: %v", err)
	}

	w := env.do(t, http.MethodGet, "/api/auth/me", nil, http.Header{
		"Authorization": []string{"Bearer " + token},
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for disabled account, got %d", w.Code)
	}
}

func TestAdminRouteForbiddenForClient(t *testing.T) {
	env := newAuthTestEnv(t)
	token, _ := env.signup(t, "client@example.com")

	w := env.do(t, http.MethodGet, "/api/admin/only", nil, http.Header{
		"Authorization": []string{"Bearer " + token},
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newAuthTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/auth/logout", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("logout did not clear the refresh cookie")
	}
}
