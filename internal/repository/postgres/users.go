package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/core/port"
	"github.com/arklim/casting-platform-api/internal/repository"
)

var userColumns = []string{
	"id",
	"name",
	"email",
	"password_hash",
	"role",
	"status",
	"login_attempts",
	"lock_until",
	"token_version",
	"avatar_url",
	"profile",
	"progress",
	"created_at",
	"updated_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	repo := &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new user row. A duplicate email maps to repository.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	profileJSON, err := json.Marshal(user.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	progressJSON, err := json.Marshal(user.Progress)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	var avatarValue any
	if user.AvatarURL != nil && *user.AvatarURL != "" {
		avatarValue = *user.AvatarURL
	}

	query := r.builder.Insert("casting.users").
		Columns(userColumns...).
		Values(
			user.ID,
			user.Name,
			user.Email,
			user.PasswordHash,
			user.Role,
			user.Status,
			user.LoginAttempts,
			user.LockUntil,
			user.TokenVersion,
			avatarValue,
			profileJSON,
			progressJSON,
			user.CreatedAt,
			user.UpdatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("casting.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByEmail retrieves a user by email. The lookup is case-insensitive.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("casting.users").
		Where(squirrel.Expr("lower(email) = lower(?)", email)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// GetAuthState reads the minimal identity projection used on every
// authenticated request.
func (r *UserRepository) GetAuthState(ctx context.Context, id string) (*domain.AuthState, error) {
	stmt, args, err := r.builder.
		Select("id", "role", "status").
		From("casting.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select auth state sql: %w", err)
	}

	var state domain.AuthState
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&state.ID, &state.Role, &state.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select auth state: %w", err)
	}

	return &state, nil
}

// IncrementLoginAttempts registers a failed login in one statement: an expired
// lock resets the counter, the counter advances, and the lock engages when the
// new counter reaches maxAttempts. Concurrent failures can never lose an
// increment because the arithmetic runs at the store.
func (r *UserRepository) IncrementLoginAttempts(ctx context.Context, id string, maxAttempts int, lockFor time.Duration) error {
	const attemptsExpr = "CASE WHEN lock_until IS NOT NULL AND lock_until <= now() THEN 1 ELSE login_attempts + 1 END"

	query := r.builder.Update("casting.users").
		Set("login_attempts", squirrel.Expr(attemptsExpr)).
		Set("lock_until", squirrel.Expr(
			"CASE WHEN ("+attemptsExpr+") >= ? THEN now() + (? * interval '1 second')"+
				" WHEN lock_until IS NOT NULL AND lock_until <= now() THEN NULL"+
				" ELSE lock_until END",
			maxAttempts, int64(lockFor.Seconds()))).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build increment login attempts sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("increment login attempts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ResetLoginAttempts clears the failure counter and any lock after a successful login.
func (r *UserRepository) ResetLoginAttempts(ctx context.Context, id string) error {
	query := r.builder.Update("casting.users").
		Set("login_attempts", 0).
		Set("lock_until", nil).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build reset login attempts sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}

	return nil
}

// UpdateStatus switches an account between active and disabled.
func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	query := r.builder.Update("casting.users").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build update status sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateProfile applies the non-nil fields of the patch and returns the updated row.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch port.ProfilePatch) (*domain.User, error) {
	query := r.builder.Update("casting.users").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", "))

	if patch.Name != nil {
		query = query.Set("name", *patch.Name)
	}
	if patch.Profile != nil {
		profileJSON, err := json.Marshal(patch.Profile)
		if err != nil {
			return nil, fmt.Errorf("marshal profile: %w", err)
		}
		query = query.Set("profile", profileJSON)
	}
	if patch.Progress != nil {
		progressJSON, err := json.Marshal(patch.Progress)
		if err != nil {
			return nil, fmt.Errorf("marshal progress: %w", err)
		}
		query = query.Set("progress", progressJSON)
	}
	if patch.AvatarURL != nil {
		query = query.Set("avatar_url", *patch.AvatarURL)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update profile sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// ListByRole returns users with the given role, optionally filtered by status.
func (r *UserRepository) ListByRole(ctx context.Context, role domain.Role, status *domain.UserStatus) ([]domain.User, error) {
	query := r.builder.
		Select(userColumns...).
		From("casting.users").
		Where(squirrel.Eq{"role": role}).
		OrderBy("created_at DESC")

	if status != nil {
		query = query.Where(squirrel.Eq{"status": *status})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// DeleteByRole removes a user only when it holds the expected role. The role
// guard keeps admin accounts out of reach of the model management endpoints.
func (r *UserRepository) DeleteByRole(ctx context.Context, id string, role domain.Role) error {
	stmt, args, err := r.builder.
		Delete("casting.users").
		Where(squirrel.Eq{"id": id, "role": role}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// FirstAdmin returns the oldest admin account.
func (r *UserRepository) FirstAdmin(ctx context.Context) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("casting.users").
		Where(squirrel.Eq{"role": domain.RoleAdmin}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select admin sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// CountByRole counts users with the given role, optionally filtered by status.
func (r *UserRepository) CountByRole(ctx context.Context, role domain.Role, status *domain.UserStatus) (int, error) {
	query := r.builder.
		Select("COUNT(*)").
		From("casting.users").
		Where(squirrel.Eq{"role": role})

	if status != nil {
		query = query.Where(squirrel.Eq{"status": *status})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count users sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	user, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUserRow(row pgx.Row) (*domain.User, error) {
	var (
		user         domain.User
		lockUntil    sql.NullTime
		avatarURL    sql.NullString
		profileJSON  []byte
		progressJSON []byte
	)

	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.LoginAttempts,
		&lockUntil,
		&user.TokenVersion,
		&avatarURL,
		&profileJSON,
		&progressJSON,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if lockUntil.Valid {
		t := lockUntil.Time
		user.LockUntil = &t
	}
	if avatarURL.Valid {
		user.AvatarURL = &avatarURL.String
	}
	if len(profileJSON) > 0 {
		if err := json.Unmarshal(profileJSON, &user.Profile); err != nil {
			return nil, fmt.Errorf("unmarshal profile: %w", err)
		}
	}
	if len(progressJSON) > 0 {
		if err := json.Unmarshal(progressJSON, &user.Progress); err != nil {
			return nil, fmt.Errorf("unmarshal progress: %w", err)
		}
	}

	return &user, nil
}
