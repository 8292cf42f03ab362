package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/repository"
)

var castingColumns = []string{
	"id",
	"title",
	"description",
	"location",
	"pay",
	"requirements",
	"closes_at",
	"created_by",
	"status",
	"archived_at",
	"created_at",
	"updated_at",
}

// CastingRepository implements port.CastingRepository using PostgreSQL.
type CastingRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCastingRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewCastingRepository(exec pgExecutor) *CastingRepository {
	repo := &CastingRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a casting call and returns the stored row.
func (r *CastingRepository) Create(ctx context.Context, casting domain.Casting) (*domain.Casting, error) {
	query := r.builder.Insert("casting.castings").
		Columns(castingColumns...).
		Values(
			casting.ID,
			casting.Title,
			casting.Description,
			casting.Location,
			casting.Pay,
			casting.Requirements,
			casting.ClosesAt,
			casting.CreatedBy,
			casting.Status,
			casting.ArchivedAt,
			casting.CreatedAt,
			casting.UpdatedAt,
		).
		Suffix("RETURNING " + strings.Join(castingColumns, ", "))

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert casting sql: %w", err)
	}

	return r.scanCasting(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByID retrieves a casting by identifier.
func (r *CastingRepository) GetByID(ctx context.Context, id string) (*domain.Casting, error) {
	stmt, args, err := r.builder.
		Select(castingColumns...).
		From("casting.castings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select casting sql: %w", err)
	}

	return r.scanCasting(r.exec.QueryRow(ctx, stmt, args...))
}

// List returns castings newest first, optionally filtered by status.
func (r *CastingRepository) List(ctx context.Context, status *domain.CastingStatus) ([]domain.Casting, error) {
	query := r.builder.
		Select(castingColumns...).
		From("casting.castings").
		OrderBy("created_at DESC")

	if status != nil {
		query = query.Where(squirrel.Eq{"status": *status})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list castings sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list castings: %w", err)
	}
	defer rows.Close()

	var castings []domain.Casting
	for rows.Next() {
		casting, err := scanCastingRow(rows)
		if err != nil {
			return nil, err
		}
		castings = append(castings, *casting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate castings: %w", err)
	}

	return castings, nil
}

// UpdateStatus moves a casting to the given lifecycle state. Archiving stamps
// archived_at; any other transition clears it.
func (r *CastingRepository) UpdateStatus(ctx context.Context, id string, status domain.CastingStatus) (*domain.Casting, error) {
	query := r.builder.Update("casting.castings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(castingColumns, ", "))

	if status == domain.CastingStatusArchived {
		query = query.Set("archived_at", squirrel.Expr("now()"))
	} else {
		query = query.Set("archived_at", nil)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update casting status sql: %w", err)
	}

	return r.scanCasting(r.exec.QueryRow(ctx, stmt, args...))
}

// Delete removes a casting and, via cascade, its applications.
func (r *CastingRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.
		Delete("casting.castings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete casting sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete casting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CountByStatus counts castings in the given lifecycle state.
func (r *CastingRepository) CountByStatus(ctx context.Context, status domain.CastingStatus) (int, error) {
	stmt, args, err := r.builder.
		Select("COUNT(*)").
		From("casting.castings").
		Where(squirrel.Eq{"status": status}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count castings sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count castings: %w", err)
	}

	return count, nil
}

func (r *CastingRepository) scanCasting(row pgx.Row) (*domain.Casting, error) {
	casting, err := scanCastingRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return casting, nil
}

func scanCastingRow(row pgx.Row) (*domain.Casting, error) {
	var (
		casting    domain.Casting
		closesAt   sql.NullTime
		archivedAt sql.NullTime
	)

	if err := row.Scan(
		&casting.ID,
		&casting.Title,
		&casting.Description,
		&casting.Location,
		&casting.Pay,
		&casting.Requirements,
		&closesAt,
		&casting.CreatedBy,
		&casting.Status,
		&archivedAt,
		&casting.CreatedAt,
		&casting.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan casting: %w", err)
	}

	if closesAt.Valid {
		t := closesAt.Time
		casting.ClosesAt = &t
	}
	if archivedAt.Valid {
		t := archivedAt.Time
		casting.ArchivedAt = &t
	}

	return &casting, nil
}
