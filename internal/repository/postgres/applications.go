package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/core/port"
	"github.com/arklim/casting-platform-api/internal/repository"
)

const applicationColumns = "a.id, a.casting_id, a.model_id, a.note, a.status, a.created_at, a.updated_at"

// ApplicationRepository implements port.ApplicationRepository using PostgreSQL.
type ApplicationRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewApplicationRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewApplicationRepository(exec pgExecutor) *ApplicationRepository {
	repo := &ApplicationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Upsert records an application, reusing the existing row when the model has
// already applied to the casting. A repeat apply refreshes the note and drops
// the row back to pending.
func (r *ApplicationRepository) Upsert(ctx context.Context, castingID, modelID, note string) (*domain.Application, error) {
	query := r.builder.Insert("casting.applications AS a").
		Columns("id", "casting_id", "model_id", "note", "status", "created_at", "updated_at").
		Values(
			squirrel.Expr("gen_random_uuid()"),
			castingID,
			modelID,
			note,
			domain.ApplicationStatusPending,
			squirrel.Expr("now()"),
			squirrel.Expr("now()"),
		).
		Suffix("ON CONFLICT (casting_id, model_id) DO UPDATE SET" +
			" note = EXCLUDED.note, status = 'pending', updated_at = now()" +
			" RETURNING " + applicationColumns)

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert application sql: %w", err)
	}

	app, err := scanApplicationRow(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}
	return app, nil
}

// List returns applications newest first with their casting and applicant
// projections populated.
func (r *ApplicationRepository) List(ctx context.Context, filter port.ApplicationFilter) ([]domain.Application, error) {
	query := r.builder.
		Select(applicationColumns,
			"c.id", "c.title", "c.location", "c.closes_at",
			"u.id", "u.name", "u.email", "u.profile",
		).
		From("casting.applications a").
		Join("casting.castings c ON c.id = a.casting_id").
		Join("casting.users u ON u.id = a.model_id").
		OrderBy("a.created_at DESC")

	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"a.status": *filter.Status})
	}
	if filter.ModelID != nil {
		query = query.Where(squirrel.Eq{"a.model_id": *filter.ModelID})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list applications sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		var (
			app         domain.Application
			casting     domain.CastingSummary
			closesAt    sql.NullTime
			model       domain.ApplicantSummary
			profileJSON []byte
		)

		if err := rows.Scan(
			&app.ID,
			&app.CastingID,
			&app.ModelID,
			&app.Note,
			&app.Status,
			&app.CreatedAt,
			&app.UpdatedAt,
			&casting.ID,
			&casting.Title,
			&casting.Location,
			&closesAt,
			&model.ID,
			&model.Name,
			&model.Email,
			&profileJSON,
		); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}

		if closesAt.Valid {
			t := closesAt.Time
			casting.ClosesAt = &t
		}
		if len(profileJSON) > 0 {
			if err := json.Unmarshal(profileJSON, &model.Profile); err != nil {
				return nil, fmt.Errorf("unmarshal applicant profile: %w", err)
			}
		}

		app.Casting = &casting
		app.Model = &model
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}

	return apps, nil
}

// UpdateStatus moves an application into a review state.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	query := r.builder.Update("casting.applications AS a").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"a.id": id}).
		Suffix("RETURNING " + applicationColumns)

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update application status sql: %w", err)
	}

	app, err := scanApplicationRow(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

// Count returns the total number of applications.
func (r *ApplicationRepository) Count(ctx context.Context) (int, error) {
	stmt, args, err := r.builder.
		Select("COUNT(*)").
		From("casting.applications").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count applications sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}

	return count, nil
}

func scanApplicationRow(row pgx.Row) (*domain.Application, error) {
	var app domain.Application
	if err := row.Scan(
		&app.ID,
		&app.CastingID,
		&app.ModelID,
		&app.Note,
		&app.Status,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	return &app, nil
}
