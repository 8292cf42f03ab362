package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/casting-platform-api/internal/core/domain"
)

var messageColumns = []string{
	"id",
	"from_id",
	"to_id",
	"body",
	"attachments",
	"read",
	"created_at",
}

// MessageRepository implements port.MessageRepository using PostgreSQL.
type MessageRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewMessageRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewMessageRepository(exec pgExecutor) *MessageRepository {
	repo := &MessageRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create persists a message and returns the stored row.
func (r *MessageRepository) Create(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	attachments := msg.Attachments
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	attachmentsJSON, err := json.Marshal(attachments)
	if err != nil {
		return nil, fmt.Errorf("marshal attachments: %w", err)
	}

	query := r.builder.Insert("casting.messages").
		Columns(messageColumns...).
		Values(
			msg.ID,
			msg.FromID,
			msg.ToID,
			msg.Body,
			attachmentsJSON,
			msg.Read,
			msg.CreatedAt,
		).
		Suffix("RETURNING " + strings.Join(messageColumns, ", "))

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert message sql: %w", err)
	}

	return scanMessageRow(r.exec.QueryRow(ctx, stmt, args...))
}

// Thread returns the conversation between two users, oldest first.
func (r *MessageRepository) Thread(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	query := r.builder.
		Select(messageColumns...).
		From("casting.messages").
		Where(squirrel.Or{
			squirrel.Eq{"from_id": userA, "to_id": userB},
			squirrel.Eq{"from_id": userB, "to_id": userA},
		}).
		OrderBy("created_at ASC")

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build thread sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query thread: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		msg, err := scanMessageRow(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate thread: %w", err)
	}

	return messages, nil
}

// CountUnread returns how many unread messages the user has.
func (r *MessageRepository) CountUnread(ctx context.Context, toID string) (int, error) {
	stmt, args, err := r.builder.
		Select("COUNT(*)").
		From("casting.messages").
		Where(squirrel.Eq{"to_id": toID, "read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count unread sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}

	return count, nil
}

// MarkRead flags every unread message from one user to another and reports
// how many rows changed.
func (r *MessageRepository) MarkRead(ctx context.Context, toID, fromID string) (int64, error) {
	query := r.builder.Update("casting.messages").
		Set("read", true).
		Where(squirrel.Eq{"to_id": toID, "from_id": fromID, "read": false})

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build mark read sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanMessageRow(row pgx.Row) (*domain.Message, error) {
	var (
		msg             domain.Message
		attachmentsJSON []byte
	)

	if err := row.Scan(
		&msg.ID,
		&msg.FromID,
		&msg.ToID,
		&msg.Body,
		&attachmentsJSON,
		&msg.Read,
		&msg.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}

	if len(attachmentsJSON) > 0 {
		if err := json.Unmarshal(attachmentsJSON, &msg.Attachments); err != nil {
			return nil, fmt.Errorf("unmarshal attachments: %w", err)
		}
	}

	return &msg, nil
}
