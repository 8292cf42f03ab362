package port

import (
	"context"

	"github.com/arklim/casting-platform-api/internal/core/domain"
)

// MessageRepository exposes persistence behavior for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, msg domain.Message) (*domain.Message, error)
	Thread(ctx context.Context, userA, userB string) ([]domain.Message, error)
	CountUnread(ctx context.Context, toID string) (int, error)
	MarkRead(ctx context.Context, toID, fromID string) (int64, error)
}
