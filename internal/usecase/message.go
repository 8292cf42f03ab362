package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/arklim/casting-platform-api/internal/core/domain"
	"github.com/arklim/casting-platform-api/internal/core/port"
	"github.com/arklim/casting-platform-api/internal/repository"
)

// MessageService implements direct messaging under the platform routing
// policy: every non-admin conversation goes through the admin account.
type MessageService struct {
	messages port.MessageRepository
	admins   port.AdminDirectory
}

// NewMessageService constructs a MessageService instance.
func NewMessageService(messages port.MessageRepository, admins port.AdminDirectory) *MessageService {
	return &MessageService{messages: messages, admins: admins}
}

// Send delivers a message. Non-admin senders may only address the admin; an
// empty recipient from a non-admin is routed to the admin automatically.
func (s *MessageService) Send(ctx context.Context, sender Identity, toID, body string, attachments []domain.Attachment) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" && len(attachments) == 0 {
		return nil, validationErr("body", "message requires a body or attachments")
	}

	if sender.Role != domain.RoleAdmin {
		adminID, err := s.primaryAdmin(ctx)
		if err != nil {
			return nil, err
		}
		if toID == "" {
			toID = adminID
		} else if toID != adminID {
			return nil, ErrRecipientNotAllowed
		}
	} else if strings.TrimSpace(toID) == "" {
		return nil, validationErr("to", "recipient is required")
	}

	if toID == sender.ID {
		return nil, validationErr("to", "cannot message yourself")
	}

	msg := domain.Message{
		ID:          uuid.NewString(),
		FromID:      sender.ID,
		ToID:        toID,
		Body:        body,
		Attachments: attachments,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.messages.Create(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return created, nil
}

// Thread returns the conversation between the caller and another user.
// Non-admins can only read their thread with the admin.
func (s *MessageService) Thread(ctx context.Context, caller Identity, withUser string) ([]domain.Message, error) {
	if sErr := s.checkCounterpart(ctx, caller, withUser); sErr != nil {
		return nil, sErr
	}

	messages, err := s.messages.Thread(ctx, caller.ID, withUser)
	if err != nil {
		return nil, fmt.Errorf("load thread: %w", err)
	}
	return messages, nil
}

// UnreadCount returns the caller's unread message count.
func (s *MessageService) UnreadCount(ctx context.Context, callerID string) (int, error) {
	count, err := s.messages.CountUnread(ctx, callerID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// MarkRead flags the caller's messages from withUser as read and reports how
// many changed.
func (s *MessageService) MarkRead(ctx context.Context, caller Identity, withUser string) (int64, error) {
	if err := s.checkCounterpart(ctx, caller, withUser); err != nil {
		return 0, err
	}

	updated, err := s.messages.MarkRead(ctx, caller.ID, withUser)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	return updated, nil
}

func (s *MessageService) checkCounterpart(ctx context.Context, caller Identity, withUser string) error {
	if strings.TrimSpace(withUser) == "" {
		return validationErr("user", "user id is required")
	}
	if caller.Role == domain.RoleAdmin {
		return nil
	}

	adminID, err := s.primaryAdmin(ctx)
	if err != nil {
		return err
	}
	if withUser != adminID {
		return ErrRecipientNotAllowed
	}
	return nil
}

func (s *MessageService) primaryAdmin(ctx context.Context) (string, error) {
	adminID, err := s.admins.PrimaryAdminID(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("resolve admin: %w", err)
	}
	return adminID, nil
}
