package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/arklim/casting-platform-api/internal/core/port"
)

// UploadService hands out presigned upload tickets for photos and attachments.
type UploadService struct {
	storage port.FileStorage
}

// NewUploadService constructs an UploadService instance.
func NewUploadService(storage port.FileStorage) *UploadService {
	return &UploadService{storage: storage}
}

// PresignPhoto returns a one-off upload ticket for an image object.
func (s *UploadService) PresignPhoto(ctx context.Context, contentType string) (*port.UploadTicket, error) {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, validationErr("content_type", "content_type must be an image type")
	}

	ticket, err := s.storage.PresignUpload(ctx, contentType)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return ticket, nil
}
