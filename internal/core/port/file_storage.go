package port

import (
	"context"
	"time"
)

// UploadTicket is a short-lived permission to PUT one object into storage.
type UploadTicket struct {
	Key       string
	UploadURL string
	FileURL   string
	ExpiresAt time.Time
}

// FileStorage is the object-storage collaborator used for photo and
// attachment uploads. Clients upload directly against the presigned URL.
type FileStorage interface {
	PresignUpload(ctx context.Context, contentType string) (*UploadTicket, error)
}
